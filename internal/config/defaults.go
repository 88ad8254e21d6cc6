package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const (
	tickInterval = 450 * time.Millisecond
	minIncrement = 0.0
	maxIncrement = 0.12
	maxTimers    = 0
	logLevel     = "info"
)

var logFile = filepath.Join(xdg.StateHome, configFileName, configFileName+".log")
