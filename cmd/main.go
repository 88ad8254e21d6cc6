package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"

	"github.com/NamanBalaji/uploadsim/internal/common"
	"github.com/NamanBalaji/uploadsim/internal/config"
	"github.com/NamanBalaji/uploadsim/internal/engine"
	"github.com/NamanBalaji/uploadsim/internal/logger"
)

// printProgress redraws the progress of the given uploads until stop is closed.
func printProgress(eng *engine.Engine, ids []uuid.UUID, stop <-chan struct{}) {
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()

	clearLine := func() {
		fmt.Print("\r\033[K")
	}

	bar := func(progress float64, width int) string {
		done := min(max(int(progress*float64(width)), 0), width)
		return "[" + strings.Repeat("=", done) + strings.Repeat(" ", width-done) + "]"
	}

	draw := func() {
		stats := eng.Stats()
		fmt.Printf("Total: %d, Pending: %d, Uploading: %d, Done: %d\n",
			stats.Total, stats.Pending, stats.InProgress, stats.Completed)

		for i, id := range ids {
			task, ok := eng.Get(id)
			if !ok {
				fmt.Printf("[%d] removed\n", i+1)
				continue
			}

			fmt.Printf("[%d] %-11s %s %3d%% %s\n", i+1, task.State, bar(task.Progress, 30), task.Percentage(), task.DisplayName)
		}
	}

	for {
		select {
		case <-t.C:
			clearLine()
			draw()

			for i := 0; i <= len(ids); i++ {
				fmt.Print("\033[1A")
			}
		case <-stop:
			clearLine()
			draw()
			return
		}
	}
}

func main() {
	uploads := flag.Int("n", 12, "Number of simultaneous uploads")
	interval := flag.Duration("interval", 20*time.Millisecond, "Tick interval")
	after := flag.Duration("after", 400*time.Millisecond, "Tear the screen down after this long")
	flag.Parse()

	err := logger.InitLogging(logger.LevelWarn, "")
	if err != nil {
		fmt.Printf("Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	cfg := config.DefaultConfig()
	cfg.TickInterval = *interval
	cfg.MaxTimers = *uploads

	eng, err := engine.New(&cfg)
	if err != nil {
		fmt.Printf("Error creating engine: %v\n", err)
		os.Exit(1)
	}

	// Select uploads concurrently, removing roughly a third of them while
	// they are ticking.
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make([]uuid.UUID, 0, *uploads)
	)

	for i := range *uploads {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			id, err := eng.OnFileSelected(common.FileDescriptor{Name: fmt.Sprintf("asset-%02d.png", i+1), MimeTypeHint: "image/png"})
			if err != nil {
				fmt.Printf("Error selecting file %d: %v\n", i+1, err)
				return
			}

			mu.Lock()
			ids = append(ids, id)
			mu.Unlock()

			if rand.IntN(3) == 0 {
				time.Sleep(time.Duration(rand.Int64N(int64(*after))))
				eng.OnRemoveRequested(id)
			}
		}(i)
	}

	stop := make(chan struct{})
	drawn := make(chan struct{})

	time.Sleep(*after / 2)

	mu.Lock()
	tracked := append([]uuid.UUID(nil), ids...)
	mu.Unlock()

	go func() {
		defer close(drawn)
		printProgress(eng, tracked, stop)
	}()

	time.Sleep(*after / 2)
	close(stop)
	<-drawn

	fmt.Println("Tearing the screen down...")
	start := time.Now()
	eng.OnScreenTorndown()
	wg.Wait()
	elapsed := time.Since(start)

	leaked := len(eng.Snapshot()) + eng.Simulators()
	if leaked > 0 {
		color.Red.Printf("Teardown left %d tasks or simulators behind\n", leaked)
		os.Exit(1)
	}

	color.Green.Printf("Teardown completed in %v with nothing left running\n", elapsed)
}
