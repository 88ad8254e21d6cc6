package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/NamanBalaji/uploadsim/internal/common"
	"github.com/NamanBalaji/uploadsim/internal/config"
	"github.com/NamanBalaji/uploadsim/internal/engine"
	"github.com/NamanBalaji/uploadsim/internal/errors"
	"github.com/NamanBalaji/uploadsim/internal/logger"
	"github.com/NamanBalaji/uploadsim/internal/status"
)

var defaultFiles = []string{
	"Website templates.psd",
	"Logo design.figma",
	"Brand guidelines.pdf",
	"Product photos.zip",
	"Hero banner.png",
}

func main() {
	configPath := flag.String("config", "", "Path to the config file (default: XDG config dir)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	spacing := flag.Duration("spacing", 700*time.Millisecond, "Delay between simulated file picks")
	timeout := flag.Duration("timeout", time.Minute, "Tear the screen down after this long")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v\n", err)
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if *debug {
		level = logger.LevelDebug
	}

	err = logger.InitLogging(level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Warning: Failed to initialize logging: %v\n", err)
	}
	defer logger.Close()

	eng, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("Error creating engine: %v\n", err)
	}

	files := flag.Args()
	if len(files) == 0 {
		files = defaultFiles
	}

	descs := lo.Map(files, func(name string, _ int) common.FileDescriptor {
		return describe(name)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	changes := make(chan common.Change, 64)
	eng.Subscribe("console", changes)

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printChanges(eng, changes)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pickFiles(gctx, eng, descs, *spacing)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Errorf("File picker stopped: %v", err)
	}

	waitForUploads(ctx, eng, cfg.TickInterval)

	final := eng.Snapshot()

	start := time.Now()
	eng.OnScreenTorndown()
	<-printed

	fmt.Printf("\nScreen torn down in %v\n\n", time.Since(start))
	renderSummary(final)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.GetConfig()
	}

	return config.Load(path)
}

// describe builds the descriptor a file picker would hand over. Files that
// exist on disk get their type sniffed from content.
func describe(name string) common.FileDescriptor {
	desc := common.FileDescriptor{Name: filepath.Base(name)}

	if _, err := os.Stat(name); err != nil {
		return desc
	}

	mt, err := mimetype.DetectFile(name)
	if err != nil {
		logger.Warnf("Could not detect type of %s: %v", name, err)
		return desc
	}

	desc.MimeTypeHint = mt.String()

	return desc
}

// pickFiles selects one file per spacing interval. Picks refused for lack of
// a timer stay pending and are retried on every later interval.
func pickFiles(ctx context.Context, eng *engine.Engine, descs []common.FileDescriptor, spacing time.Duration) error {
	var pending []uuid.UUID

	t := time.NewTicker(spacing)
	defer t.Stop()

	for len(descs) > 0 || len(pending) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		pending = lo.Filter(pending, func(id uuid.UUID, _ int) bool {
			return errors.IsRetryable(eng.Retry(id))
		})

		if len(descs) == 0 {
			continue
		}

		id, err := eng.OnFileSelected(descs[0])
		descs = descs[1:]

		switch {
		case err == nil:
		case errors.IsRetryable(err):
			pending = append(pending, id)
		default:
			return err
		}
	}

	return nil
}

func waitForUploads(ctx context.Context, eng *engine.Engine, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		stats := eng.Stats()
		if stats.Total > 0 && stats.Completed == stats.Total {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func printChanges(eng *engine.Engine, changes <-chan common.Change) {
	for c := range changes {
		task, ok := eng.Get(c.TaskID)
		name := c.TaskID.String()
		if ok {
			name = task.DisplayName
		}

		line := fmt.Sprintf("%-10s %s %3d%% %s", c.Kind, progressBar(c.Progress, 30), int(c.Progress*100+0.5), name)

		switch c.Kind {
		case common.ChangeCompleted:
			color.Green.Println(line)
		case common.ChangeRemoved:
			color.Red.Println(line)
		case common.ChangeInserted:
			color.Yellow.Println(line)
		default:
			fmt.Println(line)
		}
	}
}

func progressBar(progress float64, width int) string {
	done := int(progress * float64(width))
	done = min(max(done, 0), width)

	return "[" + strings.Repeat("=", done) + strings.Repeat(" ", width-done) + "]"
}

func renderSummary(tasks []common.UploadTask) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Type", "Class", "Progress", "State", "Took"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, task := range tasks {
		took := "-"
		if !task.CompletedAt.IsZero() {
			took = task.CompletedAt.Sub(task.CreatedAt).Round(time.Millisecond).String()
		}

		table.Append([]string{
			task.DisplayName,
			task.MimeType,
			string(task.MimeClass),
			fmt.Sprintf("%d%%", task.Percentage()),
			stateColor(task.State).Render(task.State.String()),
			took,
		})
	}

	table.Render()

	done := lo.CountBy(tasks, func(task common.UploadTask) bool { return task.State == status.Completed })
	fmt.Printf("\n%d of %d uploads completed\n", done, len(tasks))
}

func stateColor(s status.State) color.Color {
	switch s {
	case status.Completed:
		return color.Green
	case status.InProgress:
		return color.Cyan
	case status.Pending:
		return color.Yellow
	default:
		return color.Gray
	}
}
