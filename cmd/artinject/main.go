package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/handiism/artinject/internal/config"
	"github.com/handiism/artinject/internal/fixer"
	"github.com/handiism/artinject/internal/journal"
	"github.com/handiism/artinject/internal/logging"
	"github.com/handiism/artinject/internal/playlist"
	"github.com/handiism/artinject/internal/watch"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Command line flags
	var (
		configFlag  = flag.String("config", "", "Path to config file (.json, .yaml or .yml)")
		verboseFlag = flag.Bool("verbose", false, "Show per-file progress and skip reasons")
		journalFlag = flag.String("journal", "", "SQLite journal path (overrides config)")
		watchFlag   = flag.Bool("watch", false, "Keep running and re-process directories on change")
		dryRunFlag  = flag.Bool("dry-run", false, "Inspect only, report what would be fixed")
		extractFlag = flag.Bool("extract", false, "Write folder.jpg from embedded art instead of injecting")
		m3uFlag     = flag.String("m3u", "", "Export every audio file under root to this playlist (.m3u or .m3u8)")
		mapFromFlag = flag.String("map-from", "", "Playlist path prefix to replace (overrides config)")
		mapToFlag   = flag.String("map-to", "", "Playlist path prefix to write instead (overrides config)")
		historyFlag = flag.String("history", "", "Print the journal entries of one audio file and exit")
		writeConfig = flag.String("write-config", "", "Write the effective settings to this file and exit")
	)

	flag.Parse()

	if flag.NArg() == 0 && *historyFlag == "" && *writeConfig == "" {
		fmt.Println("artinject - Embed folder images into audio files without cover art")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  artinject [options] <root>")
		fmt.Println()
		fmt.Println("For interactive mode, use: artinject-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}
	root := flag.Arg(0)

	// Load config
	settings, err := config.LoadEnv(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *verboseFlag {
		settings.LogLevel = "debug"
	}
	if *journalFlag != "" {
		settings.JournalPath = *journalFlag
	}
	if *watchFlag {
		settings.Watch = true
	}
	if *dryRunFlag {
		settings.DryRun = true
	}
	if *mapFromFlag != "" {
		settings.PlaylistMapFrom = *mapFromFlag
	}
	if *mapToFlag != "" {
		settings.PlaylistMapTo = *mapToFlag
	}

	if *writeConfig != "" {
		if err := settings.Save(*writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Settings written to %s\n", *writeConfig)
		return
	}

	logger, err := logging.New(os.Stderr, settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		os.Exit(1)
	}

	var store journal.Store = journal.Nop{}
	if settings.JournalPath != "" {
		sqlite, err := journal.OpenSQLite(settings.JournalPath, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
			os.Exit(1)
		}
		store = sqlite
	}
	defer store.Close()

	if *historyFlag != "" {
		if err := printHistory(context.Background(), store, *historyFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
			exit(store, 1)
		}
		return
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	f := fixer.New(settings, func(event fixer.ProgressEvent) {
		if event.Level == fixer.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case fixer.LevelError:
			prefix = "❌ "
		case fixer.LevelWarning:
			prefix = "⚠️  "
		case fixer.LevelSuccess:
			prefix = "✅ "
		case fixer.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	}, fixer.WithJournal(store), fixer.WithLogger(logger))

	switch {
	case *extractFlag:
		err = extract(ctx, f, root)
	case *m3uFlag != "":
		err = exportPlaylist(ctx, f, settings, root, *m3uFlag)
	default:
		_, err = f.Run(ctx, root)
	}
	if err != nil {
		if ctx.Err() != nil {
			exit(store, 130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(store, 1)
	}

	printJournalCount(ctx, store, settings)

	if !settings.Watch || *extractFlag || *m3uFlag != "" {
		return
	}

	w, err := watch.New(root, settings.WatchDebounce.Std(), func(ctx context.Context, dir string) {
		f.ProcessFolder(ctx, dir)
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting watcher: %v\n", err)
		exit(store, 1)
	}

	fmt.Printf("\n👀 Watching %s for changes (ctrl+c to stop)...\n", root)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return w.Close()
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error while watching: %v\n", err)
		exit(store, 1)
	}

	exit(store, 130)
}

func extract(ctx context.Context, f *fixer.Fixer, root string) error {
	stats, err := f.Extract(ctx, root)
	if err != nil {
		return err
	}
	fmt.Printf("\nCreated: %d, Skipped: %d, Missing: %d\n", stats.Created, stats.Skipped, stats.Failed)
	return nil
}

func exportPlaylist(ctx context.Context, f *fixer.Fixer, settings *config.Settings, root, path string) error {
	folders, err := f.Library(ctx, root)
	if err != nil {
		return err
	}

	var mapper *playlist.PathMapper
	if settings.PlaylistMapFrom != "" {
		mapper = &playlist.PathMapper{From: settings.PlaylistMapFrom, To: settings.PlaylistMapTo}
	}

	tracks := playlist.Tracks(folders)
	if err := playlist.NewExporter(mapper).Save(path, tracks); err != nil {
		return err
	}

	fmt.Printf("✅ Exported %d tracks to %s\n", len(tracks), path)
	return nil
}

func printHistory(ctx context.Context, store journal.Store, path string) error {
	// Runs record resolved absolute paths.
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	entries, err := store.Entries(ctx, path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No injections recorded for %s\n", path)
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-4s  %s\n", e.InjectedAt.Local().Format(time.DateTime), e.Format, e.Cover)
	}
	return nil
}

func printJournalCount(ctx context.Context, store journal.Store, settings *config.Settings) {
	if settings.JournalPath == "" {
		return
	}

	count, err := store.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		return
	}
	fmt.Printf("📒 Journal: %d injections recorded in %s\n", count, settings.JournalPath)
}

// exit closes the journal before leaving, since deferred calls do not run
// on os.Exit.
func exit(store journal.Store, code int) {
	store.Close()
	os.Exit(code)
}
