package fixer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/handiism/artinject/internal/audio"
	"github.com/handiism/artinject/internal/config"
	ioutils "github.com/handiism/artinject/internal/io"
	"github.com/handiism/artinject/internal/journal"
	"github.com/handiism/artinject/internal/logging"
	"github.com/handiism/artinject/internal/model"
	"github.com/sirupsen/logrus"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a user-facing progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Inspector reads the tags of audio files.
type Inspector interface {
	// Inspect reports whether the file already carries cover art.
	Inspect(path string) audio.Probe

	// Picture returns the first embedded picture.
	Picture(path string) ([]byte, error)

	// Title returns the tagged title, empty when there is none.
	Title(path string) (string, error)
}

// Embedder writes cover art into an audio file.
type Embedder interface {
	EmbedCover(path string, format audio.Format, image []byte) error
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithJournal records every successful injection in store.
func WithJournal(store journal.Store) Option {
	return func(f *Fixer) {
		if store != nil {
			f.journal = store
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(f *Fixer) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInspector replaces the art detector.
func WithInspector(inspector Inspector) Option {
	return func(f *Fixer) {
		f.inspector = inspector
	}
}

// WithEmbedder replaces the art injector.
func WithEmbedder(embedder Embedder) Option {
	return func(f *Fixer) {
		f.tagger = embedder
	}
}

// Fixer walks a directory tree and embeds folder images into audio files
// that have no cover art.
type Fixer struct {
	settings  *config.Settings
	inspector Inspector
	tagger    Embedder
	journal   journal.Store
	logger    *logrus.Entry
	images    *ioutils.ImageService

	totalFolders   int32
	visitedFolders int32
	fixedFiles     int32

	onProgress func(ProgressEvent)
}

// New creates a Fixer. A nil settings means config.DefaultSettings.
func New(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Fixer {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	f := &Fixer{
		settings:   settings,
		inspector:  audio.NewInspector(),
		tagger:     audio.NewTagger(),
		journal:    journal.Nop{},
		logger:     logging.Discard(),
		images:     ioutils.NewImageService(settings.ExtractQuality),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Run processes root and every directory below it, one directory at a time,
// and returns the accumulated counts.
//
// A root that is missing, unreadable or not a directory is reported before
// any work begins. Cancelling ctx stops the walk after the current directory.
func (f *Fixer) Run(ctx context.Context, root string) (model.RunStats, error) {
	var stats model.RunStats

	dir, err := resolveRoot(root)
	if err != nil {
		return stats, err
	}

	atomic.StoreInt32(&f.visitedFolders, 0)
	atomic.StoreInt32(&f.fixedFiles, 0)

	f.progress(ProgressEvent{Message: fmt.Sprintf("--- Starting Art Injection in: %s ---", root), Level: LevelInfo})
	if f.settings.DryRun {
		f.progress(ProgressEvent{Message: "Dry run: no files will be modified", Level: LevelWarning})
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			f.logger.WithField("dir", path).WithError(err).Warn("cannot read directory")
			f.progress(ProgressEvent{Message: fmt.Sprintf("Skipping unreadable directory %s: %v", path, err), Level: LevelWarning})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		stats.Add(f.processFolder(ctx, path))
		atomic.AddInt32(&f.visitedFolders, 1)

		return nil
	})

	f.logger.WithField("root", root).Infof("run finished: %s", stats)

	if err != nil {
		f.progress(ProgressEvent{Message: fmt.Sprintf("Cancelled. Tracks fixed so far: %d", stats.Fixed), Level: LevelWarning})
		return stats, err
	}

	f.progress(ProgressEvent{Message: fmt.Sprintf("Task Complete. Total tracks fixed: %d", stats.Fixed), Level: LevelInfo})

	return stats, nil
}

// CountFolders returns the number of directories Run would visit under root.
// It sizes progress displays and is not needed for Run itself.
func (f *Fixer) CountFolders(ctx context.Context, root string) (int, error) {
	dir, err := resolveRoot(root)
	if err != nil {
		return 0, err
	}

	count := 0
	err = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			count++
		}
		return ctx.Err()
	})

	atomic.StoreInt32(&f.totalFolders, int32(count))

	return count, err
}

// GetProgress returns how many directories were visited, the total from the
// last CountFolders call, and how many files were fixed so far.
func (f *Fixer) GetProgress() (visited, total, fixed int32) {
	return atomic.LoadInt32(&f.visitedFolders), atomic.LoadInt32(&f.totalFolders),
		atomic.LoadInt32(&f.fixedFiles)
}

// ScanFolder selects the cover image of dir and lists its audio files.
//
// When dir has no cover image the returned folder has no tracks and the
// audio files are never listed.
func (f *Fixer) ScanFolder(dir string) (*model.Folder, error) {
	folder := model.NewFolder(dir)

	folder.Cover = ioutils.FindCover(dir, f.settings.CoverFileNames)
	if !folder.HasCover() {
		return folder, nil
	}

	paths, err := ioutils.ListAudio(dir, f.settings.AudioExtensions)
	if err != nil {
		return folder, err
	}
	for _, path := range paths {
		folder.Tracks = append(folder.Tracks, model.NewAudioFile(path))
	}

	return folder, nil
}

// ProcessFolder embeds the cover image of dir into every audio file directly
// inside dir that has no art yet, and returns how many files were fixed.
func (f *Fixer) ProcessFolder(ctx context.Context, dir string) int {
	return f.processFolder(ctx, dir).Fixed
}

func (f *Fixer) processFolder(ctx context.Context, dir string) model.RunStats {
	stats := model.RunStats{Folders: 1}
	logger := f.logger.WithField("dir", dir)

	folder, err := f.ScanFolder(dir)
	if err != nil {
		logger.WithError(err).Debug("cannot list audio files")
		return stats
	}
	if !folder.HasCover() || len(folder.Tracks) == 0 {
		return stats
	}

	logger.WithField("cover", folder.CoverName()).Debugf("found %d audio files", len(folder.Tracks))

	var (
		image     []byte
		imageErr  error
		imageRead bool
	)

	for _, track := range folder.Tracks {
		fileLogger := logger.WithField("file", track.Name())

		probe := f.inspector.Inspect(track.Path)
		if probe.Skipped() {
			stats.Skipped++
			fileLogger.WithError(probe.Err).Debug("skipping unreadable audio file")
			f.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: %v", track.Name(), probe.Err), Level: LevelVerbose})
			continue
		}
		track.Format = probe.Format

		if !probe.NeedsArt() {
			fileLogger.Debug("art already present")
			continue
		}

		if f.settings.DryRun {
			stats.Fixed++
			f.progress(ProgressEvent{Message: fmt.Sprintf("Would embed %s into %s", folder.CoverName(), track.Name()), Level: LevelVerbose})
			continue
		}

		if !imageRead {
			image, imageErr = ioutils.ReadImage(folder.Cover)
			imageRead = true
		}

		err := imageErr
		if err == nil {
			err = f.tagger.EmbedCover(track.Path, track.Format, image)
		}
		if err != nil {
			stats.Failed++
			fileLogger.WithField("format", track.Format).WithError(err).Warn("injection failed")
			f.progress(ProgressEvent{Message: fmt.Sprintf("Error injecting into %s: %v", track.Name(), err), Level: LevelError})
			continue
		}

		stats.Fixed++
		atomic.AddInt32(&f.fixedFiles, 1)
		f.progress(ProgressEvent{Message: fmt.Sprintf("Embedded %s into %s", folder.CoverName(), track.Name()), Level: LevelVerbose})
		f.record(ctx, folder, track)
	}

	if stats.Fixed > 0 {
		if f.settings.DryRun {
			f.progress(ProgressEvent{Message: fmt.Sprintf("WOULD FIX: '%s' (%d tracks)", folder.Name(), stats.Fixed), Level: LevelSuccess})
		} else {
			f.progress(ProgressEvent{Message: fmt.Sprintf("FIXED: '%s' (%d tracks updated)", folder.Name(), stats.Fixed), Level: LevelSuccess})
		}
	}

	return stats
}

func (f *Fixer) record(ctx context.Context, folder *model.Folder, track *model.AudioFile) {
	err := f.journal.Record(ctx, journal.Entry{
		Path:   track.Path,
		Format: track.Format.String(),
		Cover:  folder.Cover,
	})
	if err != nil {
		f.logger.WithField("file", track.Path).WithError(err).Warn("cannot record injection")
		f.progress(ProgressEvent{Message: fmt.Sprintf("Journal: %v", err), Level: LevelWarning})
	}
}

func (f *Fixer) progress(event ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(event)
	}
}

// resolveRoot checks root and returns it as an absolute path with symlinks
// followed, which WalkDir does not do for the root itself.
func resolveRoot(root string) (string, error) {
	if err := checkRoot(root); err != nil {
		return "", err
	}

	dir, err := filepath.EvalSymlinks(root)
	if err == nil {
		dir, err = filepath.Abs(dir)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w (%w)", ErrFixer, ErrRootUnreadable, err)
	}

	return dir, nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w (%s)", ErrFixer, ErrRootNotFound, root)
		}
		return fmt.Errorf("%w: %w (%w)", ErrFixer, ErrRootUnreadable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %w (%s)", ErrFixer, ErrRootNotDirectory, root)
	}

	dir, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("%w: %w (%w)", ErrFixer, ErrRootUnreadable, err)
	}

	return dir.Close()
}
