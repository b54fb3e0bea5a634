package fixer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	ioutils "github.com/handiism/artinject/internal/io"
	"github.com/handiism/artinject/internal/model"
)

// Extract writes a folder image for every directory that has audio files but
// no cover image, using the first embedded picture found among its tracks.
//
// The picture is fitted to ExtractMaxSize on its limiting side and written
// as ExtractFileName in JPEG. Hidden directories below root are not visited.
// In dry-run mode nothing is written but the counts are the same.
func (f *Fixer) Extract(ctx context.Context, root string) (model.ExtractStats, error) {
	var stats model.ExtractStats

	dir, err := resolveRoot(root)
	if err != nil {
		return stats, err
	}

	atomic.StoreInt32(&f.visitedFolders, 0)
	atomic.StoreInt32(&f.fixedFiles, 0)

	f.progress(ProgressEvent{Message: fmt.Sprintf("--- Extracting Folder Art in: %s ---", root), Level: LevelInfo})
	if f.settings.DryRun {
		f.progress(ProgressEvent{Message: "Dry run: no files will be modified", Level: LevelWarning})
	}

	err = f.walkVisible(ctx, dir, func(path string) {
		f.extractFolder(ctx, path, &stats)
		atomic.AddInt32(&f.visitedFolders, 1)
	})

	f.logger.WithField("root", root).Infof("extract finished: %s", stats)

	if err != nil {
		f.progress(ProgressEvent{Message: fmt.Sprintf("Cancelled. Folder images created so far: %d", stats.Created), Level: LevelWarning})
		return stats, err
	}

	f.progress(ProgressEvent{
		Message: fmt.Sprintf("Extraction Complete. Created: %d, Skipped: %d, Missing: %d", stats.Created, stats.Skipped, stats.Failed),
		Level:   LevelInfo,
	})

	return stats, nil
}

func (f *Fixer) extractFolder(ctx context.Context, dir string, stats *model.ExtractStats) {
	logger := f.logger.WithField("dir", dir)
	name := filepath.Base(dir)

	if cover := ioutils.FindCover(dir, f.settings.CoverFileNames); cover != "" {
		stats.Skipped++
		logger.WithField("cover", filepath.Base(cover)).Debug("folder image present")
		return
	}

	paths, err := ioutils.ListAudio(dir, f.settings.AudioExtensions)
	if err != nil {
		logger.WithError(err).Debug("cannot list audio files")
		return
	}
	if len(paths) == 0 {
		return
	}

	target := filepath.Join(dir, f.settings.ExtractFileName)
	for _, path := range paths {
		picture, err := f.inspector.Picture(path)
		if err != nil {
			logger.WithField("file", filepath.Base(path)).WithError(err).Debug("no usable picture")
			continue
		}

		data, err := f.images.FitImage(ctx, picture, f.settings.ExtractMaxSize, f.settings.ExtractMaxSize)
		if err != nil {
			logger.WithField("file", filepath.Base(path)).WithError(err).Debug("cannot convert picture")
			continue
		}

		if f.settings.DryRun {
			stats.Created++
			f.progress(ProgressEvent{Message: fmt.Sprintf("WOULD CREATE: %s", name), Level: LevelSuccess})
			return
		}

		if err := os.WriteFile(target, data, 0644); err != nil {
			logger.WithError(err).Warn("cannot write folder image")
			f.progress(ProgressEvent{Message: fmt.Sprintf("Error writing %s: %v", target, err), Level: LevelError})
			continue
		}

		stats.Created++
		atomic.AddInt32(&f.fixedFiles, 1)
		logger.WithField("source", filepath.Base(path)).Debug("folder image written")
		f.progress(ProgressEvent{Message: fmt.Sprintf("Created: %s", name), Level: LevelSuccess})
		return
	}

	stats.Failed++
	f.progress(ProgressEvent{Message: fmt.Sprintf("Missing: %s", name), Level: LevelError})
}

// Library lists the audio files of every directory under root, with their
// tagged titles, for playlist export. Directories without audio are left
// out. Hidden directories below root are not visited.
func (f *Fixer) Library(ctx context.Context, root string) ([]*model.Folder, error) {
	dir, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	var folders []*model.Folder
	err = f.walkVisible(ctx, dir, func(path string) {
		paths, err := ioutils.ListAudio(path, f.settings.AudioExtensions)
		if err != nil || len(paths) == 0 {
			return
		}

		folder := model.NewFolder(path)
		for _, p := range paths {
			track := model.NewAudioFile(p)
			title, err := f.inspector.Title(p)
			if err != nil {
				f.logger.WithField("file", p).WithError(err).Debug("cannot read title")
			}
			track.Title = title
			folder.Tracks = append(folder.Tracks, track)
		}
		folders = append(folders, folder)
	})

	return folders, err
}

// walkVisible calls visit for root and every directory below it whose name
// does not start with a dot. It stops when ctx is cancelled.
func (f *Fixer) walkVisible(ctx context.Context, root string, visit func(dir string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			f.logger.WithField("dir", path).WithError(err).Warn("cannot read directory")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		visit(path)
		return nil
	})
}
