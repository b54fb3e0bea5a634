// Package fixer walks a music library and embeds folder images into audio
// files that have no cover art.
//
// # Fixer
//
// For every directory of the tree, root included, the Fixer:
//
//  1. Picks the first cover image that exists, by name priority
//  2. Lists the audio files directly inside the directory
//  3. Inspects each file for embedded art
//  4. Embeds the image into files that have none
//  5. Records the injection in the journal (optional)
//
// Directories without a cover image are skipped without a word.
//
// # Extract
//
// Extract works the other way round: for every directory with audio files
// and no cover image it writes folder.jpg from the first embedded picture,
// fitted to 500x500. Library lists every audio file with its title, for
// playlist export.
//
// # Basic Usage
//
//	f := fixer.New(settings, func(event fixer.ProgressEvent) {
//	    fmt.Println(event.Message)
//	}, fixer.WithLogger(logger))
//
//	stats, err := f.Run(ctx, "/music")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// A failure on one file never stops the directory or the run: it is
// reported as a LevelError event and counted as not fixed.
package fixer
