// Package audio detects and embeds cover art in audio files.
//
// # Formats
//
// Three tag containers are supported, identified by content rather than by
// file name:
//   - ID3 (MP3)
//   - FLAC metadata blocks
//   - MP4 atoms (M4A)
//
// Anything else is FormatUnknown and is never written to.
//
// # Detection
//
// Use the Inspector to find out whether a file already carries a picture:
//
//	probe := audio.NewInspector().Inspect(path)
//	switch {
//	case probe.Skipped():
//	    log.Printf("skipping %s: %v", path, probe.Err)
//	case probe.NeedsArt():
//	    // embed
//	}
//
// # Embedding
//
// Use the Tagger to attach image bytes as the front cover:
//
//	tagger := audio.NewTagger()
//	err := tagger.EmbedCover(path, probe.Format, imageBytes)
//
// Pictures are always labelled image/jpeg with picture type 3 (front cover).
package audio
