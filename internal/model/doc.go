// Package model defines the data structures shared by the scanner, the
// TUI and the CLI.
//
// # Folder
//
// Folder is one directory of the scanned tree with its candidate cover:
//
//	folder := model.NewFolder("/music/Artist/Album")
//	fmt.Println(folder.HasCover())
//
// # AudioFile
//
// AudioFile is one audio file inside a Folder:
//
//	track := model.NewAudioFile("/music/Artist/Album/01.mp3")
//	fmt.Println(track.Format) // id3
//
// # RunStats
//
// RunStats accumulates the counters of a scan across folders.
package model
