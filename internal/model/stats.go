package model

import "fmt"

// RunStats holds the counters of one scan.
type RunStats struct {
	// Folders is the number of directories visited.
	Folders int

	// Fixed is the number of files that received a cover.
	Fixed int

	// Failed is the number of files whose injection failed.
	Failed int

	// Skipped is the number of files that could not be inspected.
	Skipped int
}

// Add accumulates the counters of other into s.
func (s *RunStats) Add(other RunStats) {
	s.Folders += other.Folders
	s.Fixed += other.Fixed
	s.Failed += other.Failed
	s.Skipped += other.Skipped
}

func (s RunStats) String() string {
	return fmt.Sprintf("folders=%d fixed=%d failed=%d skipped=%d", s.Folders, s.Fixed, s.Failed, s.Skipped)
}

// ExtractStats holds the counters of one folder image extraction.
type ExtractStats struct {
	// Created is the number of folder images written.
	Created int

	// Skipped is the number of folders that already had a folder image.
	Skipped int

	// Failed is the number of folders with audio but no usable picture.
	Failed int
}

func (s ExtractStats) String() string {
	return fmt.Sprintf("created=%d skipped=%d failed=%d", s.Created, s.Skipped, s.Failed)
}
