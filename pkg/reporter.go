package pkg

import (
	"fmt"
	"os"
	"path/filepath"
)

// SkippedFile records one file that was not copied and why.
type SkippedFile struct {
	Path   string
	Reason string // e.g., "not a readable image", "copy failed: ..."
}

// Summary accumulates the totals for one run.
type Summary struct {
	Mode       Mode
	Found      int // files in the input list
	Classified int // files assigned a destination (dated, or all in flat mode)
	Copied     int // files actually written
	Skipped    []SkippedFile
}

// Skip records a file excluded from the destination.
func (s *Summary) Skip(path, reason string) {
	s.Skipped = append(s.Skipped, SkippedFile{Path: path, Reason: reason})
}

// WriteReport creates a text report summarizing the organizing run.
func WriteReport(reportPath string, s *Summary) error {
	reportDir := filepath.Dir(reportPath)
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for report '%s': %w", reportDir, err)
	}

	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", reportPath, err)
	}
	defer file.Close()

	fmt.Fprintf(file, "Image Organizing Report\n")
	fmt.Fprintf(file, "=======================\n\n")
	fmt.Fprintf(file, "Summary:\n")
	fmt.Fprintf(file, "  - Mode: %s\n", s.Mode)
	fmt.Fprintf(file, "  - Total files found: %d\n", s.Found)
	fmt.Fprintf(file, "  - Files classified: %d\n", s.Classified)
	fmt.Fprintf(file, "  - Files successfully copied: %d\n", s.Copied)
	fmt.Fprintf(file, "  - Files skipped: %d\n", len(s.Skipped))

	if len(s.Skipped) > 0 {
		fmt.Fprintf(file, "\nSkipped Details:\n")
		for _, sk := range s.Skipped {
			fmt.Fprintf(file, "  - File: %s\n", sk.Path)
			fmt.Fprintf(file, "    Reason: %s\n\n", sk.Reason)
		}
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync report file '%s': %w", reportPath, err)
	}
	return nil
}
