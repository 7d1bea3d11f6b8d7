package pkg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// imageExtensions maps supported image file extensions to true.
// Used by ScanSourceDirectory and IsImageExtension.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".heic": true,
	".heif": true,
}

// ScanSourceDirectory recursively scans the source directory for image files,
// returning them in walk order. pattern, when non-empty, is a doublestar glob
// matched against the path relative to sourceDir (e.g. "2023/**/*.jpg");
// files that do not match are left out.
func ScanSourceDirectory(sourceDir, pattern string) ([]string, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source directory '%s' does not exist", sourceDir)
		}
		return nil, fmt.Errorf("error accessing source directory '%s': %w", sourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path '%s' is not a directory", sourceDir)
	}

	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid filter pattern '%s'", pattern)
	}

	imageFiles := []string{}
	err = filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Str("path", path).Err(err).Msg("error accessing path, continuing scan")
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !IsImageExtension(path) {
			return nil
		}
		if pattern != "" {
			rel, relErr := filepath.Rel(sourceDir, path)
			if relErr != nil {
				rel = path
			}
			matched, _ := doublestar.Match(pattern, filepath.ToSlash(rel))
			if !matched {
				return nil
			}
		}
		imageFiles = append(imageFiles, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking through source directory '%s': %w", sourceDir, err)
	}

	return imageFiles, nil
}

// IsImageExtension checks if the given filePath has a known image extension
// by comparing its lowercased extension against the imageExtensions map.
func IsImageExtension(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return imageExtensions[ext]
}
