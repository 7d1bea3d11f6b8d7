package pkg

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	_ "github.com/vegidio/heif-go" // Register HEIF/HEIC decoder
)

// ErrUnreadableImage is returned when a file cannot be decoded as an image at
// all. Records carrying this error are excluded from date-based grouping but
// still count toward progress totals.
var ErrUnreadableImage = fmt.Errorf("file is not a readable image")

// ErrNoExifDate is returned when EXIF data is found but no suitable date tag is present.
var ErrNoExifDate = fmt.Errorf("no EXIF date tag found")

// ResolveCaptureDate determines the capture date for one image file.
// Precedence, first success wins:
//  1. The EXIF DateTimeOriginal tag, truncated to its calendar date.
//  2. The file's last-modified time, if the file decodes as an image but the
//     tag is missing or malformed.
//  3. ErrUnreadableImage if the file cannot be decoded as an image.
//
// A malformed tag is treated the same as a missing one, never as a failure of
// the whole batch.
func ResolveCaptureDate(photoPath string) (time.Time, error) {
	if err := checkImageDecodes(photoPath); err != nil {
		return time.Time{}, err
	}

	taken, err := readExifOriginalDate(photoPath)
	if err == nil {
		return truncateToDate(taken), nil
	}
	log.Debug().Str("path", photoPath).Err(err).Msg("no usable EXIF date, falling back to modification time")

	info, err := os.Stat(photoPath)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s for modification time: %w", photoPath, err)
	}
	return truncateToDate(info.ModTime()), nil
}

// checkImageDecodes verifies the file is a decodable raster image.
func checkImageDecodes(photoPath string) error {
	file, err := os.Open(photoPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", photoPath, err)
	}
	defer file.Close()

	if _, _, err := image.DecodeConfig(file); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadableImage, photoPath, err)
	}
	return nil
}

// readExifOriginalDate extracts DateTimeOriginal from a photo's EXIF data.
// Returns ErrNoExifDate if the tag is absent or the EXIF block is missing.
func readExifOriginalDate(photoPath string) (time.Time, error) {
	file, err := os.Open(photoPath)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open file %s: %w", photoPath, err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode EXIF data from %s: %w", photoPath, err)
	}

	dateTag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, ErrNoExifDate
	}
	return parseExifDateTime(dateTag)
}

// parseExifDateTime parses an EXIF datetime string.
// Handles "YYYY:MM:DD HH:MM:SS" and fallback "YYYY:MM:DD".
func parseExifDateTime(tag *tiff.Tag) (time.Time, error) {
	if tag == nil {
		return time.Time{}, fmt.Errorf("tag is nil")
	}
	dateStr, err := tag.StringVal() // Handles potential null terminators.
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get string value from EXIF date tag: %w", err)
	}

	layout := "2006:01:02 15:04:05" // Common EXIF datetime format
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		layoutDateOnly := "2006:01:02"
		t, errDateOnly := time.Parse(layoutDateOnly, dateStr)
		if errDateOnly != nil {
			return time.Time{}, fmt.Errorf("failed to parse EXIF date string '%s' with layout '%s' or '%s': %w", dateStr, layout, layoutDateOnly, err)
		}
		return t, nil
	}
	return t, nil
}

func truncateToDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
