package pkg

import (
	"os"

	"github.com/rs/zerolog/log"
)

// FilterImagesBySize returns the paths whose file size exceeds sizeLimit
// bytes. A pure query over the input list; nothing is deleted or moved.
// Paths that cannot be stat'ed are logged and left out.
func FilterImagesBySize(paths []string, sizeLimit int64) []string {
	large := []string{}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			log.Warn().Str("path", path).Err(err).Msg("could not stat file for size filter")
			continue
		}
		if info.Size() > sizeLimit {
			large = append(large, path)
		}
	}
	return large
}
