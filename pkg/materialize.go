package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ProgressFunc is invoked after every processed record with the number of
// records handled so far and the run total. processed is strictly increasing
// and reaches total exactly once, at the end of the run. The callback runs
// synchronously; callers driving a UI must not block in it.
type ProgressFunc func(processed, total int)

// ErrDestinationUnwritable is returned when a destination directory cannot be
// created. This is the one fatal condition: without the directory no further
// progress is possible.
var ErrDestinationUnwritable = fmt.Errorf("destination directory is not writable")

// Materialize copies every record in the index to its resolved destination.
//
// In ModeByDate each dated record lands under destRoot/YYYY/MM/DD; records
// without a date are skipped. In ModeFlat every record lands directly under
// destRoot. An existing destination file is never overwritten: the candidate
// name is re-probed at the moment of writing and advanced with an
// incrementing "_N" suffix until an unclaimed name is found, so reruns only
// add files.
//
// Individual copy failures are logged and the run continues; only a failure
// to create a destination directory aborts (wrapped in
// ErrDestinationUnwritable). ctx is checked between records; on cancellation
// the files copied so far remain valid.
func Materialize(ctx context.Context, idx *ClassificationIndex, destRoot string, progress ProgressFunc) (*Summary, error) {
	summary := &Summary{Mode: idx.Mode, Found: len(idx.Records)}

	if err := os.MkdirAll(destRoot, 0755); err != nil {
		return summary, fmt.Errorf("%w: failed to create destination root %s: %v", ErrDestinationUnwritable, destRoot, err)
	}

	total := len(idx.Records)
	processed := 0
	step := func() {
		processed++
		if progress != nil {
			progress(processed, total)
		}
	}

	for _, rec := range idx.Records {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
		}

		targetDir := destRoot
		if idx.Mode == ModeByDate {
			if !rec.HasDate {
				summary.Skip(rec.SourcePath, "not a readable image")
				step()
				continue
			}
			targetDir = filepath.Join(destRoot, DateKeyFor(rec.Date).Path())
			if err := os.MkdirAll(targetDir, 0755); err != nil {
				return summary, fmt.Errorf("%w: failed to create bucket directory %s: %v", ErrDestinationUnwritable, targetDir, err)
			}
		}
		summary.Classified++

		destPath, err := copyCollisionSafe(rec.SourcePath, targetDir, rec.BaseName)
		if err != nil {
			log.Warn().Str("source", rec.SourcePath).Err(err).Msg("copy failed, continuing with remaining files")
			summary.Skip(rec.SourcePath, fmt.Sprintf("copy failed: %v", err))
			step()
			continue
		}
		log.Debug().Str("source", rec.SourcePath).Str("dest", destPath).Msg("copied")
		summary.Copied++
		step()
	}

	return summary, nil
}

// copyCollisionSafe copies srcPath into targetDir under baseName, advancing
// to "stem_N.ext" candidates while the name is taken. The destination file is
// created with O_EXCL so a name can never be double-claimed, even by files a
// prior run left behind. Returns the path actually written.
func copyCollisionSafe(srcPath, targetDir, baseName string) (string, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat source file %s: %w", srcPath, err)
	}

	for n := 0; ; n++ {
		destPath := filepath.Join(targetDir, candidateName(baseName, n))
		dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create destination file %s: %w", destPath, err)
		}

		if err := copyContents(srcPath, dest); err != nil {
			dest.Close()
			os.Remove(destPath)
			return "", err
		}
		if err := dest.Close(); err != nil {
			return "", fmt.Errorf("failed to close destination file %s: %w", destPath, err)
		}

		// Preserve the source timestamps, like shutil.copy2.
		if err := os.Chtimes(destPath, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
			log.Warn().Str("dest", destPath).Err(err).Msg("could not preserve timestamps")
		}
		return destPath, nil
	}
}

// candidateName returns baseName for n == 0 and "stem_N.ext" afterwards.
func candidateName(baseName string, n int) string {
	if n == 0 {
		return baseName
	}
	ext := filepath.Ext(baseName)
	stem := strings.TrimSuffix(baseName, ext)
	return fmt.Sprintf("%s_%d%s", stem, n, ext)
}

func copyContents(srcPath string, dest *os.File) error {
	source, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcPath, err)
	}
	defer source.Close()

	if _, err := io.Copy(dest, source); err != nil {
		return fmt.Errorf("failed to copy content from %s to %s: %w", srcPath, dest.Name(), err)
	}
	if err := dest.Sync(); err != nil {
		return fmt.Errorf("failed to sync destination file %s: %w", dest.Name(), err)
	}
	return nil
}
