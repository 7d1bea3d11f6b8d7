package pkg

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Mode selects how accepted records are laid out under the destination root.
type Mode int

const (
	// ModeByDate buckets records under year/month/day directories.
	ModeByDate Mode = iota
	// ModeFlat copies every record directly into the destination root.
	ModeFlat
)

func (m Mode) String() string {
	switch m {
	case ModeByDate:
		return "by-date"
	case ModeFlat:
		return "flat"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ImageRecord is the resolved form of one input path. Seq is the record's
// position in the original input list and is the collision tie-break key.
// Immutable once created.
type ImageRecord struct {
	SourcePath string
	BaseName   string
	Date       time.Time
	HasDate    bool
	Seq        int
}

// DateKey identifies one day bucket in the destination hierarchy.
type DateKey struct {
	Year  int
	Month int
	Day   int
}

// DateKeyFor returns the bucket key for a capture date.
func DateKeyFor(t time.Time) DateKey {
	return DateKey{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Path returns the relative destination directory for the bucket,
// e.g. "2020/03/05".
func (k DateKey) Path() string {
	return filepath.Join(fmt.Sprintf("%04d", k.Year), fmt.Sprintf("%02d", k.Month), fmt.Sprintf("%02d", k.Day))
}

func (k DateKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

// ResolveRecords runs the date resolver over the input paths, in order.
// Unreadable images produce records with HasDate false; they are kept so the
// progress total still covers every input file.
func ResolveRecords(paths []string) []ImageRecord {
	records := make([]ImageRecord, 0, len(paths))
	for i, path := range paths {
		rec := ImageRecord{
			SourcePath: path,
			BaseName:   filepath.Base(path),
			Seq:        i,
		}
		date, err := ResolveCaptureDate(path)
		if err != nil {
			if errors.Is(err, ErrUnreadableImage) {
				log.Warn().Str("path", path).Msg("cannot identify image file, excluded from date grouping")
			} else {
				log.Warn().Str("path", path).Err(err).Msg("date resolution failed")
			}
		} else {
			rec.Date = date
			rec.HasDate = true
		}
		records = append(records, rec)
	}
	return records
}

// ClassificationIndex holds the grouping decisions for one run. Records keeps
// every input record in sequence order; Groups is populated in ModeByDate
// only, mapping each day bucket to its base-name collision groups. Within a
// group the records appear in input order, so the first entry is the one that
// keeps the unadorned name.
type ClassificationIndex struct {
	Mode    Mode
	Records []ImageRecord
	Groups  map[DateKey]map[string][]ImageRecord
}

// BuildIndex groups resolved records according to mode. In ModeByDate only
// records with a resolved date are placed into buckets; in ModeFlat no
// grouping happens and every record is destined for the root.
func BuildIndex(records []ImageRecord, mode Mode) *ClassificationIndex {
	idx := &ClassificationIndex{
		Mode:    mode,
		Records: records,
		Groups:  make(map[DateKey]map[string][]ImageRecord),
	}
	if mode == ModeFlat {
		return idx
	}
	for _, rec := range records {
		if !rec.HasDate {
			continue
		}
		key := DateKeyFor(rec.Date)
		group, ok := idx.Groups[key]
		if !ok {
			group = make(map[string][]ImageRecord)
			idx.Groups[key] = group
		}
		group[rec.BaseName] = append(group[rec.BaseName], rec)
	}
	return idx
}

// Collisions returns the base names within a bucket claimed by more than one
// record. Mainly useful for reporting.
func (idx *ClassificationIndex) Collisions(key DateKey) []string {
	var names []string
	for name, recs := range idx.Groups[key] {
		if len(recs) > 1 {
			names = append(names, name)
		}
	}
	return names
}
