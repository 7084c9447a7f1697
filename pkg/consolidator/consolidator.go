// Package consolidator merges validated per-cluster records into one
// deterministic collection for the whole estate.
package consolidator

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
	"github.com/opscart/tkgi-app-tracker/pkg/validator"
)

// ErrNothingToAggregate means no input file yielded a single valid record.
// The run must abort before writing any output.
var ErrNothingToAggregate = errors.New("no valid records in any input file")

// Collection is the consolidated estate view plus the accounting of how it
// was assembled.
type Collection struct {
	Records []models.NamespaceRecord
	Quality models.RunQuality
}

// Consolidator merges validated file results.
type Consolidator struct {
	logger *zap.Logger
}

// New returns a Consolidator.
func New(logger *zap.Logger) *Consolidator {
	return &Consolidator{logger: logger}
}

// Consolidate unions records from all files, keyed by namespace identity.
// When the same namespace appears in more than one file the later file wins;
// callers pass files sorted by name so timestamped newer exports supersede
// older ones. Output is sorted by foundation, cluster, namespace.
func (c *Consolidator) Consolidate(results []validator.FileResult) (*Collection, error) {
	byKey := make(map[models.RecordKey]models.NamespaceRecord)
	quality := models.RunQuality{}

	for _, fr := range results {
		if fr.Skipped {
			quality.FilesSkipped++
			quality.SkippedFiles = append(quality.SkippedFiles, fr.Source)
			continue
		}
		quality.FilesRead++
		if fr.Dropped > 0 {
			if quality.DroppedByFile == nil {
				quality.DroppedByFile = make(map[string]int)
			}
			quality.DroppedByFile[fr.Source] = fr.Dropped
			quality.RecordsDropped += fr.Dropped
		}

		for _, rec := range fr.Records {
			key := rec.Key()
			if _, dup := byKey[key]; dup {
				c.logger.Debug("duplicate namespace superseded by later file",
					zap.Stringer("key", key),
					zap.String("file", fr.Source))
			}
			byKey[key] = rec
		}
	}

	if len(byKey) == 0 {
		return nil, ErrNothingToAggregate
	}

	records := make([]models.NamespaceRecord, 0, len(byKey))
	for _, rec := range byKey {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key().Less(records[j].Key())
	})
	quality.RecordsValid = len(records)

	c.logger.Info("consolidated input files",
		zap.Int("files_read", quality.FilesRead),
		zap.Int("files_skipped", quality.FilesSkipped),
		zap.Int("records", quality.RecordsValid),
		zap.Int("dropped", quality.RecordsDropped))

	return &Collection{Records: records, Quality: quality}, nil
}
