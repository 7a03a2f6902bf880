package photo

import (
	"context"
	"fmt"
	"log"
	"time"

	"guestgallery/internal/domain/media"
)

// DefaultSweepGrace keeps files young enough to belong to an upload whose
// row is not committed yet.
const DefaultSweepGrace = time.Hour

type SweepReport struct {
	Scanned int      `json:"scanned"`
	Orphans []string `json:"orphans"`
	Removed int      `json:"removed"`
}

// SweepOrphans removes stored files that no photo row references and that
// are older than grace. With dryRun nothing is deleted.
func (s *Service) SweepOrphans(ctx context.Context, grace time.Duration, dryRun bool) (*SweepReport, error) {
	keep, thumbs, err := s.repo.StoredKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored keys: %w", err)
	}

	// Both areas may share one directory, so a key is kept if either
	// side references it.
	for k := range thumbs {
		keep[k] = true
	}

	stores := []*media.Store{s.originals}
	if s.thumbs.Dir() != s.originals.Dir() {
		stores = append(stores, s.thumbs)
	}

	cutoff := time.Now().Add(-grace)
	report := &SweepReport{Orphans: []string{}}
	for _, store := range stores {
		files, err := store.List()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			report.Scanned++
			if keep[f.Key] || f.ModTime.After(cutoff) {
				continue
			}
			report.Orphans = append(report.Orphans, f.Key)
			if dryRun {
				continue
			}
			if err := store.Delete(f.Key); err != nil {
				log.Printf("sweep_delete_failed dir=%s file=%s error=%q", store.Dir(), f.Key, err.Error())
				continue
			}
			report.Removed++
		}
	}

	log.Printf("sweep_done scanned=%d orphans=%d removed=%d dry_run=%t", report.Scanned, len(report.Orphans), report.Removed, dryRun)
	return report, nil
}
