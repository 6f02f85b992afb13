// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package maintenance

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/catalogit/core"
	"github.com/poiesic/catalogit/storage"
)

// Config holds configuration for maintenance operations.
type Config struct {
	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Entry identifies one category index entry.
type Entry struct {
	Category string
	ID       core.ID
}

// Report summarizes the outcome of a verification pass.
type Report struct {
	// Records is the number of product records scanned.
	Records int

	// IndexEntries is the number of category index entries scanned.
	IndexEntries int

	// Dangling lists index entries whose id has no record.
	Dangling []Entry

	// Mismatched lists index entries whose category disagrees with the
	// record's category.
	Mismatched []Entry

	// Unindexed lists records with no index entry for their category.
	Unindexed []core.ID
}

// Clean reports whether the records and the index fully agree.
func (r *Report) Clean() bool {
	return len(r.Dangling) == 0 && len(r.Mismatched) == 0 && len(r.Unindexed) == 0
}

// Verifier checks every record against every category index entry and
// reports any disagreement between the two.
type Verifier struct {
	repo     storage.IndexMaintainer
	config   *Config
	progress io.Writer
}

// NewVerifier creates a new verifier.
// progress: where to write progress output (typically os.Stderr)
func NewVerifier(repo storage.IndexMaintainer, config *Config, progress io.Writer) *Verifier {
	if config == nil {
		config = DefaultConfig()
	}
	return &Verifier{
		repo:     repo,
		config:   config,
		progress: progress,
	}
}

// Run executes one verification pass. The record scan and the index scan
// each observe their own snapshot, so Run should only be trusted while no
// writers are active.
func (v *Verifier) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	// First pass: record id -> category.
	categoryByID := make(map[core.ID]string)
	err := v.repo.ScanProducts(ctx, func(product *core.Product) error {
		categoryByID[product.Id] = product.Category
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}
	report.Records = len(categoryByID)

	fmt.Fprintf(v.progress, "Verifying index against %d records\n", report.Records)

	tracker := NewProgressTracker(v.progress, report.Records, v.config.ReportInterval)
	tracker.Start()

	// Second pass: every index entry must point at a live record filed
	// under the same category.
	indexed := make(map[core.ID]bool, len(categoryByID))
	err = v.repo.ScanIndexEntries(ctx, func(category string, id core.ID) error {
		report.IndexEntries++

		recordCategory, ok := categoryByID[id]
		switch {
		case !ok:
			report.Dangling = append(report.Dangling, Entry{Category: category, ID: id})
		case recordCategory != category:
			report.Mismatched = append(report.Mismatched, Entry{Category: category, ID: id})
		default:
			indexed[id] = true
			tracker.Increment(1)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan index: %w", err)
	}

	for id := range categoryByID {
		if !indexed[id] {
			report.Unindexed = append(report.Unindexed, id)
		}
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(v.progress, "Verification complete. Scanned %d records and %d entries in %v\n",
		report.Records, report.IndexEntries, elapsed.Round(time.Millisecond))

	return report, nil
}

// Repair rebuilds the category index from the records, retrying with
// exponential backoff on transient failures. Returns the number of entries
// written.
func (v *Verifier) Repair(ctx context.Context) (int, error) {
	var written int
	err := RetryWithBackoff(ctx, func() error {
		var rebuildErr error
		written, rebuildErr = v.repo.RebuildCategoryIndex(ctx)
		return rebuildErr
	}, v.config.MaxRetries, v.config.RetryDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild index after %d attempts: %w", v.config.MaxRetries, err)
	}

	fmt.Fprintf(v.progress, "Rebuilt category index with %d entries\n", written)
	return written, nil
}
