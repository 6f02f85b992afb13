package maintenance

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/poiesic/catalogit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMaintainer serves canned records and index entries so disagreement
// scenarios can be staged directly.
type stubMaintainer struct {
	records      []*core.Product
	entries      []Entry
	scanErr      error
	rebuildCalls int
	rebuildErrs  []error
}

func (s *stubMaintainer) ScanProducts(ctx context.Context, fn func(*core.Product) error) error {
	if s.scanErr != nil {
		return s.scanErr
	}
	for _, record := range s.records {
		if err := fn(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubMaintainer) ScanIndexEntries(ctx context.Context, fn func(string, core.ID) error) error {
	for _, entry := range s.entries {
		if err := fn(entry.Category, entry.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubMaintainer) RebuildCategoryIndex(ctx context.Context) (int, error) {
	call := s.rebuildCalls
	s.rebuildCalls++
	if call < len(s.rebuildErrs) && s.rebuildErrs[call] != nil {
		return 0, s.rebuildErrs[call]
	}
	return len(s.records), nil
}

func testConfig() *Config {
	return &Config{ReportInterval: 1, MaxRetries: 3, RetryDelay: 0}
}

func TestVerifier_CleanStore(t *testing.T) {
	repo := &stubMaintainer{
		records: []*core.Product{
			{Id: 1, Category: "go"},
			{Id: 2, Category: "go"},
			{Id: 3, Category: "books"},
		},
		entries: []Entry{
			{Category: "books", ID: 3},
			{Category: "go", ID: 1},
			{Category: "go", ID: 2},
		},
	}

	var buf bytes.Buffer
	report, err := NewVerifier(repo, testConfig(), &buf).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Clean())
	assert.Equal(t, 3, report.Records)
	assert.Equal(t, 3, report.IndexEntries)
	assert.Contains(t, buf.String(), "Verification complete")
}

func TestVerifier_ReportsDisagreements(t *testing.T) {
	repo := &stubMaintainer{
		records: []*core.Product{
			{Id: 1, Category: "go"},
			{Id: 2, Category: "go"},
			{Id: 4, Category: "books"}, // no index entry at all
		},
		entries: []Entry{
			{Category: "go", ID: 1},
			{Category: "rust", ID: 2}, // wrong category
			{Category: "go", ID: 9},   // no such record
		},
	}

	var buf bytes.Buffer
	report, err := NewVerifier(repo, testConfig(), &buf).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Clean())
	assert.Equal(t, []Entry{{Category: "go", ID: 9}}, report.Dangling)
	assert.Equal(t, []Entry{{Category: "rust", ID: 2}}, report.Mismatched)

	unindexed := report.Unindexed
	sort.Slice(unindexed, func(i, j int) bool { return unindexed[i] < unindexed[j] })
	assert.Equal(t, []core.ID{2, 4}, unindexed, "a mismatched record also counts as unindexed")
}

func TestVerifier_EmptyStore(t *testing.T) {
	var buf bytes.Buffer
	report, err := NewVerifier(&stubMaintainer{}, testConfig(), &buf).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Clean())
	assert.Zero(t, report.Records)
	assert.Zero(t, report.IndexEntries)
}

func TestVerifier_ScanError(t *testing.T) {
	scanErr := errors.New("disk gone")
	repo := &stubMaintainer{scanErr: scanErr}

	var buf bytes.Buffer
	_, err := NewVerifier(repo, testConfig(), &buf).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, scanErr)
}

func TestVerifier_RepairRetries(t *testing.T) {
	repo := &stubMaintainer{
		records:     []*core.Product{{Id: 1, Category: "go"}, {Id: 2, Category: "go"}},
		rebuildErrs: []error{errors.New("transient")},
	}

	var buf bytes.Buffer
	written, err := NewVerifier(repo, testConfig(), &buf).Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, 2, repo.rebuildCalls, "first attempt fails, second succeeds")
}

func TestVerifier_RepairGivesUp(t *testing.T) {
	rebuildErr := errors.New("persistent")
	repo := &stubMaintainer{
		rebuildErrs: []error{rebuildErr, rebuildErr, rebuildErr},
	}

	var buf bytes.Buffer
	_, err := NewVerifier(repo, testConfig(), &buf).Repair(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, rebuildErr)
	assert.Equal(t, 3, repo.rebuildCalls)
}
