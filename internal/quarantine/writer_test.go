package quarantine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/registry"
	"ArticlesHarmonizer/internal/validation"
)

type fakeStore struct {
	saved []domain.QuarantineRecord
	calls int
	err   error
}

func (f *fakeStore) InsertQuarantine(_ context.Context, records []domain.QuarantineRecord) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, records...)
	return nil
}

var fixed = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func gfg(id int64, articleID *string, title, link string) domain.GFGRecord {
	return domain.GFGRecord{
		StagingMeta: domain.StagingMeta{ID: id},
		ArticleID:   articleID,
		Title:       domain.StringPtr(title),
		Link:        domain.StringPtr(link),
	}
}

func validate(t *testing.T, batch []domain.GFGRecord) (*validation.Report, []domain.GFGRecord) {
	t.Helper()
	schema, err := registry.Resolve(domain.SourceGFG)
	require.NoError(t, err)
	report, err := validation.Validate(batch, schema)
	require.NoError(t, err)
	_, failed := validation.Split(batch, report)
	return report, failed
}

func TestQuarantineOneRecordPerFailingRow(t *testing.T) {
	t.Parallel()

	report, failed := validate(t, []domain.GFGRecord{
		gfg(1, domain.StringPtr("A1"), "Valid Title Here", "https://x.com/a"),
		gfg(2, domain.StringPtr("A2"), "Bad", "not-a-url"),
		gfg(3, nil, "Valid Title Again", "https://x.com/c"),
	})
	require.Equal(t, 2, report.FailedRows())

	store := &fakeStore{}
	w := NewWriter(store, nil).WithClock(func() time.Time { return fixed })

	n, err := w.Quarantine(context.Background(), domain.Records(failed), report, domain.TableGFGStaging, "article_id")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, store.saved, 2)

	first := store.saved[0]
	assert.Equal(t, domain.TableGFGStaging, first.SourceTable)
	assert.Equal(t, "article_id", first.PKColumn)
	assert.Equal(t, "A2", first.PKValue)
	assert.Equal(t, 9, first.TotalColumns)
	assert.Equal(t, fixed, first.QuarantinedAt)
	assert.Contains(t, first.ValidationError, "title:")
	assert.Contains(t, first.ValidationError, "[url]")
	assert.Equal(t, 1, strings.Count(first.ValidationError, "; "))

	// null business key falls back to the staging id
	assert.Equal(t, "3", store.saved[1].PKValue)
	assert.Contains(t, store.saved[1].ValidationError, "article_id: value is required [required]")
}

func TestQuarantineEmptyReport(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	n, err := NewWriter(store, nil).Quarantine(context.Background(), nil, nil, domain.TableGFGStaging, "article_id")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, store.calls)
}

func TestQuarantineStoreFailure(t *testing.T) {
	t.Parallel()

	report, failed := validate(t, []domain.GFGRecord{gfg(5, domain.StringPtr("A5"), "Bad", "https://x.com/a")})
	store := &fakeStore{err: errors.New("disk full")}

	n, err := NewWriter(store, nil).Quarantine(context.Background(), domain.Records(failed), report, domain.TableGFGStaging, "article_id")
	assert.Zero(t, n)

	var qErr *domain.QuarantineWriteError
	require.True(t, errors.As(err, &qErr))
	assert.Equal(t, 1, qErr.Rows)
	assert.ErrorContains(t, err, "disk full")
}

func TestQuarantineRowMissingFromBatch(t *testing.T) {
	t.Parallel()

	report, _ := validate(t, []domain.GFGRecord{gfg(8, domain.StringPtr("A8"), "Bad", "https://x.com/a")})
	store := &fakeStore{}

	_, err := NewWriter(store, nil).Quarantine(context.Background(), nil, report, domain.TableGFGStaging, "article_id")
	var qErr *domain.QuarantineWriteError
	require.True(t, errors.As(err, &qErr))
	assert.Zero(t, store.calls, "nothing may be written when the batch does not cover the report")
}

func TestQuarantineUnknownPKField(t *testing.T) {
	t.Parallel()

	report, failed := validate(t, []domain.GFGRecord{gfg(9, domain.StringPtr("A9"), "Bad", "https://x.com/a")})
	_, err := NewWriter(&fakeStore{}, nil).Quarantine(context.Background(), domain.Records(failed), report, domain.TableGFGStaging, "nope")
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", MaxErrorLength+10)
	assert.Equal(t, MaxErrorLength, len([]rune(truncate(long, MaxErrorLength))))
	assert.Equal(t, "abc", truncate("abc", MaxErrorLength))
}
