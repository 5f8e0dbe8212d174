package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitstat/splitstat/internal/dataset"
	"github.com/splitstat/splitstat/internal/store"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecords(n int) []dataset.Record {
	records := make([]dataset.Record, n)
	base := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	for i := range records {
		group := dataset.GroupControl
		if i%2 == 1 {
			group = dataset.GroupVariant
		}
		records[i] = dataset.Record{
			UserID:    int64(i + 1),
			Group:     group,
			Converted: i%3 == 0,
			TimeSpent: 5.25 + float64(i),
			Clicks:    i % 6,
			Sessions:  1 + i%4,
			Timestamp: base.AddDate(0, 0, i%30),
		}
	}
	return records
}

func TestCreateAndGetDataset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateDataset(ctx, "ab_test_data", 42, sampleRecords(10))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 10, created.NTotal)

	got, err := s.GetDataset(ctx, "ab_test_data")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "ab_test_data", got.Name)
	assert.Equal(t, uint64(42), got.Seed)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetDataset_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetDataset(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLatestDataset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LatestDataset(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.CreateDataset(ctx, "first", 1, sampleRecords(4))
	require.NoError(t, err)
	second, err := s.CreateDataset(ctx, "second", 2, sampleRecords(6))
	require.NoError(t, err)

	latest, err := s.LatestDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestListDatasets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateDataset(ctx, "a", 1, sampleRecords(2))
	require.NoError(t, err)
	_, err = s.CreateDataset(ctx, "b", 2, sampleRecords(2))
	require.NoError(t, err)

	datasets, err := s.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, datasets, 2)
}

func TestRecordsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	original := sampleRecords(20)
	created, err := s.CreateDataset(ctx, "roundtrip", 7, original)
	require.NoError(t, err)

	loaded, err := s.GetRecords(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, loaded, len(original))

	for i := range original {
		assert.Equal(t, original[i].UserID, loaded[i].UserID)
		assert.Equal(t, original[i].Group, loaded[i].Group)
		assert.Equal(t, original[i].Converted, loaded[i].Converted)
		assert.Equal(t, original[i].TimeSpent, loaded[i].TimeSpent)
		assert.Equal(t, original[i].Clicks, loaded[i].Clicks)
		assert.Equal(t, original[i].Sessions, loaded[i].Sessions)
		assert.True(t, original[i].Timestamp.Equal(loaded[i].Timestamp),
			"timestamp mismatch at %d: %v vs %v", i, original[i].Timestamp, loaded[i].Timestamp)
	}
}

func TestCreateDataset_ReplacesSameName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.CreateDataset(ctx, "ab_test_data", 1, sampleRecords(10))
	require.NoError(t, err)
	_, err = s.SaveReport(ctx, first.ID, []byte(`{"v":1}`))
	require.NoError(t, err)

	second, err := s.CreateDataset(ctx, "ab_test_data", 2, sampleRecords(6))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := s.GetDataset(ctx, "ab_test_data")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, 6, got.NTotal)

	// Old records and reports go with the old dataset.
	old, err := s.GetRecords(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, old)
	_, err = s.LatestReport(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	datasets, err := s.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Len(t, datasets, 1)
}

func TestDeleteDataset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateDataset(ctx, "doomed", 1, sampleRecords(4))
	require.NoError(t, err)
	require.NoError(t, s.DeleteDataset(ctx, "doomed"))

	_, err = s.GetDataset(ctx, "doomed")
	require.ErrorIs(t, err, store.ErrNotFound)

	records, err := s.GetRecords(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.ErrorIs(t, s.DeleteDataset(ctx, "doomed"), store.ErrNotFound)
}

func TestSaveAndLatestReport(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LatestReport(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	created, err := s.CreateDataset(ctx, "ab_test_data", 42, sampleRecords(4))
	require.NoError(t, err)

	_, err = s.SaveReport(ctx, created.ID, []byte(`{"run":1}`))
	require.NoError(t, err)
	saved, err := s.SaveReport(ctx, created.ID, []byte(`{"run":2}`))
	require.NoError(t, err)

	latest, err := s.LatestReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, latest.ID)
	assert.Equal(t, created.ID, latest.DatasetID)
	assert.JSONEq(t, `{"run":2}`, string(latest.Body))
}
