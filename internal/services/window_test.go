package services

import (
	"testing"
	"time"

	"github.com/epeers/shortpositions/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotDataset builds a dataset of snapshot records from ticker/percentage pairs.
func snapshotDataset(date string, pcts map[string]float64) *models.ReportDataset {
	day, err := models.ParseCompactDate(date)
	if err != nil {
		day = models.DateOf(time.Now())
	}
	ds := &models.ReportDataset{Date: date}
	for ticker, pct := range pcts {
		ds.Records = append(ds.Records, &models.SnapshotRecord{
			Name:       ticker + " LTD (" + ticker + ")",
			Ticker:     ticker,
			Percentage: pct,
			ReportDate: day,
		})
	}
	ds.Metadata = models.ReportMetadata{ReportDate: date, RecordCount: len(ds.Records)}
	return ds
}

func TestWindow_UpsertOrdersByDate(t *testing.T) {
	w := NewWindow(5)

	w, _ = w.Upsert(snapshotDataset("20250815", map[string]float64{"ACM": 1}))
	w, _ = w.Upsert(snapshotDataset("20250813", map[string]float64{"BTA": 1}))
	w, evicted := w.Upsert(snapshotDataset("20250814", map[string]float64{"ACM": 2}))

	assert.Empty(t, evicted)
	assert.Equal(t, []string{"20250813", "20250814", "20250815"}, w.Dates())
	assert.Equal(t, []string{"ACM", "BTA"}, w.Tickers())
	assert.Equal(t, "20250815", w.Latest().Date)
}

func TestWindow_UpsertReplacesSameDate(t *testing.T) {
	w := NewWindow(3)
	w, _ = w.Upsert(snapshotDataset("20250814", map[string]float64{"ACM": 1}))
	w, _ = w.Upsert(snapshotDataset("20250815", map[string]float64{"ACM": 1}))

	replacement := snapshotDataset("20250814", map[string]float64{"ZZZ": 4})
	w, evicted := w.Upsert(replacement)

	assert.Empty(t, evicted)
	assert.Equal(t, 2, w.Len())
	assert.Same(t, replacement, w.Get("20250814"))
	assert.Equal(t, []string{"ACM", "ZZZ"}, w.Tickers())
}

func TestWindow_UpsertSameDatasetTwiceIsIdempotent(t *testing.T) {
	ds := snapshotDataset("20250814", map[string]float64{"ACM": 1, "BTA": 2})
	once, _ := NewWindow(3).Upsert(ds)
	twice, evicted := once.Upsert(ds)

	assert.Empty(t, evicted)
	assert.Equal(t, once.Len(), twice.Len())
	assert.Equal(t, once.Dates(), twice.Dates())
	assert.Equal(t, once.Tickers(), twice.Tickers())
}

func TestWindow_EvictsOldestOverCapacity(t *testing.T) {
	w := NewWindow(3)
	for _, d := range []string{"20250811", "20250812", "20250813"} {
		w, _ = w.Upsert(snapshotDataset(d, map[string]float64{"ACM": 1}))
	}

	w, evicted := w.Upsert(snapshotDataset("20250814", map[string]float64{"ACM": 1}))
	assert.Equal(t, []string{"20250811"}, evicted)
	assert.Equal(t, []string{"20250812", "20250813", "20250814"}, w.Dates())

	// An older report than everything held is inserted then evicted at once.
	w, evicted = w.Upsert(snapshotDataset("20250801", map[string]float64{"OLD": 1}))
	assert.Equal(t, []string{"20250801"}, evicted)
	assert.Equal(t, 3, w.Len())
	assert.NotContains(t, w.Tickers(), "OLD")
}

func TestWindow_IsImmutable(t *testing.T) {
	empty := NewWindow(5)
	one, _ := empty.Upsert(snapshotDataset("20250814", map[string]float64{"ACM": 1}))
	two, _ := one.Upsert(snapshotDataset("20250815", map[string]float64{"BTA": 1}))

	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 2, two.Len())

	evicted := two.Evict("20250814")
	assert.Equal(t, 2, two.Len())
	assert.Equal(t, []string{"20250815"}, evicted.Dates())
	assert.Equal(t, []string{"BTA"}, evicted.Tickers())

	cleared := two.Clear()
	assert.Equal(t, 0, cleared.Len())
	assert.Equal(t, 5, cleared.Capacity())
	assert.Empty(t, cleared.Tickers())

	ds := two.Datasets()
	ds[0] = nil
	require.NotNil(t, two.Datasets()[0])
}

func TestWindow_EvictUnknownDate(t *testing.T) {
	w, _ := NewWindow(3).Upsert(snapshotDataset("20250814", map[string]float64{"ACM": 1}))
	assert.Equal(t, []string{"20250814"}, w.Evict("20990101").Dates())
	assert.Nil(t, w.Get("20990101"))
}

func TestNewWindow_MinimumCapacity(t *testing.T) {
	assert.Equal(t, 1, NewWindow(0).Capacity())
}
