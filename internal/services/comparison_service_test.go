package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/epeers/shortpositions/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func windowOf(t *testing.T, capacity int, datasets ...*models.ReportDataset) *Window {
	t.Helper()
	w := NewWindow(capacity)
	for _, ds := range datasets {
		w, _ = w.Upsert(ds)
	}
	return w
}

func TestTickerTrend(t *testing.T) {
	svc := NewComparisonService(time.UTC)
	w := windowOf(t, 5,
		snapshotDataset("20250813", map[string]float64{"ACM": 2.0, "BTA": 1}),
		snapshotDataset("20250814", map[string]float64{"BTA": 1}), // ACM absent
		snapshotDataset("20250815", map[string]float64{"ACM": 3.0}),
	)

	trend, err := svc.TickerTrend(context.Background(), w, " acm ")
	require.NoError(t, err)

	assert.Equal(t, "ACM", trend.Ticker)
	assert.Equal(t, "ACM LTD (ACM)", trend.StockName)
	require.Len(t, trend.DataPoints, 2)
	assert.Equal(t, "20250813", trend.DataPoints[0].Date)
	assert.Equal(t, "13/08/2025", trend.DataPoints[0].FormattedDate)
	require.NotNil(t, trend.DataPoints[0].ShortPositions)

	require.Len(t, trend.Changes, 1)
	change := trend.Changes[0]
	assert.Equal(t, "13/08/2025", change.From)
	assert.Equal(t, "15/08/2025", change.To)
	assert.Equal(t, 1.0, change.Change)
	assert.Equal(t, 50.0, change.ChangePercent)
	assert.Equal(t, 2.0, change.FromValue)
	assert.Equal(t, 3.0, change.ToValue)
}

func TestTickerTrend_InsufficientData(t *testing.T) {
	svc := NewComparisonService(time.UTC)
	w := windowOf(t, 5,
		snapshotDataset("20250813", map[string]float64{"ACM": 2.0}),
		snapshotDataset("20250814", map[string]float64{"BTA": 1.0}),
	)

	_, err := svc.TickerTrend(context.Background(), w, "ACM")
	assert.True(t, errors.Is(err, ErrInsufficientData))

	_, err = svc.TickerTrend(context.Background(), NewWindow(5), "ACM")
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestPeriodDelta(t *testing.T) {
	change, pct := periodDelta(5.1, 5.2)
	assert.Equal(t, 0.1, change, "decimal arithmetic avoids float noise")
	assert.InDelta(t, 1.9607843137, pct, 1e-9)

	change, pct = periodDelta(0, 1.5)
	assert.Equal(t, 1.5, change)
	assert.Equal(t, 0.0, pct)

	change, pct = periodDelta(4, 2)
	assert.Equal(t, -2.0, change)
	assert.Equal(t, -50.0, pct)
}

func TestTopMovers(t *testing.T) {
	svc := NewComparisonService(time.UTC)
	w := windowOf(t, 5,
		snapshotDataset("20250813", map[string]float64{"ACM": 1.0, "BTA": 5.0, "CDE": 2.0, "ONE": 9.0}),
		snapshotDataset("20250814", map[string]float64{"ACM": 4.0, "BTA": 4.0}),
		snapshotDataset("20250815", map[string]float64{"ACM": 3.0, "BTA": 3.0, "CDE": 4.0}),
	)

	resp := svc.TopMovers(context.Background(), w, 0)
	assert.Equal(t, []string{"20250813", "20250814", "20250815"}, resp.Dates)
	require.Len(t, resp.Movers, 3, "ONE appears once and is excluded")

	// ACM +2, BTA -2, CDE +2: equal magnitudes keep ticker order.
	assert.Equal(t, "ACM", resp.Movers[0].Ticker)
	assert.Equal(t, 2.0, resp.Movers[0].Change)
	assert.Equal(t, 3.0, resp.Movers[0].Latest)
	assert.Equal(t, "BTA", resp.Movers[1].Ticker)
	assert.Equal(t, -2.0, resp.Movers[1].Change)
	assert.Equal(t, "CDE", resp.Movers[2].Ticker)

	limited := svc.TopMovers(context.Background(), w, 1)
	assert.Len(t, limited.Movers, 1)
}

func TestTopMovers_NameFromFirstDataset(t *testing.T) {
	svc := NewComparisonService(time.UTC)
	older := snapshotDataset("20250813", map[string]float64{"ACM": 1.0})
	newer := snapshotDataset("20250814", map[string]float64{"ACM": 2.0})
	newer.Records[0].(*models.SnapshotRecord).Name = "ACME RENAMED (ACM)"

	resp := svc.TopMovers(context.Background(), windowOf(t, 5, older, newer), 0)
	require.Len(t, resp.Movers, 1)
	assert.Equal(t, "ACM LTD (ACM)", resp.Movers[0].Name)
	assert.Equal(t, 2.0, resp.Movers[0].Latest)
}

func TestTickerTrend_WeekOverWeek(t *testing.T) {
	svc := NewComparisonService(time.UTC)
	w := windowOf(t, 5,
		snapshotDataset("20250810", map[string]float64{"ACM": 5.0}),
		snapshotDataset("20250817", map[string]float64{"ACM": 7.5}),
	)

	trend, err := svc.TickerTrend(context.Background(), w, "ACM")
	require.NoError(t, err)
	require.Len(t, trend.Changes, 1)
	assert.Equal(t, models.PeriodChange{
		From:          "10/08/2025",
		To:            "17/08/2025",
		Change:        2.5,
		ChangePercent: 50,
		FromValue:     5.0,
		ToValue:       7.5,
	}, trend.Changes[0])
}

func TestTopMovers_CapsAtTwenty(t *testing.T) {
	svc := NewComparisonService(time.UTC)
	first := map[string]float64{}
	second := map[string]float64{}
	for i := 0; i < 30; i++ {
		ticker := string(rune('A'+i/26)) + string(rune('A'+i%26)) + "X"
		first[ticker] = 1
		second[ticker] = 1 + float64(i)/10
	}
	w := windowOf(t, 5, snapshotDataset("20250814", first), snapshotDataset("20250815", second))

	resp := svc.TopMovers(context.Background(), w, 100)
	assert.Len(t, resp.Movers, DefaultTopMovers)
	assert.Equal(t, "BDX", resp.Movers[0].Ticker, "largest change ranks first")
}

func TestTopShorted(t *testing.T) {
	svc := NewComparisonService(time.UTC)
	ds := snapshotDataset("20250815", map[string]float64{
		"ACM": 25.0,
		"BTA": 12.0,
		"CDE": 12.0,
		"DEF": 3.0,
		"ZRO": 0,
	})

	resp := svc.TopShorted(context.Background(), ds, 0)
	assert.Equal(t, "20250815", resp.ReportDate)
	require.Len(t, resp.Stocks, 4, "zero short interest is excluded")

	assert.Equal(t, "ACM", resp.Stocks[0].Ticker)
	assert.Equal(t, 1, resp.Stocks[0].Rank)
	assert.True(t, resp.Stocks[0].IsVeryHighShort)
	assert.True(t, resp.Stocks[0].IsHighShort)

	assert.Equal(t, "BTA", resp.Stocks[1].Ticker)
	assert.Equal(t, "CDE", resp.Stocks[2].Ticker)
	assert.True(t, resp.Stocks[1].IsHighShort)
	assert.False(t, resp.Stocks[1].IsVeryHighShort)
	assert.Equal(t, 4, resp.Stocks[3].Rank)

	assert.Equal(t, 1, resp.VeryHighCount)
	assert.Equal(t, 2, resp.HighCount)

	top2 := svc.TopShorted(context.Background(), ds, 2)
	assert.Len(t, top2.Stocks, 2)
}

func TestTopShorted_TimeSeriesUsesLatestValue(t *testing.T) {
	svc := NewComparisonService(time.UTC)
	ds := &models.ReportDataset{
		Date: "20250815",
		Records: []models.SecurityRecord{
			&models.TimeSeriesRecord{
				Name:   "ACME LTD (ACM)",
				Ticker: "ACM",
				Positions: map[models.Date]float64{
					{Year: 2025, Month: time.August, Day: 14}: 30,
					{Year: 2025, Month: time.August, Day: 15}: 11,
				},
			},
		},
	}

	resp := svc.TopShorted(context.Background(), ds, 0)
	require.Len(t, resp.Stocks, 1)
	assert.Equal(t, 11.0, resp.Stocks[0].Percentage)
	assert.Equal(t, 0, resp.VeryHighCount)
	assert.Equal(t, 1, resp.HighCount)
}

func TestStockHistory(t *testing.T) {
	svc := NewComparisonService(time.UTC)
	svc.now = func() time.Time { return time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC) }

	positions := map[models.Date]float64{}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		// One observation per month, January to August.
		positions[models.DateOf(start.AddDate(0, i, 0))] = float64(i)
	}
	rec := &models.TimeSeriesRecord{Name: "ACME LTD (ACM)", Ticker: "ACM", Positions: positions}

	all := svc.StockHistory(rec, RangeAll)
	require.Len(t, all, 8)
	assert.Equal(t, "01-Aug-2025", all[0].Label)

	month := svc.StockHistory(rec, RangeOneMonth)
	require.Len(t, month, 1)
	assert.Equal(t, 7.0, month[0].Percentage)

	quarter := svc.StockHistory(rec, RangeQuarter)
	assert.Len(t, quarter, 3) // Jun, Jul, Aug

	year := svc.StockHistory(rec, RangeYear)
	assert.Len(t, year, 8)
}

func TestStockHistory_LimitsUnrangedHistory(t *testing.T) {
	svc := NewComparisonService(time.UTC)
	positions := map[models.Date]float64{}
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		positions[models.DateOf(start.AddDate(0, 0, i))] = float64(i)
	}
	rec := &models.TimeSeriesRecord{Name: "ACME LTD (ACM)", Ticker: "ACM", Positions: positions}

	got := svc.StockHistory(rec, RangeAll)
	require.Len(t, got, HistoryLimit)
	assert.Equal(t, 14.0, got[0].Percentage)
}

func TestParseTimeRange(t *testing.T) {
	testCases := []struct {
		input    string
		expected TimeRange
	}{
		{"", RangeAll},
		{"1m", RangeOneMonth},
		{"1 month", RangeOneMonth},
		{"3 Months", RangeQuarter},
		{"12m", RangeYear},
		{"3y", RangeThreeYear},
	}
	for _, tc := range testCases {
		got, err := ParseTimeRange(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, got)
	}

	_, err := ParseTimeRange("forever")
	assert.True(t, errors.Is(err, ErrInvalidTimeRange))
}
