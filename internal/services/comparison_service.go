package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/epeers/shortpositions/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTopMovers  = 20
	DefaultTopShorted = 50
	// HistoryLimit caps the per-stock table when no time range is requested.
	HistoryLimit = 10

	HighShortThreshold     = 10.0
	VeryHighShortThreshold = 20.0
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// TimeRange bounds the per-stock history relative to today.
type TimeRange string

const (
	RangeAll       TimeRange = ""
	RangeOneMonth  TimeRange = "1m"
	RangeQuarter   TimeRange = "3m"
	RangeYear      TimeRange = "12m"
	RangeThreeYear TimeRange = "3y"
)

// ParseTimeRange accepts the short range codes and the long labels
// ("1 month", "3 months", "12 months", "3 years").
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return RangeAll, nil
	case "1m", "1 month":
		return RangeOneMonth, nil
	case "3m", "3 months":
		return RangeQuarter, nil
	case "12m", "12 months", "1y":
		return RangeYear, nil
	case "3y", "3 years":
		return RangeThreeYear, nil
	}
	return RangeAll, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
}

// Start returns the earliest day included by the range, or the zero Date for RangeAll.
func (r TimeRange) Start(today time.Time) models.Date {
	switch r {
	case RangeOneMonth:
		return models.DateOf(today.AddDate(0, -1, 0))
	case RangeQuarter:
		return models.DateOf(today.AddDate(0, -3, 0))
	case RangeYear:
		return models.DateOf(today.AddDate(-1, 0, 0))
	case RangeThreeYear:
		return models.DateOf(today.AddDate(-3, 0, 0))
	}
	return models.Date{}
}

// ComparisonService derives trends and rankings from loaded reports.
type ComparisonService struct {
	location *time.Location
	now      func() time.Time
}

// NewComparisonService creates a new ComparisonService. Time ranges are
// evaluated against the current day in loc.
func NewComparisonService(loc *time.Location) *ComparisonService {
	if loc == nil {
		loc = time.UTC
	}
	return &ComparisonService{location: loc, now: time.Now}
}

// ResolvePercentage returns the figure a record is ranked by: the snapshot
// percentage, or the value on the most recent day of a time series.
func ResolvePercentage(r models.SecurityRecord) (float64, bool) {
	_, v, ok := r.LatestPercentage()
	return v, ok
}

// TickerTrend follows one ticker through every dataset in the window.
// It returns ErrInsufficientData when fewer than two datasets contain the ticker.
func (s *ComparisonService) TickerTrend(ctx context.Context, w *Window, ticker string) (*models.TickerTrend, error) {
	defer TrackTime("TickerTrend", time.Now())

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	trend := &models.TickerTrend{
		Ticker:     ticker,
		DataPoints: []models.TrendPoint{},
		Changes:    []models.PeriodChange{},
	}

	// Datasets are held oldest first, so points come out in date order.
	for _, ds := range w.Datasets() {
		rec := ds.Find(ticker)
		if rec == nil {
			continue
		}
		pct, ok := ResolvePercentage(rec)
		if !ok {
			continue
		}
		if trend.StockName == "" {
			trend.StockName = rec.RecordName()
		}

		point := models.TrendPoint{
			Date:          ds.Date,
			FormattedDate: models.FormatReportDate(ds.Date),
			Percentage:    pct,
		}
		if snap, ok := rec.(*models.SnapshotRecord); ok {
			shortPositions, totalIssue := snap.ShortPositions, snap.TotalIssue
			point.ShortPositions = &shortPositions
			point.TotalIssue = &totalIssue
		}
		trend.DataPoints = append(trend.DataPoints, point)
	}

	if len(trend.DataPoints) < 2 {
		return nil, fmt.Errorf("%w: ticker %s found in %d of %d loaded reports, need at least 2",
			ErrInsufficientData, ticker, len(trend.DataPoints), w.Len())
	}

	for i := 1; i < len(trend.DataPoints); i++ {
		prev, cur := trend.DataPoints[i-1], trend.DataPoints[i]
		change, changePct := periodDelta(prev.Percentage, cur.Percentage)
		trend.Changes = append(trend.Changes, models.PeriodChange{
			From:          prev.FormattedDate,
			To:            cur.FormattedDate,
			Change:        change,
			ChangePercent: changePct,
			FromValue:     prev.Percentage,
			ToValue:       cur.Percentage,
		})
	}

	log.Debugf("TickerTrend %s: %d points", ticker, len(trend.DataPoints))
	return trend, nil
}

// periodDelta computes cur-prev and the change relative to prev in percent.
// The relative change is 0 when prev is 0.
func periodDelta(prev, cur float64) (float64, float64) {
	p := decimal.NewFromFloat(prev)
	change := decimal.NewFromFloat(cur).Sub(p)
	if p.IsZero() {
		return change.InexactFloat64(), 0
	}
	return change.InexactFloat64(), change.Div(p).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// TopMovers ranks tickers present in at least two datasets by the absolute
// change between their first and last observation. Ties keep ticker order.
func (s *ComparisonService) TopMovers(ctx context.Context, w *Window, n int) *models.TopMoversResponse {
	defer TrackTime("TopMovers", time.Now())

	if n <= 0 || n > DefaultTopMovers {
		n = DefaultTopMovers
	}

	datasets := w.Datasets()
	movers := []models.Mover{}
	for _, ticker := range w.Tickers() {
		var first, last float64
		var name string
		seen := 0
		for _, ds := range datasets {
			rec := ds.Find(ticker)
			if rec == nil {
				continue
			}
			pct, ok := ResolvePercentage(rec)
			if !ok {
				continue
			}
			if seen == 0 {
				first = pct
				name = rec.RecordName()
			}
			last = pct
			seen++
		}
		if seen < 2 {
			continue
		}

		change, _ := periodDelta(first, last)
		movers = append(movers, models.Mover{
			Ticker: ticker,
			Name:   name,
			Change: change,
			Latest: last,
		})
	}

	// Tickers() is sorted, so a stable sort leaves equal moves in ticker order.
	sort.SliceStable(movers, func(i, j int) bool {
		return absFloat(movers[i].Change) > absFloat(movers[j].Change)
	})
	if len(movers) > n {
		movers = movers[:n]
	}

	return &models.TopMoversResponse{Dates: w.Dates(), Movers: movers}
}

// TopShorted ranks a dataset's securities by short percentage, highest first.
// Securities with no short interest are left out.
func (s *ComparisonService) TopShorted(ctx context.Context, ds *models.ReportDataset, n int) *models.TopShortedResponse {
	defer TrackTime("TopShorted", time.Now())

	if n <= 0 {
		n = DefaultTopShorted
	}

	resp := &models.TopShortedResponse{
		ReportDate: ds.Date,
		Stocks:     []models.ShortedStock{},
	}
	for _, rec := range ds.Records {
		pct, ok := ResolvePercentage(rec)
		if !ok || pct <= 0 {
			continue
		}
		stock := models.ShortedStock{
			Ticker:          rec.RecordTicker(),
			Name:            rec.RecordName(),
			Percentage:      pct,
			IsHighShort:     pct > HighShortThreshold,
			IsVeryHighShort: pct > VeryHighShortThreshold,
		}
		if snap, ok := rec.(*models.SnapshotRecord); ok {
			stock.ShortPositions = snap.ShortPositions
			stock.TotalIssue = snap.TotalIssue
		}
		resp.Stocks = append(resp.Stocks, stock)

		switch {
		case stock.IsVeryHighShort:
			resp.VeryHighCount++
		case stock.IsHighShort:
			resp.HighCount++
		}
	}

	sort.SliceStable(resp.Stocks, func(i, j int) bool {
		a, b := resp.Stocks[i], resp.Stocks[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		return a.Ticker < b.Ticker
	})
	if len(resp.Stocks) > n {
		resp.Stocks = resp.Stocks[:n]
	}
	for i := range resp.Stocks {
		resp.Stocks[i].Rank = i + 1
	}
	return resp
}

// StockHistory returns a record's observations newest first. With RangeAll the
// result is capped at HistoryLimit entries; otherwise every observation on or
// after the range start is returned. Snapshot records ignore the range.
func (s *ComparisonService) StockHistory(rec models.SecurityRecord, r TimeRange) []models.DatedPercentage {
	all := models.SortedPercentages(rec)
	if r == RangeAll || rec.IsSnapshot() {
		if len(all) > HistoryLimit {
			all = all[:HistoryLimit]
		}
		return all
	}

	start := r.Start(s.now().In(s.location))
	out := make([]models.DatedPercentage, 0, len(all))
	for _, dp := range all {
		if dp.Date.Before(start) {
			break
		}
		out = append(out, dp)
	}
	return out
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
