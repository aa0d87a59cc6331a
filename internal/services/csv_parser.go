package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/epeers/shortpositions/internal/metrics"
	"github.com/epeers/shortpositions/internal/models"
	log "github.com/sirupsen/logrus"
)

// CSVFormat identifies which of the two known report layouts a CSV uses
type CSVFormat string

const (
	// FormatSnapshot is the single-day layout:
	// Product,Product Code,Reported Short Positions,Total Product in Issue,% of Total
	FormatSnapshot CSVFormat = "snapshot"
	// FormatTimeSeries is the multi-day layout: name,ticker,<DD/MM/YYYY>...
	FormatTimeSeries CSVFormat = "timeseries"
)

var lineBreakRE = regexp.MustCompile(`\r?\n`)

// CSVParser turns report text into SecurityRecords.
type CSVParser struct {
	location *time.Location
	now      func() time.Time
}

// NewCSVParser creates a parser. Snapshot rows are dated with the current day in loc.
// A nil now uses time.Now.
func NewCSVParser(loc *time.Location, now func() time.Time) *CSVParser {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &CSVParser{location: loc, now: now}
}

// DetectFormat classifies a header row. The header is the snapshot layout when it
// has both a product name column and a product code column.
func DetectFormat(header []string) CSVFormat {
	if findColumn(header, isProductNameColumn) >= 0 && findColumn(header, containsFold("product code")) >= 0 {
		return FormatSnapshot
	}
	return FormatTimeSeries
}

// Parse reads a report. It never fails: structural problems produce an empty
// slice, and row-level problems drop the row. Causes are reported as warnings
// on ctx and logged.
func (p *CSVParser) Parse(ctx context.Context, csvText string) []models.SecurityRecord {
	defer TrackTime("ParseCSV", time.Now())

	csvText = strings.TrimPrefix(csvText, "\ufeff")
	lines := lineBreakRE.Split(csvText, -1)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		log.Warn("No header line found in CSV")
		return []models.SecurityRecord{}
	}

	// Fields never contain embedded commas or quoting in these reports.
	header := strings.Split(lines[0], ",")
	format := DetectFormat(header)
	log.Debugf("CSV has %d lines, format %s", len(lines), format)

	var records []models.SecurityRecord
	if format == FormatSnapshot {
		records = p.parseSnapshot(ctx, header, lines[1:])
	} else {
		records = p.parseTimeSeries(ctx, header, lines[1:])
	}

	metrics.ParsedRecords.WithLabelValues(string(format)).Observe(float64(len(records)))
	log.Debugf("Parsed %d %s records", len(records), format)
	return records
}

func (p *CSVParser) parseSnapshot(ctx context.Context, header []string, rows []string) []models.SecurityRecord {
	productIdx := findColumn(header, isProductNameColumn)
	codeIdx := findColumn(header, containsFold("product code"))
	shortIdx := findColumn(header, containsFold("reported short positions"))
	issueIdx := findColumn(header, containsFold("total product in issue"))
	pctIdx := findColumn(header, containsFold("% of total"))

	for _, c := range []struct {
		name string
		idx  int
	}{
		{"reported short positions", shortIdx},
		{"total product in issue", issueIdx},
		{"% of total", pctIdx},
	} {
		if c.idx < 0 {
			Warnf(ctx, models.WarnColumnNotFound, "snapshot column %q not found in header", c.name)
		}
	}

	today := models.DateOf(p.now().In(p.location))
	records := []models.SecurityRecord{}
	byTicker := make(map[string]int)
	dropped := 0

	for _, raw := range rows {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		cols := strings.Split(line, ",")
		if len(cols) < 3 {
			dropped++
			continue
		}

		name := column(cols, productIdx)
		ticker := column(cols, codeIdx)
		pctStr := column(cols, pctIdx)
		if name == "" || ticker == "" || pctStr == "" {
			dropped++
			continue
		}
		pct, ok := parsePercentage(pctStr)
		if !ok {
			dropped++
			continue
		}

		rec := &models.SnapshotRecord{
			Name:           fmt.Sprintf("%s (%s)", name, ticker),
			Ticker:         ticker,
			ShortPositions: parseCount(column(cols, shortIdx)),
			TotalIssue:     parseCount(column(cols, issueIdx)),
			Percentage:     pct,
			ReportDate:     today,
		}

		if i, dup := byTicker[ticker]; dup {
			Warnf(ctx, models.WarnDuplicateTicker, "ticker %s appears more than once; keeping the later row", ticker)
			records[i] = rec
			continue
		}
		byTicker[ticker] = len(records)
		records = append(records, rec)
	}

	if dropped > 0 {
		Warnf(ctx, models.WarnRowDropped, "%d snapshot rows dropped for missing name, ticker or percentage", dropped)
	}
	return records
}

type dateColumn struct {
	index int
	date  models.Date
}

func (p *CSVParser) parseTimeSeries(ctx context.Context, header []string, rows []string) []models.SecurityRecord {
	var dateCols []dateColumn
	for j := 2; j < len(header); j++ {
		label := strings.TrimSpace(header[j])
		if label == "" {
			continue
		}
		d, err := models.ParseDate(label)
		if err != nil {
			Warnf(ctx, models.WarnInvalidDateColumn, "column %d header %q is not a DD/MM/YYYY date", j+1, label)
			continue
		}
		dateCols = append(dateCols, dateColumn{index: j, date: d})
	}

	var ordered []*models.TimeSeriesRecord
	byKey := make(map[string]*models.TimeSeriesRecord)
	dropped := 0

	for _, raw := range rows {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		cols := strings.Split(line, ",")
		if len(cols) < 3 {
			dropped++
			continue
		}

		name := strings.TrimSpace(cols[0])
		ticker := strings.TrimSpace(cols[1])
		if name == "" || ticker == "" {
			dropped++
			continue
		}

		// Repeated issuer rows merge into one record; later values win.
		key := fmt.Sprintf("%s (%s)", name, ticker)
		rec, exists := byKey[key]
		if !exists {
			rec = &models.TimeSeriesRecord{
				Name:      key,
				Ticker:    ticker,
				Positions: make(map[models.Date]float64),
			}
			byKey[key] = rec
			ordered = append(ordered, rec)
		}

		for _, dc := range dateCols {
			if dc.index >= len(cols) {
				break
			}
			if v, ok := parsePercentage(cols[dc.index]); ok {
				rec.Positions[dc.date] = v
			}
		}
	}

	records := []models.SecurityRecord{}
	for _, rec := range ordered {
		if len(rec.Positions) == 0 {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		Warnf(ctx, models.WarnRowDropped, "%d time-series rows dropped for missing name, ticker or percentage", dropped)
	}
	return records
}

func isProductNameColumn(col string) bool {
	c := strings.ToLower(strings.TrimSpace(col))
	return strings.Contains(c, "product") && !strings.Contains(c, "code")
}

func containsFold(substr string) func(string) bool {
	return func(col string) bool {
		return strings.Contains(strings.ToLower(strings.TrimSpace(col)), substr)
	}
}

// findColumn returns the first header index matching, or -1.
func findColumn(header []string, match func(string) bool) int {
	for i, col := range header {
		if match(col) {
			return i
		}
	}
	return -1
}

// column reads cols[idx] trimmed; unresolved or missing columns read as "".
func column(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[idx])
}

func parsePercentage(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseCount parses an integer that may carry thousands separators. Unparsable
// or negative values read as 0.
func parseCount(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
