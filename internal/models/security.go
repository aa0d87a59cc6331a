package models

import (
	"sort"
	"time"
)

// UnknownReportDate is used when a report date cannot be derived from its source URL.
const UnknownReportDate = "Unknown"

// SecurityRecord is one security's short position state as read from a report.
// It is implemented by SnapshotRecord and TimeSeriesRecord only.
type SecurityRecord interface {
	RecordName() string
	RecordTicker() string
	IsSnapshot() bool
	// DatedPercentages returns the short percentage keyed by the day it was reported.
	DatedPercentages() map[Date]float64
	// LatestPercentage returns the most recent dated percentage.
	LatestPercentage() (Date, float64, bool)

	isSecurityRecord()
}

// SnapshotRecord comes from the single-day layout
// (Product, Product Code, Reported Short Positions, Total Product in Issue, % of Total).
type SnapshotRecord struct {
	Name           string
	Ticker         string
	ShortPositions int64
	TotalIssue     int64
	Percentage     float64 // as reported, not recomputed
	ReportDate     Date    // day the report was fetched
}

func (r *SnapshotRecord) RecordName() string   { return r.Name }
func (r *SnapshotRecord) RecordTicker() string { return r.Ticker }
func (r *SnapshotRecord) IsSnapshot() bool     { return true }
func (r *SnapshotRecord) isSecurityRecord()    {}

func (r *SnapshotRecord) DatedPercentages() map[Date]float64 {
	return map[Date]float64{r.ReportDate: r.Percentage}
}

func (r *SnapshotRecord) LatestPercentage() (Date, float64, bool) {
	return r.ReportDate, r.Percentage, true
}

// TimeSeriesRecord comes from the multi-date layout, one percentage per report day.
// It has no short position or issue counts.
type TimeSeriesRecord struct {
	Name      string
	Ticker    string
	Positions map[Date]float64
}

func (r *TimeSeriesRecord) RecordName() string   { return r.Name }
func (r *TimeSeriesRecord) RecordTicker() string { return r.Ticker }
func (r *TimeSeriesRecord) IsSnapshot() bool     { return false }
func (r *TimeSeriesRecord) isSecurityRecord()    {}

func (r *TimeSeriesRecord) DatedPercentages() map[Date]float64 {
	out := make(map[Date]float64, len(r.Positions))
	for d, v := range r.Positions {
		out[d] = v
	}
	return out
}

func (r *TimeSeriesRecord) LatestPercentage() (Date, float64, bool) {
	var latest Date
	found := false
	for d := range r.Positions {
		if !found || d.After(latest) {
			latest = d
			found = true
		}
	}
	if !found {
		return Date{}, 0, false
	}
	return latest, r.Positions[latest], true
}

// DatedPercentage is one (day, percentage) observation.
type DatedPercentage struct {
	Date       Date    `json:"date"`
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
}

// SortedPercentages returns a record's observations newest first.
func SortedPercentages(r SecurityRecord) []DatedPercentage {
	dated := r.DatedPercentages()
	out := make([]DatedPercentage, 0, len(dated))
	for d, v := range dated {
		out = append(out, DatedPercentage{Date: d, Label: d.Display(), Percentage: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// ReportMetadata describes where a dataset came from.
type ReportMetadata struct {
	ReportDate  string    `json:"reportDate"`
	SourceURL   string    `json:"csvUrl"`
	RecordCount int       `json:"totalStocks"`
	FetchedAt   time.Time `json:"fetchedAt"`
	AutoFetched bool      `json:"autoFetched,omitempty"`
}

// ReportDataset is one fetched and parsed report. It is not modified after creation.
type ReportDataset struct {
	Date     string // YYYYMMDD, or UnknownReportDate
	Records  []SecurityRecord
	Metadata ReportMetadata
}

// Find returns the record for ticker, or nil.
func (d *ReportDataset) Find(ticker string) SecurityRecord {
	for _, r := range d.Records {
		if r.RecordTicker() == ticker {
			return r
		}
	}
	return nil
}
