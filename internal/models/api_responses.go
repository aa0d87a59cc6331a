package models

import (
	"time"
)

// SecurityRecordDTO is the wire form of a SecurityRecord.
// Fields that do not exist for a layout are omitted rather than zero-filled.
type SecurityRecordDTO struct {
	Name           string           `json:"name"`
	Ticker         string           `json:"ticker"`
	IsSnapshot     bool             `json:"isSnapshot"`
	ShortPositions *int64           `json:"shortPositions,omitempty"`
	TotalIssue     *int64           `json:"totalIssue,omitempty"`
	Percentage     *float64         `json:"percentage,omitempty"`
	ReportDate     *Date            `json:"reportDate,omitempty"`
	Positions      map[Date]float64 `json:"positions"`
}

// ToDTO converts a record to its wire form.
func ToDTO(r SecurityRecord) SecurityRecordDTO {
	dto := SecurityRecordDTO{
		Name:       r.RecordName(),
		Ticker:     r.RecordTicker(),
		IsSnapshot: r.IsSnapshot(),
		Positions:  r.DatedPercentages(),
	}
	if s, ok := r.(*SnapshotRecord); ok {
		shortPositions, totalIssue, pct, day := s.ShortPositions, s.TotalIssue, s.Percentage, s.ReportDate
		dto.ShortPositions = &shortPositions
		dto.TotalIssue = &totalIssue
		dto.Percentage = &pct
		dto.ReportDate = &day
	}
	return dto
}

// ToDTOs converts a slice of records.
func ToDTOs(records []SecurityRecord) []SecurityRecordDTO {
	out := make([]SecurityRecordDTO, len(records))
	for i, r := range records {
		out[i] = ToDTO(r)
	}
	return out
}

// FetchSpecificRequest is the body of POST /api/fetch-specific-data
type FetchSpecificRequest struct {
	URL string `json:"url" binding:"required"`
}

// FetchDateRequest is the body of POST /api/fetch-date
type FetchDateRequest struct {
	Date string `json:"date" binding:"required"`
}

// ReportResponse is returned by the fetch endpoints
type ReportResponse struct {
	Data     []SecurityRecordDTO `json:"data"`
	Metadata *ReportMetadata     `json:"metadata,omitempty"`
	Warnings []Warning           `json:"warnings,omitempty"`
}

// WindowResponse describes the session's loaded report dates
type WindowResponse struct {
	SessionID  string         `json:"sessionId"`
	Capacity   int            `json:"capacity"`
	AutoLoaded bool           `json:"autoLoaded"`
	Dates      []LoadedReport `json:"dates"`
	Tickers    []string       `json:"tickers"`
}

// LoadedReport is one dataset held in a session window
type LoadedReport struct {
	Date        string    `json:"date"`
	Label       string    `json:"label"`
	SourceURL   string    `json:"csvUrl,omitempty"`
	RecordCount int       `json:"totalStocks"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// TrendPoint is one ticker observation in the comparison view
type TrendPoint struct {
	Date           string  `json:"date"`
	FormattedDate  string  `json:"formattedDate"`
	Percentage     float64 `json:"percentage"`
	ShortPositions *int64  `json:"shortPositions,omitempty"`
	TotalIssue     *int64  `json:"totalIssue,omitempty"`
}

// PeriodChange is the movement between two adjacent report dates
type PeriodChange struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	FromValue     float64 `json:"fromValue"`
	ToValue       float64 `json:"toValue"`
}

// TickerTrend is the per-ticker comparison across the window
type TickerTrend struct {
	Ticker     string         `json:"ticker"`
	StockName  string         `json:"stockName"`
	DataPoints []TrendPoint   `json:"dataPoints"`
	Changes    []PeriodChange `json:"changes"`
}

// Mover is one entry of the top movers ranking
type Mover struct {
	Ticker string  `json:"ticker"`
	Name   string  `json:"name"`
	Change float64 `json:"change"`
	Latest float64 `json:"latest"`
}

// TopMoversResponse is returned by GET /api/top-movers
type TopMoversResponse struct {
	Dates  []string `json:"dates"`
	Movers []Mover  `json:"movers"`
}

// ShortedStock is one entry of the most shorted ranking
type ShortedStock struct {
	Rank            int     `json:"rank"`
	Ticker          string  `json:"ticker"`
	Name            string  `json:"name"`
	Percentage      float64 `json:"percentage"`
	ShortPositions  int64   `json:"shortPositions"`
	TotalIssue      int64   `json:"totalIssue"`
	IsHighShort     bool    `json:"isHighShort"`
	IsVeryHighShort bool    `json:"isVeryHighShort"`
}

// TopShortedResponse is returned by GET /api/top-shorted
type TopShortedResponse struct {
	ReportDate    string         `json:"reportDate"`
	Stocks        []ShortedStock `json:"stocks"`
	VeryHighCount int            `json:"veryHighCount"` // > 20%
	HighCount     int            `json:"highCount"`     // > 10% and <= 20%
}

// StockResponse is returned by GET /api/stocks/:ticker
type StockResponse struct {
	ReportDate string            `json:"reportDate"`
	Record     SecurityRecordDTO `json:"record"`
	History    []DatedPercentage `json:"history"`
}

// ReportDateOption is a candidate report date for the date picker
type ReportDateOption struct {
	Date   string `json:"date"`
	Label  string `json:"label"`
	URL    string `json:"csvUrl"`
	Loaded bool   `json:"loaded"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
