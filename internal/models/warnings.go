package models

// WarningCode categorizes warnings by subsystem.
// W1xxx = CSV parsing, W2xxx = source location, W3xxx = window.
type WarningCode string

const (
	WarnRowDropped        WarningCode = "W1001" // row missing name, ticker or percentage
	WarnColumnNotFound    WarningCode = "W1002" // snapshot header column could not be resolved
	WarnInvalidDateColumn WarningCode = "W1003" // time-series header label is not DD/MM/YYYY
	WarnDuplicateTicker   WarningCode = "W1004" // later snapshot row replaced an earlier one
	WarnFallbackURL       WarningCode = "W2001" // landing page had no CSV link, date probing used
	WarnReportDateUnknown WarningCode = "W2002" // report date not present in the source URL
	WarnDatasetEvicted    WarningCode = "W3001" // oldest dataset dropped to respect window capacity
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
