package asic

import (
	"errors"
	"fmt"
)

const (
	// ReportFileSuffix is the fixed tail of every daily aggregated short position CSV.
	ReportFileSuffix = "SSDailyAggShortPos.csv"
	// ReportPathSegment is the download path every report lives under.
	ReportPathSegment = "short-selling"

	// MinReportBytes is the smallest body accepted as a real report.
	MinReportBytes = 100
	// MaxReportBytes caps a downloaded report; real files are a few hundred KB.
	MaxReportBytes = 32 << 20

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

var (
	// ErrSourceNotFound means no CSV link was discoverable and every fallback probe failed.
	ErrSourceNotFound = errors.New("source not found")
	// ErrFetchFailed is the kind of every FetchError.
	ErrFetchFailed = errors.New("fetch failed")
)

// FetchError describes a failed call to the regulator: a non-success status,
// an undersized body, or a transport failure (StatusCode 0).
type FetchError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fetch %s failed: %s", e.URL, e.Reason)
	}
	return fmt.Sprintf("fetch %s failed: %d %s", e.URL, e.StatusCode, e.Reason)
}

// Unwrap lets errors.Is(err, ErrFetchFailed) match.
func (e *FetchError) Unwrap() error {
	return ErrFetchFailed
}

// LocateMethod records how a report URL was found.
type LocateMethod string

const (
	LocatedByScrape LocateMethod = "scrape"
	LocatedByProbe  LocateMethod = "probe"
)

// Located is the result of a latest-report lookup.
type Located struct {
	URL    string
	Method LocateMethod
}
