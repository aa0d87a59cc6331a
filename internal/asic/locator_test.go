package asic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const downloadBase = "https://download.example.test"

type fakeSource struct {
	mu       sync.Mutex
	landing  string
	landErr  error
	existing map[string]bool
	probed   []string
}

func (f *fakeSource) FetchLandingPage(context.Context) ([]byte, error) {
	if f.landErr != nil {
		return nil, f.landErr
	}
	return []byte(f.landing), nil
}

func (f *fakeSource) Exists(_ context.Context, csvURL string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probed = append(f.probed, csvURL)
	return f.existing[csvURL], nil
}

// Wednesday 13/08/2025, midnight UTC.
var wednesday = time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC)

func newTestLocator(src Source, opts ...LocatorOption) *Locator {
	opts = append([]LocatorOption{WithClock(func() time.Time { return wednesday })}, opts...)
	return NewLocator(src, downloadBase+"/", opts...)
}

func TestForDateAndReportDateFromURL(t *testing.T) {
	l := newTestLocator(&fakeSource{})

	u := l.ForDate("20250814")
	assert.Equal(t, downloadBase+"/short-selling/RR20250814-001-SSDailyAggShortPos.csv", u)

	date, ok := ReportDateFromURL(u)
	assert.True(t, ok)
	assert.Equal(t, "20250814", date)

	_, ok = ReportDateFromURL(downloadBase + "/short-selling/latest.csv")
	assert.False(t, ok)
}

func TestExtractCSVLinks(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		expected []string
	}{
		{
			name: "absolute links win over relative",
			html: `<a href="/short-selling/RR20250812-001-SSDailyAggShortPos.csv">old</a>
				<a href="https://download.example.test/short-selling/RR20250813-001-SSDailyAggShortPos.csv">new</a>`,
			expected: []string{downloadBase + "/short-selling/RR20250813-001-SSDailyAggShortPos.csv"},
		},
		{
			name:     "relative links are made absolute",
			html:     `<p><a href="/short-selling/RR20250812-001-SSDailyAggShortPos.csv">csv</a></p>`,
			expected: []string{downloadBase + "/short-selling/RR20250812-001-SSDailyAggShortPos.csv"},
		},
		{
			name:     "any csv naming the report",
			html:     `<a href="https://mirror.example.test/files/RR20250812-001-SSDailyAggShortPos.csv">mirror</a>`,
			expected: []string{"https://mirror.example.test/files/RR20250812-001-SSDailyAggShortPos.csv"},
		},
		{
			name:     "unrelated csv links are ignored",
			html:     `<a href="/reports/holidays.csv">holidays</a><a href="/page">page</a>`,
			expected: nil,
		},
		{
			name:     "no links",
			html:     `<html><body>maintenance</body></html>`,
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			links, err := ExtractCSVLinks([]byte(tc.html), downloadBase)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, links)
		})
	}
}

func TestLatest_Scrape(t *testing.T) {
	src := &fakeSource{landing: `<a href="/short-selling/RR20250812-001-SSDailyAggShortPos.csv">csv</a>`}

	located, err := newTestLocator(src).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LocatedByScrape, located.Method)
	assert.Equal(t, downloadBase+"/short-selling/RR20250812-001-SSDailyAggShortPos.csv", located.URL)
	assert.Empty(t, src.probed)
}

func TestLatest_ProbeFallback(t *testing.T) {
	src := &fakeSource{
		landing: `<html></html>`,
		existing: map[string]bool{
			downloadBase + "/short-selling/RR20250811-001-SSDailyAggShortPos.csv": true,
			downloadBase + "/short-selling/RR20250808-001-SSDailyAggShortPos.csv": true,
		},
	}

	located, err := newTestLocator(src).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LocatedByProbe, located.Method)
	assert.Equal(t, downloadBase+"/short-selling/RR20250811-001-SSDailyAggShortPos.csv", located.URL)
	assert.Equal(t, []string{
		downloadBase + "/short-selling/RR20250813-001-SSDailyAggShortPos.csv",
		downloadBase + "/short-selling/RR20250812-001-SSDailyAggShortPos.csv",
		downloadBase + "/short-selling/RR20250811-001-SSDailyAggShortPos.csv",
	}, src.probed)
}

func TestLatest_ParallelProbePicksMostRecent(t *testing.T) {
	src := &fakeSource{
		landing: `<html></html>`,
		existing: map[string]bool{
			downloadBase + "/short-selling/RR20250811-001-SSDailyAggShortPos.csv": true,
			downloadBase + "/short-selling/RR20250806-001-SSDailyAggShortPos.csv": true,
		},
	}

	located, err := newTestLocator(src, WithParallelProbe(true)).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, downloadBase+"/short-selling/RR20250811-001-SSDailyAggShortPos.csv", located.URL)
	// 10 calendar days back from Wednesday cover 8 weekdays.
	assert.Len(t, src.probed, 8)
}

func TestLatest_SkipsWeekends(t *testing.T) {
	src := &fakeSource{landing: `<html></html>`}

	_, err := newTestLocator(src, WithProbeDays(10)).Latest(context.Background())
	assert.True(t, errors.Is(err, ErrSourceNotFound))

	for _, u := range src.probed {
		date, ok := ReportDateFromURL(u)
		require.True(t, ok)
		d, err := time.Parse("20060102", date)
		require.NoError(t, err)
		assert.NotEqual(t, time.Saturday, d.Weekday(), u)
		assert.NotEqual(t, time.Sunday, d.Weekday(), u)
	}
	assert.Len(t, src.probed, 8)
}

func TestLatest_LandingFailure(t *testing.T) {
	src := &fakeSource{landErr: &FetchError{URL: "landing", StatusCode: 503, Reason: "Service Unavailable"}}

	_, err := newTestLocator(src).Latest(context.Background())
	assert.True(t, errors.Is(err, ErrFetchFailed))
	assert.False(t, errors.Is(err, ErrSourceNotFound))
	assert.Empty(t, src.probed, "a failed landing page is not a reason to probe")
}
