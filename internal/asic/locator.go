package asic

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/epeers/shortpositions/internal/util"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var reportDateRE = regexp.MustCompile(`RR(\d{8})-001`)

// Source is the subset of Client the locator needs.
type Source interface {
	FetchLandingPage(ctx context.Context) ([]byte, error)
	Exists(ctx context.Context, csvURL string) (bool, error)
}

// Locator resolves report CSV URLs, either by scraping the landing page or by
// probing date-based URLs.
type Locator struct {
	source      Source
	downloadURL string
	location    *time.Location
	probeDays   int
	parallel    bool
	now         func() time.Time
}

// LocatorOption configures a Locator
type LocatorOption func(*Locator)

// WithProbeDays sets how many calendar days the fallback probe walks back over
func WithProbeDays(days int) LocatorOption {
	return func(l *Locator) {
		l.probeDays = days
	}
}

// WithParallelProbe probes all candidate dates concurrently
func WithParallelProbe(parallel bool) LocatorOption {
	return func(l *Locator) {
		l.parallel = parallel
	}
}

// WithLocation sets the timezone used to decide what "today" is
func WithLocation(loc *time.Location) LocatorOption {
	return func(l *Locator) {
		l.location = loc
	}
}

// WithClock overrides time.Now (for testing)
func WithClock(now func() time.Time) LocatorOption {
	return func(l *Locator) {
		l.now = now
	}
}

// NewLocator creates a Locator for reports hosted under downloadURL.
func NewLocator(source Source, downloadURL string, opts ...LocatorOption) *Locator {
	l := &Locator{
		source:      source,
		downloadURL: strings.TrimRight(downloadURL, "/"),
		location:    time.UTC,
		probeDays:   10,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ForDate builds the report URL for a YYYYMMDD date. It does not check that
// the date is a business day or that the file exists.
func (l *Locator) ForDate(date string) string {
	return ReportURL(l.downloadURL, date)
}

// ReportURL builds {base}/short-selling/RR{date}-001-SSDailyAggShortPos.csv
func ReportURL(base, date string) string {
	return fmt.Sprintf("%s/%s/RR%s-001-%s", strings.TrimRight(base, "/"), ReportPathSegment, date, ReportFileSuffix)
}

// ReportDateFromURL extracts the YYYYMMDD report date from a report URL.
func ReportDateFromURL(u string) (string, bool) {
	m := reportDateRE.FindStringSubmatch(u)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Latest finds the most recent report URL. The landing page is scraped first;
// if it links no report, recent weekdays are probed from most to least recent.
func (l *Locator) Latest(ctx context.Context) (*Located, error) {
	html, err := l.source.FetchLandingPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the official page: %w", err)
	}

	links, err := ExtractCSVLinks(html, l.downloadURL)
	if err != nil {
		log.Warnf("Failed to parse landing page: %v", err)
	}
	log.Debugf("Found CSV links: %v", links)
	if len(links) > 0 {
		return &Located{URL: links[0], Method: LocatedByScrape}, nil
	}

	log.Info("No CSV links found on landing page, probing recent dates")
	u, err := l.probe(ctx)
	if err != nil {
		return nil, err
	}
	return &Located{URL: u, Method: LocatedByProbe}, nil
}

// linkPatterns are tried in order; the first that accepts at least one link wins.
func linkPatterns(downloadURL string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(downloadURL) + `/short-selling/.*\.csv$`),
		regexp.MustCompile(`(?i)^/short-selling/.*\.csv$`),
		regexp.MustCompile(`(?i)\.csv$`),
	}
}

// ExtractCSVLinks returns the report links found in the landing page markup,
// in document order, made absolute against downloadURL.
func ExtractCSVLinks(html []byte, downloadURL string) ([]string, error) {
	downloadURL = strings.TrimRight(downloadURL, "/")

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse landing page HTML: %w", err)
	}

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			hrefs = append(hrefs, strings.TrimSpace(href))
		}
	})

	for _, pattern := range linkPatterns(downloadURL) {
		var links []string
		for _, href := range hrefs {
			if !pattern.MatchString(href) {
				continue
			}
			link := href
			if strings.HasPrefix(link, "/") {
				link = downloadURL + link
			}
			if strings.Contains(link, ReportFileSuffix) || strings.Contains(link, ReportPathSegment) {
				links = append(links, link)
			}
		}
		if len(links) > 0 {
			return links, nil
		}
	}

	return nil, nil
}

// probe checks recent weekdays for an existing report, most recent first.
func (l *Locator) probe(ctx context.Context) (string, error) {
	days := util.RecentBusinessDays(l.now(), l.location, l.probeDays)
	candidates := make([]string, len(days))
	for i, d := range days {
		candidates[i] = l.ForDate(d.Format("20060102"))
	}

	if l.parallel {
		return l.probeParallel(ctx, candidates)
	}

	for _, u := range candidates {
		ok, err := l.source.Exists(ctx, u)
		if err != nil {
			log.Debugf("Probe %s failed: %v", u, err)
			continue
		}
		if ok {
			log.Infof("Found working fallback URL: %s", u)
			return u, nil
		}
	}

	return "", fmt.Errorf("could not find any CSV links on the official page or in the last %d days: %w", l.probeDays, ErrSourceNotFound)
}

// probeParallel probes every candidate at once. Completion order is ignored:
// the most recent date that exists wins, as in the sequential walk.
func (l *Locator) probeParallel(ctx context.Context, candidates []string) (string, error) {
	found := make([]bool, len(candidates))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range candidates {
		g.Go(func() error {
			ok, err := l.source.Exists(gctx, u)
			if err != nil {
				log.Debugf("Probe %s failed: %v", u, err)
				return nil // non-fatal
			}
			mu.Lock()
			found[i] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for i, ok := range found {
		if ok {
			log.Infof("Found working fallback URL: %s", candidates[i])
			return candidates[i], nil
		}
	}

	return "", fmt.Errorf("could not find any CSV links on the official page or in the last %d days: %w", l.probeDays, ErrSourceNotFound)
}
