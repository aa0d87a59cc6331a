package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/epeers/shortpositions/internal/asic"
	"github.com/epeers/shortpositions/internal/cache"
	"github.com/epeers/shortpositions/internal/models"
	"github.com/epeers/shortpositions/internal/util"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidURL   = errors.New("invalid report URL")
	ErrInvalidDate  = errors.New("invalid report date")
	ErrParseFailure = errors.New("no valid data found in the CSV file")
)

// CSVFetcher downloads report text.
type CSVFetcher interface {
	FetchCSV(ctx context.Context, csvURL string) (string, error)
}

// ReportLocator finds report URLs.
type ReportLocator interface {
	Latest(ctx context.Context) (*asic.Located, error)
	ForDate(date string) string
}

// ReportService loads reports from the regulator or from uploaded text and
// turns them into datasets.
type ReportService struct {
	fetcher     CSVFetcher
	locator     ReportLocator
	cache       *cache.MemoryCache
	parser      *CSVParser
	downloadURL string
	location    *time.Location
	now         func() time.Time
}

// NewReportService creates a new ReportService. Reports must live on the
// host of downloadURL.
func NewReportService(
	fetcher CSVFetcher,
	locator ReportLocator,
	reportCache *cache.MemoryCache,
	parser *CSVParser,
	downloadURL string,
	loc *time.Location,
) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		fetcher:     fetcher,
		locator:     locator,
		cache:       reportCache,
		parser:      parser,
		downloadURL: strings.TrimRight(downloadURL, "/"),
		location:    loc,
		now:         time.Now,
	}
}

// FetchLatest locates and loads the most recent report.
func (s *ReportService) FetchLatest(ctx context.Context) (*models.ReportDataset, error) {
	defer TrackTime("FetchLatest", time.Now())

	csvURL, cached := s.cache.GetLatestURL()
	if !cached {
		located, err := s.locator.Latest(ctx)
		if err != nil {
			return nil, err
		}
		if located.Method == asic.LocatedByProbe {
			Warnf(ctx, models.WarnFallbackURL, "no report linked from the official page; using %s", located.URL)
		}
		csvURL = located.URL
		s.cache.SetLatestURL(csvURL)
	}
	log.Infof("Latest report URL: %s", csvURL)

	ds, err := s.load(ctx, csvURL, true)
	if err != nil && cached {
		// The regulator may have withdrawn the file; locate afresh next time.
		s.cache.InvalidateLatestURL()
	}
	return ds, err
}

// FetchURL loads the report at a caller supplied URL.
func (s *ReportService) FetchURL(ctx context.Context, csvURL string) (*models.ReportDataset, error) {
	defer TrackTime("FetchURL", time.Now())

	csvURL = strings.TrimSpace(csvURL)
	if err := s.ValidateReportURL(csvURL); err != nil {
		return nil, err
	}
	return s.load(ctx, csvURL, false)
}

// FetchDate loads the report for a YYYYMMDD date.
func (s *ReportService) FetchDate(ctx context.Context, date string) (*models.ReportDataset, error) {
	defer TrackTime("FetchDate", time.Now())

	if _, err := models.ParseCompactDate(date); err != nil {
		return nil, fmt.Errorf("%w: %q is not a YYYYMMDD date", ErrInvalidDate, date)
	}
	return s.load(ctx, s.locator.ForDate(date), false)
}

// ParseUpload parses uploaded report text. The date is optional; when empty
// the dataset's report date is UnknownReportDate.
func (s *ReportService) ParseUpload(ctx context.Context, csvText, date string) (*models.ReportDataset, error) {
	defer TrackTime("ParseUpload", time.Now())

	reportDate := models.UnknownReportDate
	if date = strings.TrimSpace(date); date != "" {
		if _, err := models.ParseCompactDate(date); err != nil {
			return nil, fmt.Errorf("%w: %q is not a YYYYMMDD date", ErrInvalidDate, date)
		}
		reportDate = date
	}

	records := s.parser.Parse(ctx, csvText)
	if len(records) == 0 {
		return nil, ErrParseFailure
	}

	return &models.ReportDataset{
		Date:    reportDate,
		Records: records,
		Metadata: models.ReportMetadata{
			ReportDate:  reportDate,
			RecordCount: len(records),
			FetchedAt:   s.now().UTC(),
		},
	}, nil
}

// ReportDates lists the report URLs for recent weekdays, most recent first.
func (s *ReportService) ReportDates(days int) []models.ReportDateOption {
	recent := recentReportDays(s.now(), s.location, days)
	out := make([]models.ReportDateOption, len(recent))
	for i, d := range recent {
		out[i] = models.ReportDateOption{
			Date:  d.Compact(),
			Label: d.Display(),
			URL:   s.locator.ForDate(d.Compact()),
		}
	}
	return out
}

// ValidateReportURL accepts only daily aggregate reports on the download host.
func (s *ReportService) ValidateReportURL(csvURL string) error {
	if csvURL == "" {
		return fmt.Errorf("%w: no URL provided", ErrInvalidURL)
	}
	u, err := url.Parse(csvURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	base, err := url.Parse(s.downloadURL)
	if err != nil {
		return fmt.Errorf("%w: bad download host %q", ErrInvalidURL, s.downloadURL)
	}
	if !strings.EqualFold(u.Host, base.Host) || !strings.HasSuffix(u.Path, asic.ReportFileSuffix) {
		return fmt.Errorf("%w: expected a %s link on %s", ErrInvalidURL, asic.ReportFileSuffix, base.Host)
	}
	return nil
}

// load fetches, parses and describes one report, going through the cache.
func (s *ReportService) load(ctx context.Context, csvURL string, auto bool) (*models.ReportDataset, error) {
	if ds, ok := s.cache.GetReport(csvURL); ok {
		log.Debugf("Report cache hit for %s", csvURL)
		return withAutoFetched(ds, auto), nil
	}

	text, err := s.fetcher.FetchCSV(ctx, csvURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CSV data: %w", err)
	}

	records := s.parser.Parse(ctx, text)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: the file format may have changed", ErrParseFailure)
	}

	reportDate, ok := asic.ReportDateFromURL(csvURL)
	if !ok {
		if auto {
			reportDate = models.DateOf(s.now().In(s.location)).Compact()
		} else {
			reportDate = models.UnknownReportDate
		}
		Warnf(ctx, models.WarnReportDateUnknown, "report date not found in %s; using %s", csvURL, reportDate)
	}

	ds := &models.ReportDataset{
		Date:    reportDate,
		Records: records,
		Metadata: models.ReportMetadata{
			ReportDate:  reportDate,
			SourceURL:   csvURL,
			RecordCount: len(records),
			FetchedAt:   s.now().UTC(),
		},
	}
	s.cache.SetReport(csvURL, ds)

	return withAutoFetched(ds, auto), nil
}

// withAutoFetched returns a shallow copy carrying the auto-fetch flag.
// Records are shared; datasets are never modified after creation.
func withAutoFetched(ds *models.ReportDataset, auto bool) *models.ReportDataset {
	out := *ds
	out.Metadata.AutoFetched = auto
	return &out
}

// recentReportDays returns up to days weekdays, today first.
func recentReportDays(now time.Time, loc *time.Location, days int) []models.Date {
	var out []models.Date
	for _, t := range util.RecentBusinessDays(now, loc, days) {
		out = append(out, models.DateOf(t))
	}
	return out
}
