package services

import (
	"sort"

	"github.com/epeers/shortpositions/internal/models"
)

// Window is a bounded, date-ordered set of report datasets. It is a value:
// Upsert, Evict and Clear return a new Window and leave the receiver untouched.
type Window struct {
	capacity int
	datasets []*models.ReportDataset
	tickers  []string
}

// NewWindow creates an empty window holding at most capacity datasets.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{capacity: capacity}
}

// Capacity returns the maximum number of datasets.
func (w *Window) Capacity() int { return w.capacity }

// Len returns the number of datasets held.
func (w *Window) Len() int { return len(w.datasets) }

// Datasets returns the datasets, oldest first.
func (w *Window) Datasets() []*models.ReportDataset {
	out := make([]*models.ReportDataset, len(w.datasets))
	copy(out, w.datasets)
	return out
}

// Dates returns the held report dates, oldest first.
func (w *Window) Dates() []string {
	out := make([]string, len(w.datasets))
	for i, ds := range w.datasets {
		out[i] = ds.Date
	}
	return out
}

// Latest returns the most recent dataset, or nil when empty.
func (w *Window) Latest() *models.ReportDataset {
	if len(w.datasets) == 0 {
		return nil
	}
	return w.datasets[len(w.datasets)-1]
}

// Get returns the dataset for date, or nil.
func (w *Window) Get(date string) *models.ReportDataset {
	for _, ds := range w.datasets {
		if ds.Date == date {
			return ds
		}
	}
	return nil
}

// Tickers returns every ticker present in any held dataset, sorted.
func (w *Window) Tickers() []string {
	out := make([]string, len(w.tickers))
	copy(out, w.tickers)
	return out
}

// Upsert adds ds. A dataset for a date already held is replaced in place;
// otherwise ds is inserted in date order and the oldest datasets are evicted
// while the window is over capacity. The second return value lists evicted dates.
func (w *Window) Upsert(ds *models.ReportDataset) (*Window, []string) {
	next := make([]*models.ReportDataset, len(w.datasets), len(w.datasets)+1)
	copy(next, w.datasets)

	for i, existing := range next {
		if existing.Date == ds.Date {
			next[i] = ds
			return w.with(next), nil
		}
	}

	next = append(next, ds)
	// YYYYMMDD sorts lexicographically in date order.
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Date < next[j].Date
	})

	var evicted []string
	for len(next) > w.capacity {
		evicted = append(evicted, next[0].Date)
		next = next[1:]
	}
	return w.with(next), evicted
}

// Evict removes the dataset for date. Unknown dates leave the window unchanged.
func (w *Window) Evict(date string) *Window {
	next := make([]*models.ReportDataset, 0, len(w.datasets))
	for _, ds := range w.datasets {
		if ds.Date != date {
			next = append(next, ds)
		}
	}
	return w.with(next)
}

// Clear returns an empty window with the same capacity.
func (w *Window) Clear() *Window {
	return NewWindow(w.capacity)
}

// with builds a window over datasets and recomputes the ticker universe.
func (w *Window) with(datasets []*models.ReportDataset) *Window {
	seen := make(map[string]struct{})
	for _, ds := range datasets {
		for _, r := range ds.Records {
			if t := r.RecordTicker(); t != "" {
				seen[t] = struct{}{}
			}
		}
	}
	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	return &Window{capacity: w.capacity, datasets: datasets, tickers: tickers}
}
