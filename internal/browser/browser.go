// Package browser is the fund browser UI controller: it loads the fund list,
// filters it on demand, and drives the cost analysis of the selected fund.
package browser

import (
	"context"
	"errors"
	"strings"
	"sync"

	"FundLens/internal/logger"
	"FundLens/internal/model"
)

// API is the subset of the FundLens API the controller uses.
type API interface {
	Funds(ctx context.Context) ([]model.Fund, error)
	Analyze(ctx context.Context, f model.Fund) (*model.AnalysisResult, error)
	ProxyPDFURL(link string) string
}

// Browser holds the UI state. All fields are guarded by mu; View calls are
// made with mu held so they never interleave.
type Browser struct {
	api  API
	view View

	mu       sync.Mutex
	funds    []model.Fund
	loaded   bool
	shown    []model.Fund // entries currently rendered in the list
	active   *model.Fund
	selected uint64 // token of the current selection
}

// New creates a controller bound to api and view.
func New(api API, view View) *Browser {
	return &Browser{api: api, view: view}
}

// Load fetches the fund list once. On failure the list stays empty and the
// loading indicator is replaced by an error; there is no retry.
func (b *Browser) Load(ctx context.Context) error {
	b.mu.Lock()
	b.view.ShowFundsLoading()
	b.mu.Unlock()

	funds, err := b.api.Funds(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		logger.Log.Errorf("load funds: %v", err)
		b.view.ShowFundsError(MsgFundsLoadError)
		return err
	}
	b.funds = funds
	b.loaded = true
	b.view.HideFundsLoading()
	logger.Log.Debugf("loaded %d funds", len(funds))
	return nil
}

// Loaded reports whether the fund list arrived.
func (b *Browser) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// Funds returns a copy of the full fund list.
func (b *Browser) Funds() []model.Fund {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Fund(nil), b.funds...)
}

// Shown returns a copy of the entries currently rendered.
func (b *Browser) Shown() []model.Fund {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Fund(nil), b.shown...)
}

// Matches reports whether f matches a search term. The term is lowercased;
// the name is compared case-insensitively, the registry number as-is.
func Matches(f model.Fund, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(f.Name), term) || strings.Contains(f.Albo, term)
}

// Search filters the fund list by term and renders the matches. An empty
// term only hides the list, keeping its previous entries.
func (b *Browser) Search(term string) []model.Fund {
	b.mu.Lock()
	defer b.mu.Unlock()

	if term == "" {
		b.view.SetListVisible(false)
		return nil
	}

	matches := []model.Fund{}
	for _, f := range b.funds {
		if Matches(f, term) {
			matches = append(matches, f)
		}
	}
	b.shown = matches
	b.view.RenderList(matches)
	b.view.SetListVisible(len(matches) > 0)
	return matches
}

// Select activates entry i of the rendered list and runs its analysis. It
// blocks until the analysis finishes or is superseded; views call it on a
// goroutine.
func (b *Browser) Select(ctx context.Context, i int) {
	b.mu.Lock()
	if i < 0 || i >= len(b.shown) {
		b.mu.Unlock()
		return
	}
	f := b.shown[i]
	b.view.HighlightFund(i)
	token, run := b.activate(f)
	b.mu.Unlock()

	if run {
		b.analyze(ctx, token, f)
	}
}

// SelectFund activates f, a fund captured when its entry was rendered, and
// runs its analysis. The entry is highlighted only if f is still listed.
func (b *Browser) SelectFund(ctx context.Context, f model.Fund) {
	if run := b.Activate(f); run != nil {
		run(ctx)
	}
}

// Activate updates the detail panel for f right away and returns the
// analysis still to run, or nil when there is nothing to request. Views
// that must not block call Activate in event order and run the result on
// a goroutine.
func (b *Browser) Activate(f model.Fund) func(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.shown {
		if s == f {
			b.view.HighlightFund(i)
			break
		}
	}
	token, run := b.activate(f)
	if !run {
		return nil
	}
	return func(ctx context.Context) { b.analyze(ctx, token, f) }
}

// activate makes f the active fund and resets the detail panel. It returns
// the selection token and whether an analysis request should be made.
// Callers hold mu.
func (b *Browser) activate(f model.Fund) (uint64, bool) {
	b.selected++
	b.active = &f

	b.view.ShowDetail(Detail{
		Title:       f.Name,
		Type:        f.Type,
		PDFLink:     f.Link,
		ViewPDFLink: b.api.ProxyPDFURL(f.Link),
	})
	b.view.ResetAnalysis()
	b.view.SetCostLoading(true)

	if !f.HasLink() {
		b.view.SetCostLoading(false)
		b.view.ShowCostError(MsgNoPDF)
		return b.selected, false
	}
	return b.selected, true
}

func (b *Browser) analyze(ctx context.Context, token uint64, f model.Fund) {
	res, err := b.api.Analyze(ctx, f)
	if err == nil && res.Error != "" {
		err = errors.New(res.Error)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if token != b.selected {
		logger.Log.Debugf("dropping stale analysis of %s", f.Name)
		return
	}

	b.view.SetCostLoading(false)
	if err != nil {
		logger.Log.Warnf("analyze %s: %v", f.Name, err)
		b.view.ShowCostError(MsgExtractionError + err.Error())
		return
	}
	b.renderAnalysis(res)
}

func (b *Browser) renderAnalysis(res *model.AnalysisResult) {
	if res.ChartImage != "" {
		b.view.RenderChart(ChartCard{ImageURL: res.ChartImage, Caption: CaptionChart})
		return
	}
	b.view.RenderChart(ChartCard{Message: MsgNoChart})
}

// Back leaves the detail view and returns to the list.
func (b *Browser) Back() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.view.HideDetail()
}

// Active returns the selected fund, if any.
func (b *Browser) Active() (model.Fund, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return model.Fund{}, false
	}
	return *b.active, true
}
