package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"FundLens/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageView mirrors the page elements the controller touches.
type pageView struct {
	mu sync.Mutex

	fundsLoading bool
	fundsError   string
	listVisible  bool
	list         []model.Fund
	badge        int
	renders      int
	active       int

	detailVisible bool
	mobileDetail  bool
	detail        Detail

	chartsVisible bool
	charts        []ChartCard
	costError     string
	costErrorOn   bool
	costLoading   bool
}

func newPageView() *pageView {
	return &pageView{fundsLoading: true, active: -1}
}

func (v *pageView) ShowFundsLoading() { v.mu.Lock(); v.fundsLoading = true; v.mu.Unlock() }
func (v *pageView) HideFundsLoading() { v.mu.Lock(); v.fundsLoading = false; v.mu.Unlock() }

func (v *pageView) ShowFundsError(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fundsLoading = true
	v.fundsError = msg
}

func (v *pageView) SetListVisible(visible bool) { v.mu.Lock(); v.listVisible = visible; v.mu.Unlock() }

func (v *pageView) RenderList(funds []model.Fund) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list = funds
	v.badge = len(funds)
	v.renders++
	v.active = -1
}

func (v *pageView) HighlightFund(i int) { v.mu.Lock(); v.active = i; v.mu.Unlock() }

func (v *pageView) ShowDetail(d Detail) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detailVisible = true
	v.mobileDetail = true
	v.detail = d
}

func (v *pageView) HideDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detailVisible = false
	v.mobileDetail = false
}

func (v *pageView) ResetAnalysis() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.charts = nil
	v.chartsVisible = false
	v.costErrorOn = false
}

func (v *pageView) SetCostLoading(visible bool) { v.mu.Lock(); v.costLoading = visible; v.mu.Unlock() }

func (v *pageView) ShowCostError(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.costError = msg
	v.costErrorOn = true
}

func (v *pageView) RenderChart(card ChartCard) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.chartsVisible = true
	v.charts = []ChartCard{card}
}

// fakeAPI answers from fixed data. When gate is set, Analyze blocks until a
// value is sent on the channel registered for the fund's registry number.
type fakeAPI struct {
	mu       sync.Mutex
	funds    []model.Fund
	fundsErr error
	results  map[string]*model.AnalysisResult
	errs     map[string]error
	calls    []string
	gates    map[string]chan struct{}
	started  chan string
}

func (a *fakeAPI) Funds(context.Context) ([]model.Fund, error) {
	return a.funds, a.fundsErr
}

func (a *fakeAPI) Analyze(_ context.Context, f model.Fund) (*model.AnalysisResult, error) {
	a.mu.Lock()
	a.calls = append(a.calls, f.Albo)
	gate := a.gates[f.Albo]
	a.mu.Unlock()

	if a.started != nil {
		a.started <- f.Albo
	}
	if gate != nil {
		<-gate
	}
	if err := a.errs[f.Albo]; err != nil {
		return nil, err
	}
	if res, ok := a.results[f.Albo]; ok {
		return res, nil
	}
	return &model.AnalysisResult{}, nil
}

func (a *fakeAPI) ProxyPDFURL(link string) string { return "/api/proxy_pdf?url=" + link }

func (a *fakeAPI) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

var testFunds = []model.Fund{
	{Name: "Alpha", Albo: "123", Type: "FPN", Link: "x.pdf"},
	{Name: "Beta", Albo: "456", Type: "FPA", Link: ""},
	{Name: "Gamma ALP", Albo: "X9", Type: "PIP", Link: "g.pdf"},
}

func setup(t *testing.T, api *fakeAPI) (*Browser, *pageView) {
	t.Helper()
	if api.funds == nil && api.fundsErr == nil {
		api.funds = testFunds
	}
	v := newPageView()
	b := New(api, v)
	require.NoError(t, b.Load(context.Background()))
	return b, v
}

func TestLoad(t *testing.T) {
	b, v := setup(t, &fakeAPI{})
	assert.True(t, b.Loaded())
	assert.Len(t, b.Funds(), 3)
	assert.False(t, v.fundsLoading)
	assert.Empty(t, v.fundsError)
	assert.False(t, v.listVisible)
}

func TestLoad_EmptyListHidesIndicator(t *testing.T) {
	api := &fakeAPI{funds: []model.Fund{}}
	v := newPageView()
	b := New(api, v)
	require.NoError(t, b.Load(context.Background()))
	assert.False(t, v.fundsLoading)
	assert.Empty(t, b.Search("a"))
}

func TestLoad_Failure(t *testing.T) {
	api := &fakeAPI{fundsErr: errors.New("connection refused")}
	v := newPageView()
	b := New(api, v)

	err := b.Load(context.Background())
	require.Error(t, err)
	assert.False(t, b.Loaded())
	assert.Equal(t, MsgFundsLoadError, v.fundsError)
	assert.Empty(t, b.Funds())

	assert.Empty(t, b.Search("alpha"))
	assert.False(t, v.listVisible)
}

func TestSearch(t *testing.T) {
	tests := []struct {
		term    string
		want    []string
		visible bool
	}{
		{"alp", []string{"Alpha", "Gamma ALP"}, true},
		{"ALPHA", []string{"Alpha"}, true},
		{"45", []string{"Beta"}, true},
		{"X9", []string{}, false},
		{"9", []string{"Gamma ALP"}, true},
		{"zzz", []string{}, false},
		{" alpha", []string{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			b, v := setup(t, &fakeAPI{})
			got := b.Search(tt.term)

			names := []string{}
			for _, f := range got {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), v.badge)
			assert.Equal(t, 1, v.renders)
			assert.Equal(t, tt.visible, v.listVisible)
		})
	}
}

func TestSearch_EmptyTermHidesWithoutClearing(t *testing.T) {
	b, v := setup(t, &fakeAPI{})
	b.Search("alp")
	require.True(t, v.listVisible)

	got := b.Search("")
	assert.Nil(t, got)
	assert.False(t, v.listVisible)
	assert.Equal(t, 1, v.renders)
	assert.Len(t, v.list, 2)
	assert.Equal(t, 2, v.badge)
}

func TestSelect_NoLinkMakesNoRequest(t *testing.T) {
	api := &fakeAPI{}
	b, v := setup(t, api)
	b.Search("beta")

	b.Select(context.Background(), 0)

	assert.Zero(t, api.callCount())
	assert.Equal(t, 0, v.active)
	assert.True(t, v.detailVisible)
	assert.Equal(t, Detail{Title: "Beta", Type: "FPA", PDFLink: "", ViewPDFLink: "/api/proxy_pdf?url="}, v.detail)
	assert.False(t, v.costLoading)
	assert.True(t, v.costErrorOn)
	assert.Equal(t, MsgNoPDF, v.costError)
	assert.Empty(t, v.charts)
}

func TestSelect_ChartImage(t *testing.T) {
	api := &fakeAPI{results: map[string]*model.AnalysisResult{"123": {ChartImage: "/charts/a.png"}}}
	b, v := setup(t, api)
	b.Search("alpha")

	b.Select(context.Background(), 0)

	assert.Equal(t, []string{"123"}, api.calls)
	assert.Equal(t, "Alpha", v.detail.Title)
	assert.Equal(t, "x.pdf", v.detail.PDFLink)
	assert.Equal(t, "/api/proxy_pdf?url=x.pdf", v.detail.ViewPDFLink)
	assert.False(t, v.costLoading)
	assert.False(t, v.costErrorOn)
	assert.True(t, v.chartsVisible)
	require.Len(t, v.charts, 1)
	assert.Equal(t, ChartCard{ImageURL: "/charts/a.png", Caption: CaptionChart}, v.charts[0])

	f, ok := b.Active()
	require.True(t, ok)
	assert.Equal(t, "Alpha", f.Name)
}

func TestSelect_NoChart(t *testing.T) {
	b, v := setup(t, &fakeAPI{})
	b.Search("alpha")
	b.Select(context.Background(), 0)

	require.Len(t, v.charts, 1)
	assert.Equal(t, ChartCard{Message: MsgNoChart}, v.charts[0])
	assert.False(t, v.costErrorOn)
}

func TestSelect_ErrorField(t *testing.T) {
	api := &fakeAPI{results: map[string]*model.AnalysisResult{"123": {Error: "bad pdf"}}}
	b, v := setup(t, api)
	b.Search("alpha")
	b.Select(context.Background(), 0)

	assert.True(t, v.costErrorOn)
	assert.Contains(t, v.costError, "bad pdf")
	assert.Equal(t, MsgExtractionError+"bad pdf", v.costError)
	assert.Empty(t, v.charts)
	assert.False(t, v.chartsVisible)
	assert.False(t, v.costLoading)
}

func TestSelect_TransportError(t *testing.T) {
	api := &fakeAPI{errs: map[string]error{"123": errors.New("503 Service Unavailable")}}
	b, v := setup(t, api)
	b.Search("alpha")
	b.Select(context.Background(), 0)

	assert.Equal(t, MsgExtractionError+"503 Service Unavailable", v.costError)
	assert.False(t, v.costLoading)
}

func TestSelect_ReselectIssuesNewRequest(t *testing.T) {
	api := &fakeAPI{}
	b, _ := setup(t, api)
	b.Search("alpha")

	b.Select(context.Background(), 0)
	b.Select(context.Background(), 0)

	assert.Equal(t, []string{"123", "123"}, api.calls)
}

func TestSelect_OutOfRangeIgnored(t *testing.T) {
	api := &fakeAPI{}
	b, v := setup(t, api)
	b.Search("alpha")

	b.Select(context.Background(), 5)
	b.Select(context.Background(), -1)

	assert.Zero(t, api.callCount())
	assert.False(t, v.detailVisible)
}

func TestSelectFund_SurvivesRerender(t *testing.T) {
	api := &fakeAPI{results: map[string]*model.AnalysisResult{"X9": {ChartImage: "/charts/g.png"}}}
	b, v := setup(t, api)
	b.Search("alp")
	require.Len(t, b.Shown(), 2)
	gamma := b.Shown()[1]

	// The list changes before the queued click is handled.
	b.Search("gamma")
	b.SelectFund(context.Background(), gamma)

	assert.Equal(t, []string{"X9"}, api.calls)
	assert.Equal(t, 0, v.active)
	assert.Equal(t, "Gamma ALP", v.detail.Title)
	require.Len(t, v.charts, 1)
	assert.Equal(t, "/charts/g.png", v.charts[0].ImageURL)

	b.Search("beta")
	b.SelectFund(context.Background(), gamma)
	assert.Equal(t, -1, v.active)
	assert.Equal(t, []string{"X9", "X9"}, api.calls)
}

func TestActivate(t *testing.T) {
	api := &fakeAPI{}
	b, v := setup(t, api)
	b.Search("a")

	assert.Nil(t, b.Activate(testFunds[1]))
	assert.Equal(t, MsgNoPDF, v.costError)

	run := b.Activate(testFunds[0])
	require.NotNil(t, run)
	assert.True(t, v.costLoading)
	assert.Zero(t, api.callCount())

	run(context.Background())
	assert.Equal(t, []string{"123"}, api.calls)
	assert.False(t, v.costLoading)
}

func TestSelect_StaleResponseDropped(t *testing.T) {
	gateA := make(chan struct{})
	api := &fakeAPI{
		results: map[string]*model.AnalysisResult{
			"123": {ChartImage: "/charts/alpha.png"},
			"X9":  {ChartImage: "/charts/gamma.png"},
		},
		gates:   map[string]chan struct{}{"123": gateA},
		started: make(chan string, 2),
	}
	b, v := setup(t, api)
	b.Search("alp")

	done := make(chan struct{})
	go func() {
		b.Select(context.Background(), 0)
		close(done)
	}()
	require.Equal(t, "123", <-api.started)

	b.Select(context.Background(), 1)
	require.Equal(t, "X9", <-api.started)
	require.Len(t, v.charts, 1)
	assert.Equal(t, "/charts/gamma.png", v.charts[0].ImageURL)

	// The superseded response must not touch the page, including the
	// loading indicator of the current selection.
	v.SetCostLoading(true)
	close(gateA)
	<-done

	require.Len(t, v.charts, 1)
	assert.Equal(t, "/charts/gamma.png", v.charts[0].ImageURL)
	assert.Equal(t, "Gamma ALP", v.detail.Title)
	assert.True(t, v.costLoading)
	assert.Equal(t, 1, v.active)
}

func TestBack(t *testing.T) {
	b, v := setup(t, &fakeAPI{})
	b.Search("beta")
	b.Select(context.Background(), 0)
	require.True(t, v.detailVisible)

	b.Back()
	assert.False(t, v.detailVisible)
	assert.False(t, v.mobileDetail)
}

func TestMetaLine(t *testing.T) {
	assert.Equal(t, "Albo: 123 | Tipo: FPN", MetaLine(testFunds[0]))
}

func TestMatches(t *testing.T) {
	f := model.Fund{Name: "Fondo Pensione", Albo: "AB12"}
	for term, want := range map[string]bool{
		"pensione": true,
		"PENSIONE": true,
		"ab12":     false,
		"AB12":     false,
		"12":       true,
		"":         true,
	} {
		assert.Equal(t, want, Matches(f, term), fmt.Sprintf("term %q", term))
	}
}
