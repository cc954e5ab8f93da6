package multiview

import (
	"fmt"
	"io"
	"sort"
)

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// FragmentKind distinguishes regular, hidden and fallback fragments.
type FragmentKind string

const (
	FragmentPanel    FragmentKind = "panel"
	FragmentHidden   FragmentKind = "hidden"
	FragmentFallback FragmentKind = "fallback"
)

// Metric is a single headline figure.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Trend string `json:"trend,omitempty"`
}

// Fragment is the display-ready form of one panel.
type Fragment struct {
	PanelID                string       `json:"panel_id"`
	Type                   PanelType    `json:"type"`
	Kind                   FragmentKind `json:"kind"`
	Title                  string       `json:"title"`
	Icon                   string       `json:"icon"`
	CSSClass               string       `json:"css_class"`
	ColSpan                int          `json:"col_span"`
	RowSpan                int          `json:"row_span"`
	Position               int          `json:"position"`
	RefreshIntervalSeconds int          `json:"refresh_interval_seconds"`
	Metrics                []Metric     `json:"metrics,omitempty"`
	Columns                []string     `json:"columns,omitempty"`
	Rows                   [][]string   `json:"rows,omitempty"`
	ChartHTML              string       `json:"chart_html,omitempty"`
	URL                    string       `json:"url,omitempty"`
	Message                string       `json:"message,omitempty"`
}

// PanelRenderer maps panels to fragments. It has no side effects; figures are
// drawn from the mock source and differ on every call.
type PanelRenderer struct {
	catalog *Catalog
	mock    *MockSource
	charts  *ChartRenderer
	cache   RenderCache
}

// PanelRendererOption customizes a PanelRenderer.
type PanelRendererOption func(*PanelRenderer)

// WithMockSource injects the figure source, mostly for deterministic tests.
func WithMockSource(source *MockSource) PanelRendererOption {
	return func(r *PanelRenderer) {
		r.mock = source
	}
}

// WithChartRenderer overrides chart rendering.
func WithChartRenderer(charts *ChartRenderer) PanelRendererOption {
	return func(r *PanelRenderer) {
		r.charts = charts
	}
}

// WithRenderCache memoizes chart markup per panel. Cached charts stop
// regenerating figures until the entry expires.
func WithRenderCache(cache RenderCache) PanelRendererOption {
	return func(r *PanelRenderer) {
		r.cache = cache
	}
}

// NewPanelRenderer builds a renderer with a random mock source.
func NewPanelRenderer(catalog *Catalog, options ...PanelRendererOption) *PanelRenderer {
	if catalog == nil {
		catalog = NewCatalog()
	}
	r := &PanelRenderer{catalog: catalog}
	for _, opt := range options {
		opt(r)
	}
	if r.mock == nil {
		r.mock = NewRandomMockSource()
	}
	if r.charts == nil {
		r.charts = NewChartRenderer()
	}
	return r
}

// RenderLayout renders every panel of layout ordered by position.
func (r *PanelRenderer) RenderLayout(layout Layout) []Fragment {
	panels := append([]Panel{}, layout.Panels...)
	sort.SliceStable(panels, func(i, j int) bool { return panels[i].Position < panels[j].Position })
	fragments := make([]Fragment, 0, len(panels))
	for _, panel := range panels {
		fragments = append(fragments, r.Render(panel))
	}
	return fragments
}

// Render maps one panel to a fragment.
func (r *PanelRenderer) Render(panel Panel) Fragment {
	entry, known := r.catalog.Lookup(panel.Type)
	frag := r.baseFragment(panel, entry)
	if !panel.IsVisible {
		frag.Kind = FragmentHidden
		frag.Icon = "eye-off"
		frag.Message = "This panel is hidden"
		return frag
	}
	if !known {
		frag.Kind = FragmentFallback
		return frag
	}
	switch panel.Type {
	case PanelHardware:
		r.renderHardware(&frag)
	case PanelBalance:
		r.renderBalance(&frag)
	case PanelAccounts:
		r.renderAccounts(&frag)
	case PanelTransactions:
		r.renderTransactions(&frag)
	case PanelStatistics:
		r.renderStatistics(&frag, panel)
	case PanelActivityLog:
		r.renderActivity(&frag)
	case PanelPriceTicker:
		r.renderTicker(&frag, panel)
	case PanelSettings:
		r.renderSettings(&frag, panel)
	case PanelCustom:
		r.renderCustom(&frag, panel)
	default:
		frag.Kind = FragmentFallback
	}
	return frag
}

func (r *PanelRenderer) baseFragment(panel Panel, entry CatalogEntry) Fragment {
	title := panel.Title
	if title == "" {
		title = entry.Name
	}
	colSpan, rowSpan := panel.ColSpan, panel.RowSpan
	if colSpan <= 0 {
		colSpan = 1
	}
	if rowSpan <= 0 {
		rowSpan = 1
	}
	return Fragment{
		PanelID:                panel.ID,
		Type:                   panel.Type,
		Kind:                   FragmentPanel,
		Title:                  title,
		Icon:                   entry.Icon,
		CSSClass:               entry.CSSClass(),
		ColSpan:                colSpan,
		RowSpan:                rowSpan,
		Position:               panel.Position,
		RefreshIntervalSeconds: panel.RefreshIntervalSeconds,
	}
}

func (r *PanelRenderer) renderHardware(frag *Fragment) {
	frag.Columns = []string{"Rig", "Hashrate", "Temp", "Status"}
	frag.Rows = r.mock.hardwareRows(4)
	online := 0
	for _, row := range frag.Rows {
		if row[3] == "online" {
			online++
		}
	}
	frag.Metrics = []Metric{
		{Label: "Rigs online", Value: fmt.Sprintf("%d/%d", online, len(frag.Rows))},
		{Label: "Power draw", Value: fmt.Sprintf("%.1f kW", r.mock.float(8, 14))},
	}
}

func (r *PanelRenderer) renderBalance(frag *Fragment) {
	frag.Metrics = []Metric{
		{Label: "Available", Value: fmt.Sprintf("%.6f BTC", r.mock.float(0.1, 3)), Trend: fmt.Sprintf("%+.2f%%", r.mock.float(-5, 5))},
		{Label: "Pending", Value: fmt.Sprintf("%.6f BTC", r.mock.float(0, 0.2))},
		{Label: "Fiat value", Value: fmt.Sprintf("$%.2f", r.mock.float(5000, 150000))},
	}
}

func (r *PanelRenderer) renderAccounts(frag *Fragment) {
	total := r.mock.intn(800, 5000)
	frag.Metrics = []Metric{
		{Label: "Total", Value: fmt.Sprintf("%d", total)},
		{Label: "Active", Value: fmt.Sprintf("%d", r.mock.intn(total/4, total/2))},
		{Label: "Ghost", Value: fmt.Sprintf("%d", r.mock.intn(5, 60))},
	}
}

func (r *PanelRenderer) renderTransactions(frag *Fragment) {
	frag.Columns = []string{"Hash", "Kind", "Amount", "Time"}
	frag.Rows = r.mock.transactionRows(5)
}

func (r *PanelRenderer) renderStatistics(frag *Fragment, panel Panel) {
	series := []ChartSeries{{Name: "Hashrate (TH/s)", Points: r.mock.series(12, 320, 560)}}
	frag.Metrics = []Metric{
		{Label: "Shares accepted", Value: fmt.Sprintf("%.2f%%", r.mock.float(97, 99.9))},
		{Label: "Blocks found", Value: fmt.Sprintf("%d", r.mock.intn(0, 4))},
	}
	frag.ChartHTML, frag.Message = r.chart(panel, "line", frag.Title, series)
}

func (r *PanelRenderer) renderActivity(frag *Fragment) {
	frag.Columns = []string{"Actor", "Action", "When"}
	frag.Rows = r.mock.activityRows(6)
}

func (r *PanelRenderer) renderTicker(frag *Fragment, panel Panel) {
	frag.Columns = []string{"Symbol", "Price", "24h"}
	frag.Rows = r.mock.tickerRows()
	points := make([]ChartPoint, 0, len(frag.Rows))
	for _, row := range frag.Rows {
		points = append(points, ChartPoint{Label: row[0], Value: r.mock.float(-8, 8)})
	}
	frag.ChartHTML, frag.Message = r.chart(panel, "bar", "24h change", []ChartSeries{{Name: "24h %", Points: points}})
}

func (r *PanelRenderer) renderSettings(frag *Fragment, panel Panel) {
	refresh := "manual"
	if panel.RefreshIntervalSeconds > 0 {
		refresh = fmt.Sprintf("every %ds", panel.RefreshIntervalSeconds)
	}
	frag.Metrics = []Metric{
		{Label: "Refresh", Value: refresh},
		{Label: "Span", Value: fmt.Sprintf("%dx%d", frag.ColSpan, frag.RowSpan)},
	}
}

func (r *PanelRenderer) renderCustom(frag *Fragment, panel Panel) {
	if panel.CustomURL == "" {
		frag.Message = "No URL configured"
		return
	}
	frag.URL = panel.CustomURL
}

// chart renders through the cache when one is configured. Errors become the
// fragment message instead of failing the render.
func (r *PanelRenderer) chart(panel Panel, kind, title string, series []ChartSeries) (string, string) {
	render := func() (string, error) {
		return r.charts.Render(kind, title, series)
	}
	var (
		html string
		err  error
	)
	if r.cache != nil {
		html, err = r.cache.GetOrRender(chartKey(panel, kind), render)
	} else {
		html, err = render()
	}
	if err != nil {
		return "", "Chart unavailable"
	}
	return html, ""
}
