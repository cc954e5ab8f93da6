package termview

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-multiview/components/multiview"
)

func TestRenderShowsPanelsAndHiddenPlaceholder(t *testing.T) {
	view := multiview.ActiveView{
		Layout: multiview.Layout{Name: "Mining Overview", Cols: 2, Rows: 1, Audience: multiview.AudienceAll},
		Fragments: []multiview.Fragment{
			{PanelID: "b", Kind: multiview.FragmentHidden, Title: "Balance", Position: 1},
			{PanelID: "a", Kind: multiview.FragmentPanel, Title: "Hardware", Position: 0,
				Metrics: []multiview.Metric{{Label: "Hashrate", Value: "412 TH/s"}},
				Columns: []string{"Rig", "Status"},
				Rows:    [][]string{{"rig-1", "online"}, {"rig-2", "online"}, {"rig-3", "offline"}},
			},
		},
	}
	out := Render(view, Options{CellWidth: 24, MaxRows: 2})

	assert.Contains(t, out, "Mining Overview")
	assert.Contains(t, out, "audience: all")
	assert.Contains(t, out, "Hashrate: 412 TH/s")
	assert.Contains(t, out, "hidden")
	assert.Contains(t, out, "+1 more")
	assert.NotContains(t, out, "rig-3")
	assert.Less(t, strings.Index(out, "Hardware"), strings.Index(out, "Balance"))
}

func TestRenderDefaultsAndRealLayout(t *testing.T) {
	catalog := multiview.NewCatalog()
	layout := multiview.DefaultLayouts(catalog, time.Now())[0]
	renderer := multiview.NewPanelRenderer(catalog, multiview.WithMockSource(multiview.NewMockSource(1)))
	out := Render(multiview.ActiveView{Layout: layout, Fragments: renderer.RenderLayout(layout)}, Options{})
	for _, panel := range layout.Panels {
		assert.Contains(t, out, panel.Title)
	}
}
