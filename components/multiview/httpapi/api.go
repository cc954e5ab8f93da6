package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-multiview/components/multiview"
	"github.com/goliatone/go-multiview/components/multiview/commands"
	"github.com/goliatone/go-multiview/components/multiview/queries"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	API     Executor
	Layouts gocommand.Querier[queries.LayoutsInput, []multiview.Layout]
	View    gocommand.Querier[queries.ViewInput, multiview.ActiveView]
}

func (h *Handlers) HandleListLayouts(w http.ResponseWriter, r *http.Request) {
	layouts, err := h.Layouts.Query(r.Context(), queries.LayoutsInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layouts)
}

func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request) {
	input := queries.ViewInput{Draft: r.URL.Query().Get("draft") == "true"}
	view, err := h.View.Query(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var payload commands.CreateLayoutInput
	if err := decode(r, &payload, false); err != nil {
		writeError(w, err)
		return
	}
	var created multiview.Layout
	payload.Result = &created
	if err := h.API.CreateLayout(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) HandleSelectLayout(w http.ResponseWriter, r *http.Request, layoutID string) {
	var payload commands.SelectLayoutInput
	if err := decode(r, &payload, true); err != nil {
		writeError(w, err)
		return
	}
	payload.LayoutID = layoutID
	if err := h.API.SelectLayout(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "selected"})
}

func (h *Handlers) HandleDeleteLayout(w http.ResponseWriter, r *http.Request, layoutID string) {
	if err := h.API.DeleteLayout(r.Context(), commands.DeleteLayoutInput{LayoutID: layoutID}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleBeginEdit(w http.ResponseWriter, r *http.Request) {
	var payload commands.BeginEditInput
	if err := decode(r, &payload, true); err != nil {
		writeError(w, err)
		return
	}
	var draft multiview.Layout
	payload.Result = &draft
	if err := h.API.BeginEdit(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handlers) HandleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var payload commands.UpdateDraftInput
	if err := decode(r, &payload, false); err != nil {
		writeError(w, err)
		return
	}
	if err := h.API.UpdateDraft(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) HandleAddPanel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Type multiview.PanelType `json:"type"`
	}
	if err := decode(r, &payload, false); err != nil {
		writeError(w, err)
		return
	}
	h.editPanel(w, r, commands.EditPanelInput{Action: commands.PanelActionAdd, Type: payload.Type}, http.StatusCreated)
}

func (h *Handlers) HandleUpdatePanel(w http.ResponseWriter, r *http.Request, panelID string) {
	var patch multiview.PanelPatch
	if err := decode(r, &patch, false); err != nil {
		writeError(w, err)
		return
	}
	h.editPanel(w, r, commands.EditPanelInput{Action: commands.PanelActionUpdate, PanelID: panelID, Patch: patch}, http.StatusOK)
}

func (h *Handlers) HandleTogglePanel(w http.ResponseWriter, r *http.Request, panelID string) {
	h.editPanel(w, r, commands.EditPanelInput{Action: commands.PanelActionToggle, PanelID: panelID}, http.StatusOK)
}

func (h *Handlers) HandleRemovePanel(w http.ResponseWriter, r *http.Request, panelID string) {
	input := commands.EditPanelInput{Action: commands.PanelActionRemove, PanelID: panelID}
	if err := h.API.EditPanel(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) editPanel(w http.ResponseWriter, r *http.Request, input commands.EditPanelInput, status int) {
	var panel multiview.Panel
	input.Result = &panel
	if err := h.API.EditPanel(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, panel)
}

func (h *Handlers) HandleCommitEdit(w http.ResponseWriter, r *http.Request) {
	var layout multiview.Layout
	if err := h.API.CommitEdit(r.Context(), commands.CommitEditInput{Result: &layout}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (h *Handlers) HandleCancelEdit(w http.ResponseWriter, r *http.Request) {
	if err := h.API.CancelEdit(r.Context(), commands.CancelEditInput{}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	var payload commands.BroadcastInput
	if err := decode(r, &payload, false); err != nil {
		writeError(w, err)
		return
	}
	var receipt multiview.BroadcastReceipt
	payload.Result = &receipt
	if err := h.API.Broadcast(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *Handlers) HandleSimulator(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetSimulatorInput
	if err := decode(r, &payload, false); err != nil {
		writeError(w, err)
		return
	}
	if err := h.API.SetSimulator(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": payload.Active})
}

// Mount registers the handlers on mux below base (default "/admin/multiview").
// The event hub, when set, serves WebSocket and SSE streams.
func (h *Handlers) Mount(mux *http.ServeMux, base string, hub *multiview.EventHub) {
	base = strings.TrimRight(base, "/")
	if base == "" {
		base = "/admin/multiview"
	}
	withID := func(name string, fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, r.PathValue(name))
		}
	}
	mux.HandleFunc("GET "+base+"/_layouts", h.HandleListLayouts)
	mux.HandleFunc("GET "+base+"/_active", h.HandleView)
	mux.HandleFunc("POST "+base+"/layouts", h.HandleCreateLayout)
	mux.HandleFunc("POST "+base+"/layouts/{id}/select", withID("id", h.HandleSelectLayout))
	mux.HandleFunc("DELETE "+base+"/layouts/{id}", withID("id", h.HandleDeleteLayout))
	mux.HandleFunc("POST "+base+"/edit", h.HandleBeginEdit)
	mux.HandleFunc("PATCH "+base+"/edit", h.HandleUpdateDraft)
	mux.HandleFunc("POST "+base+"/edit/panels", h.HandleAddPanel)
	mux.HandleFunc("PATCH "+base+"/edit/panels/{panel}", withID("panel", h.HandleUpdatePanel))
	mux.HandleFunc("DELETE "+base+"/edit/panels/{panel}", withID("panel", h.HandleRemovePanel))
	mux.HandleFunc("POST "+base+"/edit/panels/{panel}/toggle", withID("panel", h.HandleTogglePanel))
	mux.HandleFunc("POST "+base+"/edit/commit", h.HandleCommitEdit)
	mux.HandleFunc("POST "+base+"/edit/cancel", h.HandleCancelEdit)
	mux.HandleFunc("POST "+base+"/broadcast", h.HandleBroadcast)
	mux.HandleFunc("POST "+base+"/simulator", h.HandleSimulator)
	if hub != nil {
		mux.HandleFunc("GET "+base+"/ws", hub.ServeWebSocket)
		mux.HandleFunc("GET "+base+"/events", hub.ServeSSE)
	}
}

// decode reads a JSON body into v. Empty bodies are accepted when optional.
func decode(r *http.Request, v any, optional bool) error {
	if r.Body == nil {
		if optional {
			return nil
		}
		return BadRequest(io.EOF)
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return BadRequest(err)
}
