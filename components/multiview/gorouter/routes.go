package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-multiview/components/multiview"
	"github.com/goliatone/go-multiview/components/multiview/commands"
	"github.com/goliatone/go-multiview/components/multiview/httpapi"
)

// ActorResolver extracts the acting identity from a router.Context.
type ActorResolver func(router.Context) commands.Actor

// Config wires go-router with the multiview controller, API and event hub.
type Config[T any] struct {
	Router        router.Router[T]
	Controller    *multiview.Controller
	API           httpapi.Executor
	Events        *multiview.EventHub
	ActorResolver ActorResolver
	BasePath      string
	Routes        RouteConfig
}

// RouteConfig customizes the relative paths used for multiview endpoints.
type RouteConfig struct {
	HTML        string
	Layouts     string
	Active      string
	Create      string
	Select      string
	LayoutID    string
	Edit        string
	Panels      string
	PanelID     string
	PanelToggle string
	Commit      string
	Cancel      string
	Broadcast   string
	Simulator   string
	WebSocket   string
}

// Register mounts multiview routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	resolver := cfg.ActorResolver
	if resolver == nil {
		resolver = defaultActorResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layouts, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.LayoutPayload(ctx.Context())
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	group.Get(routes.Active, router.WrapHandler(func(ctx router.Context) error {
		view, err := cfg.Controller.View(ctx.Context())
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, resolver, routes)
	}

	if cfg.Events != nil {
		registerWebSocket(group, cfg.Events, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ActorResolver, routes RouteConfig) {
	r.Post(routes.Create, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.CreateLayoutInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, httpapi.BadRequest(err))
		}
		payload.Actor = resolver(ctx)
		var created multiview.Layout
		payload.Result = &created
		if err := api.CreateLayout(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusCreated, created)
	}))

	r.Post(routes.Select, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, httpapi.BadRequest(errors.New("layout id is required")))
		}
		input := commands.SelectLayoutInput{Actor: resolver(ctx), LayoutID: id}
		if err := api.SelectLayout(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "selected"})
	}))

	r.Delete(routes.LayoutID, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, httpapi.BadRequest(errors.New("layout id is required")))
		}
		input := commands.DeleteLayoutInput{Actor: resolver(ctx), LayoutID: id}
		if err := api.DeleteLayout(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	}))

	r.Post(routes.Edit, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.BeginEditInput
		if body := ctx.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(ctx, httpapi.BadRequest(err))
			}
		}
		payload.Actor = resolver(ctx)
		var draft multiview.Layout
		payload.Result = &draft
		if err := api.BeginEdit(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, draft)
	}))

	r.Patch(routes.Edit, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.UpdateDraftInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, httpapi.BadRequest(err))
		}
		payload.Actor = resolver(ctx)
		if err := api.UpdateDraft(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Post(routes.Panels, router.WrapHandler(func(ctx router.Context) error {
		var payload struct {
			Type multiview.PanelType `json:"type"`
		}
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, httpapi.BadRequest(err))
		}
		return editPanel(ctx, api, commands.EditPanelInput{
			Actor:  resolver(ctx),
			Action: commands.PanelActionAdd,
			Type:   payload.Type,
		}, http.StatusCreated)
	}))

	r.Patch(routes.PanelID, router.WrapHandler(func(ctx router.Context) error {
		var patch multiview.PanelPatch
		if err := json.Unmarshal(ctx.Body(), &patch); err != nil {
			return respondError(ctx, httpapi.BadRequest(err))
		}
		return editPanel(ctx, api, commands.EditPanelInput{
			Actor:   resolver(ctx),
			Action:  commands.PanelActionUpdate,
			PanelID: ctx.Param("panel"),
			Patch:   patch,
		}, http.StatusOK)
	}))

	r.Delete(routes.PanelID, router.WrapHandler(func(ctx router.Context) error {
		return editPanel(ctx, api, commands.EditPanelInput{
			Actor:   resolver(ctx),
			Action:  commands.PanelActionRemove,
			PanelID: ctx.Param("panel"),
		}, http.StatusOK)
	}))

	r.Post(routes.PanelToggle, router.WrapHandler(func(ctx router.Context) error {
		return editPanel(ctx, api, commands.EditPanelInput{
			Actor:   resolver(ctx),
			Action:  commands.PanelActionToggle,
			PanelID: ctx.Param("panel"),
		}, http.StatusOK)
	}))

	r.Post(routes.Commit, router.WrapHandler(func(ctx router.Context) error {
		var layout multiview.Layout
		input := commands.CommitEditInput{Actor: resolver(ctx), Result: &layout}
		if err := api.CommitEdit(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, layout)
	}))

	r.Post(routes.Cancel, router.WrapHandler(func(ctx router.Context) error {
		if err := api.CancelEdit(ctx.Context(), commands.CancelEditInput{Actor: resolver(ctx)}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
	}))

	r.Post(routes.Broadcast, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.BroadcastInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, httpapi.BadRequest(err))
		}
		payload.Actor = resolver(ctx)
		var receipt multiview.BroadcastReceipt
		payload.Result = &receipt
		if err := api.Broadcast(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, receipt)
	}))

	r.Post(routes.Simulator, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetSimulatorInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, httpapi.BadRequest(err))
		}
		payload.Actor = resolver(ctx)
		if err := api.SetSimulator(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]bool{"active": payload.Active})
	}))
}

func editPanel(ctx router.Context, api httpapi.Executor, input commands.EditPanelInput, status int) error {
	if input.Action != commands.PanelActionAdd && input.PanelID == "" {
		return respondError(ctx, httpapi.BadRequest(errors.New("panel id is required")))
	}
	var panel multiview.Panel
	input.Result = &panel
	if err := api.EditPanel(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(status, panel)
}

func registerWebSocket[T any](r router.Router[T], hub *multiview.EventHub, path string) {
	cfg := router.DefaultWebSocketConfig()
	cfg.Origins = hub.AllowedOrigins()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hub.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultActorResolver(ctx router.Context) commands.Actor {
	var actor commands.Actor
	if v, ok := ctx.Locals("user_id").(string); ok {
		actor.UserID = v
		actor.ActorID = v
	}
	if v, ok := ctx.Locals("actor_id").(string); ok && v != "" {
		actor.ActorID = v
	}
	if v, ok := ctx.Locals("tenant_id").(string); ok {
		actor.TenantID = v
	}
	return actor
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusCode(err), httpapi.ErrorResponse(err))
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/multiview"
	}
	if routes.Layouts == "" {
		routes.Layouts = "/multiview/_layouts"
	}
	if routes.Active == "" {
		routes.Active = "/multiview/_active"
	}
	if routes.Create == "" {
		routes.Create = "/multiview/layouts"
	}
	if routes.Select == "" {
		routes.Select = "/multiview/layouts/:id/select"
	}
	if routes.LayoutID == "" {
		routes.LayoutID = "/multiview/layouts/:id"
	}
	if routes.Edit == "" {
		routes.Edit = "/multiview/edit"
	}
	if routes.Panels == "" {
		routes.Panels = "/multiview/edit/panels"
	}
	if routes.PanelID == "" {
		routes.PanelID = "/multiview/edit/panels/:panel"
	}
	if routes.PanelToggle == "" {
		routes.PanelToggle = "/multiview/edit/panels/:panel/toggle"
	}
	if routes.Commit == "" {
		routes.Commit = "/multiview/edit/commit"
	}
	if routes.Cancel == "" {
		routes.Cancel = "/multiview/edit/cancel"
	}
	if routes.Broadcast == "" {
		routes.Broadcast = "/multiview/broadcast"
	}
	if routes.Simulator == "" {
		routes.Simulator = "/multiview/simulator"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/multiview/ws"
	}
	return routes
}
