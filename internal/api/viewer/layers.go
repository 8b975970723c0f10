// Package viewer contains Datastar SSE handlers for the map viewer UI.
package viewer

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/munimap/munimap/internal/humastar"
	"github.com/munimap/munimap/internal/service"
)

// LayerHandler drives the layer control: listing the catalog and toggling
// layers on and off the map.
type LayerHandler struct {
	humastar.Handler
	layers   *service.LayerService
	store    *service.FeatureStore
	thematic *service.Thematic
}

// NewLayerHandler creates a new layer handler.
func NewLayerHandler(layers *service.LayerService, store *service.FeatureStore, thematic *service.Thematic, renderer *humastar.Renderer) *LayerHandler {
	return &LayerHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		layers:   layers,
		store:    store,
		thematic: thematic,
	}
}

func (h *LayerHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/viewer/layers", h.ListLayers, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/layers/{id}/toggle", h.ToggleLayer, huma.OperationTags("viewer"))
}

// ListLayers renders the layer control on page load. Catalog layers marked
// default-visible are loaded and put on the map before the list renders, so
// a fresh viewer starts with the district boundaries showing.
func (h *LayerHandler) ListLayers(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		for _, cfg := range h.layers.List() {
			if !cfg.DefaultVisible || h.store.Loaded(cfg.ID) {
				continue
			}
			if _, err := h.store.Load(cfg); err != nil {
				sse.Error(err.Error())
				continue
			}
			sse.DispatchCustomEvent("layer-toggled", map[string]any{
				"id":      cfg.ID,
				"visible": true,
				"url":     "/api/v1/layers/" + cfg.ID + "/features",
			})
		}
		sse.Patch(h.renderLayerList(), "#layer-list")
	}), nil
}

// ToggleLayerInput names the layer being switched.
type ToggleLayerInput struct {
	ID string `path:"id" doc:"Layer ID to toggle"`
}

// ToggleLayer loads a layer onto the map or removes it. Loading is
// idempotent at the store level, so a repeated toggle during a slow load
// never re-reads the source file. Toggling off the thematic layer resets
// any active classification first so its styles do not go stale. The store
// announces loads and unloads on the bus.
func (h *LayerHandler) ToggleLayer(ctx context.Context, input *ToggleLayerInput) (*huma.StreamResponse, error) {
	cfg, ok := h.layers.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound(fmt.Sprintf("layer %q not found", input.ID))
	}

	return h.Stream(func(sse humastar.SSE) {
		if h.store.Loaded(cfg.ID) {
			if cfg.ID == h.thematic.LayerID() {
				if err := h.thematic.Reset(); err != nil {
					sse.Error(err.Error())
					return
				}
			}
			h.store.Unload(cfg.ID)

			sse.Patch(h.renderLayerList(), "#layer-list")
			sse.DispatchCustomEvent("layer-toggled", map[string]any{
				"id": cfg.ID, "visible": false,
			})
			return
		}

		if _, err := h.store.Load(cfg); err != nil {
			// Load failures are surfaced with the layer name and are not
			// retried; the layer simply stays off the map.
			sse.Error(err.Error())
			return
		}

		sse.Patch(h.renderLayerList(), "#layer-list")
		sse.DispatchCustomEvent("layer-toggled", map[string]any{
			"id":      cfg.ID,
			"visible": true,
			"url":     "/api/v1/layers/" + cfg.ID + "/features",
		})
	}), nil
}

// LayerCardData feeds the layer-card fragment.
type LayerCardData struct {
	ID       string
	Name     string
	GeomType string
	Fill     string
	Visible  bool
	Thematic bool
}

func (h *LayerHandler) renderLayerList() string {
	layers := h.layers.List()
	cards := make([]LayerCardData, 0, len(layers))
	for _, cfg := range layers {
		cards = append(cards, LayerCardData{
			ID:       cfg.ID,
			Name:     cfg.Name,
			GeomType: cfg.GeomType,
			Fill:     cfg.Fill,
			Visible:  h.store.Loaded(cfg.ID),
			Thematic: cfg.Thematic,
		})
	}
	return humastar.RenderList(h.Renderer, "layer-card", cards,
		"No layers", "The layer catalog is empty.")
}
