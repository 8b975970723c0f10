package viewer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/munimap/munimap/internal/humastar"
	"github.com/munimap/munimap/internal/service"
)

// FeatureHandler serves per-feature interactions: hover styling, the info
// popup, and the attribute table.
type FeatureHandler struct {
	humastar.Handler
	layers   *service.LayerService
	store    *service.FeatureStore
	thematic *service.Thematic
}

// NewFeatureHandler creates a new feature handler.
func NewFeatureHandler(layers *service.LayerService, store *service.FeatureStore, thematic *service.Thematic, renderer *humastar.Renderer) *FeatureHandler {
	return &FeatureHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		layers:   layers,
		store:    store,
		thematic: thematic,
	}
}

func (h *FeatureHandler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/viewer/hover", h.Hover, huma.OperationTags("viewer"))
	huma.Get(api, "/api/v1/viewer/features/{layer}/{index}/info", h.FeatureInfo, huma.OperationTags("viewer"))
	huma.Get(api, "/api/v1/viewer/table/{layer}", h.AttributeTable, huma.OperationTags("viewer"))
}

// Hover handles hover enter/exit on a feature. Entering widens the border
// to weight 3 and turns it white while keeping the current fill; leaving
// restores the resting style, which recomputes the thematic color when a
// classification is active instead of falling back to the layer default.
func (h *FeatureHandler) Hover(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	layerID := signals.String("hoverlayer")
	index := signals.Int("hoverindex")
	entering := signals.Bool("hoverenter")

	return h.Stream(func(sse humastar.SSE) {
		style, err := h.thematic.RestingStyle(layerID, index)
		if err != nil {
			sse.Error(err.Error())
			return
		}
		if entering {
			style = service.HoverStyle(style)
		}
		sse.DispatchCustomEvent("feature-style", map[string]any{
			"layer": layerID, "index": index, "style": style,
		})
	}), nil
}

// FeatureInfoInput addresses one feature of a loaded layer.
type FeatureInfoInput struct {
	Layer string `path:"layer" doc:"Layer ID"`
	Index int    `path:"index" doc:"Feature index within the layer"`
}

// FeatureInfo renders the popup content for one feature, restricted to the
// layer's selected info fields. An empty selection is valid and renders
// nothing.
func (h *FeatureHandler) FeatureInfo(ctx context.Context, input *FeatureInfoInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		ld, ok := h.store.Get(input.Layer)
		if !ok {
			sse.Error(fmt.Sprintf("layer %q not loaded", input.Layer))
			return
		}
		if input.Index < 0 || input.Index >= len(ld.Collection.Features) {
			sse.Error(fmt.Sprintf("layer %q has no feature %d", input.Layer, input.Index))
			return
		}

		props := ld.Collection.Features[input.Index].Properties
		var buf bytes.Buffer
		for _, field := range ld.Config.InfoFields {
			v, ok := props[field]
			if !ok || v == nil {
				continue
			}
			h.Renderer.RenderToBuffer(&buf, "info-row", InfoRowData{
				Field: field, Value: fmt.Sprintf("%v", v),
			})
		}
		sse.Patch(buf.String(), "#feature-info")
	}), nil
}

// InfoRowData feeds the info-row fragment.
type InfoRowData struct {
	Field string
	Value string
}

// AttributeTableInput names the layer whose table is shown.
type AttributeTableInput struct {
	Layer string `path:"layer" doc:"Layer ID"`
}

// TableRowData feeds the table-row fragment: one cell per info field.
type TableRowData struct {
	Index int
	Cells []string
}

// AttributeTable renders the attribute table of a loaded layer: one column
// per selected info field, one row per feature.
func (h *FeatureHandler) AttributeTable(ctx context.Context, input *AttributeTableInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		ld, ok := h.store.Get(input.Layer)
		if !ok {
			sse.Error(fmt.Sprintf("layer %q not loaded", input.Layer))
			return
		}

		fields := ld.Config.InfoFields
		var head bytes.Buffer
		for _, f := range fields {
			h.Renderer.RenderToBuffer(&head, "table-header-cell", f)
		}

		var body bytes.Buffer
		for i, f := range ld.Collection.Features {
			cells := make([]string, 0, len(fields))
			for _, field := range fields {
				if v, ok := f.Properties[field]; ok && v != nil {
					cells = append(cells, fmt.Sprintf("%v", v))
				} else {
					cells = append(cells, "")
				}
			}
			h.Renderer.RenderToBuffer(&body, "table-row", TableRowData{Index: i, Cells: cells})
		}

		sse.Patch(head.String(), "#attribute-table-head")
		sse.Patch(body.String(), "#attribute-table-body")
	}), nil
}
