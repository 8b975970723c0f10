package viewer

import (
	"bytes"
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/munimap/munimap/internal/humastar"
	"github.com/munimap/munimap/internal/service"
)

// ThematicHandler drives the thematic mapping controls: the attribute
// select, apply/reset, and the legend.
type ThematicHandler struct {
	humastar.Handler
	thematic *service.Thematic
}

// NewThematicHandler creates a new thematic handler.
func NewThematicHandler(thematic *service.Thematic, renderer *humastar.Renderer) *ThematicHandler {
	return &ThematicHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		thematic: thematic,
	}
}

func (h *ThematicHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/viewer/thematic/attributes", h.ListAttributes, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/thematic/apply", h.Apply, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/thematic/reset", h.Reset, huma.OperationTags("viewer"))
}

// ListAttributes fills the attribute select with the numeric attributes of
// the census-sector layer.
func (h *ThematicHandler) ListAttributes(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		attrs, err := h.thematic.Attributes()
		if err != nil {
			if errors.Is(err, service.ErrLayerNotLoaded) {
				sse.Patch(humastar.RenderSelect(h.Renderer, "-- Load the census sectors layer first --", nil), "#attribute-select")
				return
			}
			sse.Error(err.Error())
			return
		}

		options := make([]humastar.SelectOptionData, 0, len(attrs))
		for _, a := range attrs {
			options = append(options, humastar.SelectOptionData{Value: a.Name, Label: a.Name})
		}
		sse.Patch(humastar.RenderSelect(h.Renderer, "-- Choose an attribute --", options), "#attribute-select")
	}), nil
}

// Apply classifies the census sectors by the attribute in the
// `thematicattr` signal, restyles the layer, and redraws the legend.
// Failures leave the previous classification and legend untouched.
func (h *ThematicHandler) Apply(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	attribute := signals.String("thematicattr")
	if attribute == "" {
		return nil, huma.Error400BadRequest("Attribute is required")
	}

	return h.Stream(func(sse humastar.SSE) {
		state, err := h.thematic.Apply(attribute)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNoNumericData):
				sse.Error("No valid numeric data for attribute \"" + attribute + "\"")
			case errors.Is(err, service.ErrLayerNotLoaded):
				sse.Error("Load the census sectors layer before applying an attribute")
			default:
				sse.Error(err.Error())
			}
			return
		}

		sse.Patch(h.renderLegend(state), "#legend")
		sse.Signals(map[string]any{"legendvisible": true})
		sse.DispatchCustomEvent("thematic-changed", map[string]any{
			"attribute": state.Attribute,
		})
	}), nil
}

// Reset clears the classification, restores the default layer style, and
// hides the legend. Safe to call repeatedly.
func (h *ThematicHandler) Reset(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if err := h.thematic.Reset(); err != nil {
			sse.Error(err.Error())
			return
		}

		sse.Patch("", "#legend")
		sse.Signals(map[string]any{"legendvisible": false, "thematicattr": ""})
		sse.DispatchCustomEvent("thematic-changed", map[string]any{
			"attribute": "",
		})
	}), nil
}

// LegendData feeds the legend fragment.
type LegendData struct {
	Title   string
	Entries []service.LegendEntry
}

func (h *ThematicHandler) renderLegend(state service.ThematicState) string {
	var buf bytes.Buffer
	h.Renderer.RenderToBuffer(&buf, "legend", LegendData{
		Title:   state.Attribute,
		Entries: service.LegendEntries(state),
	})
	return buf.String()
}
