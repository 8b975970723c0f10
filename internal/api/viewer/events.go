package viewer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/munimap/munimap/internal/humastar"
	"github.com/munimap/munimap/internal/service"
)

// EventHandler streams map state changes to the viewer via SSE, so a second
// browser tab stays in sync with layer toggles and thematic applies.
type EventHandler struct {
	humastar.Handler
	bus      *service.EventBus
	layerUI  *LayerHandler
	thematic *service.Thematic
	themeUI  *ThematicHandler
}

// NewEventHandler creates a new event handler.
func NewEventHandler(bus *service.EventBus, layerUI *LayerHandler, thematic *service.Thematic, themeUI *ThematicHandler) *EventHandler {
	return &EventHandler{
		Handler:  layerUI.Handler,
		bus:      bus,
		layerUI:  layerUI,
		thematic: thematic,
		themeUI:  themeUI,
	}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/viewer/events", h.Events, huma.OperationTags("viewer"))
}

func (h *EventHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := humastar.NewSSE(humaCtx)
			ch := h.bus.Subscribe()
			defer h.bus.Unsubscribe(ch)

			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					switch ev.Resource {
					case "layers":
						sse.Patch(h.layerUI.renderLayerList(), "#layer-list")
					case "thematic":
						state := h.thematic.State()
						if state.Active() {
							sse.Patch(h.themeUI.renderLegend(state), "#legend")
							sse.Signals(map[string]any{"legendvisible": true})
						} else {
							sse.Patch("", "#legend")
							sse.Signals(map[string]any{"legendvisible": false})
						}
					}
					sse.DispatchCustomEvent("resource-changed", map[string]any{
						"resource": ev.Resource,
						"action":   ev.Action,
						"id":       ev.ID,
					})
				}
			}
		},
	}, nil
}
