// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/munimap/munimap/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Layers   *service.LayerService
	Store    *service.FeatureStore
	Thematic *service.Thematic
	Source   *service.SourceService
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Layer ID" example:"sectors"`
}

// LayerStatus is a catalog entry plus its load state.
type LayerStatus struct {
	service.LayerConfig
	Loaded bool `json:"loaded" doc:"Whether the layer is currently loaded"`
}

type LayerOutput struct {
	Body service.LayerConfig
}

type LayersOutput struct {
	Body []LayerStatus
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// FeaturesOutput carries a styled GeoJSON document verbatim.
type FeaturesOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type AttributesOutput struct {
	Body []service.AttributeInfo
}

type ApplyInput struct {
	Body struct {
		Attribute string `json:"attribute" required:"true" minLength:"1" doc:"Numeric attribute to classify by" example:"population"`
	}
}

// ThematicBody is the thematic state plus the derived legend.
type ThematicBody struct {
	service.ThematicState
	Legend []service.LegendEntry `json:"legend,omitempty" doc:"Derived legend entries, one per class"`
}

type ThematicOutput struct {
	Body ThematicBody
}

// APIHandler holds the REST API handlers.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterLayers registers layer catalog and feature routes.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Get(api, "/api/v1/layers", h.GetLayers, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/layers/{id}", h.GetLayer, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/layers/{id}", h.PutLayer, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/layers/{id}/features", h.GetLayerFeatures, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/sources", h.GetSources, huma.OperationTags("layers"))
}

// RegisterThematic registers thematic mapping routes.
func (h *APIHandler) RegisterThematic(api huma.API) {
	huma.Get(api, "/api/v1/thematic", h.GetThematic, huma.OperationTags("thematic"))
	huma.Get(api, "/api/v1/thematic/attributes", h.GetAttributes, huma.OperationTags("thematic"))
	huma.Post(api, "/api/v1/thematic/apply", h.ApplyThematic, huma.OperationTags("thematic"))
	huma.Post(api, "/api/v1/thematic/reset", h.ResetThematic, huma.OperationTags("thematic"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetLayers(ctx context.Context, input *struct{}) (*LayersOutput, error) {
	layers := h.svc.Layers.List()
	out := make([]LayerStatus, 0, len(layers))
	for _, cfg := range layers {
		out = append(out, LayerStatus{LayerConfig: cfg, Loaded: h.svc.Store.Loaded(cfg.ID)})
	}
	return &LayersOutput{Body: out}, nil
}

func (h *APIHandler) GetLayer(ctx context.Context, input *IDInput) (*LayerOutput, error) {
	layer, ok := h.svc.Layers.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("layer not found")
	}
	return &LayerOutput{Body: layer}, nil
}

func (h *APIHandler) PutLayer(ctx context.Context, input *struct {
	IDInput
	Body service.LayerConfig
}) (*LayerOutput, error) {
	updated, err := h.svc.Layers.Update(input.ID, input.Body)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return &LayerOutput{Body: updated}, nil
}

// GetLayerFeatures returns a layer as styled GeoJSON: each feature carries
// its resolved style under the `_style` property. The layer is loaded on
// first request; loading is idempotent.
func (h *APIHandler) GetLayerFeatures(ctx context.Context, input *IDInput) (*FeaturesOutput, error) {
	cfg, ok := h.svc.Layers.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("layer not found")
	}

	ld, err := h.svc.Store.Load(cfg)
	if err != nil {
		return nil, huma.Error502BadGateway(err.Error())
	}

	// Styles are swapped wholesale by thematic apply/reset; iterate a
	// snapshot rather than the live slice.
	styles, ok := h.svc.Store.StylesSnapshot(cfg.ID)
	if !ok {
		return nil, huma.Error409Conflict("layer was unloaded during the request")
	}

	styled := geojson.NewFeatureCollection()
	for i, f := range ld.Collection.Features {
		sf := geojson.NewFeature(f.Geometry)
		sf.ID = f.ID
		for k, v := range f.Properties {
			sf.Properties[k] = v
		}
		sf.Properties["_style"] = styles[i]
		styled.Append(sf)
	}

	data, err := styled.MarshalJSON()
	if err != nil {
		return nil, huma.Error500InternalServerError("encoding features", err)
	}
	return &FeaturesOutput{ContentType: "application/geo+json", Body: data}, nil
}

func (h *APIHandler) GetSources(ctx context.Context, input *struct{}) (*struct{ Body []service.SourceFile }, error) {
	files, err := h.svc.Source.List()
	if err != nil {
		return nil, huma.Error500InternalServerError("listing sources", err)
	}
	return &struct{ Body []service.SourceFile }{Body: files}, nil
}

func (h *APIHandler) GetAttributes(ctx context.Context, input *struct{}) (*AttributesOutput, error) {
	attrs, err := h.svc.Thematic.Attributes()
	if err != nil {
		if errors.Is(err, service.ErrLayerNotLoaded) {
			return nil, huma.Error409Conflict(err.Error())
		}
		return nil, huma.Error500InternalServerError("listing attributes", err)
	}
	return &AttributesOutput{Body: attrs}, nil
}

func (h *APIHandler) GetThematic(ctx context.Context, input *struct{}) (*ThematicOutput, error) {
	state := h.svc.Thematic.State()
	return &ThematicOutput{Body: ThematicBody{
		ThematicState: state,
		Legend:        service.LegendEntries(state),
	}}, nil
}

func (h *APIHandler) ApplyThematic(ctx context.Context, input *ApplyInput) (*ThematicOutput, error) {
	state, err := h.svc.Thematic.Apply(input.Body.Attribute)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLayerNotLoaded):
			return nil, huma.Error409Conflict(err.Error())
		case errors.Is(err, service.ErrNoNumericData):
			return nil, huma.NewError(http.StatusUnprocessableEntity, err.Error())
		default:
			return nil, huma.Error500InternalServerError("applying thematic attribute", err)
		}
	}
	return &ThematicOutput{Body: ThematicBody{
		ThematicState: state,
		Legend:        service.LegendEntries(state),
	}}, nil
}

func (h *APIHandler) ResetThematic(ctx context.Context, input *struct{}) (*struct{ Body MessageBody }, error) {
	if err := h.svc.Thematic.Reset(); err != nil {
		return nil, huma.Error500InternalServerError("resetting thematic state", err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Thematic state cleared"}}, nil
}
