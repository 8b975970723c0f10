// Package server assembles the munimap HTTP server: REST API, viewer SSE
// handlers, and static assets.
package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"go.uber.org/zap"

	"github.com/munimap/munimap/internal/api"
	"github.com/munimap/munimap/internal/api/viewer"
	"github.com/munimap/munimap/internal/db"
	"github.com/munimap/munimap/internal/humastar"
	"github.com/munimap/munimap/internal/service"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	WebDir  string // Path to web/ directory for static files and templates
}

// Server is the municipal map HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	log      *zap.Logger
	db       *sql.DB
	bus      *service.EventBus
	services *api.Services
	renderer *humastar.Renderer
}

// New creates a new munimap server.
func New(cfg Config) *Server {
	log, err := zap.NewProduction()
	if err != nil {
		log = zap.NewNop()
	}

	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("munimap API", "1.0.0")
	humaConfig.Info.Description = "Thematic web map API for a single municipality: GeoJSON layers, classed choropleth styling, and legends."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}

	humaAPI := humago.New(mux, humaConfig)

	// Initialize services
	bus := service.NewEventBus()
	layers := service.NewLayerService(cfg.DataDir)
	store := service.NewFeatureStore(cfg.DataDir, bus, log)

	thematicLayerID := "sectors"
	if tl, ok := layers.ThematicLayer(); ok {
		thematicLayerID = tl.ID
	}
	thematic := service.NewThematic(store, thematicLayerID, bus, log)

	services := &api.Services{
		Layers:   layers,
		Store:    store,
		Thematic: thematic,
		Source:   service.NewSourceService(cfg.DataDir),
	}

	// Initialize template renderer for viewer SSE handlers
	var renderer *humastar.Renderer
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if r, err := humastar.NewRenderer(fragmentsDir); err == nil {
			renderer = r
			log.Info("loaded fragment templates", zap.String("dir", fragmentsDir))
		}
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		log:      log,
		bus:      bus,
		services: services,
		renderer: renderer,
	}

	// Initialize DuckDB connection
	conn, err := db.Get(db.Config{
		DataDir: cfg.DataDir,
		DBName:  "munimap",
	})
	if err == nil {
		s.db = conn
	} else {
		log.Warn("duckdb unavailable, attribute stats disabled", zap.Error(err))
	}

	s.routes()
	go s.mirrorAttributes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated API description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Close closes server resources.
func (s *Server) Close() error {
	s.log.Sync()
	return db.Close()
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	apiHandler := api.NewAPIHandler(s.services)
	apiHandler.RegisterHealth(s.humaAPI)
	apiHandler.RegisterLayers(s.humaAPI)
	apiHandler.RegisterThematic(s.humaAPI)

	api.NewInfoHandler(s.config.DataDir, s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	// Register viewer SSE routes using Huma + Datastar SDK. These need the
	// fragment templates; the JSON API works without them.
	if s.renderer != nil {
		layerHandler := viewer.NewLayerHandler(s.services.Layers, s.services.Store, s.services.Thematic, s.renderer)
		layerHandler.RegisterRoutes(s.humaAPI)

		thematicHandler := viewer.NewThematicHandler(s.services.Thematic, s.renderer)
		thematicHandler.RegisterRoutes(s.humaAPI)

		featureHandler := viewer.NewFeatureHandler(s.services.Layers, s.services.Store, s.services.Thematic, s.renderer)
		featureHandler.RegisterRoutes(s.humaAPI)

		eventHandler := viewer.NewEventHandler(s.bus, layerHandler, s.services.Thematic, thematicHandler)
		eventHandler.RegisterRoutes(s.humaAPI)
	}

	// Source file management (upload/delete stay outside Huma: multipart
	// and raw-path handling)
	s.mux.HandleFunc("/api/v1/sources/upload", s.handleSourceUpload)
	s.mux.HandleFunc("/api/v1/sources/", s.handleSourceDelete)

	// Static files
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	// Page routes
	s.mux.HandleFunc("/viewer", s.handleViewer)
	s.mux.HandleFunc("/", s.handleRoot)
}

// mirrorAttributes keeps the DuckDB attribute table in step with layer
// loads, so stats queries always reflect the data on the map.
func (s *Server) mirrorAttributes() {
	if s.db == nil {
		return
	}
	ch := s.bus.Subscribe()
	defer s.bus.Unsubscribe(ch)

	for ev := range ch {
		if ev.Resource != "layers" || ev.Action != "loaded" {
			continue
		}
		ld, ok := s.services.Store.Get(ev.ID)
		if !ok {
			continue
		}
		if err := db.ReplaceLayerAttributes(s.db, ev.ID, ld.Collection); err != nil {
			s.log.Warn("mirroring layer attributes failed",
				zap.String("layer", ev.ID), zap.Error(err))
		}
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "munimap",
		"status":  "running",
	})
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	templatePath := filepath.Join(s.config.WebDir, "templates", "viewer.html")
	http.ServeFile(w, r, templatePath)
}

// handleSourceUpload handles GeoJSON file uploads.
func (s *Server) handleSourceUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(50 << 20); err != nil {
		http.Error(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".geojson" && ext != ".json" {
		http.Error(w, "Only .geojson or .json files are allowed", http.StatusBadRequest)
		return
	}

	sourcesDir := filepath.Join(s.config.DataDir, "sources")
	if err := os.MkdirAll(sourcesDir, 0755); err != nil {
		http.Error(w, "Failed to create sources directory", http.StatusInternalServerError)
		return
	}
	destPath := filepath.Join(sourcesDir, header.Filename)

	dest, err := os.Create(destPath)
	if err != nil {
		http.Error(w, "Failed to save file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		http.Error(w, "Failed to write file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.log.Info("source uploaded", zap.String("file", header.Filename))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"uploaded": header.Filename})
}

// handleSourceDelete deletes a source file.
func (s *Server) handleSourceDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Path
	prefix := "/api/v1/sources/"
	if !strings.HasPrefix(path, prefix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	filename := strings.TrimPrefix(path, prefix)
	if filename == "" {
		http.Error(w, "Filename required", http.StatusBadRequest)
		return
	}

	if strings.Contains(filename, "/") || strings.Contains(filename, "\\") || strings.Contains(filename, "..") {
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	}

	sourcesDir := filepath.Join(s.config.DataDir, "sources")
	filePath := filepath.Join(sourcesDir, filename)

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "File not found", http.StatusNotFound)
		} else {
			http.Error(w, "Failed to delete file: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	s.log.Info("source deleted", zap.String("file", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Deleted"))
}
