// Package api exposes the bootstrap service over HTTP
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"prsboot/app"
	"prsboot/domain/stats"
	"prsboot/internal"
	"prsboot/internal/errors"
	"prsboot/internal/report"
)

// Server routes HTTP requests to the bootstrap service
type Server struct {
	router  *chi.Mux
	service *app.BootstrapService
	logger  *internal.Logger
}

// BootstrapRequest is the JSON body of POST /api/bootstrap
type BootstrapRequest struct {
	KeySamples     string `json:"key_samples"`
	PRSFile        string `json:"prs_file"`
	AncestryFile   string `json:"ancestry_file"`
	ComparisonType string `json:"comparison_type"`
	AncestryColumn string `json:"ancestry_column,omitempty"`
	NBoot          int    `json:"n_boot,omitempty"`
	Seed           *int64 `json:"seed,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewServer creates a server with its routes and middleware
func NewServer(service *app.BootstrapService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/bootstrap", s.handleBootstrap)
		r.Get("/results", s.handleListResults)
		r.Get("/results/report", s.handleReport)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	var body BootstrapRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	var missing []string
	for name, v := range map[string]string{
		"key_samples":     body.KeySamples,
		"prs_file":        body.PRSFile,
		"ancestry_file":   body.AncestryFile,
		"comparison_type": body.ComparisonType,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		s.writeError(w, errors.ValidationError("missing required fields: "+strings.Join(missing, ", ")))
		return
	}
	if body.NBoot < 0 {
		s.writeError(w, errors.ValidationError("n_boot must be positive"))
		return
	}

	req := app.BootstrapRequest{
		KeySamplesPath: body.KeySamples,
		PRSPath:        body.PRSFile,
		AncestryPath:   body.AncestryFile,
		ComparisonType: stats.ComparisonType(body.ComparisonType),
		AncestryColumn: body.AncestryColumn,
		Iterations:     body.NBoot,
	}
	if body.Seed != nil {
		req.Seed = *body.Seed
		req.SeedSet = true
	}

	result, err := s.service.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("run %s: %s vs %s rho=%.4f", result.RunID, result.Record.PRSFile, result.Record.Ancestry, result.Record.SpearmanRho)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListResults(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []stats.ResultRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListResults(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(records))
}

// writeError maps configuration and input problems to 400 and the rest to 500
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusBadRequest
	if !errors.IsUserError(err) {
		status = http.StatusInternalServerError
		s.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
