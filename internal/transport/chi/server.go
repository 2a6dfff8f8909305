package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	healthuc "github.com/jagritiyatra/alumnidex/internal/usecase/health"
	searchuc "github.com/jagritiyatra/alumnidex/internal/usecase/search"
)

// maxBodyBytes bounds request bodies; chat messages are short.
const maxBodyBytes = 64 << 10

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeUnauthorized     = "unauthorized"
	codeInternalError    = "internal_error"
)

// Searcher answers chat turns.
type Searcher interface {
	Search(ctx context.Context, text, userKey string) searchuc.Reply
	ShowMore(ctx context.Context, userKey string) searchuc.Reply
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

type messageRequest struct {
	UserKey string `json:"user_key" validate:"required,max=320"`
	Text    string `json:"text" validate:"required,max=4000"`
}

type moreRequest struct {
	UserKey string `json:"user_key" validate:"required,max=320"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server is the HTTP surface of the search core. Turns of one user are
// serialized; different users proceed concurrently.
type Server struct {
	search   Searcher
	health   HealthChecker
	validate *validator.Validate
	turns    *userLocks
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:   search,
		health:   health,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		turns:    newUserLocks(),
		logger:   logger,
	}
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/v1/messages", s.Message)
	r.Post("/v1/more", s.More)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Message handles POST /v1/messages.
func (s *Server) Message(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !s.decode(w, r, &req) {
		return
	}

	unlock := s.turns.lock(req.UserKey)
	defer unlock()
	writeJSON(w, http.StatusOK, s.search.Search(r.Context(), req.Text, req.UserKey))
}

// More handles POST /v1/more.
func (s *Server) More(w http.ResponseWriter, r *http.Request) {
	var req moreRequest
	if !s.decode(w, r, &req) {
		return
	}

	unlock := s.turns.lock(req.UserKey)
	defer unlock()
	writeJSON(w, http.StatusOK, s.search.ShowMore(r.Context(), req.UserKey))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads and validates a JSON body into v, writing the error response
// itself when it fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

// validationMessage lists the failing fields without echoing their values.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", jsonName(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

func jsonName(field string) string {
	switch field {
	case "UserKey":
		return "user_key"
	case "Text":
		return "text"
	}
	return strings.ToLower(field)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
