package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prospect/internal/domain"
	"github.com/kailas-cloud/prospect/internal/report"
	healthuc "github.com/kailas-cloud/prospect/internal/usecase/health"
)

// SessionHeader selects the caller's cached result set. Absent header falls
// back to a shared default slot.
const SessionHeader = "X-Session-ID"

// searchService aggregates chunk hits into ranked companies.
type searchService interface {
	Search(ctx context.Context, session, query string, topK int, threshold float64) ([]domain.CompanyMatch, error)
	ByPosition(session string, index int) (domain.CompanyMatch, bool)
}

// detailService fetches one company record under a deadline.
type detailService interface {
	Get(ctx context.Context, id string, timeout time.Duration) (domain.CompanyRecord, error)
}

// queryService runs guarded read-only SQL and schema introspection.
type queryService interface {
	Execute(ctx context.Context, query string, limit int) (domain.RowSet, error)
	Tables(ctx context.Context) ([]string, error)
	TableSchema(ctx context.Context, table string) (domain.TableSchema, error)
}

// healthService aggregates component health.
type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Defaults are the per-request fallbacks from config.
type Defaults struct {
	TopK          int
	Threshold     float64
	DetailTimeout time.Duration
}

// Server exposes the engine over HTTP.
type Server struct {
	search   searchService
	detail   detailService
	query    queryService
	health   healthService
	defaults Defaults
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search searchService,
	detail detailService,
	query queryService,
	health healthService,
	defaults Defaults,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:   search,
		detail:   detail,
		query:    query,
		health:   health,
		defaults: defaults,
		logger:   logger,
	}
}

// Routes mounts all API endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.handleSearch)
	r.Get("/v1/search/results/{index}", s.handleResultByPosition)
	r.Get("/v1/companies/{id}", s.handleCompanyDetail)
	r.Post("/v1/query", s.handleQuery)
	r.Get("/v1/schema", s.handleSchema)
	r.Get("/v1/schema/{table}", s.handleTableSchema)
	r.Get("/health", s.handleHealth)
}

type searchRequest struct {
	Query     string   `json:"query"`
	TopK      *int     `json:"top_k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type chunkResponse struct {
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

type companyMatchResponse struct {
	CompanyID   string          `json:"company_id"`
	CompanyName string          `json:"company_name"`
	Industry    string          `json:"industry,omitempty"`
	Rank        int             `json:"rank"`
	Score       float64         `json:"score"`
	Chunks      []chunkResponse `json:"chunks"`
}

type searchResponse struct {
	Query   string                 `json:"query"`
	Count   int                    `json:"count"`
	Matches []companyMatchResponse `json:"matches"`
	Report  string                 `json:"report"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}

	topK := s.defaults.TopK
	if req.TopK != nil {
		if *req.TopK <= 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "top_k must be positive")
			return
		}
		topK = *req.TopK
	}

	threshold := s.defaults.Threshold
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			writeError(w, http.StatusBadRequest, "validation_failed", "threshold must be in [0,1]")
			return
		}
		threshold = *req.Threshold
	}

	session := r.Header.Get(SessionHeader)

	matches, err := s.search.Search(r.Context(), session, req.Query, topK, threshold)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := searchResponse{
		Query:   req.Query,
		Count:   len(matches),
		Matches: matchesToResponse(matches),
		Report:  report.SearchResults(matches, req.Query),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResultByPosition(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "index must be an integer")
		return
	}

	session := r.Header.Get(SessionHeader)

	match, ok := s.search.ByPosition(session, index)
	if !ok {
		// Out-of-bounds resolves to null, not an error.
		writeJSON(w, http.StatusOK, map[string]any{"match": nil})
		return
	}

	resp := matchesToResponse([]domain.CompanyMatch{match})[0]
	writeJSON(w, http.StatusOK, map[string]any{"match": resp})
}

func (s *Server) handleCompanyDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	timeout := s.defaults.DetailTimeout
	if v := r.URL.Query().Get("timeout_ms"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "timeout_ms must be a positive integer")
			return
		}
		timeout = time.Duration(ms) * time.Millisecond
	}

	rec, err := s.detail.Get(r.Context(), id, timeout)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"company_id": rec.ID,
		"report":     report.CompanyDetail(rec),
	})
}

type queryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}

	rs, err := s.query.Execute(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rows":   len(rs.Rows),
		"report": report.Rows(rs),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	tables, err := s.query.Tables(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"report": report.TableList(tables)})
}

func (s *Server) handleTableSchema(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	ts, err := s.query.TableSchema(r.Context(), table)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"report": report.TableSchema(ts)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rep := s.health.Check(r.Context())

	status := http.StatusOK
	if rep.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, rep)
}

func matchesToResponse(matches []domain.CompanyMatch) []companyMatchResponse {
	out := make([]companyMatchResponse, len(matches))
	for i, m := range matches {
		chunks := make([]chunkResponse, len(m.Chunks))
		for j, c := range m.Chunks {
			chunks[j] = chunkResponse{Content: c.Content, Similarity: c.Similarity}
		}
		out[i] = companyMatchResponse{
			CompanyID:   m.CompanyID,
			CompanyName: m.CompanyName,
			Industry:    m.Industry,
			Rank:        m.Rank,
			Score:       m.Score,
			Chunks:      chunks,
		}
	}
	return out
}

// statusMapping pairs a sentinel error with its HTTP representation.
type statusMapping struct {
	sentinel error
	status   int
	code     string
}

var statusMappings = []statusMapping{
	{domain.ErrEmbedderNotConfigured, http.StatusServiceUnavailable, "embedder_not_configured"},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"},
	{domain.ErrSearchFailed, http.StatusBadGateway, "search_failed"},
	{domain.ErrCompanyNotFound, http.StatusNotFound, "company_not_found"},
	{domain.ErrTimeout, http.StatusGatewayTimeout, "timeout"},
	{domain.ErrQueryNotReadOnly, http.StatusBadRequest, "query_not_read_only"},
	{domain.ErrStoreFailed, http.StatusInternalServerError, "store_failure"},
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, m := range statusMappings {
		if errors.Is(err, m.sentinel) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}

	s.logger.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
