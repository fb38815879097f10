package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/registry"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type handler struct {
	reader Reader
	logger *slog.Logger
	now    func() time.Time
}

func newHandler(reader Reader, log *slog.Logger, now func() time.Time) *handler {
	if now == nil {
		now = time.Now
	}
	return &handler{reader: reader, logger: log, now: now}
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

type articleResponse struct {
	ArticleID      string    `json:"article_id"`
	SourcePlatform string    `json:"source_platform"`
	Title          string    `json:"title"`
	Author         *string   `json:"author"`
	PubDate        *string   `json:"pub_date"`
	Link           string    `json:"link"`
	Category       *string   `json:"category"`
	IsValid        bool      `json:"is_valid"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type quarantineResponse struct {
	ID              int64     `json:"id"`
	SourceTable     string    `json:"source_table"`
	PKColumn        string    `json:"pk_column_name"`
	PKValue         string    `json:"pk_value"`
	TotalColumns    int       `json:"total_columns"`
	ValidationError string    `json:"validation_error"`
	QuarantinedAt   time.Time `json:"quarantined_at"`
}

type runResponse struct {
	RunID            string    `json:"run_id"`
	SourceTable      string    `json:"source_table"`
	RunAt            time.Time `json:"run_at"`
	TotalRows        int       `json:"total_rows"`
	CleanRows        int       `json:"clean_rows"`
	QuarantinedRows  int       `json:"quarantined_rows"`
	IntegratedRows   int       `json:"integrated_rows"`
	FlaggedRows      int       `json:"flagged_rows"`
	DuplicateIDs     int       `json:"duplicate_ids"`
	NullTitles       int       `json:"null_titles"`
	ValidationPassed bool      `json:"validation_passed"`
	Error            string    `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Database:  "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err := h.reader.Ping(r.Context()); err != nil {
		h.warn("health check failed", "error", err)
		resp.Status, resp.Database = "fail", err.Error()
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reader.DimensionStats(r.Context())
	if err != nil {
		h.internalError(w, "dimension stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) quarantineStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reader.QuarantineStats(r.Context())
	if err != nil {
		h.internalError(w, "quarantine stats", err)
		return
	}
	if stats == nil {
		stats = []domain.QuarantineStat{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) quarantine(w http.ResponseWriter, r *http.Request) {
	schema, err := registry.ResolveName(chi.URLParam(r, "source"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records, err := h.reader.QuarantineRecords(r.Context(), schema.Table, limit)
	if err != nil {
		h.internalError(w, "quarantine records", err)
		return
	}

	resp := make([]quarantineResponse, 0, len(records))
	for _, q := range records {
		resp = append(resp, quarantineResponse{
			ID:              q.ID,
			SourceTable:     q.SourceTable,
			PKColumn:        q.PKColumn,
			PKValue:         q.PKValue,
			TotalColumns:    q.TotalColumns,
			ValidationError: q.ValidationError,
			QuarantinedAt:   q.QuarantinedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) runs(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	entries, err := h.reader.RecentRuns(r.Context(), limit)
	if err != nil {
		h.internalError(w, "recent runs", err)
		return
	}

	resp := make([]runResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, runResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) articles(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	offset, err := uintParam(r, "offset", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var platform domain.Platform
	if name := r.URL.Query().Get("source"); name != "" {
		source, err := domain.ParseSource(name)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		platform = source.Platform()
	}

	list, err := h.reader.Articles(r.Context(), platform, limit, offset)
	if err != nil {
		h.internalError(w, "list articles", err)
		return
	}

	resp := make([]articleResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, toArticleResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) article(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "articleID")
	a, err := h.reader.Article(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "article not found"})
		return
	}
	if err != nil {
		h.internalError(w, "get article", err)
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(a))
}

func toArticleResponse(a domain.DimensionArticle) articleResponse {
	return articleResponse{
		ArticleID:      a.ArticleID,
		SourcePlatform: string(a.SourcePlatform),
		Title:          a.Title,
		Author:         a.Author,
		PubDate:        a.PubDate,
		Link:           a.Link,
		Category:       a.Category,
		IsValid:        a.IsValid,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func limitParam(r *http.Request) (uint64, error) {
	limit, err := uintParam(r, "limit", defaultLimit)
	if err != nil {
		return 0, err
	}
	if limit == 0 || limit > maxLimit {
		return 0, errors.New("limit must be between 1 and " + strconv.Itoa(maxLimit))
	}
	return limit, nil
}

func uintParam(r *http.Request, name string, def uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return v, nil
}

func (h *handler) internalError(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error("api request failed", "op", op, "error", err)
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (h *handler) warn(msg string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Warn(msg, args...)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
