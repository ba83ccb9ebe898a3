package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jmanzanog/instrument-search/internal/application"
	"github.com/jmanzanog/instrument-search/internal/domain"
)

// SearchService defines the operations the handlers depend on
type SearchService interface {
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.RankedMatch, error)
	Reload(ctx context.Context) (application.CatalogInfo, error)
	ImportInstruments(ctx context.Context, records []domain.InstrumentRecord) (application.CatalogInfo, error)
	CatalogInfo(ctx context.Context) (application.CatalogInfo, error)
}

// SearchDefaults fill in threshold and limit when a request omits them.
type SearchDefaults struct {
	Threshold  int
	MaxResults int
}

type Handler struct {
	searchService SearchService
	defaults      SearchDefaults
}

func NewHandler(searchService SearchService, defaults SearchDefaults) *Handler {
	return &Handler{
		searchService: searchService,
		defaults:      defaults,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type InstrumentResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Ticker         string   `json:"ticker,omitempty"`
	IdentifierCode string   `json:"identifier_code,omitempty"`
	ContractCode   string   `json:"contract_code,omitempty"`
	Exchange       string   `json:"exchange,omitempty"`
	Active         bool     `json:"active"`
	Wallets        []string `json:"wallets"`
}

type MatchResponse struct {
	Instrument InstrumentResponse `json:"instrument"`
	Strategy   string             `json:"strategy"`
	Score      int                `json:"score"`
}

type SearchResponse struct {
	Query     string          `json:"query"`
	Wallet    string          `json:"wallet,omitempty"`
	Mode      string          `json:"mode"`
	Threshold int             `json:"threshold"`
	Limit     int             `json:"limit"`
	Count     int             `json:"count"`
	Results   []MatchResponse `json:"results"`
}

type InstrumentPayload struct {
	ID             string   `json:"id" binding:"required"`
	Name           string   `json:"name" binding:"required"`
	Ticker         string   `json:"ticker"`
	IdentifierCode string   `json:"identifier_code"`
	ContractCode   string   `json:"contract_code"`
	Exchange       string   `json:"exchange"`
	Active         *bool    `json:"active"`
	Wallets        []string `json:"wallets"`
}

type ImportInstrumentsRequest struct {
	Instruments []InstrumentPayload `json:"instruments" binding:"required,min=1,dive"`
}

func (h *Handler) SearchInstruments(c *gin.Context) {
	ctx := c.Request.Context()

	q, err := h.parseSearchQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	matches, err := h.searchService.Search(ctx, q)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		slog.ErrorContext(ctx, "Search failed", "query", q.Text, "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	results := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		results = append(results, MatchResponse{
			Instrument: toInstrumentResponse(m.Instrument),
			Strategy:   m.Strategy.String(),
			Score:      m.Score,
		})
	}

	c.JSON(http.StatusOK, SearchResponse{
		Query:     q.Text,
		Wallet:    q.Wallet,
		Mode:      string(q.EffectiveMode()),
		Threshold: q.Threshold,
		Limit:     q.MaxResults,
		Count:     len(results),
		Results:   results,
	})
}

// parseSearchQuery reads q, wallet, threshold, limit and mode. Malformed
// numbers are rejected; range checks are left to the engine.
func (h *Handler) parseSearchQuery(c *gin.Context) (domain.SearchQuery, error) {
	threshold := h.defaults.Threshold
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return domain.SearchQuery{}, &domain.InvalidQueryError{Field: "threshold", Reason: "must be an integer"}
		}
		threshold = v
	}

	limit := h.defaults.MaxResults
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return domain.SearchQuery{}, &domain.InvalidQueryError{Field: "max_results", Reason: "must be an integer"}
		}
		limit = v
	}

	mode, err := domain.ParseSearchMode(c.Query("mode"))
	if err != nil {
		return domain.SearchQuery{}, err
	}

	q := domain.NewSearchQuery(c.Query("q"), c.Query("wallet"), threshold, limit)
	q.Mode = mode
	return q, nil
}

func (h *Handler) GetCatalog(c *gin.Context) {
	info, err := h.searchService.CatalogInfo(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCatalogUnavailable) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *Handler) ReloadCatalog(c *gin.Context) {
	info, err := h.searchService.Reload(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to reload catalog", "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *Handler) ImportInstruments(c *gin.Context) {
	var req ImportInstrumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	records := make([]domain.InstrumentRecord, 0, len(req.Instruments))
	for _, p := range req.Instruments {
		active := true
		if p.Active != nil {
			active = *p.Active
		}
		records = append(records, domain.NewInstrumentRecord(
			p.ID, p.Name, p.Ticker, p.IdentifierCode, p.ContractCode, p.Exchange, active, p.Wallets...,
		))
	}

	info, err := h.searchService.ImportInstruments(c.Request.Context(), records)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to import instruments", "count", len(records), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

func toInstrumentResponse(r *domain.InstrumentRecord) InstrumentResponse {
	return InstrumentResponse{
		ID:             r.ID,
		Name:           r.Name,
		Ticker:         r.Ticker,
		IdentifierCode: r.IdentifierCode,
		ContractCode:   r.ContractCode,
		Exchange:       r.Exchange,
		Active:         r.Active,
		Wallets:        r.Wallets(),
	}
}
