package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"qa-history/internal/contextutil"
	"qa-history/internal/service"
)

// HistoryHandler handles HTTP requests for the question history.
type HistoryHandler struct {
	qaService service.QAService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(qaService service.QAService) *HistoryHandler {
	return &HistoryHandler{
		qaService: qaService,
	}
}

// HistoryItem is one past exchange.
//
// swagger:model HistoryItem
type HistoryItem struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryResponse is one page of past exchanges, newest first.
//
// swagger:model HistoryResponse
type HistoryResponse struct {
	Items      []HistoryItem `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// ServeHTTP handles HTTP requests for the question history.
//
// swagger:route GET /history listHistory
//
// # List past questions
//
// Returns stored exchanges ordered by timestamp descending.
//
// ---
// produces:
// - application/json
// parameters:
//   - in: query
//     name: page
//     type: integer
//     required: false
//     description: Page number, starting at 1 (default 1)
//   - in: query
//     name: page_size
//     type: integer
//     required: false
//     description: Items per page, 1 to 100 (default 10)
//
// responses:
//
//	'200':
//	  description: One page of history
//	  schema:
//	    "$ref": "#/definitions/HistoryResponse"
//	'400':
//	  description: Invalid page or page_size
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'429':
//	  description: Rate limit exceeded
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'500':
//	  description: Storage failure
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	page, err := intParam(r, "page", service.DefaultPage)
	if err != nil {
		logger.WarnContext(ctx, "invalid query parameter", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := intParam(r, "page_size", service.DefaultPageSize)
	if err != nil {
		logger.WarnContext(ctx, "invalid query parameter", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.qaService.History(ctx, service.HistoryRequest{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	items := make([]HistoryItem, len(result.Items))
	for i, item := range result.Items {
		items[i] = HistoryItem{
			ID:        item.ID,
			Question:  item.Question,
			Answer:    item.Answer,
			Timestamp: item.Timestamp,
		}
	}

	writeJSON(ctx, w, http.StatusOK, HistoryResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// intParam reads an integer query parameter, returning def when it is absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
