package handlers

import (
	"encoding/json"
	"net/http"

	"qa-history/internal/contextutil"
	"qa-history/internal/service"
)

// AskHandler handles HTTP requests for question submission.
type AskHandler struct {
	qaService service.QAService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(qaService service.QAService) *AskHandler {
	return &AskHandler{
		qaService: qaService,
	}
}

// AskRequest represents the HTTP request payload for a question.
//
// swagger:model AskRequest
type AskRequest struct {
	// The question to answer, at most 1000 characters
	Question string `json:"question"`
}

// AskResponse represents the HTTP response payload for a question.
//
// swagger:model AskResponse
type AskResponse struct {
	// The generated answer
	Answer string `json:"answer"`
}

// ServeHTTP handles HTTP requests for question submission.
//
// swagger:route POST /ask askQuestion
//
// # Ask a question
//
// Forwards the question to the inference endpoint, stores the exchange and
// returns the answer.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// parameters:
//   - in: body
//     name: body
//     required: true
//     schema:
//     "$ref": "#/definitions/AskRequest"
//
// responses:
//
//	'200':
//	  description: The generated answer
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Empty or too long question, or malformed body
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'429':
//	  description: Rate limit exceeded
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'500':
//	  description: Inference or storage failure
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcResp, err := h.qaService.Ask(ctx, service.AskRequest{
		Question: req.Question,
	})
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, AskResponse{
		Answer: svcResp.Answer,
	})
}
