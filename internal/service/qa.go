package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_inference_client.go -package=mocks qa-history/internal/service InferenceClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_qa_service.go -package=mocks -mock_names=QAService=MockQAService qa-history/internal/service QAService

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"qa-history/internal/contextutil"
	"qa-history/internal/observability"
	"qa-history/internal/storage"
)

const (
	// MaxQuestionLength is the longest accepted question, in characters.
	MaxQuestionLength = 1000
	// DefaultPage is the history page used when none is given.
	DefaultPage = 1
	// DefaultPageSize is the history page size used when none is given.
	DefaultPageSize = 10
	// MaxPageSize bounds a single history page.
	MaxPageSize = 100
)

// InferenceClient answers questions using a remote model.
// This interface is defined from the service layer's perspective (consumer-first).
type InferenceClient interface {
	// Answer returns the model's answer to question.
	Answer(ctx context.Context, question string) (string, error)
}

// AskRequest represents a question submission in the domain layer.
type AskRequest struct {
	Question string
}

// AskResponse represents the answer to a submitted question.
type AskResponse struct {
	Answer string
	Record storage.QARecord
}

// HistoryRequest selects one page of history.
type HistoryRequest struct {
	Page     int
	PageSize int
}

// HistoryItem is one exchange in a history page.
type HistoryItem struct {
	ID        int64
	Question  string
	Answer    string
	Timestamp time.Time
}

// HistoryPage is one page of history, newest first.
type HistoryPage struct {
	Items      []HistoryItem
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// QAService answers questions and serves the history of past exchanges.
type QAService interface {
	// Ask validates the question, obtains an answer and records the exchange.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// History returns one page of past exchanges.
	History(ctx context.Context, req HistoryRequest) (HistoryPage, error)
}

// qaService implements QAService.
type qaService struct {
	client  InferenceClient
	store   storage.QAStore
	metrics *observability.Metrics
}

// NewQAService creates a new QAService. metrics may be nil.
func NewQAService(client InferenceClient, store storage.QAStore, metrics *observability.Metrics) QAService {
	return &qaService{
		client:  client,
		store:   store,
		metrics: metrics,
	}
}

// ValidateQuestion checks that a question is non-blank and not too long.
func ValidateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return &ValidationError{Field: "question", Message: "cannot be empty"}
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return &ValidationError{Field: "question", Message: fmt.Sprintf("too long (max %d characters)", MaxQuestionLength)}
	}
	return nil
}

// Ask processes a question submission.
func (s *qaService) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	// Business validation; the handler logs the rejection.
	if err := ValidateQuestion(req.Question); err != nil {
		return AskResponse{}, err
	}

	// Call external inference service
	answer, err := s.client.Answer(ctx, req.Question)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get answer", "error", err)
		return AskResponse{}, wrapKind(ErrInference, err)
	}

	record, err := s.store.Insert(ctx, req.Question, answer)
	if err != nil {
		logger.ErrorContext(ctx, "failed to store question", "error", err)
		return AskResponse{}, wrapKind(ErrStorage, err)
	}
	s.metrics.ObserveQuestionStored()

	logger.InfoContext(ctx, "question answered", "id", record.ID, "question_length", len(req.Question), "answer_length", len(answer))
	return AskResponse{
		Answer: answer,
		Record: *record,
	}, nil
}

// History returns one page of past exchanges.
func (s *qaService) History(ctx context.Context, req HistoryRequest) (HistoryPage, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Page < 1 {
		return HistoryPage{}, &ValidationError{Field: "page", Message: "must be at least 1"}
	}
	if req.PageSize < 1 || req.PageSize > MaxPageSize {
		return HistoryPage{}, &ValidationError{Field: "page_size", Message: fmt.Sprintf("must be between 1 and %d", MaxPageSize)}
	}

	total, err := s.store.CountAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count history", "error", err)
		return HistoryPage{}, wrapKind(ErrStorage, err)
	}

	records, err := s.store.GetPage(ctx, req.Page, req.PageSize)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read history page", "error", err, "page", req.Page, "page_size", req.PageSize)
		return HistoryPage{}, wrapKind(ErrStorage, err)
	}

	items := make([]HistoryItem, len(records))
	for i, rec := range records {
		items[i] = HistoryItem{
			ID:        rec.ID,
			Question:  rec.Question,
			Answer:    rec.Answer,
			Timestamp: rec.Timestamp,
		}
	}

	return HistoryPage{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: (total + req.PageSize - 1) / req.PageSize,
	}, nil
}
