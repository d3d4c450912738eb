package llm

import (
	"fmt"
	"time"
)

const (
	// DefaultMaxAttempts is the number of calls made before giving up.
	DefaultMaxAttempts = 3
	// DefaultRetryDelay is the wait after a failed attempt, and also the cap
	// on the wait suggested by a loading model.
	DefaultRetryDelay = 5 * time.Second
	// FallbackAnswer is returned when a successful response has no generated text.
	FallbackAnswer = "I'm sorry, I couldn't generate a response."
)

// GenerationParams holds the fixed generation parameters sent with every question.
type GenerationParams struct {
	// MaxLength is the maximum output length.
	MaxLength int `json:"max_length"`

	// Temperature controls the randomness of the output.
	Temperature float32 `json:"temperature"`
}

// DefaultParams returns the parameters used when none are configured.
func DefaultParams() GenerationParams {
	return GenerationParams{
		MaxLength:   100,
		Temperature: 0.7,
	}
}

// InferenceRequest is the payload posted to the inference endpoint.
type InferenceRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters GenerationParams `json:"parameters"`
}

// InferenceResponse is a single generation result.
type InferenceResponse struct {
	GeneratedText string `json:"generated_text"`
}

// LoadingResponse is the body returned with 503 while the model initializes.
type LoadingResponse struct {
	Error         string   `json:"error"`
	EstimatedTime *float64 `json:"estimated_time"`
}

// InferenceError is returned when no answer could be obtained.
type InferenceError struct {
	Attempts int
	Err      error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
