package types

import "github.com/ZanzyTHEbar/speak-o-meter/internal/resilience"

// ScoreRequest is the body of POST /score
type ScoreRequest struct {
	Transcript      string   `json:"transcript" example:"Hello everyone, myself Asha. I am 13 years old and I study in class 8."`
	DurationSeconds *float64 `json:"duration_seconds,omitempty" example:"52"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status        string                 `json:"status" example:"ok"`
	GrammarSource string                 `json:"grammar_source" example:"external"`
	Summary       string                 `json:"summary" example:"provider"`
	Metrics       map[string]interface{} `json:"metrics,omitempty"`
}

// ServicesResponse is the body of GET /health/services
type ServicesResponse struct {
	Healthy   bool                         `json:"healthy"`
	Providers []resilience.ProviderHealth  `json:"providers"`
	Breakers  []resilience.BreakerStats    `json:"breakers"`
}
