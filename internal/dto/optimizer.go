package dto

import "time"

// StartOptimizationRequest launches one optimization run over the
// current catalog snapshot.
// Omitted sizes fall back to the configured defaults.
type StartOptimizationRequest struct {
	PopulationSize int   `json:"populationSize" validate:"omitempty,min=4,max=100"`
	MaxIterations  int   `json:"maxIterations" validate:"omitempty,min=4,max=100"`
	Seed           int64 `json:"seed" validate:"omitempty"`
}

// OptimizationRunResponse reports one run's lifecycle and outcome.
type OptimizationRunResponse struct {
	RunID       string     `json:"runId"`
	State       string     `json:"state"`
	BestFitness *float64   `json:"bestFitness,omitempty"`
	Generations int        `json:"generations"`
	Unplaced    int        `json:"unplacedSections"`
	TimetableID *string    `json:"timetableId,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

// ProgressEvent is one generation update streamed to subscribers.
type ProgressEvent struct {
	RunID   string `json:"runId"`
	Seq     int    `json:"seq"`
	Message string `json:"message"`
}
