package model

import (
	"time"
)

// RunStatus represents the current state of a sweep.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one sweep recorded in the ledger.
type Run struct {
	ID        string     `json:"id"`
	Input     string     `json:"input"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the totals of a finished sweep.
type RunResult struct {
	Places          int     `json:"places"`
	Searched        int     `json:"searched"`
	Skipped         int     `json:"skipped"`
	Rows            int     `json:"rows"`
	Duplicates      int     `json:"duplicates"`
	TextSearchCalls int64   `json:"text_search_calls"`
	DetailsCalls    int64   `json:"details_calls"`
	EstimatedCost   float64 `json:"estimated_cost"`
	CapReached      bool    `json:"cap_reached"`
}

// PlaceOutcome records what happened to one place during a sweep.
type PlaceOutcome struct {
	City       string `json:"city"`
	State      string `json:"state"`
	Population int64  `json:"population"`
	Strategy   string `json:"strategy"`
	Calls      int    `json:"calls"`
	Candidates int    `json:"candidates"`
	Rows       int    `json:"rows"`
	SkipReason string `json:"skip_reason,omitempty"`
}
