package internal

import "time"

// Pair is one aligned sentence pair of the tabular corpus.
type Pair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

const (
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// RunRecord summarises a single pipeline run for the run history.
type RunRecord struct {
	ID          string    `json:"id"`
	RemoteURL   string    `json:"remote_url"`
	LocalPath   string    `json:"local_path"`
	Downloaded  bool      `json:"downloaded"`
	LocalSize   int64     `json:"local_size"`
	RemoteSize  int64     `json:"remote_size"`
	Units       int       `json:"units"`
	Pairs       int       `json:"pairs"`
	Kept        int       `json:"kept"`
	Removed     int       `json:"removed"`
	SourceLines int       `json:"source_lines"`
	TargetLines int       `json:"target_lines"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}
