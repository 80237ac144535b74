package model

import (
	"time"
)

// Analysis tracks one uploaded agreement through the analyzer pipeline
type Analysis struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	Owner       string       `json:"owner"`
	DocumentURL string       `json:"document_url"`
	Status      string       `json:"status"` // pending, processing, completed, failed
	TaskID      string       `json:"task_id,omitempty"`
	Report      *LeaseReport `json:"report,omitempty"`
	Score       int          `json:"score"`
	ErrorMsg    string       `json:"error_msg,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Analysis status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
