package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is one job application. A zero SubmissionDate means the
// date is unknown; unknown dates sort as oldest.
type Application struct {
	ID             uuid.UUID `json:"id"`
	Company        string    `json:"company"`
	Position       string    `json:"position"`
	Location       string    `json:"location,omitempty"`
	SubmissionDate time.Time `json:"submission_date"`
	Notes          string    `json:"notes,omitempty"`
	Rejected       bool      `json:"rejected"`
}

func (a Application) Undated() bool {
	return a.SubmissionDate.IsZero()
}
