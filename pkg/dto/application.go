package dto

import "github.com/google/uuid"

// Dates travel as "2006-01-02" strings, the same form the CSV file
// uses. An empty submission date means unknown.

type CreateApplicationRequest struct {
	Company        string `json:"company"`
	Position       string `json:"position"`
	Location       string `json:"location,omitempty"`
	SubmissionDate string `json:"submission_date,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

type UpdateApplicationRequest struct {
	Company        string `json:"company"`
	Position       string `json:"position"`
	Location       string `json:"location,omitempty"`
	SubmissionDate string `json:"submission_date,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

type ApplicationResponse struct {
	ID             uuid.UUID `json:"id"`
	Company        string    `json:"company"`
	Position       string    `json:"position"`
	Location       string    `json:"location,omitempty"`
	SubmissionDate string    `json:"submission_date,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Rejected       bool      `json:"rejected"`
	Rank           int       `json:"rank,omitempty"`
}
