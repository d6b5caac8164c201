package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mveron/applytrack/internal/models"
)

var ErrNotFound = errors.New("application not found")

// ValidationError reports a missing required field. It is recovered
// locally: the caller re-prompts, nothing is persisted.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q is required", e.Field)
}

// ApplicationFields carries the mutable fields for add and edit. The id
// and the rejected flag are never set through here.
type ApplicationFields struct {
	Company        string
	Position       string
	Location       string
	SubmissionDate time.Time
	Notes          string
}

func validateFields(f ApplicationFields) error {
	if strings.TrimSpace(f.Company) == "" {
		return &ValidationError{Field: "company"}
	}
	if strings.TrimSpace(f.Position) == "" {
		return &ValidationError{Field: "position"}
	}
	return nil
}

// addApplication validates and appends a new record with a fresh id. A
// zero submission date defaults to today. The caller persists.
func addApplication(apps []models.Application, f ApplicationFields) ([]models.Application, models.Application, error) {
	if err := validateFields(f); err != nil {
		return apps, models.Application{}, err
	}

	date := f.SubmissionDate
	if date.IsZero() {
		now := time.Now()
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	app := models.Application{
		ID:             uuid.New(),
		Company:        f.Company,
		Position:       f.Position,
		Location:       f.Location,
		SubmissionDate: date,
		Notes:          f.Notes,
	}
	return append(apps, app), app, nil
}

// editApplication replaces the mutable fields of the record with the
// given id. The id and the rejected flag survive the edit unchanged.
func editApplication(apps []models.Application, id uuid.UUID, f ApplicationFields) (models.Application, error) {
	if err := validateFields(f); err != nil {
		return models.Application{}, err
	}

	i := indexOf(apps, id)
	if i < 0 {
		return models.Application{}, ErrNotFound
	}

	apps[i].Company = f.Company
	apps[i].Position = f.Position
	apps[i].Location = f.Location
	apps[i].SubmissionDate = f.SubmissionDate
	apps[i].Notes = f.Notes
	return apps[i], nil
}

// rejectApplication flags the record as rejected. Re-rejecting is a
// no-op; changed reports whether anything actually flipped so the
// caller can skip the remote write.
func rejectApplication(apps []models.Application, id uuid.UUID) (app models.Application, changed bool, err error) {
	i := indexOf(apps, id)
	if i < 0 {
		return models.Application{}, false, ErrNotFound
	}
	if apps[i].Rejected {
		return apps[i], false, nil
	}
	apps[i].Rejected = true
	return apps[i], true, nil
}

func deleteApplication(apps []models.Application, id uuid.UUID) ([]models.Application, models.Application, error) {
	i := indexOf(apps, id)
	if i < 0 {
		return apps, models.Application{}, ErrNotFound
	}
	removed := apps[i]
	return append(apps[:i], apps[i+1:]...), removed, nil
}

func indexOf(apps []models.Application, id uuid.UUID) int {
	for i, a := range apps {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// searchCompany keeps records whose company contains the query,
// case-insensitively. An empty query keeps everything.
func searchCompany(apps []models.Application, query string) []models.Application {
	if query == "" {
		return apps
	}
	q := strings.ToLower(query)
	var out []models.Application
	for _, a := range apps {
		if strings.Contains(strings.ToLower(a.Company), q) {
			out = append(out, a)
		}
	}
	return out
}

func withoutRejected(apps []models.Application) []models.Application {
	var out []models.Application
	for _, a := range apps {
		if !a.Rejected {
			out = append(out, a)
		}
	}
	return out
}

// sortByDateDesc returns a copy in display order: newest first, undated
// records last. The input is left alone.
func sortByDateDesc(apps []models.Application) []models.Application {
	out := make([]models.Application, len(apps))
	copy(out, apps)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmissionDate.After(out[j].SubmissionDate)
	})
	return out
}

// rankByDate assigns each record its chronological rank: 1 for the
// oldest submission, counting up. Undated records sort as oldest. Rank
// is independent of the display order, which is newest-first.
func rankByDate(apps []models.Application) map[uuid.UUID]int {
	ordered := make([]models.Application, len(apps))
	copy(ordered, apps)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SubmissionDate.Before(ordered[j].SubmissionDate)
	})

	ranks := make(map[uuid.UUID]int, len(ordered))
	for i, a := range ordered {
		ranks[a.ID] = i + 1
	}
	return ranks
}
