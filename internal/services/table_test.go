package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mveron/applytrack/internal/models"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAddApplication(t *testing.T) {
	apps, app, err := addApplication(nil, ApplicationFields{
		Company:        "Acme",
		Position:       "Engineer",
		Location:       "Berlin",
		SubmissionDate: date("2024-01-10"),
		Notes:          "referral",
	})

	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.NotEqual(t, uuid.Nil, app.ID)
	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, date("2024-01-10"), app.SubmissionDate)
	assert.False(t, app.Rejected)
}

func TestAddApplication_FreshUniqueIDs(t *testing.T) {
	var apps []models.Application
	seen := map[uuid.UUID]bool{}
	for i := 0; i < 50; i++ {
		var app models.Application
		var err error
		apps, app, err = addApplication(apps, ApplicationFields{Company: "Acme", Position: "Engineer"})
		require.NoError(t, err)
		assert.False(t, seen[app.ID])
		seen[app.ID] = true
	}
	assert.Len(t, apps, 50)
}

func TestAddApplication_DefaultsDateToToday(t *testing.T) {
	_, app, err := addApplication(nil, ApplicationFields{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, now.Year(), app.SubmissionDate.Year())
	assert.Equal(t, now.YearDay(), app.SubmissionDate.YearDay())
}

func TestAddApplication_Validation(t *testing.T) {
	_, _, err := addApplication(nil, ApplicationFields{Position: "Engineer"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "company", validationErr.Field)

	_, _, err = addApplication(nil, ApplicationFields{Company: "Acme", Position: "   "})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "position", validationErr.Field)
}

func TestEditApplication(t *testing.T) {
	apps := []models.Application{{
		ID:       uuid.New(),
		Company:  "Acme",
		Position: "Engineer",
		Rejected: true,
	}}
	originalID := apps[0].ID

	app, err := editApplication(apps, originalID, ApplicationFields{
		Company:        "Acme GmbH",
		Position:       "Senior Engineer",
		Location:       "Remote",
		SubmissionDate: date("2024-02-01"),
		Notes:          "updated",
	})

	require.NoError(t, err)
	assert.Equal(t, originalID, app.ID, "edit must never change the id")
	assert.True(t, app.Rejected, "edit must not touch the rejected flag")
	assert.Equal(t, "Acme GmbH", apps[0].Company)
	assert.Equal(t, "Senior Engineer", apps[0].Position)
}

func TestEditApplication_NotFound(t *testing.T) {
	_, err := editApplication(nil, uuid.New(), ApplicationFields{Company: "A", Position: "B"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditApplication_Validation(t *testing.T) {
	apps := []models.Application{{ID: uuid.New(), Company: "Acme", Position: "Engineer"}}

	_, err := editApplication(apps, apps[0].ID, ApplicationFields{Company: "", Position: "X"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Acme", apps[0].Company, "failed validation must not mutate")
}

func TestRejectApplication_Idempotent(t *testing.T) {
	apps := []models.Application{{ID: uuid.New(), Company: "Acme", Position: "Engineer"}}

	app, changed, err := rejectApplication(apps, apps[0].ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, app.Rejected)

	again, changed, err := rejectApplication(apps, apps[0].ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, app, again, "re-rejecting must not change observable state")
}

func TestRejectApplication_NotFound(t *testing.T) {
	_, _, err := rejectApplication(nil, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteApplication(t *testing.T) {
	a := models.Application{ID: uuid.New(), Company: "Acme", Position: "Engineer"}
	b := models.Application{ID: uuid.New(), Company: "Globex", Position: "SRE"}

	apps, removed, err := deleteApplication([]models.Application{a, b}, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, removed)
	require.Len(t, apps, 1)
	assert.Equal(t, b.ID, apps[0].ID)

	// Deleting again misses.
	_, _, err = deleteApplication(apps, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchCompany_CaseInsensitive(t *testing.T) {
	apps := []models.Application{
		{ID: uuid.New(), Company: "Acme Corp", Position: "Engineer"},
		{ID: uuid.New(), Company: "Globex", Position: "SRE"},
	}

	assert.Len(t, searchCompany(apps, "ACME"), 1)
	assert.Len(t, searchCompany(apps, "glo"), 1)
	assert.Len(t, searchCompany(apps, "zzz"), 0)
	assert.Len(t, searchCompany(apps, ""), 2)
}

func TestWithoutRejected(t *testing.T) {
	apps := []models.Application{
		{ID: uuid.New(), Company: "Acme", Position: "Engineer", Rejected: true},
		{ID: uuid.New(), Company: "Globex", Position: "SRE"},
	}

	kept := withoutRejected(apps)
	require.Len(t, kept, 1)
	assert.Equal(t, "Globex", kept[0].Company)
}

func TestRankVersusDisplayOrder(t *testing.T) {
	older := models.Application{ID: uuid.New(), Company: "Acme", Position: "Engineer", SubmissionDate: date("2024-01-10")}
	newer := models.Application{ID: uuid.New(), Company: "Globex", Position: "SRE", SubmissionDate: date("2024-03-02")}
	apps := []models.Application{newer, older}

	ranks := rankByDate(apps)
	assert.Equal(t, 1, ranks[older.ID], "oldest submission ranks first")
	assert.Equal(t, 2, ranks[newer.ID])

	display := sortByDateDesc(apps)
	require.Len(t, display, 2)
	assert.Equal(t, newer.ID, display[0].ID, "display lists newest first")
	assert.Equal(t, older.ID, display[1].ID)
}

func TestRankByDate_UndatedSortsOldest(t *testing.T) {
	undated := models.Application{ID: uuid.New(), Company: "Acme", Position: "Engineer"}
	dated := models.Application{ID: uuid.New(), Company: "Globex", Position: "SRE", SubmissionDate: date("2020-01-01")}

	ranks := rankByDate([]models.Application{dated, undated})
	assert.Equal(t, 1, ranks[undated.ID])
	assert.Equal(t, 2, ranks[dated.ID])
}

func TestSortByDateDesc_DoesNotMutateInput(t *testing.T) {
	a := models.Application{ID: uuid.New(), Company: "A", Position: "P", SubmissionDate: date("2024-01-01")}
	b := models.Application{ID: uuid.New(), Company: "B", Position: "P", SubmissionDate: date("2024-02-01")}
	apps := []models.Application{a, b}

	_ = sortByDateDesc(apps)
	assert.Equal(t, a.ID, apps[0].ID)
	assert.Equal(t, b.ID, apps[1].ID)
}
