package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mveron/applytrack/internal/models"
)

var ErrNothingArmed = errors.New("no delete is armed")

// Store is the versioned blob store the tracker persists through.
type Store interface {
	Load(ctx context.Context) ([]models.Application, string, error)
	Save(ctx context.Context, apps []models.Application, expectedSHA, message string) (string, error)
}

// session is the state carried across user actions: the in-memory
// collection, the revision sha it was loaded under, and the target of a
// pending delete confirmation. The sha is empty when no remote file
// exists yet.
type session struct {
	apps     []models.Application
	sha      string
	loaded   bool
	armed    bool
	armedFor uuid.UUID
}

// Tracker orchestrates every user action: mutate the table, persist the
// whole collection with the held sha, swap in the new sha on success.
// One user acts at a time; the mutex serializes the handlers.
//
// A failed persist leaves the local mutation applied but unsaved. That
// divergence is accepted: the next successful save carries it along,
// and Reload discards it.
type Tracker struct {
	mu    sync.Mutex
	store Store
	s     session
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Load fetches the full collection, replacing any local state including
// unsaved mutations. It doubles as the explicit recovery step after a
// revision conflict.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	apps, sha, err := t.store.Load(ctx)
	if err != nil {
		return err
	}
	t.s = session{apps: apps, sha: sha, loaded: true}
	return nil
}

func (t *Tracker) Add(ctx context.Context, f ApplicationFields) (models.Application, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarm()

	apps, app, err := addApplication(t.s.apps, f)
	if err != nil {
		return models.Application{}, err
	}
	t.s.apps = apps

	return app, t.persist(ctx, fmt.Sprintf("feat: add %s %s", app.Company, app.Position))
}

func (t *Tracker) Edit(ctx context.Context, id uuid.UUID, f ApplicationFields) (models.Application, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarm()

	app, err := editApplication(t.s.apps, id, f)
	if err != nil {
		return models.Application{}, err
	}

	return app, t.persist(ctx, fmt.Sprintf("chore: update %s %s", app.Company, app.Position))
}

func (t *Tracker) Reject(ctx context.Context, id uuid.UUID) (models.Application, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarm()

	app, changed, err := rejectApplication(t.s.apps, id)
	if err != nil {
		return models.Application{}, err
	}
	if !changed {
		// Already rejected; nothing to commit.
		return app, nil
	}

	return app, t.persist(ctx, fmt.Sprintf("chore: mark rejected %s", app.Company))
}

// ArmDelete enters the delete confirmation state for the given record.
// Any other action disarms it.
func (t *Tracker) ArmDelete(id uuid.UUID) (models.Application, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := indexOf(t.s.apps, id)
	if i < 0 {
		t.disarm()
		return models.Application{}, ErrNotFound
	}
	t.s.armed = true
	t.s.armedFor = id
	return t.s.apps[i], nil
}

// ConfirmDelete removes the armed record and persists. The id must
// match the armed target; confirming with nothing armed fails.
func (t *Tracker) ConfirmDelete(ctx context.Context, id uuid.UUID) (models.Application, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.s.armed || t.s.armedFor != id {
		t.disarm()
		return models.Application{}, ErrNothingArmed
	}
	t.disarm()

	apps, removed, err := deleteApplication(t.s.apps, id)
	if err != nil {
		return models.Application{}, err
	}
	t.s.apps = apps

	return removed, t.persist(ctx, fmt.Sprintf("chore: delete %s %s", removed.Company, removed.Position))
}

func (t *Tracker) CancelDelete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarm()
}

// ListOptions narrows the listing. Rejected records are hidden unless
// asked for, matching the tracker's default view.
type ListOptions struct {
	Query           string
	IncludeRejected bool
}

// RankedApplication pairs a record with its chronological rank (1 =
// oldest submission). The listing itself is newest-first; the two
// orderings are deliberately independent.
type RankedApplication struct {
	models.Application
	Rank int
}

func (t *Tracker) List(opts ListOptions) []RankedApplication {
	t.mu.Lock()
	defer t.mu.Unlock()

	ranks := rankByDate(t.s.apps)

	view := t.s.apps
	if !opts.IncludeRejected {
		view = withoutRejected(view)
	}
	view = searchCompany(view, opts.Query)
	view = sortByDateDesc(view)

	out := make([]RankedApplication, len(view))
	for i, a := range view {
		out[i] = RankedApplication{Application: a, Rank: ranks[a.ID]}
	}
	return out
}

// Loaded reports whether the initial load has succeeded yet.
func (t *Tracker) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s.loaded
}

// persist writes the whole collection under the held sha and swaps in
// the returned one. On failure the local mutation stays applied and the
// sha stays put, so a later save or an explicit reload resolves it.
func (t *Tracker) persist(ctx context.Context, message string) error {
	sha, err := t.store.Save(ctx, t.s.apps, t.s.sha, message)
	if err != nil {
		return err
	}
	t.s.sha = sha
	return nil
}

func (t *Tracker) disarm() {
	t.s.armed = false
	t.s.armedFor = uuid.Nil
}
