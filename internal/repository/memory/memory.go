// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package memory is an in-memory implementation of the internal/repository
// interfaces. It enforces the same partial-unique checks the DuckDB
// repositories run on Create (unique among non-deleted rows only), so
// service-layer tests exercise real Conflict paths without a database file.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/models"
)

// Store holds every entity table behind one mutex. Contention is
// irrelevant at test scale and for the single-laptop demo profile.
type Store struct {
	mu sync.RWMutex

	events      map[string]*models.Event
	tables      map[string]*models.Table
	seats       map[string]*models.Seat
	categories  map[string]*models.Category
	criteria    map[string]*models.Criterion
	teams       map[string]*models.Team
	submissions map[string]*models.Submission
	scores      map[string]*models.Score
	users       map[string]*models.User

	// insertion order per table, so lists are stable (creation order).
	// Most SQL list queries order by another column (date, number,
	// sort_order or username), so the two stores can list in different
	// orders.
	eventOrder      []string
	tableOrder      []string
	seatOrder       []string
	categoryOrder   []string
	criterionOrder  []string
	teamOrder       []string
	submissionOrder []string
	scoreOrder      []string
	userOrder       []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		events:      map[string]*models.Event{},
		tables:      map[string]*models.Table{},
		seats:       map[string]*models.Seat{},
		categories:  map[string]*models.Category{},
		criteria:    map[string]*models.Criterion{},
		teams:       map[string]*models.Team{},
		submissions: map[string]*models.Submission{},
		scores:      map[string]*models.Score{},
		users:       map[string]*models.User{},
	}
}

func live(deletedAt *time.Time) bool { return deletedAt == nil }

// Events returns the EventRepository view of the store.
func (s *Store) Events() *EventRepo           { return &EventRepo{s} }
func (s *Store) Tables() *TableRepo           { return &TableRepo{s} }
func (s *Store) Seats() *SeatRepo             { return &SeatRepo{s} }
func (s *Store) Categories() *CategoryRepo    { return &CategoryRepo{s} }
func (s *Store) Criteria() *CriterionRepo     { return &CriterionRepo{s} }
func (s *Store) Teams() *TeamRepo             { return &TeamRepo{s} }
func (s *Store) Submissions() *SubmissionRepo { return &SubmissionRepo{s} }
func (s *Store) Scores() *ScoreRepo           { return &ScoreRepo{s} }
func (s *Store) Users() *UserRepo             { return &UserRepo{s} }

// EventRepo implements repository.EventRepository.
type EventRepo struct{ s *Store }

func (r *EventRepo) Create(ctx context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *e
	r.s.events[e.ID] = &cp
	r.s.eventOrder = append(r.s.eventOrder, e.ID)
	return nil
}

func (r *EventRepo) Get(ctx context.Context, id string, includeDeleted bool) (*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok || (!includeDeleted && !live(e.DeletedAt)) {
		return nil, apperr.NotFound("event")
	}
	cp := *e
	return &cp, nil
}

func (r *EventRepo) List(ctx context.Context, includeDeleted bool) ([]models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Event
	for _, id := range r.s.eventOrder {
		e := r.s.events[id]
		if includeDeleted || live(e.DeletedAt) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *EventRepo) Update(ctx context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.events[e.ID]
	if !ok || !live(old.DeletedAt) {
		return apperr.NotFound("event")
	}
	cp := *e
	r.s.events[e.ID] = &cp
	return nil
}

func (r *EventRepo) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || !live(e.DeletedAt) {
		return apperr.NotFound("event")
	}
	now := time.Now()
	e.DeletedAt = &now
	return nil
}

// TableRepo implements repository.TableRepository.
type TableRepo struct{ s *Store }

func (r *TableRepo) Create(ctx context.Context, t *models.Table) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.tables {
		if !live(other.DeletedAt) {
			continue
		}
		if other.EventID == t.EventID && other.TableNumber == t.TableNumber {
			return apperr.Conflict("table number already in use")
		}
		if other.QRToken == t.QRToken {
			return apperr.Conflict("qr token already in use")
		}
	}
	cp := *t
	r.s.tables[t.ID] = &cp
	r.s.tableOrder = append(r.s.tableOrder, t.ID)
	return nil
}

func (r *TableRepo) Get(ctx context.Context, id string, includeDeleted bool) (*models.Table, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tables[id]
	if !ok || (!includeDeleted && !live(t.DeletedAt)) {
		return nil, apperr.NotFound("table")
	}
	cp := *t
	return &cp, nil
}

func (r *TableRepo) GetByQRToken(ctx context.Context, token string) (*models.Table, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.tables {
		if live(t.DeletedAt) && t.QRToken == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("table")
}

func (r *TableRepo) ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Table, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Table
	for _, id := range r.s.tableOrder {
		t := r.s.tables[id]
		if t.EventID != eventID {
			continue
		}
		if includeDeleted || live(t.DeletedAt) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *TableRepo) Update(ctx context.Context, t *models.Table) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.tables[t.ID]
	if !ok || !live(old.DeletedAt) {
		return apperr.NotFound("table")
	}
	cp := *t
	r.s.tables[t.ID] = &cp
	return nil
}

func (r *TableRepo) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tables[id]
	if !ok || !live(t.DeletedAt) {
		return apperr.NotFound("table")
	}
	now := time.Now()
	t.DeletedAt = &now
	return nil
}

// SeatRepo implements repository.SeatRepository.
type SeatRepo struct{ s *Store }

func (r *SeatRepo) Create(ctx context.Context, st *models.Seat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.seats {
		if live(other.DeletedAt) && other.TableID == st.TableID && other.SeatNumber == st.SeatNumber {
			return apperr.Conflict("seat number already in use")
		}
	}
	cp := *st
	r.s.seats[st.ID] = &cp
	r.s.seatOrder = append(r.s.seatOrder, st.ID)
	return nil
}

func (r *SeatRepo) Get(ctx context.Context, id string, includeDeleted bool) (*models.Seat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.seats[id]
	if !ok || (!includeDeleted && !live(st.DeletedAt)) {
		return nil, apperr.NotFound("seat")
	}
	cp := *st
	return &cp, nil
}

func (r *SeatRepo) GetByTableAndNumber(ctx context.Context, tableID string, seatNumber int) (*models.Seat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, st := range r.s.seats {
		if live(st.DeletedAt) && st.TableID == tableID && st.SeatNumber == seatNumber {
			cp := *st
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("seat")
}

func (r *SeatRepo) ListByTable(ctx context.Context, tableID string, includeDeleted bool) ([]models.Seat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Seat
	for _, id := range r.s.seatOrder {
		st := r.s.seats[id]
		if st.TableID != tableID {
			continue
		}
		if includeDeleted || live(st.DeletedAt) {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (r *SeatRepo) Update(ctx context.Context, st *models.Seat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.seats[st.ID]
	if !ok || !live(old.DeletedAt) {
		return apperr.NotFound("seat")
	}
	cp := *st
	r.s.seats[st.ID] = &cp
	return nil
}

func (r *SeatRepo) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.seats[id]
	if !ok || !live(st.DeletedAt) {
		return apperr.NotFound("seat")
	}
	now := time.Now()
	st.DeletedAt = &now
	return nil
}

// CategoryRepo implements repository.CategoryRepository.
type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.categories {
		if live(other.DeletedAt) && other.EventID == c.EventID && other.Name == c.Name {
			return apperr.Conflict("category name already in use")
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	r.s.categoryOrder = append(r.s.categoryOrder, c.ID)
	return nil
}

func (r *CategoryRepo) Get(ctx context.Context, id string, includeDeleted bool) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok || (!includeDeleted && !live(c.DeletedAt)) {
		return nil, apperr.NotFound("category")
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Category
	for _, id := range r.s.categoryOrder {
		c := r.s.categories[id]
		if c.EventID != eventID {
			continue
		}
		if includeDeleted || live(c.DeletedAt) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.categories[c.ID]
	if !ok || !live(old.DeletedAt) {
		return apperr.NotFound("category")
	}
	for _, other := range r.s.categories {
		if other.ID != c.ID && live(other.DeletedAt) && other.EventID == c.EventID && other.Name == c.Name {
			return apperr.Conflict("category name already in use")
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok || !live(c.DeletedAt) {
		return apperr.NotFound("category")
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

// CriterionRepo implements repository.CriterionRepository.
type CriterionRepo struct{ s *Store }

func (r *CriterionRepo) Create(ctx context.Context, c *models.Criterion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.criteria {
		if live(other.DeletedAt) && other.EventID == c.EventID && other.Name == c.Name {
			return apperr.Conflict("criterion name already in use")
		}
	}
	cp := *c
	r.s.criteria[c.ID] = &cp
	r.s.criterionOrder = append(r.s.criterionOrder, c.ID)
	return nil
}

func (r *CriterionRepo) Get(ctx context.Context, id string, includeDeleted bool) (*models.Criterion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.criteria[id]
	if !ok || (!includeDeleted && !live(c.DeletedAt)) {
		return nil, apperr.NotFound("criterion")
	}
	cp := *c
	return &cp, nil
}

func (r *CriterionRepo) ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Criterion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Criterion
	for _, id := range r.s.criterionOrder {
		c := r.s.criteria[id]
		if c.EventID != eventID {
			continue
		}
		if includeDeleted || live(c.DeletedAt) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *CriterionRepo) Update(ctx context.Context, c *models.Criterion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.criteria[c.ID]
	if !ok || !live(old.DeletedAt) {
		return apperr.NotFound("criterion")
	}
	for _, other := range r.s.criteria {
		if other.ID != c.ID && live(other.DeletedAt) && other.EventID == c.EventID && other.Name == c.Name {
			return apperr.Conflict("criterion name already in use")
		}
	}
	cp := *c
	r.s.criteria[c.ID] = &cp
	return nil
}

func (r *CriterionRepo) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.criteria[id]
	if !ok || !live(c.DeletedAt) {
		return apperr.NotFound("criterion")
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

// TeamRepo implements repository.TeamRepository.
type TeamRepo struct{ s *Store }

func (r *TeamRepo) Create(ctx context.Context, t *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.teams {
		if live(other.DeletedAt) && other.EventID == t.EventID && other.TeamNumber == t.TeamNumber {
			return apperr.Conflict("team number already in use")
		}
	}
	cp := *t
	r.s.teams[t.ID] = &cp
	r.s.teamOrder = append(r.s.teamOrder, t.ID)
	return nil
}

func (r *TeamRepo) Get(ctx context.Context, id string, includeDeleted bool) (*models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.teams[id]
	if !ok || (!includeDeleted && !live(t.DeletedAt)) {
		return nil, apperr.NotFound("team")
	}
	cp := *t
	return &cp, nil
}

func (r *TeamRepo) GetByBarcodePayload(ctx context.Context, payload string) (*models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.teams {
		if live(t.DeletedAt) && t.BarcodePayload == payload {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("team")
}

func (r *TeamRepo) ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Team
	for _, id := range r.s.teamOrder {
		t := r.s.teams[id]
		if t.EventID != eventID {
			continue
		}
		if includeDeleted || live(t.DeletedAt) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *TeamRepo) Update(ctx context.Context, t *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.teams[t.ID]
	if !ok || !live(old.DeletedAt) {
		return apperr.NotFound("team")
	}
	cp := *t
	r.s.teams[t.ID] = &cp
	return nil
}

func (r *TeamRepo) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok || !live(t.DeletedAt) {
		return apperr.NotFound("team")
	}
	now := time.Now()
	t.DeletedAt = &now
	return nil
}

// SubmissionRepo implements repository.SubmissionRepository.
type SubmissionRepo struct{ s *Store }

func (r *SubmissionRepo) Create(ctx context.Context, sub *models.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.submissions {
		if live(other.DeletedAt) && other.TeamID == sub.TeamID && other.CategoryID == sub.CategoryID {
			return apperr.Conflict("submission already exists for this team and category")
		}
	}
	cp := *sub
	r.s.submissions[sub.ID] = &cp
	r.s.submissionOrder = append(r.s.submissionOrder, sub.ID)
	return nil
}

func (r *SubmissionRepo) Get(ctx context.Context, id string, includeDeleted bool) (*models.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.submissions[id]
	if !ok || (!includeDeleted && !live(sub.DeletedAt)) {
		return nil, apperr.NotFound("submission")
	}
	cp := *sub
	return &cp, nil
}

func (r *SubmissionRepo) ListByTeam(ctx context.Context, teamID string, includeDeleted bool) ([]models.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Submission
	for _, id := range r.s.submissionOrder {
		sub := r.s.submissions[id]
		if sub.TeamID != teamID {
			continue
		}
		if includeDeleted || live(sub.DeletedAt) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *SubmissionRepo) ListByCategory(ctx context.Context, categoryID string, includeDeleted bool) ([]models.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Submission
	for _, id := range r.s.submissionOrder {
		sub := r.s.submissions[id]
		if sub.CategoryID != categoryID {
			continue
		}
		if includeDeleted || live(sub.DeletedAt) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *SubmissionRepo) Update(ctx context.Context, sub *models.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.submissions[sub.ID]
	if !ok || !live(old.DeletedAt) {
		return apperr.NotFound("submission")
	}
	cp := *sub
	r.s.submissions[sub.ID] = &cp
	return nil
}

func (r *SubmissionRepo) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.submissions[id]
	if !ok || !live(sub.DeletedAt) {
		return apperr.NotFound("submission")
	}
	now := time.Now()
	sub.DeletedAt = &now
	return nil
}

// ScoreRepo implements repository.ScoreRepository.
type ScoreRepo struct{ s *Store }

func (r *ScoreRepo) Create(ctx context.Context, sc *models.Score) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.scores {
		if other.SubmissionID == sc.SubmissionID && other.SeatID == sc.SeatID && other.CriterionID == sc.CriterionID {
			return apperr.Conflict("score already exists for this submission, seat, and criterion")
		}
	}
	cp := *sc
	r.s.scores[sc.ID] = &cp
	r.s.scoreOrder = append(r.s.scoreOrder, sc.ID)
	return nil
}

func (r *ScoreRepo) Get(ctx context.Context, id string) (*models.Score, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sc, ok := r.s.scores[id]
	if !ok {
		return nil, apperr.NotFound("score")
	}
	cp := *sc
	return &cp, nil
}

func (r *ScoreRepo) ListBySubmission(ctx context.Context, submissionID string) ([]models.Score, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Score
	for _, id := range r.s.scoreOrder {
		sc := r.s.scores[id]
		if sc.SubmissionID == submissionID {
			out = append(out, *sc)
		}
	}
	return out, nil
}

func (r *ScoreRepo) ListBySubmissionAndSeat(ctx context.Context, submissionID, seatID string) ([]models.Score, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Score
	for _, id := range r.s.scoreOrder {
		sc := r.s.scores[id]
		if sc.SubmissionID == submissionID && sc.SeatID == seatID {
			out = append(out, *sc)
		}
	}
	return out, nil
}

func (r *ScoreRepo) Update(ctx context.Context, sc *models.Score) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.scores[sc.ID]; !ok {
		return apperr.NotFound("score")
	}
	cp := *sc
	r.s.scores[sc.ID] = &cp
	return nil
}

func (r *ScoreRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.scores[id]; !ok {
		return apperr.NotFound("score")
	}
	delete(r.s.scores, id)
	for i, sid := range r.s.scoreOrder {
		if sid == id {
			r.s.scoreOrder = append(r.s.scoreOrder[:i], r.s.scoreOrder[i+1:]...)
			break
		}
	}
	return nil
}

// UserRepo implements repository.UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if live(other.DeletedAt) && other.Username == u.Username {
			return apperr.Conflict("username already in use")
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	r.s.userOrder = append(r.s.userOrder, u.ID)
	return nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok || !live(u.DeletedAt) {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if live(u.DeletedAt) && u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.User
	for _, id := range r.s.userOrder {
		u := r.s.users[id]
		if live(u.DeletedAt) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *UserRepo) Update(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.users[u.ID]
	if !ok || !live(old.DeletedAt) {
		return apperr.NotFound("user")
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || !live(u.DeletedAt) {
		return apperr.NotFound("user")
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}
