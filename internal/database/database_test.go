// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/config"
	"github.com/tomtom215/bbqcomp/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Name: ":memory:", PoolSize: 4, IdleTimeout: time.Minute})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEventRepository_CreateGetUpdateSoftDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := db.Events()

	now := time.Now().UTC()
	e := &models.Event{
		ID: uuid.New().String(), Name: "Spring Cookoff", Date: now,
		Status: models.EventDraft, ScoringScaleMin: 2, ScoringScaleMax: 9,
		ScoringScaleStep: 0.5, AggregationMethod: models.AggregationMean,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(ctx, e.ID, false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != e.Name {
		t.Errorf("got name %q, want %q", got.Name, e.Name)
	}

	got.Status = models.EventActive
	got.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	updated, err := repo.Get(ctx, e.ID, false)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if updated.Status != models.EventActive {
		t.Errorf("status not persisted: got %q", updated.Status)
	}

	if err := repo.SoftDelete(ctx, e.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := repo.Get(ctx, e.ID, false); err == nil {
		t.Fatal("expected NotFound after soft delete")
	}
}

func TestEventRepository_ListExcludesSoftDeleted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := db.Events()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		e := &models.Event{
			ID: uuid.New().String(), Name: "Event", Date: now, Status: models.EventDraft,
			ScoringScaleMin: 2, ScoringScaleMax: 9, ScoringScaleStep: 0.5,
			AggregationMethod: models.AggregationMean, CreatedAt: now, UpdatedAt: now,
		}
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if i == 0 {
			if err := repo.SoftDelete(ctx, e.ID); err != nil {
				t.Fatalf("SoftDelete: %v", err)
			}
		}
	}

	list, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d events, want 2", len(list))
	}
}

func TestEventRepository_IncludeDeleted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := db.Events()

	now := time.Now().UTC()
	e := &models.Event{
		ID: uuid.New().String(), Name: "Fall Cookoff", Date: now, Status: models.EventDraft,
		ScoringScaleMin: 2, ScoringScaleMax: 9, ScoringScaleStep: 0.5,
		AggregationMethod: models.AggregationMean, CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.SoftDelete(ctx, e.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	if _, err := repo.Get(ctx, e.ID, false); err == nil {
		t.Fatal("expected NotFound for non-admin read of soft-deleted event")
	}
	got, err := repo.Get(ctx, e.ID, true)
	if err != nil {
		t.Fatalf("Get(includeDeleted=true): %v", err)
	}
	if got.DeletedAt == nil {
		t.Error("expected DeletedAt to be set")
	}

	list, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("List(includeDeleted=true): %v", err)
	}
	found := false
	for _, it := range list {
		if it.ID == e.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected soft-deleted event in includeDeleted=true list")
	}
}

func TestTableRepository_UniqueQRTokenLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	event := &models.Event{
		ID: uuid.New().String(), Name: "E", Date: now, Status: models.EventDraft,
		ScoringScaleMin: 2, ScoringScaleMax: 9, ScoringScaleStep: 0.5,
		AggregationMethod: models.AggregationMean, CreatedAt: now, UpdatedAt: now,
	}
	if err := db.Events().Create(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	tbl := &models.Table{ID: uuid.New().String(), EventID: event.ID, TableNumber: 1, QRToken: "tok-123", CreatedAt: now, UpdatedAt: now}
	if err := db.Tables().Create(ctx, tbl); err != nil {
		t.Fatalf("create table: %v", err)
	}

	got, err := db.Tables().GetByQRToken(ctx, "tok-123")
	if err != nil {
		t.Fatalf("GetByQRToken: %v", err)
	}
	if got.ID != tbl.ID {
		t.Errorf("got %q, want %q", got.ID, tbl.ID)
	}
}

func TestUniqueAmongLiveRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	event := &models.Event{
		ID: uuid.New().String(), Name: "E", Date: now, Status: models.EventDraft,
		ScoringScaleMin: 2, ScoringScaleMax: 9, ScoringScaleStep: 0.5,
		AggregationMethod: models.AggregationMean, CreatedAt: now, UpdatedAt: now,
	}
	if err := db.Events().Create(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	cat := &models.Category{ID: uuid.New().String(), EventID: event.ID, Name: "Brisket", CreatedAt: now, UpdatedAt: now}
	if err := db.Categories().Create(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}

	// Duplicate live name conflicts.
	dup := &models.Category{ID: uuid.New().String(), EventID: event.ID, Name: "Brisket", CreatedAt: now, UpdatedAt: now}
	err := db.Categories().Create(ctx, dup)
	if apperr.CodeOf(err) != apperr.CodeConflict {
		t.Fatalf("duplicate create: %v, want CONFLICT", err)
	}

	// After soft delete, the same name is free again.
	if err := db.Categories().SoftDelete(ctx, cat.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if err := db.Categories().Create(ctx, dup); err != nil {
		t.Fatalf("recreate after soft delete: %v", err)
	}
}
