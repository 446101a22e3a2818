// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"testing"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/models"
)

// fixture builds an event with one table (seats), criteria, teams, and a
// category, returning everything score tests need.
type fixture struct {
	env      *testEnv
	event    *models.Event
	table    *models.Table
	seats    []*models.Seat
	category *models.Category
	criteria []*models.Criterion
	teams    []*models.Team
	subs     []*models.Submission
}

// newFixture wires seatCount seats, criteria with the given weights, and
// one turned-in submission per team.
func newFixture(t *testing.T, method string, seatCount int, weights []float64, teamCount int) *fixture {
	t.Helper()
	env := newTestEnv(t)
	ctx := context.Background()
	f := &fixture{env: env}
	f.event = mustCreateEvent(t, env, method)

	var err error
	f.table, err = env.svc.Tables.Create(ctx, operator(), f.event.ID, CreateTableRequest{TableNumber: 1})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	for i := 1; i <= seatCount; i++ {
		seat, err := env.svc.Seats.Create(ctx, operator(), f.table.ID, CreateSeatRequest{SeatNumber: i})
		if err != nil {
			t.Fatalf("seat %d: %v", i, err)
		}
		f.seats = append(f.seats, seat)
	}

	f.category, err = env.svc.Categories.Create(ctx, operator(), f.event.ID, CreateCategoryRequest{Name: "Brisket"})
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	for i, w := range weights {
		weight := w
		c, err := env.svc.Criteria.Create(ctx, operator(), f.event.ID, CreateCriterionRequest{
			Name: []string{"Appearance", "Taste", "Texture", "Tenderness"}[i], Weight: &weight, SortOrder: i,
		})
		if err != nil {
			t.Fatalf("criterion %d: %v", i, err)
		}
		f.criteria = append(f.criteria, c)
	}

	for i := 1; i <= teamCount; i++ {
		team, err := env.svc.Teams.Create(ctx, operator(), f.event.ID, CreateTeamRequest{
			Name: "Team", TeamNumber: i,
		})
		if err != nil {
			t.Fatalf("team %d: %v", i, err)
		}
		f.teams = append(f.teams, team)
		sub, err := env.svc.Submissions.Create(ctx, operator(), CreateSubmissionRequest{
			TeamID: team.ID, CategoryID: f.category.ID,
		})
		if err != nil {
			t.Fatalf("submission %d: %v", i, err)
		}
		if sub, err = env.svc.Submissions.UpdateStatus(ctx, operator(), sub.ID, models.SubmissionTurnedIn); err != nil {
			t.Fatalf("turn in %d: %v", i, err)
		}
		f.subs = append(f.subs, sub)
	}
	return f
}

func (f *fixture) score(t *testing.T, seatIdx int, sub *models.Submission, criterion *models.Criterion, value float64) *models.Score {
	t.Helper()
	seat := f.seats[seatIdx]
	sc, err := f.env.svc.Scores.Create(context.Background(), seatFor(seat, f.event.ID), CreateScoreRequest{
		SubmissionID: sub.ID,
		CriterionID:  criterion.ID,
		ScoreValue:   value,
		Phase:        "taste_texture",
	})
	if err != nil {
		t.Fatalf("score seat %d value %g: %v", seatIdx+1, value, err)
	}
	return sc
}

func TestSubmissionTurnInStampsTime(t *testing.T) {
	f := newFixture(t, "mean", 1, []float64{1}, 1)
	if f.subs[0].TurnedInAt == nil {
		t.Fatal("turned_in_at not stamped")
	}
}

func TestSubmissionCrossEventConflict(t *testing.T) {
	f := newFixture(t, "mean", 1, []float64{1}, 1)
	ctx := context.Background()

	other := mustCreateEvent(t, f.env, "mean")
	otherCat, err := f.env.svc.Categories.Create(ctx, operator(), other.ID, CreateCategoryRequest{Name: "Ribs"})
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	_, err = f.env.svc.Submissions.Create(ctx, operator(), CreateSubmissionRequest{
		TeamID: f.teams[0].ID, CategoryID: otherCat.ID,
	})
	if got := codeOf(t, err); got != apperr.CodeConflict {
		t.Fatalf("code = %s, want CONFLICT", got)
	}
}

func TestScoreRejectsPendingSubmission(t *testing.T) {
	f := newFixture(t, "mean", 1, []float64{1}, 1)
	ctx := context.Background()

	team2, err := f.env.svc.Teams.Create(ctx, operator(), f.event.ID, CreateTeamRequest{Name: "T2", TeamNumber: 99})
	if err != nil {
		t.Fatalf("team: %v", err)
	}
	pending, err := f.env.svc.Submissions.Create(ctx, operator(), CreateSubmissionRequest{
		TeamID: team2.ID, CategoryID: f.category.ID,
	})
	if err != nil {
		t.Fatalf("submission: %v", err)
	}

	_, err = f.env.svc.Scores.Create(ctx, seatFor(f.seats[0], f.event.ID), CreateScoreRequest{
		SubmissionID: pending.ID, CriterionID: f.criteria[0].ID, ScoreValue: 5, Phase: "taste_texture",
	})
	if got := codeOf(t, err); got != apperr.CodeInvalidStatusTransition {
		t.Fatalf("code = %s, want INVALID_STATUS_TRANSITION", got)
	}
}

func TestScoreScaleAndStepValidation(t *testing.T) {
	f := newFixture(t, "mean", 1, []float64{1}, 1)
	ctx := context.Background()
	seat := seatFor(f.seats[0], f.event.ID)

	// Scale is [1,9] step 0.5.
	cases := []struct {
		value float64
		ok    bool
	}{
		{5, true}, {6.5, true}, {1, true}, {9, true},
		{0.5, false}, {9.5, false}, {5.3, false},
	}
	for _, c := range cases {
		_, err := f.env.svc.Scores.Create(ctx, seat, CreateScoreRequest{
			SubmissionID: f.subs[0].ID, CriterionID: f.criteria[0].ID,
			ScoreValue: c.value, Phase: "taste_texture",
		})
		if c.ok && err != nil {
			t.Errorf("value %g rejected: %v", c.value, err)
		}
		if !c.ok && apperr.CodeOf(err) != apperr.CodeValidation {
			t.Errorf("value %g: code = %v, want VALIDATION_ERROR", c.value, err)
		}
		if c.ok && err == nil {
			// remove so the next valid value doesn't hit the unique triple
			scores, _ := f.env.store.Scores().ListBySubmission(ctx, f.subs[0].ID)
			for _, sc := range scores {
				_ = f.env.store.Scores().Delete(ctx, sc.ID)
			}
		}
	}
}

func TestScoreEditOwnershipRules(t *testing.T) {
	f := newFixture(t, "mean", 2, []float64{1}, 1)
	ctx := context.Background()

	sc := f.score(t, 0, f.subs[0], f.criteria[0], 5)

	newVal := 6.0
	// A different seat may not edit.
	_, err := f.env.svc.Scores.Update(ctx, seatFor(f.seats[1], f.event.ID), sc.ID, UpdateScoreRequest{ScoreValue: &newVal})
	if got := codeOf(t, err); got != apperr.CodeForbidden {
		t.Fatalf("code = %s, want FORBIDDEN", got)
	}
	// The originating seat may.
	if _, err := f.env.svc.Scores.Update(ctx, seatFor(f.seats[0], f.event.ID), sc.ID, UpdateScoreRequest{ScoreValue: &newVal}); err != nil {
		t.Fatalf("own edit: %v", err)
	}
	// An admin may.
	if _, err := f.env.svc.Scores.Update(ctx, admin(), sc.ID, UpdateScoreRequest{ScoreValue: &newVal}); err != nil {
		t.Fatalf("admin edit: %v", err)
	}
	// Hard delete is admin-only.
	if err := f.env.svc.Scores.Delete(ctx, seatFor(f.seats[0], f.event.ID), sc.ID); err == nil {
		t.Fatal("seat hard delete should fail")
	}
	if err := f.env.svc.Scores.Delete(ctx, admin(), sc.ID); err != nil {
		t.Fatalf("admin hard delete: %v", err)
	}
}

func TestDuplicateScoreTripleConflicts(t *testing.T) {
	f := newFixture(t, "mean", 1, []float64{1}, 1)
	f.score(t, 0, f.subs[0], f.criteria[0], 5)

	_, err := f.env.svc.Scores.Create(context.Background(), seatFor(f.seats[0], f.event.ID), CreateScoreRequest{
		SubmissionID: f.subs[0].ID, CriterionID: f.criteria[0].ID, ScoreValue: 6, Phase: "taste_texture",
	})
	if got := codeOf(t, err); got != apperr.CodeConflict {
		t.Fatalf("code = %s, want CONFLICT", got)
	}
}

func TestTrimmedMeanScenario(t *testing.T) {
	// Six judges score [1,5,6,7,8,9] on a single unit-weight criterion
	// with trimmed_mean: final = mean(5,6,7,8) = 6.5.
	f := newFixture(t, "trimmed_mean", 6, []float64{1}, 1)
	for i, v := range []float64{1, 5, 6, 7, 8, 9} {
		f.score(t, i, f.subs[0], f.criteria[0], v)
	}

	res, err := f.env.svc.Results.ForSubmission(context.Background(), operator(), f.subs[0].ID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.FinalScore != 6.5 {
		t.Fatalf("final = %g, want 6.5", res.FinalScore)
	}
	if res.CompletionStatus != CompletionComplete {
		t.Fatalf("completion = %s, want complete", res.CompletionStatus)
	}
}

func TestTrimmedMeanFallbackUnderThree(t *testing.T) {
	// Two judges, [4,8] with trimmed_mean configured: falls back to mean = 6.
	f := newFixture(t, "trimmed_mean", 2, []float64{1}, 1)
	f.score(t, 0, f.subs[0], f.criteria[0], 4)
	f.score(t, 1, f.subs[0], f.criteria[0], 8)

	res, err := f.env.svc.Results.ForSubmission(context.Background(), operator(), f.subs[0].ID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.FinalScore != 6.0 {
		t.Fatalf("final = %g, want 6.0", res.FinalScore)
	}
}

func TestWeightedTwoCriterionScenario(t *testing.T) {
	// Criterion A weight 1 scored 6, criterion B weight 2 scored 9:
	// final = (6*1 + 9*2) / 3 = 8.
	f := newFixture(t, "mean", 1, []float64{1, 2}, 1)
	f.score(t, 0, f.subs[0], f.criteria[0], 6)
	f.score(t, 0, f.subs[0], f.criteria[1], 9)

	res, err := f.env.svc.Results.ForSubmission(context.Background(), operator(), f.subs[0].ID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.FinalScore != 8.0 {
		t.Fatalf("final = %g, want 8.0", res.FinalScore)
	}
}

func TestCompletionStatusDerivation(t *testing.T) {
	f := newFixture(t, "mean", 2, []float64{1, 1}, 1)
	ctx := context.Background()

	res, _ := f.env.svc.Results.ForSubmission(ctx, operator(), f.subs[0].ID)
	if res.CompletionStatus != CompletionNone {
		t.Fatalf("unscored completion = %s, want none", res.CompletionStatus)
	}

	// One of two criteria scored, and by fewer judges than active seats.
	f.score(t, 0, f.subs[0], f.criteria[0], 5)
	res, _ = f.env.svc.Results.ForSubmission(ctx, operator(), f.subs[0].ID)
	if res.CompletionStatus != CompletionPartial {
		t.Fatalf("partial completion = %s, want partial", res.CompletionStatus)
	}

	f.score(t, 1, f.subs[0], f.criteria[0], 5)
	f.score(t, 0, f.subs[0], f.criteria[1], 5)
	f.score(t, 1, f.subs[0], f.criteria[1], 5)
	res, _ = f.env.svc.Results.ForSubmission(ctx, operator(), f.subs[0].ID)
	if res.CompletionStatus != CompletionComplete {
		t.Fatalf("completion = %s, want complete", res.CompletionStatus)
	}
}

func TestCategoryRankingWithTies(t *testing.T) {
	// Scores [9,8,8,7] across four teams: ranks 1,2,2,4.
	f := newFixture(t, "mean", 1, []float64{1}, 4)
	ctx := context.Background()
	for i, v := range []float64{9, 8, 8, 7} {
		f.score(t, 0, f.subs[i], f.criteria[0], v)
	}

	ranked, err := f.env.svc.Results.ForCategory(ctx, operator(), f.category.ID)
	if err != nil {
		t.Fatalf("category results: %v", err)
	}
	wantRanks := []int{1, 2, 2, 4}
	wantScores := []float64{9, 8, 8, 7}
	for i := range ranked {
		if ranked[i].Rank != wantRanks[i] || ranked[i].FinalScore != wantScores[i] {
			t.Fatalf("pos %d: rank=%d score=%g, want rank=%d score=%g",
				i, ranked[i].Rank, ranked[i].FinalScore, wantRanks[i], wantScores[i])
		}
	}
}

func TestOverallRankSumTiebreaker(t *testing.T) {
	// Team X: cat1 rank 1 (9), cat2 rank 2 (6). Team Y: cat1 rank 2 (7),
	// cat2 rank 1 (9). Equal rank sums, Y's total 16 > X's 15, Y wins.
	f := newFixture(t, "mean", 1, []float64{1}, 2)
	ctx := context.Background()

	cat2, err := f.env.svc.Categories.Create(ctx, operator(), f.event.ID, CreateCategoryRequest{Name: "Ribs"})
	if err != nil {
		t.Fatalf("cat2: %v", err)
	}
	var subs2 []*models.Submission
	for _, team := range f.teams {
		sub, err := f.env.svc.Submissions.Create(ctx, operator(), CreateSubmissionRequest{
			TeamID: team.ID, CategoryID: cat2.ID,
		})
		if err != nil {
			t.Fatalf("sub: %v", err)
		}
		if sub, err = f.env.svc.Submissions.UpdateStatus(ctx, operator(), sub.ID, models.SubmissionTurnedIn); err != nil {
			t.Fatalf("turn in: %v", err)
		}
		subs2 = append(subs2, sub)
	}

	// X = teams[0], Y = teams[1].
	f.score(t, 0, f.subs[0], f.criteria[0], 9)
	f.score(t, 0, f.subs[1], f.criteria[0], 7)
	f.score(t, 0, subs2[0], f.criteria[0], 6)
	f.score(t, 0, subs2[1], f.criteria[0], 9)

	standings, err := f.env.svc.Results.ForEvent(ctx, operator(), f.event.ID)
	if err != nil {
		t.Fatalf("event results: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("standings = %d", len(standings))
	}
	if standings[0].TeamID != f.teams[1].ID || standings[0].Rank != 1 {
		t.Fatalf("winner = %+v, want team Y rank 1", standings[0])
	}
	if standings[0].RankSum != 3 || standings[1].RankSum != 3 {
		t.Fatalf("rank sums = %d, %d, want 3, 3", standings[0].RankSum, standings[1].RankSum)
	}
	if standings[0].TotalScore != 16 || standings[1].TotalScore != 15 {
		t.Fatalf("totals = %g, %g", standings[0].TotalScore, standings[1].TotalScore)
	}
}
