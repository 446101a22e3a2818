// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"sort"

	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/scoring"
)

// CompletionStatus summarizes how much of a submission has been judged.
type CompletionStatus string

const (
	CompletionNone     CompletionStatus = "none"
	CompletionPartial  CompletionStatus = "partial"
	CompletionComplete CompletionStatus = "complete"
)

// CriterionScore is one criterion's aggregated outcome for a submission.
type CriterionScore struct {
	CriterionID string  `json:"criterion_id"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Aggregated  float64 `json:"aggregated"`
	JudgeCount  int     `json:"judge_count"`
}

// SubmissionResult is the full scoring picture for one submission.
type SubmissionResult struct {
	SubmissionID     string           `json:"submission_id"`
	TeamID           string           `json:"team_id"`
	CategoryID       string           `json:"category_id"`
	Criteria         []CriterionScore `json:"criteria"`
	FinalScore       float64          `json:"final_score"`
	CompletionStatus CompletionStatus `json:"completion_status"`
}

// RankedSubmissionResult is a SubmissionResult with its category rank.
type RankedSubmissionResult struct {
	SubmissionResult
	Rank int `json:"rank"`
}

// TeamStanding is one team's event-wide rank-sum standing.
type TeamStanding struct {
	TeamID     string  `json:"team_id"`
	TeamName   string  `json:"team_name"`
	RankSum    int     `json:"rank_sum"`
	TotalScore float64 `json:"total_score"`
	Rank       int     `json:"rank"`
}

// ResultsService is the read-only projection over persisted scores.
// Nothing is cached: every call recomputes from the authoritative score
// rows, so results are always consistent with what judges submitted.
type ResultsService struct {
	repos Repos
	authz *authz.Enforcer
}

// ForSubmission aggregates one submission's scores per criterion and
// derives the weighted final score and completion status. "Active judges"
// is the event-wide count of live seats whose table is live — the
// documented approximation when the per-category seat subset is unknown.
func (s *ResultsService) ForSubmission(ctx context.Context, actor authz.Principal, submissionID string) (*SubmissionResult, error) {
	if err := s.authz.Require(actor, authz.ResResults, authz.ActRead); err != nil {
		return nil, err
	}
	sub, err := s.repos.Submissions.Get(ctx, submissionID, false)
	if err != nil {
		return nil, err
	}
	return s.computeSubmission(ctx, sub)
}

func (s *ResultsService) computeSubmission(ctx context.Context, sub *models.Submission) (*SubmissionResult, error) {
	category, err := s.repos.Categories.Get(ctx, sub.CategoryID, true)
	if err != nil {
		return nil, err
	}
	event, err := s.repos.Events.Get(ctx, category.EventID, false)
	if err != nil {
		return nil, err
	}
	criteria, err := s.repos.Criteria.ListByEvent(ctx, event.ID, false)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(criteria, func(i, j int) bool { return criteria[i].SortOrder < criteria[j].SortOrder })

	scores, err := s.repos.Scores.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	byCriterion := make(map[string][]float64, len(criteria))
	for _, sc := range scores {
		byCriterion[sc.CriterionID] = append(byCriterion[sc.CriterionID], sc.ScoreValue)
	}

	method := scoring.Method(event.AggregationMethod)
	result := &SubmissionResult{
		SubmissionID: sub.ID,
		TeamID:       sub.TeamID,
		CategoryID:   sub.CategoryID,
		Criteria:     make([]CriterionScore, 0, len(criteria)),
	}
	weighted := make([]scoring.CriterionResult, 0, len(criteria))
	for _, c := range criteria {
		raw := byCriterion[c.ID]
		agg := scoring.Aggregate(method, raw)
		result.Criteria = append(result.Criteria, CriterionScore{
			CriterionID: c.ID,
			Name:        c.Name,
			Weight:      c.Weight,
			Aggregated:  agg,
			JudgeCount:  len(raw),
		})
		weighted = append(weighted, scoring.CriterionResult{
			Value: agg, Weight: c.Weight, JudgeCount: len(raw),
		})
	}
	result.FinalScore = scoring.WeightedFinalScore(weighted)

	activeJudges, err := s.activeJudgeCount(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	result.CompletionStatus = deriveCompletion(result.Criteria, activeJudges)
	return result, nil
}

// deriveCompletion classifies judging progress: none when no criterion
// was scored; complete when every criterion was scored by every active
// judge; partial otherwise.
func deriveCompletion(criteria []CriterionScore, activeJudges int) CompletionStatus {
	if len(criteria) == 0 {
		return CompletionNone
	}
	scored := 0
	allFull := true
	for _, c := range criteria {
		if c.JudgeCount > 0 {
			scored++
		}
		if c.JudgeCount < activeJudges {
			allFull = false
		}
	}
	switch {
	case scored == 0:
		return CompletionNone
	case scored == len(criteria) && allFull && activeJudges > 0:
		return CompletionComplete
	default:
		return CompletionPartial
	}
}

// activeJudgeCount counts live seats at live tables across the event.
func (s *ResultsService) activeJudgeCount(ctx context.Context, eventID string) (int, error) {
	tables, err := s.repos.Tables.ListByEvent(ctx, eventID, false)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, t := range tables {
		seats, err := s.repos.Seats.ListByTable(ctx, t.ID, false)
		if err != nil {
			return 0, err
		}
		count += len(seats)
	}
	return count, nil
}

// ForCategory computes every submission's result and ranks them with
// competition ranking (ties share a rank, following ranks are skipped).
func (s *ResultsService) ForCategory(ctx context.Context, actor authz.Principal, categoryID string) ([]RankedSubmissionResult, error) {
	if err := s.authz.Require(actor, authz.ResResults, authz.ActRead); err != nil {
		return nil, err
	}
	return s.computeCategory(ctx, categoryID)
}

func (s *ResultsService) computeCategory(ctx context.Context, categoryID string) ([]RankedSubmissionResult, error) {
	subs, err := s.repos.Submissions.ListByCategory(ctx, categoryID, false)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*SubmissionResult, len(subs))
	entries := make([]scoring.RankedEntry, 0, len(subs))
	for i := range subs {
		r, err := s.computeSubmission(ctx, &subs[i])
		if err != nil {
			return nil, err
		}
		byID[r.SubmissionID] = r
		entries = append(entries, scoring.RankedEntry{ID: r.SubmissionID, FinalScore: r.FinalScore})
	}

	ranked := scoring.RankCategory(entries)
	out := make([]RankedSubmissionResult, 0, len(ranked))
	for _, e := range ranked {
		out = append(out, RankedSubmissionResult{SubmissionResult: *byID[e.ID], Rank: e.Rank})
	}
	return out, nil
}

// ForEvent produces the event-wide standings: per team, the rank sum and
// total score over every category it entered, sorted by rank sum
// ascending with total score as the tiebreak.
func (s *ResultsService) ForEvent(ctx context.Context, actor authz.Principal, eventID string) ([]TeamStanding, error) {
	if err := s.authz.Require(actor, authz.ResResults, authz.ActRead); err != nil {
		return nil, err
	}
	if _, err := s.repos.Events.Get(ctx, eventID, false); err != nil {
		return nil, err
	}
	categories, err := s.repos.Categories.ListByEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}

	type accum struct {
		rankSum    int
		totalScore float64
	}
	perTeam := map[string]*accum{}
	for _, cat := range categories {
		ranked, err := s.computeCategory(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range ranked {
			a := perTeam[r.TeamID]
			if a == nil {
				a = &accum{}
				perTeam[r.TeamID] = a
			}
			a.rankSum += r.Rank
			a.totalScore += r.FinalScore
		}
	}

	entries := make([]scoring.OverallEntry, 0, len(perTeam))
	for teamID, a := range perTeam {
		entries = append(entries, scoring.OverallEntry{
			ID: teamID, RankSum: a.rankSum, TotalScore: a.totalScore,
		})
	}
	// Map iteration order would otherwise leak into the stable sort's
	// treatment of full ties.
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	ranked := scoring.RankOverall(entries)

	out := make([]TeamStanding, 0, len(ranked))
	for _, e := range ranked {
		name := ""
		if team, err := s.repos.Teams.Get(ctx, e.ID, true); err == nil {
			name = team.Name
		}
		out = append(out, TeamStanding{
			TeamID:     e.ID,
			TeamName:   name,
			RankSum:    e.RankSum,
			TotalScore: e.TotalScore,
			Rank:       e.Rank,
		})
	}
	return out, nil
}
