// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package scoring

import "testing"

func TestRankCategory_TiesSkipNextRank(t *testing.T) {
	entries := []RankedEntry{
		{ID: "a", FinalScore: 9},
		{ID: "b", FinalScore: 8},
		{ID: "c", FinalScore: 8},
		{ID: "d", FinalScore: 7},
	}
	ranked := RankCategory(entries)
	want := map[string]int{"a": 1, "b": 2, "c": 2, "d": 4}
	for _, r := range ranked {
		if r.Rank != want[r.ID] {
			t.Fatalf("%s: rank %d, want %d", r.ID, r.Rank, want[r.ID])
		}
	}
}

func TestRankCategory_Monotonicity(t *testing.T) {
	entries := []RankedEntry{
		{ID: "a", FinalScore: 7.2},
		{ID: "b", FinalScore: 9.1},
		{ID: "c", FinalScore: 3.4},
	}
	ranked := RankCategory(entries)
	byID := map[string]RankedEntry{}
	for _, r := range ranked {
		byID[r.ID] = r
	}
	if byID["b"].Rank >= byID["a"].Rank {
		t.Fatalf("b (%v) should outrank a (%v)", byID["b"].FinalScore, byID["a"].FinalScore)
	}
	if byID["a"].Rank >= byID["c"].Rank {
		t.Fatalf("a (%v) should outrank c (%v)", byID["a"].FinalScore, byID["c"].FinalScore)
	}
}

func TestRankOverall_RankSumTiebreak(t *testing.T) {
	// Team X: cat1 score 9 rank 1, cat2 score 6 rank 2 -> rankSum 3, total 15
	// Team Y: cat1 score 7 rank 2, cat2 score 9 rank 1 -> rankSum 3, total 16
	entries := []OverallEntry{
		{ID: "X", RankSum: 3, TotalScore: 15},
		{ID: "Y", RankSum: 3, TotalScore: 16},
	}
	ranked := RankOverall(entries)
	byID := map[string]OverallEntry{}
	for _, r := range ranked {
		byID[r.ID] = r
	}
	if byID["Y"].Rank != 1 {
		t.Fatalf("Y should rank 1 (higher total score on tied rank sum), got %d", byID["Y"].Rank)
	}
	if byID["X"].Rank != 2 {
		t.Fatalf("X should rank 2, got %d", byID["X"].Rank)
	}
}

func TestRankOverall_TiedOnBothMetricsShareRank(t *testing.T) {
	entries := []OverallEntry{
		{ID: "A", RankSum: 4, TotalScore: 10},
		{ID: "B", RankSum: 4, TotalScore: 10},
		{ID: "C", RankSum: 5, TotalScore: 20},
	}
	ranked := RankOverall(entries)
	byID := map[string]OverallEntry{}
	for _, r := range ranked {
		byID[r.ID] = r
	}
	if byID["A"].Rank != byID["B"].Rank {
		t.Fatalf("A and B tied on both metrics must share a rank: %d vs %d", byID["A"].Rank, byID["B"].Rank)
	}
	if byID["C"].Rank != 3 {
		t.Fatalf("C rank = %d, want 3 (skip rank after the tie)", byID["C"].Rank)
	}
}
