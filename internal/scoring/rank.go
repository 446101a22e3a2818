// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package scoring

import "sort"

// tieEpsilon is the tolerance below which two final scores are treated as tied.
const tieEpsilon = 1e-4

// RankedEntry is a plain (id, score) pair with its assigned rank. It never
// references entity schemas; callers map to/from their own ID types.
type RankedEntry struct {
	ID         string
	FinalScore float64
	Rank       int
}

// RankCategory sorts entries by FinalScore descending and assigns standard
// competition ranks ("1,2,2,4"): ties within tieEpsilon share the rank of
// the first tied element, and the following ranks are skipped accordingly.
func RankCategory(entries []RankedEntry) []RankedEntry {
	out := append([]RankedEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	for i := range out {
		if i == 0 {
			out[i].Rank = 1
			continue
		}
		if absDiff(out[i].FinalScore, out[i-1].FinalScore) < tieEpsilon {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

// OverallEntry accumulates a team's standing across all categories it
// entered: the sum of per-category ranks (primary sort key, ascending) and
// the sum of per-category final scores (tiebreak, descending).
type OverallEntry struct {
	ID         string
	RankSum    int
	TotalScore float64
	Rank       int
}

// RankOverall sorts teams ascending by RankSum, then descending by
// TotalScore, and assigns shared ranks to entries tied on BOTH metrics.
func RankOverall(entries []OverallEntry) []OverallEntry {
	out := append([]OverallEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RankSum != out[j].RankSum {
			return out[i].RankSum < out[j].RankSum
		}
		return out[i].TotalScore > out[j].TotalScore
	})
	for i := range out {
		if i == 0 {
			out[i].Rank = 1
			continue
		}
		tied := out[i].RankSum == out[i-1].RankSum && absDiff(out[i].TotalScore, out[i-1].TotalScore) < tieEpsilon
		if tied {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}
