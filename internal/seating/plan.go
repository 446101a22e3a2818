// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package seating

// TableAssignment is one table's slice of a category's assignment plan:
// the submissions routed to it (in shuffled order) and, for every seat,
// the per-seat evaluation sequence over that table's local submission
// numbering (1-based, matching GenerateSeatSequence's k/N convention).
type TableAssignment struct {
	TableIndex    int
	SubmissionIDs []string
	SeatSequences map[int][]int // seat number -> sequence of local submission numbers
}

// BuildAssignmentPlan shuffles submissionIDs with seed, distributes them
// round-robin across tableCount tables (table_i = i mod tableCount), and
// computes each table's per-seat sequences via GenerateSeatSequence.
// Tables that receive zero submissions are omitted. seatCounts maps table
// index to its seat count; a table missing from the map, or with a
// non-positive count, gets 6 seats.
func BuildAssignmentPlan(submissionIDs []string, seed int32, tableCount int, seatCounts map[int]int) ([]TableAssignment, error) {
	if tableCount <= 0 {
		return nil, nil
	}

	indices := make([]int, len(submissionIDs))
	for i := range indices {
		indices[i] = i
	}
	shuffled := ShuffleWithSeed(indices, seed)

	perTable := make([][]string, tableCount)
	for shuffledPos, originalIdx := range shuffled {
		tableIdx := shuffledPos % tableCount
		perTable[tableIdx] = append(perTable[tableIdx], submissionIDs[originalIdx])
	}

	plan := make([]TableAssignment, 0, tableCount)
	for i := 0; i < tableCount; i++ {
		subs := perTable[i]
		if len(subs) == 0 {
			continue
		}
		seatCount := seatCounts[i]
		if seatCount <= 0 {
			seatCount = 6
		}
		seqs := make(map[int][]int, seatCount)
		for seatNum := 1; seatNum <= seatCount; seatNum++ {
			seq, err := GenerateSeatSequence(seatNum, len(subs), seatCount)
			if err != nil {
				return nil, err
			}
			seqs[seatNum] = seq
		}
		plan = append(plan, TableAssignment{
			TableIndex:    i,
			SubmissionIDs: subs,
			SeatSequences: seqs,
		})
	}
	return plan, nil
}
