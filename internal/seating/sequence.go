// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package seating produces the deterministic per-seat passing order that
// directs each judge to the correct sample in the correct order, plus the
// seeded shuffle and round-robin distribution used to build a category's
// assignment plan (see internal/services for the orchestration layer).
package seating

import (
	"errors"
	"fmt"
	"sort"
)

// GenerateSeatSequence returns the length-N permutation of submission
// numbers [1..N] that seat k sees at a table with S seats.
//
// Rules:
//   - N <= S: sequence starts with k (if k <= N), then the remaining
//     submissions in descending numeric order, skipping k.
//   - N > S: extras = [S+1..N], batch1Others = {1..S} \ {k}, split at
//     midpoint = ceil(S/2). The sequence starts with k; seats <= midpoint
//     then see extras, then batch1Others descending; seats > midpoint
//     then see batch1Others descending, then extras reversed.
func GenerateSeatSequence(seatNumber, submissionCount, seatCount int) ([]int, error) {
	if seatCount <= 0 {
		return nil, fmt.Errorf("seat count must be positive, got %d", seatCount)
	}
	if seatNumber < 1 || seatNumber > seatCount {
		return nil, fmt.Errorf("seat_number %d out of range [1,%d]: %w", seatNumber, seatCount, errInvalidArgument)
	}
	if submissionCount == 0 {
		return []int{}, nil
	}

	k := seatNumber
	n := submissionCount
	s := seatCount

	if n <= s {
		seq := make([]int, 0, n)
		if k <= n {
			seq = append(seq, k)
		}
		for i := n; i >= 1; i-- {
			if i == k {
				continue
			}
			seq = append(seq, i)
		}
		return seq, nil
	}

	extras := make([]int, 0, n-s)
	for i := s + 1; i <= n; i++ {
		extras = append(extras, i)
	}

	batch1Others := make([]int, 0, s-1)
	for i := 1; i <= s; i++ {
		if i == k {
			continue
		}
		batch1Others = append(batch1Others, i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(batch1Others)))

	midpoint := (s + 1) / 2 // ceil(s/2)

	seq := make([]int, 0, n)
	seq = append(seq, k)
	if k <= midpoint {
		seq = append(seq, extras...)
		seq = append(seq, batch1Others...)
	} else {
		seq = append(seq, batch1Others...)
		for i := len(extras) - 1; i >= 0; i-- {
			seq = append(seq, extras[i])
		}
	}
	return seq, nil
}

var errInvalidArgument = errors.New("invalid argument")

// IsInvalidArgument reports whether err originated from an out-of-range
// seat_number passed to GenerateSeatSequence.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, errInvalidArgument)
}
