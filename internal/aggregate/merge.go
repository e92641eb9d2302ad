// Package aggregate combines independently fetched transaction sources into
// the derived lists shown by the back office.
package aggregate

import (
	"sort"

	"broker-backoffice-go/internal/models"
)

// Policy decides which record survives when the same id appears in more than
// one source.
type Policy int

const (
	// PreferMostRecent keeps the record with the later effective time. Ties
	// keep the first-seen record.
	PreferMostRecent Policy = iota
	// PreferFirstSource keeps whichever record was seen first.
	PreferFirstSource
)

func (p Policy) String() string {
	switch p {
	case PreferFirstSource:
		return "first_source"
	default:
		return "most_recent"
	}
}

// ParsePolicy reads a policy name; unknown names fall back to PreferMostRecent.
func ParsePolicy(name string) Policy {
	if name == PreferFirstSource.String() {
		return PreferFirstSource
	}
	return PreferMostRecent
}

// Merge concatenates sources and removes duplicate ids according to policy.
// The id alone is the key, whichever source a record came from. Output order
// is first-seen order; records without an id are never treated as duplicates.
func Merge(policy Policy, sources ...[]models.NormalizedTransaction) []models.NormalizedTransaction {
	total := 0
	for _, s := range sources {
		total += len(s)
	}

	merged := make([]models.NormalizedTransaction, 0, total)
	position := make(map[int64]int, total)

	for _, source := range sources {
		for _, tx := range source {
			if tx.Id == 0 {
				merged = append(merged, tx)
				continue
			}
			i, seen := position[tx.Id]
			if !seen {
				position[tx.Id] = len(merged)
				merged = append(merged, tx)
				continue
			}
			if policy == PreferMostRecent && tx.EffectiveTime().After(merged[i].EffectiveTime()) {
				merged[i] = tx
			}
		}
	}
	return merged
}

// SortByRecency returns a copy ordered newest first by effective time. Equal
// times keep their input order.
func SortByRecency(list []models.NormalizedTransaction) []models.NormalizedTransaction {
	sorted := append([]models.NormalizedTransaction(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveTime().After(sorted[j].EffectiveTime())
	})
	return sorted
}
