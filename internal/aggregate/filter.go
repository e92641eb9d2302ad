package aggregate

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"broker-backoffice-go/internal/models"
)

// All is the sentinel used by list screens for "no filter".
const All = "all"

// DateRange bounds a filter at day granularity. A zero From or To leaves that
// side open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Contains reports whether t falls inside the range with both bounds widened
// to whole days.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(StartOfDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && t.After(EndOfDay(r.To)) {
		return false
	}
	return true
}

// Criteria is the AND of independent predicates. Empty strings, "all" and a
// nil Range are ignored.
type Criteria struct {
	Search string
	Type   string
	Status string
	Range  *DateRange
}

func unset(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, All)
}

// IsZero reports whether no predicate is set.
func (c Criteria) IsZero() bool {
	return unset(c.Search) && unset(c.Type) && unset(c.Status) && c.Range == nil
}

func (c Criteria) matches(tx models.NormalizedTransaction) bool {
	if !unset(c.Type) && !strings.EqualFold(strings.TrimSpace(c.Type), string(tx.Type)) {
		return false
	}
	if !unset(c.Status) && !strings.EqualFold(strings.TrimSpace(c.Status), string(tx.Status)) {
		return false
	}
	if c.Range != nil && !c.Range.Contains(tx.CreatedAt) {
		return false
	}
	if !unset(c.Search) && !matchesSearch(tx, strings.ToLower(strings.TrimSpace(c.Search))) {
		return false
	}
	return true
}

func matchesSearch(tx models.NormalizedTransaction, needle string) bool {
	fields := []string{
		tx.ClientName,
		tx.Email,
		strconv.FormatInt(tx.Id, 10),
		tx.PaymentMethod,
		tx.CounterpartyReference,
		tx.AccountIdentifier,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Filter returns the records matching every set predicate, preserving order.
// The date range applies to the creation time.
func Filter(list []models.NormalizedTransaction, c Criteria) []models.NormalizedTransaction {
	if c.IsZero() {
		return slices.Clone(list)
	}
	out := make([]models.NormalizedTransaction, 0, len(list))
	for _, tx := range list {
		if c.matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}
