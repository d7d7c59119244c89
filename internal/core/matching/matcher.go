// Package matching implements a generic two-sided record matching engine.
// It is instantiated once for bank-statement-vs-book reconciliation and once
// for GST-authority-feed-vs-purchase-bill reconciliation.
package matching

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome classifies how one external record was resolved by a run.
type Outcome string

const (
	// OutcomeMatched means exactly one unambiguous candidate was found
	// within tolerance; the pairing should be linked.
	OutcomeMatched Outcome = "MATCHED"
	// OutcomeMismatched means a candidate shares the coarse key but its
	// amount falls outside the tolerance. The best such candidate is still
	// reported so callers can surface the discrepancy.
	OutcomeMismatched Outcome = "MISMATCHED"
	// OutcomeUnmatched means no candidate shares the coarse key within the
	// date window.
	OutcomeUnmatched Outcome = "UNMATCHED"
	// OutcomeAmbiguous means two or more candidates are equally good; the
	// record is left for manual resolution rather than guessed at.
	OutcomeAmbiguous Outcome = "AMBIGUOUS"
)

// Params configures a matching run between external records of type E and
// internal records of type I. Key functions produce the coarse index key
// (for bank reconciliation the amount rounded to a whole currency unit, for
// GST reconciliation the supplier/invoice identity). DateWindowDays of zero
// disables the date constraint.
type Params[E any, I any] struct {
	ExternalKey    func(E) string
	InternalKey    func(I) string
	ExternalAmount func(E) decimal.Decimal
	InternalAmount func(I) decimal.Decimal
	ExternalDate   func(E) time.Time
	InternalDate   func(I) time.Time

	AmountTolerance decimal.Decimal
	DateWindowDays  int
}

// Result pairs one external record with its outcome. InternalIndex is the
// position of the chosen internal record in the input slice, or -1 when no
// candidate was chosen (unmatched/ambiguous).
type Result[E any] struct {
	External      E
	ExternalIndex int
	InternalIndex int
	Outcome       Outcome
	AmountDiff    decimal.Decimal
}

type candidate struct {
	index      int
	amountDiff decimal.Decimal
	dateDiff   int
}

// Run matches each external record against the internal records. Each
// external record binds to at most one internal record, and an internal
// record consumed by a match is unavailable to later externals. Externals
// are processed in input order and candidates ranked by ascending absolute
// amount difference, then ascending date difference, then input order, so a
// run over an unchanged input set always produces identical results.
//
// Callers enforce idempotence across runs by passing only unresolved
// external records and only internal records not already bound by a
// confirmed link.
func Run[E any, I any](p Params[E, I], externals []E, internals []I) []Result[E] {
	index := make(map[string][]int, len(internals))
	for i, rec := range internals {
		key := p.InternalKey(rec)
		index[key] = append(index[key], i)
	}
	consumed := make(map[int]bool, len(externals))

	results := make([]Result[E], 0, len(externals))
	for ei, ext := range externals {
		res := Result[E]{External: ext, ExternalIndex: ei, InternalIndex: -1}

		var candidates []candidate
		for _, ii := range index[p.ExternalKey(ext)] {
			if consumed[ii] {
				continue
			}
			dateDiff := 0
			if p.DateWindowDays > 0 {
				dateDiff = dayDiff(p.ExternalDate(ext), p.InternalDate(internals[ii]))
				if dateDiff > p.DateWindowDays {
					continue
				}
			}
			amountDiff := p.ExternalAmount(ext).Sub(p.InternalAmount(internals[ii])).Abs()
			candidates = append(candidates, candidate{index: ii, amountDiff: amountDiff, dateDiff: dateDiff})
		}

		if len(candidates) == 0 {
			res.Outcome = OutcomeUnmatched
			results = append(results, res)
			continue
		}

		sort.SliceStable(candidates, func(a, b int) bool {
			cmp := candidates[a].amountDiff.Cmp(candidates[b].amountDiff)
			if cmp != 0 {
				return cmp < 0
			}
			if candidates[a].dateDiff != candidates[b].dateDiff {
				return candidates[a].dateDiff < candidates[b].dateDiff
			}
			return candidates[a].index < candidates[b].index
		})

		best := candidates[0]
		res.InternalIndex = best.index
		res.AmountDiff = best.amountDiff

		if best.amountDiff.GreaterThan(p.AmountTolerance) {
			// Shares the coarse key but the amounts disagree beyond
			// tolerance; the internal record stays available.
			res.InternalIndex = best.index
			res.Outcome = OutcomeMismatched
			results = append(results, res)
			continue
		}

		if len(candidates) > 1 && equallyGood(best, candidates[1]) {
			res.InternalIndex = -1
			res.Outcome = OutcomeAmbiguous
			results = append(results, res)
			continue
		}

		res.Outcome = OutcomeMatched
		consumed[best.index] = true
		results = append(results, res)
	}
	return results
}

// equallyGood reports whether two candidates tie on both ranking criteria.
// Input order decides which one is reported first, but an auto-match is
// never created from a tie.
func equallyGood(a, b candidate) bool {
	return a.amountDiff.Equal(b.amountDiff) && a.dateDiff == b.dateDiff
}

// dayDiff returns the absolute difference between two dates in whole
// calendar days, ignoring the time-of-day component.
func dayDiff(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	diff := ad.Sub(bd)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
