// Package corpactions transforms transaction quantity/price/basis for
// corporate actions (splits, mergers, spinoffs, dividends) and emits
// adjustment records for the transaction domain to persist. Batch helpers
// sort affected lots by purchase date and stamp a 1-based FIFO lot order so
// first-in-first-out cost basis survives the adjustment.
package corpactions

import (
	"errors"
	"sort"

	"quantengine/internal/domain"
)

var (
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInvalidRatio      = errors.New("invalid ratio")
	ErrInvalidCashAmount = errors.New("invalid cash amount")
	ErrInvalidAllocation = errors.New("invalid allocation percentage")
	ErrInvalidDividend   = errors.New("invalid dividend")
	ErrWrongActionKind   = errors.New("wrong corporate action kind")
)

// sortByPurchaseDate returns a date-ascending copy of txs. The input is
// never reordered in place; it belongs to the caller.
func sortByPurchaseDate(txs []domain.Transaction) []domain.Transaction {
	sorted := make([]domain.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PurchaseDate.Before(sorted[j].PurchaseDate)
	})
	return sorted
}
