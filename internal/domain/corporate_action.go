package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ActionKind string

const (
	ActionStockSplit   ActionKind = "STOCK_SPLIT"
	ActionStockMerger  ActionKind = "STOCK_MERGER"
	ActionCashMerger   ActionKind = "CASH_MERGER"
	ActionMixedMerger  ActionKind = "MIXED_MERGER"
	ActionSpinoff      ActionKind = "SPINOFF"
	ActionCashDividend ActionKind = "CASH_DIVIDEND"
)

// CorporateAction describes one event supplied by the portfolio/transaction
// domain. Which numeric fields are meaningful depends on Kind; the engine
// never persists these.
type CorporateAction struct {
	ID   uuid.UUID
	Kind ActionKind

	// SplitFrom:SplitTo, e.g. 1:2 for a 2-for-1 split.
	SplitFrom decimal.Decimal
	SplitTo   decimal.Decimal

	// Shares of the surviving company received per original share.
	ExchangeRatio decimal.Decimal

	CashPerShare     decimal.Decimal
	DividendPerShare decimal.Decimal

	// New-security shares received per original share in a spinoff.
	SpinoffRatio decimal.Decimal
	// Percentage of original basis allocated to the spun-off position,
	// in (0, 100].
	AllocationPercent decimal.Decimal

	// Dividend tax treatment as declared by the issuer.
	Qualified       bool
	ReturnOfCapital bool

	EffectiveDate time.Time
	// Set for spinoffs and mergers introducing a new symbol.
	NewSecurityID *uuid.UUID
	Description   string
}

// Transaction is the minimal read-only view of a tax lot the engine
// consumes. Price is the cost basis per share.
type Transaction struct {
	ID           uuid.UUID
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	PurchaseDate time.Time
}

type AdjustmentType string

const (
	AdjustmentSplit       AdjustmentType = "SPLIT"
	AdjustmentMerger      AdjustmentType = "MERGER"
	AdjustmentSpinoff     AdjustmentType = "SPINOFF"
	AdjustmentNewPosition AdjustmentType = "NEW_POSITION"
	AdjustmentDividend    AdjustmentType = "DIVIDEND"
)

// Adjustment is the engine's produced artifact: a quantity/price/basis delta
// the transaction domain is responsible for persisting and applying.
// TransactionID is nil when the adjustment creates a brand-new position
// (spinoff shares).
type Adjustment struct {
	TransactionID     *uuid.UUID
	CorporateActionID uuid.UUID
	Type              AdjustmentType

	OriginalQuantity decimal.Decimal
	AdjustedQuantity decimal.Decimal
	OriginalPrice    decimal.Decimal
	AdjustedPrice    decimal.Decimal

	GainLoss decimal.Decimal
	TaxEvent bool

	NewSecurityID *uuid.UUID

	// 1-based position after sorting affected lots by purchase date,
	// preserving first-in-first-out cost basis ordering.
	FifoLotOrder int

	Reason string
}
