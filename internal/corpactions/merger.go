package corpactions

import (
	"fmt"

	"github.com/shopspring/decimal"

	"quantengine/internal/domain"
)

type MergerResult struct {
	NewQuantity      decimal.Decimal
	NewBasisPerShare decimal.Decimal
	CashReceived     decimal.Decimal
	GainLoss         decimal.Decimal
	TaxEvent         bool
	PositionClosed   bool
}

// StockForStockMerger exchanges shares at the given ratio. Total cost basis
// carries forward unchanged onto the new share count; nothing is
// recognized.
func StockForStockMerger(quantity, basisPerShare, exchangeRatio decimal.Decimal) (*MergerResult, error) {
	if err := validateLot(quantity, basisPerShare); err != nil {
		return nil, err
	}
	if !exchangeRatio.IsPositive() {
		return nil, fmt.Errorf("exchange ratio %s: %w", exchangeRatio, ErrInvalidRatio)
	}

	newQuantity := quantity.Mul(exchangeRatio)
	totalBasis := quantity.Mul(basisPerShare)

	return &MergerResult{
		NewQuantity:      newQuantity,
		NewBasisPerShare: totalBasis.Div(newQuantity),
		CashReceived:     decimal.Zero,
		GainLoss:         decimal.Zero,
		TaxEvent:         false,
		PositionClosed:   false,
	}, nil
}

// CashMerger cashes the position out entirely. The full difference between
// proceeds and basis is recognized (possibly a loss) and the position
// closes.
func CashMerger(quantity, basisPerShare, cashPerShare decimal.Decimal) (*MergerResult, error) {
	if err := validateLot(quantity, basisPerShare); err != nil {
		return nil, err
	}
	if cashPerShare.IsNegative() {
		return nil, fmt.Errorf("cash per share %s: %w", cashPerShare, ErrInvalidCashAmount)
	}

	totalCash := quantity.Mul(cashPerShare)
	totalBasis := quantity.Mul(basisPerShare)

	return &MergerResult{
		NewQuantity:      decimal.Zero,
		NewBasisPerShare: decimal.Zero,
		CashReceived:     totalCash,
		GainLoss:         totalCash.Sub(totalBasis),
		TaxEvent:         true,
		PositionClosed:   true,
	}, nil
}

// MixedMerger pays part cash, part stock. Recognition is conservative: the
// cash portion is taxed first, offset against basis up to the full basis,
// and whatever basis remains carries to the new shares. This deliberately
// skips a pro-rata fair-market-value allocation between the cash and stock
// legs.
func MixedMerger(quantity, basisPerShare, exchangeRatio, cashPerShare decimal.Decimal) (*MergerResult, error) {
	if err := validateLot(quantity, basisPerShare); err != nil {
		return nil, err
	}
	if !exchangeRatio.IsPositive() {
		return nil, fmt.Errorf("exchange ratio %s: %w", exchangeRatio, ErrInvalidRatio)
	}
	if cashPerShare.IsNegative() {
		return nil, fmt.Errorf("cash per share %s: %w", cashPerShare, ErrInvalidCashAmount)
	}

	newQuantity := quantity.Mul(exchangeRatio)
	cashReceived := quantity.Mul(cashPerShare)
	totalBasis := quantity.Mul(basisPerShare)

	basisOffset := decimal.Min(cashReceived, totalBasis)
	gain := cashReceived.Sub(basisOffset)
	remainingBasis := totalBasis.Sub(basisOffset)

	return &MergerResult{
		NewQuantity:      newQuantity,
		NewBasisPerShare: remainingBasis.Div(newQuantity),
		CashReceived:     cashReceived,
		GainLoss:         gain,
		TaxEvent:         true,
		PositionClosed:   false,
	}, nil
}

type SpinoffResult struct {
	SpinoffQuantity       decimal.Decimal
	SpinoffBasisPerShare  decimal.Decimal
	RetainedBasisPerShare decimal.Decimal
	AllocatedBasis        decimal.Decimal
	RetainedBasis         decimal.Decimal
}

// Spinoff carves allocationPercent of the lot's basis out to the spun-off
// shares; the remainder stays with the original position. Share count on
// the original position is unchanged and nothing is recognized.
func Spinoff(quantity, basisPerShare, spinoffRatio, allocationPercent decimal.Decimal) (*SpinoffResult, error) {
	if err := validateLot(quantity, basisPerShare); err != nil {
		return nil, err
	}
	if !spinoffRatio.IsPositive() {
		return nil, fmt.Errorf("spinoff ratio %s: %w", spinoffRatio, ErrInvalidRatio)
	}
	if !allocationPercent.IsPositive() || allocationPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("allocation %s%% outside (0,100]: %w", allocationPercent, ErrInvalidAllocation)
	}

	spinoffQuantity := quantity.Mul(spinoffRatio)
	totalBasis := quantity.Mul(basisPerShare)
	allocatedBasis := totalBasis.Mul(allocationPercent).Div(decimal.NewFromInt(100))
	retainedBasis := totalBasis.Sub(allocatedBasis)

	return &SpinoffResult{
		SpinoffQuantity:       spinoffQuantity,
		SpinoffBasisPerShare:  allocatedBasis.Div(spinoffQuantity),
		RetainedBasisPerShare: retainedBasis.Div(quantity),
		AllocatedBasis:        allocatedBasis,
		RetainedBasis:         retainedBasis,
	}, nil
}

// ApplyMergerBatch applies a stock-for-stock, cash, or mixed merger action
// to every affected lot in FIFO order.
func ApplyMergerBatch(action domain.CorporateAction, txs []domain.Transaction) ([]domain.Adjustment, error) {
	adjustments := make([]domain.Adjustment, 0, len(txs))
	for i, tx := range sortByPurchaseDate(txs) {
		tx := tx

		var result *MergerResult
		var err error
		switch action.Kind {
		case domain.ActionStockMerger:
			result, err = StockForStockMerger(tx.Quantity, tx.Price, action.ExchangeRatio)
		case domain.ActionCashMerger:
			result, err = CashMerger(tx.Quantity, tx.Price, action.CashPerShare)
		case domain.ActionMixedMerger:
			result, err = MixedMerger(tx.Quantity, tx.Price, action.ExchangeRatio, action.CashPerShare)
		default:
			return nil, fmt.Errorf("kind %s: %w", action.Kind, ErrWrongActionKind)
		}
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}

		adjustments = append(adjustments, domain.Adjustment{
			TransactionID:     &tx.ID,
			CorporateActionID: action.ID,
			Type:              domain.AdjustmentMerger,
			OriginalQuantity:  tx.Quantity,
			AdjustedQuantity:  result.NewQuantity,
			OriginalPrice:     tx.Price,
			AdjustedPrice:     result.NewBasisPerShare,
			GainLoss:          result.GainLoss,
			TaxEvent:          result.TaxEvent,
			NewSecurityID:     action.NewSecurityID,
			FifoLotOrder:      i + 1,
			Reason:            mergerReason(action),
		})
	}
	return adjustments, nil
}

// ApplySpinoffBatch emits two adjustments per lot: one reducing the
// original position's basis, one creating the brand-new position for the
// spun-off security (nil transaction id, carrying the new security
// reference).
func ApplySpinoffBatch(action domain.CorporateAction, txs []domain.Transaction) ([]domain.Adjustment, error) {
	if action.Kind != domain.ActionSpinoff {
		return nil, fmt.Errorf("kind %s: %w", action.Kind, ErrWrongActionKind)
	}

	adjustments := make([]domain.Adjustment, 0, 2*len(txs))
	for i, tx := range sortByPurchaseDate(txs) {
		tx := tx
		result, err := Spinoff(tx.Quantity, tx.Price, action.SpinoffRatio, action.AllocationPercent)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}

		reason := fmt.Sprintf("spinoff effective %s, %s%% of basis allocated to new security",
			action.EffectiveDate.Format("2006-01-02"), action.AllocationPercent)

		adjustments = append(adjustments, domain.Adjustment{
			TransactionID:     &tx.ID,
			CorporateActionID: action.ID,
			Type:              domain.AdjustmentSpinoff,
			OriginalQuantity:  tx.Quantity,
			AdjustedQuantity:  tx.Quantity,
			OriginalPrice:     tx.Price,
			AdjustedPrice:     result.RetainedBasisPerShare,
			GainLoss:          decimal.Zero,
			TaxEvent:          false,
			FifoLotOrder:      i + 1,
			Reason:            reason,
		})
		adjustments = append(adjustments, domain.Adjustment{
			TransactionID:     nil,
			CorporateActionID: action.ID,
			Type:              domain.AdjustmentNewPosition,
			OriginalQuantity:  decimal.Zero,
			AdjustedQuantity:  result.SpinoffQuantity,
			OriginalPrice:     decimal.Zero,
			AdjustedPrice:     result.SpinoffBasisPerShare,
			GainLoss:          decimal.Zero,
			TaxEvent:          false,
			NewSecurityID:     action.NewSecurityID,
			FifoLotOrder:      i + 1,
			Reason:            reason,
		})
	}
	return adjustments, nil
}

func mergerReason(action domain.CorporateAction) string {
	switch action.Kind {
	case domain.ActionStockMerger:
		return fmt.Sprintf("stock-for-stock merger at %s effective %s",
			action.ExchangeRatio, action.EffectiveDate.Format("2006-01-02"))
	case domain.ActionCashMerger:
		return fmt.Sprintf("cash merger at %s/share effective %s",
			action.CashPerShare, action.EffectiveDate.Format("2006-01-02"))
	default:
		return fmt.Sprintf("mixed merger at %s plus %s/share cash effective %s",
			action.ExchangeRatio, action.CashPerShare, action.EffectiveDate.Format("2006-01-02"))
	}
}

func validateLot(quantity, basisPerShare decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("quantity %s: %w", quantity, ErrInvalidQuantity)
	}
	if !basisPerShare.IsPositive() {
		return fmt.Errorf("basis per share %s: %w", basisPerShare, ErrInvalidPrice)
	}
	return nil
}
