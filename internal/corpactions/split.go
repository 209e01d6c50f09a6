package corpactions

import (
	"fmt"

	"github.com/shopspring/decimal"

	"quantengine/internal/domain"
)

type SplitResult struct {
	SplitFactor decimal.Decimal
	NewQuantity decimal.Decimal
	NewPrice    decimal.Decimal
}

// ApplySplit adjusts one lot for a from:to stock split. The new price is
// derived from the conserved total cost rather than divided independently,
// so quantity x price stays exactly equal before and after.
func ApplySplit(quantity, price, ratioFrom, ratioTo decimal.Decimal) (*SplitResult, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("quantity %s: %w", quantity, ErrInvalidQuantity)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("price %s: %w", price, ErrInvalidPrice)
	}
	if !ratioFrom.IsPositive() || !ratioTo.IsPositive() {
		return nil, fmt.Errorf("split ratio %s:%s: %w", ratioFrom, ratioTo, ErrInvalidRatio)
	}

	splitFactor := ratioTo.Div(ratioFrom)
	newQuantity := quantity.Mul(ratioTo).Div(ratioFrom)
	newPrice := quantity.Mul(price).Div(newQuantity)

	return &SplitResult{
		SplitFactor: splitFactor,
		NewQuantity: newQuantity,
		NewPrice:    newPrice,
	}, nil
}

// ApplySplitBatch applies a stock split action to every affected lot,
// stamping FIFO lot order by purchase date.
func ApplySplitBatch(action domain.CorporateAction, txs []domain.Transaction) ([]domain.Adjustment, error) {
	if action.Kind != domain.ActionStockSplit {
		return nil, fmt.Errorf("kind %s: %w", action.Kind, ErrWrongActionKind)
	}

	adjustments := make([]domain.Adjustment, 0, len(txs))
	for i, tx := range sortByPurchaseDate(txs) {
		tx := tx
		result, err := ApplySplit(tx.Quantity, tx.Price, action.SplitFrom, action.SplitTo)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		adjustments = append(adjustments, domain.Adjustment{
			TransactionID:     &tx.ID,
			CorporateActionID: action.ID,
			Type:              domain.AdjustmentSplit,
			OriginalQuantity:  tx.Quantity,
			AdjustedQuantity:  result.NewQuantity,
			OriginalPrice:     tx.Price,
			AdjustedPrice:     result.NewPrice,
			GainLoss:          decimal.Zero,
			TaxEvent:          false,
			FifoLotOrder:      i + 1,
			Reason: fmt.Sprintf("%s:%s stock split effective %s",
				action.SplitFrom, action.SplitTo, action.EffectiveDate.Format("2006-01-02")),
		})
	}
	return adjustments, nil
}
