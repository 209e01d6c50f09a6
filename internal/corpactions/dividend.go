package corpactions

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"quantengine/internal/domain"
)

type DividendClassification string

const (
	DividendQualified       DividendClassification = "qualified"
	DividendOrdinary        DividendClassification = "ordinary"
	DividendReturnOfCapital DividendClassification = "return_of_capital"
)

// Minimum holding period (ex-date minus purchase date) for a dividend the
// issuer marked qualified to actually receive qualified treatment.
const qualifiedHoldingDays = 61

// WithholdingRates configures the estimated withholding per classification.
type WithholdingRates struct {
	Qualified       decimal.Decimal
	Ordinary        decimal.Decimal
	ReturnOfCapital decimal.Decimal
}

// DefaultWithholdingRates mirror US federal defaults: 15% qualified, 24%
// ordinary backup withholding, none on return of capital.
func DefaultWithholdingRates() WithholdingRates {
	return WithholdingRates{
		Qualified:       decimal.RequireFromString("0.15"),
		Ordinary:        decimal.RequireFromString("0.24"),
		ReturnOfCapital: decimal.Zero,
	}
}

type DividendInput struct {
	Shares           decimal.Decimal
	DividendPerShare decimal.Decimal
	RoundToPenny     bool

	// Issuer-declared treatment.
	Qualified       bool
	ReturnOfCapital bool

	ExDate       time.Time
	PurchaseDate time.Time
}

type DividendResult struct {
	TotalDividend  decimal.Decimal
	Classification DividendClassification
	Withholding    decimal.Decimal
	HoldingDays    int
}

// CashDividend computes the total payout for one lot and classifies it for
// tax purposes. Qualified treatment requires both the issuer's declaration
// and the 61-day holding period; everything else is ordinary income, except
// return-of-capital distributions, which reduce basis instead.
func CashDividend(in DividendInput, rates WithholdingRates) (*DividendResult, error) {
	if !in.Shares.IsPositive() {
		return nil, fmt.Errorf("shares %s: %w", in.Shares, ErrInvalidQuantity)
	}
	if in.DividendPerShare.IsNegative() {
		return nil, fmt.Errorf("dividend per share %s: %w", in.DividendPerShare, ErrInvalidDividend)
	}

	total := in.Shares.Mul(in.DividendPerShare)
	if in.RoundToPenny {
		total = total.Round(2)
	}

	holdingDays := int(in.ExDate.Sub(in.PurchaseDate).Hours() / 24)

	classification := DividendOrdinary
	rate := rates.Ordinary
	switch {
	case in.ReturnOfCapital:
		classification = DividendReturnOfCapital
		rate = rates.ReturnOfCapital
	case in.Qualified && holdingDays >= qualifiedHoldingDays:
		classification = DividendQualified
		rate = rates.Qualified
	}

	return &DividendResult{
		TotalDividend:  total,
		Classification: classification,
		Withholding:    total.Mul(rate).Round(2),
		HoldingDays:    holdingDays,
	}, nil
}

// ApplyDividendBatch computes the dividend for every lot holding the stock
// on the ex-date, in FIFO order. Quantity and basis are unchanged; the
// taxable amount rides in GainLoss.
func ApplyDividendBatch(action domain.CorporateAction, txs []domain.Transaction, rates WithholdingRates) ([]domain.Adjustment, error) {
	if action.Kind != domain.ActionCashDividend {
		return nil, fmt.Errorf("kind %s: %w", action.Kind, ErrWrongActionKind)
	}

	adjustments := make([]domain.Adjustment, 0, len(txs))
	for i, tx := range sortByPurchaseDate(txs) {
		tx := tx
		result, err := CashDividend(DividendInput{
			Shares:           tx.Quantity,
			DividendPerShare: action.DividendPerShare,
			RoundToPenny:     true,
			Qualified:        action.Qualified,
			ReturnOfCapital:  action.ReturnOfCapital,
			ExDate:           action.EffectiveDate,
			PurchaseDate:     tx.PurchaseDate,
		}, rates)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}

		adjustments = append(adjustments, domain.Adjustment{
			TransactionID:     &tx.ID,
			CorporateActionID: action.ID,
			Type:              domain.AdjustmentDividend,
			OriginalQuantity:  tx.Quantity,
			AdjustedQuantity:  tx.Quantity,
			OriginalPrice:     tx.Price,
			AdjustedPrice:     tx.Price,
			GainLoss:          result.TotalDividend,
			TaxEvent:          result.Classification != DividendReturnOfCapital,
			FifoLotOrder:      i + 1,
			Reason: fmt.Sprintf("%s cash dividend of %s/share, ex-date %s",
				result.Classification, action.DividendPerShare, action.EffectiveDate.Format("2006-01-02")),
		})
	}
	return adjustments, nil
}
