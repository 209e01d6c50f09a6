package corpactions

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"quantengine/internal/domain"
)

func Test_StockForStockMerger(t *testing.T) {
	t.Run("basis carries forward with zero gain", func(t *testing.T) {
		out, err := StockForStockMerger(dec("100"), dec("30"), dec("0.5"))
		require.NoError(t, err)

		require.True(t, out.NewQuantity.Equal(dec("50")))
		require.True(t, out.NewBasisPerShare.Equal(dec("60")))
		require.True(t,
			out.NewQuantity.Mul(out.NewBasisPerShare).Equal(dec("100").Mul(dec("30"))),
			"basis not conserved")
		require.True(t, out.GainLoss.IsZero())
		require.False(t, out.TaxEvent)
		require.False(t, out.PositionClosed)
	})

	t.Run("invalid exchange ratio", func(t *testing.T) {
		_, err := StockForStockMerger(dec("100"), dec("30"), dec("0"))
		require.ErrorIs(t, err, ErrInvalidRatio)
	})
}

func Test_CashMerger(t *testing.T) {
	t.Run("gain is proceeds minus basis and position closes", func(t *testing.T) {
		out, err := CashMerger(dec("100"), dec("30"), dec("40"))
		require.NoError(t, err)

		require.True(t, out.CashReceived.Equal(dec("4000")))
		require.True(t, out.GainLoss.Equal(dec("1000")))
		require.True(t, out.NewQuantity.IsZero())
		require.True(t, out.TaxEvent)
		require.True(t, out.PositionClosed)
	})

	t.Run("loss is allowed", func(t *testing.T) {
		out, err := CashMerger(dec("100"), dec("30"), dec("25"))
		require.NoError(t, err)
		require.True(t, out.GainLoss.Equal(dec("-500")))
	})

	t.Run("negative cash", func(t *testing.T) {
		_, err := CashMerger(dec("100"), dec("30"), dec("-1"))
		require.ErrorIs(t, err, ErrInvalidCashAmount)
	})
}

func Test_MixedMerger(t *testing.T) {
	t.Run("cash within basis recognizes nothing", func(t *testing.T) {
		out, err := MixedMerger(dec("100"), dec("30"), dec("0.8"), dec("10"))
		require.NoError(t, err)

		require.True(t, out.NewQuantity.Equal(dec("80")))
		require.True(t, out.CashReceived.Equal(dec("1000")))
		require.True(t, out.GainLoss.IsZero())
		// 3000 basis less 1000 cash offset, spread over 80 shares
		require.True(t, out.NewBasisPerShare.Equal(dec("25")))
	})

	t.Run("cash beyond basis is recognized", func(t *testing.T) {
		out, err := MixedMerger(dec("100"), dec("30"), dec("0.8"), dec("35"))
		require.NoError(t, err)

		require.True(t, out.CashReceived.Equal(dec("3500")))
		require.True(t, out.GainLoss.Equal(dec("500")))
		require.True(t, out.NewBasisPerShare.IsZero())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := MixedMerger(dec("0"), dec("30"), dec("0.8"), dec("10"))
		require.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = MixedMerger(dec("100"), dec("30"), dec("-0.5"), dec("10"))
		require.ErrorIs(t, err, ErrInvalidRatio)
	})
}

func Test_Spinoff(t *testing.T) {
	t.Run("basis is split by allocation percentage", func(t *testing.T) {
		out, err := Spinoff(dec("100"), dec("30"), dec("0.25"), dec("20"))
		require.NoError(t, err)

		require.True(t, out.SpinoffQuantity.Equal(dec("25")))
		require.True(t, out.AllocatedBasis.Equal(dec("600")))
		require.True(t, out.RetainedBasis.Equal(dec("2400")))
		require.True(t, out.SpinoffBasisPerShare.Equal(dec("24")))
		require.True(t, out.RetainedBasisPerShare.Equal(dec("24")))
		// the two allocations always sum back to the original basis
		require.True(t, out.AllocatedBasis.Add(out.RetainedBasis).Equal(dec("3000")))
	})

	t.Run("allocation outside (0,100]", func(t *testing.T) {
		_, err := Spinoff(dec("100"), dec("30"), dec("0.25"), dec("0"))
		require.ErrorIs(t, err, ErrInvalidAllocation)

		_, err = Spinoff(dec("100"), dec("30"), dec("0.25"), dec("150"))
		require.ErrorIs(t, err, ErrInvalidAllocation)
	})
}

func Test_ApplyMergerBatch(t *testing.T) {
	t.Run("dispatches on action kind", func(t *testing.T) {
		tx := domain.Transaction{ID: uuid.New(), Quantity: dec("100"), Price: dec("30"), PurchaseDate: date(2023, 1, 15)}

		action := domain.CorporateAction{
			ID:            uuid.New(),
			Kind:          domain.ActionCashMerger,
			CashPerShare:  dec("40"),
			EffectiveDate: date(2024, 3, 1),
		}
		out, err := ApplyMergerBatch(action, []domain.Transaction{tx})
		require.NoError(t, err)
		require.Len(t, out, 1)

		require.Equal(t, domain.AdjustmentMerger, out[0].Type)
		require.True(t, out[0].AdjustedQuantity.IsZero())
		require.True(t, out[0].GainLoss.Equal(dec("1000")))
		require.True(t, out[0].TaxEvent)
		require.Equal(t, 1, out[0].FifoLotOrder)
	})

	t.Run("rejects non-merger kinds", func(t *testing.T) {
		action := domain.CorporateAction{ID: uuid.New(), Kind: domain.ActionStockSplit}
		_, err := ApplyMergerBatch(action, nil)
		require.ErrorIs(t, err, ErrWrongActionKind)
	})
}

func Test_ApplySpinoffBatch(t *testing.T) {
	newSecurity := uuid.New()
	action := domain.CorporateAction{
		ID:                uuid.New(),
		Kind:              domain.ActionSpinoff,
		SpinoffRatio:      dec("0.25"),
		AllocationPercent: dec("20"),
		EffectiveDate:     date(2024, 3, 1),
		NewSecurityID:     &newSecurity,
	}

	t.Run("emits a basis reduction and a new position per lot", func(t *testing.T) {
		older := domain.Transaction{ID: uuid.New(), Quantity: dec("100"), Price: dec("30"), PurchaseDate: date(2022, 5, 1)}
		newer := domain.Transaction{ID: uuid.New(), Quantity: dec("200"), Price: dec("35"), PurchaseDate: date(2023, 5, 1)}

		out, err := ApplySpinoffBatch(action, []domain.Transaction{newer, older})
		require.NoError(t, err)
		require.Len(t, out, 4)

		// first lot by FIFO: basis reduction then new position
		require.Equal(t, older.ID, *out[0].TransactionID)
		require.Equal(t, domain.AdjustmentSpinoff, out[0].Type)
		require.True(t, out[0].AdjustedQuantity.Equal(older.Quantity))
		require.True(t, out[0].AdjustedPrice.Equal(dec("24")))
		require.Equal(t, 1, out[0].FifoLotOrder)

		require.Nil(t, out[1].TransactionID)
		require.Equal(t, domain.AdjustmentNewPosition, out[1].Type)
		require.Equal(t, newSecurity, *out[1].NewSecurityID)
		require.True(t, out[1].AdjustedQuantity.Equal(dec("25")))
		require.Equal(t, 1, out[1].FifoLotOrder)

		require.Equal(t, newer.ID, *out[2].TransactionID)
		require.Equal(t, 2, out[2].FifoLotOrder)
		require.Nil(t, out[3].TransactionID)

		for _, adj := range out {
			require.False(t, adj.TaxEvent)
			require.True(t, adj.GainLoss.IsZero())
		}
	})

	t.Run("rejects other kinds", func(t *testing.T) {
		bad := action
		bad.Kind = domain.ActionStockMerger
		_, err := ApplySpinoffBatch(bad, nil)
		require.ErrorIs(t, err, ErrWrongActionKind)
	})
}
