package calculator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quantengine/internal/domain"
)

func Test_Drawdown(t *testing.T) {
	t.Run("peak to trough scenario", func(t *testing.T) {
		out, err := Drawdown(values("100000", "120000", "80000", "110000"))
		require.NoError(t, err)

		require.True(t, out.MaxDrawdown.Equal(dec("0.3333")), "got %s", out.MaxDrawdown)
		require.Equal(t, 1, out.PeakIndex)
		require.Equal(t, 2, out.TroughIndex)
		require.True(t, out.PeakValue.Equal(dec("120000")))
		require.True(t, out.TroughValue.Equal(dec("80000")))
		require.Equal(t, 2, out.UnderwaterPeriods)
		// 110000 never regained the 120000 peak
		require.Nil(t, out.RecoveryPeriods)
		require.True(t, out.CurrentDrawdown.Equal(dec("0.0833")), "got %s", out.CurrentDrawdown)
	})

	t.Run("recovered drawdown counts periods from trough", func(t *testing.T) {
		out, err := Drawdown(values("100", "120", "80", "125"))
		require.NoError(t, err)

		require.NotNil(t, out.RecoveryPeriods)
		require.Equal(t, 1, *out.RecoveryPeriods)
		require.True(t, out.CurrentDrawdown.IsZero())
	})

	t.Run("non-decreasing series reports zeros", func(t *testing.T) {
		out, err := Drawdown(values("100", "110", "110", "120"))
		require.NoError(t, err)

		require.True(t, out.MaxDrawdown.IsZero())
		require.True(t, out.CurrentDrawdown.IsZero())
		require.NotNil(t, out.RecoveryPeriods)
		require.Equal(t, 0, *out.RecoveryPeriods)
	})

	t.Run("insufficient data", func(t *testing.T) {
		_, err := Drawdown(values("100"))
		require.ErrorIs(t, err, domain.ErrInsufficientData)
	})

	t.Run("non-positive values", func(t *testing.T) {
		_, err := Drawdown(values("100", "-5", "50"))
		require.ErrorIs(t, err, domain.ErrNonPositiveValues)
	})

	t.Run("idempotent over the same input", func(t *testing.T) {
		series := values("100000", "120000", "80000", "110000")
		first, err := Drawdown(series)
		require.NoError(t, err)
		second, err := Drawdown(series)
		require.NoError(t, err)
		require.Equal(t, first.MaxDrawdown.String(), second.MaxDrawdown.String())
		require.Equal(t, first.UnderwaterPeriods, second.UnderwaterPeriods)
	})
}

func Test_DrawdownHistory(t *testing.T) {
	t.Run("recovered episode", func(t *testing.T) {
		out, err := DrawdownHistory(
			values("100", "95", "100", "80", "70", "101", "99"),
			dec("0.1"),
		)
		require.NoError(t, err)
		require.Len(t, out, 1)

		episode := out[0]
		require.Equal(t, 2, episode.PeakIndex)
		require.Equal(t, 4, episode.TroughIndex)
		require.NotNil(t, episode.RecoveryIndex)
		require.Equal(t, 5, *episode.RecoveryIndex)
		require.True(t, episode.Drawdown.Equal(dec("0.3")), "got %s", episode.Drawdown)
		require.Equal(t, 3, episode.Duration)
	})

	t.Run("open episode has nil recovery", func(t *testing.T) {
		out, err := DrawdownHistory(values("100", "50"), dec("0.1"))
		require.NoError(t, err)
		require.Len(t, out, 1)

		episode := out[0]
		require.Nil(t, episode.RecoveryIndex)
		require.Equal(t, 1, episode.TroughIndex)
		require.True(t, episode.Drawdown.Equal(dec("0.5")))
	})

	t.Run("shallow dips below threshold are ignored", func(t *testing.T) {
		out, err := DrawdownHistory(values("100", "95", "100", "96", "101"), dec("0.1"))
		require.NoError(t, err)
		require.Empty(t, out)
	})

	t.Run("threshold must be in (0,1)", func(t *testing.T) {
		_, err := DrawdownHistory(values("100", "50"), dec("0"))
		require.ErrorIs(t, err, domain.ErrInvalidThreshold)

		_, err = DrawdownHistory(values("100", "50"), dec("1"))
		require.ErrorIs(t, err, domain.ErrInvalidThreshold)
	})
}
