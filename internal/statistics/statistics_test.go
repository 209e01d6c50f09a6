package statistics

import (
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"quantengine/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decimals(raw ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(raw))
	for _, s := range raw {
		out = append(out, dec(s))
	}
	return out
}

func floats(xs []decimal.Decimal) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		out = append(out, x.InexactFloat64())
	}
	return out
}

func Test_Mean(t *testing.T) {
	t.Run("exact decimal mean", func(t *testing.T) {
		mean, err := Mean(decimals("0.05", "0.03", "0.07", "0.02", "0.06"))
		require.NoError(t, err)
		require.True(t, mean.Equal(dec("0.046")), "got %s", mean)
	})

	t.Run("empty series", func(t *testing.T) {
		_, err := Mean(nil)
		require.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}

func Test_SampleVariance(t *testing.T) {
	t.Run("matches float oracle", func(t *testing.T) {
		xs := decimals("0.05", "0.03", "0.07", "0.02", "0.06")
		variance, err := SampleVariance(xs)
		require.NoError(t, err)

		want, err := stats.SampleVariance(floats(xs))
		require.NoError(t, err)
		require.InDelta(t, want, variance.InexactFloat64(), 1e-12)
	})

	t.Run("flat series has zero variance", func(t *testing.T) {
		variance, err := SampleVariance(decimals("0.01", "0.01", "0.01"))
		require.NoError(t, err)
		require.True(t, variance.IsZero())
	})

	t.Run("single point", func(t *testing.T) {
		_, err := SampleVariance(decimals("0.01"))
		require.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}

func Test_SampleStdDev(t *testing.T) {
	xs := decimals("0.05", "0.03", "0.07", "0.02", "0.06")
	stdDev, err := SampleStdDev(xs)
	require.NoError(t, err)

	want, err := stats.StandardDeviationSample(floats(xs))
	require.NoError(t, err)
	require.InDelta(t, want, stdDev.InexactFloat64(), 1e-7)
}

func Test_DownsideDeviation(t *testing.T) {
	t.Run("only shortfalls contribute, full denominator", func(t *testing.T) {
		// squares: 0.0004 + 0.0016 = 0.002, over n-1 = 3
		out, err := DownsideDeviation(decimals("0.05", "-0.02", "0.03", "-0.04"), decimal.Zero)
		require.NoError(t, err)
		require.InDelta(t, 0.02581989, out.InexactFloat64(), 1e-6)
	})

	t.Run("no returns below target", func(t *testing.T) {
		out, err := DownsideDeviation(decimals("0.05", "0.03", "0.02"), decimal.Zero)
		require.NoError(t, err)
		require.True(t, out.IsZero())
	})

	t.Run("return equal to target is not downside", func(t *testing.T) {
		out, err := DownsideDeviation(decimals("0", "0.01", "0.02"), decimal.Zero)
		require.NoError(t, err)
		require.True(t, out.IsZero())
	})

	t.Run("single point", func(t *testing.T) {
		_, err := DownsideDeviation(decimals("-0.01"), decimal.Zero)
		require.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}

func Test_SampleCovariance(t *testing.T) {
	t.Run("matches float oracle", func(t *testing.T) {
		xs := decimals("0.05", "0.03", "0.07", "0.02", "0.06")
		ys := decimals("0.04", "0.01", "0.06", "0.03", "0.05")
		cov, err := SampleCovariance(xs, ys)
		require.NoError(t, err)

		want, err := stats.Covariance(floats(xs), floats(ys))
		require.NoError(t, err)
		require.InDelta(t, want, cov.InexactFloat64(), 1e-12)
	})

	t.Run("covariance with self is variance", func(t *testing.T) {
		xs := decimals("0.05", "0.03", "0.07")
		cov, err := SampleCovariance(xs, xs)
		require.NoError(t, err)
		variance, err := SampleVariance(xs)
		require.NoError(t, err)
		require.True(t, cov.Equal(variance))
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		_, err := SampleCovariance(decimals("0.01", "0.02"), decimals("0.01"))
		require.ErrorIs(t, err, domain.ErrMismatchedDataLengths)
	})
}

func Test_GeometricMeanReturn(t *testing.T) {
	t.Run("constant growth", func(t *testing.T) {
		out, err := GeometricMeanReturn(decimals("0.1", "0.1"))
		require.NoError(t, err)
		require.InDelta(t, 0.1, out.InexactFloat64(), 1e-6)
	})

	t.Run("total wipeout", func(t *testing.T) {
		out, err := GeometricMeanReturn(decimals("0.5", "-1"))
		require.NoError(t, err)
		require.True(t, out.Equal(decimal.NewFromInt(-1)))
	})

	t.Run("empty series", func(t *testing.T) {
		_, err := GeometricMeanReturn(nil)
		require.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}

func Test_AnnualizedReturn(t *testing.T) {
	// quarterly grain: (1.1)^4 - 1
	out, err := AnnualizedReturn(decimals("0.1", "0.1", "0.1", "0.1"), 4)
	require.NoError(t, err)
	require.InDelta(t, 0.4641, out.InexactFloat64(), 1e-5)
}
