package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"quantengine/internal/decmath"
	"quantengine/internal/domain"
	"quantengine/internal/statistics"
)

var negativeOne = decimal.NewFromInt(-1)

// Correlation computes the Pearson coefficient of two equal-length return
// series. Identical series short-circuit to exactly 1 before any division
// can shave precision, and the result is clamped into [-1,1] to absorb
// rounding drift from the iterative square root.
func Correlation(xs, ys domain.ReturnSeries) (decimal.Decimal, error) {
	if len(xs) != len(ys) {
		return decimal.Zero, fmt.Errorf("%d vs %d points: %w", len(xs), len(ys), domain.ErrMismatchedLengths)
	}
	if err := xs.Validate(); err != nil {
		return decimal.Zero, err
	}

	if seriesEqual(xs, ys) {
		return one, nil
	}

	sumXY, sumXX, sumYY, err := deviationProducts(xs, ys)
	if err != nil {
		return decimal.Zero, err
	}
	if sumXX.IsZero() || sumYY.IsZero() {
		return decimal.Zero, fmt.Errorf("correlation undefined for flat series: %w", domain.ErrZeroVariance)
	}

	denominator, err := decmath.Sqrt(sumXX.Mul(sumYY))
	if err != nil {
		return decimal.Zero, err
	}

	r := sumXY.Div(denominator)
	if r.GreaterThan(one) {
		r = one
	} else if r.LessThan(negativeOne) {
		r = negativeOne
	}
	return r.Round(statPlaces), nil
}

// Covariance is the pairwise sample covariance. Unlike correlation, a
// zero-variance series is a legitimate input here: its covariance against
// anything is simply 0.
func Covariance(xs, ys domain.ReturnSeries) (decimal.Decimal, error) {
	if len(xs) != len(ys) {
		return decimal.Zero, fmt.Errorf("%d vs %d points: %w", len(xs), len(ys), domain.ErrMismatchedLengths)
	}
	cov, err := statistics.SampleCovariance(xs, ys)
	if err != nil {
		return decimal.Zero, err
	}
	return cov.Round(covariancePlaces), nil
}

// CorrelationMatrix builds the symmetric M x M Pearson matrix for M return
// series of equal length. Only the upper triangle is computed; the lower is
// mirrored, and the diagonal is exactly 1. Any flat series fails the whole
// matrix with ErrZeroVariance.
func CorrelationMatrix(series []domain.ReturnSeries) ([][]decimal.Decimal, error) {
	if err := validateMatrixInput(series); err != nil {
		return nil, err
	}

	n := len(series)
	matrix := newSquareMatrix(n)
	for i := 0; i < n; i++ {
		matrix[i][i] = one
		for j := i + 1; j < n; j++ {
			r, err := Correlation(series[i], series[j])
			if err != nil {
				return nil, fmt.Errorf("assets %d/%d: %w", i, j, err)
			}
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return matrix, nil
}

// CovarianceMatrix builds the symmetric M x M sample covariance matrix. The
// diagonal holds each asset's own variance; flat series are allowed.
func CovarianceMatrix(series []domain.ReturnSeries) ([][]decimal.Decimal, error) {
	if err := validateMatrixInput(series); err != nil {
		return nil, err
	}

	n := len(series)
	matrix := newSquareMatrix(n)
	for i := 0; i < n; i++ {
		variance, err := statistics.SampleVariance(series[i])
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		matrix[i][i] = variance.Round(covariancePlaces)
		for j := i + 1; j < n; j++ {
			cov, err := Covariance(series[i], series[j])
			if err != nil {
				return nil, fmt.Errorf("assets %d/%d: %w", i, j, err)
			}
			matrix[i][j] = cov
			matrix[j][i] = cov
		}
	}
	return matrix, nil
}

// RollingCorrelation slides a fixed window across two equal-length series,
// producing len-window+1 correlation values.
func RollingCorrelation(xs, ys domain.ReturnSeries, window int) ([]decimal.Decimal, error) {
	if window < 2 {
		return nil, fmt.Errorf("window %d: %w", window, domain.ErrInvalidWindowSize)
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%d vs %d points: %w", len(xs), len(ys), domain.ErrMismatchedLengths)
	}
	if window > len(xs) {
		return nil, fmt.Errorf("window %d over %d points: %w", window, len(xs), domain.ErrWindowTooLarge)
	}

	out := make([]decimal.Decimal, 0, len(xs)-window+1)
	for start := 0; start+window <= len(xs); start++ {
		r, err := Correlation(xs[start:start+window], ys[start:start+window])
		if err != nil {
			return nil, fmt.Errorf("window starting at %d: %w", start, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func validateMatrixInput(series []domain.ReturnSeries) error {
	if len(series) == 0 {
		return fmt.Errorf("no return series given: %w", domain.ErrNoAssets)
	}
	if len(series) == 1 {
		return fmt.Errorf("matrix needs at least 2 assets: %w", domain.ErrInsufficientAssets)
	}
	length := len(series[0])
	for i, s := range series {
		if len(s) != length {
			return fmt.Errorf("asset %d has %d points, asset 0 has %d: %w", i, len(s), length, domain.ErrMismatchedLengths)
		}
	}
	if length < 2 {
		return fmt.Errorf("series of %d points: %w", length, domain.ErrInsufficientData)
	}
	return nil
}

func newSquareMatrix(n int) [][]decimal.Decimal {
	matrix := make([][]decimal.Decimal, n)
	for i := range matrix {
		matrix[i] = make([]decimal.Decimal, n)
	}
	return matrix
}

func deviationProducts(xs, ys []decimal.Decimal) (sumXY, sumXX, sumYY decimal.Decimal, err error) {
	meanX, err := statistics.Mean(xs)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	meanY, err := statistics.Mean(ys)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	for i := range xs {
		dx := xs[i].Sub(meanX)
		dy := ys[i].Sub(meanY)
		sumXY = sumXY.Add(dx.Mul(dy))
		sumXX = sumXX.Add(dx.Mul(dx))
		sumYY = sumYY.Add(dy.Mul(dy))
	}
	return sumXY, sumXX, sumYY, nil
}

func seriesEqual(xs, ys []decimal.Decimal) bool {
	for i := range xs {
		if !xs[i].Equal(ys[i]) {
			return false
		}
	}
	return true
}
