// Package statistics holds the shared decimal primitives every ratio
// calculator is built on: means, sample moments, and compounded returns.
// All denominators use Bessel's correction (n-1) unless noted.
package statistics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"quantengine/internal/decmath"
	"quantengine/internal/domain"
)

var one = decimal.NewFromInt(1)

// Mean returns the arithmetic mean of xs.
func Mean(xs []decimal.Decimal) (decimal.Decimal, error) {
	if len(xs) == 0 {
		return decimal.Zero, fmt.Errorf("mean of empty series: %w", domain.ErrInsufficientData)
	}
	sum := decimal.Zero
	for _, x := range xs {
		sum = sum.Add(x)
	}
	return sum.Div(decimal.NewFromInt(int64(len(xs)))), nil
}

// SampleVariance returns the variance of xs with an n-1 denominator.
func SampleVariance(xs []decimal.Decimal) (decimal.Decimal, error) {
	if len(xs) < 2 {
		return decimal.Zero, fmt.Errorf("variance needs at least 2 points, got %d: %w", len(xs), domain.ErrInsufficientData)
	}
	mean, err := Mean(xs)
	if err != nil {
		return decimal.Zero, err
	}
	sumSquares := decimal.Zero
	for _, x := range xs {
		d := x.Sub(mean)
		sumSquares = sumSquares.Add(d.Mul(d))
	}
	return sumSquares.Div(decimal.NewFromInt(int64(len(xs) - 1))), nil
}

// SampleStdDev returns the sample standard deviation of xs.
func SampleStdDev(xs []decimal.Decimal) (decimal.Decimal, error) {
	variance, err := SampleVariance(xs)
	if err != nil {
		return decimal.Zero, err
	}
	return decmath.Sqrt(variance)
}

// DownsideDeviation is the standard deviation of shortfalls below target.
// Only returns strictly below target contribute to the sum, but the
// denominator stays the full sample count so sparse bad periods are not
// overweighted. Zero when no return falls below target.
func DownsideDeviation(returns []decimal.Decimal, target decimal.Decimal) (decimal.Decimal, error) {
	if len(returns) < 2 {
		return decimal.Zero, fmt.Errorf("downside deviation needs at least 2 points, got %d: %w", len(returns), domain.ErrInsufficientData)
	}
	sumSquares := decimal.Zero
	downside := 0
	for _, r := range returns {
		if r.LessThan(target) {
			d := r.Sub(target)
			sumSquares = sumSquares.Add(d.Mul(d))
			downside++
		}
	}
	if downside == 0 {
		return decimal.Zero, nil
	}
	return decmath.Sqrt(sumSquares.Div(decimal.NewFromInt(int64(len(returns) - 1))))
}

// SampleCovariance returns the covariance of two equal-length series with an
// n-1 denominator, using each series' own mean.
func SampleCovariance(xs, ys []decimal.Decimal) (decimal.Decimal, error) {
	if len(xs) != len(ys) {
		return decimal.Zero, fmt.Errorf("series of %d vs %d points: %w", len(xs), len(ys), domain.ErrMismatchedDataLengths)
	}
	if len(xs) < 2 {
		return decimal.Zero, fmt.Errorf("covariance needs at least 2 points, got %d: %w", len(xs), domain.ErrInsufficientData)
	}
	meanX, err := Mean(xs)
	if err != nil {
		return decimal.Zero, err
	}
	meanY, err := Mean(ys)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for i := range xs {
		sum = sum.Add(xs[i].Sub(meanX).Mul(ys[i].Sub(meanY)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(xs) - 1))), nil
}

// GeometricMeanReturn compounds the full series and takes the nth root:
// (prod(1+r))^(1/n) - 1.
func GeometricMeanReturn(returns []decimal.Decimal) (decimal.Decimal, error) {
	if len(returns) == 0 {
		return decimal.Zero, fmt.Errorf("geometric mean of empty series: %w", domain.ErrInsufficientData)
	}
	product := one
	for _, r := range returns {
		growth := one.Add(r)
		if !growth.IsPositive() {
			// a -100% (or worse) period wipes out the compounded value
			return decimal.NewFromInt(-1), nil
		}
		product = product.Mul(growth).Truncate(32)
	}
	root, err := decmath.NthRoot(product, int64(len(returns)))
	if err != nil {
		return decimal.Zero, err
	}
	return root.Sub(one), nil
}

// AnnualizedReturn compounds the geometric mean return over periodsPerYear
// periods: (1+g)^periodsPerYear - 1.
func AnnualizedReturn(returns []decimal.Decimal, periodsPerYear int64) (decimal.Decimal, error) {
	geoMean, err := GeometricMeanReturn(returns)
	if err != nil {
		return decimal.Zero, err
	}
	return decmath.PowInt(one.Add(geoMean), periodsPerYear).Sub(one), nil
}
