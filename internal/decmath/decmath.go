// Package decmath supplies the root and power routines the calculators need
// on top of shopspring/decimal. A native float64 sqrt would throw away the
// exactness the rest of the engine is built on, so roots are computed with
// Newton's method directly on decimals.
package decmath

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeInput = errors.New("negative input")
	ErrInvalidDegree = errors.New("invalid root degree")
)

// convergence threshold for Newton iterations
var epsilon = decimal.New(1, -7)

const maxIterations = 50

var (
	two = decimal.NewFromInt(2)
)

// Sqrt computes the square root of d by Newton's method, iterating until
// successive guesses differ by less than 1e-7.
func Sqrt(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("sqrt of %s: %w", d, ErrNegativeInput)
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}

	guess := d.Div(two)
	if guess.IsZero() {
		guess = d
	}
	for i := 0; i < maxIterations; i++ {
		next := guess.Add(d.Div(guess)).Div(two)
		if next.Sub(guess).Abs().LessThan(epsilon) {
			return next, nil
		}
		guess = next
	}
	return guess, nil
}

// NthRoot computes d^(1/n) for positive d and n >= 1, again by Newton's
// method. Inputs here are compounded growth factors, which sit near 1 and
// converge quickly.
func NthRoot(d decimal.Decimal, n int64) (decimal.Decimal, error) {
	if n < 1 {
		return decimal.Zero, fmt.Errorf("degree %d: %w", n, ErrInvalidDegree)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("nth root of %s: %w", d, ErrNegativeInput)
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	if n == 1 {
		return d, nil
	}
	if n == 2 {
		return Sqrt(d)
	}

	degree := decimal.NewFromInt(n)
	nMinusOne := decimal.NewFromInt(n - 1)

	guess := decimal.NewFromInt(1).Add(d.Sub(decimal.NewFromInt(1)).Div(degree))
	if !guess.IsPositive() {
		guess = d
	}
	for i := 0; i < maxIterations; i++ {
		// x' = ((n-1)x + d/x^(n-1)) / n
		next := nMinusOne.Mul(guess).Add(d.Div(PowInt(guess, n-1))).Div(degree)
		if next.Sub(guess).Abs().LessThan(epsilon) {
			return next, nil
		}
		guess = next
	}
	return guess, nil
}

// Intermediate products are trimmed to this many decimal places so that
// repeated squaring does not balloon the mantissa. 32 places is well past
// every rounding precision the calculators emit.
const powScale = 32

// PowInt raises d to a non-negative integer power by repeated squaring.
func PowInt(d decimal.Decimal, n int64) decimal.Decimal {
	result := decimal.NewFromInt(1)
	base := d
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Truncate(powScale)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base).Truncate(powScale)
		}
	}
	return result
}
