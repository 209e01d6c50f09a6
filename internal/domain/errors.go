package domain

import "errors"

// Calculation errors are sentinel values so callers can branch with
// errors.Is instead of string matching. Calculators wrap these with
// fmt.Errorf("...: %w", err) to attach detail.
var (
	ErrInsufficientData        = errors.New("insufficient data")
	ErrInvalidReturnFormat     = errors.New("invalid return format")
	ErrInvalidValueFormat      = errors.New("invalid value format")
	ErrMismatchedReturnPeriods = errors.New("mismatched return periods")
	ErrMismatchedDataLengths   = errors.New("mismatched data lengths")
	ErrInvalidRiskFreeRate     = errors.New("invalid risk free rate")
	ErrInvalidConfidenceLevel  = errors.New("invalid confidence level")
	ErrInvalidPortfolioValue   = errors.New("invalid portfolio value")
	ErrInvalidThreshold        = errors.New("invalid threshold")
	ErrNonPositiveValues       = errors.New("non-positive values")
	ErrZeroMarketVariance      = errors.New("zero market variance")
	ErrZeroVariance            = errors.New("zero variance")
	ErrNoAssets                = errors.New("no assets")
	ErrInsufficientAssets      = errors.New("insufficient assets")
	ErrMismatchedLengths       = errors.New("mismatched lengths")
	ErrInvalidWindowSize       = errors.New("invalid window size")
	ErrWindowTooLarge          = errors.New("window too large")
)
