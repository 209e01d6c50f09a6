// Package calculator derives portfolio risk metrics from return and value
// series. Every function is pure: plain decimal inputs in, an immutable
// result record (or a sentinel-wrapped error) out. Nothing here touches a
// database, the network, or shared state.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"quantengine/internal/domain"
	"quantengine/internal/statistics"
)

// Documented fallbacks. Callers pass these explicitly when they have no
// opinion; no calculator reads them implicitly.
var (
	DefaultRiskFreeRate      = decimal.RequireFromString("0.045")
	DefaultSortinoTarget     = decimal.Zero
	DefaultSterlingThreshold = decimal.RequireFromString("0.10")
	DefaultVaRConfidence     = decimal.RequireFromString("0.95")
)

// maxRatioSentinel stands in for an unbounded ratio (zero-drawdown Calmar
// or Sterling) so callers never see an infinity or a division error.
var maxRatioSentinel = decimal.RequireFromString("999.99")

// sterlingEpsilon guards the Sterling denominator after the threshold is
// subtracted from max drawdown.
var sterlingEpsilon = decimal.RequireFromString("0.001")

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

const (
	ratioPlaces    = 4
	statPlaces     = 6
	currencyPlaces = 2
)

type SharpeRatioResult struct {
	SharpeRatio        decimal.Decimal
	MeanReturn         decimal.Decimal
	Volatility         decimal.Decimal
	ExcessReturn       decimal.Decimal
	PeriodRiskFreeRate decimal.Decimal
	PeriodsPerYear     int64
}

// SharpeRatio computes excess return per unit of total volatility. The
// annual risk-free rate is de-annualized by the period count inferred from
// the series length. A flat series (zero volatility) yields a ratio of
// exactly 0 rather than a division error.
func SharpeRatio(returns domain.ReturnSeries, riskFreeRate decimal.Decimal) (*SharpeRatioResult, error) {
	if riskFreeRate.IsNegative() || riskFreeRate.GreaterThan(one) {
		return nil, fmt.Errorf("risk free rate %s outside [0,1]: %w", riskFreeRate, domain.ErrInvalidRiskFreeRate)
	}
	if err := returns.Validate(); err != nil {
		return nil, err
	}

	mean, err := statistics.Mean(returns)
	if err != nil {
		return nil, err
	}
	volatility, err := statistics.SampleStdDev(returns)
	if err != nil {
		return nil, err
	}

	periodsPerYear := domain.PeriodsPerYear(len(returns))
	periodRiskFree := riskFreeRate.Div(decimal.NewFromInt(periodsPerYear))
	excess := mean.Sub(periodRiskFree)

	ratio := zero
	if !volatility.IsZero() {
		ratio = excess.Div(volatility)
	}

	return &SharpeRatioResult{
		SharpeRatio:        ratio.Round(ratioPlaces),
		MeanReturn:         mean.Round(statPlaces),
		Volatility:         volatility.Round(statPlaces),
		ExcessReturn:       excess.Round(statPlaces),
		PeriodRiskFreeRate: periodRiskFree.Round(statPlaces),
		PeriodsPerYear:     periodsPerYear,
	}, nil
}

type SortinoRatioResult struct {
	SortinoRatio      decimal.Decimal
	MeanReturn        decimal.Decimal
	DownsideDeviation decimal.Decimal
	ExcessReturn      decimal.Decimal
	TargetReturn      decimal.Decimal
}

// SortinoRatio is Sharpe with only downside volatility in the denominator.
// When no return falls below target there is no downside risk to price and
// the ratio is 0.
func SortinoRatio(returns domain.ReturnSeries, targetReturn decimal.Decimal) (*SortinoRatioResult, error) {
	if err := returns.Validate(); err != nil {
		return nil, err
	}

	mean, err := statistics.Mean(returns)
	if err != nil {
		return nil, err
	}
	downside, err := statistics.DownsideDeviation(returns, targetReturn)
	if err != nil {
		return nil, err
	}

	excess := mean.Sub(targetReturn)
	ratio := zero
	if !downside.IsZero() {
		ratio = excess.Div(downside)
	}

	return &SortinoRatioResult{
		SortinoRatio:      ratio.Round(ratioPlaces),
		MeanReturn:        mean.Round(statPlaces),
		DownsideDeviation: downside.Round(statPlaces),
		ExcessReturn:      excess.Round(statPlaces),
		TargetReturn:      targetReturn,
	}, nil
}

type CalmarRatioResult struct {
	CalmarRatio      decimal.Decimal
	AnnualizedReturn decimal.Decimal
	MaxDrawdown      decimal.Decimal
	PeriodsPerYear   int64
}

// CalmarRatio divides annualized geometric return by maximum drawdown. The
// value series must be one element longer than the return series it
// produced. Zero drawdown returns the 999.99 sentinel, never an infinity.
func CalmarRatio(returns domain.ReturnSeries, values domain.ValueSeries) (*CalmarRatioResult, error) {
	if err := returns.Validate(); err != nil {
		return nil, err
	}
	if len(values) != len(returns)+1 {
		return nil, fmt.Errorf("%d values for %d returns: %w", len(values), len(returns), domain.ErrMismatchedDataLengths)
	}
	if err := values.Validate(); err != nil {
		return nil, err
	}

	periodsPerYear := domain.PeriodsPerYear(len(returns))
	annualized, err := statistics.AnnualizedReturn(returns, periodsPerYear)
	if err != nil {
		return nil, err
	}
	drawdown, err := Drawdown(values)
	if err != nil {
		return nil, err
	}

	ratio := maxRatioSentinel
	if !drawdown.MaxDrawdown.IsZero() {
		ratio = annualized.Div(drawdown.MaxDrawdown).Round(ratioPlaces)
	}

	return &CalmarRatioResult{
		CalmarRatio:      ratio,
		AnnualizedReturn: annualized.Round(statPlaces),
		MaxDrawdown:      drawdown.MaxDrawdown,
		PeriodsPerYear:   periodsPerYear,
	}, nil
}

type SterlingRatioResult struct {
	SterlingRatio    decimal.Decimal
	AnnualizedReturn decimal.Decimal
	MaxDrawdown      decimal.Decimal
	Threshold        decimal.Decimal
}

// SterlingRatio is Calmar with the drawdown reduced by a tolerance
// threshold, typically 0.10. When the adjusted drawdown dips below a small
// epsilon the sentinel is returned.
func SterlingRatio(returns domain.ReturnSeries, values domain.ValueSeries, threshold decimal.Decimal) (*SterlingRatioResult, error) {
	if threshold.IsNegative() || threshold.GreaterThan(one) {
		return nil, fmt.Errorf("threshold %s outside [0,1]: %w", threshold, domain.ErrInvalidThreshold)
	}
	if err := returns.Validate(); err != nil {
		return nil, err
	}
	if len(values) != len(returns)+1 {
		return nil, fmt.Errorf("%d values for %d returns: %w", len(values), len(returns), domain.ErrMismatchedDataLengths)
	}
	if err := values.Validate(); err != nil {
		return nil, err
	}

	periodsPerYear := domain.PeriodsPerYear(len(returns))
	annualized, err := statistics.AnnualizedReturn(returns, periodsPerYear)
	if err != nil {
		return nil, err
	}
	drawdown, err := Drawdown(values)
	if err != nil {
		return nil, err
	}

	adjusted := drawdown.MaxDrawdown.Sub(threshold)
	ratio := maxRatioSentinel
	if adjusted.GreaterThanOrEqual(sterlingEpsilon) {
		ratio = annualized.Div(adjusted).Round(ratioPlaces)
	}

	return &SterlingRatioResult{
		SterlingRatio:    ratio,
		AnnualizedReturn: annualized.Round(statPlaces),
		MaxDrawdown:      drawdown.MaxDrawdown,
		Threshold:        threshold,
	}, nil
}

type ValueAtRiskResult struct {
	VaRReturn      decimal.Decimal
	VaRAmount      decimal.Decimal
	MeanReturn     decimal.Decimal
	Volatility     decimal.Decimal
	ZScore         decimal.Decimal
	Confidence     decimal.Decimal
	PortfolioValue decimal.Decimal
}

// ValueAtRisk estimates the loss at the given confidence level with a
// parametric (variance-covariance) model: mean minus z standard deviations,
// scaled to the portfolio value.
func ValueAtRisk(returns domain.ReturnSeries, portfolioValue, confidence decimal.Decimal) (*ValueAtRiskResult, error) {
	if !portfolioValue.IsPositive() {
		return nil, fmt.Errorf("portfolio value %s: %w", portfolioValue, domain.ErrInvalidPortfolioValue)
	}
	if confidence.LessThanOrEqual(zero) || confidence.GreaterThanOrEqual(one) {
		return nil, fmt.Errorf("confidence %s outside (0,1): %w", confidence, domain.ErrInvalidConfidenceLevel)
	}
	if err := returns.Validate(); err != nil {
		return nil, err
	}

	mean, err := statistics.Mean(returns)
	if err != nil {
		return nil, err
	}
	volatility, err := statistics.SampleStdDev(returns)
	if err != nil {
		return nil, err
	}

	z := zScore(confidence)
	varReturn := mean.Sub(z.Mul(volatility))
	amount := portfolioValue.Mul(varReturn.Abs())

	return &ValueAtRiskResult{
		VaRReturn:      varReturn.Round(statPlaces),
		VaRAmount:      amount.Round(currencyPlaces),
		MeanReturn:     mean.Round(statPlaces),
		Volatility:     volatility.Round(statPlaces),
		ZScore:         z,
		Confidence:     confidence,
		PortfolioValue: portfolioValue,
	}, nil
}

var (
	z99  = decimal.RequireFromString("2.326")
	z975 = decimal.RequireFromString("1.960")
	z95  = decimal.RequireFromString("1.645")
	z90  = decimal.RequireFromString("1.282")

	conf99  = decimal.RequireFromString("0.99")
	conf975 = decimal.RequireFromString("0.975")
	conf95  = decimal.RequireFromString("0.95")
	conf90  = decimal.RequireFromString("0.90")
)

func zScore(confidence decimal.Decimal) decimal.Decimal {
	switch {
	case confidence.GreaterThanOrEqual(conf99):
		return z99
	case confidence.GreaterThanOrEqual(conf975):
		return z975
	case confidence.GreaterThanOrEqual(conf95):
		return z95
	case confidence.GreaterThanOrEqual(conf90):
		return z90
	default:
		return z95
	}
}

type InformationRatioResult struct {
	InformationRatio decimal.Decimal
	ActiveReturn     decimal.Decimal
	TrackingError    decimal.Decimal
}

// InformationRatio measures benchmark-relative performance: mean excess
// return over its own standard deviation. Series must pair up one period to
// one period. Perfect tracking (zero tracking error) yields a ratio of 0.
func InformationRatio(portfolioReturns, benchmarkReturns domain.ReturnSeries) (*InformationRatioResult, error) {
	if len(portfolioReturns) != len(benchmarkReturns) {
		return nil, fmt.Errorf("%d portfolio vs %d benchmark periods: %w",
			len(portfolioReturns), len(benchmarkReturns), domain.ErrMismatchedReturnPeriods)
	}
	if err := portfolioReturns.Validate(); err != nil {
		return nil, err
	}

	excess := make([]decimal.Decimal, len(portfolioReturns))
	for i := range portfolioReturns {
		excess[i] = portfolioReturns[i].Sub(benchmarkReturns[i])
	}

	activeReturn, err := statistics.Mean(excess)
	if err != nil {
		return nil, err
	}
	trackingError, err := statistics.SampleStdDev(excess)
	if err != nil {
		return nil, err
	}

	ratio := zero
	if !trackingError.IsZero() {
		ratio = activeReturn.Div(trackingError)
	}

	return &InformationRatioResult{
		InformationRatio: ratio.Round(ratioPlaces),
		ActiveReturn:     activeReturn.Round(statPlaces),
		TrackingError:    trackingError.Round(statPlaces),
	}, nil
}
