package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"quantengine/internal/domain"
	"quantengine/internal/statistics"
)

const covariancePlaces = 8

type BetaResult struct {
	Beta              decimal.Decimal
	Covariance        decimal.Decimal
	MarketVariance    decimal.Decimal
	PortfolioVariance decimal.Decimal
	PortfolioMean     decimal.Decimal
	MarketMean        decimal.Decimal
}

// Beta computes the systematic risk coefficient of a portfolio against a
// market benchmark: covariance over market variance. A flat market leaves
// beta undefined, which is reported as ErrZeroMarketVariance rather than
// silently returned as 0.
func Beta(portfolioReturns, marketReturns domain.ReturnSeries) (*BetaResult, error) {
	if len(portfolioReturns) != len(marketReturns) {
		return nil, fmt.Errorf("%d portfolio vs %d market periods: %w",
			len(portfolioReturns), len(marketReturns), domain.ErrMismatchedReturnPeriods)
	}
	if err := portfolioReturns.Validate(); err != nil {
		return nil, err
	}

	covariance, err := statistics.SampleCovariance(portfolioReturns, marketReturns)
	if err != nil {
		return nil, err
	}
	marketVariance, err := statistics.SampleVariance(marketReturns)
	if err != nil {
		return nil, err
	}
	if marketVariance.IsZero() {
		return nil, fmt.Errorf("beta undefined for flat market: %w", domain.ErrZeroMarketVariance)
	}
	portfolioVariance, err := statistics.SampleVariance(portfolioReturns)
	if err != nil {
		return nil, err
	}
	portfolioMean, err := statistics.Mean(portfolioReturns)
	if err != nil {
		return nil, err
	}
	marketMean, err := statistics.Mean(marketReturns)
	if err != nil {
		return nil, err
	}

	return &BetaResult{
		Beta:              covariance.Div(marketVariance).Round(statPlaces),
		Covariance:        covariance.Round(covariancePlaces),
		MarketVariance:    marketVariance.Round(covariancePlaces),
		PortfolioVariance: portfolioVariance.Round(covariancePlaces),
		PortfolioMean:     portfolioMean.Round(statPlaces),
		MarketMean:        marketMean.Round(statPlaces),
	}, nil
}
