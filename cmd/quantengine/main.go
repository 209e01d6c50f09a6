package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"quantengine/internal/calculator"
	"quantengine/internal/domain"
	"quantengine/internal/logger"
)

func main() {
	log := logger.New()

	root := &cobra.Command{
		Use:           "quantengine",
		Short:         "Decimal-precision portfolio risk analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(metricsCommand(), correlationCommand(), betaCommand())

	if err := root.Execute(); err != nil {
		log.Errorf("command failed: %v", err)
		os.Exit(1)
	}
}

type returnRow struct {
	Return decimal.Decimal `csv:"return"`
}

type valueRow struct {
	Value decimal.Decimal `csv:"value"`
}

func metricsCommand() *cobra.Command {
	var (
		returnsPath    string
		valuesPath     string
		riskFree       string
		target         string
		confidence     string
		portfolioValue string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Compute Sharpe, Sortino and VaR (plus Calmar, Sterling and drawdown when values are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			returns, err := loadReturns(returnsPath)
			if err != nil {
				return err
			}

			riskFreeRate, err := decimal.NewFromString(riskFree)
			if err != nil {
				return fmt.Errorf("invalid --risk-free %q: %w", riskFree, err)
			}
			targetReturn, err := decimal.NewFromString(target)
			if err != nil {
				return fmt.Errorf("invalid --target %q: %w", target, err)
			}

			out := map[string]interface{}{}

			sharpe, err := calculator.SharpeRatio(returns, riskFreeRate)
			if err != nil {
				return err
			}
			out["sharpe"] = sharpe

			sortino, err := calculator.SortinoRatio(returns, targetReturn)
			if err != nil {
				return err
			}
			out["sortino"] = sortino

			if portfolioValue != "" {
				pv, err := decimal.NewFromString(portfolioValue)
				if err != nil {
					return fmt.Errorf("invalid --portfolio-value %q: %w", portfolioValue, err)
				}
				conf, err := decimal.NewFromString(confidence)
				if err != nil {
					return fmt.Errorf("invalid --confidence %q: %w", confidence, err)
				}
				valueAtRisk, err := calculator.ValueAtRisk(returns, pv, conf)
				if err != nil {
					return err
				}
				out["value_at_risk"] = valueAtRisk
			}

			if valuesPath != "" {
				values, err := loadValues(valuesPath)
				if err != nil {
					return err
				}
				drawdown, err := calculator.Drawdown(values)
				if err != nil {
					return err
				}
				out["drawdown"] = drawdown

				calmar, err := calculator.CalmarRatio(returns, values)
				if err != nil {
					return err
				}
				out["calmar"] = calmar

				sterling, err := calculator.SterlingRatio(returns, values, calculator.DefaultSterlingThreshold)
				if err != nil {
					return err
				}
				out["sterling"] = sterling
			}

			return printJSON(out)
		},
	}

	cmd.Flags().StringVar(&returnsPath, "returns", "", "CSV file with a 'return' column")
	cmd.Flags().StringVar(&valuesPath, "values", "", "CSV file with a 'value' column (one row longer than returns)")
	cmd.Flags().StringVar(&riskFree, "risk-free", calculator.DefaultRiskFreeRate.String(), "annual risk-free rate")
	cmd.Flags().StringVar(&target, "target", calculator.DefaultSortinoTarget.String(), "sortino target return")
	cmd.Flags().StringVar(&confidence, "confidence", calculator.DefaultVaRConfidence.String(), "VaR confidence level")
	cmd.Flags().StringVar(&portfolioValue, "portfolio-value", "", "portfolio value for VaR")
	cobra.CheckErr(cmd.MarkFlagRequired("returns"))

	return cmd
}

func correlationCommand() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "correlation",
		Short: "Compute the correlation and covariance matrices for a multi-asset CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, series, err := loadSeriesColumns(filePath)
			if err != nil {
				return err
			}

			correlation, err := calculator.CorrelationMatrix(series)
			if err != nil {
				return err
			}
			covariance, err := calculator.CovarianceMatrix(series)
			if err != nil {
				return err
			}

			return printJSON(map[string]interface{}{
				"assets":      names,
				"correlation": correlation,
				"covariance":  covariance,
			})
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "CSV file with one column of returns per asset")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))

	return cmd
}

func betaCommand() *cobra.Command {
	var portfolioPath, marketPath string

	cmd := &cobra.Command{
		Use:   "beta",
		Short: "Compute portfolio beta against a market return series",
		RunE: func(cmd *cobra.Command, args []string) error {
			portfolio, err := loadReturns(portfolioPath)
			if err != nil {
				return err
			}
			market, err := loadReturns(marketPath)
			if err != nil {
				return err
			}

			result, err := calculator.Beta(portfolio, market)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&portfolioPath, "portfolio", "", "CSV file with the portfolio's 'return' column")
	cmd.Flags().StringVar(&marketPath, "market", "", "CSV file with the market's 'return' column")
	cobra.CheckErr(cmd.MarkFlagRequired("portfolio"))
	cobra.CheckErr(cmd.MarkFlagRequired("market"))

	return cmd
}

func loadReturns(path string) (domain.ReturnSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	rows := []*returnRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}

	returns := make(domain.ReturnSeries, 0, len(rows))
	for _, row := range rows {
		returns = append(returns, row.Return)
	}
	return returns, nil
}

func loadValues(path string) (domain.ValueSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	rows := []*valueRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}

	values := make(domain.ValueSeries, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Value)
	}
	return values, nil
}

// loadSeriesColumns reads a rectangular CSV where the header names assets
// and each column is that asset's return series.
func loadSeriesColumns(path string) ([]string, []domain.ReturnSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("%s has no data rows: %w", path, domain.ErrInsufficientData)
	}

	names := records[0]
	columns := make([][]string, len(names))
	for _, record := range records[1:] {
		if len(record) != len(names) {
			return nil, nil, fmt.Errorf("ragged row in %s: %w", path, domain.ErrMismatchedLengths)
		}
		for i, cell := range record {
			columns[i] = append(columns[i], cell)
		}
	}

	series := make([]domain.ReturnSeries, 0, len(columns))
	for i, column := range columns {
		s, err := domain.ParseReturnSeries(column)
		if err != nil {
			return nil, nil, fmt.Errorf("column %s: %w", names[i], err)
		}
		series = append(series, s)
	}
	return names, series, nil
}

func printJSON(v interface{}) error {
	bytes, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(bytes))
	return nil
}
