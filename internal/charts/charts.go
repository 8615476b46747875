// Package charts renders cycle aggregates as PNG images.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"tracky/internal/calendar"
)

// CycleBalanceChart draws the running balance together with per-cycle
// income and expense totals across the built cycle sequence. Returns nil
// bytes when there is nothing to draw.
func CycleBalanceChart(cycles []calendar.BillingCycle) ([]byte, error) {
	if len(cycles) == 0 {
		return nil, nil
	}

	xValues := make([]float64, len(cycles))
	balanceValues := make([]float64, len(cycles))
	incomeValues := make([]float64, len(cycles))
	expenseValues := make([]float64, len(cycles))
	ticks := make([]chart.Tick, len(cycles))

	for i, cycle := range cycles {
		xValues[i] = float64(i)
		balanceValues[i] = cycle.EndBalance.Units()
		incomeValues[i] = cycle.IncomeTotal.Units()
		expenseValues[i] = -cycle.ExpensesTotal.Units()
		ticks[i] = chart.Tick{
			Value: float64(i),
			Label: cycle.CycleEnd.Format("Jan 06"),
		}
	}

	graph := chart.Chart{
		Width:  1000,
		Height: 480,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 40, Right: 40, Bottom: 40},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Style: chart.Style{FontSize: 10, FontColor: chart.ColorBlack},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
			Style: chart.Style{FontSize: 10, FontColor: chart.ColorBlack},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Saldo",
				XValues: xValues,
				YValues: balanceValues,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 3},
			},
			chart.ContinuousSeries{
				Name:    "Entradas",
				XValues: xValues,
				YValues: incomeValues,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "Saídas",
				XValues: xValues,
				YValues: expenseValues,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render cycle balance chart: %w", err)
	}
	return buf.Bytes(), nil
}
