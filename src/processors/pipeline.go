package processors

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

// FunnelBucket is one stage of the sales funnel.
type FunnelBucket struct {
	Stage         models.DealStage `json:"stage"`
	Count         int              `json:"count"`
	TotalValue    decimal.Decimal  `json:"totalValue"`
	WeightedValue decimal.Decimal  `json:"weightedValue"`
}

// PipelineMonth is the expected revenue for one YYYY-MM bucket. Expected is
// the raw breakdown sum, Weighted the probability-discounted sum.
type PipelineMonth struct {
	Month    string          `json:"month"`
	Expected decimal.Decimal `json:"expected"`
	Weighted decimal.Decimal `json:"weighted"`
}

// PipelineReport is the render-ready pipeline aggregate: the funnel in fixed
// stage order and the month-keyed expected revenue series.
type PipelineReport struct {
	Funnel             []FunnelBucket  `json:"funnel"`
	MonthlyExpected    []PipelineMonth `json:"monthlyExpected"`
	TotalPipelineValue decimal.Decimal `json:"totalPipelineValue"`
	TotalWeightedValue decimal.Decimal `json:"totalWeightedValue"`
}

// SummarizePipeline aggregates deals into funnel buckets and monthly
// expected revenue. Funnel buckets cover the five non-closed-lost stages in
// fixed order. Monthly expected revenue sums revenue-breakdown entries across
// all deals regardless of stage; probability is the only de-weighting
// mechanism, so a Lead-stage deal's breakdown still counts at its
// probability.
func SummarizePipeline(deals []models.Deal) *PipelineReport {
	report := &PipelineReport{
		TotalPipelineValue: decimal.Zero,
		TotalWeightedValue: decimal.Zero,
	}

	byStage := make(map[models.DealStage]*FunnelBucket, len(models.FunnelStages))
	for _, stage := range models.FunnelStages {
		bucket := &FunnelBucket{Stage: stage, TotalValue: decimal.Zero, WeightedValue: decimal.Zero}
		byStage[stage] = bucket
	}

	monthly := make(map[string]*PipelineMonth)
	for _, deal := range deals {
		if bucket, ok := byStage[deal.Stage]; ok {
			bucket.Count++
			bucket.TotalValue = bucket.TotalValue.Add(deal.DealValue)
			bucket.WeightedValue = bucket.WeightedValue.Add(deal.WeightedValue())
			report.TotalPipelineValue = report.TotalPipelineValue.Add(deal.DealValue)
			report.TotalWeightedValue = report.TotalWeightedValue.Add(deal.WeightedValue())
		}

		for _, entry := range deal.RevenueBreakdown {
			key := entry.Year + "-" + entry.Month
			m, ok := monthly[key]
			if !ok {
				m = &PipelineMonth{Month: key, Expected: decimal.Zero, Weighted: decimal.Zero}
				monthly[key] = m
			}
			m.Expected = m.Expected.Add(entry.Amount)
			m.Weighted = m.Weighted.Add(entry.Amount.Mul(deal.Probability).Div(decimal.NewFromInt(100)))
		}
	}

	for _, stage := range models.FunnelStages {
		report.Funnel = append(report.Funnel, *byStage[stage])
	}

	keys := make([]string, 0, len(monthly))
	for key := range monthly {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		report.MonthlyExpected = append(report.MonthlyExpected, *monthly[key])
	}

	return report
}
