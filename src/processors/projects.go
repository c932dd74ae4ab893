package processors

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

// CategoryAmount is one category slice of a project's costs.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthAmount is one YYYY-MM bucket of a project's cost series.
type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// ProjectCostSummary is the costing view of one project.
type ProjectCostSummary struct {
	Project         models.Project   `json:"project"`
	TotalCost       decimal.Decimal  `json:"totalCost"`
	BudgetRemaining decimal.Decimal  `json:"budgetRemaining"`
	CostsByCategory []CategoryAmount `json:"costsByCategory"`
	MonthlyCosts    []MonthAmount    `json:"monthlyCosts"`
}

// ProjectsReport aggregates cost entries per project: total spend, remaining
// budget, category slices and a monthly series.
type ProjectsReport struct {
	Projects    []ProjectCostSummary `json:"projects"`
	TotalBudget decimal.Decimal      `json:"totalBudget"`
	TotalCost   decimal.Decimal      `json:"totalCost"`
}

// SummarizeProjects rolls project cost entries up per project. Cost entries
// referencing an unknown project are ignored.
func SummarizeProjects(projects []models.Project, costs []models.ProjectCost) *ProjectsReport {
	report := &ProjectsReport{TotalBudget: decimal.Zero, TotalCost: decimal.Zero}

	byProject := make(map[string][]models.ProjectCost)
	for _, cost := range costs {
		byProject[cost.ProjectID] = append(byProject[cost.ProjectID], cost)
	}

	for _, project := range projects {
		summary := summarizeProject(project, byProject[project.ID])
		report.Projects = append(report.Projects, summary)
		report.TotalBudget = report.TotalBudget.Add(project.Budget)
		report.TotalCost = report.TotalCost.Add(summary.TotalCost)
	}

	return report
}

func summarizeProject(project models.Project, costs []models.ProjectCost) ProjectCostSummary {
	summary := ProjectCostSummary{Project: project, TotalCost: decimal.Zero}

	byCategory := make(map[string]decimal.Decimal)
	byMonth := make(map[string]decimal.Decimal)
	for _, cost := range costs {
		summary.TotalCost = summary.TotalCost.Add(cost.Amount)
		byCategory[cost.Category] = byCategory[cost.Category].Add(cost.Amount)
		if len(cost.Date) >= 7 {
			key := cost.Date[:7]
			byMonth[key] = byMonth[key].Add(cost.Amount)
		}
	}
	summary.BudgetRemaining = project.Budget.Sub(summary.TotalCost)

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		summary.CostsByCategory = append(summary.CostsByCategory, CategoryAmount{Category: category, Amount: byCategory[category]})
	}

	monthKeys := make([]string, 0, len(byMonth))
	for key := range byMonth {
		monthKeys = append(monthKeys, key)
	}
	sort.Strings(monthKeys)
	for _, key := range monthKeys {
		summary.MonthlyCosts = append(summary.MonthlyCosts, MonthAmount{Month: key, Amount: byMonth[key]})
	}

	return summary
}
