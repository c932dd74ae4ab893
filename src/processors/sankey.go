package processors

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

// ContactFlow is the amount flowing to one contact within a category.
type ContactFlow struct {
	Contact string          `json:"contact"`
	Amount  decimal.Decimal `json:"amount"`
}

// InflowGroup is one inflow category. Inflow sources are typically few, so
// they carry no contact breakdown.
type InflowGroup struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// OutflowGroup is one outflow category with its per-contact breakdown;
// expense payees are the actionable granularity on the outflow side.
type OutflowGroup struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Contacts []ContactFlow   `json:"contacts"`
}

// SankeyData is the nested category/contact grouping that drives the flow
// diagram. It is pure data; no drawing concerns.
type SankeyData struct {
	View           models.View     `json:"view"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Inflows        []InflowGroup   `json:"inflows"`
	Outflows       []OutflowGroup  `json:"outflows"`
	TotalInflow    decimal.Decimal `json:"totalInflow"`
	TotalOutflow   decimal.Decimal `json:"totalOutflow"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// GroupForSankey performs the two-level grouping: transactions by category,
// then outflow categories by contact. Transactions with an empty stored
// contact are grouped under their description, matching what the flow
// diagram displays. Groups and contacts are ordered by descending total.
func GroupForSankey(transactions []models.Transaction, openingBalance decimal.Decimal, view models.View) *SankeyData {
	data := &SankeyData{
		View:           view,
		OpeningBalance: openingBalance,
		TotalInflow:    decimal.Zero,
		TotalOutflow:   decimal.Zero,
	}

	inflows := make(map[string]decimal.Decimal)
	outflows := make(map[string]map[string]decimal.Decimal)

	for _, tx := range transactions {
		amount := EffectiveAmount(tx, view)

		if tx.Type == models.TransactionInflow {
			inflows[tx.Category] = inflows[tx.Category].Add(amount)
			data.TotalInflow = data.TotalInflow.Add(amount)
			continue
		}

		contacts, ok := outflows[tx.Category]
		if !ok {
			contacts = make(map[string]decimal.Decimal)
			outflows[tx.Category] = contacts
		}
		contact := tx.Contact
		if contact == "" {
			contact = tx.Description
		}
		contacts[contact] = contacts[contact].Add(amount)
		data.TotalOutflow = data.TotalOutflow.Add(amount)
	}

	for category, total := range inflows {
		data.Inflows = append(data.Inflows, InflowGroup{Category: category, Total: total})
	}
	sort.Slice(data.Inflows, func(i, j int) bool {
		if !data.Inflows[i].Total.Equal(data.Inflows[j].Total) {
			return data.Inflows[i].Total.GreaterThan(data.Inflows[j].Total)
		}
		return data.Inflows[i].Category < data.Inflows[j].Category
	})

	for category, contacts := range outflows {
		group := OutflowGroup{Category: category, Total: decimal.Zero}
		for contact, amount := range contacts {
			group.Contacts = append(group.Contacts, ContactFlow{Contact: contact, Amount: amount})
			group.Total = group.Total.Add(amount)
		}
		sort.Slice(group.Contacts, func(i, j int) bool {
			if !group.Contacts[i].Amount.Equal(group.Contacts[j].Amount) {
				return group.Contacts[i].Amount.GreaterThan(group.Contacts[j].Amount)
			}
			return group.Contacts[i].Contact < group.Contacts[j].Contact
		})
		data.Outflows = append(data.Outflows, group)
	}
	sort.Slice(data.Outflows, func(i, j int) bool {
		if !data.Outflows[i].Total.Equal(data.Outflows[j].Total) {
			return data.Outflows[i].Total.GreaterThan(data.Outflows[j].Total)
		}
		return data.Outflows[i].Category < data.Outflows[j].Category
	})

	data.ClosingBalance = openingBalance.Add(data.TotalInflow).Sub(data.TotalOutflow)
	return data
}
