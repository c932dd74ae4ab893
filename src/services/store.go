package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/database"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

// Shared read/write helpers over the collection tables, used by the import
// and report services. Money columns are stored as exact decimal text.

func fetchTransactions(account models.Account) ([]models.Transaction, error) {
	query := `SELECT id, account, date, description, category, contact, type, amount, amount_sgd
		FROM transactions ORDER BY date ASC, id ASC`
	args := []interface{}{}
	if account != "" {
		query = `SELECT id, account, date, description, category, contact, type, amount, amount_sgd
			FROM transactions WHERE account = ? ORDER BY date ASC, id ASC`
		args = append(args, string(account))
	}

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var amount, amountSGD string
		if err := rows.Scan(&tx.ID, &tx.Account, &tx.Date, &tx.Description, &tx.Category, &tx.Contact, &tx.Type, &amount, &amountSGD); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid stored amount for transaction %s: %w", tx.ID, err)
		}
		if tx.AmountSGD, err = decimal.NewFromString(amountSGD); err != nil {
			return nil, fmt.Errorf("invalid stored amount_sgd for transaction %s: %w", tx.ID, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// replaceTransactions swaps out the persisted batch for one account in one
// database transaction, so a failed import never leaves a partial batch.
func replaceTransactions(account models.Account, transactions []models.Transaction) error {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.Exec(`DELETE FROM transactions WHERE account = ?`, string(account)); err != nil {
		return fmt.Errorf("error clearing prior batch for account %s: %w", account, err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO transactions (id, account, date, description, category, contact, type, amount, amount_sgd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, tx := range transactions {
		_, err := stmt.Exec(tx.ID, string(tx.Account), tx.Date, tx.Description, tx.Category, tx.Contact, string(tx.Type), tx.Amount.String(), tx.AmountSGD.String())
		if err != nil {
			return fmt.Errorf("error inserting transaction %s: %w", tx.ID, err)
		}
	}

	return dbTx.Commit()
}

func fetchDeals() ([]models.Deal, error) {
	rows, err := database.DB.Query(`SELECT id, client_name, deal_name, deal_value, stage, probability, expected_close_date, revenue_breakdown
		FROM deals ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying deals: %w", err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var deal models.Deal
		var value, probability, breakdown string
		var closeDate sql.NullString
		if err := rows.Scan(&deal.ID, &deal.ClientName, &deal.DealName, &value, &deal.Stage, &probability, &closeDate, &breakdown); err != nil {
			return nil, fmt.Errorf("error scanning deal row: %w", err)
		}
		if deal.DealValue, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("invalid stored deal_value for deal %s: %w", deal.ID, err)
		}
		if deal.Probability, err = decimal.NewFromString(probability); err != nil {
			return nil, fmt.Errorf("invalid stored probability for deal %s: %w", deal.ID, err)
		}
		deal.ExpectedCloseDate = closeDate.String
		if err := json.Unmarshal([]byte(breakdown), &deal.RevenueBreakdown); err != nil {
			return nil, fmt.Errorf("invalid stored revenue_breakdown for deal %s: %w", deal.ID, err)
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

func fetchProjects() ([]models.Project, error) {
	rows, err := database.DB.Query(`SELECT id, name, client, status, budget, start_date, end_date
		FROM projects ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		var budget string
		var client, status, startDate, endDate sql.NullString
		if err := rows.Scan(&project.ID, &project.Name, &client, &status, &budget, &startDate, &endDate); err != nil {
			return nil, fmt.Errorf("error scanning project row: %w", err)
		}
		project.Client = client.String
		project.Status = status.String
		project.StartDate = startDate.String
		project.EndDate = endDate.String
		if project.Budget, err = decimal.NewFromString(budget); err != nil {
			return nil, fmt.Errorf("invalid stored budget for project %s: %w", project.ID, err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func fetchProjectCosts() ([]models.ProjectCost, error) {
	rows, err := database.DB.Query(`SELECT id, project_id, description, category, amount, date
		FROM project_costs ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying project costs: %w", err)
	}
	defer rows.Close()

	var costs []models.ProjectCost
	for rows.Next() {
		var cost models.ProjectCost
		var amount string
		var description, category, date sql.NullString
		if err := rows.Scan(&cost.ID, &cost.ProjectID, &description, &category, &amount, &date); err != nil {
			return nil, fmt.Errorf("error scanning project cost row: %w", err)
		}
		cost.Description = description.String
		cost.Category = category.String
		cost.Date = date.String
		if cost.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid stored amount for project cost %s: %w", cost.ID, err)
		}
		costs = append(costs, cost)
	}
	return costs, rows.Err()
}

func loadSettings() (*models.Settings, error) {
	row := database.DB.QueryRow(`SELECT cashflow_opening_balance, usd_opening_balance, usd_opening_balance_sgd, headcount, ebitda_adjustments
		FROM settings WHERE id = 1`)

	var cashflow, usd, usdSGD sql.NullString
	var headcount int
	var adjustments string
	err := row.Scan(&cashflow, &usd, &usdSGD, &headcount, &adjustments)
	if err == sql.ErrNoRows {
		return &models.Settings{EbitdaAdjustments: []models.EbitdaAdjustment{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading settings: %w", err)
	}

	settings := &models.Settings{Headcount: headcount}
	if settings.CashflowOpeningBalance, err = nullDecimal(cashflow); err != nil {
		return nil, fmt.Errorf("invalid stored cashflow opening balance: %w", err)
	}
	if settings.USDOpeningBalance, err = nullDecimal(usd); err != nil {
		return nil, fmt.Errorf("invalid stored USD opening balance: %w", err)
	}
	if settings.USDOpeningBalanceSGD, err = nullDecimal(usdSGD); err != nil {
		return nil, fmt.Errorf("invalid stored USD opening balance (SGD): %w", err)
	}
	if err := json.Unmarshal([]byte(adjustments), &settings.EbitdaAdjustments); err != nil {
		return nil, fmt.Errorf("invalid stored EBITDA adjustments: %w", err)
	}
	return settings, nil
}

// saveSettings upserts the single settings row, last write wins.
func saveSettings(settings *models.Settings) error {
	adjustments := settings.EbitdaAdjustments
	if adjustments == nil {
		adjustments = []models.EbitdaAdjustment{}
	}
	encoded, err := json.Marshal(adjustments)
	if err != nil {
		return fmt.Errorf("error encoding EBITDA adjustments: %w", err)
	}

	_, err = database.DB.Exec(`INSERT INTO settings (id, cashflow_opening_balance, usd_opening_balance, usd_opening_balance_sgd, headcount, ebitda_adjustments, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			cashflow_opening_balance = excluded.cashflow_opening_balance,
			usd_opening_balance = excluded.usd_opening_balance,
			usd_opening_balance_sgd = excluded.usd_opening_balance_sgd,
			headcount = excluded.headcount,
			ebitda_adjustments = excluded.ebitda_adjustments,
			updated_at = CURRENT_TIMESTAMP`,
		decimalText(settings.CashflowOpeningBalance),
		decimalText(settings.USDOpeningBalance),
		decimalText(settings.USDOpeningBalanceSGD),
		settings.Headcount,
		string(encoded))
	if err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}
	return nil
}

func savePnLSnapshot(snapshot *models.PnLSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("error encoding P&L snapshot: %w", err)
	}
	_, err = database.DB.Exec(`INSERT INTO pnl_snapshots (id, payload, imported_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, imported_at = excluded.imported_at`,
		string(payload), snapshot.ImportedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("error saving P&L snapshot: %w", err)
	}
	return nil
}

func loadPnLSnapshot() (*models.PnLSnapshot, error) {
	var payload string
	err := database.DB.QueryRow(`SELECT payload FROM pnl_snapshots WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNoPnLData
	}
	if err != nil {
		return nil, fmt.Errorf("error loading P&L snapshot: %w", err)
	}

	var snapshot models.PnLSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		logger.L.Error("Stored P&L snapshot is corrupt", "error", err)
		return nil, fmt.Errorf("stored P&L snapshot is corrupt: %w", err)
	}
	return &snapshot, nil
}

func nullDecimal(value sql.NullString) (*decimal.Decimal, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func decimalText(value *decimal.Decimal) interface{} {
	if value == nil {
		return nil
	}
	return value.String()
}
