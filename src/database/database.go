package database

import (
	"database/sql"
	stdlog "log"

	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateTransactionsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account TEXT NOT NULL,
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'Uncategorized',
		contact TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		amount_sgd TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS deals (
		id TEXT PRIMARY KEY,
		client_name TEXT NOT NULL,
		deal_name TEXT NOT NULL,
		deal_value TEXT NOT NULL,
		stage TEXT NOT NULL,
		probability TEXT NOT NULL,
		expected_close_date TEXT,
		revenue_breakdown TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		client TEXT,
		status TEXT,
		budget TEXT NOT NULL DEFAULT '0',
		start_date TEXT,
		end_date TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS project_costs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		description TEXT,
		category TEXT,
		amount TEXT NOT NULL,
		date TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(project_id) REFERENCES projects(id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		cashflow_opening_balance TEXT,
		usd_opening_balance TEXT,
		usd_opening_balance_sgd TEXT,
		headcount INTEGER NOT NULL DEFAULT 0,
		ebitda_adjustments TEXT NOT NULL DEFAULT '[]',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS pnl_snapshots (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL,
		imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateTransactionsTable backfills columns added after the first release
// onto existing databases.
func migrateTransactionsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='transactions'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'transactions' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'transactions' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'transactions' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'transactions' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(transactions)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'transactions'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'transactions': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'transactions'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'transactions': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'transactions'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'transactions': %v", err)
		}
		return
	}

	if _, ok := columnExists["contact"]; !ok {
		_, err := DB.Exec("ALTER TABLE transactions ADD COLUMN contact TEXT NOT NULL DEFAULT ''")
		if err != nil {
			logger.L.Error("Error adding 'contact' column to 'transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'contact' column to 'transactions' table")
		}
	}

	if _, ok := columnExists["amount_sgd"]; !ok {
		_, err := DB.Exec("ALTER TABLE transactions ADD COLUMN amount_sgd TEXT NOT NULL DEFAULT '0'")
		if err != nil {
			logger.L.Error("Error adding 'amount_sgd' column to 'transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'amount_sgd' column to 'transactions' table")
			_, errUpdate := DB.Exec("UPDATE transactions SET amount_sgd = amount WHERE amount_sgd = '0'")
			if errUpdate != nil {
				logger.L.Error("Error backfilling amount_sgd for existing rows", "error", errUpdate)
			}
		}
	}
}
