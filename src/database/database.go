package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/moneydash/backend/src/logger"
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

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS mapping_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL UNIQUE,
		account_type TEXT NOT NULL DEFAULT '',
		category1 TEXT NOT NULL DEFAULT '',
		category2 TEXT NOT NULL DEFAULT '',
		category3 TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		payer TEXT NOT NULL DEFAULT '',
		payee TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS list_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		list_name TEXT NOT NULL,
		item TEXT NOT NULL,
		UNIQUE(list_name, item)
	);

	CREATE TABLE IF NOT EXISTS mapping_conflicts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL,
		old_tuple TEXT NOT NULL,
		new_tuple TEXT NOT NULL,
		occurred_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}

	migrateMappingRules()

	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateMappingRules adds columns introduced after the first release
// to existing databases. Same additive style as table creation: safe to
// run on every start.
func migrateMappingRules() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='mapping_rules'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for mapping_rules table", "error", err)
		} else {
			stdlog.Printf("Error checking for mapping_rules table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(mapping_rules)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for mapping_rules", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for mapping_rules: %v", err)
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
				logger.L.Error("Error scanning column info for mapping_rules", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for mapping_rules: %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for mapping_rules", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for mapping_rules: %v", err)
		}
		return
	}

	if _, ok := columnExists["updated_at"]; !ok {
		_, err := DB.Exec("ALTER TABLE mapping_rules ADD COLUMN updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
		if err != nil {
			logger.L.Error("Error adding 'updated_at' column to 'mapping_rules' table", "error", err)
		} else {
			logger.L.Info("Added 'updated_at' column to 'mapping_rules' table")
		}
	}
	if _, ok := columnExists["payer"]; !ok {
		_, err := DB.Exec("ALTER TABLE mapping_rules ADD COLUMN payer TEXT NOT NULL DEFAULT ''")
		if err != nil {
			logger.L.Error("Error adding 'payer' column to 'mapping_rules' table", "error", err)
		} else {
			logger.L.Info("Added 'payer' column to 'mapping_rules' table")
		}
	}
	if _, ok := columnExists["payee"]; !ok {
		_, err := DB.Exec("ALTER TABLE mapping_rules ADD COLUMN payee TEXT NOT NULL DEFAULT ''")
		if err != nil {
			logger.L.Error("Error adding 'payee' column to 'mapping_rules' table", "error", err)
		} else {
			logger.L.Info("Added 'payee' column to 'mapping_rules' table")
		}
	}
}
