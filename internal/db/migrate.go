package db

import (
	"fmt"

	"sportsbot/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	if err := db.Gorm.AutoMigrate(
		&models.GameState{},
		&models.Market{},
		&models.Edge{},
		&models.Position{},
		&models.Trade{},
		&models.Strategy{},
		&models.Anomaly{},
	); err != nil {
		return err
	}
	if err := EnsureVersionIndexes(db); err != nil {
		return err
	}
	return ensureForeignKeys(db)
}

// versionedTables lists every table carrying the versioning columns.
var versionedTables = []string{
	"game_states",
	"markets",
	"edges",
	"positions",
}

// EnsureVersionIndexes creates the partial unique indexes that enforce the
// exactly-one-current invariant. gorm tags cannot express a filtered index,
// so these run as raw SQL after AutoMigrate. The index doubles as the fast
// path for current-version lookups.
func EnsureVersionIndexes(db *DB) error {
	for _, table := range versionedTables {
		stmt := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_%s_current ON %s (business_key) WHERE is_current",
			table, table,
		)
		if err := db.Gorm.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index uq_%s_current: %w", table, err)
		}
	}
	return nil
}

// ensureForeignKeys pins the cross-table references that always target
// surrogate ids. Referencing the surrogate key keeps child rows pointing at
// the exact version they were derived from even after that version is closed.
func ensureForeignKeys(db *DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			"fk_trades_position_version",
			"ALTER TABLE trades ADD CONSTRAINT fk_trades_position_version FOREIGN KEY (position_version_id) REFERENCES positions (id)",
		},
		{
			"fk_trades_strategy",
			"ALTER TABLE trades ADD CONSTRAINT fk_trades_strategy FOREIGN KEY (strategy_id) REFERENCES strategies (id)",
		},
		{
			"fk_positions_strategy",
			"ALTER TABLE positions ADD CONSTRAINT fk_positions_strategy FOREIGN KEY (strategy_id) REFERENCES strategies (id)",
		},
	}
	for _, s := range stmts {
		var exists bool
		err := db.Gorm.
			Raw("SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)", s.name).
			Scan(&exists).Error
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := db.Gorm.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("constraint %s: %w", s.name, err)
		}
	}
	return nil
}
