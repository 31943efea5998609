package storage

import (
	"fmt"
)

// RunMigrations applies any pending schema migrations
func (b *SQLiteBackend) RunMigrations() error {
	if err := b.runPriorityMigration(); err != nil {
		return err
	}

	return nil
}

// runPriorityMigration adds the priority column to databases created before
// tasks had priorities
func (b *SQLiteBackend) runPriorityMigration() error {
	var count int
	err := b.conn.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('tasks')
		WHERE name = 'priority'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking for priority column: %w", err)
	}

	if count > 0 {
		return nil
	}

	b.logger.Info("running migration: adding priority column", "path", b.path)

	tx, err := b.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`ALTER TABLE tasks ADD COLUMN priority TEXT NOT NULL DEFAULT 'medium'`)
	if err != nil && err.Error() != "duplicate column name: priority" {
		return fmt.Errorf("adding priority column: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}

	b.logger.Info("migration completed", "path", b.path)
	return nil
}
