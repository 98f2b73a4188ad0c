// Package ledger tracks which taxi request identifiers were
// legitimately issued. Only ids present in the ledger are eligible for
// reimbursement evaluation.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/pkg/database"
)

// Ledger is the registry of issued request identifiers. It is safe for
// concurrent use; ids persist for the process lifetime and are never
// removed.
type Ledger struct {
	db     *database.DB
	logger *zap.Logger
}

// New creates the ledger and its backing table.
func New(db *database.DB, logger *zap.Logger) (*Ledger, error) {
	const schema = `
		CREATE TABLE IF NOT EXISTS request_ids (
			id         TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create request_ids table: %w", err)
	}
	return &Ledger{db: db, logger: logger}, nil
}

// Create issues a fresh request identifier and records it as eligible
// for evaluation. Ids are collision-free for the process lifetime.
func (l *Ledger) Create() (string, error) {
	id := "request_id_" + uuid.NewString()

	if _, err := l.db.Exec(`INSERT INTO request_ids (id) VALUES (?)`, id); err != nil {
		l.logger.Error("Failed to record request id", zap.Error(err))
		return "", fmt.Errorf("failed to record request id: %w", err)
	}

	l.logger.Debug("Issued request id", zap.String("request_id", id))
	return id, nil
}

// Contains reports whether the id was issued by this ledger. Lookup
// failures are logged and treated as absence, keeping the default
// conservative.
func (l *Ledger) Contains(id string) bool {
	var one int
	err := l.db.QueryRow(`SELECT 1 FROM request_ids WHERE id = ?`, id).Scan(&one)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			l.logger.Error("Request id lookup failed",
				zap.String("request_id", id),
				zap.Error(err))
		}
		return false
	}
	return true
}
