package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// Archive provides SQLite-backed persistence for finalized calls, the
// durable side of the observability sink. Aggregation (success rates,
// latency percentiles) belongs to external collaborators reading it.
type Archive struct {
	db     *sql.DB
	dbPath string
}

// NewArchive opens (or creates) the archive database at dbPath.
func NewArchive(dbPath string) (*Archive, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	// WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS calls (
			id TEXT PRIMARY KEY,
			prompt TEXT NOT NULL,
			passed INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create calls table: %w", err)
	}

	return &Archive{db: conn, dbPath: dbPath}, nil
}

// SaveCall persists a finalized call. The full record is stored as a
// JSON payload next to the queryable columns.
func (a *Archive) SaveCall(ctx context.Context, call *models.Call) error {
	if call.Outcome == nil {
		return fmt.Errorf("call %s is not finalized", call.ID)
	}

	payload, err := json.Marshal(call)
	if err != nil {
		return fmt.Errorf("marshal call %s: %w", call.ID, err)
	}

	passed := 0
	if call.Outcome.ValidationPassed {
		passed = 1
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO calls (id, prompt, passed, attempts, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		call.ID, call.Inputs.Prompt, passed, len(call.Attempts), string(payload), call.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert call %s: %w", call.ID, err)
	}
	return nil
}

// GetCall loads one archived call by id.
func (a *Archive) GetCall(ctx context.Context, id string) (*models.Call, error) {
	var payload string
	err := a.db.QueryRowContext(ctx, "SELECT payload FROM calls WHERE id = ?", id).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("load call %s: %w", id, err)
	}

	var call models.Call
	if err := json.Unmarshal([]byte(payload), &call); err != nil {
		return nil, fmt.Errorf("decode call %s: %w", id, err)
	}
	return &call, nil
}

// ListCalls returns the most recent archived calls, newest first.
func (a *Archive) ListCalls(ctx context.Context, limit int) ([]*models.Call, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.db.QueryContext(ctx,
		"SELECT payload FROM calls ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	var calls []*models.Call
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan call row: %w", err)
		}
		var call models.Call
		if err := json.Unmarshal([]byte(payload), &call); err != nil {
			return nil, fmt.Errorf("decode call row: %w", err)
		}
		calls = append(calls, &call)
	}
	return calls, rows.Err()
}

// PruneBefore removes archived calls older than cutoff.
func (a *Archive) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := a.db.ExecContext(ctx, "DELETE FROM calls WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune calls: %w", err)
	}
	return res.RowsAffected()
}

func (a *Archive) Close() error {
	return a.db.Close()
}
