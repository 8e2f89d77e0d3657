package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/engine"
)

// Repo persiste o retrato do engine numa linha única do Postgres, para o
// ledger-service retomar o estado após restart.
type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// Save grava (upsert) o snapshot corrente.
func (r *Repo) Save(ctx context.Context, s engine.State) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ledger_snapshots (id, state, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()`,
		b,
	)
	return err
}

// Load lê o último snapshot salvo; ok=false se ainda não houver nenhum.
func (r *Repo) Load(ctx context.Context) (engine.State, bool, error) {
	var b []byte
	err := r.db.QueryRowContext(ctx, `SELECT state FROM ledger_snapshots WHERE id=1`).Scan(&b)
	if err == sql.ErrNoRows {
		return engine.State{}, false, nil
	}
	if err != nil {
		return engine.State{}, false, err
	}

	var s engine.State
	if err := json.Unmarshal(b, &s); err != nil {
		return engine.State{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, true, nil
}
