package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
)

// PostgresRepo persiste o histórico do ledger (rodadas, saques e taxas).
// DB: conexão com o banco de dados
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertRound insere ou atualiza a rodada liquidada na tabela rounds
// Utiliza ON CONFLICT para tolerar reentrega de mensagens Kafka
func (r *PostgresRepo) UpsertRound(ctx context.Context, e events.RoundSettled) error {
	const q = `
		INSERT INTO rounds
		  (round, winning_side, total_staked_a_cents, total_staked_b_cents, total_fees_cents, payout_ratio, settled_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (round) DO UPDATE SET
		  winning_side         = EXCLUDED.winning_side,
		  total_staked_a_cents = EXCLUDED.total_staked_a_cents,
		  total_staked_b_cents = EXCLUDED.total_staked_b_cents,
		  total_fees_cents     = EXCLUDED.total_fees_cents,
		  payout_ratio         = EXCLUDED.payout_ratio,
		  settled_at           = EXCLUDED.settled_at
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.Round, e.WinningSide,
		e.TotalStakedACents, e.TotalStakedBCents, e.TotalFeesCents,
		e.PayoutRatio, e.SettledAt,
	)
	return err
}

// InsertClaim registra um saque de prêmios no histórico (claims_history)
func (r *PostgresRepo) InsertClaim(ctx context.Context, e events.WinningsClaimed) error {
	const q = `
		INSERT INTO claims_history (user_id, total_cents, rounds, watermark, claimed_at)
		VALUES ($1,$2,$3,$4,$5)
	`
	_, err := r.DB.ExecContext(ctx, q, e.UserID, e.TotalCents, pq.Array(e.Rounds), e.Watermark, e.Ts)
	return err
}

// InsertFeeWithdrawal registra um saque de taxas do operador (fees_history)
func (r *PostgresRepo) InsertFeeWithdrawal(ctx context.Context, e events.FeesWithdrawn) error {
	const q = `
		INSERT INTO fees_history (total_cents, rounds, watermark, withdrawn_at)
		VALUES ($1,$2,$3,$4)
	`
	_, err := r.DB.ExecContext(ctx, q, e.TotalCents, pq.Array(e.Rounds), e.Watermark, e.Ts)
	return err
}

// GetRound lê uma rodada liquidada do histórico (fallback do read-side)
func (r *PostgresRepo) GetRound(ctx context.Context, round int64) (events.RoundSettled, error) {
	const q = `
		SELECT round, winning_side, total_staked_a_cents, total_staked_b_cents, total_fees_cents, payout_ratio, settled_at
		FROM rounds WHERE round=$1
	`
	var e events.RoundSettled
	err := r.DB.QueryRowContext(ctx, q, round).Scan(
		&e.Round, &e.WinningSide,
		&e.TotalStakedACents, &e.TotalStakedBCents, &e.TotalFeesCents,
		&e.PayoutRatio, &e.SettledAt,
	)
	return e, err
}
