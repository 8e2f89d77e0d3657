package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/parimutuel-ledger-poc/internal/rounds-service/dto"
)

type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) GetRound(ctx context.Context, round int64) (dto.Round, error) {
	const q = `
		SELECT round, winning_side, total_staked_a_cents, total_staked_b_cents, total_fees_cents,
		       payout_ratio, to_char(settled_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM rounds
		WHERE round = $1;
	`
	var out dto.Round
	err := r.DB.QueryRowContext(ctx, q, round).Scan(
		&out.Round, &out.WinningSide,
		&out.TotalStakedACents, &out.TotalStakedBCents, &out.TotalFeesCents,
		&out.PayoutRatio, &out.SettledAt,
	)
	return out, err
}

func (r *ReadRepo) ListRounds(ctx context.Context, limit int) ([]dto.Round, error) {
	const q = `
		SELECT round, winning_side, total_staked_a_cents, total_staked_b_cents, total_fees_cents,
		       payout_ratio, to_char(settled_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM rounds
		ORDER BY round DESC
		LIMIT $1;
	`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Round
	for rows.Next() {
		var d dto.Round
		if err := rows.Scan(
			&d.Round, &d.WinningSide,
			&d.TotalStakedACents, &d.TotalStakedBCents, &d.TotalFeesCents,
			&d.PayoutRatio, &d.SettledAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
