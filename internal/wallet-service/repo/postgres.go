package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa a custódia de saldos em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// GetOrCreateWallet retorna o walletId e saldo de um usuário, criando a carteira se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_cents FROM wallets WHERE user_id=$1`, userID).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,0,1)`,
			id, userID); err != nil {
			return "", 0, err
		}
		bal = 0
	} else if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return id, bal, nil
}

// Credit incrementa o saldo da carteira e registra a operação no ledger de custódia
// Garante lock pessimista na linha da carteira; idempotente por external_ref
func (p *Postgres) Credit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	// Cria a carteira se não existir: prêmios e taxas podem chegar antes de
	// qualquer depósito (ex: conta do operador)
	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,0,1)`,
			id, userID); err != nil {
			return "", 0, err
		}
	} else if err != nil {
		return "", 0, err
	}

	// Idempotência: o mesmo external_ref não credita duas vezes
	if externalRef != "" {
		var exists int
		err = tx.QueryRowContext(ctx,
			`SELECT 1 FROM wallet_ledger WHERE wallet_id=$1 AND operation_type='CREDIT' AND description=$2`,
			id, "credit:"+externalRef).Scan(&exists)
		if err == nil {
			if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
				return "", 0, err
			}
			return id, newBalance, tx.Commit()
		} else if err != sql.ErrNoRows {
			return "", 0, err
		}
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`, amount, id); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description) VALUES($1,'CREDIT',$2,$3)`,
		id, amount, "credit:"+externalRef); err != nil {
		return "", 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return id, newBalance, nil
}

// Hold cria um bloqueio PENDING e debita saldo
// Garante idempotência por (wallet_id, external_ref)
func (p *Postgres) Hold(ctx context.Context, userID string, amount int64, externalRef string) (holdID string, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var walletID string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&walletID); err != nil {
		return "", err
	}

	// Idempotência antes do saldo: reenvio do mesmo external_ref devolve o
	// hold existente mesmo que o saldo restante já não cubra o valor
	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM wallet_holds WHERE wallet_id=$1 AND external_ref=$2`, walletID, externalRef).Scan(&exists)

	if err == nil {
		return exists, nil // já existe
	} else if err != sql.ErrNoRows {
		return "", err
	}

	var balance int64
	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, walletID).Scan(&balance); err != nil {
		return "", err
	}

	if balance < amount {
		return "", ErrInsufficientFunds
	}

	// Debita saldo (bloqueio)
	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1 WHERE id=$2`, amount, walletID); err != nil {
		return "", err
	}

	holdID = uuid.New().String()
	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_holds(id, wallet_id, external_ref, amount_cents, status) VALUES($1,$2,$3,$4,'PENDING')`,
		holdID, walletID, externalRef, amount); err != nil {
		return "", err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description)
		VALUES($1,'HOLD',$2,$3)`,
		walletID, amount, "hold:"+externalRef); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}

	return holdID, nil
}

// Capture efetiva um hold, marcando como CAPTURED e registrando débito no ledger de custódia
// Idempotente: se já estiver captured, não faz nada
func (p *Postgres) Capture(ctx context.Context, userID, externalRef string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var walletID, holdID string
	var status string
	var amount int64

	if err = tx.QueryRowContext(ctx, `
		SELECT wh.id, wh.wallet_id, wh.amount_cents, wh.status
		FROM wallet_holds wh
		JOIN wallets w ON w.id = wh.wallet_id
		WHERE w.user_id=$1 AND wh.external_ref=$2
		FOR UPDATE`, userID, externalRef).Scan(&holdID, &walletID, &amount, &status); err != nil {
		return ErrNotFound
	}

	if status != "PENDING" {
		return nil
	} // idempotente

	if _, err = tx.ExecContext(ctx, `UPDATE wallet_holds SET status='CAPTURED' WHERE id=$1`, holdID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description)
		VALUES($1,'DEBIT',$2,$3)`, walletID, amount, "capture:"+externalRef); err != nil {
		return err
	}

	return tx.Commit()
}

// Release desfaz um hold PENDING, devolvendo saldo e registrando no ledger de custódia
// Idempotente: se já estiver RELEASED, não faz nada
func (p *Postgres) Release(ctx context.Context, userID, externalRef string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var walletID, holdID string
	var status string
	var amount int64

	if err = tx.QueryRowContext(ctx, `
		SELECT wh.id, wh.wallet_id, wh.amount_cents, wh.status
		FROM wallet_holds wh
		JOIN wallets w ON w.id = wh.wallet_id
		WHERE w.user_id=$1 AND wh.external_ref=$2
		FOR UPDATE`, userID, externalRef).Scan(&holdID, &walletID, &amount, &status); err != nil {
		return ErrNotFound
	}

	if status != "PENDING" {
		return nil
	} // já tratado

	// Devolve saldo
	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`, amount, walletID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallet_holds SET status='RELEASED' WHERE id=$1`, holdID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description)
		VALUES($1,'RELEASE',$2,$3)`, walletID, amount, "release:"+externalRef); err != nil {
		return err
	}

	return tx.Commit()
}
