package transport

import (
	"context"
	"errors"
	"sync"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Memory é o adaptador de transporte "nativo": saldos custodiais em processo,
// sem serviço externo. Usado em env=local e nos testes do engine.
type Memory struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[string]int64)}
}

// Fund injeta saldo inicial numa conta (seed de ambiente local/testes).
func (m *Memory) Fund(userID string, cents int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] += cents
}

// Balance devolve o saldo corrente da conta.
func (m *Memory) Balance(userID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

func (m *Memory) Debit(_ context.Context, userID string, amountCents int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.balances[userID] < amountCents {
		return ErrInsufficientFunds
	}
	m.balances[userID] -= amountCents
	return nil
}

func (m *Memory) Credit(_ context.Context, userID string, amountCents int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[userID] += amountCents
	return nil
}
