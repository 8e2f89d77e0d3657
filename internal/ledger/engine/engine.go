package engine

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
)

// Side é um dos dois lados possíveis de uma rodada.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// ParseSide valida a representação textual de um lado ("A" ou "B").
func ParseSide(s string) (Side, bool) {
	switch Side(s) {
	case SideA:
		return SideA, true
	case SideB:
		return SideB, true
	}
	return "", false
}

// Scale é a base de ponto fixo do payout ratio (1e18).
var Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Transport abstrai a movimentação de valor (custódia é colaborador externo).
// Debit puxa amount_cents do usuário para a plataforma; Credit paga de volta.
// O ref serve de chave de idempotência para o lado da custódia.
type Transport interface {
	Debit(ctx context.Context, userID string, amountCents int64, ref string) error
	Credit(ctx context.Context, userID string, amountCents int64, ref string) error
}

type round struct {
	bettingOpen  bool
	settled      bool
	winningSide  Side
	totalStakedA int64 // líquido de taxa
	totalStakedB int64
	totalFees    int64
	payoutRatio  *big.Int // nil até a liquidação
	feesClaimed  bool
}

type stakeKey struct {
	round int64
	user  string
}

type stake struct {
	netAmount    int64
	side         Side
	participated bool
	claimed      bool
}

// Engine é o núcleo pari-mutuel: rodadas, stakes, liquidação O(1) e
// saques preguiçosos por watermark.
//
// Um único mutex serializa toda operação mutante (inclusive a transferência
// externa, último passo dentro da seção crítica), reproduzindo a execução
// estritamente sequencial do ambiente de referência. Rodadas liquidadas
// congelam: só deposits escrevem na rodada corrente, só a liquidação escreve
// uma vez nos campos de resultado.
type Engine struct {
	mu              sync.Mutex
	feeBps          int64
	operatorAccount string
	transport       Transport

	currentRound int64
	rounds       map[int64]*round
	stakes       map[stakeKey]*stake
	watermarks   map[string]int64 // última rodada varrida por usuário
	feeWatermark int64
}

// New cria o engine com a rodada 1 aberta para apostas.
func New(feeBps int64, operatorAccount string, tr Transport) *Engine {
	e := &Engine{
		feeBps:          feeBps,
		operatorAccount: operatorAccount,
		transport:       tr,
		currentRound:    1,
		rounds:          make(map[int64]*round),
		stakes:          make(map[stakeKey]*stake),
		watermarks:      make(map[string]int64),
	}
	e.rounds[1] = &round{bettingOpen: true}
	return e
}

// DepositReceipt devolve ao chamador o resultado contábil de um depósito.
type DepositReceipt struct {
	Round    int64
	FeeCents int64
	NetCents int64
}

// Deposit registra uma aposta do usuário na rodada corrente.
// Puxa o valor via transport antes de contabilizar; como todas as
// pré-condições já foram validadas, a contabilização após o débito não falha.
func (e *Engine) Deposit(ctx context.Context, userID string, amountCents int64, side Side) (DepositReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amountCents <= 0 {
		return DepositReceipt{}, ErrZeroAmount
	}
	r := e.rounds[e.currentRound]
	if !r.bettingOpen {
		return DepositReceipt{}, ErrRoundClosed
	}

	k := stakeKey{round: e.currentRound, user: userID}
	st := e.stakes[k]
	if st != nil && st.netAmount > 0 && st.side != side {
		return DepositReceipt{}, ErrSideMismatch
	}

	fee := amountCents * e.feeBps / 10000
	net := amountCents - fee

	ref := "stake:" + uuid.NewString()
	if err := e.transport.Debit(ctx, userID, amountCents, ref); err != nil {
		return DepositReceipt{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	if st == nil {
		st = &stake{side: side}
		e.stakes[k] = st
	}
	st.participated = true
	st.netAmount += net
	if side == SideA {
		r.totalStakedA += net
	} else {
		r.totalStakedB += net
	}
	r.totalFees += fee

	return DepositReceipt{Round: e.currentRound, FeeCents: fee, NetCents: net}, nil
}

// CloseBetting encerra as apostas da rodada corrente. Idempotente: chamar de
// novo apenas limpa a flag já limpa.
func (e *Engine) CloseBetting() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rounds[e.currentRound].bettingOpen = false
	return e.currentRound
}

// Settle liquida a rodada corrente gravando o lado vencedor e um único
// multiplicador em ponto fixo — O(1), nenhum participante é visitado:
//
//	ratio = (W==0 || L==0) ? Scale : floor((W+L)*Scale/W)
//
// Não exige apostas fechadas antes, mas fecha ao liquidar: rodada liquidada
// congela, nenhum depósito entra depois do ratio calculado.
func (e *Engine) Settle(winning Side) (RoundInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.rounds[e.currentRound]
	if r.settled {
		return RoundInfo{}, ErrAlreadySettled
	}

	winners, losers := r.totalStakedA, r.totalStakedB
	if winning == SideB {
		winners, losers = losers, winners
	}

	ratio := new(big.Int).Set(Scale)
	if winners > 0 && losers > 0 {
		ratio.SetInt64(winners + losers)
		ratio.Mul(ratio, Scale)
		ratio.Quo(ratio, big.NewInt(winners))
	}

	r.bettingOpen = false
	r.settled = true
	r.winningSide = winning
	r.payoutRatio = ratio

	return e.roundInfoLocked(e.currentRound), nil
}

// StartNewRound abre a rodada seguinte. Só é permitido com a rodada anterior
// já liquidada.
func (e *Engine) StartNewRound() (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.rounds[e.currentRound].settled {
		return 0, ErrPrecedingRoundNotSettled
	}
	e.rounds[e.currentRound].bettingOpen = false
	e.currentRound++
	e.rounds[e.currentRound] = &round{bettingOpen: true}
	return e.currentRound, nil
}

// ClaimResult resume um saque bem-sucedido (prêmios ou taxas).
type ClaimResult struct {
	TotalCents int64
	Rounds     []int64 // rodadas efetivamente pagas, em ordem
	Watermark  int64
}

// ClaimAll varre o backlog de rodadas não sacadas do usuário, de watermark+1
// até a rodada corrente, e paga tudo numa única transferência.
//
// A varredura para na primeira rodada não liquidada: rodadas liquidam em
// ordem, então nada adiante está liquidado. O watermark avança até a última
// rodada realmente varrida (não até a rodada corrente), para que uma rodada
// que liquide depois ainda seja visitada no próximo saque.
//
// Falha de transferência desfaz marcas e watermark: nenhum efeito parcial.
func (e *Engine) ClaimAll(ctx context.Context, userID string) (ClaimResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prevWM := e.watermarks[userID]
	last := prevWM
	var total int64
	var paid []int64

	for n := prevWM + 1; n <= e.currentRound; n++ {
		r := e.rounds[n]
		if !r.settled {
			break
		}
		last = n
		st := e.stakes[stakeKey{round: n, user: userID}]
		if st == nil || st.claimed || st.netAmount == 0 {
			continue
		}
		if p := payout(st, r); p > 0 {
			total += p
			paid = append(paid, n)
		}
	}

	if total == 0 {
		return ClaimResult{}, ErrNothingToClaim
	}

	for _, n := range paid {
		e.stakes[stakeKey{round: n, user: userID}].claimed = true
	}
	e.watermarks[userID] = last

	ref := "claim:" + uuid.NewString()
	if err := e.transport.Credit(ctx, userID, total, ref); err != nil {
		for _, n := range paid {
			e.stakes[stakeKey{round: n, user: userID}].claimed = false
		}
		e.watermarks[userID] = prevWM
		return ClaimResult{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	return ClaimResult{TotalCents: total, Rounds: paid, Watermark: last}, nil
}

// WithdrawFees faz a mesma varredura preguiçosa sobre o watermark global de
// taxas e credita o total acumulado na conta do operador. Rodadas sem taxa
// são puladas sem quebrar a varredura.
func (e *Engine) WithdrawFees(ctx context.Context) (ClaimResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prevWM := e.feeWatermark
	last := prevWM
	var total int64
	var paid []int64

	for n := prevWM + 1; n <= e.currentRound; n++ {
		r := e.rounds[n]
		if !r.settled {
			break
		}
		last = n
		if r.feesClaimed || r.totalFees == 0 {
			continue
		}
		total += r.totalFees
		paid = append(paid, n)
	}

	if total == 0 {
		return ClaimResult{}, ErrNoFeesToWithdraw
	}

	for _, n := range paid {
		e.rounds[n].feesClaimed = true
	}
	e.feeWatermark = last

	ref := "fees:" + uuid.NewString()
	if err := e.transport.Credit(ctx, e.operatorAccount, total, ref); err != nil {
		for _, n := range paid {
			e.rounds[n].feesClaimed = false
		}
		e.feeWatermark = prevWM
		return ClaimResult{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	return ClaimResult{TotalCents: total, Rounds: paid, Watermark: last}, nil
}

// payout aplica a regra de pagamento de uma stake numa rodada liquidada.
// ratio == Scale cobre dois casos degenerados que exigem leituras distintas:
// pool unilateral (qualquer dos lados zerado) devolve a stake mesmo sem o
// usuário ter "vencido"; sem perdedores, vencedores recebem a própria stake.
func payout(st *stake, r *round) int64 {
	won := st.side == r.winningSide
	if r.payoutRatio.Cmp(Scale) == 0 {
		if r.totalStakedA == 0 || r.totalStakedB == 0 {
			return st.netAmount
		}
		if won {
			return st.netAmount
		}
		return 0
	}
	if !won {
		return 0
	}
	p := big.NewInt(st.netAmount)
	p.Mul(p, r.payoutRatio)
	p.Quo(p, Scale)
	return p.Int64()
}

// --- consultas ---

// RoundInfo é a visão read-only de uma rodada.
type RoundInfo struct {
	Round             int64
	BettingOpen       bool
	Settled           bool
	WinningSide       string // vazio até liquidar
	TotalStakedACents int64
	TotalStakedBCents int64
	TotalFeesCents    int64
	PayoutRatio       string // ponto fixo 1e18, decimal; vazio até liquidar
	FeesClaimed       bool
}

// StakeInfo é a visão read-only de uma stake (rodada, usuário).
type StakeInfo struct {
	Round        int64
	UserID       string
	NetCents     int64
	Side         string
	Participated bool
	Claimed      bool
}

// CurrentRound devolve o número da rodada corrente.
func (e *Engine) CurrentRound() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentRound
}

// FeeBps devolve a taxa de protocolo em basis points.
func (e *Engine) FeeBps() int64 { return e.feeBps }

// RoundInfo devolve a visão de uma rodada; ok=false se ela não existe.
func (e *Engine) RoundInfo(n int64) (RoundInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.rounds[n]; !exists {
		return RoundInfo{}, false
	}
	return e.roundInfoLocked(n), true
}

// StakeInfo devolve a stake de um usuário numa rodada; ok=false se não houver.
func (e *Engine) StakeInfo(n int64, userID string) (StakeInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, exists := e.stakes[stakeKey{round: n, user: userID}]
	if !exists {
		return StakeInfo{}, false
	}
	return StakeInfo{
		Round:        n,
		UserID:       userID,
		NetCents:     st.netAmount,
		Side:         string(st.side),
		Participated: st.participated,
		Claimed:      st.claimed,
	}, true
}

// Watermark devolve o cursor de saque do usuário.
func (e *Engine) Watermark(userID string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.watermarks[userID]
}

func (e *Engine) roundInfoLocked(n int64) RoundInfo {
	r := e.rounds[n]
	info := RoundInfo{
		Round:             n,
		BettingOpen:       r.bettingOpen,
		Settled:           r.settled,
		TotalStakedACents: r.totalStakedA,
		TotalStakedBCents: r.totalStakedB,
		TotalFeesCents:    r.totalFees,
		FeesClaimed:       r.feesClaimed,
	}
	if r.settled {
		info.WinningSide = string(r.winningSide)
		info.PayoutRatio = r.payoutRatio.String()
	}
	return info
}
