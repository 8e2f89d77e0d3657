package topics

const (
	// Ledger
	StakePlaced     = "stake_placed"
	RoundSettled    = "round_settled"
	WinningsClaimed = "winnings_claimed"
	FeesWithdrawn   = "fees_withdrawn"
)
