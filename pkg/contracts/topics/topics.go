package topics

const (
	// Oráculo de aleatoriedade
	RandomnessRequested = "randomness_requested"
	RandomnessFulfilled = "randomness_fulfilled"

	// Apostas
	BetAccepted = "bet_accepted"
	BetResolved = "bet_resolved"

	// Banca
	BankUpdated = "bank_updated"

	// Staking
	Staked     = "staked"
	Withdrawn  = "withdrawn"
	RewardPaid = "reward_paid"

	// DLQs
	RandomnessFulfilledDLQ = "randomness_fulfilled_dlq"
)
