package dto

// Valores monetários sempre em micros (1 unidade = 1_000_000).

type PlaceCoinflipRequest struct {
	Bettor      string `json:"bettor"`
	StakeMicros int64  `json:"stake_micros"`
	Guess       int    `json:"guess"` // 0 ou 1
}

type PlaceRouletteRequest struct {
	Bettor      string `json:"bettor"`
	StakeMicros int64  `json:"stake_micros"`
	Number      *int   `json:"number,omitempty"` // 0..36
	Color       string `json:"color,omitempty"`  // "red" | "black"
	Even        bool   `json:"even,omitempty"`
	Odd         bool   `json:"odd,omitempty"`
	Zero        bool   `json:"zero,omitempty"`
}

type DepositRequest struct {
	Account      string `json:"account"`
	AmountMicros int64  `json:"amount_micros"`
}

type WithdrawReserveRequest struct {
	To           string `json:"to"`
	AmountMicros int64  `json:"amount_micros"`
}

type SetLimitsRequest struct {
	MinBetMicros int64 `json:"min_bet_micros"`
	MaxBetMicros int64 `json:"max_bet_micros"`
}

type SetFeeRequest struct {
	BaseFeeRate int64 `json:"base_fee_rate"`
}
