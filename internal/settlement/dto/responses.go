package dto

type PlaceBetResponse struct {
	RequestID      string `json:"request_id"`
	Status         string `json:"status"` // sempre "PENDING_RESOLUTION"
	FeeMicros      int64  `json:"fee_micros"`
	CashbackMicros int64  `json:"cashback_micros"`
	NetStakeMicros int64  `json:"net_stake_micros"`
}

type BankResponse struct {
	BalanceMicros int64 `json:"balance_micros"`
}

type PendingResponse struct {
	Count int `json:"count"`
}

type ParamsResponse struct {
	MinBetMicros int64 `json:"min_bet_micros"`
	MaxBetMicros int64 `json:"max_bet_micros"`
	BaseFeeRate  int64 `json:"base_fee_rate"`
}
