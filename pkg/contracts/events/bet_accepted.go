package events

// Evento publicado pelo settlement-service ao aceitar uma aposta.
// Valores monetários em micros (1 unidade = 1_000_000).
type BetAccepted struct {
	RequestID      string `json:"request_id"`
	Bettor         string `json:"bettor"`
	Game           string `json:"game"` // "coinflip" | "roulette"
	StakeMicros    int64  `json:"stake_micros"`
	FeeMicros      int64  `json:"fee_micros"`
	CashbackMicros int64  `json:"cashback_micros"`
	NetStakeMicros int64  `json:"net_stake_micros"`
	TsUnixMs       int64  `json:"ts_unix_ms"`
}
