package events

// Evento publicado pelo settlement-service após resolver uma aposta.
type BetResolved struct {
	RequestID      string `json:"request_id"`
	Bettor         string `json:"bettor"`
	Game           string `json:"game"`
	NetStakeMicros int64  `json:"net_stake_micros"`
	Outcome        int    `json:"outcome"` // 0..1 (coinflip) ou 0..36 (roleta)
	Won            bool   `json:"won"`
	PayoutMicros   int64  `json:"payout_micros"`
	TsUnixMs       int64  `json:"ts_unix_ms"`
}
