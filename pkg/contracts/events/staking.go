package events

// Eventos do ledger de staking.
type Staked struct {
	Account      string `json:"account"`
	AmountMicros int64  `json:"amount_micros"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}

type Withdrawn struct {
	Account      string `json:"account"`
	AmountMicros int64  `json:"amount_micros"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}

type RewardPaid struct {
	Account      string `json:"account"`
	AmountMicros int64  `json:"amount_micros"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
