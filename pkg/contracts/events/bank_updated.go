package events

// Evento publicado a cada mutação da reserva da banca.
// A sequência completa desses eventos permite reconstruir o saldo.
type BankUpdated struct {
	Operation        string `json:"operation"` // "CREDIT" | "DEBIT"
	AmountMicros     int64  `json:"amount_micros"`
	NewBalanceMicros int64  `json:"new_balance_micros"`
	Reason           string `json:"reason"` // "fee" | "deposit" | "payout" | "owner_withdraw"
	Ref              string `json:"ref,omitempty"`
	TsUnixMs         int64  `json:"ts_unix_ms"`
}
