package events

// RandomnessRequested é publicado pelo settlement-service ao aceitar uma aposta.
// O oráculo (ou o simulador) consome e responde com RandomnessFulfilled.
type RandomnessRequested struct {
	RequestID string `json:"request_id"`
	TsUnixMs  int64  `json:"ts_unix_ms"`
}

// RandomnessFulfilled carrega o valor sorteado e a identidade do oráculo.
// O consumidor de resolução rejeita mensagens cujo OracleID não bate
// com o configurado.
type RandomnessFulfilled struct {
	RequestID   string `json:"request_id"`
	RandomValue uint64 `json:"random_value"`
	OracleID    string `json:"oracle_id"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
