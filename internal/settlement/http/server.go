package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/internal/bank"
	"github.com/miraklik/casino-settlement/internal/settlement"
	"github.com/miraklik/casino-settlement/internal/settlement/dto"
	"github.com/miraklik/casino-settlement/internal/wager"
)

// Server expõe a API pública do settlement: apostas, banca e configuração.
type Server struct {
	log        *zap.Logger
	engine     *settlement.Engine
	ownerID    string
	ownerToken string
}

func NewServer(log *zap.Logger, engine *settlement.Engine, ownerID, ownerToken string) *Server {
	return &Server{log: log, engine: engine, ownerID: ownerID, ownerToken: ownerToken}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets/coinflip", s.placeCoinflip)  // POST
	mux.HandleFunc("/bets/roulette", s.placeRoulette)  // POST
	mux.HandleFunc("/bets/pending", s.pending)         // GET
	mux.HandleFunc("/bank", s.bankBalance)             // GET
	mux.HandleFunc("/bank/deposit", s.deposit)         // POST
	mux.HandleFunc("/admin/limits", s.setLimits)       // POST (owner)
	mux.HandleFunc("/admin/fee", s.setFee)             // POST (owner)
	mux.HandleFunc("/admin/withdraw", s.withdraw)      // POST (owner)
	mux.HandleFunc("/admin/params", s.params)          // GET (owner)
	return mux
}

func (s *Server) placeCoinflip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlaceCoinflipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Bettor == "" || req.StakeMicros <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	res, err := s.engine.Accept(r.Context(), req.Bettor, req.StakeMicros, wager.Selection{
		Game:  wager.GameCoinflip,
		Guess: req.Guess,
	})
	if err != nil {
		s.writeAcceptError(w, err)
		return
	}
	writeJSON(w, acceptResponse(res))
}

func (s *Server) placeRoulette(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlaceRouletteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Bettor == "" || req.StakeMicros <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	sel := wager.Selection{
		Game:  wager.GameRoulette,
		Color: wager.Color(req.Color),
		Even:  req.Even,
		Odd:   req.Odd,
		Zero:  req.Zero,
	}
	if req.Number != nil {
		sel.HasNumber = true
		sel.Number = *req.Number
	}

	res, err := s.engine.Accept(r.Context(), req.Bettor, req.StakeMicros, sel)
	if err != nil {
		s.writeAcceptError(w, err)
		return
	}
	writeJSON(w, acceptResponse(res))
}

func (s *Server) pending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n, err := s.engine.PendingCount(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.PendingResponse{Count: n})
}

func (s *Server) bankBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, dto.BankResponse{BalanceMicros: s.engine.BankBalance()})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Account == "" || req.AmountMicros <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	balance, err := s.engine.Deposit(r.Context(), req.Account, req.AmountMicros)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, dto.BankResponse{BalanceMicros: balance})
}

func (s *Server) setLimits(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeOwner(w, r) {
		return
	}
	var req dto.SetLimitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.engine.SetBetLimits(s.ownerID, req.MinBetMicros, req.MaxBetMicros); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"OK"}`))
}

func (s *Server) setFee(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeOwner(w, r) {
		return
	}
	var req dto.SetFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.engine.SetBaseFeeRate(s.ownerID, req.BaseFeeRate); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"OK"}`))
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeOwner(w, r) {
		return
	}
	var req dto.WithdrawReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.To == "" || req.AmountMicros <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	balance, err := s.engine.WithdrawReserve(r.Context(), s.ownerID, req.To, req.AmountMicros)
	if err != nil {
		if errors.Is(err, bank.ErrInsolvent) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.BankResponse{BalanceMicros: balance})
}

func (s *Server) params(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeOwner(w, r) {
		return
	}
	p := s.engine.Params()
	writeJSON(w, dto.ParamsResponse{
		MinBetMicros: p.MinBetMicros,
		MaxBetMicros: p.MaxBetMicros,
		BaseFeeRate:  p.BaseFeeRate,
	})
}

// authorizeOwner compara o X-Owner-Token; o engine ainda re-checa o
// principal em toda operação gated.
func (s *Server) authorizeOwner(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("X-Owner-Token") != s.ownerToken {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// writeAcceptError traduz a taxonomia de erros do engine pra HTTP.
func (s *Server) writeAcceptError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settlement.ErrBetBelowMinimum),
		errors.Is(err, settlement.ErrBetAboveLimit),
		errors.Is(err, settlement.ErrInvalidGuess),
		errors.Is(err, settlement.ErrNumberOutOfRange),
		errors.Is(err, settlement.ErrInvalidColor),
		errors.Is(err, settlement.ErrConflictingParity),
		errors.Is(err, settlement.ErrColorWithZero),
		errors.Is(err, settlement.ErrEmptySelection),
		errors.Is(err, settlement.ErrUnknownGame):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("accept bet", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func acceptResponse(res *settlement.AcceptResult) dto.PlaceBetResponse {
	return dto.PlaceBetResponse{
		RequestID:      res.RequestID,
		Status:         "PENDING_RESOLUTION",
		FeeMicros:      res.FeeMicros,
		CashbackMicros: res.CashbackMicros,
		NetStakeMicros: res.NetStakeMicros,
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
