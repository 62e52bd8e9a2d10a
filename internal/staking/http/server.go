package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/miraklik/casino-settlement/internal/staking"
	"github.com/miraklik/casino-settlement/internal/staking/dto"
)

// Server expõe a API do ledger de staking.
type Server struct {
	log        *zap.Logger
	pool       *staking.Pool
	ownerID    string
	ownerToken string
}

func NewServer(log *zap.Logger, pool *staking.Pool, ownerID, ownerToken string) *Server {
	return &Server{log: log, pool: pool, ownerID: ownerID, ownerToken: ownerToken}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/staking/stake", s.stake)             // POST
	mux.HandleFunc("/staking/withdraw", s.withdraw)       // POST
	mux.HandleFunc("/staking/claim", s.claim)             // POST
	mux.HandleFunc("/staking/fund", s.fund)               // POST
	mux.HandleFunc("/staking/position", s.position)       // GET ?account=...
	mux.HandleFunc("/staking/admin/reward", s.setReward)  // POST (owner)
	mux.HandleFunc("/staking/admin/duration", s.setDuration) // POST (owner)
	return mux
}

func (s *Server) stake(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Account == "" || req.AmountMicros <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.pool.Stake(r.Context(), req.Account, req.AmountMicros); err != nil {
		s.writePoolError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"OK"}`))
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Account == "" || req.AmountMicros <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.pool.Withdraw(r.Context(), req.Account, req.AmountMicros); err != nil {
		s.writePoolError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"OK"}`))
}

func (s *Server) claim(w http.ResponseWriter, r *http.Request) {
	var req dto.ClaimRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Account == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	reward, err := s.pool.Claim(r.Context(), req.Account)
	if err != nil {
		s.writePoolError(w, err)
		return
	}
	writeJSON(w, dto.ClaimResponse{Account: req.Account, RewardMicros: reward})
}

func (s *Server) fund(w http.ResponseWriter, r *http.Request) {
	var req dto.FundRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Account == "" || req.AmountMicros <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.pool.Fund(r.Context(), req.Account, req.AmountMicros); err != nil {
		s.writePoolError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"OK"}`))
}

func (s *Server) position(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	account := r.URL.Query().Get("account")
	if account == "" {
		http.Error(w, "account required", http.StatusBadRequest)
		return
	}
	pos := s.pool.PositionOf(account)
	writeJSON(w, dto.PositionResponse{
		Account:         account,
		PrincipalMicros: pos.PrincipalMicros,
		EarnedMicros:    pos.EarnedMicros,
	})
}

func (s *Server) setReward(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeOwner(w, r) {
		return
	}
	var req dto.SetRewardRequest
	if !decodePost(w, r, &req) {
		return
	}
	if err := s.pool.SetRewardPeriod(s.ownerID, req.RewardMicros); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"OK"}`))
}

func (s *Server) setDuration(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeOwner(w, r) {
		return
	}
	var req dto.SetDurationRequest
	if !decodePost(w, r, &req) {
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		http.Error(w, "invalid duration", http.StatusBadRequest)
		return
	}
	if err := s.pool.SetPeriodDuration(s.ownerID, d); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"OK"}`))
}

func (s *Server) authorizeOwner(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("X-Owner-Token") != s.ownerToken {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (s *Server) writePoolError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, staking.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, staking.ErrExceedsPrincipal),
		errors.Is(err, staking.ErrInsufficientRewardFunds):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		s.log.Error("staking op", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func decodePost(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
