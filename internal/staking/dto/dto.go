package dto

type StakeRequest struct {
	Account      string `json:"account"`
	AmountMicros int64  `json:"amount_micros"`
}

type WithdrawRequest struct {
	Account      string `json:"account"`
	AmountMicros int64  `json:"amount_micros"`
}

type ClaimRequest struct {
	Account string `json:"account"`
}

type ClaimResponse struct {
	Account      string `json:"account"`
	RewardMicros int64  `json:"reward_micros"`
}

type FundRequest struct {
	Account      string `json:"account"`
	AmountMicros int64  `json:"amount_micros"`
}

type PositionResponse struct {
	Account         string `json:"account"`
	PrincipalMicros int64  `json:"principal_micros"`
	EarnedMicros    int64  `json:"earned_micros"`
}

type SetRewardRequest struct {
	RewardMicros int64 `json:"reward_micros"`
}

type SetDurationRequest struct {
	Duration string `json:"duration"` // formato time.ParseDuration, ex: "168h"
}
