package tier

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Registry consulta o tier atual de uma conta. O registro em si é um
// colaborador externo; aqui só existe a leitura.
type Registry interface {
	TierOf(ctx context.Context, account string) (Tier, error)
}

// RedisRegistry lê o tier da chave "tier:{account}".
// Chave ausente significa conta sem tier.
type RedisRegistry struct {
	Rdb *redis.Client
}

func NewRedisRegistry(r *redis.Client) *RedisRegistry { return &RedisRegistry{Rdb: r} }

func (r *RedisRegistry) TierOf(ctx context.Context, account string) (Tier, error) {
	val, err := r.Rdb.Get(ctx, fmt.Sprintf("tier:%s", account)).Result()
	if errors.Is(err, redis.Nil) {
		return None, nil
	}
	if err != nil {
		return None, fmt.Errorf("tier lookup: %w", err)
	}
	return ParseTier(val), nil
}

// StaticRegistry serve para testes e execução local sem Redis.
type StaticRegistry struct {
	Tiers map[string]Tier
}

func NewStaticRegistry(tiers map[string]Tier) *StaticRegistry {
	if tiers == nil {
		tiers = make(map[string]Tier)
	}
	return &StaticRegistry{Tiers: tiers}
}

func (s *StaticRegistry) TierOf(_ context.Context, account string) (Tier, error) {
	return s.Tiers[account], nil
}

func (s *StaticRegistry) Set(account string, t Tier) { s.Tiers[account] = t }
