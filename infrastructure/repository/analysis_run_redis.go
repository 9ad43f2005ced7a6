package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

const (
	redisRunKeyPrefix = "analysis:run:"
	redisRunIndexKey  = "analysis:runs"
)

var errMissingID = errors.New("resultado sem ID")

// redisAnalysisRunRepository guarda cada resultado como JSON e um índice ordenado pela data
type redisAnalysisRunRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAnalysisRunRepository cria o repositório; ttl zero mantém as chaves sem expiração
func NewRedisAnalysisRunRepository(client *redis.Client, ttl time.Duration) AnalysisRunRepository {
	return &redisAnalysisRunRepository{
		client: client,
		ttl:    ttl,
	}
}

func runKey(id string) string {
	return redisRunKeyPrefix + id
}

func (r *redisAnalysisRunRepository) Save(ctx context.Context, result *domain.AnalysisResult) error {
	if result == nil || result.ID == "" {
		return errMissingID
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("erro ao serializar resultado para JSON: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, runKey(result.ID), payload, r.ttl)
	pipe.ZAdd(ctx, redisRunIndexKey, redis.Z{
		Score:  float64(result.StartedAt.UnixMilli()),
		Member: result.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("erro ao salvar execução no redis: %w", err)
	}

	return nil
}

func (r *redisAnalysisRunRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	payload, err := r.client.Get(ctx, runKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar execução no redis: %w", err)
	}

	result := &domain.AnalysisResult{}
	if err := json.Unmarshal(payload, result); err != nil {
		return nil, fmt.Errorf("erro ao deserializar resultado: %w", err)
	}

	return result, nil
}

// ListRecent percorre o índice em páginas até juntar limit execuções vivas.
// IDs cujas chaves expiraram são removidos do índice ao final.
func (r *redisAnalysisRunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisRunSummary, error) {
	page := int64(limit)
	if limit <= 0 {
		page = -1
	}

	runs := make([]*domain.AnalysisRunSummary, 0)
	var expired []interface{}

scan:
	for start := int64(0); ; start += page {
		stop := int64(-1)
		if page > 0 {
			stop = start + page - 1
		}

		ids, err := r.client.ZRevRange(ctx, redisRunIndexKey, start, stop).Result()
		if err != nil {
			return nil, fmt.Errorf("erro ao listar execuções no redis: %w", err)
		}

		for _, id := range ids {
			result, err := r.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if result == nil {
				expired = append(expired, id)
				continue
			}
			runs = append(runs, summarize(result))
			if limit > 0 && len(runs) == limit {
				break scan
			}
		}

		if page < 0 || int64(len(ids)) < page {
			break
		}
	}

	if len(expired) > 0 {
		if err := r.client.ZRem(ctx, redisRunIndexKey, expired...).Err(); err != nil {
			return nil, fmt.Errorf("erro ao limpar índice de execuções no redis: %w", err)
		}
	}

	sortRecent(runs)
	return runs, nil
}

func (r *redisAnalysisRunRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days).UnixMilli()
	upper := "(" + strconv.FormatInt(cutoff, 10)

	ids, err := r.client.ZRangeByScore(ctx, redisRunIndexKey, &redis.ZRangeBy{Min: "-inf", Max: upper}).Result()
	if err != nil {
		return 0, fmt.Errorf("erro ao buscar execuções antigas no redis: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids))
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, runKey(id))
		members = append(members, id)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, redisRunIndexKey, members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("erro ao remover execuções antigas no redis: %w", err)
	}

	return int64(len(ids)), nil
}
