package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

// memoryAnalysisRunRepository guarda o histórico em memória, usado quando não há banco
type memoryAnalysisRunRepository struct {
	mu   sync.RWMutex
	runs map[string]*domain.AnalysisResult
}

func NewMemoryAnalysisRunRepository() AnalysisRunRepository {
	return &memoryAnalysisRunRepository{
		runs: make(map[string]*domain.AnalysisResult),
	}
}

func (r *memoryAnalysisRunRepository) Save(_ context.Context, result *domain.AnalysisResult) error {
	if result == nil || result.ID == "" {
		return errMissingID
	}

	copied := *result
	r.mu.Lock()
	r.runs[result.ID] = &copied
	r.mu.Unlock()

	return nil
}

func (r *memoryAnalysisRunRepository) GetByID(_ context.Context, id string) (*domain.AnalysisResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.runs[id]
	if !ok {
		return nil, nil
	}
	copied := *result
	return &copied, nil
}

func (r *memoryAnalysisRunRepository) ListRecent(_ context.Context, limit int) ([]*domain.AnalysisRunSummary, error) {
	r.mu.RLock()
	runs := make([]*domain.AnalysisRunSummary, 0, len(r.runs))
	for _, result := range r.runs {
		runs = append(runs, summarize(result))
	}
	r.mu.RUnlock()

	sortRecent(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

func (r *memoryAnalysisRunRepository) DeleteOlderThan(_ context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, result := range r.runs {
		if result.StartedAt.Before(cutoff) {
			delete(r.runs, id)
			deleted++
		}
	}

	return deleted, nil
}

// sortRecent ordena do mais recente para o mais antigo; empate pelo ID
func sortRecent(runs []*domain.AnalysisRunSummary) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
}
