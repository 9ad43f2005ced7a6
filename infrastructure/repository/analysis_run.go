package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/vfg2006/marketing-analyst/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-analyst/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	analysisRunsTable = "analysis_runs"
)

// AnalysisRunRepository persiste o histórico de execuções de análise
type AnalysisRunRepository interface {
	Save(ctx context.Context, result *domain.AnalysisResult) error
	GetByID(ctx context.Context, id string) (*domain.AnalysisResult, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisRunSummary, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

type analysisRunRepository struct {
	conn postgres.Queryer
}

func NewAnalysisRunRepository(conn postgres.Queryer) AnalysisRunRepository {
	return &analysisRunRepository{
		conn: conn,
	}
}

func buildSaveQuery(result *domain.AnalysisResult) (string, []interface{}, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", nil, fmt.Errorf("erro ao serializar resultado para JSON: %w", err)
	}

	return squirrel.StatementBuilder.
		Insert(analysisRunsTable).
		Columns("id", "task", "source", "score", "result", "created_at").
		Values(result.ID, result.Task, result.Source, result.Score, payload, result.StartedAt).
		Suffix(`
			ON CONFLICT (id) DO UPDATE SET
				task = EXCLUDED.task,
				source = EXCLUDED.source,
				score = EXCLUDED.score,
				result = EXCLUDED.result
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func buildGetByIDQuery(id string) (string, []interface{}, error) {
	return squirrel.
		Select("result").
		From(analysisRunsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func buildListRecentQuery(limit int) (string, []interface{}, error) {
	return squirrel.
		Select("id", "task", "source", "score", "created_at").
		From(analysisRunsTable).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func buildDeleteOlderThanQuery(cutoff time.Time) (string, []interface{}, error) {
	return squirrel.
		Delete(analysisRunsTable).
		Where(squirrel.Lt{"created_at": cutoff}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func (r *analysisRunRepository) Save(ctx context.Context, result *domain.AnalysisResult) error {
	if result == nil || result.ID == "" {
		return errMissingID
	}

	query, args, err := buildSaveQuery(result)
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err = r.conn.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *analysisRunRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	query, args, err := buildGetByIDQuery(id)
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var payload []byte
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear execução: %w", err)
	}

	result := &domain.AnalysisResult{}
	if err := json.Unmarshal(payload, result); err != nil {
		return nil, fmt.Errorf("erro ao deserializar resultado: %w", err)
	}

	return result, nil
}

func (r *analysisRunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisRunSummary, error) {
	query, args, err := buildListRecentQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	runs := make([]*domain.AnalysisRunSummary, 0)
	for rows.Next() {
		run := &domain.AnalysisRunSummary{}
		if err := rows.Scan(&run.ID, &run.Task, &run.Source, &run.Score, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear execução: %w", err)
		}
		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return runs, nil
}

func (r *analysisRunRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	query, args, err := buildDeleteOlderThanQuery(time.Now().AddDate(0, 0, -days))
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	return res.RowsAffected()
}

// summarize gera a visão resumida usada pelas implementações sem SQL
func summarize(result *domain.AnalysisResult) *domain.AnalysisRunSummary {
	return &domain.AnalysisRunSummary{
		ID:        result.ID,
		Task:      result.Task,
		Source:    result.Source,
		Score:     result.Score,
		CreatedAt: result.StartedAt,
	}
}
