package analyzing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/marketing-analyst/infrastructure/repository"
	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/internal/observability"
	"github.com/vfg2006/marketing-analyst/pkg/log"
	"github.com/vfg2006/marketing-analyst/pkg/utils"
)

// DefaultListLimit é usado quando nenhum limite é informado
const DefaultListLimit = 20

// Service coordena plano, carga, insights, relatório e avaliação
type Service struct {
	planner   Planner
	loader    Loader
	computer  Computer
	renderer  Renderer
	evaluator Evaluator
	history   repository.AnalysisRunRepository
}

func NewService(
	planner Planner,
	loader Loader,
	computer Computer,
	renderer Renderer,
	evaluator Evaluator,
) AnalyzerWithHistory {
	return &Service{
		planner:   planner,
		loader:    loader,
		computer:  computer,
		renderer:  renderer,
		evaluator: evaluator,
	}
}

// WithHistory habilita a persistência de cada resultado
func (s *Service) WithHistory(repo repository.AnalysisRunRepository) *Service {
	s.history = repo
	return s
}

// Run executa o pipeline. Só a falha de carga é fatal; as demais viram StageError no resultado.
func (s *Service) Run(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	ctx, correlationID := log.WithCorrelationID(ctx)
	started := time.Now()

	id, err := utils.GenerateID()
	if err != nil {
		id = correlationID
	}

	logger := logrus.WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"run_id":         id,
		"source":         req.Source.Label(),
	})

	task := s.planner.ResolveTask(req.Task)
	result := &domain.AnalysisResult{
		ID:              id,
		Task:            task,
		Source:          req.Source.Label(),
		Plan:            s.planner.BuildPlan(task),
		Insights:        domain.Insights{},
		Recommendations: []string{},
		StartedAt:       started.UTC(),
	}

	table, err := s.loader.Load(ctx, req.Source)
	if err != nil {
		observability.AnalysisRuns.WithLabelValues(observability.StatusFailed).Inc()
		logger.WithError(err).Error("Falha ao carregar dataset, análise abortada")
		return nil, err
	}
	result.Load = table.Summary()
	observability.DroppedRows.Add(float64(table.DroppedRows))

	insights, err := guard(domain.StageInsights, func() (domain.Insights, error) {
		return s.computer.Compute(ctx, table)
	})
	result.Errors = append(result.Errors, stageErrors(domain.StageInsights, err)...)
	if insights != nil {
		result.Insights = insights
	}

	summary, err := guard(domain.StageRender, func() (*domain.Summary, error) {
		return s.renderer.Render(insights, result.Plan)
	})
	result.Errors = append(result.Errors, stageErrors(domain.StageRender, err)...)
	if summary != nil {
		result.Report = summary.Report
		if summary.Recommendations != nil {
			result.Recommendations = summary.Recommendations
		}
	}

	evaluation, err := guard(domain.StageEvaluate, func() (*domain.Evaluation, error) {
		return s.evaluator.Evaluate(insights)
	})
	result.Errors = append(result.Errors, stageErrors(domain.StageEvaluate, err)...)
	if evaluation != nil {
		result.Evaluation = evaluation
		result.Score = evaluation.Score
	}

	result.DurationMs = time.Since(started).Milliseconds()

	s.persist(ctx, logger, result)
	s.record(result, time.Since(started))

	logger.WithFields(logrus.Fields{
		"score":       result.Score,
		"errors":      len(result.Errors),
		"duration_ms": result.DurationMs,
	}).Info("Análise concluída")

	return result, nil
}

// ListRuns retorna as execuções mais recentes do histórico
func (s *Service) ListRuns(ctx context.Context, limit int) ([]*domain.AnalysisRunSummary, error) {
	if s.history == nil {
		return []*domain.AnalysisRunSummary{}, nil
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.history.ListRecent(ctx, limit)
}

// GetRun busca uma execução pelo ID
func (s *Service) GetRun(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	if s.history == nil {
		return nil, domain.ErrRunNotFound
	}

	result, err := s.history.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, domain.ErrRunNotFound
	}
	return result, nil
}

// PruneRuns remove execuções mais antigas que o número de dias
func (s *Service) PruneRuns(ctx context.Context, days int) (int64, error) {
	if s.history == nil || days <= 0 {
		return 0, nil
	}
	return s.history.DeleteOlderThan(ctx, days)
}

func (s *Service) persist(ctx context.Context, logger *logrus.Entry, result *domain.AnalysisResult) {
	if s.history == nil {
		return
	}

	if err := s.history.Save(ctx, result); err != nil {
		logger.WithError(err).Warn("Erro ao salvar execução no histórico")
	}
}

func (s *Service) record(result *domain.AnalysisResult, elapsed time.Duration) {
	status := observability.StatusOK
	if result.HasErrors() {
		status = observability.StatusPartial
	}

	observability.AnalysisRuns.WithLabelValues(status).Inc()
	observability.AnalysisDuration.Observe(elapsed.Seconds())
	observability.LastScore.Set(result.Score)

	for _, e := range result.Errors {
		if e.Stage == domain.StageInsights && e.Key != "" {
			observability.InsufficientData.WithLabelValues(e.Key).Inc()
		}
	}
}

// guard executa um estágio convertendo panic em erro
func guard[T any](stage string, fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s stage: %v", stage, r)
		}
	}()
	return fn()
}

// stageErrors converte o erro de um estágio em registros individuais
func stageErrors(stage string, err error) []domain.StageError {
	var out []domain.StageError
	for _, e := range domain.SplitErrors(err) {
		var insufficient *domain.InsufficientDataError
		if errors.As(e, &insufficient) {
			out = append(out, domain.StageError{Stage: stage, Key: insufficient.Key, Reason: insufficient.Reason})
			continue
		}
		out = append(out, domain.StageError{Stage: stage, Reason: e.Error()})
	}
	return out
}
