package evaluating

import (
	"errors"
	"math"

	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/pkg/utils"
)

const MaxScore = 100.0

var (
	errNilInsights    = errors.New("insights mapping is nil")
	errInvalidWeights = errors.New("evaluation weights must sum to a positive value")
)

type Evaluator interface {
	Evaluate(insights domain.Insights) (*domain.Evaluation, error)
}

type Service struct {
	weights domain.EvaluationWeights
}

func NewService(weights domain.EvaluationWeights) Evaluator {
	return &Service{weights: weights}
}

// Evaluate calcula a nota: soma ponderada de completude, cobertura e disponibilidade,
// normalizada pelo total dos pesos
func (s *Service) Evaluate(insights domain.Insights) (*domain.Evaluation, error) {
	if insights == nil {
		return nil, &domain.EvalError{Err: errNilInsights}
	}

	total := s.weights.Total()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, &domain.EvalError{Err: errInvalidWeights}
	}

	completeness := fraction(insights, domain.StandardKeys)
	coverage := fraction(insights, domain.BestKeys)

	availability := 0.0
	if rows, ok := insights.Number(domain.KeyRowsProcessed); ok && rows > 0 {
		availability = 1.0
	}

	weighted := s.weights.Completeness*completeness +
		s.weights.Coverage*coverage +
		s.weights.DataAvailability*availability

	score := MaxScore * weighted / total
	score = math.Max(0, math.Min(MaxScore, score))

	return &domain.Evaluation{
		Score:            utils.RoundWithTwoDecimalPlace(score),
		Completeness:     completeness,
		Coverage:         coverage,
		DataAvailability: availability,
		Weights:          s.weights,
	}, nil
}

func fraction(insights domain.Insights, keys []string) float64 {
	present := 0
	for _, key := range keys {
		if insights.Has(key) {
			present++
		}
	}
	return float64(present) / float64(len(keys))
}
