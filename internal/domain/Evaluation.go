package domain

// Pesos padrão da avaliação
const (
	DefaultCompletenessWeight     = 0.6
	DefaultCoverageWeight         = 0.3
	DefaultDataAvailabilityWeight = 0.1
)

// EvaluationWeights define a contribuição de cada critério para a nota final
type EvaluationWeights struct {
	Completeness     float64 `json:"completeness" mapstructure:"evaluator_completeness_weight" validate:"gte=0"`
	Coverage         float64 `json:"coverage" mapstructure:"evaluator_coverage_weight" validate:"gte=0"`
	DataAvailability float64 `json:"data_availability" mapstructure:"evaluator_data_availability_weight" validate:"gte=0"`
}

func DefaultWeights() EvaluationWeights {
	return EvaluationWeights{
		Completeness:     DefaultCompletenessWeight,
		Coverage:         DefaultCoverageWeight,
		DataAvailability: DefaultDataAvailabilityWeight,
	}
}

func (w EvaluationWeights) Total() float64 {
	return w.Completeness + w.Coverage + w.DataAvailability
}

// Evaluation é o resultado da avaliação de um mapeamento de insights
type Evaluation struct {
	Score            float64           `json:"score"`
	Completeness     float64           `json:"completeness"`
	Coverage         float64           `json:"coverage"`
	DataAvailability float64           `json:"data_availability"`
	Weights          EvaluationWeights `json:"weights"`
}
