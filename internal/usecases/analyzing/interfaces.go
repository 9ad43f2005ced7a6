package analyzing

import (
	"context"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

// Planner monta o plano de etapas
type Planner interface {
	// ResolveTask retorna a tarefa efetiva, aplicando a tarefa padrão quando vazia
	ResolveTask(task string) string
	BuildPlan(task string) []string
}

// Loader carrega o dataset de anúncios
type Loader interface {
	Load(ctx context.Context, src domain.DataSource) (*domain.AdTable, error)
}

// Computer calcula o mapeamento de insights
type Computer interface {
	Compute(ctx context.Context, table *domain.AdTable) (domain.Insights, error)
}

// Renderer produz o relatório textual
type Renderer interface {
	Render(insights domain.Insights, plan []string) (*domain.Summary, error)
}

// Evaluator atribui a nota ao mapeamento de insights
type Evaluator interface {
	Evaluate(insights domain.Insights) (*domain.Evaluation, error)
}

// Analyzer executa o pipeline completo
type Analyzer interface {
	Run(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

// History consulta e mantém o histórico de execuções
type History interface {
	ListRuns(ctx context.Context, limit int) ([]*domain.AnalysisRunSummary, error)
	GetRun(ctx context.Context, id string) (*domain.AnalysisResult, error)
	PruneRuns(ctx context.Context, days int) (int64, error)
}

// AnalyzerWithHistory é a interface completa usada pela API e pelo agendador
type AnalyzerWithHistory interface {
	Analyzer
	History
}
