package domain

import "time"

// Estágios do pipeline de análise
const (
	StagePlan     = "plan"
	StageLoad     = "load"
	StageInsights = "insights"
	StageRender   = "render"
	StageEvaluate = "evaluate"
	StagePersist  = "persist"
)

// AnalysisRequest é a entrada de uma execução
type AnalysisRequest struct {
	Task   string
	Source DataSource
}

// Summary é o texto renderizado e as recomendações que o compõem
type Summary struct {
	Report          string   `json:"report"`
	Recommendations []string `json:"recommendations"`
}

// StageError registra uma falha não fatal de um estágio
type StageError struct {
	Stage  string `json:"stage"`
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
}

// AnalysisResult é o agregado final de uma execução
type AnalysisResult struct {
	ID              string       `json:"id"`
	Task            string       `json:"task"`
	Source          string       `json:"source"`
	Plan            []string     `json:"plan"`
	Insights        Insights     `json:"insights"`
	Report          string       `json:"report"`
	Recommendations []string     `json:"recommendations"`
	Evaluation      *Evaluation  `json:"evaluation,omitempty"`
	Score           float64      `json:"score"`
	Load            LoadSummary  `json:"load"`
	Errors          []StageError `json:"errors,omitempty"`
	StartedAt       time.Time    `json:"started_at"`
	DurationMs      int64        `json:"duration_ms"`
}

func (r *AnalysisResult) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// AnalysisRunSummary é a visão resumida de uma execução persistida
type AnalysisRunSummary struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	Source    string    `json:"source"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
