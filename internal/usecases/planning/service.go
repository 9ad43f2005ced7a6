package planning

import (
	"slices"
	"strings"
)

// DefaultTask é usada quando nenhuma tarefa é informada
const DefaultTask = "Analyze recent sales and propose improvements"

const SalesSegmentStep = "3b. Segment sales by product, time and region"

var baseSteps = []string{
	"1. Understand task and define subgoals",
	"2. Collect and load relevant data",
	"3. Clean and preprocess data",
	"4. Analyze data and compute metrics",
	"5. Generate insights and recommendations",
	"6. Create final deliverable (summary/report)",
}

type Planner interface {
	ResolveTask(task string) string
	BuildPlan(task string) []string
}

type Service struct {
	defaultTask string
}

func NewService(defaultTask string) Planner {
	if strings.TrimSpace(defaultTask) == "" {
		defaultTask = DefaultTask
	}
	return &Service{defaultTask: defaultTask}
}

func (s *Service) ResolveTask(task string) string {
	if strings.TrimSpace(task) == "" {
		return s.defaultTask
	}
	return strings.TrimSpace(task)
}

// BuildPlan retorna a lista ordenada de etapas. Sempre contém as seis etapas base.
func (s *Service) BuildPlan(task string) []string {
	plan := slices.Clone(baseSteps)

	if strings.Contains(strings.ToLower(s.ResolveTask(task)), "sales") {
		plan = slices.Insert(plan, 3, SalesSegmentStep)
	}

	return plan
}
