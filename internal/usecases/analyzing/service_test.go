package analyzing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	repomocks "github.com/vfg2006/marketing-analyst/infrastructure/repository/mocks"
	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/internal/usecases/analyzing/mocks"
)

type fixture struct {
	planner   *mocks.MockPlanner
	loader    *mocks.MockLoader
	computer  *mocks.MockComputer
	renderer  *mocks.MockRenderer
	evaluator *mocks.MockEvaluator
	history   *repomocks.MockAnalysisRunRepository
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		planner:   mocks.NewMockPlanner(ctrl),
		loader:    mocks.NewMockLoader(ctrl),
		computer:  mocks.NewMockComputer(ctrl),
		renderer:  mocks.NewMockRenderer(ctrl),
		evaluator: mocks.NewMockEvaluator(ctrl),
		history:   repomocks.NewMockAnalysisRunRepository(ctrl),
	}
	f.service = NewService(f.planner, f.loader, f.computer, f.renderer, f.evaluator).(*Service)
	return f
}

var (
	testPlan   = []string{"1. Understand task and define subgoals"}
	testSource = domain.DataSource{Path: "ads.csv"}
	testTable  = &domain.AdTable{Source: "ads.csv", Records: []domain.AdRecord{{}}, DroppedRows: 1}
)

func (f *fixture) expectPlan() {
	f.planner.EXPECT().ResolveTask("task").Return("task")
	f.planner.EXPECT().BuildPlan("task").Return(testPlan)
}

func TestService_Run(t *testing.T) {
	insights := domain.Insights{domain.KeyTotalSpend: domain.Currency(300)}
	missingCTR := &domain.InsufficientDataError{Key: domain.KeyAverageCTR, Reason: "no rows with a defined ctr"}

	tests := []struct {
		name     string
		setup    func(f *fixture)
		validate func(t *testing.T, result *domain.AnalysisResult, err error)
	}{
		{
			name: "Pipeline completo na ordem",
			setup: func(f *fixture) {
				gomock.InOrder(
					f.planner.EXPECT().ResolveTask("task").Return("task"),
					f.planner.EXPECT().BuildPlan("task").Return(testPlan),
					f.loader.EXPECT().Load(gomock.Any(), testSource).Return(testTable, nil),
					f.computer.EXPECT().Compute(gomock.Any(), testTable).Return(insights, nil),
					f.renderer.EXPECT().Render(insights, testPlan).Return(&domain.Summary{Report: "report", Recommendations: []string{"rec"}}, nil),
					f.evaluator.EXPECT().Evaluate(insights).Return(&domain.Evaluation{Score: 78}, nil),
				)
			},
			validate: func(t *testing.T, result *domain.AnalysisResult, err error) {
				require.NoError(t, err)
				assert.Len(t, result.ID, 12)
				assert.Equal(t, "task", result.Task)
				assert.Equal(t, "ads.csv", result.Source)
				assert.Equal(t, testPlan, result.Plan)
				assert.Equal(t, insights, result.Insights)
				assert.Equal(t, "report", result.Report)
				assert.Equal(t, []string{"rec"}, result.Recommendations)
				assert.Equal(t, 78.0, result.Score)
				assert.Equal(t, 1, result.Load.DroppedRows)
				assert.Empty(t, result.Errors)
				assert.False(t, result.StartedAt.IsZero())
			},
		},
		{
			name: "Falha de carga é fatal",
			setup: func(f *fixture) {
				f.expectPlan()
				f.loader.EXPECT().Load(gomock.Any(), testSource).
					Return(nil, domain.NewMissingColumnsError("ads.csv", []string{"revenue"}))
			},
			validate: func(t *testing.T, result *domain.AnalysisResult, err error) {
				assert.Nil(t, result)
				assert.ErrorIs(t, err, domain.ErrDataLoad)
			},
		},
		{
			name: "Dados insuficientes viram StageError por chave",
			setup: func(f *fixture) {
				f.expectPlan()
				f.loader.EXPECT().Load(gomock.Any(), testSource).Return(testTable, nil)
				f.computer.EXPECT().Compute(gomock.Any(), testTable).
					Return(insights, errors.Join(missingCTR, &domain.InsufficientDataError{Key: domain.KeyBestPlatform, Reason: "no non-empty labels"}))
				f.renderer.EXPECT().Render(insights, testPlan).Return(&domain.Summary{Report: "report", Recommendations: []string{}}, nil)
				f.evaluator.EXPECT().Evaluate(insights).Return(&domain.Evaluation{Score: 15}, nil)
			},
			validate: func(t *testing.T, result *domain.AnalysisResult, err error) {
				require.NoError(t, err)
				assert.Equal(t, []domain.StageError{
					{Stage: domain.StageInsights, Key: domain.KeyAverageCTR, Reason: "no rows with a defined ctr"},
					{Stage: domain.StageInsights, Key: domain.KeyBestPlatform, Reason: "no non-empty labels"},
				}, result.Errors)
				assert.Equal(t, 15.0, result.Score)
			},
		},
		{
			name: "Panic no cálculo é recuperado",
			setup: func(f *fixture) {
				f.expectPlan()
				f.loader.EXPECT().Load(gomock.Any(), testSource).Return(testTable, nil)
				f.computer.EXPECT().Compute(gomock.Any(), testTable).DoAndReturn(
					func(context.Context, *domain.AdTable) (domain.Insights, error) {
						panic("boom")
					})
				f.renderer.EXPECT().Render(domain.Insights(nil), testPlan).Return(nil, &domain.RenderError{Err: errors.New("insights mapping is nil")})
				f.evaluator.EXPECT().Evaluate(domain.Insights(nil)).Return(nil, &domain.EvalError{Err: errors.New("insights mapping is nil")})
			},
			validate: func(t *testing.T, result *domain.AnalysisResult, err error) {
				require.NoError(t, err)
				require.Len(t, result.Errors, 3)
				assert.Equal(t, domain.StageInsights, result.Errors[0].Stage)
				assert.Contains(t, result.Errors[0].Reason, "boom")
				assert.Equal(t, domain.StageRender, result.Errors[1].Stage)
				assert.Equal(t, domain.StageEvaluate, result.Errors[2].Stage)
				assert.NotNil(t, result.Insights)
				assert.NotNil(t, result.Recommendations)
				assert.Zero(t, result.Score)
			},
		},
		{
			name: "Panic na renderização não impede a avaliação",
			setup: func(f *fixture) {
				f.expectPlan()
				f.loader.EXPECT().Load(gomock.Any(), testSource).Return(testTable, nil)
				f.computer.EXPECT().Compute(gomock.Any(), testTable).Return(insights, nil)
				f.renderer.EXPECT().Render(insights, testPlan).DoAndReturn(
					func(domain.Insights, []string) (*domain.Summary, error) {
						panic("render exploded")
					})
				f.evaluator.EXPECT().Evaluate(insights).Return(&domain.Evaluation{Score: 40}, nil)
			},
			validate: func(t *testing.T, result *domain.AnalysisResult, err error) {
				require.NoError(t, err)
				require.Len(t, result.Errors, 1)
				assert.Equal(t, domain.StageRender, result.Errors[0].Stage)
				assert.Empty(t, result.Report)
				assert.Equal(t, 40.0, result.Score)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			result, err := f.service.Run(context.Background(), domain.AnalysisRequest{Task: "task", Source: testSource})
			tt.validate(t, result, err)
		})
	}
}

func TestService_Run_WithHistory(t *testing.T) {
	insights := domain.Insights{domain.KeyTotalSpend: domain.Currency(300)}

	t.Run("Resultado é salvo", func(t *testing.T) {
		f := newFixture(t)
		f.service.WithHistory(f.history)

		f.expectPlan()
		f.loader.EXPECT().Load(gomock.Any(), testSource).Return(testTable, nil)
		f.computer.EXPECT().Compute(gomock.Any(), testTable).Return(insights, nil)
		f.renderer.EXPECT().Render(insights, testPlan).Return(&domain.Summary{Report: "r"}, nil)
		f.evaluator.EXPECT().Evaluate(insights).Return(&domain.Evaluation{Score: 50}, nil)

		var saved *domain.AnalysisResult
		f.history.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, result *domain.AnalysisResult) error {
				saved = result
				return nil
			})

		result, err := f.service.Run(context.Background(), domain.AnalysisRequest{Task: "task", Source: testSource})
		require.NoError(t, err)
		assert.Same(t, result, saved)
	})

	t.Run("Falha ao salvar não é fatal", func(t *testing.T) {
		f := newFixture(t)
		f.service.WithHistory(f.history)

		f.expectPlan()
		f.loader.EXPECT().Load(gomock.Any(), testSource).Return(testTable, nil)
		f.computer.EXPECT().Compute(gomock.Any(), testTable).Return(insights, nil)
		f.renderer.EXPECT().Render(insights, testPlan).Return(&domain.Summary{Report: "r"}, nil)
		f.evaluator.EXPECT().Evaluate(insights).Return(&domain.Evaluation{Score: 50}, nil)
		f.history.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		result, err := f.service.Run(context.Background(), domain.AnalysisRequest{Task: "task", Source: testSource})
		require.NoError(t, err)
		assert.Equal(t, 50.0, result.Score)
	})
}

func TestService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("Sem histórico", func(t *testing.T) {
		f := newFixture(t)

		runs, err := f.service.ListRuns(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, runs)

		_, err = f.service.GetRun(ctx, "abc")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)

		deleted, err := f.service.PruneRuns(ctx, 30)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("Com histórico", func(t *testing.T) {
		f := newFixture(t)
		f.service.WithHistory(f.history)

		summaries := []*domain.AnalysisRunSummary{{ID: "abc", CreatedAt: time.Now()}}
		f.history.EXPECT().ListRecent(ctx, DefaultListLimit).Return(summaries, nil)
		f.history.EXPECT().GetByID(ctx, "abc").Return(&domain.AnalysisResult{ID: "abc"}, nil)
		f.history.EXPECT().GetByID(ctx, "missing").Return(nil, nil)
		f.history.EXPECT().DeleteOlderThan(ctx, 30).Return(int64(2), nil)

		runs, err := f.service.ListRuns(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, summaries, runs)

		run, err := f.service.GetRun(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", run.ID)

		_, err = f.service.GetRun(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)

		deleted, err := f.service.PruneRuns(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
	})
}

func TestStageErrors(t *testing.T) {
	assert.Nil(t, stageErrors(domain.StageRender, nil))

	errs := stageErrors(domain.StageRender, &domain.RenderError{Err: errors.New("bad")})
	require.Len(t, errs, 1)
	assert.Empty(t, errs[0].Key)
	assert.True(t, strings.Contains(errs[0].Reason, "bad"))
}
