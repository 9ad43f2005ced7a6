package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/marketing-analyst/internal/config"
	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/internal/observability"
	"github.com/vfg2006/marketing-analyst/internal/usecases/analyzing/mocks"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("date,spend,revenue,clicks,impressions\n"), 0644))
}

func setupDataDir(t *testing.T) (string, string) {
	dataDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "reports")

	writeFile(t, filepath.Join(dataDir, "b.csv"))
	writeFile(t, filepath.Join(dataDir, "a.csv"))
	writeFile(t, filepath.Join(dataDir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dataDir, "dir.csv"), 0755))

	return dataDir, outputDir
}

func TestReportSyncService_RunOnce(t *testing.T) {
	dataDir, outputDir := setupDataDir(t)

	tests := []struct {
		name     string
		format   string
		setup    func(m *mocks.MockAnalyzerWithHistory)
		validate func(t *testing.T, report *BatchReport)
	}{
		{
			name:   "Um arquivo com falha não interrompe os demais",
			format: "txt",
			setup: func(m *mocks.MockAnalyzerWithHistory) {
				m.EXPECT().Run(gomock.Any(), domain.AnalysisRequest{
					Task:   "task",
					Source: domain.DataSource{Path: filepath.Join(dataDir, "a.csv")},
				}).Return(&domain.AnalysisResult{ID: "run-a", Score: 78, Report: "report"}, nil)

				m.EXPECT().Run(gomock.Any(), domain.AnalysisRequest{
					Task:   "task",
					Source: domain.DataSource{Path: filepath.Join(dataDir, "b.csv")},
				}).Return(nil, domain.NewMissingColumnsError("b.csv", []string{"revenue"}))

				m.EXPECT().PruneRuns(gomock.Any(), 30).Return(int64(2), nil)
			},
			validate: func(t *testing.T, report *BatchReport) {
				require.Len(t, report.Files, 2)
				assert.Equal(t, 1, report.Failed)
				assert.Equal(t, int64(2), report.Pruned)

				a := report.Files[0]
				assert.Equal(t, "run-a", a.RunID)
				assert.Equal(t, 78.0, a.Score)
				assert.Empty(t, a.Error)
				assert.Equal(t, filepath.Join(outputDir, "a.csv.txt"), a.OutputPath)

				data, err := os.ReadFile(a.OutputPath)
				require.NoError(t, err)
				assert.Contains(t, string(data), "FINAL SCORE: 78.00/100")

				b := report.Files[1]
				assert.Contains(t, b.Error, "missing required columns: revenue")
				assert.Empty(t, b.OutputPath)
			},
		},
		{
			name:   "Resultado parcial em JSON",
			format: "json",
			setup: func(m *mocks.MockAnalyzerWithHistory) {
				m.EXPECT().Run(gomock.Any(), gomock.Any()).Return(&domain.AnalysisResult{
					ID:     "run",
					Score:  15,
					Errors: []domain.StageError{{Stage: domain.StageInsights, Key: domain.KeyAverageCTR, Reason: "no rows"}},
				}, nil).Times(2)

				m.EXPECT().PruneRuns(gomock.Any(), 30).Return(int64(0), nil)
			},
			validate: func(t *testing.T, report *BatchReport) {
				require.Len(t, report.Files, 2)
				assert.Zero(t, report.Failed)
				for _, f := range report.Files {
					assert.True(t, f.Partial)
					assert.FileExists(t, f.OutputPath)
					assert.Equal(t, ".json", filepath.Ext(f.OutputPath))
				}
			},
		},
		{
			name:   "Panic na análise é isolado",
			format: "txt",
			setup: func(m *mocks.MockAnalyzerWithHistory) {
				m.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
					func(context.Context, domain.AnalysisRequest) (*domain.AnalysisResult, error) {
						panic("boom")
					}).Times(2)

				m.EXPECT().PruneRuns(gomock.Any(), 30).Return(int64(0), nil)
			},
			validate: func(t *testing.T, report *BatchReport) {
				assert.Equal(t, 2, report.Failed)
				assert.Contains(t, report.Files[0].Error, "boom")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			analyzer := mocks.NewMockAnalyzerWithHistory(ctrl)
			tt.setup(analyzer)

			svc := newReportSyncService(analyzer, ReportSyncConfig{
				DataDir:           dataDir,
				Pattern:           "*.csv",
				OutputDir:         outputDir,
				OutputFormat:      tt.format,
				Task:              "task",
				MaxConcurrentJobs: 2,
				RetentionDays:     30,
			})

			tt.validate(t, svc.RunOnce(context.Background()))
		})
	}
}

func TestReportSyncService_RunOnce_MesmoNomeOutraExtensao(t *testing.T) {
	dataDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "reports")
	writeFile(t, filepath.Join(dataDir, "a.csv"))
	writeFile(t, filepath.Join(dataDir, "a.xlsx"))

	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzerWithHistory(ctrl)
	analyzer.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
			return &domain.AnalysisResult{ID: "run", Report: "source " + filepath.Base(req.Source.Path)}, nil
		}).Times(2)

	svc := newReportSyncService(analyzer, ReportSyncConfig{
		DataDir:           dataDir,
		Pattern:           "a.*",
		OutputDir:         outputDir,
		OutputFormat:      "txt",
		MaxConcurrentJobs: 2,
	})

	report := svc.RunOnce(context.Background())
	require.Len(t, report.Files, 2)
	assert.Zero(t, report.Failed)

	for _, name := range []string{"a.csv", "a.xlsx"} {
		data, err := os.ReadFile(filepath.Join(outputDir, name+".txt"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "source "+name)
	}
}

func TestReportSyncService_RunOnce_DiretorioVazio(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzerWithHistory(ctrl)

	svc := newReportSyncService(analyzer, ReportSyncConfig{
		DataDir: t.TempDir(),
		Pattern: "*.csv",
	})

	report := svc.RunOnce(context.Background())
	assert.Empty(t, report.Files)
	assert.Zero(t, report.Failed)
}

func TestReportSyncService_Metrics(t *testing.T) {
	dataDir, outputDir := setupDataDir(t)

	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzerWithHistory(ctrl)
	analyzer.EXPECT().Run(gomock.Any(), gomock.Any()).Return(&domain.AnalysisResult{ID: "run"}, nil)
	analyzer.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDataLoad)

	okBefore := testutil.ToFloat64(observability.ReportSyncFiles.WithLabelValues(observability.StatusOK))
	failedBefore := testutil.ToFloat64(observability.ReportSyncFiles.WithLabelValues(observability.StatusFailed))

	svc := newReportSyncService(analyzer, ReportSyncConfig{
		DataDir:           dataDir,
		Pattern:           "*.csv",
		OutputDir:         outputDir,
		MaxConcurrentJobs: 1,
	})
	svc.RunOnce(context.Background())

	assert.Equal(t, okBefore+1, testutil.ToFloat64(observability.ReportSyncFiles.WithLabelValues(observability.StatusOK)))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(observability.ReportSyncFiles.WithLabelValues(observability.StatusFailed)))
}

func TestReportSyncService_Status(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzerWithHistory(ctrl)

	cfg := &config.Config{}
	cfg.ReportSync.CronSchedule = "0 6 * * *"
	cfg.ReportSync.DataDir = t.TempDir()
	cfg.ReportSync.Pattern = "*.csv"
	cfg.ReportSync.MaxConcurrentJobs = 3

	svc := NewReportSyncService(analyzer, cfg)

	status := svc.GetStatus()
	assert.Equal(t, false, status["sync_running"])
	assert.Equal(t, "0 6 * * *", status["sync_cron"])
	assert.Equal(t, false, status["sync_enabled"])

	report := svc.syncReports(context.Background())
	require.NotNil(t, report)

	status = svc.GetStatus()
	assert.Equal(t, report, status["last_report"])
	assert.False(t, status["last_sync_completed_at"].(interface{ IsZero() bool }).IsZero())

	// Lote em andamento ignora nova chamada
	svc.syncRunning = true
	assert.Nil(t, svc.syncReports(context.Background()))
}

func TestReportSyncService_Start_Desabilitado(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newReportSyncService(mocks.NewMockAnalyzerWithHistory(ctrl), ReportSyncConfig{})

	assert.NoError(t, svc.Start(context.Background()))
	assert.False(t, svc.scheduler.IsRunning())
}
