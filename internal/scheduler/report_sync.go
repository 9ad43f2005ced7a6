package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/marketing-analyst/infrastructure/exporter"
	"github.com/vfg2006/marketing-analyst/internal/config"
	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/internal/observability"
	"github.com/vfg2006/marketing-analyst/internal/usecases/analyzing"
)

// ReportSyncConfig representa a configuração do agendador de relatórios
type ReportSyncConfig struct {
	CronSchedule      string
	DataDir           string
	Pattern           string
	OutputDir         string
	OutputFormat      string
	Task              string
	MaxConcurrentJobs int
	RetentionDays     int
	SyncEnabled       bool
}

// FileReport é o resultado da análise de um arquivo do lote
type FileReport struct {
	Path       string  `json:"path"`
	OutputPath string  `json:"output_path,omitempty"`
	RunID      string  `json:"run_id,omitempty"`
	Score      float64 `json:"score"`
	Partial    bool    `json:"partial"`
	Error      string  `json:"error,omitempty"`
}

// BatchReport resume uma execução do lote
type BatchReport struct {
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
	Files       []FileReport `json:"files"`
	Failed      int          `json:"failed"`
	Pruned      int64        `json:"pruned"`
}

// ReportSyncService analisa periodicamente os datasets de um diretório e grava os relatórios
type ReportSyncService struct {
	scheduler           *gocron.Scheduler
	config              ReportSyncConfig
	analyzer            analyzing.AnalyzerWithHistory
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastReport          *BatchReport
}

// NewReportSyncService cria uma nova instância do serviço de relatórios agendados
func NewReportSyncService(analyzer analyzing.AnalyzerWithHistory, appConfig *config.Config) *ReportSyncService {
	syncConfig := ReportSyncConfig{
		CronSchedule:      appConfig.ReportSync.CronSchedule,
		DataDir:           appConfig.ReportSync.DataDir,
		Pattern:           appConfig.ReportSync.Pattern,
		OutputDir:         appConfig.ReportSync.OutputDir,
		OutputFormat:      appConfig.ReportSync.OutputFormat,
		Task:              appConfig.Analysis.DefaultTask,
		MaxConcurrentJobs: appConfig.ReportSync.MaxConcurrentJobs,
		RetentionDays:     appConfig.ReportSync.RetentionDays,
		SyncEnabled:       appConfig.ReportSync.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"data_dir":            syncConfig.DataDir,
		"pattern":             syncConfig.Pattern,
		"output_format":       syncConfig.OutputFormat,
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
		"sync_enabled":        syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de relatórios carregada")

	return newReportSyncService(analyzer, syncConfig)
}

func newReportSyncService(analyzer analyzing.AnalyzerWithHistory, cfg ReportSyncConfig) *ReportSyncService {
	if cfg.MaxConcurrentJobs < 1 {
		cfg.MaxConcurrentJobs = 1
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = exporter.FormatText
	}

	return &ReportSyncService{
		scheduler: gocron.NewScheduler(time.Local),
		config:    cfg,
		analyzer:  analyzer,
	}
}

// Start inicia o agendador
func (s *ReportSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Relatórios agendados desabilitados por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de relatórios")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncReports(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar relatórios: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de relatórios")
		s.scheduler.Stop()
	}()

	return nil
}

// syncReports executa o lote, ignorando a chamada se outro lote estiver em andamento
func (s *ReportSyncService) syncReports(ctx context.Context) *BatchReport {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Relatórios já em andamento, ignorando")
		return nil
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	report := s.RunOnce(ctx)

	s.syncMutex.Lock()
	s.syncRunning = false
	s.lastSyncCompletedAt = report.CompletedAt
	s.lastReport = report
	s.syncMutex.Unlock()

	return report
}

// RunOnce analisa todos os arquivos do diretório. A falha de um arquivo não interrompe os demais.
func (s *ReportSyncService) RunOnce(ctx context.Context) *BatchReport {
	report := &BatchReport{StartedAt: time.Now(), Files: []FileReport{}}

	files, err := s.listFiles()
	if err != nil {
		logrus.WithError(err).Error("Erro ao listar datasets para relatórios")
	}

	if len(files) == 0 {
		logrus.WithField("data_dir", s.config.DataDir).Info("Nenhum dataset encontrado para relatórios")
	}

	report.Files = make([]FileReport, len(files))

	// Canal para limitar o número de análises simultâneas
	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var wg sync.WaitGroup

	for i, path := range files {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, path string) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			report.Files[i] = s.processFile(ctx, path)
		}(i, path)
	}

	wg.Wait()

	for _, f := range report.Files {
		if f.Error != "" {
			report.Failed++
		}
	}

	if s.config.RetentionDays > 0 {
		pruned, err := s.analyzer.PruneRuns(ctx, s.config.RetentionDays)
		if err != nil {
			logrus.WithError(err).Warn("Erro ao remover execuções antigas do histórico")
		}
		report.Pruned = pruned
	}

	report.CompletedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"duration": report.CompletedAt.Sub(report.StartedAt).String(),
		"files":    len(report.Files),
		"failed":   report.Failed,
		"pruned":   report.Pruned,
	}).Info("Relatórios agendados concluídos")

	return report
}

// listFiles retorna os datasets do diretório em ordem alfabética
func (s *ReportSyncService) listFiles() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.config.DataDir, s.config.Pattern))
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

// processFile analisa um arquivo e grava o relatório no diretório de saída
func (s *ReportSyncService) processFile(ctx context.Context, path string) (out FileReport) {
	out.Path = path

	defer func() {
		if r := recover(); r != nil {
			out.Error = fmt.Sprintf("panic: %v", r)
		}
		status := observability.StatusOK
		switch {
		case out.Error != "":
			status = observability.StatusFailed
		case out.Partial:
			status = observability.StatusPartial
		}
		observability.ReportSyncFiles.WithLabelValues(status).Inc()
	}()

	logger := logrus.WithField("path", path)
	logger.Info("Processando dataset agendado")

	result, err := s.analyzer.Run(ctx, domain.AnalysisRequest{
		Task:   s.config.Task,
		Source: domain.DataSource{Path: path},
	})
	if err != nil {
		logger.WithError(err).Error("Erro ao analisar dataset agendado")
		out.Error = err.Error()
		return out
	}

	out.RunID = result.ID
	out.Score = result.Score
	out.Partial = result.HasErrors()
	out.OutputPath = s.outputPath(path)

	if err := exporter.Write(out.OutputPath, result); err != nil {
		logger.WithError(err).Error("Erro ao gravar relatório agendado")
		out.Error = err.Error()
		return out
	}

	return out
}

// outputPath monta o caminho do relatório: <saída>/<arquivo de origem>.<formato>.
// A extensão de origem é mantida para que a.csv e a.xlsx não gravem no mesmo relatório.
func (s *ReportSyncService) outputPath(path string) string {
	return filepath.Join(s.config.OutputDir, filepath.Base(path)+"."+s.config.OutputFormat)
}

// TriggerManualSync inicia manualmente um lote de relatórios
func (s *ReportSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Relatórios já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando relatórios manualmente")
	go s.syncReports(context.Background())
}

// GetStatus retorna o status atual do lote
func (s *ReportSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_report":            s.lastReport,
	}
}
