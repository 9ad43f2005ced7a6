package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/marketing-analyst/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-analyst/infrastructure/database/redisdb"
	"github.com/vfg2006/marketing-analyst/infrastructure/repository"
	"github.com/vfg2006/marketing-analyst/internal/config"
	"github.com/vfg2006/marketing-analyst/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-analyst/internal/usecases/evaluating"
	"github.com/vfg2006/marketing-analyst/internal/usecases/insighting"
	"github.com/vfg2006/marketing-analyst/internal/usecases/loading"
	"github.com/vfg2006/marketing-analyst/internal/usecases/planning"
	"github.com/vfg2006/marketing-analyst/internal/usecases/rendering"
)

// NewAnalyzer monta o pipeline com os componentes padrão e a configuração carregada
func NewAnalyzer(cfg *config.Config) *analyzing.Service {
	return analyzing.NewService(
		planning.NewService(cfg.Analysis.DefaultTask),
		loading.NewService(),
		insighting.NewService(cfg.Analysis.LowCTRThreshold, cfg.Analysis.LowROASThreshold),
		rendering.NewService(),
		evaluating.NewService(cfg.Evaluator),
	).(*analyzing.Service)
}

// NewHistory cria o repositório de execuções do backend configurado.
// A função de fechamento libera a conexão e nunca é nula.
func NewHistory(ctx context.Context, cfg *config.Config) (repository.AnalysisRunRepository, func(), error) {
	noop := func() {}

	switch cfg.History.Backend {
	case config.HistoryPostgres:
		conn, err := postgres.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("erro ao conectar ao PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, noop, err
		}

		logrus.Info("Histórico de execuções no PostgreSQL")
		return repository.NewAnalysisRunRepository(conn), func() { conn.Close() }, nil

	case config.HistoryRedis:
		client, err := redisdb.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}

		logrus.WithField("ttl", cfg.History.TTL.String()).Info("Histórico de execuções no Redis")
		return repository.NewRedisAnalysisRunRepository(client, cfg.History.TTL), func() { client.Close() }, nil

	case config.HistoryMemory, "":
		logrus.Info("Histórico de execuções em memória")
		return repository.NewMemoryAnalysisRunRepository(), noop, nil
	}

	return nil, noop, fmt.Errorf("backend de histórico desconhecido: %s", cfg.History.Backend)
}
