package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/marketing-analyst/internal/api"
	"github.com/vfg2006/marketing-analyst/internal/app"
	"github.com/vfg2006/marketing-analyst/internal/config"
	"github.com/vfg2006/marketing-analyst/internal/scheduler"
	"github.com/vfg2006/marketing-analyst/internal/usecases/authenticating"
	"github.com/vfg2006/marketing-analyst/pkg/log"
)

func main() {
	issueToken := flag.String("issue-token", "", "emite um token para o sujeito informado e encerra")
	scopes := flag.String("scopes", "analysis", "escopos do token emitido, separados por vírgula")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel, os.Stderr)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	var authenticator authenticating.Authenticator
	if cfg.Auth.Secret != "" {
		authenticator = authenticating.NewService(cfg.Auth.Secret)
	} else {
		logrus.Warn("AUTH_SECRET não definido, autenticação desabilitada")
	}

	if *issueToken != "" {
		if authenticator == nil {
			logrus.Fatal("AUTH_SECRET é obrigatório para emitir tokens")
		}
		token, err := authenticator.GenerateToken(*issueToken, strings.Split(*scopes, ","), authenticating.DefaultTokenTTL)
		if err != nil {
			logrus.WithError(err).Fatal("Erro ao emitir token")
		}
		fmt.Println(token)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	history, closeHistory, err := app.NewHistory(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar o histórico de execuções")
	}
	defer closeHistory()

	analyzer := app.NewAnalyzer(cfg).WithHistory(history)

	reportSyncService := scheduler.NewReportSyncService(analyzer, cfg)
	if err := reportSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de análise de relatórios")
	} else {
		logrus.Info("Agendador de análise de relatórios iniciado com sucesso")
	}

	server, err := api.New(cfg, analyzer, authenticator, reportSyncService)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}
