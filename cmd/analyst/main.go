package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/marketing-analyst/infrastructure/exporter"
	"github.com/vfg2006/marketing-analyst/internal/app"
	"github.com/vfg2006/marketing-analyst/internal/config"
	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/pkg/log"
)

// Códigos de saída
const (
	exitOK         = 0
	exitLoadFailed = 1
	exitUsage      = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executa uma análise e retorna o código de saída
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitUsage
	}

	log.Setup(cfg.App.LogLevel, stderr)

	flags := flag.NewFlagSet("analyst", flag.ContinueOnError)
	flags.SetOutput(stderr)
	dataPath := flags.String("data", cfg.Analysis.DataPath, "caminho do dataset CSV")
	outPath := flags.String("out", cfg.Analysis.ReportOutput, "arquivo de relatório (.txt, .json ou .xlsx)")
	debug := flags.Bool("debug", false, "imprime o resultado completo em JSON")
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	if *dataPath == "" {
		fmt.Fprintln(stderr, "missing dataset path: use -data or DATA_PATH")
		return exitUsage
	}
	if *outPath != "" {
		if _, err := exporter.FormatFromPath(*outPath); err != nil {
			fmt.Fprintf(stderr, "invalid -out: %v\n", err)
			return exitUsage
		}
	}

	history, closeHistory, err := app.NewHistory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "history error: %v\n", err)
		return exitUsage
	}
	defer closeHistory()

	analyzer := app.NewAnalyzer(cfg).WithHistory(history)

	result, err := analyzer.Run(ctx, domain.AnalysisRequest{
		Task:   strings.Join(flags.Args(), " "),
		Source: domain.DataSource{Path: *dataPath},
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, domain.ErrDataLoad) {
			return exitLoadFailed
		}
		return exitUsage
	}

	if *debug {
		err = exporter.WriteJSON(stdout, result)
	} else {
		err = exporter.WriteText(stdout, result)
	}
	if err != nil {
		logrus.WithError(err).Error("Erro ao escrever o resultado")
	}

	if *outPath != "" {
		if err := exporter.Write(*outPath, result); err != nil {
			logrus.WithError(err).Error("Erro ao salvar o relatório")
		} else {
			fmt.Fprintf(stderr, "report saved to %s\n", *outPath)
		}
	}

	return exitOK
}
