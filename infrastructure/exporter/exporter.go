package exporter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Formatos de saída suportados
const (
	FormatText     = "txt"
	FormatJSON     = "json"
	FormatWorkbook = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported report format")

// FormatFromPath deduz o formato pela extensão do arquivo
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case FormatText, FormatJSON, FormatWorkbook:
		return ext, nil
	case "":
		return FormatText, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
}

// Write grava o resultado no arquivo, criando o diretório se necessário
func Write(path string, result *domain.AnalysisResult) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create report directory")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create report file")
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := WriteFormat(w, format, result); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush report file")
	}

	logrus.WithFields(logrus.Fields{
		"path":   path,
		"format": format,
		"run_id": result.ID,
	}).Info("Relatório gravado")

	return nil
}

// WriteFormat grava o resultado no formato informado
func WriteFormat(w io.Writer, format string, result *domain.AnalysisResult) error {
	switch format {
	case FormatText:
		return WriteText(w, result)
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatWorkbook:
		return WriteWorkbook(w, result)
	}
	return errors.Wrapf(ErrUnsupportedFormat, "%q", format)
}

// WriteText grava o relatório seguido da nota final e dos erros de estágio
func WriteText(w io.Writer, result *domain.AnalysisResult) error {
	var b strings.Builder

	b.WriteString(result.Report)
	if result.Report != "" && !strings.HasSuffix(result.Report, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nFINAL SCORE: %s\n", ScoreLabel(result.Score))

	if result.HasErrors() {
		b.WriteString("\nERRORS:\n")
		for _, e := range result.Errors {
			if e.Key != "" {
				fmt.Fprintf(&b, "- [%s] %s: %s\n", e.Stage, e.Key, e.Reason)
				continue
			}
			fmt.Fprintf(&b, "- [%s] %s\n", e.Stage, e.Reason)
		}
	}

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "failed to write text report")
}

// WriteJSON grava o resultado completo como JSON indentado
func WriteJSON(w io.Writer, result *domain.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}

	data = append(data, '\n')
	_, err = w.Write(data)
	return errors.Wrap(err, "failed to write json report")
}

// ScoreLabel formata a nota como "78.00/100"
func ScoreLabel(score float64) string {
	return fmt.Sprintf("%.2f/100", score)
}
