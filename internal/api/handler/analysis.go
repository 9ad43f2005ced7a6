package handler

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/vfg2006/marketing-analyst/infrastructure/exporter"
	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-analyst/pkg/apiErrors"
	"github.com/vfg2006/marketing-analyst/pkg/log"
)

// Nome usado quando o corpo bruto não informa um nome de arquivo
const defaultUploadName = "upload.csv"

// MaxListLimit limita o tamanho da listagem de execuções
const MaxListLimit = 100

// RunAnalysis executa o pipeline sobre o dataset enviado no corpo (multipart "file" ou CSV bruto)
func RunAnalysis(service analyzing.Analyzer, maxUploadBytes int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		source, err := readUpload(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.WithField("limit", maxUploadBytes).Warn("analysis: upload above limit")
				apiErrors.WriteError(w, apiErrors.ErrPayloadTooLarge, "Dataset acima do limite de upload", map[string]any{"max_bytes": maxUploadBytes})
				return
			}

			logger.WithError(err).Warn("analysis: invalid upload")
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, err.Error(), nil)
			return
		}

		query := r.URL.Query()
		logger.WithFields(log.Fields{
			"source": source.Label(),
			"task":   query.Get("task"),
		}).Info("analysis: running pipeline")

		result, err := service.Run(r.Context(), domain.AnalysisRequest{
			Task:   query.Get("task"),
			Source: source,
		})
		if err != nil {
			logger.WithError(err).Error("analysis: pipeline failed")
			apiErrors.WriteFromError(w, err)
			return
		}

		switch strings.ToLower(query.Get("format")) {
		case "", exporter.FormatJSON:
			w.Header().Set("Content-Type", "application/json")
			err = json.NewEncoder(w).Encode(result)
		case exporter.FormatText:
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			err = exporter.WriteText(w, result)
		case exporter.FormatWorkbook:
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", `attachment; filename="report-`+result.ID+`.xlsx"`)
			err = exporter.WriteWorkbook(w, result)
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato inválido. Valores aceitos: json, txt, xlsx", nil)
			return
		}
		if err != nil {
			logger.WithError(err).Error("analysis: failed to write response")
		}
	})
}

// readUpload lê todo o dataset para a memória, respeitando o limite do MaxBytesReader
func readUpload(r *http.Request) (domain.DataSource, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return domain.DataSource{}, err
			}
			return domain.DataSource{}, errors.New("multipart field \"file\" is required")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return domain.DataSource{}, err
		}
		return domain.DataSource{Name: header.Filename, Reader: bytes.NewReader(data)}, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return domain.DataSource{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.DataSource{}, errors.New("request body is empty")
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = defaultUploadName
	}
	return domain.DataSource{Name: name, Reader: bytes.NewReader(data)}, nil
}

// ListAnalysisRuns lista as execuções mais recentes do histórico
func ListAnalysisRuns(service analyzing.History) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "limit deve ser um inteiro não negativo", nil)
				return
			}
			limit = min(parsed, MaxListLimit)
		}

		runs, err := service.ListRuns(r.Context(), limit)
		if err != nil {
			logger.WithError(err).Error("analysis: failed to list runs")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar execuções", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(runs); err != nil {
			logger.WithError(err).Error("analysis: failed to encode runs")
		}
	})
}

// GetAnalysisRun busca uma execução pelo ID
func GetAnalysisRun(service analyzing.History) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		result, err := service.GetRun(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrRunNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrRunNotFound, "Execução não encontrada", map[string]any{"id": id})
				return
			}
			logger.WithError(err).WithField("run_id", id).Error("analysis: failed to get run")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar execução", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithError(err).Error("analysis: failed to encode run")
		}
	})
}
