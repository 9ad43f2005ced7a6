package loading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/pkg/log"
	"github.com/vfg2006/marketing-analyst/pkg/utils"
)

// MaxWarnings limita os avisos guardados na tabela
const MaxWarnings = 20

var headerAliases = map[string]string{
	"campaign": domain.ColumnCampaignName,
	"adset":    domain.ColumnAdsetName,
	"ad":       domain.ColumnAdName,
}

var headerReplacer = strings.NewReplacer(" ", "_", "-", "_")

// NormalizeHeader padroniza o nome de uma coluna (campaign -> campaign_name, "Ad Set" -> ad_set)
func NormalizeHeader(h string) string {
	key := headerReplacer.Replace(strings.ToLower(strings.TrimSpace(h)))
	if alias, ok := headerAliases[key]; ok {
		return alias
	}
	return key
}

// Loader carrega datasets de anúncios em CSV ou XLSX
type Loader interface {
	Load(ctx context.Context, src domain.DataSource) (*domain.AdTable, error)
}

type Service struct{}

func NewService() Loader {
	return &Service{}
}

// Load lê a origem, valida as colunas obrigatórias e converte as linhas em registros
func (s *Service) Load(ctx context.Context, src domain.DataSource) (*domain.AdTable, error) {
	label := src.Label()

	raw, err := readSource(src)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"correlation_id": log.GetCorrelationID(ctx),
			"source":         label,
			"error":          err,
		}).Error("Erro ao ler dataset")
		return nil, domain.NewReadError(label, err)
	}

	columns := indexColumns(raw.header)
	if missing := columns.missing(domain.RequiredColumns); len(missing) > 0 {
		logrus.WithFields(logrus.Fields{
			"correlation_id": log.GetCorrelationID(ctx),
			"source":         label,
			"missing":        missing,
		}).Error("Dataset sem colunas obrigatórias")
		return nil, domain.NewMissingColumnsError(label, missing)
	}

	table := &domain.AdTable{
		Source:  label,
		Records: make([]domain.AdRecord, 0, len(raw.rows)),
		Columns: columns.present(),
	}

	totalWarnings := 0
	warn := func(msg string) {
		totalWarnings++
		if len(table.Warnings) < MaxWarnings {
			table.Warnings = append(table.Warnings, msg)
		}
	}

	for i, row := range raw.rows {
		line := i + 2 // linha 1 é o cabeçalho

		if isBlank(row) {
			continue
		}

		record, coerced, err := parseRecord(row, columns, raw.workbook)
		if err != nil {
			table.DroppedRows++
			warn(fmt.Sprintf("row %d dropped: %s", line, err.Error()))
			continue
		}

		table.CoercedValues += coerced
		for _, problem := range record.Validate() {
			warn(fmt.Sprintf("row %d: %s", line, problem))
		}

		table.Records = append(table.Records, record)
	}

	fields := logrus.Fields{
		"correlation_id": log.GetCorrelationID(ctx),
		"source":         label,
		"rows":           len(table.Records),
		"dropped_rows":   table.DroppedRows,
		"coerced_values": table.CoercedValues,
		"warnings":       totalWarnings,
	}
	if table.DroppedRows > 0 {
		logrus.WithFields(fields).Warn("Linhas descartadas por data inválida")
	} else {
		logrus.WithFields(fields).Info("Dataset carregado")
	}

	return table, nil
}

type columnIndex map[string]int

func indexColumns(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

func (c columnIndex) missing(required []string) []string {
	var out []string
	for _, name := range required {
		if _, ok := c[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func (c columnIndex) present() map[string]bool {
	out := make(map[string]bool, len(c))
	for name := range c {
		out[name] = true
	}
	return out
}

// cell retorna o valor da coluna na linha e se a coluna existe no cabeçalho
func (c columnIndex) cell(row []string, name string) (string, bool) {
	i, ok := c[name]
	if !ok {
		return "", false
	}
	if i >= len(row) {
		return "", true
	}
	return strings.TrimSpace(row[i]), true
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseDate(raw string, workbook bool) (time.Time, error) {
	date, err := utils.ParseDate(raw)
	if err == nil {
		return *date, nil
	}

	if workbook {
		if serial, ok := utils.ParseNumber(raw); ok {
			t, serialErr := excelize.ExcelDateToTime(serial, false)
			if serialErr == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
			}
		}
	}

	return time.Time{}, err
}

// parseRecord converte uma linha. Valores numéricos inválidos viram 0 e são contados.
func parseRecord(row []string, columns columnIndex, workbook bool) (domain.AdRecord, int, error) {
	rawDate, _ := columns.cell(row, domain.ColumnDate)
	date, err := parseDate(rawDate, workbook)
	if err != nil {
		return domain.AdRecord{}, 0, err
	}

	coerced := 0
	number := func(name string) float64 {
		raw, present := columns.cell(row, name)
		if !present {
			return 0
		}
		v, ok := utils.ParseNumber(raw)
		if !ok {
			coerced++
		}
		return v
	}
	count := func(name string) int64 {
		raw, present := columns.cell(row, name)
		if !present {
			return 0
		}
		v, ok := utils.ParseCount(raw)
		if !ok {
			coerced++
		}
		return v
	}
	// Coluna de razão ausente ou inválida usa o valor derivado das colunas de origem
	ratio := func(name string, derived *float64) *float64 {
		raw, present := columns.cell(row, name)
		if !present {
			return derived
		}
		v, ok := utils.ParseNumber(raw)
		if !ok {
			coerced++
			return derived
		}
		return &v
	}
	text := func(name string) string {
		v, _ := columns.cell(row, name)
		return v
	}

	record := domain.AdRecord{
		Date:             date,
		CampaignName:     text(domain.ColumnCampaignName),
		AdsetName:        text(domain.ColumnAdsetName),
		AdName:           text(domain.ColumnAdName),
		Impressions:      count(domain.ColumnImpressions),
		Clicks:           count(domain.ColumnClicks),
		Spend:            number(domain.ColumnSpend),
		Revenue:          number(domain.ColumnRevenue),
		Purchases:        count(domain.ColumnPurchases),
		Frequency:        number(domain.ColumnFrequency),
		CreativeText:     text(domain.ColumnCreativeText),
		CreativeHeadline: text(domain.ColumnCreativeHeadline),
		CreativeType:     text(domain.ColumnCreativeType),
		Country:          text(domain.ColumnCountry),
		Platform:         text(domain.ColumnPlatform),
		AudienceType:     text(domain.ColumnAudienceType),
	}

	record.CTR = ratio(domain.ColumnCTR, domain.Ratio(float64(record.Clicks), float64(record.Impressions)))
	record.ROAS = ratio(domain.ColumnROAS, domain.Ratio(record.Revenue, record.Spend))
	record.CPC = ratio(domain.ColumnCPC, domain.Ratio(record.Spend, float64(record.Clicks)))

	return record, coerced, nil
}
