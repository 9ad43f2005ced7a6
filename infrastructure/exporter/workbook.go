package exporter

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/internal/usecases/rendering"
)

// Abas da planilha exportada
const (
	SheetKPIs            = "KPIs"
	SheetRecommendations = "Recommendations"
	SheetPlan            = "Plan"
	SheetErrors          = "Errors"
)

// WriteWorkbook grava o resultado como planilha: KPIs, recomendações, plano e erros
func WriteWorkbook(w io.Writer, result *domain.AnalysisResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetKPIs); err != nil {
		return errors.Wrap(err, "failed to rename sheet")
	}

	kpis := [][]interface{}{{"Key", "Label", "Value"}}
	for _, key := range result.Insights.OrderedKeys() {
		value := result.Insights[key]
		var cell interface{} = value.Label
		if value.IsNumeric() {
			cell = value.Number
		}
		kpis = append(kpis, []interface{}{key, rendering.KeyLabel(key), cell})
	}
	kpis = append(kpis, []interface{}{"score", "Final Score", result.Score})
	if err := writeRows(f, SheetKPIs, kpis); err != nil {
		return err
	}

	recommendations := [][]interface{}{{"#", "Recommendation"}}
	for i, rec := range result.Recommendations {
		recommendations = append(recommendations, []interface{}{i + 1, rec})
	}
	if err := writeRows(f, SheetRecommendations, recommendations); err != nil {
		return err
	}

	plan := [][]interface{}{{"Step"}}
	for _, step := range result.Plan {
		plan = append(plan, []interface{}{step})
	}
	if err := writeRows(f, SheetPlan, plan); err != nil {
		return err
	}

	if result.HasErrors() {
		rows := [][]interface{}{{"Stage", "Key", "Reason"}}
		for _, e := range result.Errors {
			rows = append(rows, []interface{}{e.Stage, e.Key, e.Reason})
		}
		if err := writeRows(f, SheetErrors, rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "failed to create sheet %s", sheet)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write row %d on sheet %s", i+1, sheet)
		}
	}
	return nil
}
