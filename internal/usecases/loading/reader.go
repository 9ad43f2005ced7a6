package loading

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

const utf8BOM = "\uFEFF"

// rawTable são as linhas lidas antes da conversão em registros
type rawTable struct {
	header   []string
	rows     [][]string
	workbook bool
}

func isWorkbook(src domain.DataSource) bool {
	name := src.Path
	if name == "" {
		name = src.Name
	}
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// readSource abre a origem e retorna as linhas, com o cabeçalho separado
func readSource(src domain.DataSource) (*rawTable, error) {
	reader := src.Reader
	if reader == nil {
		if src.Path == "" {
			return nil, errors.New("no dataset path or reader provided")
		}

		file, err := os.Open(src.Path)
		if err != nil {
			return nil, errors.Wrap(err, "open dataset")
		}
		defer file.Close()
		reader = file
	}

	var (
		rows [][]string
		err  error
	)
	workbook := isWorkbook(src)
	if workbook {
		rows, err = readWorkbook(reader)
	} else {
		rows, err = readCSV(reader)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("dataset has no header row")
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	return &rawTable{header: header, rows: rows[1:], workbook: workbook}, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}
	return rows, nil
}

// readWorkbook lê a primeira planilha com valores brutos; datas chegam como número serial
func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", sheet)
	}
	return rows, nil
}
