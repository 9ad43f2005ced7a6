package loading

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

const sampleCSV = `date,campaign,adset,ad,impressions,clicks,spend,revenue,purchases,creative_type,platform,country,audience_type
2025-01-01,Camp A,Adset 1,Ad 1,1000,10,100,600,6,video,instagram,BR,broad
2025-01-02,Camp A,Adset 2,Ad 2,2000,40,200,400,4,image,facebook,US,lookalike
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestService_Load_CSV(t *testing.T) {
	path := writeFile(t, "ads.csv", sampleCSV)

	table, err := NewService().Load(context.Background(), domain.DataSource{Path: path})
	require.NoError(t, err)

	require.Len(t, table.Records, 2)
	assert.Equal(t, path, table.Source)
	assert.Zero(t, table.DroppedRows)
	assert.Zero(t, table.CoercedValues)
	assert.True(t, table.HasColumn(domain.ColumnCampaignName))
	assert.True(t, table.HasColumn(domain.ColumnPlatform))
	assert.False(t, table.HasColumn(domain.ColumnROAS))

	first := table.Records[0]
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Camp A", first.CampaignName)
	assert.Equal(t, "Adset 1", first.AdsetName)
	assert.Equal(t, int64(1000), first.Impressions)
	assert.Equal(t, 600.0, first.Revenue)
	assert.Equal(t, "video", first.CreativeType)

	// Razões derivadas quando a coluna não existe
	require.NotNil(t, first.CTR)
	assert.InDelta(t, 0.01, *first.CTR, 1e-9)
	require.NotNil(t, first.ROAS)
	assert.InDelta(t, 6.0, *first.ROAS, 1e-9)
	require.NotNil(t, first.CPC)
	assert.InDelta(t, 10.0, *first.CPC, 1e-9)
}

func TestService_Load_Reader(t *testing.T) {
	src := domain.DataSource{Name: "upload.csv", Reader: strings.NewReader(sampleCSV)}

	table, err := NewService().Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "upload.csv", table.Source)
	assert.Len(t, table.Records, 2)
}

func TestService_Load_Errors(t *testing.T) {
	tests := []struct {
		name        string
		src         domain.DataSource
		wantMissing []string
		wantInMsg   string
	}{
		{
			name:        "Colunas obrigatórias ausentes",
			src:         domain.DataSource{Name: "a.csv", Reader: strings.NewReader("date,spend,impressions\n2025-01-01,1,1\n")},
			wantMissing: []string{domain.ColumnRevenue, domain.ColumnClicks},
			wantInMsg:   "revenue, clicks",
		},
		{
			name:      "Caminho inexistente",
			src:       domain.DataSource{Path: filepath.Join(t.TempDir(), "missing.csv")},
			wantInMsg: "missing.csv",
		},
		{
			name:      "Arquivo vazio",
			src:       domain.DataSource{Name: "empty.csv", Reader: strings.NewReader("")},
			wantInMsg: "no header row",
		},
		{
			name:      "Sem origem",
			src:       domain.DataSource{},
			wantInMsg: "no dataset path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewService().Load(context.Background(), tt.src)
			assert.Nil(t, table)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDataLoad)
			assert.Contains(t, err.Error(), tt.wantInMsg)

			var loadErr *domain.DataLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.wantMissing, loadErr.MissingColumns)
		})
	}
}

func TestService_Load_DropsAndCoerces(t *testing.T) {
	csv := "\uFEFFDate, Spend ,Revenue,Clicks,Impressions,ROAS\n" +
		"2025-01-01,100,300,10,1000,\n" +
		"not-a-date,1,1,1,1,1\n" +
		",1,1,1,1,1\n" +
		"2025/01/03,abc,50,5,500,2\n" +
		"01/04/2025,10,20,50,10,2\n"

	table, err := NewService().Load(context.Background(), domain.DataSource{Name: "dirty.csv", Reader: strings.NewReader(csv)})
	require.NoError(t, err)

	require.Len(t, table.Records, 3)
	assert.Equal(t, 2, table.DroppedRows)
	// ROAS vazio na linha 1 e spend inválido na linha 4
	assert.Equal(t, 2, table.CoercedValues)

	first := table.Records[0]
	require.NotNil(t, first.ROAS)
	assert.InDelta(t, 3.0, *first.ROAS, 1e-9)

	coerced := table.Records[1]
	assert.Equal(t, 0.0, coerced.Spend)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), coerced.Date)

	// Linha com cliques > impressões é mantida com aviso
	last := table.Records[2]
	assert.Equal(t, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), last.Date)
	assert.NotEmpty(t, table.Warnings)

	found := false
	for _, w := range table.Warnings {
		if strings.Contains(w, "clicks (50) greater than impressions (10)") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestService_Load_PercentAndCounts(t *testing.T) {
	csv := "date,spend,revenue,clicks,impressions,purchases,ctr\n" +
		"2025-01-01,10,20,5,100,1,5%\n" +
		"2025-01-02,10,20,5,1e30,-3,0.05\n"

	table, err := NewService().Load(context.Background(), domain.DataSource{Name: "pct.csv", Reader: strings.NewReader(csv)})
	require.NoError(t, err)
	require.Len(t, table.Records, 2)

	// Percentual é convertido para fração e fica consistente com as colunas de origem
	first := table.Records[0]
	require.NotNil(t, first.CTR)
	assert.InDelta(t, 0.05, *first.CTR, 1e-9)

	// Contagens fora do intervalo ou negativas viram 0 e contam como coerção
	second := table.Records[1]
	assert.Equal(t, int64(0), second.Impressions)
	assert.Equal(t, int64(0), second.Purchases)
	assert.Equal(t, 2, table.CoercedValues)

	for _, w := range table.Warnings {
		assert.NotContains(t, w, "row 2:")
	}
}

func TestService_Load_WarningsAreCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("date,spend,revenue,clicks,impressions\n")
	for i := 0; i < MaxWarnings+10; i++ {
		b.WriteString("2025-01-01,1,1,5,1\n")
	}

	table, err := NewService().Load(context.Background(), domain.DataSource{Name: "x.csv", Reader: strings.NewReader(b.String())})
	require.NoError(t, err)
	assert.Len(t, table.Records, MaxWarnings+10)
	assert.Len(t, table.Warnings, MaxWarnings)
}

func TestService_Load_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := []interface{}{"date", "spend", "revenue", "clicks", "impressions", "platform"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))

	rows := [][]interface{}{
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 100, 300, 10, 1000, "instagram"},
		{"2025-01-02", 50, 25, 5, 500, "facebook"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "ads.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewService().Load(context.Background(), domain.DataSource{Path: path})
	require.NoError(t, err)

	require.Len(t, table.Records, 2)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), table.Records[0].Date)
	assert.Equal(t, 300.0, table.Records[0].Revenue)
	assert.Equal(t, "instagram", table.Records[0].Platform)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), table.Records[1].Date)
	assert.Zero(t, table.DroppedRows)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, domain.ColumnCampaignName, NormalizeHeader(" Campaign "))
	assert.Equal(t, domain.ColumnAdsetName, NormalizeHeader("adset"))
	assert.Equal(t, domain.ColumnAdName, NormalizeHeader("AD"))
	assert.Equal(t, "creative_type", NormalizeHeader("Creative-Type"))
	assert.Equal(t, "audience_type", NormalizeHeader("Audience Type"))
}
