package analyzing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/marketing-analyst/infrastructure/repository"
	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/internal/usecases/evaluating"
	"github.com/vfg2006/marketing-analyst/internal/usecases/insighting"
	"github.com/vfg2006/marketing-analyst/internal/usecases/loading"
	"github.com/vfg2006/marketing-analyst/internal/usecases/planning"
	"github.com/vfg2006/marketing-analyst/internal/usecases/rendering"
)

const datasetCSV = `date,campaign,adset,ad,impressions,clicks,spend,revenue,purchases,creative_type,platform,country,audience_type
2025-01-01,Camp A,Adset 1,Ad 1,1000,10,100,600,6,video,instagram,BR,broad
2025-01-02,Camp A,Adset 2,Ad 2,2000,40,200,400,4,image,facebook,US,lookalike
`

func newPipeline() *Service {
	return NewService(
		planning.NewService(""),
		loading.NewService(),
		insighting.NewService(insighting.DefaultLowCTRThreshold, insighting.DefaultLowROASThreshold),
		rendering.NewService(),
		evaluating.NewService(domain.DefaultWeights()),
	).(*Service)
}

func TestPipeline_EndToEnd(t *testing.T) {
	history := repository.NewMemoryAnalysisRunRepository()
	svc := newPipeline().WithHistory(history)

	result, err := svc.Run(context.Background(), domain.AnalysisRequest{
		Source: domain.DataSource{Name: "ads.csv", Reader: strings.NewReader(datasetCSV)},
	})
	require.NoError(t, err)

	assert.Equal(t, planning.DefaultTask, result.Task)
	assert.Contains(t, result.Plan, planning.SalesSegmentStep)
	assert.Equal(t, domain.Currency(300), result.Insights[domain.KeyTotalSpend])
	assert.Equal(t, domain.Currency(1000), result.Insights[domain.KeyTotalRevenue])
	assert.Equal(t, domain.Label("video"), result.Insights[domain.KeyBestCreativeType])
	assert.Equal(t, domain.Label("2025-01-01"), result.Insights[domain.KeyHighestRevenueDay])
	assert.Contains(t, result.Report, "- Total Spend: 300.00")
	assert.Contains(t, result.Recommendations, "Increase use of video creatives for best ROAS")
	assert.Equal(t, 100.0, result.Score)
	assert.Empty(t, result.Errors)

	stored, err := svc.GetRun(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Score, stored.Score)
}

func TestPipeline_MissingColumns(t *testing.T) {
	_, err := newPipeline().Run(context.Background(), domain.AnalysisRequest{
		Source: domain.DataSource{Name: "bad.csv", Reader: strings.NewReader("date,spend\n2025-01-01,1\n")},
	})

	var loadErr *domain.DataLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, []string{domain.ColumnRevenue, domain.ColumnClicks, domain.ColumnImpressions}, loadErr.MissingColumns)
}

func TestPipeline_EmptyDataset(t *testing.T) {
	result, err := newPipeline().Run(context.Background(), domain.AnalysisRequest{
		Task:   "Check CTR",
		Source: domain.DataSource{Name: "empty.csv", Reader: strings.NewReader("date,spend,revenue,clicks,impressions\n")},
	})
	require.NoError(t, err)

	assert.Equal(t, 15.0, result.Score)
	assert.Len(t, result.Plan, 6)
	assert.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Report, "No best performers available.")
	assert.Contains(t, result.Report, "No recommendations.")
}
