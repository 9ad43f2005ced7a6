package rendering

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

var plan = []string{"1. Understand task and define subgoals", "2. Collect and load relevant data"}

func fullInsights() domain.Insights {
	return domain.Insights{
		domain.KeyTotalSpend:        domain.Currency(300),
		domain.KeyTotalRevenue:      domain.Currency(1000.456),
		domain.KeyTotalPurchases:    domain.Count(10),
		domain.KeyAverageCTR:        domain.Rate(0.0123456),
		domain.KeyAverageROAS:       domain.Rate(3.3333333),
		domain.KeyBestCreativeType:  domain.Label("video"),
		domain.KeyBestPlatform:      domain.Label("instagram"),
		domain.KeyBestCountry:       domain.Label("BR"),
		domain.KeyBestAudienceType:  domain.Label("broad"),
		domain.KeyBestAdset:         domain.Label("Adset 1"),
		domain.KeyHighestRevenueDay: domain.Label("2025-01-01"),
		domain.KeyHighestROASDay:    domain.Label("2025-01-02"),
		domain.KeyRowsProcessed:     domain.Count(2),
	}
}

func TestService_Render(t *testing.T) {
	summary, err := NewService().Render(fullInsights(), plan)
	require.NoError(t, err)

	report := summary.Report

	// Seções em ordem
	positions := []int{
		strings.Index(report, "=== "+SectionKPIOverview+" ==="),
		strings.Index(report, "=== "+SectionBestPerformers+" ==="),
		strings.Index(report, "=== "+SectionRecommendations+" ==="),
		strings.Index(report, "=== "+SectionPlan+" ==="),
	}
	for i, p := range positions {
		require.GreaterOrEqual(t, p, 0)
		if i > 0 {
			assert.Greater(t, p, positions[i-1])
		}
	}

	assert.Contains(t, report, "- Total Spend: 300.00\n")
	assert.Contains(t, report, "- Total Revenue: 1000.46\n")
	assert.Contains(t, report, "- Total Purchases: 10\n")
	assert.Contains(t, report, "- Average CTR: 0.0123\n")
	assert.Contains(t, report, "- Average ROAS: 3.3333\n")
	assert.Contains(t, report, "- Best Creative Type: video\n")
	assert.Contains(t, report, "- Rows Processed: 2\n")
	assert.Contains(t, report, "- 2. Collect and load relevant data\n")

	assert.Equal(t, []string{
		"Scale budget on instagram for highest purchase volume",
		"Increase use of video creatives for best ROAS",
		"Expand ads in BR (highest revenue)",
		"Allocate more spend to broad audiences",
		"Use learnings from Adset 1 to optimize weaker adsets",
	}, summary.Recommendations)
	assert.Contains(t, report, "1. Scale budget on instagram for highest purchase volume\n")
	assert.Contains(t, report, "5. Use learnings from Adset 1 to optimize weaker adsets\n")
}

func TestService_Render_Degrades(t *testing.T) {
	insights := domain.Insights{
		domain.KeyTotalSpend:   domain.Currency(0),
		domain.KeyTotalRevenue: domain.Currency(0),
	}

	summary, err := NewService().Render(insights, nil)
	require.NoError(t, err)

	assert.Contains(t, summary.Report, NoBestPerformers)
	assert.Contains(t, summary.Report, NoRecommendations)
	assert.NotContains(t, summary.Report, "Best Platform")
	assert.Empty(t, summary.Recommendations)
	assert.NotNil(t, summary.Recommendations)
}

func TestService_Render_PartialBest(t *testing.T) {
	insights := domain.Insights{
		domain.KeyBestCountry: domain.Label("US"),
	}

	summary, err := NewService().Render(insights, plan)
	require.NoError(t, err)

	assert.Equal(t, []string{"Expand ads in US (highest revenue)"}, summary.Recommendations)
	assert.NotContains(t, summary.Report, NoBestPerformers)
	assert.NotContains(t, summary.Report, "Best Adset")
}

func TestService_Render_NilInsights(t *testing.T) {
	summary, err := NewService().Render(nil, plan)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, domain.ErrRender)

	var renderErr *domain.RenderError
	assert.ErrorAs(t, err, &renderErr)
}

func TestParseReport_RoundTrip(t *testing.T) {
	insights := fullInsights()
	insights["custom_metric"] = domain.Rate(0.98761)

	summary, err := NewService().Render(insights, plan)
	require.NoError(t, err)

	parsed, err := ParseReport(summary.Report)
	require.NoError(t, err)

	for key, value := range insights {
		if !value.IsNumeric() {
			assert.NotContains(t, parsed, key)
			continue
		}

		tolerance := 0.00005
		switch value.Kind {
		case domain.KindCurrency:
			tolerance = 0.005
		case domain.KindCount:
			tolerance = 0
		}
		require.Contains(t, parsed, key)
		assert.InDelta(t, value.Number, parsed[key], tolerance+1e-9, key)
	}
}

func TestParseReport_RotuloNumerico(t *testing.T) {
	insights := domain.Insights{
		domain.KeyTotalSpend:    domain.Currency(10),
		domain.KeyBestAdset:     domain.Label("2024"),
		domain.KeyBestCountry:   domain.Label("1"),
		domain.KeyRowsProcessed: domain.Count(3),
	}

	summary, err := NewService().Render(insights, plan)
	require.NoError(t, err)

	parsed, err := ParseReport(summary.Report)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		domain.KeyTotalSpend:    10,
		domain.KeyRowsProcessed: 3,
	}, parsed)
}

func TestParseReport_NoOverview(t *testing.T) {
	_, err := ParseReport("nothing here")
	assert.Error(t, err)
}

func TestKeyLabel(t *testing.T) {
	assert.Equal(t, "Total Spend", KeyLabel("total_spend"))
	assert.Equal(t, "Highest ROAS Day", KeyLabel("highest_roas_day"))
	assert.Equal(t, "Aggregate CTR", KeyLabel("aggregate_ctr"))
}
