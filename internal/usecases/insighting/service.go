package insighting

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/marketing-analyst/internal/domain"
	"github.com/vfg2006/marketing-analyst/pkg/log"
)

// Limites padrão para linhas de baixo desempenho
const (
	DefaultLowCTRThreshold  = 0.01
	DefaultLowROASThreshold = 0.5
)

// Computer calcula o mapeamento de insights de uma tabela de anúncios
type Computer interface {
	Compute(ctx context.Context, table *domain.AdTable) (domain.Insights, error)
}

// Service implementa Computer
type Service struct {
	lowCTRThreshold  float64
	lowROASThreshold float64
}

// NewService cria o serviço de insights com os limites de baixo desempenho
func NewService(lowCTRThreshold, lowROASThreshold float64) Computer {
	return &Service{
		lowCTRThreshold:  lowCTRThreshold,
		lowROASThreshold: lowROASThreshold,
	}
}

// Compute calcula todos os KPIs possíveis. Chaves que não puderam ser calculadas
// são omitidas e reportadas no erro, junto com os insights.
func (s *Service) Compute(ctx context.Context, table *domain.AdTable) (domain.Insights, error) {
	var records []domain.AdRecord
	if table != nil {
		records = table.Records
	}

	insights := make(domain.Insights)
	var errs []error

	omit := func(key, column, reason string) {
		errs = append(errs, &domain.InsufficientDataError{Key: key, Dimension: column, Reason: reason})
	}

	// Totais
	insights[domain.KeyTotalSpend] = domain.Currency(stableSum(collect(records, func(r domain.AdRecord) (float64, bool) { return r.Spend, true })))
	insights[domain.KeyTotalRevenue] = domain.Currency(stableSum(collect(records, revenue)))
	insights[domain.KeyTotalPurchases] = domain.Count(sumInt(records, func(r domain.AdRecord) int64 { return r.Purchases }))

	// Médias por linha: apenas linhas com razão definida entram na média
	averages := []struct {
		key    string
		column string
		value  func(domain.AdRecord) (float64, bool)
	}{
		{domain.KeyAverageCTR, domain.ColumnCTR, definedCTR},
		{domain.KeyAverageROAS, domain.ColumnROAS, definedROAS},
	}
	for _, avg := range averages {
		values := collect(records, avg.value)
		if len(values) == 0 {
			omit(avg.key, "", fmt.Sprintf("no rows with a defined %s", avg.column))
			continue
		}
		insights[avg.key] = domain.Rate(stableSum(values) / float64(len(values)))
	}

	// Melhores desempenhos por receita total
	for _, key := range domain.BestKeys {
		column := domain.BestDimensions[key]
		if !table.HasColumn(column) {
			continue
		}

		groups := groupBy(records, dimension(column), revenue)
		best, ok := argMax(groups, (*group).sum)
		if !ok {
			omit(key, column, "no non-empty labels")
			continue
		}
		insights[key] = domain.Label(best)
	}

	// Dias de destaque
	days := groupBy(records, dimension(domain.ColumnDate), revenue)
	if day, ok := argMax(days, (*group).sum); ok {
		insights[domain.KeyHighestRevenueDay] = domain.Label(day)
	} else {
		omit(domain.KeyHighestRevenueDay, domain.ColumnDate, "no rows")
	}

	roasDays := groupBy(records, dimension(domain.ColumnDate), definedROAS)
	if day, ok := argMax(roasDays, (*group).mean); ok {
		insights[domain.KeyHighestROASDay] = domain.Label(day)
	} else {
		omit(domain.KeyHighestROASDay, domain.ColumnDate, "no rows with a defined roas")
	}

	s.addSupplementary(insights, table, records)

	err := errors.Join(errs...)

	logrus.WithFields(logrus.Fields{
		"correlation_id": log.GetCorrelationID(ctx),
		"rows":           len(records),
		"keys":           len(insights),
		"omitted":        len(errs),
	}).Info("Insights calculados")

	return insights, err
}

// addSupplementary adiciona as chaves extras de volume e baixo desempenho
func (s *Service) addSupplementary(insights domain.Insights, table *domain.AdTable, records []domain.AdRecord) {
	dropped := 0
	if table != nil {
		dropped = table.DroppedRows
	}

	impressions := sumInt(records, func(r domain.AdRecord) int64 { return r.Impressions })
	clicks := sumInt(records, func(r domain.AdRecord) int64 { return r.Clicks })

	insights[domain.KeyRowsProcessed] = domain.Count(int64(len(records)))
	insights[domain.KeyRowsDropped] = domain.Count(int64(dropped))
	insights[domain.KeyTotalImpressions] = domain.Count(impressions)
	insights[domain.KeyTotalClicks] = domain.Count(clicks)

	if ctr := domain.Ratio(float64(clicks), float64(impressions)); ctr != nil {
		insights[domain.KeyAggregateCTR] = domain.Rate(*ctr)
	}

	spend, _ := insights.Number(domain.KeyTotalSpend)
	income, _ := insights.Number(domain.KeyTotalRevenue)
	if roas := domain.Ratio(income, spend); roas != nil {
		insights[domain.KeyAggregateROAS] = domain.Rate(*roas)
	}

	var lowCTR, lowROAS int64
	for _, r := range records {
		if r.CTR != nil && *r.CTR < s.lowCTRThreshold {
			lowCTR++
		}
		if r.ROAS != nil && *r.ROAS < s.lowROASThreshold {
			lowROAS++
		}
	}
	insights[domain.KeyLowCTRRows] = domain.Count(lowCTR)
	insights[domain.KeyLowROASRows] = domain.Count(lowROAS)
}

func sumInt(records []domain.AdRecord, value func(domain.AdRecord) int64) int64 {
	var total int64
	for _, r := range records {
		total += value(r)
	}
	return total
}
