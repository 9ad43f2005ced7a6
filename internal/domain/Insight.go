package domain

import (
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Chaves padrão do mapeamento de insights, na ordem fixa de apresentação
const (
	KeyTotalSpend        = "total_spend"
	KeyTotalRevenue      = "total_revenue"
	KeyTotalPurchases    = "total_purchases"
	KeyAverageCTR        = "average_ctr"
	KeyAverageROAS       = "average_roas"
	KeyBestCreativeType  = "best_creative_type"
	KeyBestPlatform      = "best_platform"
	KeyBestCountry       = "best_country"
	KeyBestAudienceType  = "best_audience_type"
	KeyBestAdset         = "best_adset"
	KeyHighestRevenueDay = "highest_revenue_day"
	KeyHighestROASDay    = "highest_roas_day"
)

// Chaves suplementares, não contam para a avaliação
const (
	KeyRowsProcessed    = "rows_processed"
	KeyRowsDropped      = "rows_dropped"
	KeyTotalImpressions = "total_impressions"
	KeyTotalClicks      = "total_clicks"
	KeyAggregateCTR     = "aggregate_ctr"
	KeyAggregateROAS    = "aggregate_roas"
	KeyLowCTRRows       = "low_ctr_rows"
	KeyLowROASRows      = "low_roas_rows"
)

// StandardKeys lista as 12 chaves avaliadas
var StandardKeys = []string{
	KeyTotalSpend,
	KeyTotalRevenue,
	KeyTotalPurchases,
	KeyAverageCTR,
	KeyAverageROAS,
	KeyBestCreativeType,
	KeyBestPlatform,
	KeyBestCountry,
	KeyBestAudienceType,
	KeyBestAdset,
	KeyHighestRevenueDay,
	KeyHighestROASDay,
}

// BestKeys lista as chaves best_* na ordem de apresentação
var BestKeys = []string{
	KeyBestCreativeType,
	KeyBestPlatform,
	KeyBestCountry,
	KeyBestAudienceType,
	KeyBestAdset,
}

// SupplementaryKeys lista as chaves extras na ordem de apresentação
var SupplementaryKeys = []string{
	KeyRowsProcessed,
	KeyRowsDropped,
	KeyTotalImpressions,
	KeyTotalClicks,
	KeyAggregateCTR,
	KeyAggregateROAS,
	KeyLowCTRRows,
	KeyLowROASRows,
}

// BestDimensions mapeia cada chave best_* para a coluna agrupada
var BestDimensions = map[string]string{
	KeyBestCreativeType: ColumnCreativeType,
	KeyBestPlatform:     ColumnPlatform,
	KeyBestCountry:      ColumnCountry,
	KeyBestAudienceType: ColumnAudienceType,
	KeyBestAdset:        ColumnAdsetName,
}

// InsightKind define como um valor é formatado
type InsightKind string

const (
	KindCurrency InsightKind = "currency"
	KindRate     InsightKind = "rate"
	KindCount    InsightKind = "count"
	KindLabel    InsightKind = "label"
)

// InsightValue é um valor do mapeamento: número ou rótulo
type InsightValue struct {
	Kind   InsightKind
	Number float64
	Label  string
}

func Currency(v float64) InsightValue { return InsightValue{Kind: KindCurrency, Number: v} }
func Rate(v float64) InsightValue     { return InsightValue{Kind: KindRate, Number: v} }
func Count(v int64) InsightValue      { return InsightValue{Kind: KindCount, Number: float64(v)} }
func Label(v string) InsightValue     { return InsightValue{Kind: KindLabel, Label: v} }

func (v InsightValue) IsNumeric() bool {
	return v.Kind != KindLabel
}

// MarshalJSON codifica o valor sem envelope, como número ou string
func (v InsightValue) MarshalJSON() ([]byte, error) {
	if v.Kind == KindLabel {
		return json.Marshal(v.Label)
	}
	if v.Kind == KindCount {
		return json.Marshal(int64(v.Number))
	}
	return json.Marshal(v.Number)
}

// UnmarshalJSON aceita número ou string. O tipo exato é recuperado pela chave.
func (v *InsightValue) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*v = Label(label)
		return nil
	}

	var number float64
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*v = InsightValue{Kind: KindRate, Number: number}
	return nil
}

// Insights é o mapeamento plano chave -> valor produzido pelo cálculo de insights
type Insights map[string]InsightValue

func (i Insights) Has(key string) bool {
	_, ok := i[key]
	return ok
}

func (i Insights) Number(key string) (float64, bool) {
	v, ok := i[key]
	if !ok || !v.IsNumeric() {
		return 0, false
	}
	return v.Number, true
}

func (i Insights) Label(key string) (string, bool) {
	v, ok := i[key]
	if !ok || v.Kind != KindLabel {
		return "", false
	}
	return v.Label, true
}

// UnmarshalJSON restaura os tipos conhecidos a partir da chave
func (i *Insights) UnmarshalJSON(data []byte) error {
	raw := map[string]InsightValue{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Insights, len(raw))
	for key, value := range raw {
		if value.Kind != KindLabel {
			value.Kind = KindForKey(key)
		}
		out[key] = value
	}
	*i = out
	return nil
}

// KindForKey retorna o tipo numérico esperado para uma chave conhecida
func KindForKey(key string) InsightKind {
	switch key {
	case KeyTotalSpend, KeyTotalRevenue:
		return KindCurrency
	case KeyTotalPurchases, KeyRowsProcessed, KeyRowsDropped, KeyTotalImpressions,
		KeyTotalClicks, KeyLowCTRRows, KeyLowROASRows:
		return KindCount
	case KeyBestCreativeType, KeyBestPlatform, KeyBestCountry, KeyBestAudienceType,
		KeyBestAdset, KeyHighestRevenueDay, KeyHighestROASDay:
		return KindLabel
	}
	return KindRate
}

// OrderedKeys retorna as chaves presentes: padrão, suplementares e depois as demais em ordem alfabética
func (i Insights) OrderedKeys() []string {
	keys := make([]string, 0, len(i))
	known := make(map[string]bool, len(StandardKeys)+len(SupplementaryKeys))

	for _, group := range [][]string{StandardKeys, SupplementaryKeys} {
		for _, key := range group {
			known[key] = true
			if i.Has(key) {
				keys = append(keys, key)
			}
		}
	}

	var extra []string
	for key := range i {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)

	return append(keys, extra...)
}

func IsBestKey(key string) bool {
	return strings.HasPrefix(key, "best_")
}
