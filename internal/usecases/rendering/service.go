package rendering

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

const (
	SectionKPIOverview     = "KPI OVERVIEW"
	SectionBestPerformers  = "BEST PERFORMERS"
	SectionRecommendations = "RECOMMENDATIONS"
	SectionPlan            = "PLAN"

	NoBestPerformers  = "No best performers available."
	NoRecommendations = "No recommendations."
)

var errNilInsights = errors.New("insights mapping is nil")

type rule struct {
	key      string
	template string
}

// Ordem fixa das regras de recomendação
var rules = []rule{
	{domain.KeyBestPlatform, "Scale budget on %s for highest purchase volume"},
	{domain.KeyBestCreativeType, "Increase use of %s creatives for best ROAS"},
	{domain.KeyBestCountry, "Expand ads in %s (highest revenue)"},
	{domain.KeyBestAudienceType, "Allocate more spend to %s audiences"},
	{domain.KeyBestAdset, "Use learnings from %s to optimize weaker adsets"},
}

var acronyms = map[string]string{
	"ctr":  "CTR",
	"roas": "ROAS",
	"cpc":  "CPC",
}

type Renderer interface {
	Render(insights domain.Insights, plan []string) (*domain.Summary, error)
}

type Service struct{}

func NewService() Renderer {
	return &Service{}
}

func (s *Service) Render(insights domain.Insights, plan []string) (*domain.Summary, error) {
	if insights == nil {
		return nil, &domain.RenderError{Err: errNilInsights}
	}

	recommendations := Recommendations(insights)

	var b strings.Builder

	writeHeader(&b, SectionKPIOverview)
	for _, key := range insights.OrderedKeys() {
		fmt.Fprintf(&b, "- %s: %s\n", KeyLabel(key), FormatValue(insights[key]))
	}

	b.WriteString("\n")
	writeHeader(&b, SectionBestPerformers)
	bestCount := 0
	for _, key := range domain.BestKeys {
		label, ok := insights.Label(key)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", KeyLabel(key), label)
		bestCount++
	}
	if bestCount == 0 {
		b.WriteString(NoBestPerformers + "\n")
	}

	b.WriteString("\n")
	writeHeader(&b, SectionRecommendations)
	if len(recommendations) == 0 {
		b.WriteString(NoRecommendations + "\n")
	}
	for i, rec := range recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}

	b.WriteString("\n")
	writeHeader(&b, SectionPlan)
	for _, step := range plan {
		fmt.Fprintf(&b, "- %s\n", step)
	}

	return &domain.Summary{
		Report:          b.String(),
		Recommendations: recommendations,
	}, nil
}

// Recommendations aplica a tabela de regras; cada regra só dispara se a chave existir
func Recommendations(insights domain.Insights) []string {
	out := []string{}
	for _, r := range rules {
		label, ok := insights.Label(r.key)
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf(r.template, label))
	}
	return out
}

// KeyLabel converte a chave em título: total_spend -> Total Spend, average_ctr -> Average CTR
func KeyLabel(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if acronym, ok := acronyms[w]; ok {
			words[i] = acronym
			continue
		}
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// FormatValue aplica a precisão do tipo: moeda 2 casas, taxa 4 casas, contagem inteira
func FormatValue(v domain.InsightValue) string {
	switch v.Kind {
	case domain.KindLabel:
		return v.Label
	case domain.KindCurrency:
		return fmt.Sprintf("%.2f", v.Number)
	case domain.KindCount:
		return fmt.Sprintf("%d", int64(v.Number))
	default:
		return fmt.Sprintf("%.4f", v.Number)
	}
}

func writeHeader(b *strings.Builder, title string) {
	fmt.Fprintf(b, "=== %s ===\n", title)
}
