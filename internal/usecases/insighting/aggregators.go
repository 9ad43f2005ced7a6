package insighting

import (
	"sort"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

// group acumula os valores de um rótulo
type group struct {
	label  string
	values []float64
}

func (g *group) sum() float64 {
	return stableSum(g.values)
}

func (g *group) mean() float64 {
	if len(g.values) == 0 {
		return 0
	}
	return g.sum() / float64(len(g.values))
}

// stableSum soma em ordem crescente, o resultado não depende da ordem das linhas
func stableSum(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var total float64
	for _, v := range sorted {
		total += v
	}
	return total
}

// groupBy agrupa os registros pelo rótulo. Rótulos vazios e valores indefinidos são ignorados.
func groupBy(
	records []domain.AdRecord,
	label func(domain.AdRecord) string,
	value func(domain.AdRecord) (float64, bool),
) map[string]*group {
	groups := make(map[string]*group)

	for _, r := range records {
		key := label(r)
		if key == "" {
			continue
		}
		v, ok := value(r)
		if !ok {
			continue
		}

		g, exists := groups[key]
		if !exists {
			g = &group{label: key}
			groups[key] = g
		}
		g.values = append(g.values, v)
	}

	return groups
}

// argMax retorna o rótulo de maior pontuação; empate exato fica com o menor rótulo
func argMax(groups map[string]*group, score func(*group) float64) (string, bool) {
	if len(groups) == 0 {
		return "", false
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := labels[0]
	bestScore := score(groups[best])
	for _, label := range labels[1:] {
		if s := score(groups[label]); s > bestScore {
			best, bestScore = label, s
		}
	}

	return best, true
}

func revenue(r domain.AdRecord) (float64, bool) {
	return r.Revenue, true
}

func definedROAS(r domain.AdRecord) (float64, bool) {
	if r.ROAS == nil {
		return 0, false
	}
	return *r.ROAS, true
}

func definedCTR(r domain.AdRecord) (float64, bool) {
	if r.CTR == nil {
		return 0, false
	}
	return *r.CTR, true
}

func dimension(column string) func(domain.AdRecord) string {
	return func(r domain.AdRecord) string {
		return r.Dimension(column)
	}
}

func collect(records []domain.AdRecord, value func(domain.AdRecord) (float64, bool)) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := value(r); ok {
			out = append(out, v)
		}
	}
	return out
}
