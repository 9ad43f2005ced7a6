package rendering

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

// ParseReport lê de volta os valores numéricos da seção KPI OVERVIEW
func ParseReport(report string) (map[string]float64, error) {
	values := make(map[string]float64)
	header := fmt.Sprintf("=== %s ===", SectionKPIOverview)

	scanner := bufio.NewScanner(strings.NewReader(report))
	inOverview := false
	found := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "=== ") {
			inOverview = line == header
			found = found || inOverview
			continue
		}
		if !inOverview || !strings.HasPrefix(line, "- ") {
			continue
		}

		label, raw, ok := strings.Cut(strings.TrimPrefix(line, "- "), ": ")
		if !ok {
			continue
		}
		key := labelKey(label)
		if domain.KindForKey(key) == domain.KindLabel {
			continue
		}
		number, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		values[key] = number
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("report has no %s section", SectionKPIOverview)
	}

	return values, nil
}

func labelKey(label string) string {
	return strings.ToLower(strings.ReplaceAll(label, " ", "_"))
}
