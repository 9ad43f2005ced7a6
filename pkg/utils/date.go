package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayouts são os formatos aceitos para a coluna de data
var DateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	time.DateTime,
	time.RFC3339,
}

// ParseDate interpreta a data em qualquer formato aceito e retorna meia-noite UTC do dia
func ParseDate(dateStr string) (*time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil, fmt.Errorf("empty date")
	}

	for _, layout := range DateLayouts {
		parsed, err := time.Parse(layout, dateStr)
		if err != nil {
			continue
		}

		date := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		return &date, nil
	}

	return nil, fmt.Errorf("unrecognized date %q", dateStr)
}
