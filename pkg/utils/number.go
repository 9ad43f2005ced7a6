package utils

import (
	"math"
	"strconv"
	"strings"
)

func RoundWithTwoDecimalPlace(f float64) float64 {
	if f == 0 {
		return 0
	}

	return math.Round(f*100) / 100
}

// ParseNumber interpreta uma célula numérica; aceita separador de milhar, símbolo de moeda e percentual (5% = 0.05)
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	s = strings.TrimPrefix(s, "$")
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	if percent {
		v /= 100
	}

	return v, true
}

// ParseCount interpreta uma contagem inteira; valores fracionários são truncados.
// Negativos e valores fora do intervalo de int64 são rejeitados.
func ParseCount(raw string) (int64, bool) {
	v, ok := ParseNumber(raw)
	if !ok || v < 0 || v >= math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}
