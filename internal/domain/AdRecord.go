package domain

import (
	"fmt"
	"math"
	"time"
)

// Colunas reconhecidas no dataset de anúncios
const (
	ColumnDate             = "date"
	ColumnCampaignName     = "campaign_name"
	ColumnAdsetName        = "adset_name"
	ColumnAdName           = "ad_name"
	ColumnImpressions      = "impressions"
	ColumnClicks           = "clicks"
	ColumnSpend            = "spend"
	ColumnRevenue          = "revenue"
	ColumnPurchases        = "purchases"
	ColumnCPC              = "cpc"
	ColumnCTR              = "ctr"
	ColumnROAS             = "roas"
	ColumnFrequency        = "frequency"
	ColumnCreativeText     = "creative_text"
	ColumnCreativeHeadline = "creative_headline"
	ColumnCreativeType     = "creative_type"
	ColumnCountry          = "country"
	ColumnPlatform         = "platform"
	ColumnAudienceType     = "audience_type"
)

// RequiredColumns são as colunas sem as quais o dataset não pode ser analisado
var RequiredColumns = []string{
	ColumnDate,
	ColumnSpend,
	ColumnRevenue,
	ColumnClicks,
	ColumnImpressions,
}

const ratioTolerance = 1e-6

// AdRecord representa uma linha do dataset (date, campaign, adset, ad)
type AdRecord struct {
	Date             time.Time `json:"date"`
	CampaignName     string    `json:"campaign_name,omitempty"`
	AdsetName        string    `json:"adset_name,omitempty"`
	AdName           string    `json:"ad_name,omitempty"`
	Impressions      int64     `json:"impressions"`
	Clicks           int64     `json:"clicks"`
	Spend            float64   `json:"spend"`
	Revenue          float64   `json:"revenue"`
	Purchases        int64     `json:"purchases"`
	CPC              *float64  `json:"cpc,omitempty"`
	CTR              *float64  `json:"ctr,omitempty"`
	ROAS             *float64  `json:"roas,omitempty"`
	Frequency        float64   `json:"frequency,omitempty"`
	CreativeText     string    `json:"creative_text,omitempty"`
	CreativeHeadline string    `json:"creative_headline,omitempty"`
	CreativeType     string    `json:"creative_type,omitempty"`
	Country          string    `json:"country,omitempty"`
	Platform         string    `json:"platform,omitempty"`
	AudienceType     string    `json:"audience_type,omitempty"`
}

func (r AdRecord) DayLabel() string {
	return r.Date.Format(time.DateOnly)
}

func (r AdRecord) Dimension(column string) string {
	switch column {
	case ColumnCampaignName:
		return r.CampaignName
	case ColumnAdsetName:
		return r.AdsetName
	case ColumnAdName:
		return r.AdName
	case ColumnCreativeType:
		return r.CreativeType
	case ColumnCountry:
		return r.Country
	case ColumnPlatform:
		return r.Platform
	case ColumnAudienceType:
		return r.AudienceType
	case ColumnDate:
		return r.DayLabel()
	}
	return ""
}

// Ratio divide numerador por denominador; nil quando o denominador é zero
func Ratio(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := numerator / denominator
	return &v
}

// Validate verifica as invariantes do registro. Violações não descartam a linha.
func (r AdRecord) Validate() []string {
	var problems []string

	counts := []struct {
		name  string
		value int64
	}{
		{ColumnImpressions, r.Impressions},
		{ColumnClicks, r.Clicks},
		{ColumnPurchases, r.Purchases},
	}
	for _, c := range counts {
		if c.value < 0 {
			problems = append(problems, fmt.Sprintf("negative %s (%d)", c.name, c.value))
		}
	}

	if r.Clicks > r.Impressions {
		problems = append(problems, fmt.Sprintf("clicks (%d) greater than impressions (%d)", r.Clicks, r.Impressions))
	}
	if r.Spend < 0 {
		problems = append(problems, fmt.Sprintf("negative spend (%.2f)", r.Spend))
	}
	if r.Revenue < 0 {
		problems = append(problems, fmt.Sprintf("negative revenue (%.2f)", r.Revenue))
	}

	checks := []struct {
		name     string
		value    *float64
		expected *float64
	}{
		{ColumnCTR, r.CTR, Ratio(float64(r.Clicks), float64(r.Impressions))},
		{ColumnROAS, r.ROAS, Ratio(r.Revenue, r.Spend)},
		{ColumnCPC, r.CPC, Ratio(r.Spend, float64(r.Clicks))},
	}
	for _, c := range checks {
		if c.value == nil || c.expected == nil {
			continue
		}
		if !withinTolerance(*c.value, *c.expected) {
			problems = append(problems, fmt.Sprintf("%s %.6f inconsistent with source columns (expected %.6f)", c.name, *c.value, *c.expected))
		}
	}

	return problems
}

func withinTolerance(a, b float64) bool {
	diff := math.Abs(a - b)
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return diff <= ratioTolerance*scale
}
