package scoring

import "math"

// Value is a projected monthly value split by channel.
type Value struct {
	Pageviews float64 `json:"pageviews"`
	Ad        float64 `json:"ad"`
	Affiliate float64 `json:"affiliate"`
	Total     float64 `json:"total"`
}

// EstimateValue projects monthly pageviews from the score and the category's
// traffic baseline, then sums the ad and affiliate channel models.
func (s *Scorer) EstimateValue(score float64, category string) Value {
	pageviews := s.ProjectedPageviews(score, category)
	ad := AdRevenue(pageviews, s.revenue.RPM)
	commission := s.revenue.CommissionRate
	if rate, ok := s.revenue.CategoryCommissions[category]; ok {
		commission = rate
	}
	affiliate := AffiliateRevenue(pageviews, s.revenue.ClickThroughRate, s.revenue.ConversionRate,
		s.revenue.AverageOrderValue, commission)
	return Value{
		Pageviews: math.Round(pageviews),
		Ad:        roundCents(ad),
		Affiliate: roundCents(affiliate),
		Total:     roundCents(ad + affiliate),
	}
}

// ProjectedPageviews scales the category baseline by score/100.
func (s *Scorer) ProjectedPageviews(score float64, category string) float64 {
	baseline := s.revenue.MonthlyPageviews
	if views, ok := s.revenue.CategoryPageviews[category]; ok {
		baseline = views
	}
	return math.Max(0, baseline*clamp01(score/100))
}

// AdRevenue is pageviews × RPM / 1000.
func AdRevenue(pageviews, rpm float64) float64 {
	return math.Max(0, pageviews*rpm/1000)
}

// AffiliateRevenue is pageviews × CTR × conversion × order value × commission.
func AffiliateRevenue(pageviews, ctr, conversion, orderValue, commission float64) float64 {
	return math.Max(0, pageviews*ctr*conversion*orderValue*commission)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
