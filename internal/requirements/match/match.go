// internal/requirements/match/match.go
package match

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"loandoc-workers/internal/models"
)

// countryNames maps common country spellings to their 2-letter codes.
// Two-character inputs bypass this table entirely (see NormalizeCountryCode).
var countryNames = map[string]string{
	"united states":            "US",
	"united states of america": "US",
	"usa":                      "US",
	"america":                  "US",
	"canada":                   "CA",
	"united kingdom":           "GB",
	"great britain":            "GB",
	"england":                  "GB",
	"australia":                "AU",
	"new zealand":              "NZ",
	"mexico":                   "MX",
}

// NormalizeCountryCode resolves an applicant country input to an uppercase
// 2-letter code. The input may be a bare string, an ApplicantLocation, or a
// loosely-typed map carrying country/countryCode keys. Two-character inputs
// are assumed to already be codes and are passed through uppercased without
// an ISO validity check. Unrecognized inputs normalize to "".
func NormalizeCountryCode(raw any) string {
	switch v := raw.(type) {
	case string:
		return normalizeCountryString(v)
	case models.ApplicantLocation:
		if code := normalizeCountryString(v.CountryCode); code != "" {
			return code
		}
		return normalizeCountryString(v.Country)
	case *models.ApplicantLocation:
		if v == nil {
			return ""
		}
		return NormalizeCountryCode(*v)
	case map[string]any:
		for _, key := range []string{"countryCode", "country_code", "country"} {
			if s, ok := v[key].(string); ok {
				if code := normalizeCountryString(s); code != "" {
					return code
				}
			}
		}
		return ""
	default:
		return ""
	}
}

func normalizeCountryString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) == 2 {
		return strings.ToUpper(s)
	}
	if code, ok := countryNames[strings.ToLower(s)]; ok {
		return code
	}
	return ""
}

// FilterProductsForApplicant keeps products whose country is unset (treated
// as universal) or matches the applicant's normalized country code, and whose
// amount range contains the requested amount inclusively. A requested amount
// that is zero, negative, or NaN matches nothing.
func FilterProductsForApplicant(products []models.LenderProduct, applicantCountry any, amountRequested float64) []models.LenderProduct {
	if amountRequested <= 0 || math.IsNaN(amountRequested) {
		return nil
	}

	code := NormalizeCountryCode(applicantCountry)

	var out []models.LenderProduct
	for _, p := range products {
		productCountry := strings.TrimSpace(p.Country)
		if productCountry != "" && !strings.EqualFold(productCountry, code) {
			continue
		}
		if amountRequested < p.AmountMin || amountRequested > p.AmountMax {
			continue
		}
		out = append(out, p)
	}
	return out
}

// GroupProductsByLender groups products by lender ID. Lenders with a blank
// name get a synthesized "Lender {id}" label. Groups are sorted by lender
// name and products within a group by product name.
func GroupProductsByLender(products []models.LenderProduct) []models.LenderGroup {
	byLender := make(map[string]*models.LenderGroup)
	var order []string

	for _, p := range products {
		g, ok := byLender[p.LenderID]
		if !ok {
			name := strings.TrimSpace(p.LenderName)
			if name == "" {
				name = fmt.Sprintf("Lender %s", p.LenderID)
			}
			g = &models.LenderGroup{LenderID: p.LenderID, LenderName: name}
			byLender[p.LenderID] = g
			order = append(order, p.LenderID)
		}
		g.Products = append(g.Products, p)
	}

	groups := make([]models.LenderGroup, 0, len(order))
	for _, id := range order {
		g := byLender[id]
		sort.SliceStable(g.Products, func(i, j int) bool {
			return strings.Compare(g.Products[i].ProductName, g.Products[j].ProductName) < 0
		})
		groups = append(groups, *g)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return strings.Compare(groups[i].LenderName, groups[j].LenderName) < 0
	})
	return groups
}

// BuildCategorySummaries computes, for each category present in the given
// (already country-filtered) product set, the min/max declared amounts and
// how many products' ranges include the requested amount. A category whose
// products declare no amounts reports 0 for both bounds. Results are sorted
// alphabetically by category name.
func BuildCategorySummaries(products []models.LenderProduct, amountRequested float64) []models.CategorySummary {
	byCategory := make(map[string]*models.CategorySummary)

	for _, p := range products {
		cat := strings.TrimSpace(p.Category)
		if cat == "" {
			continue
		}
		s, ok := byCategory[cat]
		if !ok {
			s = &models.CategorySummary{Category: cat}
			byCategory[cat] = s
		}
		s.ProductCount++

		if p.AmountMin > 0 || p.AmountMax > 0 {
			if s.MinAmount == 0 || p.AmountMin < s.MinAmount {
				s.MinAmount = p.AmountMin
			}
			if p.AmountMax > s.MaxAmount {
				s.MaxAmount = p.AmountMax
			}
		}

		if amountRequested > 0 && !math.IsNaN(amountRequested) &&
			amountRequested >= p.AmountMin && amountRequested <= p.AmountMax {
			s.MatchingCount++
		}
	}

	out := make([]models.CategorySummary, 0, len(byCategory))
	for _, s := range byCategory {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Category, out[j].Category) < 0
	})
	return out
}
