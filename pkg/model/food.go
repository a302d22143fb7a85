package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrMissingKey = goerr.New("missing key in analysis")
)

type AnalysisID string

// NewAnalysisID generates a new unique AnalysisID
func NewAnalysisID() AnalysisID {
	return AnalysisID(uuid.New().String())
}

// Countries is the set of cuisine country codes accepted in an analysis
var Countries = []string{"CN", "ES", "FR", "IT", "JP", "KR", "MX", "TH", "US", "VN"}

// Allergens is the set of canonical allergen values accepted in an analysis
var Allergens = []string{
	"BEEF", "BUCKWHEAT", "CHICKEN", "CRAB", "EGG", "MACKEREL", "MILK", "PEACH",
	"PEANUT", "PINE_NUT", "PORK", "SHELLFISH", "SHRIMP", "SOY", "SQUID",
	"SULFITES", "TOMATO", "WALNUT", "WHEAT",
}

// AnalysisKeys are the keys the model must return
var AnalysisKeys = []string{
	"country", "dishName", "ingredients", "allergens",
	"summary", "recommendations", "culturalBackground",
}

// FoodAnalysis is the normalized result of analyzing a single dish
type FoodAnalysis struct {
	ID                 AnalysisID `json:"analysisId" yaml:"analysisId" firestore:"analysisId"`
	FoodName           string     `json:"foodName" yaml:"foodName" firestore:"foodName"`
	Country            string     `json:"country" yaml:"country" firestore:"country"`
	DishName           string     `json:"dishName" yaml:"dishName" firestore:"dishName"`
	Ingredients        []string   `json:"ingredients" yaml:"ingredients" firestore:"ingredients"`
	Allergens          []string   `json:"allergens" yaml:"allergens" firestore:"allergens"`
	Summary            string     `json:"summary" yaml:"summary" firestore:"summary"`
	Recommendations    []string   `json:"recommendations" yaml:"recommendations" firestore:"recommendations"`
	CulturalBackground string     `json:"culturalBackground" yaml:"culturalBackground" firestore:"culturalBackground"`
	AnalyzedAt         time.Time  `json:"analyzedAt" yaml:"analyzedAt" firestore:"analyzedAt"`
}

// NewFoodAnalysis validates raw model output and normalizes it.
//   - every key in AnalysisKeys must be present
//   - string fields are trimmed, list fields are trimmed and deduplicated
//   - country outside Countries becomes ""
//   - allergens are mapped to canonical values, unknown ones dropped
func NewFoodAnalysis(foodName string, raw map[string]any) (*FoodAnalysis, error) {
	for _, k := range AnalysisKeys {
		if _, ok := raw[k]; !ok {
			return nil, goerr.Wrap(ErrMissingKey, "invalid analysis", goerr.V("key", k))
		}
	}

	a := &FoodAnalysis{
		FoodName:           foodName,
		DishName:           toStr(raw["dishName"]),
		Summary:            toStr(raw["summary"]),
		CulturalBackground: toStr(raw["culturalBackground"]),
		Ingredients:        strList(raw["ingredients"]),
		Recommendations:    strList(raw["recommendations"]),
		Country:            NormalizeCountry(toStr(raw["country"])),
	}

	for _, s := range strList(raw["allergens"]) {
		if v, ok := NormalizeAllergen(s); ok {
			a.Allergens = append(a.Allergens, v)
		}
	}
	a.Allergens = uniq(a.Allergens)

	return a, nil
}

// NormalizeCountry returns code if it is a known country code, otherwise ""
func NormalizeCountry(code string) string {
	for _, c := range Countries {
		if c == code {
			return c
		}
	}
	return ""
}

// NormalizeAllergen maps s to its canonical allergen, tolerating case and a
// trailing plural "s".
func NormalizeAllergen(s string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return "", false
	}

	lookup := func(v string) (string, bool) {
		for _, a := range Allergens {
			if strings.ToLower(a) == v {
				return a, true
			}
		}
		return "", false
	}

	if v, ok := lookup(lower); ok {
		return v, true
	}
	if strings.HasSuffix(lower, "s") {
		return lookup(strings.TrimSuffix(lower, "s"))
	}
	return "", false
}

func toStr(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func strList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, x := range items {
		if s := toStr(x); s != "" {
			out = append(out, s)
		}
	}
	return uniq(out)
}

func uniq(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
