// Package catalog defines the read-only geography and heat-term master data
// the query generator enumerates over. The real catalogs are external
// collaborators (spec.md §1); this package defines the interfaces they must
// satisfy plus a small embedded sample dataset sufficient to exercise and
// test the generator end-to-end.
package catalog

import (
	"strings"

	"heatnews/internal/newsmodel"
)

// RegionKind distinguishes a full state from a union territory.
type RegionKind string

const (
	KindState          RegionKind = "state"
	KindUnionTerritory RegionKind = "union-territory"
)

// District is a single administrative subdivision of a Region.
type District struct {
	Name string
	Slug string
}

// Region is a state or union territory.
type Region struct {
	Name      string
	Slug      string
	Kind      RegionKind
	Languages []newsmodel.Language
	Districts []District // ordered, as given by the upstream master data
}

// HeatCategory is one of the 8 fixed heat-term categories.
type HeatCategory string

const (
	CategoryHeatwave            HeatCategory = "heatwave"
	CategoryDeathStroke         HeatCategory = "death_stroke"
	CategoryWaterCrisis         HeatCategory = "water_crisis"
	CategoryPowerCuts           HeatCategory = "power_cuts"
	CategoryCropDamage          HeatCategory = "crop_damage"
	CategoryHumanImpact         HeatCategory = "human_impact"
	CategoryGovernmentResponse  HeatCategory = "government_response"
	CategoryTemperature         HeatCategory = "temperature"
)

// AllCategories lists the 8 categories in their canonical priority order,
// which ByLanguage and relevance scoring follow. The query generator does
// not use this order for per-category queries: it iterates over an
// alphabetically sorted copy.
var AllCategories = []HeatCategory{
	CategoryHeatwave,
	CategoryDeathStroke,
	CategoryWaterCrisis,
	CategoryPowerCuts,
	CategoryCropDamage,
	CategoryHumanImpact,
	CategoryGovernmentResponse,
	CategoryTemperature,
}

// HeatTerm is a single word/phrase in one language denoting a heat-related
// concept, tagged with the category it belongs to.
type HeatTerm struct {
	Term     string
	Category HeatCategory
	Language newsmodel.Language
}

// Dictionary is the read-only heat-term lookup contract the query generator
// depends on.
type Dictionary interface {
	// ByLanguage returns every term defined for a language, in the stable
	// priority order (category order, then intra-category order) the
	// generator relies on when trimming low-priority terms to fit a char
	// limit (spec.md §4.1).
	ByLanguage(code newsmodel.Language) []HeatTerm

	// ByLanguageAndCategory returns the terms for a single (language,
	// category) pair, in priority order.
	ByLanguageAndCategory(code newsmodel.Language, category HeatCategory) []HeatTerm
}

// StaticDictionary is an in-memory Dictionary built from a fixed term list.
// It is the reference implementation used by tests and the sample CLI; the
// production catalog is expected to be swapped in by the process entry
// point (an external collaborator per spec.md §1).
type StaticDictionary struct {
	terms []HeatTerm
}

// NewStaticDictionary builds a dictionary from a flat term list. The input
// order is preserved as the priority order within each (language, category)
// bucket.
func NewStaticDictionary(terms []HeatTerm) *StaticDictionary {
	return &StaticDictionary{terms: terms}
}

func (d *StaticDictionary) ByLanguage(code newsmodel.Language) []HeatTerm {
	var out []HeatTerm
	for _, cat := range AllCategories {
		out = append(out, d.ByLanguageAndCategory(code, cat)...)
	}
	return out
}

func (d *StaticDictionary) ByLanguageAndCategory(code newsmodel.Language, category HeatCategory) []HeatTerm {
	var out []HeatTerm
	for _, t := range d.terms {
		if t.Language == code && t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// SampleDictionary returns a small multi-language, multi-category term set
// sufficient for tests and local runs; a real deployment wires in the full
// master dictionary from outside this module.
func SampleDictionary() *StaticDictionary {
	return NewStaticDictionary([]HeatTerm{
		{Term: "heatwave", Category: CategoryHeatwave, Language: newsmodel.LangEnglish},
		{Term: "heat wave warning", Category: CategoryHeatwave, Language: newsmodel.LangEnglish},
		{Term: "extreme heat", Category: CategoryHeatwave, Language: newsmodel.LangEnglish},
		{Term: "heatstroke", Category: CategoryDeathStroke, Language: newsmodel.LangEnglish},
		{Term: "heat death", Category: CategoryDeathStroke, Language: newsmodel.LangEnglish},
		{Term: "water shortage", Category: CategoryWaterCrisis, Language: newsmodel.LangEnglish},
		{Term: "drought", Category: CategoryWaterCrisis, Language: newsmodel.LangEnglish},
		{Term: "power cut", Category: CategoryPowerCuts, Language: newsmodel.LangEnglish},
		{Term: "load shedding", Category: CategoryPowerCuts, Language: newsmodel.LangEnglish},
		{Term: "crop failure", Category: CategoryCropDamage, Language: newsmodel.LangEnglish},
		{Term: "crop damage", Category: CategoryCropDamage, Language: newsmodel.LangEnglish},
		{Term: "heat illness", Category: CategoryHumanImpact, Language: newsmodel.LangEnglish},
		{Term: "hospital admissions", Category: CategoryHumanImpact, Language: newsmodel.LangEnglish},
		{Term: "heat action plan", Category: CategoryGovernmentResponse, Language: newsmodel.LangEnglish},
		{Term: "relief camp", Category: CategoryGovernmentResponse, Language: newsmodel.LangEnglish},
		{Term: "temperature record", Category: CategoryTemperature, Language: newsmodel.LangEnglish},
		{Term: "degrees celsius", Category: CategoryTemperature, Language: newsmodel.LangEnglish},

		{Term: "लू", Category: CategoryHeatwave, Language: newsmodel.LangHindi},
		{Term: "गर्मी का प्रकोप", Category: CategoryHeatwave, Language: newsmodel.LangHindi},
		{Term: "लू से मौत", Category: CategoryDeathStroke, Language: newsmodel.LangHindi},
		{Term: "जल संकट", Category: CategoryWaterCrisis, Language: newsmodel.LangHindi},
		{Term: "बिजली कटौती", Category: CategoryPowerCuts, Language: newsmodel.LangHindi},
		{Term: "फसल नुकसान", Category: CategoryCropDamage, Language: newsmodel.LangHindi},
		{Term: "लू से बीमार", Category: CategoryHumanImpact, Language: newsmodel.LangHindi},
		{Term: "राहत शिविर", Category: CategoryGovernmentResponse, Language: newsmodel.LangHindi},
		{Term: "तापमान रिकॉर्ड", Category: CategoryTemperature, Language: newsmodel.LangHindi},

		{Term: "வெப்ப அலை", Category: CategoryHeatwave, Language: newsmodel.LangTamil},
		{Term: "வெப்ப அடி மரணம்", Category: CategoryDeathStroke, Language: newsmodel.LangTamil},
		{Term: "நீர் பற்றாக்குறை", Category: CategoryWaterCrisis, Language: newsmodel.LangTamil},
	})
}

// SampleRegions returns a small realistic subset of India's states/UTs
// sufficient for tests and local demonstration; production deployments wire
// in the full 36-region master catalog from outside this module.
func SampleRegions() []Region {
	karnatakaDistricts := make([]District, 0, 31)
	names := []string{
		"Bengaluru Urban", "Mysuru", "Belagavi", "Kalaburagi", "Dharwad",
		"Tumakuru", "Ballari", "Vijayapura", "Shivamogga", "Hassan",
		"Mandya", "Udupi", "Chikkamagaluru", "Davanagere", "Kolar",
		"Raichur", "Bidar", "Koppal", "Chitradurga", "Haveri",
		"Bagalkote", "Chamarajanagar", "Gadag", "Kodagu", "Ramanagara",
		"Yadgir", "Uttara Kannada", "Dakshina Kannada", "Bengaluru Rural", "Chikkaballapur",
		"Vijayanagara",
	}
	for _, n := range names {
		karnatakaDistricts = append(karnatakaDistricts, District{Name: n, Slug: Slugify(n)})
	}

	return []Region{
		{
			Name:      "Karnataka",
			Slug:      "karnataka",
			Kind:      KindState,
			Languages: []newsmodel.Language{newsmodel.LangEnglish, newsmodel.LangKannada, newsmodel.LangHindi},
			Districts: karnatakaDistricts,
		},
		{
			Name:      "Tamil Nadu",
			Slug:      "tamil-nadu",
			Kind:      KindState,
			Languages: []newsmodel.Language{newsmodel.LangEnglish, newsmodel.LangTamil},
			Districts: []District{
				{Name: "Chennai", Slug: "chennai"},
				{Name: "Coimbatore", Slug: "coimbatore"},
				{Name: "Madurai", Slug: "madurai"},
			},
		},
		{
			Name:      "Uttar Pradesh",
			Slug:      "uttar-pradesh",
			Kind:      KindState,
			Languages: []newsmodel.Language{newsmodel.LangEnglish, newsmodel.LangHindi, newsmodel.LangUrdu},
			Districts: []District{
				{Name: "Lucknow", Slug: "lucknow"},
				{Name: "Kanpur Nagar", Slug: "kanpur-nagar"},
				{Name: "Varanasi", Slug: "varanasi"},
				{Name: "Prayagraj", Slug: "prayagraj"},
			},
		},
		{
			Name:      "Delhi",
			Slug:      "delhi",
			Kind:      KindUnionTerritory,
			Languages: []newsmodel.Language{newsmodel.LangEnglish, newsmodel.LangHindi, newsmodel.LangPunjabi},
			Districts: []District{
				{Name: "New Delhi", Slug: "new-delhi"},
				{Name: "South Delhi", Slug: "south-delhi"},
			},
		},
	}
}

// Slugify turns a human-readable region or district name into the kebab-case
// identifier carried on queries and checkpoint keys, implemented as a pure
// function rather than a lookup table. Output directory names are not built
// from it; the output writer slugifies state names with output.StateSlug.
func Slugify(name string) string {
	return ToSlug(name)
}

// ToSlug lowercases name and replaces runs of spaces, hyphens, underscores
// and dots with single hyphens, dropping every other character that is not an
// ASCII letter or digit (so "&" and non-Latin letters are removed).
func ToSlug(name string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ', r == '-', r == '_', r == '.':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
