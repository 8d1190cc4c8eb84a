package catalog

import "testing"

func TestToSlug(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Karnataka", "karnataka"},
		{"spaces", "Tamil Nadu", "tamil-nadu"},
		{"ampersand kept as letters only", "Jammu & Kashmir", "jammu-kashmir"},
		{"trailing punctuation trimmed", "Delhi.", "delhi"},
		{"repeated separators collapse", "Andaman   and  Nicobar", "andaman-and-nicobar"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ToSlug(c.in); got != c.want {
				t.Errorf("ToSlug(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestStaticDictionaryByLanguage(t *testing.T) {
	dict := NewStaticDictionary([]HeatTerm{
		{Term: "heatwave", Category: CategoryHeatwave, Language: "en"},
		{Term: "drought", Category: CategoryWaterCrisis, Language: "en"},
		{Term: "लू", Category: CategoryHeatwave, Language: "hi"},
	})

	enTerms := dict.ByLanguage("en")
	if len(enTerms) != 2 {
		t.Fatalf("expected 2 english terms, got %d", len(enTerms))
	}

	hiTerms := dict.ByLanguageAndCategory("hi", CategoryHeatwave)
	if len(hiTerms) != 1 || hiTerms[0].Term != "लू" {
		t.Errorf("expected single hindi heatwave term, got %v", hiTerms)
	}

	if len(dict.ByLanguageAndCategory("en", CategoryPowerCuts)) != 0 {
		t.Errorf("expected no english power-cut terms")
	}
}

func TestSampleRegionsHaveDistricts(t *testing.T) {
	regions := SampleRegions()
	if len(regions) == 0 {
		t.Fatal("expected at least one sample region")
	}
	for _, r := range regions {
		if r.Slug == "" {
			t.Errorf("region %q has empty slug", r.Name)
		}
		if len(r.Languages) == 0 {
			t.Errorf("region %q has no languages", r.Name)
		}
	}
}
