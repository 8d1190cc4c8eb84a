package sourceadapter

import "testing"

func TestExtractDomainStripsSchemeAndWWW(t *testing.T) {
	cases := map[string]string{
		"https://www.thehindu.com/news/article?id=5": "thehindu.com",
		"http://timesofindia.com/city/bengaluru":      "timesofindia.com",
		"ndtv.com/india-news/heatwave":                "ndtv.com",
		"":                                             "Unknown",
	}
	for in, want := range cases {
		if got := extractDomain(in); got != want {
			t.Errorf("extractDomain(%q) = %q, want %q", in, got, want)
		}
	}
}
