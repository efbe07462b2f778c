package i18n

import "testing"

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Language
		ok   bool
	}{
		{in: "de", want: German, ok: true},
		{in: "de-AT", want: German, ok: true},
		{in: "TR", want: Turkish, ok: true},
		{in: "en-US", want: English, ok: true},
		{in: "fr", ok: false},
		{in: "", ok: false},
		{in: "not a tag", ok: false},
	}
	for _, tc := range tests {
		got, ok := ParseLanguage(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseLanguage(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMatchAcceptLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   Language
	}{
		{header: "tr-TR,tr;q=0.9,en;q=0.8", want: Turkish},
		{header: "en-GB,en;q=0.9", want: English},
		{header: "", want: German},
		{header: "ja", want: German},
	}
	for _, tc := range tests {
		if got := MatchAcceptLanguage(tc.header, German); got != tc.want {
			t.Fatalf("MatchAcceptLanguage(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestLanguageLabel(t *testing.T) {
	t.Parallel()

	if got := German.Label(); got != "Deutsch" {
		t.Fatalf("German.Label() = %q, want Deutsch", got)
	}
	if got := English.Label(); got != "English" {
		t.Fatalf("English.Label() = %q, want English", got)
	}
}
