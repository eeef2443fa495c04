package service

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World!", "hello-world"},
		{"  Trim Me  ", "trim-me"},
		{"Too    Many     Spaces", "too-many-spaces"},
		{"Strategi Pemasaran Digital 2026", "strategi-pemasaran-digital-2026"},
		{"Price: $99.99", "price-9999"},
		{"already-a-slug", "already-a-slug"},
		{"under_score mix", "under_score-mix"},
		{"Café Économique", "cafe-economique"},
		{"naïve résumé", "naive-resume"},
		{"北京 report", "report"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Slugify(tc.input); got != tc.expected {
			t.Fatalf("Slugify(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}
