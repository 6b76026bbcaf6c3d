package metrics

import "testing"

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/", "/"},
		{"/api/v1/runs", "/api/v1/runs"},
		{"/api/v1/runs/a1b2c3", "/api/v1/runs/{id}"},
		{"/api/v1/runs/a1b2c3/territory.csv", "/api/v1/runs/{id}/territory.csv"},
		{"/api/v1/runs/a1b2c3/poi.csv", "/api/v1/runs/{id}/poi.csv"},
		{"/api/v1/datasets/poi", "/api/v1/datasets/{kind}"},

		// Unknown/bot paths collapse to "other".
		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/api/v2/something", "other"},
		{"/favicon.ico", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := normalizeRoute(tt.path)
			if got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestMetricsCardinality verifies that 100 unique run IDs produce exactly
// 1 distinct path label, not 100.
func TestMetricsCardinality(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		label := normalizeRoute("/api/v1/runs/run-" + string(rune('a'+i%26)) + string(rune('a'+i/26)))
		seen[label] = true
	}
	if len(seen) != 1 {
		t.Errorf("expected 1 unique label for parameterized run paths, got %d: %v", len(seen), seen)
	}
}
