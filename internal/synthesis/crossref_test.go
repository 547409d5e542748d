package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codelens/driftscan/internal/producer"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"user authentication", "auth", true},
		{"caching layer", "cache", true},
		{"completely unrelated thing", "auth", false},
		{"rate limiting", "rate-limiter", true},
		{"Webhooks", "webhook", true},
		{"API_gateway", "api gateway", true},
		{"search", "serch", true}, // typo within edit distance
		{"billing", "metrics", false},
		{"", "auth", false},
		{"auth", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.a, tt.b))
			assert.Equal(t, tt.want, Match(tt.b, tt.a), "match must be symmetric")
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"User Authentication", "userauthentication"},
		{"rate-limiting", "ratelimiting"},
		{"web_hooks", "webhook"},
		{"Metrics", "metric"},
		{"s", "s"}, // a single "s" is not a plural suffix
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLabel(tt.in), "normalize(%q)", tt.in)
	}
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("auth", "auth"))
	assert.Equal(t, 1, editDistance("auth", "aut"))
	assert.Equal(t, 4, editDistance("", "auth"))
	assert.Equal(t, 3, editDistance("kitten", "sitting"))
}

func TestCrossReferencePartitions(t *testing.T) {
	documented := []string{"user authentication", "caching layer", "billing engine"}
	implemented := []producer.Feature{
		{Name: "auth", Path: "internal/auth"},
		{Name: "cache", Path: "internal/cache"},
		{Name: "metrics", Path: "internal/metrics"},
	}

	got := CrossReference(documented, implemented)

	assert.Equal(t, []string{"user authentication", "caching layer"}, got.Aligned)
	assert.Equal(t, []string{"billing engine"}, got.DocumentedNotImplemented)
	assert.Equal(t, []string{"metrics"}, got.ImplementedNotDocumented)
	assert.Empty(t, got.PartiallyImplemented, "reserved partition stays empty")
}

func TestCrossReferenceEmptyInputs(t *testing.T) {
	got := CrossReference(nil, nil)
	assert.Empty(t, got.Aligned)
	assert.Empty(t, got.DocumentedNotImplemented)
	assert.Empty(t, got.ImplementedNotDocumented)
}

func TestCrossReferenceOneImplementationCoversManyDocs(t *testing.T) {
	// Permissive by design: several documented labels may align with the
	// same implementation.
	documented := []string{"auth", "authentication"}
	implemented := []producer.Feature{{Name: "user auth"}}

	got := CrossReference(documented, implemented)
	assert.Len(t, got.Aligned, 2)
	assert.Empty(t, got.ImplementedNotDocumented)
}
