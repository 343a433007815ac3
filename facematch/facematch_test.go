package facematch

import (
	"errors"
	"math"
	"testing"
)

func newTestMatcher(dim int) *Matcher {
	return NewMatcher(dim, 0.6)
}

func TestCosineSimilarity(t *testing.T) {
	m := newTestMatcher(3)

	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"opposite", []float64{1, 0, 0}, []float64{-1, 0, 0}, -1.0},
		{"orthogonal", []float64{1, 0, 0}, []float64{0, 1, 0}, 0.0},
		{"scaled copy", []float64{1, 2, 3}, []float64{2, 4, 6}, 1.0},
		{"zero vector", []float64{0, 0, 0}, []float64{1, 2, 3}, 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.CosineSimilarity(tc.a, tc.b)
			if err != nil {
				t.Fatalf("CosineSimilarity failed: %v", err)
			}
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("CosineSimilarity(%v, %v) = %v; want %v", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	m := newTestMatcher(4)
	a := []float64{0.3, -0.7, 0.2, 0.9}
	b := []float64{-0.1, 0.5, 0.8, 0.4}

	ab, err := m.CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity(a, b) failed: %v", err)
	}
	ba, err := m.CosineSimilarity(b, a)
	if err != nil {
		t.Fatalf("CosineSimilarity(b, a) failed: %v", err)
	}
	if ab != ba {
		t.Errorf("similarity is not symmetric: %v vs %v", ab, ba)
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	m := newTestMatcher(3)

	tests := []struct {
		name string
		a, b []float64
	}{
		{"different lengths", []float64{1, 2, 3}, []float64{1, 2}},
		{"both wrong dimension", []float64{1, 2}, []float64{1, 2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := m.CosineSimilarity(tc.a, tc.b); !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("expected ErrDimensionMismatch, got %v", err)
			}
		})
	}
}

func TestBestMatch(t *testing.T) {
	m := newTestMatcher(2)
	v1 := []float64{1, 0}
	v2 := []float64{0, 1}

	t.Run("identical vector wins with similarity 1", func(t *testing.T) {
		catalog := []Candidate{{UserId: "U1", Vector: v1}, {UserId: "U2", Vector: v2}}
		match, err := m.BestMatch(v1, catalog)
		if err != nil {
			t.Fatalf("BestMatch failed: %v", err)
		}
		if match == nil {
			t.Fatal("expected a match, got nil")
		}
		if match.UserId != "U1" {
			t.Errorf("matched %s; want U1", match.UserId)
		}
		if math.Abs(match.Similarity-1.0) > 1e-9 {
			t.Errorf("similarity = %v; want 1.0", match.Similarity)
		}
	})

	t.Run("below threshold maximum is rejected", func(t *testing.T) {
		// Query tegak lurus terhadap seluruh katalog: maksimumnya 0 < 0.6
		catalog := []Candidate{{UserId: "U1", Vector: v1}}
		match, err := m.BestMatch(v2, catalog)
		if err != nil {
			t.Fatalf("BestMatch failed: %v", err)
		}
		if match != nil {
			t.Errorf("expected no match, got %+v", match)
		}
	})

	t.Run("exact tie resolves to first catalog entry", func(t *testing.T) {
		catalog := []Candidate{{UserId: "first", Vector: v1}, {UserId: "second", Vector: v1}}
		match, err := m.BestMatch(v1, catalog)
		if err != nil {
			t.Fatalf("BestMatch failed: %v", err)
		}
		if match == nil || match.UserId != "first" {
			t.Errorf("tie should pick the first entry, got %+v", match)
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		match, err := m.BestMatch(v1, nil)
		if err != nil {
			t.Fatalf("BestMatch failed: %v", err)
		}
		if match != nil {
			t.Errorf("expected no match for empty catalog, got %+v", match)
		}
	})

	t.Run("dimension mismatch inside catalog", func(t *testing.T) {
		catalog := []Candidate{{UserId: "U1", Vector: []float64{1, 0, 0}}}
		if _, err := m.BestMatch(v1, catalog); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("expected ErrDimensionMismatch, got %v", err)
		}
	})
}

func TestVerifyClaimThresholdBoundary(t *testing.T) {
	m := newTestMatcher(2)

	// Vektor satuan dengan sudut terhadap (1,0) diatur supaya cos-nya pas.
	enrolled := []float64{1, 0}
	vectorWithSimilarity := func(sim float64) []float64 {
		return []float64{sim, math.Sqrt(1 - sim*sim)}
	}

	tests := []struct {
		name     string
		sim      float64
		accepted bool
	}{
		{"just below threshold", 0.59, false},
		{"exactly at threshold", 0.60, true},
		{"well above threshold", 0.95, true},
		{"negative similarity", -0.5, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.VerifyClaim(vectorWithSimilarity(tc.sim), enrolled)
			if err != nil {
				t.Fatalf("VerifyClaim failed: %v", err)
			}
			if got.Accepted != tc.accepted {
				t.Errorf("accepted = %v (similarity %v); want %v", got.Accepted, got.Similarity, tc.accepted)
			}
			if math.Abs(got.Similarity-tc.sim) > 1e-9 {
				t.Errorf("similarity = %v; want %v", got.Similarity, tc.sim)
			}
		})
	}
}

func TestVerifyClaimSelfMatch(t *testing.T) {
	m := newTestMatcher(4)
	v := []float64{0.25, -0.5, 0.75, 0.1}

	got, err := m.VerifyClaim(v, v)
	if err != nil {
		t.Fatalf("VerifyClaim failed: %v", err)
	}
	if !got.Accepted {
		t.Error("self match should be accepted")
	}
	if math.Abs(got.Similarity-1.0) > 1e-9 {
		t.Errorf("self similarity = %v; want 1.0", got.Similarity)
	}
}
