// Package facematch memutuskan apakah dua vektor wajah milik orang yang sama.
// Keputusannya pakai cosine similarity dengan ambang tetap — sengaja bukan
// classifier, supaya hasilnya deterministik dan gampang diaudit.
package facematch

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrDimensionMismatch = errors.New("dimensi vektor wajah tidak cocok")

// Matcher membandingkan vektor wajah. Stateless, aman dipakai paralel.
type Matcher struct {
	Dimension int     // panjang vektor yang sah (128 untuk face-api.js)
	Threshold float64 // ambang penerimaan, inklusif
}

func NewMatcher(dimension int, threshold float64) *Matcher {
	return &Matcher{Dimension: dimension, Threshold: threshold}
}

// Candidate adalah satu entri katalog: user + vektor terdaftarnya.
type Candidate struct {
	UserId string
	Vector []float64
}

// Match hasil pencarian katalog.
type Match struct {
	UserId     string
	Similarity float64
}

// Verification hasil cek klaim satu-lawan-satu.
type Verification struct {
	Accepted   bool
	Similarity float64
}

// CosineSimilarity menghitung kemiripan dua vektor, hasil di [-1, 1].
// Simetris dan deterministik. Vektor nol dianggap tidak mirip apa-apa (0).
func (m *Matcher) CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) || len(a) != m.Dimension {
		return 0, ErrDimensionMismatch
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := floats.Dot(a, b) / (normA * normB)
	// Jepit sisa error floating point biar tidak keluar dari [-1, 1]
	return math.Max(-1, math.Min(1, sim)), nil
}

// BestMatch scan seluruh katalog dan kembalikan entri paling mirip,
// tapi hanya kalau skor maksimumnya >= ambang; selain itu nil (tidak dikenal).
// Perbandingan pakai > ketat, jadi kalau ada skor kembar yang menang adalah
// entri yang lebih dulu di katalog.
func (m *Matcher) BestMatch(query []float64, catalog []Candidate) (*Match, error) {
	var best *Match
	for _, cand := range catalog {
		sim, err := m.CosineSimilarity(query, cand.Vector)
		if err != nil {
			return nil, err
		}
		if best == nil || sim > best.Similarity {
			best = &Match{UserId: cand.UserId, Similarity: sim}
		}
	}
	if best == nil || best.Similarity < m.Threshold {
		return nil, nil
	}
	return best, nil
}

// VerifyClaim membandingkan vektor capture dengan vektor terdaftar si pengklaim
// saja (identitas sudah diklaim lewat sesi, tidak perlu scan katalog O(N)).
// Batas inklusif: skor tepat di ambang = diterima.
func (m *Matcher) VerifyClaim(query, enrolled []float64) (Verification, error) {
	sim, err := m.CosineSimilarity(query, enrolled)
	if err != nil {
		return Verification{}, err
	}
	return Verification{Accepted: sim >= m.Threshold, Similarity: sim}, nil
}
