// Package gate adalah satu-satunya pintu masuk absensi: dari "ada capture
// yang mengaku user U" sampai "event tercatat" atau alasan penolakan yang
// spesifik. Urutannya selalu: cek pendaftaran → verifikasi wajah → mesin
// status harian.
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"HADIRKU/facematch"
	"HADIRKU/ledger"
	"HADIRKU/models"
)

var (
	ErrNotEnrolled        = errors.New("wajah belum terdaftar")
	ErrDayAlreadyComplete = errors.New("absensi hari ini sudah lengkap")
)

// VerificationError = wajah tidak lolos ambang. Bawa skornya supaya caller
// bisa kasih pesan yang berguna; TIDAK membawa data user lain.
type VerificationError struct {
	Similarity float64
	Threshold  float64
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("wajah tidak dikenali (skor %.1f%%, butuh %.0f%%)",
		e.Similarity*100, e.Threshold*100)
}

// EmbeddingSource menyediakan vektor terdaftar milik satu user.
// Kembalikan nil (tanpa error) kalau user belum daftar wajah.
type EmbeddingSource interface {
	Enrolled(ctx context.Context, userId string) ([]float64, error)
}

type Gate struct {
	embeddings EmbeddingSource
	matcher    *facematch.Matcher
	ledger     *ledger.Ledger
}

func New(embeddings EmbeddingSource, matcher *facematch.Matcher, l *ledger.Ledger) *Gate {
	return &Gate{embeddings: embeddings, matcher: matcher, ledger: l}
}

// Submit memproses satu capture untuk user yang diklaim.
// Skor yang tercatat SELALU similarity hasil hitungan di sini — tidak ada
// jalur skor kiriman client.
//
// Kalau insert kalah race (user yang sama absen dobel nyaris bersamaan),
// status harian dibaca ulang TEPAT SATU KALI; kegagalan berikutnya
// diteruskan apa adanya, tidak ada loop.
func (g *Gate) Submit(ctx context.Context, claimedUserId string, vector []float64, now time.Time) (*models.AttendanceEvent, error) {
	enrolled, err := g.embeddings.Enrolled(ctx, claimedUserId)
	if err != nil {
		return nil, err
	}
	if enrolled == nil {
		return nil, ErrNotEnrolled
	}

	verification, err := g.matcher.VerifyClaim(vector, enrolled)
	if err != nil {
		return nil, err
	}
	if !verification.Accepted {
		return nil, &VerificationError{
			Similarity: verification.Similarity,
			Threshold:  g.matcher.Threshold,
		}
	}
	skor := verification.Similarity

	tgl := g.ledger.DayKey(now)
	for attempt := 0; ; attempt++ {
		status, err := g.ledger.GetDayStatus(ctx, claimedUserId, tgl)
		if err != nil {
			return nil, err
		}

		var event *models.AttendanceEvent
		switch {
		case !status.HasIn:
			event, err = g.ledger.RecordTimeIn(ctx, claimedUserId, now, skor)
		case !status.HasOut:
			event, err = g.ledger.RecordTimeOut(ctx, claimedUserId, now, skor)
		default:
			return nil, ErrDayAlreadyComplete
		}
		if err == nil {
			return event, nil
		}

		raced := errors.Is(err, ledger.ErrAlreadyClockedIn) || errors.Is(err, ledger.ErrAlreadyClockedOut)
		if attempt == 0 && raced {
			continue
		}
		return nil, err
	}
}
