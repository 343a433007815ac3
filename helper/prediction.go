package helper

import (
	"errors"
	"math"
	"time"

	"HADIRKU/models"

	"gonum.org/v1/gonum/stat"
)

// Minimal data historis sebelum prediksi boleh jalan.
const MinTrainingData = 3

var ErrNotEnoughData = errors.New("data historis tidak cukup untuk prediksi")

// SesiHarian = satu hari kerja lengkap (ada masuk dan keluar).
type SesiHarian struct {
	Tgl    string
	Masuk  time.Time
	Keluar time.Time
}

// PairDailySessions memasangkan event IN/OUT per tanggal jadi sesi lengkap.
// Hari yang gantung (IN tanpa OUT) dilewati.
func PairDailySessions(events []models.AttendanceEvent) []SesiHarian {
	byDay := make(map[string]*SesiHarian)
	order := []string{}
	for _, ev := range events {
		s, ok := byDay[ev.TglAbsen]
		if !ok {
			s = &SesiHarian{Tgl: ev.TglAbsen}
			byDay[ev.TglAbsen] = s
			order = append(order, ev.TglAbsen)
		}
		switch ev.Jenis {
		case models.EventMasuk:
			s.Masuk = ev.Waktu
		case models.EventKeluar:
			s.Keluar = ev.Waktu
		}
	}

	var out []SesiHarian
	for _, tgl := range order {
		s := byDay[tgl]
		if !s.Masuk.IsZero() && !s.Keluar.IsZero() {
			out = append(out, *s)
		}
	}
	return out
}

// PredictCheckoutTime menebak jam keluar dari pola historis user:
// regresi linear durasi kerja terhadap menit jam masuk. Kalau jam masuknya
// nyaris selalu sama (regresi degenerate), pakai rata-rata durasi saja.
func PredictCheckoutTime(history []SesiHarian, masuk time.Time, loc *time.Location) (time.Time, error) {
	if len(history) < MinTrainingData {
		return time.Time{}, ErrNotEnoughData
	}

	xs := make([]float64, len(history)) // menit jam masuk dalam sehari
	ys := make([]float64, len(history)) // durasi kerja dalam menit
	for i, s := range history {
		in := s.Masuk.In(loc)
		xs[i] = float64(in.Hour()*60 + in.Minute())
		ys[i] = s.Keluar.Sub(s.Masuk).Minutes()
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	in := masuk.In(loc)
	x := float64(in.Hour()*60 + in.Minute())
	durasi := alpha + beta*x
	if math.IsNaN(durasi) || math.IsInf(durasi, 0) || durasi <= 0 {
		durasi = stat.Mean(ys, nil)
	}

	return masuk.Add(time.Duration(durasi * float64(time.Minute))), nil
}
