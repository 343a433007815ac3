// Package jobs berisi kerjaan terjadwal di luar siklus request.
package jobs

import (
	"context"
	"log"
	"time"

	"HADIRKU/ledger"
	"HADIRKU/models"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sesi lebih panjang dari ini ditandai di rekap supaya dicek admin
// (kemungkinan lupa absen keluar).
const BatasDurasiSesi = 12 * time.Hour

// StartScheduler jalankan job rekap tiap jam 00:05 di zona absensi
// (merekap hari yang baru saja lewat).
func StartScheduler(l *ledger.Ledger, db *gorm.DB, loc *time.Location) *gocron.Scheduler {
	s := gocron.NewScheduler(loc)

	_, err := s.Every(1).Day().At("00:05").Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		tgl := l.DayKey(time.Now().AddDate(0, 0, -1))
		if err := RekapTanggal(ctx, l, db, tgl); err != nil {
			log.Printf("Job rekap %s GAGAL: %v", tgl, err)
			return
		}
		log.Printf("Job rekap %s selesai.", tgl)
	})
	if err != nil {
		log.Printf("Gagal mendaftarkan job rekap: %v", err)
	}

	s.StartAsync()
	return s
}

// RekapTanggal hitung rekap satu tanggal lalu simpan (replace kalau sudah ada).
func RekapTanggal(ctx context.Context, l *ledger.Ledger, db *gorm.DB, tgl string) error {
	events, err := l.ListEvents(ctx, ledger.Filter{TglDari: tgl, TglSampai: tgl})
	if err != nil {
		return err
	}

	rekap := HitungRekap(events, tgl)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tgl"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_hadir", "total_lengkap", "total_gantung", "sesi_kepanjang",
			}),
		}).
		Create(&rekap).Error
}

// HitungRekap murni hitung-hitungan, tidak menyentuh database.
func HitungRekap(events []models.AttendanceEvent, tgl string) models.RekapHarian {
	type sesi struct {
		masuk  *time.Time
		keluar *time.Time
	}
	perUser := make(map[string]*sesi)
	for i := range events {
		ev := events[i]
		s, ok := perUser[ev.UserId]
		if !ok {
			s = &sesi{}
			perUser[ev.UserId] = s
		}
		switch ev.Jenis {
		case models.EventMasuk:
			s.masuk = &ev.Waktu
		case models.EventKeluar:
			s.keluar = &ev.Waktu
		}
	}

	rekap := models.RekapHarian{Tgl: tgl}
	for _, s := range perUser {
		if s.masuk == nil {
			continue
		}
		rekap.TotalHadir++
		if s.keluar == nil {
			rekap.TotalGantung++
			continue
		}
		rekap.TotalLengkap++
		if s.keluar.Sub(*s.masuk) > BatasDurasiSesi {
			rekap.SesiKepanjang++
		}
	}
	return rekap
}
