// Package ledger adalah buku catatan absensi: log event IN/OUT yang
// append-only, maksimal satu IN dan satu OUT per user per tanggal, dan
// OUT tidak pernah mendahului IN.
package ledger

import (
	"context"
	"errors"
	"time"

	"HADIRKU/models"
)

// Error mesin status harian. Dikembalikan apa adanya sampai ke caller
// supaya pesan ke user bisa spesifik (dan caller tahu ini bukan error infra).
var (
	ErrAlreadyClockedIn  = errors.New("sudah absen masuk hari ini")
	ErrNotClockedIn      = errors.New("belum absen masuk hari ini")
	ErrAlreadyClockedOut = errors.New("sudah absen keluar hari ini")
)

// ErrDuplicateEvent dikembalikan store saat insert menabrak unique index
// (user_id, tgl_absen, jenis). Ledger menerjemahkannya jadi error status.
var ErrDuplicateEvent = errors.New("event absensi duplikat")

// Filter untuk query daftar event (dipakai laporan & riwayat).
type Filter struct {
	UserId    string // kosong = semua user
	TglDari   string // "2006-01-02", kosong = tanpa batas bawah
	TglSampai string // inklusif, kosong = tanpa batas atas
	Jenis     string // "IN" / "OUT" / kosong
}

// EventStore adalah lapisan penyimpanan event. Insert HARUS atomik:
// bentrok key unik dikembalikan sebagai ErrDuplicateEvent, bukan dicek
// baca-dulu-baru-tulis di aplikasi.
type EventStore interface {
	Insert(ctx context.Context, event *models.AttendanceEvent) error
	EventsByDay(ctx context.Context, userId, tgl string) ([]models.AttendanceEvent, error)
	List(ctx context.Context, filter Filter) ([]models.AttendanceEvent, error)
}

// DayStatus status harian turunan, tidak disimpan.
type DayStatus struct {
	Tgl     string         `json:"tgl"`
	HasIn   bool           `json:"has_in"`
	HasOut  bool           `json:"has_out"`
	TimeIn  *time.Time     `json:"time_in"`
	TimeOut *time.Time     `json:"time_out"`
	Durasi  *time.Duration `json:"durasi"` // hanya terisi kalau IN dan OUT dua-duanya ada
}

// Ledger memegang store + zona waktu kanonik untuk menentukan tanggal.
type Ledger struct {
	store EventStore
	loc   *time.Location
}

func New(store EventStore, loc *time.Location) *Ledger {
	return &Ledger{store: store, loc: loc}
}

// DayKey menentukan tanggal kalender sebuah timestamp.
// SELALU di zona konfigurasi, bukan zona lokal server.
func (l *Ledger) DayKey(ts time.Time) string {
	return ts.In(l.loc).Format("2006-01-02")
}

// GetDayStatus membaca seluruh event (user, tanggal) dan merangkumnya.
// Murni baca, error hanya dari store.
func (l *Ledger) GetDayStatus(ctx context.Context, userId, tgl string) (DayStatus, error) {
	events, err := l.store.EventsByDay(ctx, userId, tgl)
	if err != nil {
		return DayStatus{}, err
	}

	status := DayStatus{Tgl: tgl}
	for i := range events {
		ev := events[i]
		switch ev.Jenis {
		case models.EventMasuk:
			status.HasIn = true
			status.TimeIn = &ev.Waktu
		case models.EventKeluar:
			status.HasOut = true
			status.TimeOut = &ev.Waktu
		}
	}
	if status.TimeIn != nil && status.TimeOut != nil {
		d := status.TimeOut.Sub(*status.TimeIn)
		status.Durasi = &d
	}
	return status, nil
}

// RecordTimeIn mencatat absen masuk. Gagal ErrAlreadyClockedIn kalau
// user sudah punya event IN di tanggal itu — keputusannya ada di unique
// index store, jadi dua request serentak pasti cuma satu yang lolos.
func (l *Ledger) RecordTimeIn(ctx context.Context, userId string, now time.Time, skor float64) (*models.AttendanceEvent, error) {
	event := &models.AttendanceEvent{
		UserId:   userId,
		TglAbsen: l.DayKey(now),
		Jenis:    models.EventMasuk,
		Waktu:    now,
		Skor:     skor,
	}
	if err := l.store.Insert(ctx, event); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, err
	}
	return event, nil
}

// RecordTimeOut mencatat absen keluar. Prasyarat: event IN sudah ada.
// Cek IN lewat baca dulu itu aman walau ada race — event tidak pernah
// dihapus, jadi "IN sudah ada" tidak mungkin berubah jadi tidak ada.
// Duplikat OUT tetap ditangkap unique index.
func (l *Ledger) RecordTimeOut(ctx context.Context, userId string, now time.Time, skor float64) (*models.AttendanceEvent, error) {
	tgl := l.DayKey(now)
	status, err := l.GetDayStatus(ctx, userId, tgl)
	if err != nil {
		return nil, err
	}
	if !status.HasIn {
		return nil, ErrNotClockedIn
	}
	if status.HasOut {
		return nil, ErrAlreadyClockedOut
	}

	event := &models.AttendanceEvent{
		UserId:   userId,
		TglAbsen: tgl,
		Jenis:    models.EventKeluar,
		Waktu:    now,
		Skor:     skor,
	}
	if err := l.store.Insert(ctx, event); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			return nil, ErrAlreadyClockedOut
		}
		return nil, err
	}
	return event, nil
}

// ListEvents meneruskan query terfilter ke store, urut terbaru dulu.
func (l *Ledger) ListEvents(ctx context.Context, filter Filter) ([]models.AttendanceEvent, error) {
	return l.store.List(ctx, filter)
}
