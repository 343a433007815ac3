package models

import "time"

const (
	EventMasuk  = "IN"
	EventKeluar = "OUT"
)

// AttendanceEvent = satu baris per kejadian absen (masuk ATAU keluar).
// Append-only: baris tidak pernah di-update atau dihapus.
// Unique index komposit (user_id, tgl_absen, jenis) adalah penjaga utamanya:
// dua request serentak untuk key yang sama cuma bisa lolos satu.
type AttendanceEvent struct {
	Id        int64     `gorm:"primaryKey" json:"id"`
	UserId    string    `gorm:"type:char(36);uniqueIndex:idx_absen_harian;index" json:"user_id"`
	TglAbsen  string    `gorm:"size:10;uniqueIndex:idx_absen_harian" json:"tgl_absen"` // "2006-01-02" di zona absensi
	Jenis     string    `gorm:"size:3;uniqueIndex:idx_absen_harian" json:"jenis"`      // "IN" / "OUT"
	Waktu     time.Time `json:"waktu"`
	Skor      float64   `json:"skor"` // similarity hasil hitungan server, bukan kiriman client
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AttendanceEvent) TableName() string {
	return "attendance_events"
}
