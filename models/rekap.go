package models

import "time"

// RekapHarian diisi job malam (gocron): ringkasan absensi satu hari
// untuk widget dashboard, biar dashboard tidak scan tabel event terus-terusan.
type RekapHarian struct {
	Id            int64     `gorm:"primaryKey" json:"id"`
	Tgl           string    `gorm:"size:10;uniqueIndex" json:"tgl"`
	TotalHadir    int       `json:"total_hadir"`    // ada event IN
	TotalLengkap  int       `json:"total_lengkap"`  // IN + OUT
	TotalGantung  int       `json:"total_gantung"`  // IN tanpa OUT
	SesiKepanjang int       `json:"sesi_kepanjang"` // durasi > 12 jam, perlu dicek admin
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RekapHarian) TableName() string {
	return "rekap_harian"
}
