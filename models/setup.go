package models

import (
	"errors"
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDatabase konek ke MySQL lalu migrasi semua tabel.
// Dipanggil dari main() SETELAH config.Load().
func ConnectDatabase() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return errors.New("variable DATABASE_URL tidak ditemukan")
	}

	// TranslateError wajib nyala: deteksi bentrok unique index (absen dobel)
	// bergantung pada gorm.ErrDuplicatedKey.
	db, err := gorm.Open(mysql.Open(dbURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(&User{}, &FaceEmbedding{}, &AttendanceEvent{}, &RekapHarian{}); err != nil {
		return err
	}

	log.Println("Koneksi Database Berhasil.")
	DB = db
	return nil
}
