package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

// Variable global untuk menyimpan key agar bisa diakses di controller/middleware
var JWT_KEY []byte

// Pengaturan verifikasi wajah & zona waktu absensi.
// Diisi oleh Load(), jangan diubah setelah aplikasi jalan.
var (
	FaceDimension int
	FaceThreshold float64
	AttendanceLoc *time.Location
)

var loaded bool

// Struct untuk data yang disimpan di dalam Token
type JWTClaims struct {
	UserId string `json:"user_id"`
	Role   string `json:"role"` // "ADMIN" atau "EMPLOYEE"
	jwt.RegisteredClaims
}

// Load membaca environment variable dan menyiapkan seluruh pengaturan global.
// WAJIB dipanggil dari main() sebelum komponen lain dipakai — dulu pakai init()
// otomatis, sekarang eksplisit supaya status siap/tidaknya bisa dicek lewat Ready().
func Load() error {
	// 1. Coba load file .env (Khusus untuk Local Development di Laptop)
	// Di server produksi file ini biasanya tidak ada, jadi errornya diabaikan.
	if err := godotenv.Load(); err != nil {
		log.Println("Info: File .env tidak ditemukan. Menggunakan System Environment Variable.")
	}

	// 2. Key JWT wajib ada. Tanpa ini aplikasi tidak boleh jalan.
	key := os.Getenv("JWT_KEY")
	if key == "" {
		return errors.New("JWT_KEY tidak ditemukan di environment variable")
	}
	JWT_KEY = []byte(key)

	// 3. Dimensi vektor wajah. Default 128 (deskriptor face-api.js).
	FaceDimension = 128
	if v := os.Getenv("FACE_DIMENSION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errors.New("FACE_DIMENSION tidak valid: " + v)
		}
		FaceDimension = n
	}

	// 4. Ambang kecocokan wajah. Default 0.6 (inklusif, skor == ambang diterima).
	FaceThreshold = 0.6
	if v := os.Getenv("FACE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < -1 || f > 1 {
			return errors.New("FACE_THRESHOLD tidak valid: " + v)
		}
		FaceThreshold = f
	}

	// 5. Zona waktu absensi. SATU zona kanonik untuk seluruh sistem:
	// tanggal absen selalu dihitung dari timestamp event di zona ini,
	// bukan dari jam lokal server.
	tz := os.Getenv("ATTENDANCE_TZ")
	if tz == "" {
		tz = "Asia/Jakarta"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return errors.New("ATTENDANCE_TZ tidak valid: " + tz)
	}
	AttendanceLoc = loc

	loaded = true
	return nil
}

// Ready melapor apakah Load() sudah sukses dijalankan.
func Ready() bool {
	return loaded
}
