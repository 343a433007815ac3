package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	"HADIRKU/config"
	"HADIRKU/ledger"
	"HADIRKU/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Controller struct {
	Ledger *ledger.Ledger
}

func NewController(l *ledger.Ledger) *Controller {
	return &Controller{Ledger: l}
}

// Satu baris laporan = satu (user, tanggal).
type barisHarian struct {
	UserId    string   `json:"user_id"`
	Nama      string   `json:"nama"`
	Email     string   `json:"email"`
	Tgl       string   `json:"tgl"`
	JamMasuk  string   `json:"jam_masuk"`
	JamKeluar string   `json:"jam_keluar"`
	Jam       *float64 `json:"jam"` // durasi kerja dalam jam, nil kalau hari gantung
	Skor      float64  `json:"skor"`
}

type statUser struct {
	UserId      string  `json:"user_id"`
	Nama        string  `json:"nama"`
	Email       string  `json:"email"`
	TotalHari   int     `json:"total_hari"`
	TotalJam    float64 `json:"total_jam"`
	RataJam     float64 `json:"rata_jam"`
	HariLengkap int     `json:"hari_lengkap"`
	HariGantung int     `json:"hari_gantung"`
}

// LaporanHandler (khusus admin): rekap absensi per user per hari,
// plus ringkasan keseluruhan. ?format=csv untuk unduh file.
func (ctl *Controller) LaporanHandler(c *gin.Context) {
	filter := ledger.Filter{
		UserId:    c.Query("user_id"),
		TglDari:   c.Query("tgl_dari"),
		TglSampai: c.Query("tgl_sampai"),
	}

	events, err := ctl.Ledger.ListEvents(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil data absensi"})
		return
	}

	// Nama & email user untuk ditempel di laporan
	var users []models.User
	if err := models.DB.WithContext(c.Request.Context()).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil data user"})
		return
	}
	userById := make(map[string]models.User, len(users))
	for _, u := range users {
		userById[u.Id] = u
	}

	// Pasangkan IN/OUT per (user, tanggal)
	type kunci struct{ userId, tgl string }
	perHari := make(map[kunci]*barisHarian)
	order := []kunci{}
	var totalSkor float64
	for _, ev := range events {
		k := kunci{ev.UserId, ev.TglAbsen}
		baris, ok := perHari[k]
		if !ok {
			u := userById[ev.UserId]
			nama := u.Nama
			if nama == "" {
				nama = "N/A"
			}
			baris = &barisHarian{UserId: ev.UserId, Nama: nama, Email: u.Email, Tgl: ev.TglAbsen}
			perHari[k] = baris
			order = append(order, k)
		}
		jam := ev.Waktu.In(config.AttendanceLoc).Format("15:04:05")
		switch ev.Jenis {
		case models.EventMasuk:
			baris.JamMasuk = jam
			baris.Skor = ev.Skor
		case models.EventKeluar:
			baris.JamKeluar = jam
		}
		totalSkor += ev.Skor
	}

	// Durasi hanya untuk hari lengkap; butuh timestamp asli, bukan string jam
	waktuMasuk := make(map[kunci]time.Time)
	waktuKeluar := make(map[kunci]time.Time)
	for _, ev := range events {
		k := kunci{ev.UserId, ev.TglAbsen}
		if ev.Jenis == models.EventMasuk {
			waktuMasuk[k] = ev.Waktu
		} else {
			waktuKeluar[k] = ev.Waktu
		}
	}

	baris := make([]barisHarian, 0, len(order))
	statPerUser := make(map[string]*statUser)
	var totalJam float64
	var hariLengkap, hariGantung int
	for _, k := range order {
		b := perHari[k]
		if in, ok := waktuMasuk[k]; ok {
			if out, ok := waktuKeluar[k]; ok {
				j := out.Sub(in).Hours()
				b.Jam = &j
			}
		}

		st, ok := statPerUser[b.UserId]
		if !ok {
			st = &statUser{UserId: b.UserId, Nama: b.Nama, Email: b.Email}
			statPerUser[b.UserId] = st
		}
		st.TotalHari++
		if b.Jam != nil {
			st.TotalJam += *b.Jam
			st.HariLengkap++
			totalJam += *b.Jam
			hariLengkap++
		} else {
			st.HariGantung++
			hariGantung++
		}
		if st.HariLengkap > 0 {
			st.RataJam = st.TotalJam / float64(st.HariLengkap)
		}

		baris = append(baris, *b)
	}

	if c.Query("format") == "csv" {
		ctl.tulisCSV(c, baris)
		return
	}

	rataJam := 0.0
	if hariLengkap > 0 {
		rataJam = totalJam / float64(hariLengkap)
	}
	rataSkor := 0.0
	if len(events) > 0 {
		rataSkor = totalSkor / float64(len(events))
	}
	statList := make([]statUser, 0, len(statPerUser))
	for _, st := range statPerUser {
		statList = append(statList, *st)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_baris":   len(baris),
		"total_jam":     totalJam,
		"rata_jam":      rataJam,
		"jumlah_user":   len(statPerUser),
		"hari_lengkap":  hariLengkap,
		"hari_gantung":  hariGantung,
		"rata_skor":     rataSkor,
		"stat_per_user": statList,
		"baris_harian":  baris,
	})
}

func (ctl *Controller) tulisCSV(c *gin.Context, baris []barisHarian) {
	filename := "laporan-absensi-" + time.Now().In(config.AttendanceLoc).Format("2006-01-02") + ".csv"
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Tanggal", "Nama", "Email", "Jam Masuk", "Jam Keluar", "Jam Kerja", "Skor Kecocokan"})
	for _, b := range baris {
		jam := ""
		if b.Jam != nil {
			jam = fmt.Sprintf("%.2f", *b.Jam)
		}
		_ = w.Write([]string{
			b.Tgl, b.Nama, b.Email, b.JamMasuk, b.JamKeluar, jam,
			fmt.Sprintf("%.2f%%", b.Skor*100),
		})
	}
	w.Flush()
}

// DashboardHandler: rekap terakhir dari job malam + status live hari ini.
func (ctl *Controller) DashboardHandler(c *gin.Context) {
	userData, _ := c.Get("currentUser")
	currentUser := userData.(models.User)

	var rekap models.RekapHarian
	err := models.DB.WithContext(c.Request.Context()).
		Order("tgl desc").First(&rekap).Error
	adaRekap := true
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil rekap"})
			return
		}
		adaRekap = false
	}

	tgl := ctl.Ledger.DayKey(time.Now())
	status, err := ctl.Ledger.GetDayStatus(c.Request.Context(), currentUser.Id, tgl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil status absensi"})
		return
	}

	resp := gin.H{"status_hari_ini": status}
	if adaRekap {
		resp["rekap_terakhir"] = rekap
	}
	c.JSON(http.StatusOK, resp)
}
