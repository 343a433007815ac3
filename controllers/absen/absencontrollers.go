package absen

import (
	"errors"
	"net/http"
	"time"

	"HADIRKU/config"
	"HADIRKU/facematch"
	"HADIRKU/gate"
	"HADIRKU/helper"
	"HADIRKU/ledger"
	"HADIRKU/models"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	Gate   *gate.Gate
	Ledger *ledger.Ledger
}

func NewController(g *gate.Gate, l *ledger.Ledger) *Controller {
	return &Controller{Gate: g, Ledger: l}
}

// Payload scan absen. TIDAK ada field skor — skor selalu dihitung server
// dari vektornya, kiriman client tidak pernah dipercaya.
type ScanPayload struct {
	Embedding []float64 `json:"embedding" binding:"required"`
	UserId    string    `json:"user_id"` // opsional, khusus admin absenkan orang lain
}

func (ctl *Controller) ScanAbsensiHandler(c *gin.Context) {
	// 1. Bind JSON dari client
	var payload ScanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input tidak valid: " + err.Error()})
		return
	}

	// 2. Ambil Data User Login
	userData, _ := c.Get("currentUser")
	currentUser := userData.(models.User)

	// 3. Target absen: diri sendiri, atau user lain kalau admin
	targetId := currentUser.Id
	if payload.UserId != "" && payload.UserId != currentUser.Id {
		if !currentUser.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Tidak boleh mengabsenkan user lain"})
			return
		}
		targetId = payload.UserId
	}

	// 4. Satu pintu: gate yang memutuskan verifikasi wajah + event berikutnya
	event, err := ctl.Gate.Submit(c.Request.Context(), targetId, payload.Embedding, time.Now())
	if err != nil {
		ctl.tolakScan(c, err)
		return
	}

	jam := event.Waktu.In(config.AttendanceLoc).Format("15:04:05")
	if event.Jenis == models.EventMasuk {
		c.JSON(http.StatusCreated, gin.H{
			"message": "Absen masuk BERHASIL jam " + jam,
			"action":  "masuk",
			"event":   event,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Absen keluar BERHASIL jam " + jam,
		"action":  "keluar",
		"event":   event,
	})
}

// tolakScan menerjemahkan error gate/ledger jadi status + pesan yang pas.
// Tiap jenis error punya pesannya sendiri, tidak dilebur jadi error umum.
func (ctl *Controller) tolakScan(c *gin.Context, err error) {
	var verr *gate.VerificationError
	switch {
	case errors.Is(err, gate.ErrNotEnrolled):
		c.JSON(http.StatusNotFound, gin.H{"error": "Wajah Anda belum didaftarkan. Silakan daftar wajah dulu."})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":      "Wajah tidak dikenali! " + verr.Error(),
			"similarity": verr.Similarity,
			"threshold":  verr.Threshold,
		})
	case errors.Is(err, facematch.ErrDimensionMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data wajah rusak/tidak lengkap."})
	case errors.Is(err, ledger.ErrAlreadyClockedIn):
		c.JSON(http.StatusConflict, gin.H{"error": "Anda sudah absen masuk hari ini"})
	case errors.Is(err, ledger.ErrNotClockedIn):
		c.JSON(http.StatusConflict, gin.H{"error": "Anda belum absen masuk hari ini"})
	case errors.Is(err, ledger.ErrAlreadyClockedOut):
		c.JSON(http.StatusConflict, gin.H{"error": "Anda sudah absen keluar hari ini"})
	case errors.Is(err, gate.ErrDayAlreadyComplete):
		c.JSON(http.StatusConflict, gin.H{"error": "Absensi Anda hari ini sudah lengkap"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi masalah pada server: " + err.Error()})
	}
}

// GetStatusHariIni rangkuman absen hari ini (sudah masuk? sudah keluar? durasi?).
func (ctl *Controller) GetStatusHariIni(c *gin.Context) {
	userData, _ := c.Get("currentUser")
	currentUser := userData.(models.User)

	targetId := currentUser.Id
	if q := c.Query("user_id"); q != "" && q != currentUser.Id {
		if !currentUser.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Tidak boleh melihat status user lain"})
			return
		}
		targetId = q
	}

	tgl := ctl.Ledger.DayKey(time.Now())
	status, err := ctl.Ledger.GetDayStatus(c.Request.Context(), targetId, tgl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil status absensi"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (ctl *Controller) GetHistoryUser(c *gin.Context) {
	userData, exists := c.Get("currentUser")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sesi pengguna tidak valid"})
		return
	}
	currentUser := userData.(models.User)

	history, err := ctl.Ledger.ListEvents(c.Request.Context(), ledger.Filter{UserId: currentUser.Id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil riwayat absensi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// GetAllAbsen (khusus admin) daftar event dengan filter user/tanggal/jenis.
func (ctl *Controller) GetAllAbsen(c *gin.Context) {
	filter := ledger.Filter{
		UserId:    c.Query("user_id"),
		TglDari:   c.Query("tgl_dari"),
		TglSampai: c.Query("tgl_sampai"),
		Jenis:     c.Query("jenis"),
	}

	events, err := ctl.Ledger.ListEvents(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil data absensi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"absen": events})
}

func (ctl *Controller) PrediksiCheckout(c *gin.Context) {
	userData, exists := c.Get("currentUser")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sesi pengguna tidak valid"})
		return
	}
	currentUser := userData.(models.User)

	now := time.Now()
	tgl := ctl.Ledger.DayKey(now)
	status, err := ctl.Ledger.GetDayStatus(c.Request.Context(), currentUser.Id, tgl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil data absensi"})
		return
	}
	if !status.HasIn {
		c.JSON(http.StatusNotFound, gin.H{"error": "Belum absen masuk hari ini"})
		return
	}
	if status.HasOut {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Sudah absen keluar hari ini",
			"jam_keluar": status.TimeOut.In(config.AttendanceLoc).Format("15:04:05"),
		})
		return
	}

	events, err := ctl.Ledger.ListEvents(c.Request.Context(), ledger.Filter{UserId: currentUser.Id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil data historis"})
		return
	}
	history := helper.PairDailySessions(events)

	predicted, err := helper.PredictCheckoutTime(history, *status.TimeIn, config.AttendanceLoc)
	if err != nil {
		if errors.Is(err, helper.ErrNotEnoughData) {
			c.JSON(http.StatusOK, gin.H{
				"message":               "Data historis tidak cukup untuk prediksi (minimal 3 hari lengkap diperlukan)",
				"check_in":              status.TimeIn,
				"prediction_available":  false,
				"historical_data_count": len(history),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal membuat prediksi: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"check_in":             status.TimeIn,
		"prediksi_checkout":    predicted.In(config.AttendanceLoc).Format("15:04"),
		"prediction_available": true,
		"jumlah_hari_historis": len(history),
	})
}
