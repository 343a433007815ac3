package main

import (
	"log"
	"net/http"
	"os"

	"HADIRKU/config"
	"HADIRKU/controllers/absen"
	"HADIRKU/controllers/auth"
	"HADIRKU/controllers/face"
	"HADIRKU/controllers/report"
	"HADIRKU/facematch"
	"HADIRKU/gate"
	"HADIRKU/jobs"
	"HADIRKU/ledger"
	"HADIRKU/middlewares"
	"HADIRKU/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Urutan wajib: config dulu, baru database, baru komponen lain.
	if err := config.Load(); err != nil {
		log.Fatalf("FATAL ERROR: %v", err)
	}
	if err := models.ConnectDatabase(); err != nil {
		log.Fatalf("Gagal Terhubung ke Database: %v", err)
	}

	// Rakit komponen inti
	matcher := facematch.NewMatcher(config.FaceDimension, config.FaceThreshold)
	absenLedger := ledger.New(ledger.NewGormStore(models.DB), config.AttendanceLoc)
	embeddings := models.NewEmbeddingStore(models.DB)
	absenGate := gate.New(embeddings, matcher, absenLedger)

	faceCtl := face.NewController(embeddings, matcher)
	absenCtl := absen.NewController(absenGate, absenLedger)
	reportCtl := report.NewController(absenLedger)

	// Job rekap malam
	scheduler := jobs.StartScheduler(absenLedger, models.DB, config.AttendanceLoc)
	defer scheduler.Stop()

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/healthz", healthHandler)

	api := r.Group("/api")
	{
		api.POST("/auth/register", auth.RegisterHandler)
		api.POST("/auth/login", auth.LoginHandler)

		private := api.Group("/", middlewares.RequireAuth)
		{
			private.POST("/face", faceCtl.RegisterFaceHandler)
			private.GET("/face/status", faceCtl.CheckFaceStatusHandler)

			private.POST("/absen/scan", absenCtl.ScanAbsensiHandler)
			private.GET("/absen/status", absenCtl.GetStatusHariIni)
			private.GET("/absen/history", absenCtl.GetHistoryUser)
			private.GET("/absen/prediksi", absenCtl.PrediksiCheckout)

			private.GET("/dashboard", reportCtl.DashboardHandler)

			admin := private.Group("/", middlewares.AdminOnly)
			{
				admin.GET("/absen", absenCtl.GetAllAbsen)
				admin.POST("/face/identify", faceCtl.IdentifyFaceHandler)
				admin.GET("/laporan", reportCtl.LaporanHandler)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Server jalan di port " + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Server berhenti: %v", err)
	}
}

// healthHandler: cek konfigurasi sudah dimuat + database bisa di-ping.
// Dipakai load balancer / orkestrator sebelum mengarahkan traffic.
func healthHandler(c *gin.Context) {
	if !config.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "config belum siap"})
		return
	}
	sqlDB, err := models.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database tidak sehat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
