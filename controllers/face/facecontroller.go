package face

import (
	"errors"
	"fmt"
	"net/http"

	"HADIRKU/config"
	"HADIRKU/facematch"
	"HADIRKU/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Controller struct {
	Embeddings *models.EmbeddingStore
	Matcher    *facematch.Matcher
}

func NewController(embeddings *models.EmbeddingStore, matcher *facematch.Matcher) *Controller {
	return &Controller{Embeddings: embeddings, Matcher: matcher}
}

// Struct untuk validasi input dari client
type RegisterFacePayload struct {
	Embedding []float64 `json:"embedding" binding:"required"`
	UserId    string    `json:"user_id"` // opsional, khusus admin daftarkan orang lain
}

func (ctl *Controller) RegisterFaceHandler(c *gin.Context) {
	// 1. Ambil Data User yang sedang Login (Dari Middleware JWT)
	userData, exists := c.Get("currentUser")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sesi pengguna tidak valid"})
		return
	}
	currentUser := userData.(models.User)

	// 2. Validasi Input JSON
	var payload RegisterFacePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data wajah tidak valid: " + err.Error()})
		return
	}

	// 3. Tentukan target: default diri sendiri, user lain hanya boleh admin
	targetId := currentUser.Id
	if payload.UserId != "" && payload.UserId != currentUser.Id {
		if !currentUser.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Tidak boleh mendaftarkan wajah user lain"})
			return
		}
		targetId = payload.UserId
	}

	// 4. Validasi Dimensi Vektor
	if len(payload.Embedding) != ctl.Matcher.Dimension {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Dimensi vektor wajah salah (Harus %d).", ctl.Matcher.Dimension),
		})
		return
	}

	// 5. SIMPAN DATA (REPLACE MODE)
	// Satu user satu vektor: daftar ulang = timpa vektor lama.
	if err := ctl.Embeddings.Put(c.Request.Context(), targetId, payload.Embedding); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal menyimpan data wajah"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Data wajah berhasil disimpan!"})
}

// Fungsi Cek Status Wajah
func (ctl *Controller) CheckFaceStatusHandler(c *gin.Context) {
	userData, _ := c.Get("currentUser")
	currentUser := userData.(models.User)

	var face models.FaceEmbedding
	err := models.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", currentUser.Id).First(&face).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"is_registered": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil data wajah"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_registered": true,
		"updated_at":    face.UpdatedAt,
	})
}

type IdentifyPayload struct {
	Embedding []float64 `json:"embedding" binding:"required"`
}

// IdentifyFaceHandler (khusus admin) mencari wajah TAK DIKENAL di seluruh
// katalog. Jalur absen biasa tidak lewat sini — identitas sudah diklaim
// lewat sesi, cukup banding satu-lawan-satu.
func (ctl *Controller) IdentifyFaceHandler(c *gin.Context) {
	var payload IdentifyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data wajah tidak valid: " + err.Error()})
		return
	}

	faces, err := ctl.Embeddings.Catalog(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil katalog wajah"})
		return
	}

	catalog := make([]facematch.Candidate, 0, len(faces))
	for _, f := range faces {
		if f.Vector == nil {
			continue
		}
		catalog = append(catalog, facematch.Candidate{UserId: f.UserId, Vector: f.Vector})
	}

	match, err := ctl.Matcher.BestMatch(payload.Embedding, catalog)
	if err != nil {
		if errors.Is(err, facematch.ErrDimensionMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Dimensi vektor wajah salah (Harus %d).", ctl.Matcher.Dimension),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mencocokkan wajah"})
		return
	}
	if match == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Wajah tidak dikenali (ambang %.0f%%)", config.FaceThreshold*100),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    match.UserId,
		"similarity": match.Similarity,
	})
}
