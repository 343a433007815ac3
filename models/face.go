package models

import (
	"encoding/json"
	"time"
)

// FaceEmbedding menyimpan TEPAT SATU vektor wajah per user.
// Daftar ulang = replace baris lama, bukan nambah sampel baru.
type FaceEmbedding struct {
	Id        int64           `gorm:"primaryKey" json:"id"`
	UserId    string          `gorm:"type:char(36);uniqueIndex" json:"user_id"`
	Embedding json.RawMessage `gorm:"type:json" json:"-"` // Raw JSON dari DB
	Vector    []float64       `gorm:"-" json:"embedding"` // Helper buat coding
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FaceEmbedding) TableName() string {
	return "face_embeddings"
}

// DecodeVector isi field Vector dari kolom JSON.
func (f *FaceEmbedding) DecodeVector() error {
	return json.Unmarshal(f.Embedding, &f.Vector)
}
