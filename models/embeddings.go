package models

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmbeddingStore akses baca/tulis vektor wajah terdaftar.
// Satu user satu vektor: Put selalu replace, tidak pernah nambah baris.
type EmbeddingStore struct {
	db *gorm.DB
}

func NewEmbeddingStore(db *gorm.DB) *EmbeddingStore {
	return &EmbeddingStore{db: db}
}

// Enrolled ambil vektor terdaftar milik satu user.
// nil tanpa error = user belum daftar wajah.
func (s *EmbeddingStore) Enrolled(ctx context.Context, userId string) ([]float64, error) {
	var face FaceEmbedding
	err := s.db.WithContext(ctx).Where("user_id = ?", userId).First(&face).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := face.DecodeVector(); err != nil {
		return nil, err
	}
	return face.Vector, nil
}

// Put simpan / replace vektor user (upsert pada unique index user_id).
func (s *EmbeddingStore) Put(ctx context.Context, userId string, vector []float64) error {
	raw, err := json.Marshal(vector)
	if err != nil {
		return err
	}
	face := FaceEmbedding{UserId: userId, Embedding: raw}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding", "updated_at"}),
		}).
		Create(&face).Error
}

// Catalog ambil seluruh vektor terdaftar (untuk identifikasi wajah
// yang TIDAK diketahui identitasnya; jalur absen biasa tidak pakai ini).
func (s *EmbeddingStore) Catalog(ctx context.Context) ([]FaceEmbedding, error) {
	var faces []FaceEmbedding
	if err := s.db.WithContext(ctx).Find(&faces).Error; err != nil {
		return nil, err
	}
	for i := range faces {
		// Baris dengan JSON rusak dilewati, jangan gagalkan seluruh katalog
		if err := faces[i].DecodeVector(); err != nil {
			faces[i].Vector = nil
		}
	}
	return faces, nil
}
