package ledger

import (
	"context"
	"errors"

	"HADIRKU/models"

	"gorm.io/gorm"
)

// GormStore implementasi EventStore di atas MySQL.
// Atomisitas insert datang dari unique index idx_absen_harian;
// gorm (TranslateError) melaporkan tabrakan sebagai ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Insert(ctx context.Context, event *models.AttendanceEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEvent
		}
		return err
	}
	return nil
}

func (s *GormStore) EventsByDay(ctx context.Context, userId, tgl string) ([]models.AttendanceEvent, error) {
	var events []models.AttendanceEvent
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND tgl_absen = ?", userId, tgl).
		Find(&events).Error
	return events, err
}

func (s *GormStore) List(ctx context.Context, filter Filter) ([]models.AttendanceEvent, error) {
	q := s.db.WithContext(ctx).Model(&models.AttendanceEvent{})
	if filter.UserId != "" {
		q = q.Where("user_id = ?", filter.UserId)
	}
	if filter.TglDari != "" {
		q = q.Where("tgl_absen >= ?", filter.TglDari)
	}
	if filter.TglSampai != "" {
		q = q.Where("tgl_absen <= ?", filter.TglSampai)
	}
	if filter.Jenis != "" {
		q = q.Where("jenis = ?", filter.Jenis)
	}

	var events []models.AttendanceEvent
	err := q.Order("created_at desc").Find(&events).Error
	return events, err
}
