package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

type GormStorage struct {
	DB      *gorm.DB
	Profile string
}

func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{DB: db}
}

func (r *GormStorage) Scoped(profile string) Storage {
	return &GormStorage{DB: r.DB, Profile: profile}
}

func (r *GormStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.StorageEntry
	err := r.DB.WithContext(ctx).
		Where("profile = ? AND storage_key = ?", r.Profile, key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Value, true, nil
}

func (r *GormStorage) Set(ctx context.Context, key string, value []byte) error {
	entry := models.StorageEntry{
		Profile:   r.Profile,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile"}, {Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (r *GormStorage) Remove(ctx context.Context, key string) error {
	return r.DB.WithContext(ctx).
		Where("profile = ? AND storage_key = ?", r.Profile, key).
		Delete(&models.StorageEntry{}).Error
}
