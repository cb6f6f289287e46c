package store

import (
	"context"
	"errors"
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/store/model"
	"gorm.io/gorm"
)

type Results interface {
	Create(ctx context.Context, result model.SharedResult) (*model.SharedResult, error)
	// GetByToken returns ErrRecordNotFound for unknown and expired tokens.
	GetByToken(ctx context.Context, token string) (*model.SharedResult, error)
	List(ctx context.Context, filter *ResultQueryFilter, opts *ResultQueryOptions) (model.SharedResultList, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	InitialMigration(ctx context.Context) error
}

type ResultStore struct {
	db *gorm.DB
}

// Make sure we conform to Results interface
var _ Results = (*ResultStore)(nil)

func NewResultStore(db *gorm.DB) Results {
	return &ResultStore{db: db}
}

func (s *ResultStore) InitialMigration(ctx context.Context) error {
	return s.getDB(ctx).AutoMigrate(&model.SharedResult{})
}

func (s *ResultStore) Create(ctx context.Context, result model.SharedResult) (*model.SharedResult, error) {
	if err := s.getDB(ctx).Create(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return &result, nil
}

func (s *ResultStore) GetByToken(ctx context.Context, token string) (*model.SharedResult, error) {
	var result model.SharedResult
	if err := s.getDB(ctx).Where("token = ?", token).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	if result.Expired(time.Now()) {
		return nil, ErrRecordNotFound
	}
	return &result, nil
}

func (s *ResultStore) List(ctx context.Context, filter *ResultQueryFilter, opts *ResultQueryOptions) (model.SharedResultList, error) {
	var results model.SharedResultList
	tx := s.getDB(ctx)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Model(&results).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *ResultStore) Delete(ctx context.Context, token string) error {
	result := s.getDB(ctx).Where("token = ?", token).Delete(&model.SharedResult{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *ResultStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.getDB(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now.UTC()).
		Delete(&model.SharedResult{})
	return result.RowsAffected, result.Error
}

func (s *ResultStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}
