package store

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Results() Results
	InitialMigration(ctx context.Context) error
	Close() error
}

type DataStore struct {
	db      *gorm.DB
	results Results
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:      db,
		results: NewCacheResultStore(NewResultStore(db)),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Results() Results {
	return s.results
}

func (s *DataStore) InitialMigration(ctx context.Context) error {
	ctx, err := s.NewTransactionContext(ctx)
	if err != nil {
		return err
	}

	if err := s.results.InitialMigration(ctx); err != nil {
		_, _ = Rollback(ctx)
		return err
	}

	_, err = Commit(ctx)
	return err
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
