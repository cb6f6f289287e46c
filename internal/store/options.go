package store

import (
	"time"

	"gorm.io/gorm"
)

type SortOrder int

const (
	Unsorted SortOrder = iota
	SortByToken
	SortByCreatedTime
	SortByExpiryTime
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type ResultQueryFilter BaseQuerier

func NewResultQueryFilter() *ResultQueryFilter {
	return &ResultQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *ResultQueryFilter) ByTitle(title string) *ResultQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("title = ?", title)
	})
	return qf
}

// Active keeps results that never expire or expire after now.
func (qf *ResultQueryFilter) Active(now time.Time) *ResultQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("expires_at IS NULL OR expires_at > ?", now.UTC())
	})
	return qf
}

func (qf *ResultQueryFilter) CreatedAfter(t time.Time) *ResultQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("created_at > ?", t.UTC())
	})
	return qf
}

type ResultQueryOptions BaseQuerier

func NewResultQueryOptions() *ResultQueryOptions {
	return &ResultQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *ResultQueryOptions) WithSortOrder(sort SortOrder) *ResultQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByToken:
			return tx.Order("token")
		case SortByCreatedTime:
			return tx.Order("created_at")
		case SortByExpiryTime:
			return tx.Order("expires_at")
		default:
			return tx
		}
	})
	return o
}

func (o *ResultQueryOptions) WithLimit(limit int) *ResultQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Limit(limit)
	})
	return o
}
