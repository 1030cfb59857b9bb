package repository

import (
	"context"

	"snapshare/internal/models"
	"snapshare/internal/observability"

	"gorm.io/gorm"
)

// AuditRepository appends to the search and last-viewed logs. Each log is capped
// at maxEntries rows; zero disables the cap.
type AuditRepository interface {
	AppendSearch(ctx context.Context, query string) error
	AppendLastViewed(ctx context.Context, postID uint, title string) error
}

type auditRepository struct {
	db         *gorm.DB
	maxEntries int
}

// NewAuditRepository creates an AuditRepository that keeps at most maxEntries per log.
func NewAuditRepository(db *gorm.DB, maxEntries int) AuditRepository {
	return &auditRepository{db: db, maxEntries: maxEntries}
}

func (r *auditRepository) AppendSearch(ctx context.Context, query string) error {
	defer observability.TrackQuery("insert", "search_log_entries")()
	return r.appendBounded(ctx, &models.SearchLogEntry{QueryText: query}, &models.SearchLogEntry{}, "search")
}

func (r *auditRepository) AppendLastViewed(ctx context.Context, postID uint, title string) error {
	defer observability.TrackQuery("insert", "last_viewed_post_log_entries")()
	entry := &models.LastViewedPostLogEntry{PostID: postID, PostTitle: title}
	return r.appendBounded(ctx, entry, &models.LastViewedPostLogEntry{}, "last_viewed")
}

// appendBounded inserts entry and trims the oldest overflow of the same table in
// one transaction.
func (r *auditRepository) appendBounded(ctx context.Context, entry, model interface{}, logName string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		if r.maxEntries <= 0 {
			return nil
		}
		var total int64
		if err := tx.Model(model).Count(&total).Error; err != nil {
			return err
		}
		overflow := total - int64(r.maxEntries)
		if overflow <= 0 {
			return nil
		}
		oldest := tx.Model(model).Select("id").Order("id ASC").Limit(int(overflow))
		return tx.Where("id IN (?)", oldest).Delete(model).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	observability.AuditAppends.WithLabelValues(logName).Inc()
	return nil
}
