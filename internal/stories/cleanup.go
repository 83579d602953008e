package stories

import (
	"context"
	"time"

	"github.com/flixsy/backend/internal/logger"
	"github.com/flixsy/backend/internal/metrics"
	"github.com/flixsy/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CleanupService deletes expired stories on a timer so the active-story
// queries never scan an unbounded backlog.
type CleanupService struct {
	db       *gorm.DB
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration
}

// NewCleanupService creates a cleanup worker running at the given interval.
func NewCleanupService(db *gorm.DB, interval time.Duration) *CleanupService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CleanupService{
		db:       db,
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
	}
}

// Start begins the periodic cleanup loop.
func (s *CleanupService) Start() {
	logger.Log.Info("starting story cleanup service",
		zap.Duration("interval", s.interval))
	go s.run()
}

// Stop cancels the loop.
func (s *CleanupService) Stop() {
	logger.Log.Info("stopping story cleanup service")
	s.cancel()
}

func (s *CleanupService) run() {
	// One pass at startup, then on the ticker.
	s.CleanupExpired()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CleanupExpired()
		case <-s.ctx.Done():
			return
		}
	}
}

// CleanupExpired deletes every expired story and its view rows in one
// transaction. Returns the number of stories removed.
func (s *CleanupService) CleanupExpired() int64 {
	start := time.Now()
	var deleted int64

	err := s.db.WithContext(s.ctx).Transaction(func(tx *gorm.DB) error {
		var expiredIDs []uint
		if err := tx.Model(&models.Story{}).
			Where("expires_at < ?", time.Now().UTC()).
			Pluck("id", &expiredIDs).Error; err != nil {
			return err
		}
		if len(expiredIDs) == 0 {
			return nil
		}

		if err := tx.Where("story_id IN ?", expiredIDs).
			Delete(&models.StoryView{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Story{}, expiredIDs)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		logger.Error("story cleanup failed", err)
		return 0
	}

	if deleted > 0 {
		metrics.Get().StoriesCleaned.Add(float64(deleted))
		logger.Log.Info("story cleanup completed",
			zap.Int64("deleted", deleted),
			zap.Duration("took", time.Since(start)))
	}
	return deleted
}
