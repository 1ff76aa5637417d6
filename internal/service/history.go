package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/labellens/backend/internal/models"
)

var ErrSessionNotFound = errors.New("scan session not found")

const scanCacheTTL = 24 * time.Hour

// ScanHistoryService persists scan sessions and their status
// transitions. Completed sessions are cached in Redis so the history
// view does not hit Postgres on every open. It owns no retention
// policy; callers decide how much history to keep.
type ScanHistoryService struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewScanHistoryService creates a new ScanHistoryService instance. The
// Redis client may be nil; caching is then skipped.
func NewScanHistoryService(db *gorm.DB, redisClient *redis.Client) *ScanHistoryService {
	return &ScanHistoryService{db: db, redis: redisClient}
}

func scanCacheKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("scan:session:%s", sessionID)
}

// Create inserts a new pending session.
func (s *ScanHistoryService) Create(ctx context.Context, session *models.ScanSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.Status == "" {
		session.Status = models.ScanStatusPending
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create scan session: %w", err)
	}
	return nil
}

// Upsert saves the session's current state and refreshes the cache.
func (s *ScanHistoryService) Upsert(ctx context.Context, session *models.ScanSession) error {
	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to save scan session: %w", err)
	}
	s.cacheSession(ctx, session)
	return nil
}

// Get returns one session owned by the user, from cache when possible.
func (s *ScanHistoryService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*models.ScanSession, error) {
	if cached := s.cachedSession(ctx, sessionID); cached != nil && cached.UserID == userID {
		return cached, nil
	}

	var session models.ScanSession
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scan session: %w", err)
	}

	s.cacheSession(ctx, &session)
	return &session, nil
}

// List returns the user's sessions, newest first.
func (s *ScanHistoryService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.ScanSession, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sessions []models.ScanSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list scan sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes one session owned by the user.
func (s *ScanHistoryService) Delete(ctx context.Context, userID, sessionID uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, userID).
		Delete(&models.ScanSession{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete scan session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, scanCacheKey(sessionID)).Err(); err != nil {
			log.Printf("[ScanHistoryService] Failed to evict cached session %s: %v", sessionID, err)
		}
	}
	return nil
}

// cacheSession writes the session to Redis. Cache failures are logged
// and otherwise ignored; Postgres stays authoritative.
func (s *ScanHistoryService) cacheSession(ctx context.Context, session *models.ScanSession) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(session)
	if err != nil {
		log.Printf("[ScanHistoryService] Failed to marshal session %s for cache: %v", session.ID, err)
		return
	}
	if err := s.redis.Set(ctx, scanCacheKey(session.ID), data, scanCacheTTL).Err(); err != nil {
		log.Printf("[ScanHistoryService] Failed to cache session %s: %v", session.ID, err)
	}
}

func (s *ScanHistoryService) cachedSession(ctx context.Context, sessionID uuid.UUID) *models.ScanSession {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, scanCacheKey(sessionID)).Bytes()
	if err != nil {
		return nil
	}

	var session models.ScanSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil
	}
	return &session
}
