package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Batch size for the startup sweep. Each batch is one query and one round of revocations.
const sessionSyncBatchSize = 500

// SessionSyncService reconciles the Redis session store with account state in PostgreSQL.
//
// Rejecting an account revokes its sessions on a best-effort basis. If Redis was
// unreachable at that moment the tokens survive, so the sweep runs again on every startup
// before traffic is accepted.
type SessionSyncService struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	userRepo    repository.UserRepository
	tokens      TokenStore
}

func NewSessionSyncService(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger, userRepo repository.UserRepository, tokens TokenStore) *SessionSyncService {
	return &SessionSyncService{
		db:          db,
		redisClient: redisClient,
		log:         log,
		userRepo:    userRepo,
		tokens:      tokens,
	}
}

// SyncOnStartup revokes every stored session that belongs to a rejected account.
// It returns the number of accounts swept.
func (s *SessionSyncService) SyncOnStartup(ctx context.Context) (int, error) {
	s.log.Info("Starting session re-sync from database...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.log.Warnf("Redis is not available, skipping session sync: %+v", err)
		return 0, fmt.Errorf("redis ping failed: %w", err)
	}

	afterID := uuid.Nil
	totalSwept := 0

	for {
		ids, err := s.userRepo.FindIDsByApprovalStatus(ctx, s.db, entity.ApprovalRejected, afterID, sessionSyncBatchSize)
		if err != nil {
			s.log.Errorf("Failed to query rejected users after %s: %+v", afterID, err)
			return totalSwept, fmt.Errorf("query rejected users after %s: %w", afterID, err)
		}

		if len(ids) == 0 {
			if totalSwept == 0 {
				s.log.Info("No rejected accounts found for session sync")
			}
			break
		}

		s.log.Infof("Processing batch: after=%s, count=%d", afterID, len(ids))

		for _, id := range ids {
			if err := s.tokens.RevokeAll(ctx, id); err != nil {
				s.log.Errorf("Failed to revoke sessions for user %s: %+v", id, err)
				return totalSwept, fmt.Errorf("revoke sessions for user %s: %w", id, err)
			}
			totalSwept++
		}

		if len(ids) < sessionSyncBatchSize {
			break
		}
		afterID = ids[len(ids)-1]

		select {
		case <-ctx.Done():
			return totalSwept, ctx.Err()
		default:
		}
	}

	s.log.Infof("Session re-sync completed: %d rejected accounts swept in %v", totalSwept, time.Since(startTime))
	return totalSwept, nil
}
