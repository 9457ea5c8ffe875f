package service

import (
	infraKafka "clipstream/internal/infra/kafka"
	"clipstream/internal/repository"
	"clipstream/pkg/logger"

	"go.uber.org/zap"
)

// ReconcileService repairs counter drift. Counters are denormalized from the
// relation and video tables; the edge tables are the source of truth, so a
// repair is always a recompute from them, never a delta.
type ReconcileService struct {
	userRepo *repository.UserRepository
}

func NewReconcileService(userRepo *repository.UserRepository) *ReconcileService {
	return &ReconcileService{userRepo: userRepo}
}

// HandleRelationEvent recomputes both sides of a follow edge change. Events
// arrive after the edge and counters already committed together, so this only
// matters when a past crash or manual edit left a counter stale. Recomputing
// is idempotent, so replayed events are harmless.
func (s *ReconcileService) HandleRelationEvent(event *infraKafka.RelationEvent) error {
	if err := s.userRepo.RecomputeRelationCounters(event.FollowerID); err != nil {
		return err
	}
	if err := s.userRepo.RecomputeRelationCounters(event.FollowingID); err != nil {
		return err
	}

	logger.Debug("Relation counters reconciled",
		zap.String("type", event.Type),
		zap.Int64("follower_id", event.FollowerID),
		zap.Int64("following_id", event.FollowingID),
	)
	return nil
}

// ReconcileUser recomputes every counter on one profile.
func (s *ReconcileService) ReconcileUser(userID int64) error {
	if err := s.userRepo.RecomputeRelationCounters(userID); err != nil {
		return err
	}
	return s.userRepo.RecomputeVideoCount(userID)
}

// ReconcileAll sweeps every profile in pages. Intended for a periodic job or
// a one-off run after restoring from backup.
func (s *ReconcileService) ReconcileAll(batchSize int) (int, error) {
	if batchSize < 1 {
		batchSize = 200
	}

	repaired := 0
	for page := 0; ; page++ {
		users, _, err := s.userRepo.ListWithFilters(page*batchSize, batchSize, nil, nil)
		if err != nil {
			return repaired, err
		}
		if len(users) == 0 {
			return repaired, nil
		}

		for i := range users {
			if err := s.ReconcileUser(users[i].ID); err != nil {
				logger.Error("Failed to reconcile user", zap.Int64("user_id", users[i].ID), zap.Error(err))
				continue
			}
			repaired++
		}

		if len(users) < batchSize {
			return repaired, nil
		}
	}
}
