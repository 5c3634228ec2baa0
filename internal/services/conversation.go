package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"edu-info-bot/internal/constants"
	apperrors "edu-info-bot/internal/errors"
	"edu-info-bot/internal/models"
)

// ConversationService manages per-user conversation state. States are kept
// in memory with a sliding expiration window; an expired or absent entry
// means no active conversation.
type ConversationService struct {
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(logger *logrus.Logger) *ConversationService {
	return &ConversationService{
		cache:  cache.New(constants.CacheExpiration*time.Minute, constants.CacheCleanupInterval*time.Minute),
		logger: logger,
	}
}

// GetState gets a user's conversation as a value copy. Callers mutate the
// copy and commit it back with SetState once the whole transition succeeded.
func (s *ConversationService) GetState(userID int64) (models.Conversation, error) {
	key := s.key(userID)

	if data, found := s.cache.Get(key); found {
		if conv, ok := data.(models.Conversation); ok {
			return conv, nil
		}
		return models.Conversation{}, &apperrors.StateError{UserID: userID, Message: "invalid cached state type"}
	}

	return models.Conversation{Stage: models.StageNone}, nil
}

// SetState commits a user's conversation
func (s *ConversationService) SetState(userID int64, conv models.Conversation) {
	s.cache.Set(s.key(userID), conv, cache.DefaultExpiration)
	s.logger.Debugf("Set state for user %d: stage=%s", userID, conv.Stage)
}

// ClearState drops a user's conversation
func (s *ConversationService) ClearState(userID int64) {
	s.cache.Delete(s.key(userID))
	s.logger.Debugf("Cleared state for user %d", userID)
}

func (s *ConversationService) key(userID int64) string {
	return fmt.Sprintf("conversation_%d", userID)
}
