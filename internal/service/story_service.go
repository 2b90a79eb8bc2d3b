package service

import (
	"context"
	"strings"
	"time"

	"rentmimi/internal/database"
	"rentmimi/internal/domain"
	"rentmimi/internal/events"
	"rentmimi/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type StorySvc struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewStoryService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *StorySvc {
	return &StorySvc{store: store, eventBus: eventBus, logger: logger}
}

// PostStory publishes a feed entry under the partner's current display
// name and photo. The snapshot is taken at post time so later profile
// edits do not rewrite the feed.
func (s *StorySvc) PostStory(ctx context.Context, actor models.User, content string) (*models.MimiStory, error) {
	if !actor.HasRole(models.RolePartner) {
		return nil, database.ErrActorNotAllowed
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, database.ErrEmptyContent
	}

	app, err := s.store.ApplicationByPhone(ctx, actor.Phone)
	if err != nil {
		return nil, err
	}

	story := models.MimiStory{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		MimiName:      app.DisplayName(),
		MimiPhotoURL:  app.ProfilePhotoURL(),
		Content:       content,
		CreatedAt:     time.Now(),
	}
	if err := s.store.InsertStory(ctx, &story); err != nil {
		return nil, err
	}

	if err := s.eventBus.PublishJSON(events.EventStoryPosted, map[string]string{
		"story_id":       story.ID,
		"application_id": story.ApplicationID,
		"mimi_name":      story.MimiName,
	}); err != nil {
		s.logger.Warn().Err(err).Str("story_id", story.ID).Msg("Failed to publish story event")
	}

	return &story, nil
}

func (s *StorySvc) Stories(ctx context.Context) ([]models.MimiStory, error) {
	return s.store.Stories(ctx)
}
