package database

import (
	"context"

	"rentmimi/internal/models"
)

// Stories returns the story feed, newest first (insertion order).
func (d *DB) Stories(ctx context.Context) ([]models.MimiStory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.MimiStory, len(d.stories))
	copy(out, d.stories)
	return out, nil
}

// InsertStory prepends a story and persists the whole collection.
func (d *DB) InsertStory(ctx context.Context, story *models.MimiStory) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stories = append([]models.MimiStory{*story}, d.stories...)
	return d.saveCollectionLocked(ctx, CollectionStories, d.stories)
}
