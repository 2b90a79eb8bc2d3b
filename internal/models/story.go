package models

import "time"

// MimiStory is a short partner-authored post. Author name and photo are
// snapshotted at post time so old stories survive profile edits.
type MimiStory struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	MimiName      string    `json:"mimi_name"`
	MimiPhotoURL  string    `json:"mimi_photo_url,omitempty"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}
