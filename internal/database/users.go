package database

import (
	"context"
	"time"

	"rentmimi/internal/models"
)

func (d *DB) Users(ctx context.Context) ([]models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.User, len(d.users))
	copy(out, d.users)
	return out, nil
}

func (d *DB) UserByPhone(ctx context.Context, phone string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].Phone == phone {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// UpsertUser replaces the user with the same phone, or appends, then
// persists the whole collection. Users are never deleted.
func (d *DB) UpsertUser(ctx context.Context, user *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	user.UpdatedAt = now
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	replaced := false
	for i := range d.users {
		if d.users[i].Phone == user.Phone {
			d.users[i] = *user
			replaced = true
			break
		}
	}
	if !replaced {
		d.users = append(d.users, *user)
	}

	return d.saveCollectionLocked(ctx, CollectionUsers, d.users)
}

// UsersByRole returns all users holding a role.
func (d *DB) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.User
	for i := range d.users {
		if d.users[i].HasRole(role) {
			out = append(out, d.users[i])
		}
	}
	return out, nil
}
