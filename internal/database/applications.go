package database

import (
	"context"
	"time"

	"rentmimi/internal/models"
)

func (d *DB) Applications(ctx context.Context) ([]models.PartnerApplication, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.PartnerApplication, len(d.applications))
	copy(out, d.applications)
	return out, nil
}

func (d *DB) ApplicationByID(ctx context.Context, id string) (*models.PartnerApplication, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.applications {
		if d.applications[i].ID == id {
			app := d.applications[i]
			return &app, nil
		}
	}
	return nil, ErrApplicationNotFound
}

// ApplicationByPhone finds an application by applicant phone. One
// application per partner holds by construction, not by constraint.
func (d *DB) ApplicationByPhone(ctx context.Context, phone string) (*models.PartnerApplication, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.applications {
		if d.applications[i].Applicant.Phone == phone {
			app := d.applications[i]
			return &app, nil
		}
	}
	return nil, ErrApplicationNotFound
}

func (d *DB) UpsertApplication(ctx context.Context, app *models.PartnerApplication) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	app.UpdatedAt = now
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}

	replaced := false
	for i := range d.applications {
		if d.applications[i].ID == app.ID {
			d.applications[i] = *app
			replaced = true
			break
		}
	}
	if !replaced {
		d.applications = append(d.applications, *app)
	}

	return d.saveCollectionLocked(ctx, CollectionApplications, d.applications)
}
