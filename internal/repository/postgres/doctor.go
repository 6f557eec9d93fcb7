package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smarthealthpro/booking-api/internal/model"
	"github.com/smarthealthpro/booking-api/internal/repository"
)

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, user_id, specialization, about, address,
			rating, review_count, office_hours, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.UserID,
		doctor.Specialization,
		doctor.About,
		doctor.Address,
		doctor.Rating,
		doctor.ReviewCount,
		doctor.OfficeHours,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, user_id, specialization, about, address,
			   rating, review_count, office_hours, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("doctor %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetOfficeHours(ctx context.Context, id uuid.UUID) (model.WeeklyHours, error) {
	var hours model.WeeklyHours
	err := r.db.GetContext(ctx, &hours, `SELECT office_hours FROM doctors WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("doctor %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get office hours: %w", err)
	}
	return hours, nil
}

func (r *doctorRepository) UpdateOfficeHours(ctx context.Context, id uuid.UUID, hours model.WeeklyHours) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE doctors SET office_hours = $1, updated_at = $2 WHERE id = $3`,
		hours, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update office hours: %w", err)
	}
	return checkAffected(result)
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	query := `
		SELECT id, user_id, specialization, about, address,
			   rating, review_count, office_hours, created_at, updated_at
		FROM doctors
		ORDER BY created_at ASC
	`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
