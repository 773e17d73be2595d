package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campusBack/internal/models"
)

type FeeScheduleRepository struct {
	DB *sql.DB
}

// UnitPrice resolves the per-unit fee in force at the given instant: the row
// with the latest effective_date not in the future. No cached "current"
// schedule exists; every computation asks the table.
func (r *FeeScheduleRepository) UnitPrice(ctx context.Context, documentType, processingType string, at time.Time) (float64, error) {
	var price float64
	err := r.DB.QueryRowContext(ctx, `
SELECT unit_price FROM fee_schedules
WHERE document_type = ? AND processing_type = ? AND effective_date <= ?
ORDER BY effective_date DESC LIMIT 1`, documentType, processingType, at).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrFeeNotFound
	}
	return price, err
}

func (r *FeeScheduleRepository) Create(ctx context.Context, fee models.FeeSchedule) (models.FeeSchedule, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO fee_schedules (document_type, processing_type, unit_price, effective_date, created_at) VALUES (?, ?, ?, ?, NOW())`,
		fee.DocumentType, fee.ProcessingType, fee.UnitPrice, fee.EffectiveDate)
	if err != nil {
		return models.FeeSchedule{}, err
	}
	id, _ := res.LastInsertId()
	fee.ID = int(id)
	return fee, nil
}

func (r *FeeScheduleRepository) List(ctx context.Context) ([]models.FeeSchedule, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, document_type, processing_type, unit_price, effective_date, created_at, updated_at FROM fee_schedules ORDER BY effective_date DESC, document_type, processing_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []models.FeeSchedule
	for rows.Next() {
		var fee models.FeeSchedule
		if err := rows.Scan(&fee.ID, &fee.DocumentType, &fee.ProcessingType, &fee.UnitPrice, &fee.EffectiveDate, &fee.CreatedAt, &fee.UpdatedAt); err != nil {
			return nil, err
		}
		fees = append(fees, fee)
	}
	return fees, rows.Err()
}

func (r *FeeScheduleRepository) GetByID(ctx context.Context, id int) (models.FeeSchedule, error) {
	var fee models.FeeSchedule
	err := r.DB.QueryRowContext(ctx, `SELECT id, document_type, processing_type, unit_price, effective_date, created_at, updated_at FROM fee_schedules WHERE id = ?`, id).
		Scan(&fee.ID, &fee.DocumentType, &fee.ProcessingType, &fee.UnitPrice, &fee.EffectiveDate, &fee.CreatedAt, &fee.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FeeSchedule{}, models.ErrFeeNotFound
	}
	return fee, err
}

func (r *FeeScheduleRepository) Update(ctx context.Context, fee models.FeeSchedule) (models.FeeSchedule, error) {
	_, err := r.DB.ExecContext(ctx, `UPDATE fee_schedules SET unit_price = ?, effective_date = ?, updated_at = NOW() WHERE id = ?`, fee.UnitPrice, fee.EffectiveDate, fee.ID)
	return fee, err
}

func (r *FeeScheduleRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM fee_schedules WHERE id = ?`, id)
	return err
}
