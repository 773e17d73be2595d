package services

import (
	"context"
	"time"

	"campusBack/internal/models"
	"campusBack/internal/repositories"
)

type FeeService struct {
	FeeRepo *repositories.FeeScheduleRepository
}

func (s *FeeService) CreateFee(ctx context.Context, fee models.FeeSchedule) (models.FeeSchedule, error) {
	if !models.IsValidDocumentType(fee.DocumentType) {
		return models.FeeSchedule{}, models.ErrInvalidDocumentType
	}
	if !models.IsValidProcessingType(fee.ProcessingType) {
		return models.FeeSchedule{}, models.ErrInvalidProcessing
	}
	return s.FeeRepo.Create(ctx, fee)
}

func (s *FeeService) GetFees(ctx context.Context) ([]models.FeeSchedule, error) {
	return s.FeeRepo.List(ctx)
}

func (s *FeeService) GetFeeByID(ctx context.Context, id int) (models.FeeSchedule, error) {
	return s.FeeRepo.GetByID(ctx, id)
}

func (s *FeeService) UpdateFee(ctx context.Context, fee models.FeeSchedule) (models.FeeSchedule, error) {
	return s.FeeRepo.Update(ctx, fee)
}

func (s *FeeService) DeleteFee(ctx context.Context, id int) error {
	return s.FeeRepo.Delete(ctx, id)
}

func (s *FeeService) UnitPrice(ctx context.Context, documentType, processingType string, at time.Time) (float64, error) {
	return s.FeeRepo.UnitPrice(ctx, documentType, processingType, at)
}
