package service

import (
	"context"

	"medreminder/internal/application/dto"
	"medreminder/internal/domain/entity"
)

// MedicineService creates, updates and deletes medicines together with their reminders.
type MedicineService interface {
	// CreateMedicine creates the medicine remotely, then schedules its reminders.
	// When scheduling fails the created medicine is still returned with the error.
	CreateMedicine(ctx context.Context, req dto.MedicineRequest) (*dto.MedicineResponse, error)
	// UpdateMedicine cancels the reminders, updates the medicine remotely and reschedules.
	UpdateMedicine(ctx context.Context, id entity.ID, req dto.MedicineRequest) (*dto.MedicineResponse, error)
	// GetMedicine fetches the medicine remotely together with its live reminder triggers.
	GetMedicine(ctx context.Context, id entity.ID) (*dto.MedicineResponse, error)
	// DeleteMedicine deletes the medicine remotely and cancels its reminders.
	DeleteMedicine(ctx context.Context, id entity.ID) error
}
