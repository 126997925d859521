package service

import (
	"context"
	"fmt"
	"strings"

	"medreminder/internal/application/dto"
	"medreminder/internal/domain/entity"
	"medreminder/internal/pkg/logger"
)

type medicineService struct {
	api       HealthAPI
	scheduler SchedulerService
	log       logger.Logger
}

// NewMedicineService creates a new instance of MedicineService implementation.
func NewMedicineService(api HealthAPI, scheduler SchedulerService, log logger.Logger) MedicineService {
	return &medicineService{
		api:       api,
		scheduler: scheduler,
		log:       log,
	}
}

func (s *medicineService) CreateMedicine(ctx context.Context, req dto.MedicineRequest) (*dto.MedicineResponse, error) {
	hp, err := s.api.CreateHealthProduct(ctx, req.ToHealthProductRequest())
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to create medicine %s", req.HealthProductName), err)
		return nil, err
	}
	s.log.Info(fmt.Sprintf("Created medicine %d (%s)", hp.HealthProductID, hp.HealthProductName))
	return s.schedule(ctx, req, hp)
}

func (s *medicineService) UpdateMedicine(ctx context.Context, id entity.ID, req dto.MedicineRequest) (*dto.MedicineResponse, error) {
	if err := s.scheduler.CancelAllRemindersForMedicine(ctx, id); err != nil {
		s.log.Warn(fmt.Sprintf("Failed to cancel reminders before updating medicine %d: %v", id, err))
	}

	hp, err := s.api.UpdateHealthProduct(ctx, id, req.ToHealthProductRequest())
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to update medicine %d", id), err)
		return nil, err
	}
	if hp.HealthProductID == 0 {
		hp.HealthProductID = id
	}
	s.log.Info(fmt.Sprintf("Updated medicine %d", id))
	return s.schedule(ctx, req, hp)
}

func (s *medicineService) GetMedicine(ctx context.Context, id entity.ID) (*dto.MedicineResponse, error) {
	hp, err := s.api.GetHealthProduct(ctx, id)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to fetch medicine %d", id), err)
		return nil, err
	}

	resp := &dto.MedicineResponse{Medicine: hp, TriggerIDs: []string{}}
	live, err := s.scheduler.ListScheduled(ctx)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Failed to list reminders for medicine %d: %v", id, err))
		return resp, nil
	}
	prefix := entity.DailyTriggerPrefix(id)
	for _, r := range live {
		if strings.HasPrefix(r.Identifier, prefix) {
			resp.TriggerIDs = append(resp.TriggerIDs, r.Identifier)
		}
	}
	return resp, nil
}

func (s *medicineService) DeleteMedicine(ctx context.Context, id entity.ID) error {
	remoteErr := s.api.DeleteHealthProduct(ctx, id)
	if remoteErr != nil {
		s.log.Warn(fmt.Sprintf("Remote delete of medicine %d failed, cancelling reminders anyway: %v", id, remoteErr))
	}

	if err := s.scheduler.CancelAllRemindersForMedicine(ctx, id); err != nil {
		s.log.Error(fmt.Sprintf("Failed to cancel reminders for medicine %d", id), err)
		return err
	}
	return remoteErr
}

// schedule schedules reminders for a medicine returned by the remote API. The
// API's reminder times win; the request's are used when it echoes none.
func (s *medicineService) schedule(ctx context.Context, req dto.MedicineRequest, hp *entity.HealthProduct) (*dto.MedicineResponse, error) {
	times := hp.ReminderTimes
	if len(times) == 0 {
		times = req.ReminderTimes
	}
	name := hp.HealthProductName
	if name == "" {
		name = req.HealthProductName
	}
	dose, unit := hp.DoseQuantity, hp.Unit
	if dose == 0 {
		dose = req.DoseQuantity
	}
	if unit == "" {
		unit = req.Unit
	}

	resp := &dto.MedicineResponse{Medicine: hp, TriggerIDs: []string{}}
	if len(times) == 0 {
		return resp, nil
	}

	ids, err := s.scheduler.ScheduleDailyReminders(ctx, dto.ScheduleRemindersRequest{
		UserID:          req.UserID,
		HealthProductID: hp.HealthProductID,
		MedicineName:    name,
		DoseQuantity:    dose,
		Unit:            unit,
		ReminderTimes:   times,
	})
	if ids != nil {
		resp.TriggerIDs = ids
	}
	if err != nil {
		s.log.Error(fmt.Sprintf("Medicine %d saved but reminders could not be scheduled", hp.HealthProductID), err)
		resp.Warning = "medicine saved but reminders could not be scheduled: " + err.Error()
		return resp, err
	}
	return resp, nil
}
