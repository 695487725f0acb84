// Package catalog covers the admin side of the salon: stylists, the service
// menu, per-stylist prices and working schedules. Everything here is
// reference data consumed by the availability and pricing resolvers.
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/repository"
	apperrors "github.com/shearbook/booking-api/pkg/errors"
)

type Service struct {
	stylists  repository.StylistRepository
	services  repository.ServiceRepository
	schedules repository.ScheduleRepository
}

func NewService(stylists repository.StylistRepository, services repository.ServiceRepository, schedules repository.ScheduleRepository) *Service {
	return &Service{
		stylists:  stylists,
		services:  services,
		schedules: schedules,
	}
}

func (s *Service) CreateStylist(ctx context.Context, req *model.CreateStylistRequest) (*model.Stylist, error) {
	stylist := &model.Stylist{
		ID:     uuid.New(),
		Name:   req.Name,
		Bio:    req.Bio,
		Active: true,
	}
	if err := s.stylists.Create(ctx, stylist); err != nil {
		return nil, fmt.Errorf("failed to create stylist: %w", err)
	}
	return stylist, nil
}

func (s *Service) GetStylist(ctx context.Context, id uuid.UUID) (*model.Stylist, error) {
	stylist, err := s.stylists.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("stylist", err)
		}
		return nil, fmt.Errorf("failed to get stylist: %w", err)
	}
	return stylist, nil
}

func (s *Service) UpdateStylist(ctx context.Context, id uuid.UUID, req *model.UpdateStylistRequest) (*model.Stylist, error) {
	stylist, err := s.GetStylist(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		stylist.Name = *req.Name
	}
	if req.Bio != nil {
		stylist.Bio = *req.Bio
	}
	if req.Active != nil {
		stylist.Active = *req.Active
	}

	if err := s.stylists.Update(ctx, stylist); err != nil {
		return nil, fmt.Errorf("failed to update stylist: %w", err)
	}
	return stylist, nil
}

func (s *Service) ListStylists(ctx context.Context) ([]*model.Stylist, error) {
	stylists, err := s.stylists.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stylists: %w", err)
	}
	return stylists, nil
}

func (s *Service) CreateService(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error) {
	svc := &model.Service{
		ID:              uuid.New(),
		Name:            req.Name,
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

func (s *Service) ListServices(ctx context.Context) ([]*model.Service, error) {
	services, err := s.services.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// UpsertStylistService sets a stylist's price and duration for a service.
// Deactivating the row removes the service from the stylist's bookable menu.
func (s *Service) UpsertStylistService(ctx context.Context, stylistID uuid.UUID, req *model.UpsertStylistServiceRequest) (*model.StylistService, error) {
	if _, err := s.GetStylist(ctx, stylistID); err != nil {
		return nil, err
	}
	if _, err := s.services.Get(ctx, req.ServiceID); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	row := &model.StylistService{
		StylistID:       stylistID,
		ServiceID:       req.ServiceID,
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		Active:          active,
	}
	if err := s.services.UpsertStylistService(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to upsert stylist service: %w", err)
	}
	return row, nil
}

func (s *Service) UpsertWeeklySchedule(ctx context.Context, stylistID uuid.UUID, req *model.UpsertWeeklyScheduleRequest) (*model.WeeklySchedule, error) {
	if _, err := s.GetStylist(ctx, stylistID); err != nil {
		return nil, err
	}
	if err := validateWindow(req.Closed, req.OpenMinute, req.CloseMinute, req.LatestStartMinute); err != nil {
		return nil, err
	}

	rule := &model.WeeklySchedule{
		StylistID:         stylistID,
		DayOfWeek:         req.DayOfWeek,
		Closed:            req.Closed,
		OpenMinute:        req.OpenMinute,
		CloseMinute:       req.CloseMinute,
		LatestStartMinute: req.LatestStartMinute,
	}
	if err := s.schedules.UpsertWeekly(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to upsert weekly schedule: %w", err)
	}
	return rule, nil
}

func (s *Service) UpsertScheduleOverride(ctx context.Context, stylistID uuid.UUID, req *model.UpsertScheduleOverrideRequest) (*model.ScheduleOverride, error) {
	if _, err := s.GetStylist(ctx, stylistID); err != nil {
		return nil, err
	}
	if err := validateWindow(req.Closed, req.OpenMinute, req.CloseMinute, req.LatestStartMinute); err != nil {
		return nil, err
	}

	override := &model.ScheduleOverride{
		StylistID:         stylistID,
		DayDate:           req.DayDate,
		Closed:            req.Closed,
		OpenMinute:        req.OpenMinute,
		CloseMinute:       req.CloseMinute,
		LatestStartMinute: req.LatestStartMinute,
	}
	if err := s.schedules.UpsertOverride(ctx, override); err != nil {
		return nil, fmt.Errorf("failed to upsert schedule override: %w", err)
	}
	return override, nil
}

func (s *Service) ListWeeklySchedules(ctx context.Context, stylistID uuid.UUID) ([]*model.WeeklySchedule, error) {
	rules, err := s.schedules.ListWeekly(ctx, stylistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly schedules: %w", err)
	}
	return rules, nil
}

// validateWindow rejects windows the availability engine could never use.
// Closed days skip the check; their minute columns are ignored.
func validateWindow(closed bool, openMinute, closeMinute, latestStartMinute int) error {
	if closed {
		return nil
	}
	if closeMinute <= openMinute {
		return apperrors.BadRequest("close_minute must be after open_minute", nil)
	}
	if latestStartMinute < openMinute || latestStartMinute > closeMinute {
		return apperrors.BadRequest("latest_start_minute must fall within the open window", nil)
	}
	return nil
}
