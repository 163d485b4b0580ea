package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hackcampus/apply-backend/internal/apperrors"
	"github.com/hackcampus/apply-backend/internal/models"
	"github.com/hackcampus/apply-backend/internal/workflow"
)

type EventService struct {
	DB  *gorm.DB
	Log *slog.Logger
}

func NewEventService(db *gorm.DB, log *slog.Logger) *EventService {
	return &EventService{DB: db, Log: log}
}

// Record appends one workflow event for an application. Stage-changing event
// types go through the transition guard and move the application's stage in
// the same transaction that writes the event; unknown types degrade to
// comments and leave the stage alone.
func (s *EventService) Record(ctx context.Context, actorID, applicationID uint, rawType string, payload map[string]any) (*models.ApplicationEvent, error) {
	eventType := workflow.ParseEventType(rawType)
	var event *models.ApplicationEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.record(tx, actorID, applicationID, eventType, payload, &event)
	})
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		s.Log.Error("event storage failure", "op", "record event", "err", err)
		return nil, apperrors.Storage("record event failed", err)
	}
	return event, nil
}

// RecordInTx appends an event as part of a caller-owned transaction, for
// writes that must land atomically with other rows (company preferences).
func (s *EventService) RecordInTx(tx *gorm.DB, actorID, applicationID uint, eventType workflow.EventType, payload map[string]any) (*models.ApplicationEvent, error) {
	var event *models.ApplicationEvent
	if err := s.record(tx, actorID, applicationID, eventType, payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) record(tx *gorm.DB, actorID, applicationID uint, eventType workflow.EventType, payload map[string]any, out **models.ApplicationEvent) error {
	var app models.Application
	if err := tx.First(&app, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("application not found")
		}
		return err
	}
	if target, ok := eventType.TargetStage(); ok && target != app.Stage {
		if !workflow.CanTransition(app.Stage, target) {
			return apperrors.Validation(
				fmt.Sprintf("illegal stage transition from %s to %s", app.Stage, target), nil)
		}
		if err := tx.Model(&app).Update("stage", target).Error; err != nil {
			return err
		}
	}
	event := &models.ApplicationEvent{
		ID:            uuid.NewString(),
		ActorID:       actorID,
		ApplicationID: applicationID,
		Type:          eventType,
		Payload:       payload,
	}
	if err := tx.Create(event).Error; err != nil {
		return err
	}
	*out = event
	return nil
}

// ListByApplication returns an application's event feed in timestamp order.
func (s *EventService) ListByApplication(ctx context.Context, applicationID uint) ([]models.ApplicationEvent, error) {
	var app models.Application
	if err := s.DB.WithContext(ctx).First(&app, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("application not found")
		}
		return nil, apperrors.Storage("load application failed", err)
	}
	var events []models.ApplicationEvent
	err := s.DB.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at").
		Find(&events).Error
	if err != nil {
		s.Log.Error("event storage failure", "op", "list events", "err", err)
		return nil, apperrors.Storage("list events failed", err)
	}
	return events, nil
}
