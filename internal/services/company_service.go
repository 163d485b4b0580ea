package services

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/hackcampus/apply-backend/internal/apperrors"
	"github.com/hackcampus/apply-backend/internal/dtos"
	"github.com/hackcampus/apply-backend/internal/models"
	"github.com/hackcampus/apply-backend/internal/workflow"
)

type CompanyService struct {
	DB     *gorm.DB
	Events *EventService
	Log    *slog.Logger
}

func NewCompanyService(db *gorm.DB, events *EventService, log *slog.Logger) *CompanyService {
	return &CompanyService{DB: db, Events: events, Log: log}
}

func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := s.DB.WithContext(ctx).Order("name").Find(&companies).Error; err != nil {
		s.Log.Error("company storage failure", "op", "list companies", "err", err)
		return nil, apperrors.Storage("list companies failed", err)
	}
	return companies, nil
}

func (s *CompanyService) Create(ctx context.Context, name, description, website string) (*models.Company, error) {
	company := &models.Company{Name: name, Description: description, Website: website}
	if err := s.DB.WithContext(ctx).Create(company).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.Conflict("company already exists", "companyTaken", err)
		}
		s.Log.Error("company storage failure", "op", "create company", "err", err)
		return nil, apperrors.Storage("create company failed", err)
	}
	return company, nil
}

// SubmitPreferences upserts the applicant's ranked company choices and
// appends a gaveCompanyPreferences event in the same transaction, moving a
// vetted applicant into readyToMatch.
func (s *CompanyService) SubmitPreferences(ctx context.Context, userID uint, req dtos.CompanyPreferencesRequest) (*models.CompanyPreference, error) {
	var app models.Application
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Precondition("no application to attach preferences to")
	}
	if err != nil {
		return nil, apperrors.Storage("load application failed", err)
	}

	var pref models.CompanyPreference
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("application_id = ?", app.ID).First(&pref).Error
		switch {
		case err == nil:
			pref.FirstChoice = req.FirstChoice
			pref.SecondChoice = req.SecondChoice
			pref.ThirdChoice = req.ThirdChoice
			pref.Comment = req.Comment
			if err := tx.Save(&pref).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			pref = models.CompanyPreference{
				ApplicationID: app.ID,
				FirstChoice:   req.FirstChoice,
				SecondChoice:  req.SecondChoice,
				ThirdChoice:   req.ThirdChoice,
				Comment:       req.Comment,
			}
			if err := tx.Create(&pref).Error; err != nil {
				return err
			}
		default:
			return err
		}
		_, err = s.Events.RecordInTx(tx, userID, app.ID, workflow.EventGaveCompanyPreferences, map[string]any{
			"firstChoice":  req.FirstChoice,
			"secondChoice": req.SecondChoice,
			"thirdChoice":  req.ThirdChoice,
		})
		return err
	})
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		s.Log.Error("company storage failure", "op", "submit preferences", "err", err)
		return nil, apperrors.Storage("submit preferences failed", err)
	}
	return &pref, nil
}
