package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/hackcampus/apply-backend/internal/apperrors"
	"github.com/hackcampus/apply-backend/internal/models"
	"github.com/hackcampus/apply-backend/internal/workflow"
)

type ApplicationService struct {
	DB  *gorm.DB
	Log *slog.Logger
}

func NewApplicationService(db *gorm.DB, log *slog.Logger) *ApplicationService {
	return &ApplicationService{DB: db, Log: log}
}

// UpdateApplication applies a partial field patch to the user's application,
// creating the row first if this is the user's first write. The unique
// constraint on user_id plus one retry closes the race where two first
// writes for the same user arrive concurrently.
func (s *ApplicationService) UpdateApplication(ctx context.Context, userID uint, patch map[string]any) (*models.Application, error) {
	var app models.Application
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		app = models.Application{}
		err = s.DB.WithContext(ctx).Where(models.Application{UserID: userID}).FirstOrCreate(&app).Error
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		// lost the create race; the row exists now, refetch
	}
	if err != nil {
		return nil, s.storage("load or create application", err)
	}
	if len(patch) == 0 {
		return &app, nil
	}
	if err := s.DB.WithContext(ctx).Model(&app).Updates(patch).Error; err != nil {
		return nil, s.storage("update application", err)
	}
	if err := s.DB.WithContext(ctx).First(&app, app.ID).Error; err != nil {
		return nil, s.storage("reload application", err)
	}
	return &app, nil
}

// Completeness is the result of checking an application for unanswered
// required fields.
type Completeness struct {
	Finished bool     `json:"finished"`
	Missing  []string `json:"errors"`
}

// VerifyFinished reports whether every required field holds an answer.
// Computed from present data on demand, never stored, so it cannot go stale.
func VerifyFinished(app *models.Application) Completeness {
	missing := []string{}
	for _, field := range app.Fields() {
		if !field.Present && !models.OptionalFields[field.Name] {
			missing = append(missing, field.Name)
		}
	}
	return Completeness{Finished: len(missing) == 0, Missing: missing}
}

// FinishApplication stamps finishedAt and moves the applicant out of the
// unfinished stage. Completeness is re-checked at the moment of transition;
// a repeated finish just overwrites the timestamp.
func (s *ApplicationService) FinishApplication(ctx context.Context, app *models.Application) (*models.Application, error) {
	if check := VerifyFinished(app); !check.Finished {
		return nil, apperrors.Validation("application is incomplete", check.Missing)
	}
	updates := map[string]any{"finished_at": time.Now().UTC()}
	if app.Stage == workflow.StageUnfinished {
		updates["stage"] = workflow.StageFinished
	}
	if err := s.DB.WithContext(ctx).Model(app).Updates(updates).Error; err != nil {
		return nil, s.storage("finish application", err)
	}
	if err := s.DB.WithContext(ctx).First(app, app.ID).Error; err != nil {
		return nil, s.storage("reload application", err)
	}
	return app, nil
}

// GetByUserID loads a user's application.
func (s *ApplicationService) GetByUserID(ctx context.Context, userID uint) (*models.Application, error) {
	var app models.Application
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("no application for this user")
	}
	if err != nil {
		return nil, s.storage("load application", err)
	}
	return &app, nil
}

// ListByStage returns applications for the staff views, optionally filtered
// by pipeline stage.
func (s *ApplicationService) ListByStage(ctx context.Context, stage workflow.Stage) ([]models.Application, error) {
	query := s.DB.WithContext(ctx).Order("created_at")
	if stage != "" {
		if !stage.Known() {
			return nil, apperrors.Validation("unknown stage", []string{"stage"})
		}
		query = query.Where("stage = ?", stage)
	}
	var apps []models.Application
	if err := query.Find(&apps).Error; err != nil {
		return nil, s.storage("list applications", err)
	}
	return apps, nil
}

// UpdateTechPreferences upserts the given technology→preference pairs in a
// single transaction and returns the full preference map re-read after the
// write. Any failure rolls the whole batch back.
func (s *ApplicationService) UpdateTechPreferences(ctx context.Context, userID uint, prefs map[string]int) (map[string]int, error) {
	app, err := s.GetByUserID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return nil, apperrors.Precondition("no application to attach preferences to")
		}
		return nil, err
	}

	technologies := make([]string, 0, len(prefs))
	for technology := range prefs {
		technologies = append(technologies, technology)
	}
	sort.Strings(technologies)

	var result map[string]int
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, technology := range technologies {
			if err := upsertTechPreference(tx, app.ID, technology, prefs[technology]); err != nil {
				return err
			}
		}
		var err error
		result, err = techPreferenceMap(tx, app.ID)
		return err
	})
	if err != nil {
		return nil, s.storage("write tech preferences", err)
	}
	return result, nil
}

// TechPreferences returns the full preference map for an application.
func (s *ApplicationService) TechPreferences(ctx context.Context, applicationID uint) (map[string]int, error) {
	prefs, err := techPreferenceMap(s.DB.WithContext(ctx), applicationID)
	if err != nil {
		return nil, s.storage("load tech preferences", err)
	}
	return prefs, nil
}

// upsertTechPreference is a fetch-then-update-or-insert, not a blind insert,
// so repeated submissions never grow duplicate rows.
func upsertTechPreference(tx *gorm.DB, applicationID uint, technology string, preference int) error {
	var row models.TechPreference
	err := tx.Where("application_id = ? AND technology = ?", applicationID, technology).First(&row).Error
	switch {
	case err == nil:
		return tx.Model(&row).Update("preference", preference).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tx.Create(&models.TechPreference{
			ApplicationID: applicationID,
			Technology:    technology,
			Preference:    preference,
		}).Error
	default:
		return err
	}
}

func techPreferenceMap(tx *gorm.DB, applicationID uint) (map[string]int, error) {
	var rows []models.TechPreference
	if err := tx.Where("application_id = ?", applicationID).Find(&rows).Error; err != nil {
		return nil, err
	}
	prefs := make(map[string]int, len(rows))
	for _, row := range rows {
		prefs[row.Technology] = row.Preference
	}
	return prefs, nil
}

func (s *ApplicationService) storage(op string, err error) error {
	s.Log.Error("application storage failure", "op", op, "err", err)
	return apperrors.Storage(op+" failed", err)
}
