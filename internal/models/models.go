package models

import (
	"time"

	"github.com/hackcampus/apply-backend/internal/workflow"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:'applicant'" json:"role"`
}

const (
	RoleApplicant = "applicant"
	RoleMatcher   = "matcher"
)

// Application is the per-user internship application. Exactly one row per
// user; created lazily on the first write and never deleted. All personal
// fields are pointers so an unanswered field stays NULL rather than "".
type Application struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UserID uint           `gorm:"uniqueIndex;not null" json:"userId"`
	Stage  workflow.Stage `gorm:"type:varchar(32);not null;default:'unfinished'" json:"stage"`

	FirstName           *string   `json:"firstName"`
	LastName            *string   `json:"lastName"`
	Gender              *string   `json:"gender"`
	DateOfBirth         *DateOnly `gorm:"type:date" json:"dateOfBirth"`
	University          *string   `json:"university"`
	OtherUniversity     *string   `json:"otherUniversity"`
	Course              *string   `json:"course"`
	CourseYear          *string   `json:"courseYear"`
	OtherCourseYear     *string   `json:"otherCourseYear"`
	GraduationYear      *string   `json:"graduationYear"`
	OtherGraduationYear *string   `json:"otherGraduationYear"`

	// Null while in progress; stamped by the finish transition.
	FinishedAt *time.Time `json:"finishedAt"`

	TechPreferences []TechPreference   `json:"-"`
	Events          []ApplicationEvent `json:"-"`
}

// Field pairs a wire-format field name with whether it holds an answer.
type Field struct {
	Name    string
	Present bool
}

// Fields returns the answerable fields by wire name, in a stable order, for
// completeness checking. Bookkeeping columns (id, userId, stage, timestamps)
// are not answers and are not included.
func (a *Application) Fields() []Field {
	return []Field{
		{"firstName", strPresent(a.FirstName)},
		{"lastName", strPresent(a.LastName)},
		{"gender", strPresent(a.Gender)},
		{"dateOfBirth", a.DateOfBirth != nil},
		{"university", strPresent(a.University)},
		{"otherUniversity", strPresent(a.OtherUniversity)},
		{"course", strPresent(a.Course)},
		{"courseYear", strPresent(a.CourseYear)},
		{"otherCourseYear", strPresent(a.OtherCourseYear)},
		{"graduationYear", strPresent(a.GraduationYear)},
		{"otherGraduationYear", strPresent(a.OtherGraduationYear)},
	}
}

// OptionalFields exempts the free-text "other" overrides from completeness
// checks: they only matter when the paired enum field is set to "other".
var OptionalFields = map[string]bool{
	"otherUniversity":     true,
	"otherCourseYear":     true,
	"otherGraduationYear": true,
}

func strPresent(s *string) bool { return s != nil && *s != "" }

// TechPreference is one (application, technology) row holding the
// applicant's strength of interest. At most one row per pair, enforced by
// the composite unique index; writes go through upserts.
type TechPreference struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	ApplicationID uint   `gorm:"uniqueIndex:idx_application_technology;not null" json:"-"`
	Technology    string `gorm:"uniqueIndex:idx_application_technology;not null" json:"technology"`
	Preference    int    `gorm:"check:preference >= 0 AND preference <= 3" json:"preference"`
}

// ApplicationEvent is one immutable audit record of a workflow action.
// Rows are append-only; nothing in this codebase updates or deletes them.
type ApplicationEvent struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"timestamp"`

	ActorID       uint               `gorm:"not null" json:"actorId"`
	ApplicationID uint               `gorm:"index;not null" json:"applicationId"`
	Type          workflow.EventType `gorm:"type:varchar(64);not null" json:"type"`
	Payload       JSONMap            `gorm:"type:jsonb" json:"payload"`
}

type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Website     string `json:"website"`
}

// CompanyPreference holds an applicant's ranked company choices for the
// matching round. One row per application, overwritten on resubmission.
type CompanyPreference struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ApplicationID uint   `gorm:"uniqueIndex;not null" json:"applicationId"`
	FirstChoice   string `json:"firstChoice"`
	SecondChoice  string `json:"secondChoice"`
	ThirdChoice   string `json:"thirdChoice"`
	Comment       string `gorm:"type:text" json:"comment"`
}
