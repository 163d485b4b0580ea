package dtos

// ApplicationUpdateRequest is the PUT /me/application body. Every field is
// optional; nil means "not part of this patch". Unknown JSON keys are
// ignored, matching the pass-through behavior of the update layer.
type ApplicationUpdateRequest struct {
	// Finished marks a submit attempt. It is stripped before the patch is
	// applied and triggers the completeness check + finish transition.
	Finished bool `json:"finished"`

	FirstName           *string `json:"firstName"`
	LastName            *string `json:"lastName"`
	Gender              *string `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth         *string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	University          *string `json:"university"`
	OtherUniversity     *string `json:"otherUniversity"`
	Course              *string `json:"course"`
	CourseYear          *string `json:"courseYear" binding:"omitempty,oneof=1 2 3 4 5 other"`
	OtherCourseYear     *string `json:"otherCourseYear"`
	GraduationYear      *string `json:"graduationYear" binding:"omitempty,max=16"`
	OtherGraduationYear *string `json:"otherGraduationYear"`
}

// Patch converts the request into a column map holding only the fields that
// were actually sent. An empty map means "create the row, change nothing".
func (r *ApplicationUpdateRequest) Patch() map[string]any {
	patch := map[string]any{}
	set := func(column string, value *string) {
		if value != nil {
			patch[column] = *value
		}
	}
	set("first_name", r.FirstName)
	set("last_name", r.LastName)
	set("gender", r.Gender)
	set("date_of_birth", r.DateOfBirth)
	set("university", r.University)
	set("other_university", r.OtherUniversity)
	set("course", r.Course)
	set("course_year", r.CourseYear)
	set("other_course_year", r.OtherCourseYear)
	set("graduation_year", r.GraduationYear)
	set("other_graduation_year", r.OtherGraduationYear)
	return patch
}

type CompanyPreferencesRequest struct {
	FirstChoice  string `json:"firstChoice" binding:"required"`
	SecondChoice string `json:"secondChoice"`
	ThirdChoice  string `json:"thirdChoice"`
	Comment      string `json:"comment"`
}

type EventRequest struct {
	Type    string         `json:"type" binding:"required"`
	Payload map[string]any `json:"payload"`
}
