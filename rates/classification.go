/*
classification.go - Role-specific classification keys

PURPOSE:
  The classification dimension of the rate table means different things per
  role: pharmacists carry an award level, interns a half, students a year,
  assistants and technicians a shared level vocabulary. Each role variant
  implements the ClassificationSource capability interface; the variant is
  selected by the shift's role, never by runtime attribute probing.

DEFAULTS:
  An unset classification resolves to the most junior key for the role (the
  default award for pharmacists), so a worker with an incomplete onboarding
  profile still resolves to a rate.
*/
package rates

import "github.com/locumbase/shift-engine/shifts"

// ClassificationSource yields the classification key for the rate-table
// lookup. Implemented per role variant.
type ClassificationSource interface {
	ClassificationKey() string
}

// PharmacistClassification comes from the membership record's award level.
type PharmacistClassification struct {
	AwardLevel string
}

func (p PharmacistClassification) ClassificationKey() string {
	if p.AwardLevel == "" {
		return DefaultAwardLevel
	}
	return p.AwardLevel
}

// InternClassification comes from the intern onboarding profile.
type InternClassification struct {
	InternHalf string
}

func (i InternClassification) ClassificationKey() string {
	if i.InternHalf == "" {
		return DefaultInternHalf
	}
	return i.InternHalf
}

// StudentClassification comes from the student onboarding profile.
type StudentClassification struct {
	StudentYear string
}

func (s StudentClassification) ClassificationKey() string {
	if s.StudentYear == "" {
		return DefaultStudentYear
	}
	return s.StudentYear
}

// StaffClassification covers assistants and technicians, which share one
// level vocabulary.
type StaffClassification struct {
	Level string
}

func (s StaffClassification) ClassificationKey() string {
	if s.Level == "" {
		return DefaultStaffLevel
	}
	return s.Level
}

// WorkerProfile is the slice of the onboarding/classification records the
// resolver consumes. Only the field matching the shift's role is read.
type WorkerProfile struct {
	AwardLevel          string
	InternHalf          string
	StudentYear         string
	ClassificationLevel string
}

// SourceFor selects the classification variant for a role.
func (p WorkerProfile) SourceFor(role shifts.Role) ClassificationSource {
	switch role {
	case shifts.RolePharmacist:
		return PharmacistClassification{AwardLevel: p.AwardLevel}
	case shifts.RoleIntern:
		return InternClassification{InternHalf: p.InternHalf}
	case shifts.RoleStudent:
		return StudentClassification{StudentYear: p.StudentYear}
	default:
		return StaffClassification{Level: p.ClassificationLevel}
	}
}
