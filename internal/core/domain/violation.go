package domain

import "strings"

type ViolationType string

const (
	ViolationOther              ViolationType = "Other"
	ViolationBehavioral         ViolationType = "Behavioral Issue"
	ViolationDressCode          ViolationType = "Dress Code Violation"
	ViolationAcademicMisconduct ViolationType = "Academic Misconduct"
	ViolationPropertyDamage     ViolationType = "Property Damage"
	ViolationAttendance         ViolationType = "Attendance Issue"
)

var violationTypes = []ViolationType{
	ViolationOther,
	ViolationBehavioral,
	ViolationDressCode,
	ViolationAcademicMisconduct,
	ViolationPropertyDamage,
	ViolationAttendance,
}

// legacy category names written by older clients
var legacyViolationTypes = map[string]ViolationType{
	"academic":   ViolationAcademicMisconduct,
	"attendance": ViolationAttendance,
}

func ViolationTypes() []ViolationType {
	out := make([]ViolationType, len(violationTypes))
	copy(out, violationTypes)
	return out
}

func (v ViolationType) Valid() bool {
	for _, known := range violationTypes {
		if v == known {
			return true
		}
	}
	return false
}

// NormalizeViolationType maps any category string onto the closed set. Unknown input becomes Other.
func NormalizeViolationType(raw string) ViolationType {
	trimmed := strings.TrimSpace(raw)
	for _, known := range violationTypes {
		if strings.EqualFold(trimmed, string(known)) {
			return known
		}
	}
	if mapped, ok := legacyViolationTypes[strings.ToLower(trimmed)]; ok {
		return mapped
	}
	return ViolationOther
}
