package domain

import "testing"

func TestNormalizeViolationType(t *testing.T) {
	cases := map[string]ViolationType{
		"Academic":             ViolationAcademicMisconduct,
		"Attendance":           ViolationAttendance,
		"attendance ":          ViolationAttendance,
		"Property Damage":      ViolationPropertyDamage,
		"behavioral issue":     ViolationBehavioral,
		"Dress Code Violation": ViolationDressCode,
		"Academic Misconduct":  ViolationAcademicMisconduct,
		"Other":                ViolationOther,
		"":                     ViolationOther,
		"Tardiness":            ViolationOther,
		"Misconduct":           ViolationOther,
	}
	for input, want := range cases {
		if got := NormalizeViolationType(input); got != want {
			t.Fatalf("NormalizeViolationType(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeViolationTypeIsTotal(t *testing.T) {
	for _, input := range []string{"x", "123", "Acad", "Attendance Issue Issue", "\x00"} {
		if got := NormalizeViolationType(input); !got.Valid() {
			t.Fatalf("NormalizeViolationType(%q) returned non-member %q", input, got)
		}
	}
}

func TestViolationTypesHasSixMembers(t *testing.T) {
	types := ViolationTypes()
	if len(types) != 6 {
		t.Fatalf("expected 6 violation types, got %d", len(types))
	}
	types[0] = "mutated"
	if ViolationTypes()[0] != ViolationOther {
		t.Fatalf("ViolationTypes must return a copy")
	}
}
