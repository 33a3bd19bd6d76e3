package models

import "strings"

type EmployeeGrade string

const (
	EmployeeGradeStaff            EmployeeGrade = "Staff"
	EmployeeGradeSeniorStaff      EmployeeGrade = "Senior Staff"
	EmployeeGradeSupervisor       EmployeeGrade = "Supervisor"
	EmployeeGradeAssistantManager EmployeeGrade = "Assistant Manager"
	EmployeeGradeManager          EmployeeGrade = "Manager"
	EmployeeGradeSeniorManager    EmployeeGrade = "Senior Manager"
	EmployeeGradeDirector         EmployeeGrade = "Director"
)

var gradeAllowances = map[EmployeeGrade]int{
	EmployeeGradeStaff:            5,
	EmployeeGradeSeniorStaff:      8,
	EmployeeGradeSupervisor:       10,
	EmployeeGradeAssistantManager: 12,
	EmployeeGradeManager:          15,
	EmployeeGradeSeniorManager:    18,
	EmployeeGradeDirector:         20,
}

// Grades lists the known grades in ascending allowance order.
func Grades() []EmployeeGrade {
	return []EmployeeGrade{
		EmployeeGradeStaff,
		EmployeeGradeSeniorStaff,
		EmployeeGradeSupervisor,
		EmployeeGradeAssistantManager,
		EmployeeGradeManager,
		EmployeeGradeSeniorManager,
		EmployeeGradeDirector,
	}
}

// Allowance returns the monthly gallons for a known grade.
func (g EmployeeGrade) Allowance() (int, bool) {
	v, ok := gradeAllowances[EmployeeGrade(strings.TrimSpace(string(g)))]
	return v, ok
}

func (g EmployeeGrade) IsKnown() bool {
	_, ok := g.Allowance()
	return ok
}

type AdminRole string

const (
	AdminRoleAdmin  AdminRole = "A"
	AdminRoleViewer AdminRole = "V"
)

func (r AdminRole) IsValid() bool {
	return r == AdminRoleAdmin || r == AdminRoleViewer
}
