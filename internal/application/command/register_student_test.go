package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

func TestRegisterStudent_DefaultsAndFirstAssessment(t *testing.T) {
	students := newFakeStudentRepo()
	assessments := newFakeAssessmentRepo()
	teachers := newFakeTeacherRepo(&student.Teacher{ID: "teacher-1", Code: "TCH-001", FullName: "Dana Seitkali"})
	bus := &fakeBus{}

	assess := NewAssessStudentHandler(students, assessments, nil, nil, nil)
	h := NewRegisterStudentHandler(students, teachers, assess, bus)

	res, err := h.Handle(context.Background(), RegisterStudentCommand{
		Code:      "STU-2026-0007",
		FullName:  "Aliya Nurlanova",
		Grade:     "9",
		Section:   "A",
		TeacherID: "teacher-1",
	})
	require.NoError(t, err)

	s := res.Student
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, student.DefaultMetrics(), s.Metrics)
	assert.Equal(t, "teacher-1", s.AssignedTeacherID)

	// First assessment ran immediately.
	require.NotNil(t, res.InitialAssessment)
	_, err = assessments.LatestForStudent(context.Background(), s.ID)
	assert.NoError(t, err)

	assert.Len(t, bus.byType(shared.EventStudentRegistered), 1)
}

func TestRegisterStudent_MetricOverrides(t *testing.T) {
	students := newFakeStudentRepo()
	h := NewRegisterStudentHandler(students, nil, nil, nil)

	cgpa := 4.2
	res, err := h.Handle(context.Background(), RegisterStudentCommand{
		Code:     "STU-2026-0008",
		FullName: "Dias Omarov",
		Metrics:  &student.MetricsUpdate{CGPA: &cgpa},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.2, res.Student.Metrics.CGPA)
}

func TestRegisterStudent_DuplicateCode(t *testing.T) {
	students := newFakeStudentRepo()
	h := NewRegisterStudentHandler(students, nil, nil, nil)

	cmd := RegisterStudentCommand{Code: "STU-2026-0009", FullName: "Aruzhan Bekova"}
	_, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), cmd)
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestRegisterStudent_UnknownTeacher(t *testing.T) {
	h := NewRegisterStudentHandler(newFakeStudentRepo(), newFakeTeacherRepo(), nil, nil)

	_, err := h.Handle(context.Background(), RegisterStudentCommand{
		Code:      "STU-2026-0010",
		FullName:  "Dias Omarov",
		TeacherID: "ghost",
	})
	assert.True(t, shared.IsNotFound(err))
}

func TestRegisterStudent_InvalidCode(t *testing.T) {
	h := NewRegisterStudentHandler(newFakeStudentRepo(), nil, nil, nil)

	_, err := h.Handle(context.Background(), RegisterStudentCommand{Code: "x", FullName: "Nobody"})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
