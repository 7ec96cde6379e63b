package middleware

import (
	"testing"

	"learnhub_go/models"
)

func user(id uint, role models.Role) *models.User {
	u := &models.User{Role: role}
	u.ID = id
	return u
}

func TestCanModifyCourse(t *testing.T) {
	owned := &models.Course{Teachers: []models.User{*user(10, models.RoleTeacher)}}
	other := &models.Course{Teachers: []models.User{*user(11, models.RoleTeacher)}}
	unassigned := &models.Course{}

	tests := []struct {
		name   string
		actor  *models.User
		course *models.Course
		want   bool
	}{
		{"admin any course", user(1, models.RoleAdmin), other, true},
		{"head any course", user(2, models.RoleHead), other, true},
		{"management any course", user(3, models.RoleManagement), other, true},
		{"teacher own course", user(10, models.RoleTeacher), owned, true},
		{"teacher foreign course", user(10, models.RoleTeacher), other, false},
		{"teacher unassigned course", user(10, models.RoleTeacher), unassigned, false},
		{"student never", user(20, models.RoleStudent), owned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanModifyCourse(tt.actor, tt.course); got != tt.want {
				t.Errorf("CanModifyCourse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanModifyMeeting(t *testing.T) {
	mine := &models.Meeting{CreatedByID: 10}
	theirs := &models.Meeting{CreatedByID: 11}

	tests := []struct {
		name    string
		actor   *models.User
		meeting *models.Meeting
		want    bool
	}{
		{"creator teacher", user(10, models.RoleTeacher), mine, true},
		{"other teacher", user(10, models.RoleTeacher), theirs, false},
		{"head any meeting", user(2, models.RoleHead), theirs, true},
		{"admin any meeting", user(1, models.RoleAdmin), theirs, true},
		{"student never", user(20, models.RoleStudent), mine, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanModifyMeeting(tt.actor, tt.meeting); got != tt.want {
				t.Errorf("CanModifyMeeting() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanModifyNotice(t *testing.T) {
	mine := &models.Notice{PostedByID: 10}
	theirs := &models.Notice{PostedByID: 11}

	tests := []struct {
		name   string
		actor  *models.User
		notice *models.Notice
		want   bool
	}{
		{"poster teacher", user(10, models.RoleTeacher), mine, true},
		{"other teacher", user(10, models.RoleTeacher), theirs, false},
		{"head any notice", user(2, models.RoleHead), theirs, true},
		{"student never", user(20, models.RoleStudent), mine, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanModifyNotice(tt.actor, tt.notice); got != tt.want {
				t.Errorf("CanModifyNotice() = %v, want %v", got, tt.want)
			}
		})
	}
}
