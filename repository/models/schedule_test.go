package models

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScheduleItemDerivedStates(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		name       string
		scheduled  time.Time
		status     string
		overdue    bool
		executable bool
	}{
		{"past and pending", day(2025, time.March, 5), ScheduleStatusScheduled, true, true},
		{"today", day(2025, time.March, 10), ScheduleStatusScheduled, false, true},
		{"future", day(2025, time.March, 20), ScheduleStatusScheduled, false, false},
		{"past but done", day(2025, time.March, 5), ScheduleStatusDone, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &ScheduleItem{ScheduledDate: tt.scheduled, Status: tt.status}
			if got := item.IsOverdue(now); got != tt.overdue {
				t.Errorf("IsOverdue = %v, want %v", got, tt.overdue)
			}
			if got := item.IsExecutable(now); got != tt.executable {
				t.Errorf("IsExecutable = %v, want %v", got, tt.executable)
			}
		})
	}
}

func TestScheduleItemIsUpcoming(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		scheduled time.Time
		status    string
		want      bool
	}{
		{"today", day(2025, time.March, 10), ScheduleStatusScheduled, true},
		{"window edge", day(2025, time.March, 17), ScheduleStatusScheduled, true},
		{"past window", day(2025, time.March, 18), ScheduleStatusScheduled, false},
		{"yesterday", day(2025, time.March, 9), ScheduleStatusScheduled, false},
		{"done", day(2025, time.March, 12), ScheduleStatusDone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &ScheduleItem{ScheduledDate: tt.scheduled, Status: tt.status}
			if got := item.IsUpcoming(now, 7); got != tt.want {
				t.Errorf("IsUpcoming = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScheduleItemStatusLabel(t *testing.T) {
	item := &ScheduleItem{Status: ScheduleStatusScheduled}
	if got := item.StatusLabel(); got != "Pending execution" {
		t.Errorf("StatusLabel = %q, want Pending execution", got)
	}

	item.Inspections = []InspectionRecord{{Status: InspectionStatusPendingSignatures}}
	if got := item.StatusLabel(); got != InspectionStatusPendingSignatures {
		t.Errorf("StatusLabel = %q, want %q", got, InspectionStatusPendingSignatures)
	}
	if got := item.StatusClass(); got != "warning" {
		t.Errorf("StatusClass = %q, want warning", got)
	}

	item.Inspections = []InspectionRecord{{Status: InspectionStatusClosedWithFindings}}
	if got := item.StatusClass(); got != "danger" {
		t.Errorf("StatusClass = %q, want danger", got)
	}
}

func TestInspectionRecordSignedBy(t *testing.T) {
	record := &InspectionRecord{
		Signatures: []Signature{{UserID: "USR-1"}, {UserID: "USR-2"}},
	}
	if !record.SignedBy("USR-1") {
		t.Error("SignedBy(USR-1) = false, want true")
	}
	if record.SignedBy("USR-3") {
		t.Error("SignedBy(USR-3) = true, want false")
	}
}

func TestUserHasPermission(t *testing.T) {
	grants := []RoleGrant{
		{RoleName: "Equipo SST", Module: "inspections", Action: "create"},
	}
	admin := &User{RoleName: "Administrador"}
	if !admin.HasPermission("anything", "delete", grants) {
		t.Error("administrator denied, want allowed")
	}
	sst := &User{RoleName: "Equipo SST"}
	if !sst.HasPermission("inspections", "create", grants) {
		t.Error("granted role denied, want allowed")
	}
	if sst.HasPermission("inspections", "delete", grants) {
		t.Error("ungranted action allowed, want denied")
	}
}
