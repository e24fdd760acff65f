// Copyright 2020 Qiniu Cloud (qiniu.com)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schedule

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/qiniu/x/xlog"
	"github.com/tidwall/gjson"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

func TestNormalizeSlots(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{`["10:00","09:00","09:00:00","bad"]`, []string{"09:00", "10:00"}},
		{`[{"time":"09:30","available":true},{"time":"10:00","available":false},{"startTime":"11:00:00"}]`, []string{"09:30", "11:00"}},
		{`[1, null, {"foo":"bar"}, "9:00"]`, []string{"09:00"}},
		{`[]`, []string{}},
	}
	for _, tc := range cases {
		got := NormalizeSlots(gjson.Parse(tc.raw))
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("NormalizeSlots(%s) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestReconcileSelection(t *testing.T) {
	slots := []string{"09:00", "09:30"}
	if got := ReconcileSelection("09:30:00", slots); got != "09:30" {
		t.Errorf("kept selection = %q", got)
	}
	if got := ReconcileSelection("10:00", slots); got != "" {
		t.Errorf("stale selection = %q", got)
	}
	if got := ReconcileSelection("", slots); got != "" {
		t.Errorf("empty selection = %q", got)
	}
}

func TestDefaultSlots(t *testing.T) {
	got := DefaultSlots(30)
	want := []string{
		"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30",
		"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DefaultSlots(30) = %v", got)
	}
	got = DefaultSlots(60)
	for _, s := range got {
		if s == "12:30" || s == "13:00" || s == "16:30" {
			t.Errorf("DefaultSlots(60) contains %s", s)
		}
	}
	if got[len(got)-1] != "16:00" {
		t.Errorf("last slot = %s", got[len(got)-1])
	}
}

func TestGenerateSlots(t *testing.T) {
	// 2025-03-10 是星期一
	schedules := []model.InterviewerSchedule{
		{DayOfWeek: model.Monday, StartTime: "09:00", EndTime: "11:00", ScheduleType: model.ScheduleTypeRecurring, IsActive: true},
		{DayOfWeek: model.Tuesday, StartTime: "15:00", EndTime: "17:00", ScheduleType: model.ScheduleTypeRecurring, IsActive: true},
		{SpecificDate: "2025-03-10", StartTime: "15:00", EndTime: "16:00", ScheduleType: model.ScheduleTypeSpecificDate, IsActive: true},
		{DayOfWeek: model.Monday, StartTime: "18:00", EndTime: "19:00", ScheduleType: model.ScheduleTypeRecurring, IsActive: false},
	}
	taken := []model.Interview{
		{Status: model.InterviewStatusConfirmed, ScheduledDate: "2025-03-10", ScheduledTime: "09:30", Duration: 30},
		{Status: model.InterviewStatusCancelled, ScheduledDate: "2025-03-10", ScheduledTime: "10:00", Duration: 60},
	}
	slots := GenerateSlots(schedules, "2025-03-10", 60, taken)
	got := make([]string, 0)
	for _, s := range slots {
		got = append(got, fmt.Sprintf("%s-%s:%v", s.Time, s.EndTime, s.Available))
	}
	want := []string{"09:00-10:00:false", "09:30-10:30:false", "10:00-11:00:true", "15:00-16:00:true"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GenerateSlots = %v, want %v", got, want)
	}
	if clocks := AvailableClocks(slots); !reflect.DeepEqual(clocks, []string{"10:00", "15:00"}) {
		t.Errorf("AvailableClocks = %v", clocks)
	}

	exception := append(schedules, model.InterviewerSchedule{
		SpecificDate: "2025-03-10", ScheduleType: model.ScheduleTypeException, IsActive: true,
	})
	if slots := GenerateSlots(exception, "2025-03-10", 60, nil); len(slots) != 0 {
		t.Errorf("full-day exception slots = %v", slots)
	}
	if slots := GenerateSlots(schedules, "not a date", 60, nil); len(slots) != 0 {
		t.Errorf("bad date slots = %v", slots)
	}
}

func TestWeeklySummary(t *testing.T) {
	summary := WeeklySummary([]model.InterviewerSchedule{
		{DayOfWeek: model.Wednesday, StartTime: "14:00", EndTime: "15:30", ScheduleType: model.ScheduleTypeRecurring, IsActive: true},
		{DayOfWeek: model.Monday, StartTime: "11:00", EndTime: "12:00", ScheduleType: model.ScheduleTypeRecurring, IsActive: true},
		{DayOfWeek: model.Monday, StartTime: "09:00", EndTime: "10:00", ScheduleType: model.ScheduleTypeRecurring, IsActive: true},
		{SpecificDate: "2025-03-10", StartTime: "09:00", EndTime: "10:00", ScheduleType: model.ScheduleTypeSpecificDate, IsActive: true},
	})
	if len(summary) != 2 || summary[0].Day != model.Monday || summary[1].Day != model.Wednesday {
		t.Fatalf("summary = %+v", summary)
	}
	if summary[0].Minutes != 120 || summary[0].Blocks[0].StartTime != "09:00" || summary[0].Label != "Lunes" {
		t.Errorf("monday = %+v", summary[0])
	}
	if summary[1].Minutes != 90 {
		t.Errorf("wednesday minutes = %d", summary[1].Minutes)
	}
}

type fakeSlots struct {
	raw string
	err error
}

func (f fakeSlots) AvailableSlots(ctx context.Context, xl *xlog.Logger, interviewerID, date string, duration int) (gjson.Result, error) {
	return gjson.Parse(f.raw), f.err
}

func TestServiceDaySlots(t *testing.T) {
	s := NewService(fakeSlots{raw: `["10:00",{"time":"09:00"}]`}, nil, nil)
	day := s.DaySlots(context.Background(), nil, "7", "2025-03-10", 45)
	if day.Fallback || len(day.Slots) != 2 || day.Slots[0].Time != "09:00" || day.Slots[0].EndTime != "09:45" {
		t.Errorf("day = %+v", day)
	}

	s = NewService(fakeSlots{err: fmt.Errorf("connection refused")}, nil, nil)
	day = s.DaySlots(context.Background(), nil, "7", "2025-03-10", 30)
	if !day.Fallback || len(day.Slots) != len(DefaultSlots(30)) {
		t.Errorf("fallback day = %+v", day)
	}
}
