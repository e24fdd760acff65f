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

package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/cloud/admission"
)

func TestGridRange(t *testing.T) {
	cases := []struct {
		year     int
		month    time.Month
		from, to string
	}{
		// 2025-03-01 是星期六
		{2025, time.March, "2025-02-24", "2025-04-06"},
		// 2021-02-01 是星期一，2021-02-28 是星期日
		{2021, time.February, "2021-02-01", "2021-02-28"},
		{2024, time.December, "2024-11-25", "2025-01-05"},
	}
	for _, tc := range cases {
		from, to := GridRange(tc.year, tc.month)
		if got := from.Format(model.DateLayout); got != tc.from {
			t.Errorf("%d-%d from = %s, want %s", tc.year, tc.month, got, tc.from)
		}
		if got := to.Format(model.DateLayout); got != tc.to {
			t.Errorf("%d-%d to = %s, want %s", tc.year, tc.month, got, tc.to)
		}
	}
}

func TestMonthGrid(t *testing.T) {
	interviews := []model.Interview{
		{ID: "b", ScheduledDate: "2025-03-10", ScheduledTime: "15:00"},
		{ID: "a", ScheduledDate: "2025-03-10", ScheduledTime: "09:30:00"},
		{ID: "c", ScheduledDate: "2025-02-24", ScheduledTime: "10:00"},
		{ID: "d", ScheduledDate: ""},
	}
	today := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	m := MonthGrid(2025, time.March, interviews, today)

	if m.Title != "marzo 2025" {
		t.Errorf("title = %q", m.Title)
	}
	if len(m.Weeks) != 6 {
		t.Fatalf("weeks = %d", len(m.Weeks))
	}
	for i, w := range m.Weeks {
		if len(w) != 7 {
			t.Fatalf("week %d has %d days", i, len(w))
		}
		if d, _ := time.Parse(model.DateLayout, w[0].Date); d.Weekday() != time.Monday {
			t.Errorf("week %d starts on %s", i, d.Weekday())
		}
	}
	if m.Total != 2 {
		t.Errorf("total = %d, want 2 (days outside the month are not counted)", m.Total)
	}
	first := m.Weeks[0][0]
	if first.InMonth || len(first.Interviews) != 1 {
		t.Errorf("first day = %+v", first)
	}
	var day Day
	for _, w := range m.Weeks {
		for _, d := range w {
			if d.Date == "2025-03-10" {
				day = d
			}
		}
	}
	if !day.IsToday || !day.InMonth || day.IsWeekend {
		t.Errorf("today flags = %+v", day)
	}
	if len(day.Interviews) != 2 || day.Interviews[0].ID != "a" {
		t.Errorf("interviews not sorted by time: %+v", day.Interviews)
	}
	if !m.Weeks[0][5].IsWeekend || !m.Weeks[0][6].IsWeekend {
		t.Errorf("weekend flags wrong")
	}
}

func TestWeekAndDayView(t *testing.T) {
	interviews := []model.Interview{
		{ID: "1", ScheduledDate: "2025-03-12", ScheduledTime: "10:15"},
		{ID: "2", ScheduledDate: "2025-03-12", ScheduledTime: "07:00"},
		{ID: "3", ScheduledDate: "2025-03-12", ScheduledTime: "20:00"},
	}
	anchor := time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC) // domingo
	week := WeekView(anchor, interviews, anchor)
	if len(week) != 7 || week[0].Date != "2025-03-10" || week[6].Date != "2025-03-16" {
		t.Fatalf("week = %+v", week)
	}
	if len(week[2].Interviews) != 3 || !week[6].IsToday {
		t.Errorf("week days = %+v", week)
	}

	rows := DayView("2025-03-12", interviews, 8, 18)
	if len(rows) != 10 || rows[0].Hour != "08:00" {
		t.Fatalf("rows = %+v", rows)
	}
	if len(rows[0].Interviews) != 1 || rows[0].Interviews[0].ID != "2" {
		t.Errorf("early interview row = %+v", rows[0])
	}
	if len(rows[2].Interviews) != 1 || rows[2].Interviews[0].ID != "1" {
		t.Errorf("10:00 row = %+v", rows[2])
	}
	if len(rows[9].Interviews) != 1 || rows[9].Interviews[0].ID != "3" {
		t.Errorf("late interview row = %+v", rows[9])
	}
	if rows := DayView("2025-03-12", interviews, 10, 10); len(rows) != 0 {
		t.Errorf("empty range rows = %+v", rows)
	}
}

type fakeBackend struct {
	interview   model.Interview
	available   bool
	checkErr    error
	rescheduled []string
	updated     []model.Interview
	commitErr   error
}

func (f *fakeBackend) Get(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error) {
	if id != f.interview.ID {
		return nil, admission.NewStatusCodeError(404, "not found")
	}
	i := f.interview
	return &i, nil
}

func (f *fakeBackend) CheckAvailability(ctx context.Context, xl *xlog.Logger, interviewerID, date, clock string, duration int, excludeID string) (bool, error) {
	return f.available, f.checkErr
}

func (f *fakeBackend) Reschedule(ctx context.Context, xl *xlog.Logger, id, newDate, newTime, reason string) (*model.Interview, error) {
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	f.rescheduled = append(f.rescheduled, newDate+" "+newTime)
	i := f.interview
	i.ScheduledDate, i.ScheduledTime, i.Status = newDate, newTime, model.InterviewStatusRescheduled
	return &i, nil
}

func (f *fakeBackend) Update(ctx context.Context, xl *xlog.Logger, id string, in model.Interview) (*model.Interview, error) {
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	f.updated = append(f.updated, in)
	return &model.Interview{ID: id}, nil
}

func TestReschedulerPlan(t *testing.T) {
	backend := &fakeBackend{
		interview: model.Interview{ID: "1", InterviewerID: "7", Status: model.InterviewStatusConfirmed,
			ScheduledDate: "2025-03-10", ScheduledTime: "09:00", Duration: 60},
		available: true,
	}
	r := NewRescheduler(backend, time.UTC)
	known := []model.Interview{
		backend.interview,
		{ID: "2", InterviewerID: "7", Status: model.InterviewStatusScheduled, ScheduledDate: "2025-03-11", ScheduledTime: "10:30", Duration: 60},
		{ID: "3", InterviewerID: "8", Status: model.InterviewStatusScheduled, ScheduledDate: "2025-03-11", ScheduledTime: "10:00"},
		{ID: "4", InterviewerID: "7", Status: model.InterviewStatusCancelled, ScheduledDate: "2025-03-11", ScheduledTime: "10:00"},
		{ID: "5", InterviewerID: "9", SecondInterviewerID: "7", Status: model.InterviewStatusScheduled, ScheduledDate: "2025-03-11", ScheduledTime: "09:30", Duration: 45},
		{ID: "6", InterviewerID: "7", Status: model.InterviewStatusScheduled, ScheduledDate: "2025-03-11", ScheduledTime: "11:00"},
	}
	p, err := r.Plan(context.Background(), nil, Drop{InterviewID: "1", NewDate: "2025-03-11", NewTime: "10:00", Known: known})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !p.Checked || !p.Available {
		t.Errorf("availability = %v/%v", p.Checked, p.Available)
	}
	if len(p.Conflicts) != 2 || p.Conflicts[0].ID != "5" || p.Conflicts[1].ID != "2" {
		t.Errorf("conflicts = %+v", p.Conflicts)
	}
	if p.Message == "" {
		t.Errorf("expected conflict message")
	}

	// 只改日期时保留原来的时间
	p, err = r.Plan(context.Background(), nil, Drop{InterviewID: "1", NewDate: "2025-03-12"})
	if err != nil || p.NewTime != "09:00" || len(p.Conflicts) != 0 {
		t.Errorf("date-only plan = %+v, %v", p, err)
	}

	if _, err := r.Plan(context.Background(), nil, Drop{InterviewID: "1", NewDate: "2025-03-10", NewTime: "09:00"}); err != ErrSameSlot {
		t.Errorf("same slot err = %v", err)
	}

	backend.checkErr = errors.New("timeout")
	p, err = r.Plan(context.Background(), nil, Drop{InterviewID: "1", NewDate: "2025-03-12"})
	if err != nil || p.Checked {
		t.Errorf("plan with failed check = %+v, %v", p, err)
	}

	backend.interview.Status = model.InterviewStatusCompleted
	if _, err := r.Plan(context.Background(), nil, Drop{InterviewID: "1", NewDate: "2025-03-12"}); err == nil {
		t.Errorf("completed interview should not be rescheduled")
	}
}

func TestReschedulerCommit(t *testing.T) {
	backend := &fakeBackend{
		interview: model.Interview{ID: "1", InterviewerID: "7", Status: model.InterviewStatusScheduled,
			ScheduledDate: "2025-03-10", ScheduledTime: "09:00"},
	}
	r := NewRescheduler(backend, time.UTC)
	p := &Proposal{Interview: backend.interview, NewDate: "2025-03-11", NewTime: "10:00"}

	updated, err := r.Commit(context.Background(), nil, p)
	if err != nil || updated.Status != model.InterviewStatusRescheduled || len(backend.rescheduled) != 1 {
		t.Fatalf("commit = %+v, %v", updated, err)
	}

	pending := &Proposal{Interview: model.Interview{ID: "1", Status: model.InterviewStatusPending}, NewDate: "2025-03-11", NewTime: "10:00"}
	updated, err = r.Commit(context.Background(), nil, pending)
	if err != nil || len(backend.updated) != 1 || updated.ScheduledDate != "2025-03-11" {
		t.Errorf("pending commit = %+v, %v", updated, err)
	}

	backend.commitErr = errors.Wrap(admission.NewStatusCodeError(409, "slot taken"), "reschedule interview 1")
	_, err = r.Commit(context.Background(), nil, p)
	if !IsConflict(err) || err.Error() != model.ScheduleConflictMessage {
		t.Errorf("conflict err = %v", err)
	}

	backend.commitErr = admission.NewStatusCodeError(500, "boom")
	if _, err = r.Commit(context.Background(), nil, p); err == nil || IsConflict(err) {
		t.Errorf("server err = %v", err)
	}
}

func TestDropValidate(t *testing.T) {
	cases := []struct {
		drop Drop
		ok   bool
	}{
		{Drop{InterviewID: "1", NewDate: "2025-03-11", NewTime: "10:00"}, true},
		{Drop{InterviewID: "1", NewDate: "2025-03-11"}, true},
		{Drop{NewDate: "2025-03-11"}, false},
		{Drop{InterviewID: "1", NewDate: "11/03/2025"}, false},
		{Drop{InterviewID: "1", NewDate: "2025-03-11", NewTime: "25:00"}, false},
	}
	for i, tc := range cases {
		if err := tc.drop.Validate(); (err == nil) != tc.ok {
			t.Errorf("case %d: err = %v", i, err)
		}
	}
}
