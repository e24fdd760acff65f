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

package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

func score(f float64) *float64 {
	return &f
}

var now = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func sample() []model.Interview {
	return []model.Interview{
		{ID: "1", Status: model.InterviewStatusCompleted, Type: model.InterviewTypeFamily, Mode: model.InterviewModeInPerson,
			InterviewerName: "Ana", ScheduledDate: "2025-03-01", ScheduledTime: "09:00", Score: score(8), FollowUpRequired: true},
		{ID: "2", Status: model.InterviewStatusCompleted, Type: model.InterviewTypeStudent, Mode: model.InterviewModeVirtual,
			InterviewerName: "Ana", ScheduledDate: "2025-03-02", ScheduledTime: "09:00", Score: score(7)},
		{ID: "3", Status: model.InterviewStatusCancelled, Type: model.InterviewTypeFamily, Mode: model.InterviewModeInPerson,
			InterviewerID: "9", ScheduledDate: "2025-03-03", ScheduledTime: "09:00"},
		{ID: "4", Status: model.InterviewStatusScheduled, Type: model.InterviewTypeAcademic, Mode: model.InterviewModeInPerson,
			InterviewerName: "Luis", ScheduledDate: "2025-03-10", ScheduledTime: "15:00"},
		{ID: "5", Status: model.InterviewStatusConfirmed, Type: model.InterviewTypeAcademic, Mode: model.InterviewModeInPerson,
			InterviewerName: "Luis", ScheduledDate: "2025-03-12", ScheduledTime: "10:00"},
		{ID: "6", Status: model.InterviewStatusScheduled, Type: model.InterviewTypeAcademic, Mode: model.InterviewModeHybrid,
			InterviewerName: "Luis", ScheduledDate: "2025-03-05", ScheduledTime: "10:00"},
	}
}

func TestCompute(t *testing.T) {
	s := Compute(sample(), now)
	if s.Total != 6 || s.ByStatus[model.InterviewStatusCompleted] != 2 || s.ByType[model.InterviewTypeAcademic] != 3 {
		t.Errorf("counts = %+v", s)
	}
	if s.ByInterviewer["Ana"] != 2 || s.ByInterviewer["Luis"] != 3 || s.ByInterviewer["9"] != 1 {
		t.Errorf("by interviewer = %v", s.ByInterviewer)
	}
	// 2/6 = 33.33% -> 33.3
	if s.CompletionRate != 33.3 || s.CancellationRate != 16.7 || s.NoShowRate != 0 {
		t.Errorf("rates = %v %v %v", s.CompletionRate, s.CancellationRate, s.NoShowRate)
	}
	if s.AverageScore != 7.5 {
		t.Errorf("average score = %v", s.AverageScore)
	}
	if s.Today != 1 || s.Upcoming != 2 || s.Overdue != 1 || s.FollowUpPending != 1 {
		t.Errorf("today=%d upcoming=%d overdue=%d followUp=%d", s.Today, s.Upcoming, s.Overdue, s.FollowUpPending)
	}

	empty := Compute(nil, now)
	if empty.Total != 0 || empty.CompletionRate != 0 || empty.AverageScore != 0 {
		t.Errorf("empty = %+v", empty)
	}
}

func TestMerge(t *testing.T) {
	local := Compute(sample(), now)
	if got := Merge(local, nil); got != local {
		t.Errorf("nil backend should return local")
	}
	backend := &model.InterviewStats{
		Total:          40,
		ByStatus:       map[model.InterviewStatus]int{model.InterviewStatusCompleted: 10},
		CompletionRate: 25.04,
	}
	got := Merge(local, backend)
	if got.Total != 40 || got.CompletionRate != 25 {
		t.Errorf("backend fields lost: %+v", got)
	}
	if got.ByInterviewer["Luis"] != 3 || got.Today != 1 || len(got.ByType) == 0 {
		t.Errorf("local fields missing: %+v", got)
	}
}

func TestDashboard(t *testing.T) {
	d := Dashboard(sample(), now)
	if len(d.Today) != 1 || d.Today[0].ID != "4" {
		t.Errorf("today = %+v", d.Today)
	}
	if len(d.NextWeek) != 1 || d.NextWeek[0].ID != "5" {
		t.Errorf("next week = %+v", d.NextWeek)
	}
	if len(d.Pending.ToConfirm) != 1 || d.Pending.ToConfirm[0].ID != "4" {
		t.Errorf("to confirm = %+v", d.Pending.ToConfirm)
	}
	if len(d.Pending.ToComplete) != 1 || d.Pending.ToComplete[0].ID != "6" {
		t.Errorf("to complete = %+v", d.Pending.ToComplete)
	}
	if len(d.Pending.FollowUps) != 1 || d.Pending.FollowUps[0].ID != "1" {
		t.Errorf("follow ups = %+v", d.Pending.FollowUps)
	}
}

type fakeSource struct {
	list     []model.Interview
	stats    *model.InterviewStats
	statsErr error
}

func (f fakeSource) ListAll(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) ([]model.Interview, error) {
	return f.list, nil
}

func (f fakeSource) Statistics(ctx context.Context, xl *xlog.Logger) (*model.InterviewStats, error) {
	return f.stats, f.statsErr
}

func TestServiceOverviewFallback(t *testing.T) {
	s := NewService(fakeSource{list: sample(), statsErr: errors.New("502")}, time.UTC)
	s.now = func() time.Time { return now }
	got, err := s.Overview(context.Background(), nil, model.InterviewFilters{})
	if err != nil || got.Total != 6 {
		t.Errorf("overview = %+v, %v", got, err)
	}
}

func TestServiceOverviewFiltered(t *testing.T) {
	backend := &model.InterviewStats{
		Total:          100,
		CompletionRate: 10,
		ByStatus:       map[model.InterviewStatus]int{model.InterviewStatusCompleted: 10},
	}
	s := NewService(fakeSource{list: sample(), stats: backend}, time.UTC)
	s.now = func() time.Time { return now }
	local := Compute(sample(), now)

	got, err := s.Overview(context.Background(), nil, model.InterviewFilters{InterviewerID: "int-1"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != local.Total || got.CompletionRate != local.CompletionRate ||
		got.ByStatus[model.InterviewStatusCompleted] != local.ByStatus[model.InterviewStatusCompleted] {
		t.Errorf("filtered overview = %+v, want local %+v", got, local)
	}

	got, err = s.Overview(context.Background(), nil, model.InterviewFilters{Page: 2, Size: 50})
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 100 {
		t.Errorf("unfiltered overview total = %d, want backend 100", got.Total)
	}
}
