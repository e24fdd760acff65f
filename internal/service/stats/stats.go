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
	"math"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

// UpcomingWindow 首页“未来几天”的范围。
const UpcomingWindow = 7 * 24 * time.Hour

// percent 百分比，保留一位小数，仅用于展示。
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)*1000/float64(total)) / 10
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Compute 根据已加载的面试在本地计算统计。
func Compute(interviews []model.Interview, now time.Time) *model.InterviewStats {
	s := &model.InterviewStats{
		Total:         len(interviews),
		ByStatus:      map[model.InterviewStatus]int{},
		ByType:        map[model.InterviewType]int{},
		ByMode:        map[model.InterviewMode]int{},
		ByInterviewer: map[string]int{},
	}
	var scoreSum float64
	var scored int
	for _, i := range interviews {
		s.ByStatus[i.Status]++
		s.ByType[i.Type]++
		s.ByMode[i.Mode]++
		if i.InterviewerName != "" {
			s.ByInterviewer[i.InterviewerName]++
		} else if i.InterviewerID != "" {
			s.ByInterviewer[i.InterviewerID]++
		}
		if i.Score != nil {
			scoreSum += *i.Score
			scored++
		}
		if model.IsToday(i, now) && model.IsActive(i.Status) {
			s.Today++
		}
		if model.IsUpcoming(i, now, UpcomingWindow) {
			s.Upcoming++
		}
		if model.IsOverdue(i, now) {
			s.Overdue++
		}
		if i.Status == model.InterviewStatusCompleted && i.FollowUpRequired {
			s.FollowUpPending++
		}
	}
	s.CompletionRate = percent(s.ByStatus[model.InterviewStatusCompleted], s.Total)
	s.CancellationRate = percent(s.ByStatus[model.InterviewStatusCancelled], s.Total)
	s.NoShowRate = percent(s.ByStatus[model.InterviewStatusNoShow], s.Total)
	if scored > 0 {
		s.AverageScore = round1(scoreSum / float64(scored))
	}
	return s
}

// Merge 以后端统计为准，后端没有的字段使用本地计算结果。backend 为空时返回 local。
func Merge(local, backend *model.InterviewStats) *model.InterviewStats {
	if backend == nil || backend.Total == 0 {
		return local
	}
	res := *backend
	if len(res.ByStatus) == 0 {
		res.ByStatus = local.ByStatus
	}
	if len(res.ByType) == 0 {
		res.ByType = local.ByType
	}
	if len(res.ByMode) == 0 {
		res.ByMode = local.ByMode
	}
	res.ByInterviewer = local.ByInterviewer
	res.Today = local.Today
	res.FollowUpPending = local.FollowUpPending
	if res.Upcoming == 0 {
		res.Upcoming = local.Upcoming
	}
	if res.Overdue == 0 {
		res.Overdue = local.Overdue
	}
	if res.CompletionRate == 0 && res.ByStatus[model.InterviewStatusCompleted] > 0 {
		res.CompletionRate = percent(res.ByStatus[model.InterviewStatusCompleted], res.Total)
	}
	if res.CancellationRate == 0 && res.ByStatus[model.InterviewStatusCancelled] > 0 {
		res.CancellationRate = percent(res.ByStatus[model.InterviewStatusCancelled], res.Total)
	}
	if res.NoShowRate == 0 && res.ByStatus[model.InterviewStatusNoShow] > 0 {
		res.NoShowRate = percent(res.ByStatus[model.InterviewStatusNoShow], res.Total)
	}
	res.CompletionRate = round1(res.CompletionRate)
	res.CancellationRate = round1(res.CancellationRate)
	res.NoShowRate = round1(res.NoShowRate)
	res.AverageScore = round1(res.AverageScore)
	return &res
}

// PendingActions 需要处理的面试。
type PendingActions struct {
	ToConfirm  []model.Interview `json:"toConfirm"`
	ToComplete []model.Interview `json:"toComplete"`
	FollowUps  []model.Interview `json:"followUps"`
}

// DashboardView 首页概览。
type DashboardView struct {
	Today    []model.Interview     `json:"today"`
	NextWeek []model.Interview     `json:"nextWeek"`
	Pending  PendingActions        `json:"pending"`
	Stats    *model.InterviewStats `json:"stats"`
}

// Dashboard 今日日程、未来 7 天与待处理事项。
func Dashboard(interviews []model.Interview, now time.Time) *DashboardView {
	d := &DashboardView{
		Today:    []model.Interview{},
		NextWeek: []model.Interview{},
		Pending: PendingActions{
			ToConfirm:  []model.Interview{},
			ToComplete: []model.Interview{},
			FollowUps:  []model.Interview{},
		},
		Stats: Compute(interviews, now),
	}
	for _, i := range interviews {
		switch {
		case model.IsToday(i, now) && model.IsActive(i.Status):
			d.Today = append(d.Today, i)
		case model.IsUpcoming(i, now, UpcomingWindow):
			d.NextWeek = append(d.NextWeek, i)
		}
		if i.Status == model.InterviewStatusScheduled && !model.IsOverdue(i, now) {
			d.Pending.ToConfirm = append(d.Pending.ToConfirm, i)
		}
		if i.Status == model.InterviewStatusInProgress || model.IsOverdue(i, now) {
			d.Pending.ToComplete = append(d.Pending.ToComplete, i)
		}
		if i.Status == model.InterviewStatusCompleted && i.FollowUpRequired {
			d.Pending.FollowUps = append(d.Pending.FollowUps, i)
		}
	}
	model.SortBySchedule(d.Today)
	model.SortBySchedule(d.NextWeek)
	model.SortBySchedule(d.Pending.ToConfirm)
	model.SortBySchedule(d.Pending.ToComplete)
	return d
}

// Source 统计所需的面试数据。
type Source interface {
	ListAll(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) ([]model.Interview, error)
	Statistics(ctx context.Context, xl *xlog.Logger) (*model.InterviewStats, error)
}

// Service 统计面板。后端统计可用时合并，否则使用本地计算。
type Service struct {
	source Source
	loc    *time.Location
	now    func() time.Time
	xl     *xlog.Logger
}

func NewService(source Source, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		source: source,
		loc:    loc,
		now:    time.Now,
		xl:     xlog.New("interview stats"),
	}
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

// Overview 合并后端与本地的统计，有筛选条件时只使用本地计算结果。
func (s *Service) Overview(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) (*model.InterviewStats, error) {
	if xl == nil {
		xl = s.xl
	}
	interviews, err := s.source.ListAll(ctx, xl, filters)
	if err != nil {
		return nil, err
	}
	local := Compute(interviews, s.today())
	// 后端统计不支持筛选条件
	if filters.Filtered() {
		return local, nil
	}
	backend, err := s.source.Statistics(ctx, xl)
	if err != nil {
		xl.Warnf("backend statistics unavailable, use local statistics, error %v", err)
		return local, nil
	}
	return Merge(local, backend), nil
}

// Dashboard 首页概览数据。
func (s *Service) Dashboard(ctx context.Context, xl *xlog.Logger) (*DashboardView, error) {
	if xl == nil {
		xl = s.xl
	}
	interviews, err := s.source.ListAll(ctx, xl, model.InterviewFilters{})
	if err != nil {
		return nil, err
	}
	return Dashboard(interviews, s.today()), nil
}
