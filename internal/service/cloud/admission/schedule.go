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

package admission

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

const schedulesPath = "/api/interviewer-schedules"

// ScheduleService 后端 /api/interviewer-schedules 接口的封装。
type ScheduleService struct {
	client *Client
	xl     *xlog.Logger
}

func NewScheduleService(client *Client) *ScheduleService {
	return &ScheduleService{client: client, xl: xlog.New("schedule-service")}
}

// Interviewers 已配置日程的面试官。
func (s *ScheduleService) Interviewers(ctx context.Context, xl *xlog.Logger) ([]model.Interviewer, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Get(ctx, xl, schedulesPath+"/interviewers", nil)
	if err != nil {
		return nil, errors.Wrap(err, "list interviewers")
	}
	return MapInterviewers(res), nil
}

// ByInterviewer 面试官的日程，year 为 0 时不过滤年份。
func (s *ScheduleService) ByInterviewer(ctx context.Context, xl *xlog.Logger, interviewerID string, year int) ([]model.InterviewerSchedule, error) {
	if xl == nil {
		xl = s.xl
	}
	path := schedulesPath + "/interviewer/" + url.PathEscape(interviewerID)
	if year > 0 {
		path += "/year/" + strconv.Itoa(year)
	}
	res, err := s.client.Get(ctx, xl, path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "list schedules of %s", interviewerID)
	}
	schedules := MapSchedules(res)
	for i := range schedules {
		if schedules[i].InterviewerID == "" {
			schedules[i].InterviewerID = interviewerID
		}
	}
	return schedules, nil
}

func scheduleBody(s model.InterviewerSchedule) map[string]interface{} {
	body := map[string]interface{}{
		"interviewerId": s.InterviewerID,
		"startTime":     model.NormalizeTime(s.StartTime),
		"endTime":       model.NormalizeTime(s.EndTime),
		"scheduleType":  s.ScheduleType,
		"isActive":      s.IsActive,
	}
	if s.DayOfWeek != "" {
		body["dayOfWeek"] = s.DayOfWeek
	}
	if s.Year > 0 {
		body["year"] = s.Year
	}
	if s.SpecificDate != "" {
		body["specificDate"] = s.SpecificDate
	}
	if s.Notes != "" {
		body["notes"] = s.Notes
	}
	return body
}

func (s *ScheduleService) Create(ctx context.Context, xl *xlog.Logger, in model.InterviewerSchedule) (*model.InterviewerSchedule, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Post(ctx, xl, schedulesPath, scheduleBody(in))
	if err != nil {
		return nil, errors.Wrap(err, "create schedule")
	}
	out := MapSchedule(res)
	return &out, nil
}

// CreateRecurring 为面试官批量创建每周固定时段。
func (s *ScheduleService) CreateRecurring(ctx context.Context, xl *xlog.Logger, interviewerID string, year int, blocks []model.InterviewerSchedule) ([]model.InterviewerSchedule, error) {
	if xl == nil {
		xl = s.xl
	}
	body := make([]map[string]interface{}, 0, len(blocks))
	for _, b := range blocks {
		b.InterviewerID = interviewerID
		b.ScheduleType = model.ScheduleTypeRecurring
		b.IsActive = true
		if b.Year == 0 {
			b.Year = year
		}
		body = append(body, scheduleBody(b))
	}
	path := schedulesPath + "/interviewer/" + url.PathEscape(interviewerID) + "/recurring/" + strconv.Itoa(year)
	res, err := s.client.Post(ctx, xl, path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "create recurring schedules of %s", interviewerID)
	}
	return MapSchedules(res), nil
}

func (s *ScheduleService) Update(ctx context.Context, xl *xlog.Logger, id string, in model.InterviewerSchedule) (*model.InterviewerSchedule, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Put(ctx, xl, schedulesPath+"/"+url.PathEscape(id), scheduleBody(in))
	if err != nil {
		return nil, errors.Wrapf(err, "update schedule %s", id)
	}
	out := MapSchedule(res)
	if out.ID == "" {
		in.ID = id
		return &in, nil
	}
	return &out, nil
}

// Deactivate 后端将日程标记为停用而非物理删除。
func (s *ScheduleService) Deactivate(ctx context.Context, xl *xlog.Logger, id string) error {
	if xl == nil {
		xl = s.xl
	}
	if _, err := s.client.Delete(ctx, xl, schedulesPath+"/"+url.PathEscape(id)); err != nil {
		return errors.Wrapf(err, "delete schedule %s", id)
	}
	return nil
}

// AvailableInterviewers 在给定日期与时间空闲的面试官。
func (s *ScheduleService) AvailableInterviewers(ctx context.Context, xl *xlog.Logger, date, clock string) ([]model.Interviewer, error) {
	if xl == nil {
		xl = s.xl
	}
	q := url.Values{}
	q.Set("date", date)
	q.Set("time", model.NormalizeTime(clock))
	res, err := s.client.Get(ctx, xl, schedulesPath+"/available", q)
	if err != nil {
		return nil, errors.Wrap(err, "available interviewers")
	}
	return MapInterviewers(res), nil
}
