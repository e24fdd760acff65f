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

	"github.com/qiniu/x/xlog"
	"github.com/tidwall/gjson"

	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/cloud/admission"
)

// SlotSource 后端的可预约时间点查询。
type SlotSource interface {
	AvailableSlots(ctx context.Context, xl *xlog.Logger, interviewerID, date string, duration int) (gjson.Result, error)
}

// ScheduleSource 面试官日程查询。
type ScheduleSource interface {
	ByInterviewer(ctx context.Context, xl *xlog.Logger, interviewerID string, year int) ([]model.InterviewerSchedule, error)
}

// BookingSource 面试官已安排的面试。
type BookingSource interface {
	ListByInterviewer(ctx context.Context, xl *xlog.Logger, interviewerID string) ([]model.Interview, error)
}

// Service 为选择面试时间提供可预约时间点。
type Service struct {
	slots     SlotSource
	schedules ScheduleSource
	bookings  BookingSource
	xl        *xlog.Logger
}

func NewService(slots SlotSource, schedules ScheduleSource, bookings BookingSource) *Service {
	return &Service{
		slots:     slots,
		schedules: schedules,
		bookings:  bookings,
		xl:        xlog.New("schedule selector"),
	}
}

// DaySlots 查询面试官某天的可预约时间点。后端调用失败时返回默认时间点并标记 Fallback，
// 使界面退化为默认选项而不是报错。
func (s *Service) DaySlots(ctx context.Context, xl *xlog.Logger, interviewerID, date string, duration int) *model.DayAvailability {
	if xl == nil {
		xl = s.xl
	}
	res := &model.DayAvailability{InterviewerID: interviewerID, Date: date, Duration: duration}
	raw, err := s.slots.AvailableSlots(ctx, xl, interviewerID, date, duration)
	if err != nil {
		xl.Warnf("failed to fetch slots of %s on %s, use default slots, error %v", interviewerID, date, err)
		res.Slots = ToTimeSlots(DefaultSlots(duration), duration)
		res.Fallback = true
		return res
	}
	res.Slots = ToTimeSlots(NormalizeSlots(raw), duration)
	return res
}

// LocalAvailability 根据面试官日程与已安排的面试在本地计算时间点，用于日程页面展示。
func (s *Service) LocalAvailability(ctx context.Context, xl *xlog.Logger, interviewerID string, date string, duration int) (*model.DayAvailability, error) {
	if xl == nil {
		xl = s.xl
	}
	year := 0
	if d := model.NormalizeDate(date); d != "" {
		year = atoiPrefix(d[:4])
	}
	schedules, err := s.schedules.ByInterviewer(ctx, xl, interviewerID, year)
	if err != nil {
		return nil, err
	}
	booked, err := s.bookings.ListByInterviewer(ctx, xl, interviewerID)
	if err != nil {
		if !admission.IsNotFound(err) {
			return nil, err
		}
		booked = nil
	}
	return &model.DayAvailability{
		InterviewerID: interviewerID,
		Date:          date,
		Duration:      duration,
		Slots:         GenerateSlots(schedules, date, duration, booked),
	}, nil
}

func atoiPrefix(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}
