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

package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/schedule"
)

// ScheduleInterface 招生后端的面试官日程接口。
type ScheduleInterface interface {
	Interviewers(ctx context.Context, xl *xlog.Logger) ([]model.Interviewer, error)
	ByInterviewer(ctx context.Context, xl *xlog.Logger, interviewerID string, year int) ([]model.InterviewerSchedule, error)
	Create(ctx context.Context, xl *xlog.Logger, in model.InterviewerSchedule) (*model.InterviewerSchedule, error)
	CreateRecurring(ctx context.Context, xl *xlog.Logger, interviewerID string, year int, blocks []model.InterviewerSchedule) ([]model.InterviewerSchedule, error)
	Update(ctx context.Context, xl *xlog.Logger, id string, in model.InterviewerSchedule) (*model.InterviewerSchedule, error)
	Deactivate(ctx context.Context, xl *xlog.Logger, id string) error
	AvailableInterviewers(ctx context.Context, xl *xlog.Logger, date, clock string) ([]model.Interviewer, error)
}

// LocalSlotInterface 根据日程在本地计算的时间点。
type LocalSlotInterface interface {
	LocalAvailability(ctx context.Context, xl *xlog.Logger, interviewerID string, date string, duration int) (*model.DayAvailability, error)
}

type ScheduleApiHandler struct {
	Schedules ScheduleInterface
	Slots     LocalSlotInterface
}

func NewScheduleApiHandler(schedules ScheduleInterface, slots LocalSlotInterface) *ScheduleApiHandler {
	return &ScheduleApiHandler{Schedules: schedules, Slots: slots}
}

// InterviewerScheduleResponse 面试官日程及按星期的汇总。
type InterviewerScheduleResponse struct {
	InterviewerID string                      `json:"interviewerId"`
	Year          int                         `json:"year,omitempty"`
	Schedules     []model.InterviewerSchedule `json:"schedules"`
	Weekly        []model.WeeklySchedule      `json:"weekly"`
}

func (h *ScheduleApiHandler) Interviewers(c *gin.Context) {
	xl := xlogOf(c)
	list, err := h.Schedules.Interviewers(requestContext(c), xl)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, list)
}

func (h *ScheduleApiHandler) InterviewerSchedules(c *gin.Context) {
	xl := xlogOf(c)
	id := c.Param("id")
	year := 0
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			sendFail(c, xl, model.NewResponseErrorBadRequest())
			return
		}
		year = n
	}
	list, err := h.Schedules.ByInterviewer(requestContext(c), xl, id, year)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, &InterviewerScheduleResponse{
		InterviewerID: id,
		Year:          year,
		Schedules:     list,
		Weekly:        schedule.WeeklySummary(list),
	})
}

// InterviewerSlots 根据日程与已安排的面试计算某天的时间点。
func (h *ScheduleApiHandler) InterviewerSlots(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.SlotQueryForm{InterviewerID: c.Param("id")}
	if err := c.ShouldBindQuery(args); err != nil {
		sendFail(c, xl, model.NewResponseErrorBadRequest())
		return
	}
	args.InterviewerID = c.Param("id")
	if err := args.Validate(); err != nil {
		sendFail(c, xl, model.NewResponseErrorValidation(err))
		return
	}
	day, err := h.Slots.LocalAvailability(requestContext(c), xl, args.InterviewerID, args.Date, args.Duration)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, day)
}

func (h *ScheduleApiHandler) CreateSchedule(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.ScheduleForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	if args.InterviewerID == "" {
		sendFail(c, xl, model.NewResponseErrorValidation(errInterviewerRequired))
		return
	}
	created, err := h.Schedules.Create(requestContext(c), xl, args.ToSchedule())
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, created)
}

func (h *ScheduleApiHandler) CreateRecurring(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.RecurringScheduleForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	blocks := make([]model.InterviewerSchedule, 0, len(args.Blocks))
	for i := range args.Blocks {
		blocks = append(blocks, args.Blocks[i].ToSchedule())
	}
	created, err := h.Schedules.CreateRecurring(requestContext(c), xl, c.Param("id"), args.Year, blocks)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, created)
}

func (h *ScheduleApiHandler) UpdateSchedule(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.ScheduleForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	updated, err := h.Schedules.Update(requestContext(c), xl, c.Param("id"), args.ToSchedule())
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, updated)
}

func (h *ScheduleApiHandler) DeleteSchedule(c *gin.Context) {
	xl := xlogOf(c)
	if err := h.Schedules.Deactivate(requestContext(c), xl, c.Param("id")); err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, nil)
}

// AvailableInterviewers 某天某时空闲的面试官。
func (h *ScheduleApiHandler) AvailableInterviewers(c *gin.Context) {
	xl := xlogOf(c)
	date, clock := c.Query("date"), model.FormatTime(c.Query("time"))
	if model.NormalizeDate(date) == "" || !form.RegTime.MatchString(clock) {
		sendFail(c, xl, model.NewResponseErrorValidation(errDateTimeRequired))
		return
	}
	list, err := h.Schedules.AvailableInterviewers(requestContext(c), xl, date, clock)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, list)
}
