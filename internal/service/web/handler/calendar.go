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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/calendar"
	"github.com/solutions/admission-interview/internal/service/cloud"
	"github.com/solutions/admission-interview/internal/service/cloud/admission"
	"github.com/solutions/admission-interview/internal/service/events"
)

const (
	dayViewFrom = 8
	dayViewTo   = 20
)

// InterviewLister 日历所需的面试查询。
type InterviewLister interface {
	ListAll(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) ([]model.Interview, error)
	Calendar(ctx context.Context, xl *xlog.Logger, from, to string) ([]model.Interview, error)
}

// ReschedulerInterface 日历拖拽重新安排。
type ReschedulerInterface interface {
	Plan(ctx context.Context, xl *xlog.Logger, drop calendar.Drop) (*calendar.Proposal, error)
	Commit(ctx context.Context, xl *xlog.Logger, p *calendar.Proposal) (*model.Interview, error)
}

type CalendarApiHandler struct {
	Interviews  InterviewLister
	Rescheduler ReschedulerInterface
	Reminders   ReminderInterface
	Events      EventInterface
	Hub         *events.Hub
	IM          cloud.IMService
	Loc         *time.Location
	now         func() time.Time
}

func NewCalendarApiHandler(interviews InterviewLister, rescheduler ReschedulerInterface, reminders ReminderInterface,
	emitter EventInterface, hub *events.Hub, im cloud.IMService, loc *time.Location) *CalendarApiHandler {
	if loc == nil {
		loc = time.Local
	}
	return &CalendarApiHandler{
		Interviews:  interviews,
		Rescheduler: rescheduler,
		Reminders:   reminders,
		Events:      emitter,
		Hub:         hub,
		IM:          im,
		Loc:         loc,
		now:         time.Now,
	}
}

// CalendarResponse 日历数据，View 为 month、week 或 day。
type CalendarResponse struct {
	View  string             `json:"view"`
	Month *calendar.Month    `json:"month,omitempty"`
	Week  []calendar.Day     `json:"week,omitempty"`
	Day   []calendar.HourRow `json:"day,omitempty"`
}

// load 使用后端的日历接口，按面试官过滤或日历接口不存在时按条件拉取全部。
func (h *CalendarApiHandler) load(c *gin.Context, xl *xlog.Logger, from, to time.Time, interviewerID string) ([]model.Interview, error) {
	ctx := requestContext(c)
	dateFrom, dateTo := from.Format(model.DateLayout), to.Format(model.DateLayout)
	if interviewerID == "" {
		list, err := h.Interviews.Calendar(ctx, xl, dateFrom, dateTo)
		if err == nil {
			return list, nil
		}
		if !admission.IsNotFound(err) {
			return nil, err
		}
		xl.Infof("calendar api not found, fallback to list, error %v", err)
	}
	return h.Interviews.ListAll(ctx, xl, model.InterviewFilters{
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		InterviewerID: interviewerID,
	})
}

// Calendar 月、周、日视图。year、month 缺省为当前月份，周视图与日视图使用 date 参数。
func (h *CalendarApiHandler) Calendar(c *gin.Context) {
	xl := xlogOf(c)
	today := h.now().In(h.Loc)
	view := c.DefaultQuery("view", "month")

	switch view {
	case "week", "day":
		date := c.DefaultQuery("date", today.Format(model.DateLayout))
		anchor, err := time.ParseInLocation(model.DateLayout, date, h.Loc)
		if err != nil {
			xl.Infof("invalid date %q", date)
			sendFail(c, xl, model.NewResponseErrorBadRequest())
			return
		}
		from, to := anchor, anchor
		if view == "week" {
			from = anchor.AddDate(0, 0, -((int(anchor.Weekday()) + 6) % 7))
			to = from.AddDate(0, 0, 6)
		}
		list, err := h.load(c, xl, from, to, c.Query("interviewerId"))
		if err != nil {
			sendError(c, xl, err)
			return
		}
		resp := &CalendarResponse{View: view}
		if view == "week" {
			resp.Week = calendar.WeekView(anchor, list, today)
		} else {
			resp.Day = calendar.DayView(date, list, dayViewFrom, dayViewTo)
		}
		sendSuccess(c, xl, resp)
		return
	case "month":
	default:
		sendFail(c, xl, model.NewResponseErrorBadRequest())
		return
	}

	year, month := today.Year(), int(today.Month())
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2000 || n > 2100 {
			sendFail(c, xl, model.NewResponseErrorBadRequest())
			return
		}
		year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			sendFail(c, xl, model.NewResponseErrorBadRequest())
			return
		}
		month = n
	}
	from, to := calendar.GridRange(year, time.Month(month))
	list, err := h.load(c, xl, from, to, c.Query("interviewerId"))
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, &CalendarResponse{View: view, Month: calendar.MonthGrid(year, time.Month(month), list, today)})
}

func (h *CalendarApiHandler) sendDropError(c *gin.Context, xl *xlog.Logger, err error) {
	if admission.IsNotFound(err) {
		sendFail(c, xl, model.NewResponseErrorNoSuchInterview())
		return
	}
	sendError(c, xl, err)
}

// PlanDrop 拖拽放下后生成确认信息。
func (h *CalendarApiHandler) PlanDrop(c *gin.Context) {
	xl := xlogOf(c)
	drop := &calendar.Drop{}
	if !bindAndValidate(c, xl, drop, false) {
		return
	}
	p, err := h.Rescheduler.Plan(requestContext(c), xl, *drop)
	if err != nil {
		h.sendDropError(c, xl, err)
		return
	}
	sendSuccess(c, xl, p)
}

// CommitDrop 确认后提交。重新读取面试，以后端数据为准。
func (h *CalendarApiHandler) CommitDrop(c *gin.Context) {
	xl := xlogOf(c)
	drop := &calendar.Drop{}
	if !bindAndValidate(c, xl, drop, false) {
		return
	}
	ctx := requestContext(c)
	drop.Known = nil
	p, err := h.Rescheduler.Plan(ctx, xl, *drop)
	if err != nil {
		h.sendDropError(c, xl, err)
		return
	}
	updated, err := h.Rescheduler.Commit(ctx, xl, p)
	if err != nil {
		h.sendDropError(c, xl, err)
		return
	}
	xl.Infof("interview %s moved to %s %s by %s", updated.ID, updated.ScheduledDate, updated.ScheduledTime, actorOf(c))
	if h.Reminders != nil {
		h.Reminders.CancelForInterview(xl, updated.ID)
		h.Reminders.PlanDefault(xl, *updated)
	}
	if h.Events != nil {
		h.Events.Emit(context.Background(), xl, events.EventOf(model.InterviewEventRescheduled, *updated, actorOf(c)))
	}
	sendSuccess(c, xl, updated)
}

// EventFeed 日历页面的 websocket 事件推送。
func (h *CalendarApiHandler) EventFeed(c *gin.Context) {
	xl := xlogOf(c)
	if h.Hub == nil {
		sendFail(c, xl, model.NewResponseErrorNotFound())
		return
	}
	if err := h.Hub.Serve(c.Writer, c.Request, actorOf(c)); err != nil {
		xl.Infof("websocket upgrade failed, error %v", err)
	}
}

// IMToken 站内通知使用的 IM token。
func (h *CalendarApiHandler) IMToken(c *gin.Context) {
	xl := xlogOf(c)
	if h.IM == nil {
		sendFail(c, xl, model.NewResponseErrorNotFound())
		return
	}
	user := currentUser(c)
	token, err := h.IM.GetUserToken(xl, user.ID, user.Name)
	if err != nil {
		xl.Errorf("failed to get im token for %s, error %v", user.ID, err)
		sendFail(c, xl, model.NewResponseErrorExternalService())
		return
	}
	sendSuccess(c, xl, token)
}
