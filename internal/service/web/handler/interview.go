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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/cloud/admission"
	"github.com/solutions/admission-interview/internal/service/events"
	"github.com/solutions/admission-interview/internal/service/schedule"
)

// InterviewInterface 招生后端的面试接口。
type InterviewInterface interface {
	List(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) (*model.InterviewPage, error)
	ListAll(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) ([]model.Interview, error)
	Get(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error)
	ListByApplication(ctx context.Context, xl *xlog.Logger, applicationID string) ([]model.Interview, error)
	Upcoming(ctx context.Context, xl *xlog.Logger) ([]model.Interview, error)
	Calendar(ctx context.Context, xl *xlog.Logger, from, to string) ([]model.Interview, error)
	Create(ctx context.Context, xl *xlog.Logger, in model.Interview) (*model.Interview, error)
	Update(ctx context.Context, xl *xlog.Logger, id string, in model.Interview) (*model.Interview, error)
	Delete(ctx context.Context, xl *xlog.Logger, id string) error
	CheckAvailability(ctx context.Context, xl *xlog.Logger, interviewerID, date, clock string, duration int, excludeID string) (bool, error)
	Confirm(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error)
	Start(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error)
	Complete(ctx context.Context, xl *xlog.Logger, id string, args admission.CompleteArgs) (*model.Interview, error)
	Cancel(ctx context.Context, xl *xlog.Logger, id, reason string) (*model.Interview, error)
	Reschedule(ctx context.Context, xl *xlog.Logger, id, newDate, newTime, reason string) (*model.Interview, error)
	MarkNoShow(ctx context.Context, xl *xlog.Logger, id, notes string) (*model.Interview, error)
	SendNotification(ctx context.Context, xl *xlog.Logger, id, notificationType string) error
}

// ReminderInterface 面试提醒。
type ReminderInterface interface {
	Schedule(xl *xlog.Logger, i model.Interview, f *form.ReminderForm, createdBy string) (*model.ReminderMessage, error)
	Notify(xl *xlog.Logger, i model.Interview, kind model.ReminderKind) []model.ReminderMessage
	PlanDefault(xl *xlog.Logger, i model.Interview) []model.ReminderMessage
	Cancel(xl *xlog.Logger, id string) (*model.ReminderMessage, error)
	CancelForInterview(xl *xlog.Logger, interviewID string) int
	History(xl *xlog.Logger, interviewID string) ([]model.ReminderMessage, error)
}

// EventInterface 面试变更事件。
type EventInterface interface {
	Emit(ctx context.Context, xl *xlog.Logger, event model.InterviewEvent)
}

// TemplateUsageInterface 记录模板使用次数。
type TemplateUsageInterface interface {
	RecordUsage(xl *xlog.Logger, id string) (*model.TemplateUsage, error)
}

// SlotInterface 可预约时间点。
type SlotInterface interface {
	DaySlots(ctx context.Context, xl *xlog.Logger, interviewerID, date string, duration int) *model.DayAvailability
}

type InterviewApiHandler struct {
	Interview InterviewInterface
	Reminders ReminderInterface
	Events    EventInterface
	Templates TemplateUsageInterface
	Slots     SlotInterface
	Loc       *time.Location
	now       func() time.Time
}

func NewInterviewApiHandler(interview InterviewInterface, reminders ReminderInterface, emitter EventInterface,
	templates TemplateUsageInterface, slots SlotInterface, loc *time.Location) *InterviewApiHandler {
	if loc == nil {
		loc = time.Local
	}
	return &InterviewApiHandler{
		Interview: interview,
		Reminders: reminders,
		Events:    emitter,
		Templates: templates,
		Slots:     slots,
		Loc:       loc,
		now:       time.Now,
	}
}

func (h *InterviewApiHandler) today() time.Time {
	return h.now().In(h.Loc)
}

func (h *InterviewApiHandler) emit(c *gin.Context, xl *xlog.Logger, t model.InterviewEventType, i model.Interview) {
	if h.Events != nil {
		h.Events.Emit(context.Background(), xl, events.EventOf(t, i, actorOf(c)))
	}
}

// replanReminders 时间或状态变化后重新安排默认提醒。
func (h *InterviewApiHandler) replanReminders(xl *xlog.Logger, i model.Interview) {
	if h.Reminders == nil {
		return
	}
	h.Reminders.CancelForInterview(xl, i.ID)
	h.Reminders.PlanDefault(xl, i)
}

// checkSlot 后端确认时间段可用。后端不可达时放行，由创建或更新接口做最终判断。
func (h *InterviewApiHandler) checkSlot(c *gin.Context, xl *xlog.Logger, i model.Interview, excludeID string) error {
	ok, err := h.Interview.CheckAvailability(requestContext(c), xl, i.InterviewerID, i.ScheduledDate, i.ScheduledTime, i.Duration, excludeID)
	if err != nil {
		if admission.IsTransport(err) {
			xl.Warnf("availability check failed, continue, error %v", err)
			return nil
		}
		return err
	}
	if !ok {
		return errSlotUnavailable
	}
	return nil
}

// ListInterviews 分页查询面试。
func (h *InterviewApiHandler) ListInterviews(c *gin.Context) {
	xl := xlogOf(c)
	filters := model.InterviewFilters{}
	if err := c.ShouldBindQuery(&filters); err != nil {
		xl.Infof("invalid args in query, error %v", err)
		sendFail(c, xl, model.NewResponseErrorBadRequest())
		return
	}
	if err := form.ValidateFilters(&filters); err != nil {
		sendFail(c, xl, model.NewResponseErrorValidation(err))
		return
	}
	page, err := h.Interview.List(requestContext(c), xl, filters)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, page)
}

// GetInterview 面试详情。
func (h *InterviewApiHandler) GetInterview(c *gin.Context) {
	xl := xlogOf(c)
	i, err := h.Interview.Get(requestContext(c), xl, c.Param("id"))
	if err != nil {
		sendInterviewError(c, xl, err)
		return
	}
	sendSuccess(c, xl, model.NewInterviewDetailResponse(*i, h.today()))
}

// ListByApplication 某个申请的全部面试，按时间排序。
func (h *InterviewApiHandler) ListByApplication(c *gin.Context) {
	xl := xlogOf(c)
	list, err := h.Interview.ListByApplication(requestContext(c), xl, c.Param("applicationId"))
	if err != nil {
		sendError(c, xl, err)
		return
	}
	model.SortBySchedule(list)
	sendSuccess(c, xl, list)
}

// UpcomingInterviews 后端给出的即将进行的面试。
func (h *InterviewApiHandler) UpcomingInterviews(c *gin.Context) {
	xl := xlogOf(c)
	list, err := h.Interview.Upcoming(requestContext(c), xl)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	model.SortBySchedule(list)
	sendSuccess(c, xl, list)
}

// CreateInterview 创建面试，可选立即发送确认提醒。
func (h *InterviewApiHandler) CreateInterview(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.InterviewCreateForm{}
	if err := c.ShouldBindJSON(args); err != nil {
		xl.Infof("invalid args in body, error %v", err)
		sendFail(c, xl, model.NewResponseErrorBadRequest())
		return
	}
	args.FillDefault()
	if err := args.Validate(); err != nil {
		xl.Infof("form validation error: %v", err)
		sendFail(c, xl, model.NewResponseErrorValidation(err))
		return
	}
	in := args.ToInterview()
	if err := h.checkSlot(c, xl, in, ""); err != nil {
		sendError(c, xl, err)
		return
	}
	created, err := h.Interview.Create(requestContext(c), xl, in)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	xl.Infof("interview %s created by %s for application %s", created.ID, actorOf(c), created.ApplicationID)

	if args.TemplateID != "" && h.Templates != nil {
		if _, err := h.Templates.RecordUsage(xl, args.TemplateID); err != nil {
			xl.Warnf("failed to record usage of template %s, error %v", args.TemplateID, err)
		}
	}
	if h.Reminders != nil {
		if args.SendConfirmation {
			h.Reminders.Notify(xl, *created, model.ReminderKindConfirmation)
		}
		h.Reminders.PlanDefault(xl, *created)
	}
	h.emit(c, xl, model.InterviewEventCreated, *created)
	sendSuccess(c, xl, &model.UpsertInterviewResponse{ID: created.ID, Interview: *created})
}

// UpdateInterview 部分更新面试，改变时间时先检查可用性。
func (h *InterviewApiHandler) UpdateInterview(c *gin.Context) {
	xl := xlogOf(c)
	id := c.Param("id")
	args := &form.InterviewUpdateForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	current, err := h.Interview.Get(requestContext(c), xl, id)
	if err != nil {
		sendInterviewError(c, xl, err)
		return
	}
	if err := args.ValidateAgainst(*current); err != nil {
		xl.Infof("update of interview %s (%s) rejected: %v", id, current.Status, err)
		sendFail(c, xl, model.NewResponseErrorValidation(err))
		return
	}
	next := args.Apply(*current)
	slotChanged := args.ChangesSlot(*current)
	if slotChanged {
		if err := h.checkSlot(c, xl, next, id); err != nil {
			sendError(c, xl, err)
			return
		}
	}
	updated, err := h.Interview.Update(requestContext(c), xl, id, next)
	if err != nil {
		sendInterviewError(c, xl, err)
		return
	}
	if slotChanged {
		h.replanReminders(xl, *updated)
	}
	h.emit(c, xl, model.InterviewEventUpdated, *updated)
	sendSuccess(c, xl, &model.UpsertInterviewResponse{ID: updated.ID, Interview: *updated})
}

// DeleteInterview 删除面试并取消其待发送的提醒。
func (h *InterviewApiHandler) DeleteInterview(c *gin.Context) {
	xl := xlogOf(c)
	id := c.Param("id")
	if err := h.Interview.Delete(requestContext(c), xl, id); err != nil {
		sendInterviewError(c, xl, err)
		return
	}
	if h.Reminders != nil {
		h.Reminders.CancelForInterview(xl, id)
	}
	h.emit(c, xl, model.InterviewEventDeleted, model.Interview{ID: id})
	sendSuccess(c, xl, nil)
}

// transition 读取当前状态，校验状态转换后执行 do。
func (h *InterviewApiHandler) transition(c *gin.Context, xl *xlog.Logger, to model.InterviewStatus,
	do func(ctx context.Context, current model.Interview) (*model.Interview, error)) (*model.Interview, bool) {
	ctx := requestContext(c)
	current, err := h.Interview.Get(ctx, xl, c.Param("id"))
	if err != nil {
		sendInterviewError(c, xl, err)
		return nil, false
	}
	if err := checkTransition(*current, to); err != nil {
		sendError(c, xl, err)
		return nil, false
	}
	updated, err := do(ctx, *current)
	if err != nil {
		sendInterviewError(c, xl, err)
		return nil, false
	}
	// 后端只返回部分字段时保留当前数据
	if updated.ID == "" {
		merged := *current
		merged.Status = to
		updated = &merged
	}
	xl.Infof("interview %s %s -> %s by %s", updated.ID, current.Status, updated.Status, actorOf(c))
	return updated, true
}

func (h *InterviewApiHandler) ConfirmInterview(c *gin.Context) {
	xl := xlogOf(c)
	updated, ok := h.transition(c, xl, model.InterviewStatusConfirmed, func(ctx context.Context, current model.Interview) (*model.Interview, error) {
		return h.Interview.Confirm(ctx, xl, current.ID)
	})
	if !ok {
		return
	}
	h.replanReminders(xl, *updated)
	h.emit(c, xl, model.InterviewEventStatusChanged, *updated)
	sendSuccess(c, xl, model.NewInterviewDetailResponse(*updated, h.today()))
}

func (h *InterviewApiHandler) StartInterview(c *gin.Context) {
	xl := xlogOf(c)
	updated, ok := h.transition(c, xl, model.InterviewStatusInProgress, func(ctx context.Context, current model.Interview) (*model.Interview, error) {
		return h.Interview.Start(ctx, xl, current.ID)
	})
	if !ok {
		return
	}
	if h.Reminders != nil {
		h.Reminders.CancelForInterview(xl, updated.ID)
	}
	h.emit(c, xl, model.InterviewEventStatusChanged, *updated)
	sendSuccess(c, xl, model.NewInterviewDetailResponse(*updated, h.today()))
}

func (h *InterviewApiHandler) CompleteInterview(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.CompleteInterviewForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	updated, ok := h.transition(c, xl, model.InterviewStatusCompleted, func(ctx context.Context, current model.Interview) (*model.Interview, error) {
		return h.Interview.Complete(ctx, xl, current.ID, admission.CompleteArgs{
			Result:           args.Result,
			Score:            args.Score,
			Notes:            args.Notes,
			Recommendations:  args.Recommendations,
			FollowUpRequired: args.FollowUpRequired,
			FollowUpNotes:    args.FollowUpNotes,
		})
	})
	if !ok {
		return
	}
	if h.Reminders != nil && args.FollowUpRequired {
		h.Reminders.Notify(xl, *updated, model.ReminderKindFollowUp)
	}
	h.emit(c, xl, model.InterviewEventStatusChanged, *updated)
	sendSuccess(c, xl, model.NewInterviewDetailResponse(*updated, h.today()))
}

func (h *InterviewApiHandler) CancelInterview(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.CancelInterviewForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	updated, ok := h.transition(c, xl, model.InterviewStatusCancelled, func(ctx context.Context, current model.Interview) (*model.Interview, error) {
		return h.Interview.Cancel(ctx, xl, current.ID, args.Reason)
	})
	if !ok {
		return
	}
	if h.Reminders != nil {
		h.Reminders.CancelForInterview(xl, updated.ID)
		if args.NotifyFamily {
			h.Reminders.Notify(xl, *updated, model.ReminderKindCancelled)
		}
	}
	h.emit(c, xl, model.InterviewEventStatusChanged, *updated)
	sendSuccess(c, xl, model.NewInterviewDetailResponse(*updated, h.today()))
}

// RescheduleInterview 改期。后端返回 409 时提示刷新日历后重试。
func (h *InterviewApiHandler) RescheduleInterview(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.RescheduleInterviewForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	ctx := requestContext(c)
	current, err := h.Interview.Get(ctx, xl, c.Param("id"))
	if err != nil {
		sendInterviewError(c, xl, err)
		return
	}
	if !model.CanBeRescheduled(current.Status) {
		sendError(c, xl, &transitionError{from: current.Status, to: model.InterviewStatusRescheduled})
		return
	}
	if err := args.ValidateAgainst(*current); err != nil {
		sendError(c, xl, err)
		return
	}
	target := *current
	target.ScheduledDate, target.ScheduledTime = args.NewDate, args.NewTime
	if err := h.checkSlot(c, xl, target, current.ID); err != nil {
		sendError(c, xl, err)
		return
	}
	updated, err := h.Interview.Reschedule(ctx, xl, current.ID, args.NewDate, args.NewTime, args.Reason)
	if err != nil {
		sendInterviewError(c, xl, err)
		return
	}
	if updated.ID == "" {
		updated = &target
	}
	h.replanReminders(xl, *updated)
	if h.Reminders != nil && args.NotifyFamily {
		h.Reminders.Notify(xl, *updated, model.ReminderKindRescheduled)
	}
	h.emit(c, xl, model.InterviewEventRescheduled, *updated)
	sendSuccess(c, xl, model.NewInterviewDetailResponse(*updated, h.today()))
}

func (h *InterviewApiHandler) MarkNoShow(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.NoShowForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	updated, ok := h.transition(c, xl, model.InterviewStatusNoShow, func(ctx context.Context, current model.Interview) (*model.Interview, error) {
		return h.Interview.MarkNoShow(ctx, xl, current.ID, args.Notes)
	})
	if !ok {
		return
	}
	if h.Reminders != nil {
		h.Reminders.CancelForInterview(xl, updated.ID)
	}
	h.emit(c, xl, model.InterviewEventStatusChanged, *updated)
	sendSuccess(c, xl, model.NewInterviewDetailResponse(*updated, h.today()))
}

// SendNotification 请求后端发送通知邮件。
func (h *InterviewApiHandler) SendNotification(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.NotificationForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	if err := h.Interview.SendNotification(requestContext(c), xl, c.Param("id"), args.Type); err != nil {
		sendInterviewError(c, xl, err)
		return
	}
	sendSuccess(c, xl, nil)
}

// CheckAvailability 检查面试官某个时间是否可用。
func (h *InterviewApiHandler) CheckAvailability(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.AvailabilityForm{}
	if !bindAndValidate(c, xl, args, true) {
		return
	}
	ok, err := h.Interview.CheckAvailability(requestContext(c), xl, args.InterviewerID, args.Date, args.Time, args.Duration, args.ExcludeID)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	resp := &model.AvailabilityResponse{Available: ok}
	if !ok {
		resp.Message = model.NewResponseErrorSlotUnavailable().Message
	}
	sendSuccess(c, xl, resp)
}

// AvailableSlotsResponse 可预约时间点，Selected 为仍然有效的已选时间。
type AvailableSlotsResponse struct {
	*model.DayAvailability
	Selected string `json:"selected"`
}

// AvailableSlots 查询可预约时间点，后端失败时返回默认时间点。
func (h *InterviewApiHandler) AvailableSlots(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.SlotQueryForm{}
	if !bindAndValidate(c, xl, args, true) {
		return
	}
	day := h.Slots.DaySlots(requestContext(c), xl, args.InterviewerID, args.Date, args.Duration)
	sendSuccess(c, xl, &AvailableSlotsResponse{
		DayAvailability: day,
		Selected:        schedule.ReconcileSelection(args.Selected, schedule.AvailableClocks(day.Slots)),
	})
}
