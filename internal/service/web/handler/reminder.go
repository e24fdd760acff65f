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
	"github.com/gin-gonic/gin"

	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

type ReminderApiHandler struct {
	Interview InterviewInterface
	Reminders ReminderInterface
}

func NewReminderApiHandler(interview InterviewInterface, reminders ReminderInterface) *ReminderApiHandler {
	return &ReminderApiHandler{Interview: interview, Reminders: reminders}
}

// ReminderPage 一页提醒记录。
type ReminderPage struct {
	Reminders []model.ReminderMessage `json:"reminders"`
	Total     int                     `json:"total"`
	PageNum   int                     `json:"pageNum"`
	PageSize  int                     `json:"pageSize"`
}

// ListReminders 面试的待发送与已发送提醒，按时间排序分页。
func (h *ReminderApiHandler) ListReminders(c *gin.Context) {
	xl := xlogOf(c)
	list, err := h.Reminders.History(xl, c.Param("id"))
	if err != nil {
		sendError(c, xl, err)
		return
	}
	pageNum, pageSize := c.GetInt(model.PageNumContextKey), c.GetInt(model.PageSizeContextKey)
	if pageNum < 1 {
		pageNum = 1
	}
	if pageSize < 1 {
		pageSize = len(list)
	}
	from := (pageNum - 1) * pageSize
	if from > len(list) {
		from = len(list)
	}
	to := from + pageSize
	if to > len(list) {
		to = len(list)
	}
	sendSuccess(c, xl, &ReminderPage{
		Reminders: list[from:to],
		Total:     len(list),
		PageNum:   pageNum,
		PageSize:  pageSize,
	})
}

// ScheduleReminder 手动安排一条提醒。
func (h *ReminderApiHandler) ScheduleReminder(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.ReminderForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	i, err := h.Interview.Get(requestContext(c), xl, c.Param("id"))
	if err != nil {
		sendInterviewError(c, xl, err)
		return
	}
	msg, err := h.Reminders.Schedule(xl, *i, args, actorOf(c))
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, msg)
}

func (h *ReminderApiHandler) CancelReminder(c *gin.Context) {
	xl := xlogOf(c)
	msg, err := h.Reminders.Cancel(xl, c.Param("reminderId"))
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, msg)
}
