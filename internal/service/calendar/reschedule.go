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
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/cloud/admission"
)

// Drop 把日历上的面试拖到新的日期（以及可选的新时间）。
type Drop struct {
	InterviewID string `json:"interviewId"`
	NewDate     string `json:"newDate"`
	// NewTime 为空时保留原来的时间。
	NewTime string `json:"newTime"`
	Reason  string `json:"reason"`
	// Known 前端已加载的面试，用于本地冲突检测，可能已过期。
	Known []model.Interview `json:"known,omitempty"`
}

func (d *Drop) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.InterviewID, validation.Required),
		validation.Field(&d.NewDate, validation.Required, validation.Date(model.DateLayout).Error(form.ErrDateMsg)),
		validation.Field(&d.NewTime, validation.Match(form.RegTime).Error(form.ErrTimeMsg)),
		validation.Field(&d.Reason, validation.RuneLength(0, 500)),
	)
}

// Proposal 拖拽后弹出确认框所需的信息。
type Proposal struct {
	Interview model.Interview `json:"interview"`
	NewDate   string          `json:"newDate"`
	NewTime   string          `json:"newTime"`
	Reason    string          `json:"reason,omitempty"`
	// Available 后端的可用性检查结果，Checked 为 false 时检查未能完成。
	Available bool `json:"available"`
	Checked   bool `json:"checked"`
	// Conflicts 本地数据中同一面试官时间重叠的面试。
	Conflicts []model.Interview `json:"conflicts"`
	Message   string            `json:"message,omitempty"`
}

// ConflictError 提交时后端返回 409。
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// IsConflict err 是否为 ConflictError。
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// ErrSameSlot 拖回原来的位置。
var ErrSameSlot = form.ErrRescheduleSameSlot

// ErrCannotReschedule 当前状态不能重新安排。
type ErrCannotReschedule struct {
	Status model.InterviewStatus
}

func (e *ErrCannotReschedule) Error() string {
	return fmt.Sprintf("interview in status %s cannot be rescheduled", e.Status)
}

// InterviewBackend 拖拽重新安排用到的后端接口。
type InterviewBackend interface {
	Get(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error)
	CheckAvailability(ctx context.Context, xl *xlog.Logger, interviewerID, date, clock string, duration int, excludeID string) (bool, error)
	Reschedule(ctx context.Context, xl *xlog.Logger, id, newDate, newTime, reason string) (*model.Interview, error)
	Update(ctx context.Context, xl *xlog.Logger, id string, in model.Interview) (*model.Interview, error)
}

// Rescheduler 日历拖拽重新安排：Plan 生成确认信息，Commit 提交到后端。
type Rescheduler struct {
	backend InterviewBackend
	loc     *time.Location
	xl      *xlog.Logger
}

func NewRescheduler(backend InterviewBackend, loc *time.Location) *Rescheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Rescheduler{
		backend: backend,
		loc:     loc,
		xl:      xlog.New("calendar rescheduler"),
	}
}

// Plan 读取面试、检查后端可用性并收集本地冲突，不修改任何数据。
func (r *Rescheduler) Plan(ctx context.Context, xl *xlog.Logger, drop Drop) (*Proposal, error) {
	if xl == nil {
		xl = r.xl
	}
	current, err := r.backend.Get(ctx, xl, drop.InterviewID)
	if err != nil {
		return nil, err
	}
	newTime := model.NormalizeTime(drop.NewTime)
	if newTime == "" {
		newTime = model.NormalizeTime(current.ScheduledTime)
	}
	newDate := model.NormalizeDate(drop.NewDate)
	if newDate == model.NormalizeDate(current.ScheduledDate) && newTime == model.NormalizeTime(current.ScheduledTime) {
		return nil, ErrSameSlot
	}
	if !model.CanBeRescheduled(current.Status) && current.Status != model.InterviewStatusPending {
		return nil, &ErrCannotReschedule{Status: current.Status}
	}

	p := &Proposal{
		Interview: *current,
		NewDate:   newDate,
		NewTime:   newTime,
		Reason:    drop.Reason,
		Conflicts: LocalConflicts(*current, newDate, newTime, drop.Known, r.loc),
	}
	available, err := r.backend.CheckAvailability(ctx, xl, current.InterviewerID, newDate, newTime, current.Duration, current.ID)
	if err != nil {
		// 检查失败不阻止拖拽，由提交时的后端结果决定
		xl.Warnf("availability check of interview %s failed, error %v", current.ID, err)
	} else {
		p.Checked = true
		p.Available = available
	}
	switch {
	case p.Checked && !p.Available:
		p.Message = "El entrevistador no está disponible en el horario seleccionado."
	case len(p.Conflicts) > 0:
		p.Message = fmt.Sprintf("El entrevistador tiene %d entrevista(s) en ese horario.", len(p.Conflicts))
	}
	return p, nil
}

// LocalConflicts 在已加载的面试中查找同一面试官且时间重叠的有效面试，不包括被移动的面试本身。
func LocalConflicts(moving model.Interview, newDate, newTime string, known []model.Interview, loc *time.Location) []model.Interview {
	moved := moving
	moved.ScheduledDate = newDate
	moved.ScheduledTime = newTime
	res := make([]model.Interview, 0)
	for _, other := range known {
		if other.ID == moving.ID || !model.IsActive(other.Status) {
			continue
		}
		if !sameInterviewer(moving, other) {
			continue
		}
		if model.Overlaps(moved, other, loc) {
			res = append(res, other)
		}
	}
	sortByTime(res)
	return res
}

func sameInterviewer(a, b model.Interview) bool {
	ids := func(i model.Interview) []string {
		res := []string{}
		if i.InterviewerID != "" {
			res = append(res, i.InterviewerID)
		}
		if i.SecondInterviewerID != "" {
			res = append(res, i.SecondInterviewerID)
		}
		return res
	}
	for _, x := range ids(a) {
		for _, y := range ids(b) {
			if x == y {
				return true
			}
		}
	}
	return false
}

// Commit 提交重新安排。待定状态的面试直接修改时间，其余调用后端的 reschedule。
// 后端返回 409 时返回 ConflictError，前端应刷新日历。
func (r *Rescheduler) Commit(ctx context.Context, xl *xlog.Logger, p *Proposal) (*model.Interview, error) {
	if xl == nil {
		xl = r.xl
	}
	var (
		updated *model.Interview
		err     error
	)
	if p.Interview.Status == model.InterviewStatusPending {
		in := p.Interview
		in.ScheduledDate = p.NewDate
		in.ScheduledTime = p.NewTime
		updated, err = r.backend.Update(ctx, xl, in.ID, in)
	} else {
		updated, err = r.backend.Reschedule(ctx, xl, p.Interview.ID, p.NewDate, p.NewTime, p.Reason)
	}
	if err != nil {
		if admission.IsConflict(err) {
			xl.Infof("reschedule of interview %s to %s %s rejected by backend: conflict", p.Interview.ID, p.NewDate, p.NewTime)
			return nil, &ConflictError{Message: model.ScheduleConflictMessage}
		}
		xl.Errorf("failed to reschedule interview %s, error %v", p.Interview.ID, err)
		return nil, err
	}
	if updated.ScheduledDate == "" {
		updated.ScheduledDate = p.NewDate
		updated.ScheduledTime = p.NewTime
	}
	return updated, nil
}
