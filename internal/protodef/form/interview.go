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

package form

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

var (
	RegTime = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

	ErrSameInterviewer     = fmt.Errorf("el segundo entrevistador debe ser distinto del primero")
	ErrSecondInterviewer   = fmt.Errorf("las entrevistas familiares requieren un segundo entrevistador")
	ErrFollowUpNotes       = fmt.Errorf("debe indicar las notas de seguimiento")
	ErrRescheduleSameSlot  = fmt.Errorf("la nueva fecha y hora deben ser distintas de las actuales")
	ErrScheduledInThePast  = fmt.Errorf("la fecha y hora deben ser futuras")
	ErrLocationRequired    = fmt.Errorf("debe indicar la ubicación de la entrevista presencial")
	ErrMeetingLinkRequired = fmt.Errorf("debe indicar el enlace de la reunión virtual")
	ErrSlotLocked          = fmt.Errorf("no se puede cambiar el horario de una entrevista finalizada o cancelada")
)

const (
	ErrTimeMsg     = "hora inválida, use HH:mm"
	ErrDateMsg     = "fecha inválida, use YYYY-MM-DD"
	ErrDurationMsg = "la duración debe estar entre 15 y 240 minutos"
	ErrReasonMsg   = "el motivo debe tener entre 5 y 500 caracteres"
	ErrScoreMsg    = "el puntaje debe estar entre 1 y 10"
)

// nowFunc 可在测试中替换。
var nowFunc = time.Now

func statusIn() validation.Rule {
	values := make([]interface{}, 0, len(model.AllInterviewStatuses))
	for _, s := range model.AllInterviewStatuses {
		values = append(values, s)
	}
	return validation.In(values...)
}

func typeIn() validation.Rule {
	values := make([]interface{}, 0, len(model.AllInterviewTypes))
	for _, t := range model.AllInterviewTypes {
		values = append(values, t)
	}
	return validation.In(values...).Error("tipo de entrevista inválido")
}

func modeIn() validation.Rule {
	values := make([]interface{}, 0, len(model.AllInterviewModes))
	for _, m := range model.AllInterviewModes {
		values = append(values, m)
	}
	return validation.In(values...).Error("modalidad inválida")
}

func resultIn() validation.Rule {
	values := make([]interface{}, 0, len(model.AllInterviewResults))
	for _, r := range model.AllInterviewResults {
		values = append(values, r)
	}
	return validation.In(values...).Error("resultado inválido")
}

// futureSlot 校验日期+时间晚于当前时间。
func futureSlot(date, clock string) error {
	at, ok := model.ScheduledAt(model.Interview{ScheduledDate: date, ScheduledTime: clock}, nowFunc().Location())
	if !ok {
		return nil
	}
	if !at.After(nowFunc()) {
		return ErrScheduledInThePast
	}
	return nil
}

type InterviewCreateForm struct {
	ApplicationID       string              `json:"applicationId" form:"applicationId"`
	InterviewerID       string              `json:"interviewerId" form:"interviewerId"`
	SecondInterviewerID string              `json:"secondInterviewerId" form:"secondInterviewerId"`
	Type                model.InterviewType `json:"type" form:"type"`
	Mode                model.InterviewMode `json:"mode" form:"mode"`
	ScheduledDate       string              `json:"scheduledDate" form:"scheduledDate"`
	ScheduledTime       string              `json:"scheduledTime" form:"scheduledTime"`
	Duration            int                 `json:"duration" form:"duration"`
	Location            string              `json:"location" form:"location"`
	VirtualMeetingLink  string              `json:"virtualMeetingLink" form:"virtualMeetingLink"`
	Notes               string              `json:"notes" form:"notes"`
	Preparation         string              `json:"preparation" form:"preparation"`
	TemplateID          string              `json:"templateId" form:"templateId"`
	// SendConfirmation 创建后立即发送确认提醒。
	SendConfirmation bool `json:"sendConfirmation" form:"sendConfirmation"`
}

// FillDefault 补全未填写的可选项。
func (i *InterviewCreateForm) FillDefault() {
	if i.Type == "" {
		i.Type = model.InterviewTypeIndividual
	}
	if i.Mode == "" {
		i.Mode = model.InterviewModeInPerson
	}
	if i.Duration == 0 {
		i.Duration = model.DefaultInterviewDuration
	}
	i.ScheduledTime = model.FormatTime(i.ScheduledTime)
}

func (i *InterviewCreateForm) Validate() error {
	if model.RequiresSecondInterviewer(i.Type) && i.SecondInterviewerID == "" {
		return ErrSecondInterviewer
	}
	if i.SecondInterviewerID != "" && i.SecondInterviewerID == i.InterviewerID {
		return ErrSameInterviewer
	}
	err := validation.ValidateStruct(i,
		validation.Field(&i.ApplicationID, validation.Required),
		validation.Field(&i.InterviewerID, validation.Required),
		validation.Field(&i.Type, validation.Required, typeIn()),
		validation.Field(&i.Mode, validation.Required, modeIn()),
		validation.Field(&i.ScheduledDate, validation.Required, validation.Date(model.DateLayout).Error(ErrDateMsg)),
		validation.Field(&i.ScheduledTime, validation.Required, validation.Match(RegTime).Error(ErrTimeMsg)),
		validation.Field(&i.Duration, validation.Min(15).Error(ErrDurationMsg), validation.Max(240).Error(ErrDurationMsg)),
		validation.Field(&i.Location, validation.Length(0, 200)),
		validation.Field(&i.VirtualMeetingLink, is.URL),
		validation.Field(&i.Notes, validation.Length(0, 2000)),
		validation.Field(&i.Preparation, validation.Length(0, 2000)),
	)
	if err != nil {
		return err
	}
	if i.Mode == model.InterviewModeInPerson && i.Location == "" {
		return ErrLocationRequired
	}
	if i.Mode == model.InterviewModeVirtual && i.VirtualMeetingLink == "" {
		return ErrMeetingLinkRequired
	}
	return futureSlot(i.ScheduledDate, i.ScheduledTime)
}

// ToInterview 转换为待创建的面试。
func (i *InterviewCreateForm) ToInterview() model.Interview {
	return model.Interview{
		ApplicationID:       i.ApplicationID,
		InterviewerID:       i.InterviewerID,
		SecondInterviewerID: i.SecondInterviewerID,
		Status:              model.InterviewStatusScheduled,
		Type:                i.Type,
		Mode:                i.Mode,
		ScheduledDate:       i.ScheduledDate,
		ScheduledTime:       i.ScheduledTime,
		Duration:            i.Duration,
		Location:            i.Location,
		VirtualMeetingLink:  i.VirtualMeetingLink,
		Notes:               i.Notes,
		Preparation:         i.Preparation,
	}
}

// InterviewUpdateForm 部分更新，nil 表示不修改。
type InterviewUpdateForm struct {
	InterviewerID       *string              `json:"interviewerId"`
	SecondInterviewerID *string              `json:"secondInterviewerId"`
	Type                *model.InterviewType `json:"type"`
	Mode                *model.InterviewMode `json:"mode"`
	ScheduledDate       *string              `json:"scheduledDate"`
	ScheduledTime       *string              `json:"scheduledTime"`
	Duration            *int                 `json:"duration"`
	Location            *string              `json:"location"`
	VirtualMeetingLink  *string              `json:"virtualMeetingLink"`
	Notes               *string              `json:"notes"`
	Preparation         *string              `json:"preparation"`
	FollowUpRequired    *bool                `json:"followUpRequired"`
	FollowUpNotes       *string              `json:"followUpNotes"`
}

func (u *InterviewUpdateForm) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.InterviewerID, validation.NilOrNotEmpty),
		validation.Field(&u.Type, validation.NilOrNotEmpty, typeIn()),
		validation.Field(&u.Mode, validation.NilOrNotEmpty, modeIn()),
		validation.Field(&u.ScheduledDate, validation.NilOrNotEmpty, validation.Date(model.DateLayout).Error(ErrDateMsg)),
		validation.Field(&u.ScheduledTime, validation.NilOrNotEmpty, validation.Match(RegTime).Error(ErrTimeMsg)),
		validation.Field(&u.Duration, validation.Min(15).Error(ErrDurationMsg), validation.Max(240).Error(ErrDurationMsg)),
		validation.Field(&u.VirtualMeetingLink, is.URL),
		validation.Field(&u.Notes, validation.Length(0, 2000)),
	)
}

// Apply 将更新合并到 current 并返回结果。
func (u *InterviewUpdateForm) Apply(current model.Interview) model.Interview {
	next := current
	if u.InterviewerID != nil {
		next.InterviewerID = *u.InterviewerID
	}
	if u.SecondInterviewerID != nil {
		next.SecondInterviewerID = *u.SecondInterviewerID
	}
	if u.Type != nil {
		next.Type = *u.Type
	}
	if u.Mode != nil {
		next.Mode = *u.Mode
	}
	if u.ScheduledDate != nil {
		next.ScheduledDate = *u.ScheduledDate
	}
	if u.ScheduledTime != nil {
		next.ScheduledTime = *u.ScheduledTime
	}
	if u.Duration != nil {
		next.Duration = *u.Duration
	}
	if u.Location != nil {
		next.Location = *u.Location
	}
	if u.VirtualMeetingLink != nil {
		next.VirtualMeetingLink = *u.VirtualMeetingLink
	}
	if u.Notes != nil {
		next.Notes = *u.Notes
	}
	if u.Preparation != nil {
		next.Preparation = *u.Preparation
	}
	if u.FollowUpRequired != nil {
		next.FollowUpRequired = *u.FollowUpRequired
	}
	if u.FollowUpNotes != nil {
		next.FollowUpNotes = *u.FollowUpNotes
	}
	return next
}

// ValidateAgainst 合并后的面试需满足创建时的规则，已结束的面试不能修改时间。
func (u *InterviewUpdateForm) ValidateAgainst(current model.Interview) error {
	next := u.Apply(current)
	slotChanged := u.ChangesSlot(current)
	if slotChanged && !model.IsActive(current.Status) {
		return ErrSlotLocked
	}
	if model.RequiresSecondInterviewer(next.Type) && next.SecondInterviewerID == "" {
		return ErrSecondInterviewer
	}
	if next.SecondInterviewerID != "" && next.SecondInterviewerID == next.InterviewerID {
		return ErrSameInterviewer
	}
	if next.Mode == model.InterviewModeInPerson && next.Location == "" {
		return ErrLocationRequired
	}
	if next.Mode == model.InterviewModeVirtual && next.VirtualMeetingLink == "" {
		return ErrMeetingLinkRequired
	}
	if slotChanged {
		return futureSlot(next.ScheduledDate, model.FormatTime(next.ScheduledTime))
	}
	return nil
}

// ChangesSlot 更新是否改变了面试官、日期、时间或时长。
func (u *InterviewUpdateForm) ChangesSlot(current model.Interview) bool {
	next := u.Apply(current)
	return next.InterviewerID != current.InterviewerID ||
		next.ScheduledDate != current.ScheduledDate ||
		model.NormalizeTime(next.ScheduledTime) != model.NormalizeTime(current.ScheduledTime) ||
		next.Duration != current.Duration
}

type CancelInterviewForm struct {
	Reason string `json:"reason" form:"reason"`
	// NotifyFamily 取消后通知家庭。
	NotifyFamily bool `json:"notifyFamily" form:"notifyFamily"`
}

func (f *CancelInterviewForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Reason, validation.Required, validation.RuneLength(5, 500).Error(ErrReasonMsg)),
	)
}

type RescheduleInterviewForm struct {
	NewDate      string `json:"newDate" form:"newDate"`
	NewTime      string `json:"newTime" form:"newTime"`
	Reason       string `json:"reason" form:"reason"`
	NotifyFamily bool   `json:"notifyFamily" form:"notifyFamily"`
}

func (f *RescheduleInterviewForm) Validate() error {
	f.NewTime = model.FormatTime(f.NewTime)
	err := validation.ValidateStruct(f,
		validation.Field(&f.NewDate, validation.Required, validation.Date(model.DateLayout).Error(ErrDateMsg)),
		validation.Field(&f.NewTime, validation.Required, validation.Match(RegTime).Error(ErrTimeMsg)),
		validation.Field(&f.Reason, validation.RuneLength(0, 500).Error(ErrReasonMsg)),
	)
	if err != nil {
		return err
	}
	return futureSlot(f.NewDate, f.NewTime)
}

// ValidateAgainst 新时间必须与当前时间不同。
func (f *RescheduleInterviewForm) ValidateAgainst(current model.Interview) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if model.NormalizeDate(current.ScheduledDate) == f.NewDate && model.NormalizeTime(current.ScheduledTime) == f.NewTime {
		return ErrRescheduleSameSlot
	}
	return nil
}

type CompleteInterviewForm struct {
	Result           model.InterviewResult `json:"result" form:"result"`
	Score            *float64              `json:"score" form:"score"`
	Notes            string                `json:"notes" form:"notes"`
	Recommendations  string                `json:"recommendations" form:"recommendations"`
	FollowUpRequired bool                  `json:"followUpRequired" form:"followUpRequired"`
	FollowUpNotes    string                `json:"followUpNotes" form:"followUpNotes"`
}

func (f *CompleteInterviewForm) Validate() error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.Result, validation.Required, resultIn()),
		validation.Field(&f.Score, validation.Min(1.0).Error(ErrScoreMsg), validation.Max(10.0).Error(ErrScoreMsg)),
		validation.Field(&f.Notes, validation.Length(0, 4000)),
		validation.Field(&f.Recommendations, validation.Length(0, 4000)),
	)
	if err != nil {
		return err
	}
	if f.FollowUpRequired && f.FollowUpNotes == "" {
		return ErrFollowUpNotes
	}
	return nil
}

type NoShowForm struct {
	Notes string `json:"notes" form:"notes"`
}

func (f *NoShowForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Notes, validation.Length(0, 1000)),
	)
}

// ValidateFilters 校验面试列表的查询参数并补全分页默认值。
func ValidateFilters(f *model.InterviewFilters) error {
	if f.Size <= 0 {
		f.Size = 20
	}
	if f.Page < 0 {
		f.Page = 0
	}
	return validation.ValidateStruct(f,
		validation.Field(&f.Status, statusIn()),
		validation.Field(&f.Type, typeIn()),
		validation.Field(&f.Mode, modeIn()),
		validation.Field(&f.DateFrom, validation.Date(model.DateLayout).Error(ErrDateMsg)),
		validation.Field(&f.DateTo, validation.Date(model.DateLayout).Error(ErrDateMsg)),
		validation.Field(&f.Size, validation.Max(200)),
	)
}
