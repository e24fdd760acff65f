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
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

var (
	RegVerificationCode = regexp.MustCompile(`^[0-9]{6}$`)

	ErrReminderTimeRequired = fmt.Errorf("debe indicar la fecha de envío o una antelación en minutos")
	ErrUnsupportedFormat    = fmt.Errorf("formato de exportación no soportado")
)

type EmailCodeForm struct {
	Email     string `json:"email" form:"email"`
	Rut       string `json:"rut" form:"rut"`
	FirstName string `json:"firstName" form:"firstName"`
}

func (f *EmailCodeForm) Validate() error {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	return validation.ValidateStruct(f,
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
		validation.Field(&f.Rut, rutRule),
	)
}

type VerifyCodeForm struct {
	Email string `json:"email" form:"email"`
	Code  string `json:"code" form:"code"`
}

func (f *VerifyCodeForm) Validate() error {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Code = strings.TrimSpace(f.Code)
	return validation.ValidateStruct(f,
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
		validation.Field(&f.Code, validation.Required, validation.Match(RegVerificationCode).Error("código inválido")),
	)
}

// ReminderForm 为某场面试手动安排一条提醒。
type ReminderForm struct {
	Channel model.ReminderChannel `json:"channel" form:"channel"`
	Kind    model.ReminderKind    `json:"kind" form:"kind"`
	// Recipient 为空时使用面试的联系方式。
	Recipient string `json:"recipient" form:"recipient"`
	// SendAt 与 MinutesBefore 二选一，都为空表示立即发送。
	SendAt        *time.Time `json:"sendAt" form:"sendAt"`
	MinutesBefore int        `json:"minutesBefore" form:"minutesBefore"`
	Immediate     bool       `json:"immediate" form:"immediate"`
	// CustomBody 覆盖模板内容。
	CustomBody string `json:"customBody" form:"customBody"`
}

func (f *ReminderForm) Validate() error {
	channels := make([]interface{}, 0, len(model.AllReminderChannels))
	for _, c := range model.AllReminderChannels {
		channels = append(channels, c)
	}
	kinds := make([]interface{}, 0, len(model.AllReminderKinds))
	for _, k := range model.AllReminderKinds {
		kinds = append(kinds, k)
	}
	err := validation.ValidateStruct(f,
		validation.Field(&f.Channel, validation.Required, validation.In(channels...).Error("canal inválido")),
		validation.Field(&f.Kind, validation.Required, validation.In(kinds...).Error("tipo de recordatorio inválido")),
		validation.Field(&f.MinutesBefore, validation.Min(0), validation.Max(7*24*60)),
		validation.Field(&f.CustomBody, validation.Length(0, 1000)),
	)
	if err != nil {
		return err
	}
	if !f.Immediate && f.SendAt == nil && f.MinutesBefore == 0 {
		return ErrReminderTimeRequired
	}
	return nil
}

// SendTime 计算提醒的发送时间，start 为面试开始时间。
func (f *ReminderForm) SendTime(start, now time.Time) time.Time {
	switch {
	case f.Immediate:
		return now
	case f.SendAt != nil:
		return *f.SendAt
	default:
		return start.Add(-time.Duration(f.MinutesBefore) * time.Minute)
	}
}

type ExportFormat string

const (
	ExportFormatXlsx ExportFormat = "xlsx"
	ExportFormatHTML ExportFormat = "html"
)

// ExportForm 导出参数，过滤条件沿用列表接口。
type ExportForm struct {
	Format ExportFormat `form:"format" json:"format"`
	// Upload 为 true 时上传到对象存储并返回下载地址。
	Upload bool   `form:"upload" json:"upload"`
	Title  string `form:"title" json:"title"`
	model.InterviewFilters
}

func (f *ExportForm) Validate() error {
	if f.Format == "" {
		f.Format = ExportFormatXlsx
	}
	f.Format = ExportFormat(strings.ToLower(string(f.Format)))
	if f.Format != ExportFormatXlsx && f.Format != ExportFormatHTML {
		return ErrUnsupportedFormat
	}
	if f.Title == "" {
		f.Title = "Reporte de entrevistas"
	}
	if f.Size <= 0 {
		f.Size = 1000
	}
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.RuneLength(1, 120)),
		validation.Field(&f.DateFrom, validation.Date(model.DateLayout).Error(ErrDateMsg)),
		validation.Field(&f.DateTo, validation.Date(model.DateLayout).Error(ErrDateMsg)),
	)
}

// NotificationForm 请求后端发送面试通知邮件。
type NotificationForm struct {
	Type string `json:"type" form:"type"`
}

func (f *NotificationForm) Validate() error {
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	if f.Type == "" {
		f.Type = "confirmation"
	}
	return validation.ValidateStruct(f,
		validation.Field(&f.Type, validation.In("confirmation", "reminder", "cancellation", "reschedule", "follow_up").Error("tipo de notificación inválido")),
	)
}
