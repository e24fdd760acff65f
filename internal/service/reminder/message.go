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

package reminder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

// 消息模板，{{name}} 形式的占位符由 Render 替换。
var templates = map[model.ReminderKind]string{
	model.ReminderKindConfirmation: "Hola {{parentNames}}, confirmamos la entrevista {{type}} de {{studentName}} " +
		"el {{date}} a las {{time}} ({{duration}}) con {{interviewer}}. Lugar: {{location}}. {{schoolName}}",
	model.ReminderKindReminder24h: "Recordatorio: mañana {{date}} a las {{time}} es la entrevista de {{studentName}} " +
		"con {{interviewer}}. Lugar: {{location}}. Consultas al {{schoolPhone}}. {{schoolName}}",
	model.ReminderKindReminder2h: "Hola {{parentNames}}, la entrevista de {{studentName}} comienza hoy a las {{time}}. " +
		"Lugar: {{location}}. {{schoolName}}",
	model.ReminderKindRescheduled: "La entrevista de {{studentName}} fue reprogramada para el {{date}} a las {{time}}. " +
		"Motivo: {{reason}}. {{schoolName}}",
	model.ReminderKindCancelled: "La entrevista de {{studentName}} del {{date}} a las {{time}} fue cancelada. " +
		"Motivo: {{reason}}. Para reagendar llame al {{schoolPhone}}. {{schoolName}}",
	model.ReminderKindFollowUp: "Hola {{parentNames}}, gracias por asistir a la entrevista de {{studentName}}. " +
		"{{followUpNotes}} {{schoolName}}",
}

var subjects = map[model.ReminderKind]string{
	model.ReminderKindConfirmation: "Confirmación de entrevista de admisión",
	model.ReminderKindReminder24h:  "Recordatorio: entrevista de admisión mañana",
	model.ReminderKindReminder2h:   "Recordatorio: entrevista de admisión hoy",
	model.ReminderKindRescheduled:  "Entrevista de admisión reprogramada",
	model.ReminderKindCancelled:    "Entrevista de admisión cancelada",
	model.ReminderKindFollowUp:     "Seguimiento de entrevista de admisión",
}

var placeholder = regexp.MustCompile(`\{\{\s*([a-zA-Z]+)\s*\}\}`)

// School 消息中使用的学校信息。
type School struct {
	Name  string
	Phone string
}

// Values 面试对应的占位符取值。
func Values(i model.Interview, school School) map[string]string {
	location := i.Location
	if i.Mode == model.InterviewModeVirtual || location == "" && i.VirtualMeetingLink != "" {
		location = i.VirtualMeetingLink
	}
	parents := i.ParentNames
	if parents == "" {
		parents = "apoderado(a)"
	}
	reason := i.CancelReason
	if reason == "" {
		reason = "no informado"
	}
	return map[string]string{
		"studentName":   i.StudentName,
		"parentNames":   parents,
		"gradeApplied":  i.GradeApplied,
		"type":          strings.ToLower(i.Type.Label()),
		"date":          model.FormatDate(i.ScheduledDate),
		"time":          model.FormatTime(i.ScheduledTime),
		"duration":      model.FormatDuration(int(model.DurationOf(i).Minutes())),
		"interviewer":   i.InterviewerName,
		"location":      location,
		"reason":        reason,
		"followUpNotes": i.FollowUpNotes,
		"schoolName":    school.Name,
		"schoolPhone":   school.Phone,
	}
}

// Render 替换模板中的占位符，未知的占位符替换为空串。
func Render(tpl string, values map[string]string) string {
	out := placeholder.ReplaceAllStringFunc(tpl, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		return values[name]
	})
	return strings.Join(strings.Fields(out), " ")
}

// Compose 根据面试生成某种提醒的标题与正文，custom 不为空时作为正文模板。
func Compose(kind model.ReminderKind, i model.Interview, school School, custom string) (subject, body string, err error) {
	tpl := custom
	if tpl == "" {
		var ok bool
		if tpl, ok = templates[kind]; !ok {
			return "", "", fmt.Errorf("no template for reminder kind %s", kind)
		}
	}
	values := Values(i, school)
	return subjects[kind], Render(tpl, values), nil
}

var nonDigit = regexp.MustCompile(`\D`)

// NormalizePhone 智利手机号统一为 +569XXXXXXXX。
// 接受 "9 1234 5678"、"+56 9 1234 5678"、"56912345678" 以及 8 位本地号码。
func NormalizePhone(phone string) (string, error) {
	digits := nonDigit.ReplaceAllString(phone, "")
	digits = strings.TrimPrefix(digits, "00")
	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "569"):
		return "+" + digits, nil
	case len(digits) == 9 && strings.HasPrefix(digits, "9"):
		return "+56" + digits, nil
	case len(digits) == 8:
		return "+569" + digits, nil
	}
	return "", fmt.Errorf("invalid chilean mobile number %q", phone)
}
