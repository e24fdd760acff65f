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
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

// firstOf 返回第一个存在且非空的字段。
func firstOf(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null && v.String() != "" {
			return v
		}
	}
	return gjson.Result{}
}

func joinName(r gjson.Result) string {
	if !r.Exists() {
		return ""
	}
	if v := firstOf(r, "fullName", "name"); v.Exists() {
		return v.String()
	}
	parts := make([]string, 0, 3)
	for _, key := range []string{"firstName", "lastName", "paternalLastName", "maternalLastName"} {
		if v := r.Get(key).String(); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
}

func parseTimestamp(r gjson.Result) *time.Time {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if r.Type == gjson.Number {
		t := time.UnixMilli(r.Int())
		return &t
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, r.String()); err == nil {
			return &t
		}
	}
	return nil
}

// splitDateTime 兼容 "2025-03-10T10:00:00" 形式的日期字段。
func splitDateTime(s string) (date, clock string) {
	s = strings.TrimSpace(s)
	date = model.NormalizeDate(s)
	if i := strings.IndexAny(s, "T "); i > 0 && i+1 < len(s) {
		clock = model.NormalizeTime(strings.TrimSuffix(s[i+1:], "Z"))
	}
	return date, clock
}

// MapInterview 将后端的面试 DTO 映射为扁平的 Interview。
// interviewType 存在时原样使用，缺失时为 INDIVIDUAL。
func MapInterview(r gjson.Result) model.Interview {
	i := model.Interview{
		ID:                 r.Get("id").String(),
		ApplicationID:      firstOf(r, "applicationId", "application.id").String(),
		StudentName:        firstOf(r, "studentName").String(),
		ParentNames:        firstOf(r, "parentNames").String(),
		GradeApplied:       firstOf(r, "gradeApplied", "application.student.gradeApplied").String(),
		ContactEmail:       firstOf(r, "contactEmail", "parentEmail", "application.applicantUser.email", "application.father.email", "application.mother.email").String(),
		ContactPhone:       firstOf(r, "contactPhone", "parentPhone", "application.father.phone", "application.mother.phone").String(),
		InterviewerID:      firstOf(r, "interviewerId", "interviewer.id").String(),
		InterviewerName:    firstOf(r, "interviewerName").String(),
		Status:             model.InterviewStatus(r.Get("status").String()),
		Type:               model.InterviewTypeIndividual,
		Mode:               model.InterviewMode(firstOf(r, "interviewMode", "mode").String()),
		Duration:           int(r.Get("duration").Int()),
		Location:           r.Get("location").String(),
		VirtualMeetingLink: r.Get("virtualMeetingLink").String(),
		Notes:              r.Get("notes").String(),
		Preparation:        r.Get("preparation").String(),
		Result:             model.InterviewResult(r.Get("result").String()),
		Recommendations:    r.Get("recommendations").String(),
		FollowUpRequired:   r.Get("followUpRequired").Bool(),
		FollowUpNotes:      r.Get("followUpNotes").String(),
		CancelReason:       firstOf(r, "cancelReason", "cancellationReason").String(),
		CreatedAt:          parseTimestamp(r.Get("createdAt")),
		UpdatedAt:          parseTimestamp(r.Get("updatedAt")),
		CompletedAt:        parseTimestamp(r.Get("completedAt")),
	}
	if v := r.Get("interviewType"); v.Exists() && v.String() != "" {
		i.Type = model.InterviewType(v.String())
	}
	if i.Mode == "" {
		i.Mode = model.InterviewModeInPerson
	}
	if i.Status == "" {
		i.Status = model.InterviewStatusScheduled
	}
	if i.Duration <= 0 {
		i.Duration = model.DefaultInterviewDuration
	}
	if s := r.Get("score"); s.Exists() && s.Type == gjson.Number {
		score := s.Float()
		i.Score = &score
	}

	if i.StudentName == "" {
		i.StudentName = joinName(r.Get("application.student"))
	}
	if i.ParentNames == "" {
		names := make([]string, 0, 2)
		for _, p := range []string{"application.father", "application.mother"} {
			if n := joinName(r.Get(p)); n != "" {
				names = append(names, n)
			}
		}
		i.ParentNames = strings.Join(names, " y ")
	}
	if i.InterviewerName == "" {
		i.InterviewerName = joinName(r.Get("interviewer"))
	}
	i.SecondInterviewerID = firstOf(r, "secondInterviewerId", "secondInterviewer.id").String()
	i.SecondInterviewerName = firstOf(r, "secondInterviewerName").String()
	if i.SecondInterviewerName == "" {
		i.SecondInterviewerName = joinName(r.Get("secondInterviewer"))
	}

	rawDate := firstOf(r, "scheduledDate", "interviewDate").String()
	date, clockFromDate := splitDateTime(rawDate)
	i.ScheduledDate = date
	i.ScheduledTime = model.NormalizeTime(firstOf(r, "scheduledTime", "interviewTime").String())
	if i.ScheduledTime == "" {
		i.ScheduledTime = clockFromDate
	}
	return i
}

// MapInterviews 映射面试数组，跳过非对象元素。
func MapInterviews(r gjson.Result) []model.Interview {
	items := r.Array()
	res := make([]model.Interview, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		res = append(res, MapInterview(item))
	}
	return res
}

// MapInterviewPage 兼容数组、Spring 分页对象与 {interviews:[...]} 三种列表格式。
func MapInterviewPage(r gjson.Result, page, size int) *model.InterviewPage {
	p := &model.InterviewPage{Page: page, Size: size}
	switch {
	case r.IsArray():
		// 未分页的数组即全部结果
		p.Interviews = MapInterviews(r)
		p.TotalElements = len(p.Interviews)
		p.TotalPages = 1
	case r.Get("content").IsArray():
		p.Interviews = MapInterviews(r.Get("content"))
		p.TotalElements = int(r.Get("totalElements").Int())
		p.TotalPages = int(r.Get("totalPages").Int())
		if n := r.Get("number"); n.Exists() {
			p.Page = int(n.Int())
		}
		if s := r.Get("size"); s.Exists() && s.Int() > 0 {
			p.Size = int(s.Int())
		}
	case r.Get("interviews").IsArray():
		p.Interviews = MapInterviews(r.Get("interviews"))
		p.TotalElements = int(firstOf(r, "totalElements", "total").Int())
		p.TotalPages = int(r.Get("totalPages").Int())
	default:
		p.Interviews = []model.Interview{}
	}
	if p.TotalElements < len(p.Interviews) {
		p.TotalElements = len(p.Interviews)
	}
	if p.TotalPages == 0 && p.Size > 0 {
		p.TotalPages = (p.TotalElements + p.Size - 1) / p.Size
	}
	return p
}

// ToBackend 将 Interview 转为后端创建/更新接口使用的 DTO。
func ToBackend(i model.Interview) map[string]interface{} {
	dto := map[string]interface{}{
		"applicationId":    i.ApplicationID,
		"interviewerId":    i.InterviewerID,
		"status":           i.Status,
		"interviewType":    i.Type,
		"interviewMode":    i.Mode,
		"scheduledDate":    model.NormalizeDate(i.ScheduledDate),
		"scheduledTime":    model.NormalizeTime(i.ScheduledTime),
		"duration":         i.Duration,
		"followUpRequired": i.FollowUpRequired,
	}
	optional := map[string]string{
		"secondInterviewerId": i.SecondInterviewerID,
		"location":            i.Location,
		"virtualMeetingLink":  i.VirtualMeetingLink,
		"notes":               i.Notes,
		"preparation":         i.Preparation,
		"recommendations":     i.Recommendations,
		"followUpNotes":       i.FollowUpNotes,
		"result":              string(i.Result),
	}
	for k, v := range optional {
		if v != "" {
			dto[k] = v
		}
	}
	if i.Status == "" {
		delete(dto, "status")
	}
	if i.Score != nil {
		dto["score"] = *i.Score
	}
	return dto
}

// MapSchedule 映射面试官日程。
func MapSchedule(r gjson.Result) model.InterviewerSchedule {
	s := model.InterviewerSchedule{
		ID:            r.Get("id").String(),
		InterviewerID: firstOf(r, "interviewerId", "interviewer.id").String(),
		DayOfWeek:     model.DayOfWeek(strings.ToUpper(r.Get("dayOfWeek").String())),
		StartTime:     model.FormatTime(r.Get("startTime").String()),
		EndTime:       model.FormatTime(r.Get("endTime").String()),
		Year:          int(r.Get("year").Int()),
		SpecificDate:  model.NormalizeDate(r.Get("specificDate").String()),
		ScheduleType:  model.ScheduleType(r.Get("scheduleType").String()),
		IsActive:      true,
		Notes:         r.Get("notes").String(),
	}
	if v := r.Get("isActive"); v.Exists() {
		s.IsActive = v.Bool()
	}
	if s.ScheduleType == "" {
		s.ScheduleType = model.ScheduleTypeRecurring
		if s.SpecificDate != "" {
			s.ScheduleType = model.ScheduleTypeSpecificDate
		}
	}
	return s
}

func MapSchedules(r gjson.Result) []model.InterviewerSchedule {
	items := r.Array()
	res := make([]model.InterviewerSchedule, 0, len(items))
	for _, item := range items {
		if item.IsObject() {
			res = append(res, MapSchedule(item))
		}
	}
	return res
}

// MapInterviewer 映射可安排面试的教职员。
func MapInterviewer(r gjson.Result) model.Interviewer {
	return model.Interviewer{
		ID:            r.Get("id").String(),
		FullName:      joinName(r),
		Email:         r.Get("email").String(),
		Role:          r.Get("role").String(),
		Subject:       r.Get("subject").String(),
		ScheduleCount: int(r.Get("scheduleCount").Int()),
	}
}

func MapInterviewers(r gjson.Result) []model.Interviewer {
	items := r.Array()
	res := make([]model.Interviewer, 0, len(items))
	for _, item := range items {
		if item.IsObject() {
			res = append(res, MapInterviewer(item))
		}
	}
	return res
}
