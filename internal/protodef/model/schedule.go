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

package model

// ScheduleType 面试官日程类型。
type ScheduleType string

const (
	// ScheduleTypeRecurring 每周固定时段。
	ScheduleTypeRecurring ScheduleType = "RECURRING"
	// ScheduleTypeSpecificDate 指定日期的额外时段。
	ScheduleTypeSpecificDate ScheduleType = "SPECIFIC_DATE"
	// ScheduleTypeException 指定日期不可用。
	ScheduleTypeException ScheduleType = "EXCEPTION"
)

// DayOfWeek 与后端一致的星期枚举，MONDAY..SUNDAY。
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// WorkWeek 周一至周日的顺序。
var WorkWeek = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var DayOfWeekLabels = map[DayOfWeek]string{
	Monday:    "Lunes",
	Tuesday:   "Martes",
	Wednesday: "Miércoles",
	Thursday:  "Jueves",
	Friday:    "Viernes",
	Saturday:  "Sábado",
	Sunday:    "Domingo",
}

// InterviewerSchedule 面试官的一段可预约时间。
type InterviewerSchedule struct {
	ID            string       `json:"id"`
	InterviewerID string       `json:"interviewerId"`
	DayOfWeek     DayOfWeek    `json:"dayOfWeek,omitempty"`
	StartTime     string       `json:"startTime"`
	EndTime       string       `json:"endTime"`
	Year          int          `json:"year,omitempty"`
	SpecificDate  string       `json:"specificDate,omitempty"`
	ScheduleType  ScheduleType `json:"scheduleType"`
	IsActive      bool         `json:"isActive"`
	Notes         string       `json:"notes,omitempty"`
}

// Interviewer 可安排面试的教职员。
type Interviewer struct {
	ID            string `json:"id"`
	FullName      string `json:"fullName"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	Subject       string `json:"subject,omitempty"`
	ScheduleCount int    `json:"scheduleCount"`
}

// TimeSlot 某面试官某天的一个可预约时间点。
type TimeSlot struct {
	Time      string `json:"time"`
	EndTime   string `json:"endTime,omitempty"`
	Available bool   `json:"available"`
}

// DayAvailability 一天内的可预约时间。
type DayAvailability struct {
	InterviewerID string     `json:"interviewerId"`
	Date          string     `json:"date"`
	Duration      int        `json:"duration"`
	Slots         []TimeSlot `json:"slots"`
	// Fallback 为 true 表示后端不可用，返回的是默认时间段。
	Fallback bool `json:"fallback"`
}

// WeeklySchedule 按星期分组的面试官日程。
type WeeklySchedule struct {
	Day     DayOfWeek             `json:"day"`
	Label   string                `json:"label"`
	Blocks  []InterviewerSchedule `json:"blocks"`
	Minutes int                   `json:"minutes"`
}
