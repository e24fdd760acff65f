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

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
	// DefaultInterviewDuration 后端未返回时长时使用的默认值，单位分钟。
	DefaultInterviewDuration = 60
)

// interviewTransitions 状态迁移表。仅用于决定前端可用的操作，后端才是最终裁决者。
var interviewTransitions = map[InterviewStatus][]InterviewStatus{
	InterviewStatusPending:     {InterviewStatusScheduled, InterviewStatusCancelled},
	InterviewStatusScheduled:   {InterviewStatusConfirmed, InterviewStatusCancelled, InterviewStatusRescheduled, InterviewStatusNoShow},
	InterviewStatusConfirmed:   {InterviewStatusInProgress, InterviewStatusCancelled, InterviewStatusRescheduled, InterviewStatusNoShow},
	InterviewStatusInProgress:  {InterviewStatusCompleted, InterviewStatusCancelled},
	InterviewStatusCompleted:   {},
	InterviewStatusCancelled:   {InterviewStatusScheduled},
	InterviewStatusNoShow:      {InterviewStatusScheduled},
	InterviewStatusRescheduled: {InterviewStatusScheduled, InterviewStatusCancelled},
}

// CanTransitionTo 判断 from 是否可以直接迁移到 to。
func CanTransitionTo(from, to InterviewStatus) bool {
	for _, next := range interviewTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses 返回 from 可以直接迁移到的状态。
func NextStatuses(from InterviewStatus) []InterviewStatus {
	next := interviewTransitions[from]
	out := make([]InterviewStatus, len(next))
	copy(out, next)
	return out
}

func CanBeConfirmed(s InterviewStatus) bool { return CanTransitionTo(s, InterviewStatusConfirmed) }
func CanBeStarted(s InterviewStatus) bool   { return CanTransitionTo(s, InterviewStatusInProgress) }
func CanBeCompleted(s InterviewStatus) bool { return CanTransitionTo(s, InterviewStatusCompleted) }
func CanBeCancelled(s InterviewStatus) bool { return CanTransitionTo(s, InterviewStatusCancelled) }
func CanMarkNoShow(s InterviewStatus) bool  { return CanTransitionTo(s, InterviewStatusNoShow) }

// CanBeRescheduled 已取消或未出席的面试可以重新安排。
func CanBeRescheduled(s InterviewStatus) bool {
	return CanTransitionTo(s, InterviewStatusRescheduled) || CanTransitionTo(s, InterviewStatusScheduled) && s != InterviewStatusPending
}

// IsActive 面试仍会发生：已取消、已完成、未出席之外的状态。
func IsActive(s InterviewStatus) bool {
	switch s {
	case InterviewStatusCompleted, InterviewStatusCancelled, InterviewStatusNoShow:
		return false
	}
	return s.IsValid()
}

// RequiresSecondInterviewer 家庭面试需要第二位面试官。
func RequiresSecondInterviewer(t InterviewType) bool {
	return t == InterviewTypeFamily
}

// ParseClock 解析 "9:00"、"09:00"、"09:00:00" 形式的时间。
func ParseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, 0, false
	}
	return h, m, true
}

// NormalizeTime 将时间规范为 HH:mm，无法解析时返回空串。
func NormalizeTime(s string) string {
	h, m, ok := ParseClock(s)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// NormalizeDate 截取 ISO 日期时间中的日期部分，无法解析时返回空串。
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ""
	}
	return s
}

// ScheduledAt 面试开始时间，按 loc 解释日期与时间。
func ScheduledAt(i Interview, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation(DateLayout, NormalizeDate(i.ScheduledDate), loc)
	if err != nil {
		return time.Time{}, false
	}
	h, m, ok := ParseClock(i.ScheduledTime)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc), true
}

// DurationOf 面试时长，未设置时为默认时长。
func DurationOf(i Interview) time.Duration {
	if i.Duration <= 0 {
		return DefaultInterviewDuration * time.Minute
	}
	return time.Duration(i.Duration) * time.Minute
}

// EndsAt 面试结束时间。
func EndsAt(i Interview, loc *time.Location) (time.Time, bool) {
	start, ok := ScheduledAt(i, loc)
	if !ok {
		return time.Time{}, false
	}
	return start.Add(DurationOf(i)), true
}

// IsOverdue 面试结束时间已过但仍未结案。已完成、已取消与未出席的面试永远不算逾期。
func IsOverdue(i Interview, now time.Time) bool {
	switch i.Status {
	case InterviewStatusCompleted, InterviewStatusCancelled, InterviewStatusNoShow:
		return false
	}
	end, ok := EndsAt(i, now.Location())
	if !ok {
		return false
	}
	return now.After(end)
}

// IsUpcoming 面试处于有效状态且将在 within 内开始，within<=0 表示不限。
func IsUpcoming(i Interview, now time.Time, within time.Duration) bool {
	if !IsActive(i.Status) || i.Status == InterviewStatusInProgress {
		return false
	}
	start, ok := ScheduledAt(i, now.Location())
	if !ok || !start.After(now) {
		return false
	}
	return within <= 0 || start.Sub(now) <= within
}

// IsToday 面试日期是否为 now 所在的日期。
func IsToday(i Interview, now time.Time) bool {
	return NormalizeDate(i.ScheduledDate) == now.Format(DateLayout)
}

// Overlaps 判断两场面试的时间段是否重叠。
func Overlaps(a, b Interview, loc *time.Location) bool {
	as, ok1 := ScheduledAt(a, loc)
	bs, ok2 := ScheduledAt(b, loc)
	if !ok1 || !ok2 {
		return false
	}
	return as.Before(bs.Add(DurationOf(b))) && bs.Before(as.Add(DurationOf(a)))
}

// FormatDuration 90 -> "1h 30m"，45 -> "45m"，60 -> "1h"。
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

var (
	weekdayNames = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	monthNames   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
		"agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// MonthName 西班牙语月份名。
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// WeekdayName 西班牙语星期名。
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// FormatDate "2025-03-03" -> "lunes, 3 de marzo de 2025"，无法解析时原样返回。
func FormatDate(date string) string {
	d, err := time.Parse(DateLayout, NormalizeDate(date))
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %d de %s de %d", weekdayNames[d.Weekday()], d.Day(), monthNames[d.Month()-1], d.Year())
}

// FormatTime "09:00:00" -> "09:00"，无法解析时原样返回。
func FormatTime(t string) string {
	if n := NormalizeTime(t); n != "" {
		return n
	}
	return t
}

// FormatDateTime 日期与时间的展示文本。
func FormatDateTime(i Interview) string {
	return FormatDate(i.ScheduledDate) + " a las " + FormatTime(i.ScheduledTime)
}

// SortBySchedule 按日期与时间升序排列，相同时间保持原顺序。
func SortBySchedule(list []Interview) {
	sort.SliceStable(list, func(a, b int) bool {
		da, db := NormalizeDate(list[a].ScheduledDate), NormalizeDate(list[b].ScheduledDate)
		if da != db {
			return da < db
		}
		return NormalizeTime(list[a].ScheduledTime) < NormalizeTime(list[b].ScheduledTime)
	})
}
