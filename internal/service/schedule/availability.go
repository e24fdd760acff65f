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

package schedule

import (
	"sort"
	"time"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

var weekdays = map[time.Weekday]model.DayOfWeek{
	time.Monday:    model.Monday,
	time.Tuesday:   model.Tuesday,
	time.Wednesday: model.Wednesday,
	time.Thursday:  model.Thursday,
	time.Friday:    model.Friday,
	time.Saturday:  model.Saturday,
	time.Sunday:    model.Sunday,
}

// DayOfWeekOf time.Weekday 对应的 DayOfWeek。
func DayOfWeekOf(d time.Weekday) model.DayOfWeek {
	return weekdays[d]
}

type window struct {
	start, end int
}

func (w window) overlaps(start, end int) bool {
	return w.start < end && start < w.end
}

// appliesOn 日程在 date 当天是否生效。
func appliesOn(s model.InterviewerSchedule, date time.Time) bool {
	if !s.IsActive {
		return false
	}
	switch s.ScheduleType {
	case model.ScheduleTypeSpecificDate, model.ScheduleTypeException:
		return s.SpecificDate == date.Format(model.DateLayout)
	default:
		if s.Year > 0 && s.Year != date.Year() {
			return false
		}
		return s.DayOfWeek == DayOfWeekOf(date.Weekday())
	}
}

// GenerateSlots 根据面试官的每周日程与指定日期的日程计算某天的时间点，
// 扣除例外日程与已安排的面试。例外日程未填写时间时整天不可用。
func GenerateSlots(schedules []model.InterviewerSchedule, date string, duration int, taken []model.Interview) []model.TimeSlot {
	day, err := time.Parse(model.DateLayout, model.NormalizeDate(date))
	if err != nil {
		return []model.TimeSlot{}
	}
	if duration <= 0 {
		duration = model.DefaultInterviewDuration
	}

	var open, blocked []window
	for _, s := range schedules {
		if !appliesOn(s, day) {
			continue
		}
		start, end := minutesOf(s.StartTime), minutesOf(s.EndTime)
		if s.ScheduleType == model.ScheduleTypeException {
			if start < 0 || end < 0 {
				return []model.TimeSlot{}
			}
			blocked = append(blocked, window{start, end})
			continue
		}
		if start < 0 || end <= start {
			continue
		}
		open = append(open, window{start, end})
	}
	for _, i := range taken {
		if !model.IsActive(i.Status) || model.NormalizeDate(i.ScheduledDate) != day.Format(model.DateLayout) {
			continue
		}
		start := minutesOf(i.ScheduledTime)
		if start < 0 {
			continue
		}
		blocked = append(blocked, window{start, start + int(model.DurationOf(i)/time.Minute)})
	}

	step := int(SlotStep / time.Minute)
	byTime := map[int]model.TimeSlot{}
	for _, w := range open {
		for t := w.start; t+duration <= w.end; t += step {
			if _, ok := byTime[t]; ok {
				continue
			}
			slot := model.TimeSlot{Time: clockOf(t), EndTime: clockOf(t + duration), Available: true}
			for _, b := range blocked {
				if b.overlaps(t, t+duration) {
					slot.Available = false
					break
				}
			}
			byTime[t] = slot
		}
	}

	starts := make([]int, 0, len(byTime))
	for t := range byTime {
		starts = append(starts, t)
	}
	sort.Ints(starts)
	res := make([]model.TimeSlot, 0, len(starts))
	for _, t := range starts {
		res = append(res, byTime[t])
	}
	return res
}

// AvailableClocks 仅保留可用时间点。
func AvailableClocks(slots []model.TimeSlot) []string {
	res := make([]string, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			res = append(res, s.Time)
		}
	}
	return res
}

// WeeklySummary 按星期分组面试官的每周固定日程，只包含有日程的日期。
func WeeklySummary(schedules []model.InterviewerSchedule) []model.WeeklySchedule {
	byDay := map[model.DayOfWeek][]model.InterviewerSchedule{}
	for _, s := range schedules {
		if !s.IsActive || s.ScheduleType != model.ScheduleTypeRecurring || s.DayOfWeek == "" {
			continue
		}
		byDay[s.DayOfWeek] = append(byDay[s.DayOfWeek], s)
	}
	res := make([]model.WeeklySchedule, 0, len(byDay))
	for _, day := range model.WorkWeek {
		blocks, ok := byDay[day]
		if !ok {
			continue
		}
		sort.Slice(blocks, func(i, j int) bool {
			return minutesOf(blocks[i].StartTime) < minutesOf(blocks[j].StartTime)
		})
		total := 0
		for _, b := range blocks {
			if d := minutesOf(b.EndTime) - minutesOf(b.StartTime); d > 0 {
				total += d
			}
		}
		res = append(res, model.WeeklySchedule{
			Day:     day,
			Label:   model.DayOfWeekLabels[day],
			Blocks:  blocks,
			Minutes: total,
		})
	}
	return res
}
