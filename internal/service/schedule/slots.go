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
	"fmt"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

const (
	// SlotStep 相邻可预约时间点的间隔。
	SlotStep = 30 * time.Minute

	DefaultDayStart   = "09:00"
	DefaultDayEnd     = "17:00"
	DefaultLunchStart = "13:00"
	DefaultLunchEnd   = "14:00"
)

// minutesOf "09:30" -> 570，无法解析时返回 -1。
func minutesOf(clock string) int {
	h, m, ok := model.ParseClock(clock)
	if !ok {
		return -1
	}
	return h*60 + m
}

func clockOf(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeSlots 兼容后端返回的两种时间点格式："09:00" 字符串，
// 或 {"time":"09:00","available":true} / {"startTime":"09:00"} 对象。
// 不可用或格式错误的元素被丢弃，结果去重并排序。
func NormalizeSlots(raw gjson.Result) []string {
	seen := map[string]bool{}
	res := make([]string, 0)
	for _, item := range raw.Array() {
		var clock string
		switch {
		case item.Type == gjson.String:
			clock = item.String()
		case item.IsObject():
			if av := item.Get("available"); av.Exists() && !av.Bool() {
				continue
			}
			for _, key := range []string{"time", "startTime", "start"} {
				if v := item.Get(key); v.Exists() && v.Type == gjson.String {
					clock = v.String()
					break
				}
			}
		default:
			continue
		}
		clock = model.NormalizeTime(clock)
		if clock == "" || seen[clock] {
			continue
		}
		seen[clock] = true
		res = append(res, clock)
	}
	sort.Strings(res)
	return res
}

// ReconcileSelection 新的时间点列表中已不存在当前选择时返回空串。
func ReconcileSelection(selected string, slots []string) string {
	clock := model.NormalizeTime(selected)
	if clock == "" {
		return ""
	}
	for _, s := range slots {
		if model.NormalizeTime(s) == clock {
			return clock
		}
	}
	return ""
}

// DefaultSlots 后端不可用时的默认时间点：09:00 至 17:00 每 30 分钟，跳过 13:00-14:00 午休。
// duration<=0 时按 30 分钟计算。
func DefaultSlots(duration int) []string {
	if duration <= 0 {
		duration = int(SlotStep / time.Minute)
	}
	start, end := minutesOf(DefaultDayStart), minutesOf(DefaultDayEnd)
	lunchStart, lunchEnd := minutesOf(DefaultLunchStart), minutesOf(DefaultLunchEnd)
	step := int(SlotStep / time.Minute)

	res := make([]string, 0)
	for t := start; t+duration <= end; t += step {
		if t < lunchEnd && lunchStart < t+duration {
			continue
		}
		res = append(res, clockOf(t))
	}
	return res
}

// ToTimeSlots 将时间点列表转为全部可用的 TimeSlot。
func ToTimeSlots(clocks []string, duration int) []model.TimeSlot {
	if duration <= 0 {
		duration = model.DefaultInterviewDuration
	}
	res := make([]model.TimeSlot, 0, len(clocks))
	for _, c := range clocks {
		m := minutesOf(c)
		if m < 0 {
			continue
		}
		res = append(res, model.TimeSlot{Time: c, EndTime: clockOf(m + duration), Available: true})
	}
	return res
}
