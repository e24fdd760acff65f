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
	"sort"
	"strconv"
	"time"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

// Day 日历中的一天。
type Day struct {
	Date       string            `json:"date"`
	Day        int               `json:"day"`
	InMonth    bool              `json:"inMonth"`
	IsToday    bool              `json:"isToday"`
	IsWeekend  bool              `json:"isWeekend"`
	Interviews []model.Interview `json:"interviews"`
}

// Month 以周一为一周第一天的月视图。
type Month struct {
	Year      int      `json:"year"`
	Month     int      `json:"month"`
	Title     string   `json:"title"`
	Weeks     [][]Day  `json:"weeks"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Total     int      `json:"total"`
	DayLabels []string `json:"dayLabels"`
}

var dayLabels = []string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"}

// GridRange 月视图覆盖的日期范围（含首尾），用于向后端查询。
func GridRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// 周一为 0
	offset := (int(first.Weekday()) + 6) % 7
	start := first.AddDate(0, 0, -offset)
	last := first.AddDate(0, 1, -1)
	tail := 6 - (int(last.Weekday())+6)%7
	end := last.AddDate(0, 0, tail)
	return start, end
}

// groupByDate 按日期分组并按时间排序。
func groupByDate(interviews []model.Interview) map[string][]model.Interview {
	res := map[string][]model.Interview{}
	for _, i := range interviews {
		d := model.NormalizeDate(i.ScheduledDate)
		if d == "" {
			continue
		}
		res[d] = append(res[d], i)
	}
	for _, list := range res {
		sortByTime(list)
	}
	return res
}

func sortByTime(list []model.Interview) {
	sort.SliceStable(list, func(a, b int) bool {
		return model.NormalizeTime(list[a].ScheduledTime) < model.NormalizeTime(list[b].ScheduledTime)
	})
}

// MonthGrid 构建月视图，today 决定 IsToday 标记。
func MonthGrid(year int, month time.Month, interviews []model.Interview, today time.Time) *Month {
	start, end := GridRange(year, month)
	byDate := groupByDate(interviews)
	todayStr := today.Format(model.DateLayout)

	m := &Month{
		Year:      year,
		Month:     int(month),
		Title:     model.MonthName(month) + " " + strconv.Itoa(year),
		From:      start.Format(model.DateLayout),
		To:        end.Format(model.DateLayout),
		DayLabels: dayLabels,
	}
	var week []Day
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(model.DateLayout)
		list := byDate[date]
		if list == nil {
			list = []model.Interview{}
		}
		inMonth := d.Month() == month
		if inMonth {
			m.Total += len(list)
		}
		week = append(week, Day{
			Date:       date,
			Day:        d.Day(),
			InMonth:    inMonth,
			IsToday:    date == todayStr,
			IsWeekend:  d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
			Interviews: list,
		})
		if len(week) == 7 {
			m.Weeks = append(m.Weeks, week)
			week = nil
		}
	}
	return m
}

// WeekView 以 anchor 所在周的周一开始的 7 天。
func WeekView(anchor time.Time, interviews []model.Interview, today time.Time) []Day {
	offset := (int(anchor.Weekday()) + 6) % 7
	monday := time.Date(anchor.Year(), anchor.Month(), anchor.Day()-offset, 0, 0, 0, 0, time.UTC)
	byDate := groupByDate(interviews)
	todayStr := today.Format(model.DateLayout)
	res := make([]Day, 0, 7)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		date := d.Format(model.DateLayout)
		list := byDate[date]
		if list == nil {
			list = []model.Interview{}
		}
		res = append(res, Day{
			Date:       date,
			Day:        d.Day(),
			InMonth:    d.Month() == anchor.Month(),
			IsToday:    date == todayStr,
			IsWeekend:  i >= 5,
			Interviews: list,
		})
	}
	return res
}

// HourRow 日视图中的一个小时。
type HourRow struct {
	Hour       string            `json:"hour"`
	Interviews []model.Interview `json:"interviews"`
}

// DayView 某天 fromHour 至 toHour（不含）之间按小时分组的面试，范围外的面试归入首尾行。
func DayView(date string, interviews []model.Interview, fromHour, toHour int) []HourRow {
	if toHour <= fromHour {
		return []HourRow{}
	}
	rows := make([]HourRow, 0, toHour-fromHour)
	for h := fromHour; h < toHour; h++ {
		rows = append(rows, HourRow{Hour: clock(h), Interviews: []model.Interview{}})
	}
	list := groupByDate(interviews)[model.NormalizeDate(date)]
	for _, i := range list {
		h, _, ok := model.ParseClock(i.ScheduledTime)
		if !ok {
			continue
		}
		idx := h - fromHour
		if idx < 0 {
			idx = 0
		}
		if idx >= len(rows) {
			idx = len(rows) - 1
		}
		rows[idx].Interviews = append(rows[idx].Interviews, i)
	}
	return rows
}

func clock(h int) string {
	return model.NormalizeTime(strconv.Itoa(h) + ":00")
}
