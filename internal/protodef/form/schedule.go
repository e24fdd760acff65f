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

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

var (
	ErrScheduleRange = fmt.Errorf("la hora de término debe ser posterior a la hora de inicio")
	ErrScheduleDay   = fmt.Errorf("los bloques recurrentes requieren el día de la semana")
	ErrScheduleDate  = fmt.Errorf("los bloques de fecha específica o excepción requieren la fecha")
)

func dayIn() validation.Rule {
	values := make([]interface{}, 0, len(model.WorkWeek))
	for _, d := range model.WorkWeek {
		values = append(values, d)
	}
	return validation.In(values...).Error("día inválido")
}

// ScheduleForm 面试官的一个日程时段。
type ScheduleForm struct {
	InterviewerID string             `json:"interviewerId"`
	ScheduleType  model.ScheduleType `json:"scheduleType"`
	DayOfWeek     model.DayOfWeek    `json:"dayOfWeek"`
	SpecificDate  string             `json:"specificDate"`
	StartTime     string             `json:"startTime"`
	EndTime       string             `json:"endTime"`
	Year          int                `json:"year"`
	Notes         string             `json:"notes"`
}

func (f *ScheduleForm) Validate() error {
	if f.ScheduleType == "" {
		f.ScheduleType = model.ScheduleTypeRecurring
	}
	f.StartTime = model.FormatTime(f.StartTime)
	f.EndTime = model.FormatTime(f.EndTime)
	err := validation.ValidateStruct(f,
		validation.Field(&f.ScheduleType, validation.In(
			model.ScheduleTypeRecurring, model.ScheduleTypeSpecificDate, model.ScheduleTypeException,
		).Error("tipo de horario inválido")),
		validation.Field(&f.DayOfWeek, dayIn()),
		validation.Field(&f.SpecificDate, validation.Date(model.DateLayout).Error(ErrDateMsg)),
		validation.Field(&f.StartTime, validation.Required, validation.Match(RegTime).Error(ErrTimeMsg)),
		validation.Field(&f.EndTime, validation.Required, validation.Match(RegTime).Error(ErrTimeMsg)),
		validation.Field(&f.Year, validation.Min(2000), validation.Max(2100)),
		validation.Field(&f.Notes, validation.Length(0, 500)),
	)
	if err != nil {
		return err
	}
	if f.EndTime <= f.StartTime {
		return ErrScheduleRange
	}
	if f.ScheduleType == model.ScheduleTypeRecurring && f.DayOfWeek == "" {
		return ErrScheduleDay
	}
	if f.ScheduleType != model.ScheduleTypeRecurring && f.SpecificDate == "" {
		return ErrScheduleDate
	}
	return nil
}

func (f *ScheduleForm) ToSchedule() model.InterviewerSchedule {
	return model.InterviewerSchedule{
		InterviewerID: f.InterviewerID,
		DayOfWeek:     f.DayOfWeek,
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
		Year:          f.Year,
		SpecificDate:  f.SpecificDate,
		ScheduleType:  f.ScheduleType,
		IsActive:      true,
		Notes:         f.Notes,
	}
}

// RecurringScheduleForm 一次提交面试官一年的每周时段。
type RecurringScheduleForm struct {
	Year   int            `json:"year"`
	Blocks []ScheduleForm `json:"blocks"`
}

func (f *RecurringScheduleForm) Validate() error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.Year, validation.Required, validation.Min(2000), validation.Max(2100)),
		validation.Field(&f.Blocks, validation.Required, validation.Length(1, 50)),
	)
	if err != nil {
		return err
	}
	for i := range f.Blocks {
		f.Blocks[i].ScheduleType = model.ScheduleTypeRecurring
		f.Blocks[i].Year = f.Year
		if err := f.Blocks[i].Validate(); err != nil {
			return fmt.Errorf("bloque %d: %w", i+1, err)
		}
	}
	return nil
}

// AvailabilityForm 检查面试官某个时间是否可用。
type AvailabilityForm struct {
	InterviewerID string `form:"interviewerId"`
	Date          string `form:"date"`
	Time          string `form:"time"`
	Duration      int    `form:"duration"`
	ExcludeID     string `form:"excludeId"`
}

func (f *AvailabilityForm) Validate() error {
	if f.Duration == 0 {
		f.Duration = model.DefaultInterviewDuration
	}
	f.Time = model.FormatTime(f.Time)
	return validation.ValidateStruct(f,
		validation.Field(&f.InterviewerID, validation.Required),
		validation.Field(&f.Date, validation.Required, validation.Date(model.DateLayout).Error(ErrDateMsg)),
		validation.Field(&f.Time, validation.Required, validation.Match(RegTime).Error(ErrTimeMsg)),
		validation.Field(&f.Duration, validation.Min(15).Error(ErrDurationMsg), validation.Max(240).Error(ErrDurationMsg)),
	)
}

// SlotQueryForm 查询面试官某天的可预约时间点，Selected 为当前已选的时间。
type SlotQueryForm struct {
	InterviewerID string `form:"interviewerId"`
	Date          string `form:"date"`
	Duration      int    `form:"duration"`
	Selected      string `form:"selected"`
}

func (f *SlotQueryForm) Validate() error {
	if f.Duration == 0 {
		f.Duration = model.DefaultInterviewDuration
	}
	return validation.ValidateStruct(f,
		validation.Field(&f.InterviewerID, validation.Required),
		validation.Field(&f.Date, validation.Required, validation.Date(model.DateLayout).Error(ErrDateMsg)),
		validation.Field(&f.Duration, validation.Min(15).Error(ErrDurationMsg), validation.Max(240).Error(ErrDurationMsg)),
	)
}
