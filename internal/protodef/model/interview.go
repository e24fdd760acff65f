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

import "time"

// InterviewStatus 面试状态，取值与招生后端一致。
type InterviewStatus string

// InterviewType 面试类型。
type InterviewType string

// InterviewMode 面试方式。
type InterviewMode string

// InterviewResult 面试结论。
type InterviewResult string

const (
	InterviewStatusPending     InterviewStatus = "PENDING"
	InterviewStatusScheduled   InterviewStatus = "SCHEDULED"
	InterviewStatusConfirmed   InterviewStatus = "CONFIRMED"
	InterviewStatusInProgress  InterviewStatus = "IN_PROGRESS"
	InterviewStatusCompleted   InterviewStatus = "COMPLETED"
	InterviewStatusCancelled   InterviewStatus = "CANCELLED"
	InterviewStatusNoShow      InterviewStatus = "NO_SHOW"
	InterviewStatusRescheduled InterviewStatus = "RESCHEDULED"
)

const (
	InterviewTypeIndividual    InterviewType = "INDIVIDUAL"
	InterviewTypeFamily        InterviewType = "FAMILY"
	InterviewTypeStudent       InterviewType = "STUDENT"
	InterviewTypePsychological InterviewType = "PSYCHOLOGICAL"
	InterviewTypeAcademic      InterviewType = "ACADEMIC"
	InterviewTypeBehavioral    InterviewType = "BEHAVIORAL"
	InterviewTypeCycleDirector InterviewType = "CYCLE_DIRECTOR"
)

const (
	InterviewModeInPerson InterviewMode = "IN_PERSON"
	InterviewModeVirtual  InterviewMode = "VIRTUAL"
	InterviewModeHybrid   InterviewMode = "HYBRID"
)

const (
	InterviewResultPositive      InterviewResult = "POSITIVE"
	InterviewResultNeutral       InterviewResult = "NEUTRAL"
	InterviewResultNegative      InterviewResult = "NEGATIVE"
	InterviewResultPendingReview InterviewResult = "PENDING_REVIEW"
)

// AllInterviewStatuses 按生命周期顺序排列的全部状态。
var AllInterviewStatuses = []InterviewStatus{
	InterviewStatusPending,
	InterviewStatusScheduled,
	InterviewStatusConfirmed,
	InterviewStatusInProgress,
	InterviewStatusCompleted,
	InterviewStatusCancelled,
	InterviewStatusNoShow,
	InterviewStatusRescheduled,
}

var AllInterviewTypes = []InterviewType{
	InterviewTypeIndividual,
	InterviewTypeFamily,
	InterviewTypeStudent,
	InterviewTypePsychological,
	InterviewTypeAcademic,
	InterviewTypeBehavioral,
	InterviewTypeCycleDirector,
}

var AllInterviewModes = []InterviewMode{
	InterviewModeInPerson,
	InterviewModeVirtual,
	InterviewModeHybrid,
}

var AllInterviewResults = []InterviewResult{
	InterviewResultPositive,
	InterviewResultNeutral,
	InterviewResultNegative,
	InterviewResultPendingReview,
}

var InterviewStatusLabels = map[InterviewStatus]string{
	InterviewStatusPending:     "Pendiente",
	InterviewStatusScheduled:   "Programada",
	InterviewStatusConfirmed:   "Confirmada",
	InterviewStatusInProgress:  "En progreso",
	InterviewStatusCompleted:   "Completada",
	InterviewStatusCancelled:   "Cancelada",
	InterviewStatusNoShow:      "No asistió",
	InterviewStatusRescheduled: "Reprogramada",
}

var InterviewTypeLabels = map[InterviewType]string{
	InterviewTypeIndividual:    "Individual",
	InterviewTypeFamily:        "Familiar",
	InterviewTypeStudent:       "Estudiante",
	InterviewTypePsychological: "Psicológica",
	InterviewTypeAcademic:      "Académica",
	InterviewTypeBehavioral:    "Conductual",
	InterviewTypeCycleDirector: "Director de ciclo",
}

var InterviewModeLabels = map[InterviewMode]string{
	InterviewModeInPerson: "Presencial",
	InterviewModeVirtual:  "Virtual",
	InterviewModeHybrid:   "Híbrida",
}

var InterviewResultLabels = map[InterviewResult]string{
	InterviewResultPositive:      "Positiva",
	InterviewResultNeutral:       "Neutral",
	InterviewResultNegative:      "Negativa",
	InterviewResultPendingReview: "Pendiente de revisión",
}

// InterviewStatusColors 状态对应的前端徽章颜色。
var InterviewStatusColors = map[InterviewStatus]string{
	InterviewStatusPending:     "gray",
	InterviewStatusScheduled:   "blue",
	InterviewStatusConfirmed:   "green",
	InterviewStatusInProgress:  "yellow",
	InterviewStatusCompleted:   "emerald",
	InterviewStatusCancelled:   "red",
	InterviewStatusNoShow:      "orange",
	InterviewStatusRescheduled: "purple",
}

func (s InterviewStatus) IsValid() bool {
	_, ok := InterviewStatusLabels[s]
	return ok
}

func (s InterviewStatus) Label() string {
	if label, ok := InterviewStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (t InterviewType) IsValid() bool {
	_, ok := InterviewTypeLabels[t]
	return ok
}

func (t InterviewType) Label() string {
	if label, ok := InterviewTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func (m InterviewMode) IsValid() bool {
	_, ok := InterviewModeLabels[m]
	return ok
}

func (m InterviewMode) Label() string {
	if label, ok := InterviewModeLabels[m]; ok {
		return label
	}
	return string(m)
}

func (r InterviewResult) IsValid() bool {
	_, ok := InterviewResultLabels[r]
	return ok
}

func (r InterviewResult) Label() string {
	if label, ok := InterviewResultLabels[r]; ok {
		return label
	}
	return string(r)
}

// Interview 面试，字段对应前端使用的扁平结构。
type Interview struct {
	ID                    string          `json:"id"`
	ApplicationID         string          `json:"applicationId"`
	StudentName           string          `json:"studentName"`
	ParentNames           string          `json:"parentNames"`
	GradeApplied          string          `json:"gradeApplied"`
	ContactEmail          string          `json:"contactEmail,omitempty"`
	ContactPhone          string          `json:"contactPhone,omitempty"`
	InterviewerID         string          `json:"interviewerId"`
	InterviewerName       string          `json:"interviewerName"`
	SecondInterviewerID   string          `json:"secondInterviewerId,omitempty"`
	SecondInterviewerName string          `json:"secondInterviewerName,omitempty"`
	Status                InterviewStatus `json:"status"`
	Type                  InterviewType   `json:"type"`
	Mode                  InterviewMode   `json:"mode"`
	// ScheduledDate YYYY-MM-DD
	ScheduledDate string `json:"scheduledDate"`
	// ScheduledTime HH:mm
	ScheduledTime      string          `json:"scheduledTime"`
	Duration           int             `json:"duration"`
	Location           string          `json:"location,omitempty"`
	VirtualMeetingLink string          `json:"virtualMeetingLink,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	Preparation        string          `json:"preparation,omitempty"`
	Result             InterviewResult `json:"result,omitempty"`
	Score              *float64        `json:"score,omitempty"`
	Recommendations    string          `json:"recommendations,omitempty"`
	FollowUpRequired   bool            `json:"followUpRequired"`
	FollowUpNotes      string          `json:"followUpNotes,omitempty"`
	CancelReason       string          `json:"cancelReason,omitempty"`
	CreatedAt          *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time      `json:"updatedAt,omitempty"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty"`
}

// InterviewFilters 面试列表的过滤条件，Page 从0开始。
type InterviewFilters struct {
	Status        InterviewStatus `form:"status" json:"status,omitempty"`
	Type          InterviewType   `form:"type" json:"type,omitempty"`
	Mode          InterviewMode   `form:"mode" json:"mode,omitempty"`
	InterviewerID string          `form:"interviewerId" json:"interviewerId,omitempty"`
	ApplicationID string          `form:"applicationId" json:"applicationId,omitempty"`
	DateFrom      string          `form:"dateFrom" json:"dateFrom,omitempty"`
	DateTo        string          `form:"dateTo" json:"dateTo,omitempty"`
	Search        string          `form:"search" json:"search,omitempty"`
	Page          int             `form:"page" json:"page"`
	Size          int             `form:"size" json:"size"`
}

// Filtered 是否设置了分页以外的筛选条件。
func (f InterviewFilters) Filtered() bool {
	return f.Status != "" || f.Type != "" || f.Mode != "" || f.InterviewerID != "" || f.ApplicationID != "" ||
		f.DateFrom != "" || f.DateTo != "" || f.Search != ""
}

// InterviewPage 一页面试及分页信息。
type InterviewPage struct {
	Interviews    []Interview `json:"interviews"`
	TotalElements int         `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
}

// InterviewStats 面试统计，比例为百分数并保留一位小数，仅用于展示。
type InterviewStats struct {
	Total            int                     `json:"total"`
	ByStatus         map[InterviewStatus]int `json:"byStatus"`
	ByType           map[InterviewType]int   `json:"byType"`
	ByMode           map[InterviewMode]int   `json:"byMode"`
	ByInterviewer    map[string]int          `json:"byInterviewer"`
	CompletionRate   float64                 `json:"completionRate"`
	CancellationRate float64                 `json:"cancellationRate"`
	NoShowRate       float64                 `json:"noShowRate"`
	AverageScore     float64                 `json:"averageScore"`
	Today            int                     `json:"today"`
	Upcoming         int                     `json:"upcoming"`
	Overdue          int                     `json:"overdue"`
	FollowUpPending  int                     `json:"followUpPending"`
}
