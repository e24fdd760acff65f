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
	"time"
)

// StorageEntryDo 键值存储中的一条记录，键名沿用前端的本地存储键，值为 JSON 文本。
type StorageEntryDo struct {
	Key        string    `json:"key" bson:"_id"`
	Value      string    `json:"value" bson:"value"`
	UpdateTime time.Time `json:"updateTime" bson:"updateTime"`
	// ExpireAt 为零值表示永不过期。
	ExpireAt time.Time `json:"expireAt,omitempty" bson:"expireAt,omitempty"`
}

// Expired 记录是否已过期。
func (e *StorageEntryDo) Expired(now time.Time) bool {
	return !e.ExpireAt.IsZero() && !now.Before(e.ExpireAt)
}

// VerificationState 存储在 verification_<email> 下的邮箱验证状态。
type VerificationState struct {
	Email      string    `json:"email" bson:"email"`
	Verified   bool      `json:"verified" bson:"verified"`
	CodeSentAt time.Time `json:"codeSentAt,omitempty" bson:"codeSentAt,omitempty"`
	VerifiedAt time.Time `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
	Attempts   int       `json:"attempts" bson:"attempts"`
}

// ResendCooldown 存储在 resend_cooldown_<email> 下的重发冷却。
type ResendCooldown struct {
	Email string    `json:"email" bson:"email"`
	Until time.Time `json:"until" bson:"until"`
}

// InterviewEventType 面试变更事件类型。
type InterviewEventType string

const (
	InterviewEventCreated       InterviewEventType = "interview.created"
	InterviewEventUpdated       InterviewEventType = "interview.updated"
	InterviewEventDeleted       InterviewEventType = "interview.deleted"
	InterviewEventStatusChanged InterviewEventType = "interview.status_changed"
	InterviewEventRescheduled   InterviewEventType = "interview.rescheduled"
	InterviewEventOverdue       InterviewEventType = "interview.overdue"
)

// InterviewEvent 通过本服务产生的面试变更，推送给日历页面并可发布到消息队列。
type InterviewEvent struct {
	Type          InterviewEventType `json:"type"`
	InterviewID   string             `json:"interviewId"`
	Status        InterviewStatus    `json:"status,omitempty"`
	ScheduledDate string             `json:"scheduledDate,omitempty"`
	ScheduledTime string             `json:"scheduledTime,omitempty"`
	InterviewerID string             `json:"interviewerId,omitempty"`
	Actor         string             `json:"actor,omitempty"`
	At            time.Time          `json:"at"`
}
