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

// ReminderChannel 提醒发送渠道。
type ReminderChannel string

// ReminderKind 提醒消息种类，对应不同的消息模板。
type ReminderKind string

// ReminderStatus 提醒状态。
type ReminderStatus string

const (
	ReminderChannelWhatsApp ReminderChannel = "WHATSAPP"
	ReminderChannelSMS      ReminderChannel = "SMS"
	ReminderChannelEmail    ReminderChannel = "EMAIL"
)

const (
	ReminderKindConfirmation ReminderKind = "CONFIRMATION"
	ReminderKindReminder24h  ReminderKind = "REMINDER_24H"
	ReminderKindReminder2h   ReminderKind = "REMINDER_2H"
	ReminderKindRescheduled  ReminderKind = "RESCHEDULED"
	ReminderKindCancelled    ReminderKind = "CANCELLED"
	ReminderKindFollowUp     ReminderKind = "FOLLOW_UP"
)

const (
	ReminderStatusPending   ReminderStatus = "PENDING"
	ReminderStatusSent      ReminderStatus = "SENT"
	ReminderStatusFailed    ReminderStatus = "FAILED"
	ReminderStatusCancelled ReminderStatus = "CANCELLED"
)

var AllReminderChannels = []ReminderChannel{ReminderChannelWhatsApp, ReminderChannelSMS, ReminderChannelEmail}

var AllReminderKinds = []ReminderKind{
	ReminderKindConfirmation,
	ReminderKindReminder24h,
	ReminderKindReminder2h,
	ReminderKindRescheduled,
	ReminderKindCancelled,
	ReminderKindFollowUp,
}

// ReminderMessage 提醒消息。待发送的提醒只保存在内存中，服务重启后丢失；发送结果写入提醒日志。
type ReminderMessage struct {
	ID           string          `json:"id" bson:"_id"`
	InterviewID  string          `json:"interviewId" bson:"interviewId"`
	Channel      ReminderChannel `json:"channel" bson:"channel"`
	Kind         ReminderKind    `json:"kind" bson:"kind"`
	Recipient    string          `json:"recipient" bson:"recipient"`
	Subject      string          `json:"subject,omitempty" bson:"subject,omitempty"`
	Body         string          `json:"body" bson:"body"`
	ScheduledFor time.Time       `json:"scheduledFor" bson:"scheduledFor"`
	Status       ReminderStatus  `json:"status" bson:"status"`
	SentAt       *time.Time      `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	Error        string          `json:"error,omitempty" bson:"error,omitempty"`
	CreatedBy    string          `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
}

// ReminderContact 提醒的接收方。
type ReminderContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
