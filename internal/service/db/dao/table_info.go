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

package dao

const (
	// CollectionStorage 键值存储，保存邮箱验证状态、重发冷却与模板统计。
	CollectionStorage = "kv_storage"

	// CollectionReminderLog 面试提醒的发送记录。
	CollectionReminderLog = "reminder_log"
)

// 存储键，沿用前端本地存储的键名。
const (
	StorageKeyVerificationPrefix   = "verification_"
	StorageKeyResendCooldownPrefix = "resend_cooldown_"
	StorageKeyTemplateStats        = "interview_template_stats"
	StorageKeyCustomTemplates      = "interview_custom_templates"
	// StorageKeyReminderPlanPrefix 已由计划任务安排过提醒的面试，避免重复安排。
	StorageKeyReminderPlanPrefix = "reminder_plan_"
	// StorageKeyOverduePrefix 已发布过逾期事件的面试。
	StorageKeyOverduePrefix = "overdue_notified_"
)
