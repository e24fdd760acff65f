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

// EvaluationCriterion 面试评价维度。
type EvaluationCriterion struct {
	Name        string  `json:"name" bson:"name"`
	Description string  `json:"description" bson:"description"`
	Weight      float64 `json:"weight" bson:"weight"`
	MaxScore    int     `json:"maxScore" bson:"maxScore"`
}

// InterviewTemplate 面试模板：评价维度与建议问题。内置模板不可删除。
type InterviewTemplate struct {
	ID          string                `json:"id" bson:"id"`
	Name        string                `json:"name" bson:"name"`
	Type        InterviewType         `json:"type" bson:"type"`
	Description string                `json:"description" bson:"description"`
	Duration    int                   `json:"duration" bson:"duration"`
	Criteria    []EvaluationCriterion `json:"criteria" bson:"criteria"`
	Questions   []string              `json:"questions" bson:"questions"`
	IsCustom    bool                  `json:"isCustom" bson:"isCustom"`
	CreatedBy   string                `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt   time.Time             `json:"createdAt" bson:"createdAt"`
}

// TemplateUsage 模板使用次数。
type TemplateUsage struct {
	TemplateID string    `json:"templateId" bson:"templateId"`
	Count      int       `json:"count" bson:"count"`
	LastUsedAt time.Time `json:"lastUsedAt" bson:"lastUsedAt"`
}

// TemplateStats 存储在 interview_template_stats 下的模板统计。
type TemplateStats struct {
	Usage      map[string]TemplateUsage `json:"usage" bson:"usage"`
	TotalUses  int                      `json:"totalUses" bson:"totalUses"`
	MostUsedID string                   `json:"mostUsedId,omitempty" bson:"mostUsedId,omitempty"`
}
