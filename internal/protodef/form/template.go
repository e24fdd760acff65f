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

var ErrCriteriaWeight = fmt.Errorf("la suma de los pesos de los criterios debe ser 1")

type CriterionForm struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	MaxScore    int     `json:"maxScore"`
}

func (c CriterionForm) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.RuneLength(2, 80)),
		validation.Field(&c.Weight, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.MaxScore, validation.Min(0), validation.Max(10)),
	)
}

// TemplateForm 创建自定义面试模板。
type TemplateForm struct {
	Name        string              `json:"name"`
	Type        model.InterviewType `json:"type"`
	Description string              `json:"description"`
	Duration    int                 `json:"duration"`
	Criteria    []CriterionForm     `json:"criteria"`
	Questions   []string            `json:"questions"`
}

func (t *TemplateForm) Validate() error {
	if t.Duration == 0 {
		t.Duration = model.DefaultInterviewDuration
	}
	err := validation.ValidateStruct(t,
		validation.Field(&t.Name, validation.Required, validation.RuneLength(3, 100)),
		validation.Field(&t.Type, validation.Required, typeIn()),
		validation.Field(&t.Description, validation.RuneLength(0, 1000)),
		validation.Field(&t.Duration, validation.Min(15).Error(ErrDurationMsg), validation.Max(240).Error(ErrDurationMsg)),
		validation.Field(&t.Criteria),
		validation.Field(&t.Questions, validation.Required, validation.Each(validation.Required, validation.RuneLength(0, 500))),
	)
	if err != nil {
		return err
	}
	if len(t.Criteria) == 0 {
		return nil
	}
	var sum float64
	for _, c := range t.Criteria {
		sum += c.Weight
	}
	if sum < 0.99 || sum > 1.01 {
		return ErrCriteriaWeight
	}
	return nil
}

// ToTemplate 转换为模板，MaxScore 未填写时为 10。
func (t *TemplateForm) ToTemplate() model.InterviewTemplate {
	criteria := make([]model.EvaluationCriterion, 0, len(t.Criteria))
	for _, c := range t.Criteria {
		maxScore := c.MaxScore
		if maxScore == 0 {
			maxScore = 10
		}
		criteria = append(criteria, model.EvaluationCriterion{
			Name:        c.Name,
			Description: c.Description,
			Weight:      c.Weight,
			MaxScore:    maxScore,
		})
	}
	return model.InterviewTemplate{
		Name:        t.Name,
		Type:        t.Type,
		Description: t.Description,
		Duration:    t.Duration,
		Criteria:    criteria,
		Questions:   append([]string{}, t.Questions...),
		IsCustom:    true,
	}
}
