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

package template

import "github.com/solutions/admission-interview/internal/protodef/model"

func criterion(name, description string, weight float64) model.EvaluationCriterion {
	return model.EvaluationCriterion{Name: name, Description: description, Weight: weight, MaxScore: 10}
}

// builtin 每种面试类型一个内置模板。
var builtin = []model.InterviewTemplate{
	{
		ID:          "template-individual",
		Name:        "Entrevista individual",
		Type:        model.InterviewTypeIndividual,
		Description: "Conversación con el apoderado sobre el proyecto educativo y las expectativas de la familia.",
		Duration:    45,
		Criteria: []model.EvaluationCriterion{
			criterion("Motivación", "Razones para postular al colegio", 0.4),
			criterion("Alineación con el proyecto educativo", "Conocimiento y adhesión a los valores del colegio", 0.4),
			criterion("Comunicación", "Claridad y disposición durante la entrevista", 0.2),
		},
		Questions: []string{
			"¿Por qué eligieron nuestro colegio?",
			"¿Qué esperan de la formación de su hijo o hija?",
			"¿Cómo conocieron el proyecto educativo?",
		},
	},
	{
		ID:          "template-family",
		Name:        "Entrevista familiar",
		Type:        model.InterviewTypeFamily,
		Description: "Entrevista con ambos apoderados, realizada por dos entrevistadores.",
		Duration:    60,
		Criteria: []model.EvaluationCriterion{
			criterion("Compromiso familiar", "Participación de la familia en el proceso educativo", 0.35),
			criterion("Valores", "Coherencia con los valores del colegio", 0.35),
			criterion("Expectativas", "Expectativas realistas sobre el colegio", 0.3),
		},
		Questions: []string{
			"¿Cómo describirían la dinámica familiar?",
			"¿Cómo apoyan el estudio en casa?",
			"¿Qué valores consideran fundamentales en la educación?",
			"¿Cómo resuelven los conflictos en familia?",
		},
	},
	{
		ID:          "template-student",
		Name:        "Entrevista al estudiante",
		Type:        model.InterviewTypeStudent,
		Description: "Conversación adaptada a la edad del postulante.",
		Duration:    30,
		Criteria: []model.EvaluationCriterion{
			criterion("Desenvolvimiento", "Seguridad y naturalidad al conversar", 0.4),
			criterion("Intereses", "Intereses y motivaciones propias", 0.3),
			criterion("Socialización", "Relación con pares y adultos", 0.3),
		},
		Questions: []string{
			"¿Qué es lo que más te gusta hacer?",
			"¿Cómo es tu colegio actual?",
			"¿Qué te gustaría aprender?",
		},
	},
	{
		ID:          "template-psychological",
		Name:        "Evaluación psicológica",
		Type:        model.InterviewTypePsychological,
		Description: "Entrevista con el equipo de psicología para conocer el desarrollo socioemocional.",
		Duration:    60,
		Criteria: []model.EvaluationCriterion{
			criterion("Desarrollo socioemocional", "Regulación emocional acorde a la edad", 0.4),
			criterion("Autonomía", "Independencia en actividades cotidianas", 0.3),
			criterion("Adaptación", "Capacidad de adaptarse a situaciones nuevas", 0.3),
		},
		Questions: []string{
			"¿Cómo reacciona ante situaciones nuevas?",
			"¿Ha recibido apoyo de especialistas?",
			"¿Cómo se relaciona con sus compañeros?",
		},
	},
	{
		ID:          "template-academic",
		Name:        "Entrevista académica",
		Type:        model.InterviewTypeAcademic,
		Description: "Revisión de antecedentes académicos y hábitos de estudio.",
		Duration:    45,
		Criteria: []model.EvaluationCriterion{
			criterion("Rendimiento", "Calificaciones y antecedentes académicos", 0.4),
			criterion("Hábitos de estudio", "Organización y responsabilidad", 0.3),
			criterion("Apoyo pedagógico", "Necesidades de apoyo identificadas", 0.3),
		},
		Questions: []string{
			"¿Cuáles son sus asignaturas favoritas?",
			"¿Cómo organiza su tiempo de estudio?",
			"¿Ha tenido dificultades en alguna asignatura?",
		},
	},
	{
		ID:          "template-behavioral",
		Name:        "Entrevista conductual",
		Type:        model.InterviewTypeBehavioral,
		Description: "Conversación sobre conducta y convivencia escolar.",
		Duration:    45,
		Criteria: []model.EvaluationCriterion{
			criterion("Convivencia", "Respeto a normas y compañeros", 0.5),
			criterion("Responsabilidad", "Cumplimiento de compromisos", 0.5),
		},
		Questions: []string{
			"¿Cómo describiría su conducta en el colegio actual?",
			"¿Ha tenido anotaciones o sanciones?",
			"¿Cómo maneja la frustración?",
		},
	},
	{
		ID:          "template-cycle-director",
		Name:        "Entrevista con director de ciclo",
		Type:        model.InterviewTypeCycleDirector,
		Description: "Entrevista final con el director del ciclo al que postula.",
		Duration:    30,
		Criteria: []model.EvaluationCriterion{
			criterion("Ajuste al ciclo", "Preparación para el nivel al que postula", 0.5),
			criterion("Compromiso", "Compromiso de la familia con el colegio", 0.5),
		},
		Questions: []string{
			"¿Qué esperan del ciclo al que postula?",
			"¿Tienen dudas sobre el funcionamiento del ciclo?",
		},
	},
}

// Builtin 内置模板的副本。
func Builtin() []model.InterviewTemplate {
	res := make([]model.InterviewTemplate, len(builtin))
	copy(res, builtin)
	return res
}

func builtinByID(id string) (model.InterviewTemplate, bool) {
	for _, t := range builtin {
		if t.ID == id {
			return t, true
		}
	}
	return model.InterviewTemplate{}, false
}
