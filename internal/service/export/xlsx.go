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

package export

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

const (
	SheetInterviews = "Entrevistas"
	SheetSummary    = "Resumen"
)

var interviewHeader = []interface{}{
	"ID", "Estudiante", "Apoderados", "Curso", "Tipo", "Modalidad", "Estado", "Fecha", "Hora", "Duración",
	"Entrevistador", "Segundo entrevistador", "Ubicación", "Resultado", "Puntaje", "Seguimiento", "Notas",
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// interviewRow 一场面试在表格中的一行，枚举值使用展示文本。
func interviewRow(i model.Interview) []interface{} {
	var score interface{} = ""
	if i.Score != nil {
		score = *i.Score
	}
	result := ""
	if i.Result != "" {
		result = i.Result.Label()
	}
	location := i.Location
	if location == "" {
		location = i.VirtualMeetingLink
	}
	return []interface{}{
		i.ID,
		i.StudentName,
		i.ParentNames,
		i.GradeApplied,
		i.Type.Label(),
		i.Mode.Label(),
		i.Status.Label(),
		model.NormalizeDate(i.ScheduledDate),
		model.FormatTime(i.ScheduledTime),
		model.FormatDuration(int(model.DurationOf(i).Minutes())),
		i.InterviewerName,
		i.SecondInterviewerName,
		location,
		result,
		score,
		yesNo(i.FollowUpRequired),
		i.Notes,
	}
}

func summaryRows(title, generated string, stats *model.InterviewStats) [][]interface{} {
	rows := [][]interface{}{
		{title},
		{"Generado", generated},
		{},
		{"Total de entrevistas", stats.Total},
		{"Tasa de completadas (%)", stats.CompletionRate},
		{"Tasa de canceladas (%)", stats.CancellationRate},
		{"Tasa de inasistencia (%)", stats.NoShowRate},
		{"Puntaje promedio", stats.AverageScore},
		{"Próximas 7 días", stats.Upcoming},
		{"Atrasadas", stats.Overdue},
		{},
		{"Estado", "Cantidad"},
	}
	for _, s := range model.AllInterviewStatuses {
		rows = append(rows, []interface{}{s.Label(), stats.ByStatus[s]})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Tipo", "Cantidad"})
	for _, t := range model.AllInterviewTypes {
		rows = append(rows, []interface{}{t.Label(), stats.ByType[t]})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Modalidad", "Cantidad"})
	for _, m := range model.AllInterviewModes {
		rows = append(rows, []interface{}{m.Label(), stats.ByMode[m]})
	}
	return rows
}

// Workbook 生成包含“Entrevistas”与“Resumen”两个工作表的 xlsx。
func Workbook(title, generated string, interviews []model.Interview, stats *model.InterviewStats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetInterviews); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E79"}},
	})
	if err != nil {
		return nil, err
	}

	if err = f.SetSheetRow(SheetInterviews, "A1", &interviewHeader); err != nil {
		return nil, err
	}
	if err = f.SetRowStyle(SheetInterviews, 1, 1, header); err != nil {
		return nil, err
	}
	for idx, i := range interviews {
		row := interviewRow(i)
		if err = f.SetSheetRow(SheetInterviews, "A"+strconv.Itoa(idx+2), &row); err != nil {
			return nil, err
		}
	}
	last, err := excelize.ColumnNumberToName(len(interviewHeader))
	if err != nil {
		return nil, err
	}
	if err = f.SetColWidth(SheetInterviews, "A", last, 18); err != nil {
		return nil, err
	}

	if _, err = f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}
	for idx, row := range summaryRows(title, generated, stats) {
		if len(row) == 0 {
			continue
		}
		row := row
		if err = f.SetSheetRow(SheetSummary, "A"+strconv.Itoa(idx+1), &row); err != nil {
			return nil, err
		}
	}
	if err = f.SetRowStyle(SheetSummary, 1, 1, header); err != nil {
		return nil, err
	}
	if err = f.SetColWidth(SheetSummary, "A", "A", 30); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
