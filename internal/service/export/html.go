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
	"bytes"
	"html/template"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

// reportTemplate 可直接打印为 PDF 的报表。
var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"date":     model.FormatDate,
	"clock":    model.FormatTime,
	"duration": func(i model.Interview) string { return model.FormatDuration(int(model.DurationOf(i).Minutes())) },
	"color":    func(s model.InterviewStatus) string { return model.InterviewStatusColors[s] },
	"deref":    func(f *float64) float64 { return *f },
}).Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; margin: 24px; }
h1 { font-size: 20px; margin-bottom: 4px; }
.generated { color: #666; margin-bottom: 16px; }
.summary td { padding: 2px 12px 2px 0; }
table.interviews { border-collapse: collapse; width: 100%; margin-top: 16px; }
table.interviews th, table.interviews td { border: 1px solid #ccc; padding: 4px 6px; text-align: left; }
table.interviews th { background: #1f4e79; color: #fff; }
.status { font-weight: bold; }
.gray { color: #6b7280; } .blue { color: #2563eb; } .green { color: #16a34a; } .yellow { color: #ca8a04; }
.emerald { color: #059669; } .red { color: #dc2626; } .orange { color: #ea580c; } .purple { color: #9333ea; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="generated">Generado el {{.Generated}}</div>
<table class="summary">
<tr><td>Total de entrevistas</td><td>{{.Stats.Total}}</td></tr>
<tr><td>Tasa de completadas</td><td>{{printf "%.1f" .Stats.CompletionRate}}%</td></tr>
<tr><td>Tasa de canceladas</td><td>{{printf "%.1f" .Stats.CancellationRate}}%</td></tr>
<tr><td>Tasa de inasistencia</td><td>{{printf "%.1f" .Stats.NoShowRate}}%</td></tr>
<tr><td>Puntaje promedio</td><td>{{printf "%.1f" .Stats.AverageScore}}</td></tr>
</table>
{{if .Interviews}}
<table class="interviews">
<thead><tr><th>Estudiante</th><th>Tipo</th><th>Estado</th><th>Fecha</th><th>Hora</th><th>Duración</th><th>Entrevistador</th><th>Resultado</th></tr></thead>
<tbody>
{{range .Interviews}}<tr>
<td>{{.StudentName}}</td>
<td>{{.Type.Label}}</td>
<td class="status {{color .Status}}">{{.Status.Label}}</td>
<td>{{date .ScheduledDate}}</td>
<td>{{clock .ScheduledTime}}</td>
<td>{{duration .}}</td>
<td>{{.InterviewerName}}{{if .SecondInterviewerName}} / {{.SecondInterviewerName}}{{end}}</td>
<td>{{if .Result}}{{.Result.Label}}{{end}}{{if .Score}} ({{printf "%.1f" (deref .Score)}}){{end}}</td>
</tr>
{{end}}</tbody>
</table>
{{else}}
<p>No hay entrevistas para los filtros seleccionados.</p>
{{end}}
</body>
</html>
`))

type reportData struct {
	Title      string
	Generated  string
	Interviews []model.Interview
	Stats      *model.InterviewStats
}

// Report 生成 HTML 报表。
func Report(title, generated string, interviews []model.Interview, stats *model.InterviewStats) ([]byte, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, reportData{
		Title:      title,
		Generated:  generated,
		Interviews: interviews,
		Stats:      stats,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
