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
	"context"
	"strings"
	"testing"
	"time"

	"github.com/qiniu/x/xlog"
	"github.com/xuri/excelize/v2"

	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/stats"
)

func score(f float64) *float64 {
	return &f
}

var interviews = []model.Interview{
	{ID: "1", StudentName: "Sofía Pérez", Type: model.InterviewTypeFamily, Mode: model.InterviewModeInPerson,
		Status: model.InterviewStatusCompleted, ScheduledDate: "2025-03-03", ScheduledTime: "09:00:00", Duration: 90,
		InterviewerName: "Ana Díaz", SecondInterviewerName: "Luis Soto", Location: "Sala 2",
		Result: model.InterviewResultPositive, Score: score(8.5), FollowUpRequired: true},
	{ID: "2", StudentName: "Tomás <Rojas>", Type: model.InterviewTypeStudent, Mode: model.InterviewModeVirtual,
		Status: model.InterviewStatusScheduled, ScheduledDate: "2025-03-12", ScheduledTime: "10:00",
		InterviewerName: "Ana Díaz", VirtualMeetingLink: "https://meet.example.com/abc"},
}

func TestWorkbook(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	data, err := Workbook("Reporte", "hoy", interviews, stats.Compute(interviews, now))
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != SheetInterviews || sheets[1] != SheetSummary {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(SheetInterviews)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 || rows[0][1] != "Estudiante" {
		t.Fatalf("rows = %v", rows)
	}
	first := rows[1]
	want := map[int]string{4: "Familiar", 5: "Presencial", 6: "Completada", 8: "09:00", 9: "1h 30m", 13: "Positiva", 15: "Sí"}
	for col, v := range want {
		if first[col] != v {
			t.Errorf("row 1 col %d = %q, want %q", col, first[col], v)
		}
	}
	if rows[2][12] != "https://meet.example.com/abc" {
		t.Errorf("virtual location = %q", rows[2][12])
	}

	summary, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatalf("GetRows summary: %v", err)
	}
	if summary[0][0] != "Reporte" || summary[3][0] != "Total de entrevistas" || summary[3][1] != "2" {
		t.Errorf("summary = %v", summary[:4])
	}
}

func TestReport(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	data, err := Report("Reporte <marzo>", "hoy", interviews, stats.Compute(interviews, now))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	html := string(data)
	for _, s := range []string{
		"Reporte &lt;marzo&gt;",
		"Tomás &lt;Rojas&gt;",
		"lunes, 3 de marzo de 2025",
		"1h 30m",
		"Ana Díaz / Luis Soto",
		"Positiva (8.5)",
		`class="status emerald"`,
		"50.0%",
	} {
		if !strings.Contains(html, s) {
			t.Errorf("report does not contain %q", s)
		}
	}

	empty, err := Report("Vacío", "hoy", nil, stats.Compute(nil, now))
	if err != nil || !strings.Contains(string(empty), "No hay entrevistas") {
		t.Errorf("empty report = %v", err)
	}
}

type fakeSource []model.Interview

func (f fakeSource) ListAll(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) ([]model.Interview, error) {
	return f, nil
}

type fakeUploader struct {
	keys []string
}

func (u *fakeUploader) Upload(xl *xlog.Logger, key string, data []byte, mimeType string) (string, error) {
	u.keys = append(u.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func TestServiceExport(t *testing.T) {
	s := NewService(fakeSource(interviews), nil, time.UTC)
	s.now = func() time.Time { return time.Date(2025, time.March, 10, 15, 4, 0, 0, time.UTC) }

	f := &form.ExportForm{Format: "HTML"}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	a, err := s.Export(context.Background(), nil, f)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if a.FileName != "entrevistas_20250310_1504.html" || a.ContentType != ContentTypeHTML || a.URL != "" {
		t.Errorf("artifact = %s %s %s", a.FileName, a.ContentType, a.URL)
	}

	f = &form.ExportForm{Upload: true}
	_ = f.Validate()
	if _, err := s.Export(context.Background(), nil, f); err != ErrUploadNotConfigured {
		t.Errorf("upload without uploader err = %v", err)
	}

	uploader := &fakeUploader{}
	s.uploader = uploader
	a, err = s.Export(context.Background(), nil, f)
	if err != nil {
		t.Fatalf("Export with upload: %v", err)
	}
	if a.URL != "https://cdn.example.com/exports/entrevistas_20250310_1504.xlsx" || len(uploader.keys) != 1 {
		t.Errorf("uploaded artifact = %s %v", a.URL, uploader.keys)
	}
}
