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
	"testing"
	"time"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

func fixNow(t *testing.T, now time.Time) {
	old := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = old })
}

func validCreateForm() InterviewCreateForm {
	return InterviewCreateForm{
		ApplicationID: "app-1",
		InterviewerID: "u-1",
		Type:          model.InterviewTypeIndividual,
		Mode:          model.InterviewModeInPerson,
		ScheduledDate: "2025-03-10",
		ScheduledTime: "10:00",
		Duration:      60,
		Location:      "Sala 2",
	}
}

func TestInterviewCreateForm(t *testing.T) {
	fixNow(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	cases := []struct {
		name    string
		modify  func(f *InterviewCreateForm)
		wantErr bool
	}{
		{"valid", func(f *InterviewCreateForm) {}, false},
		{"missing application", func(f *InterviewCreateForm) { f.ApplicationID = "" }, true},
		{"bad time", func(f *InterviewCreateForm) { f.ScheduledTime = "25:00" }, true},
		{"bad date", func(f *InterviewCreateForm) { f.ScheduledDate = "10/03/2025" }, true},
		{"duration too short", func(f *InterviewCreateForm) { f.Duration = 10 }, true},
		{"in the past", func(f *InterviewCreateForm) { f.ScheduledDate = "2025-02-27" }, true},
		{"family without second", func(f *InterviewCreateForm) { f.Type = model.InterviewTypeFamily }, true},
		{"family same second", func(f *InterviewCreateForm) {
			f.Type = model.InterviewTypeFamily
			f.SecondInterviewerID = "u-1"
		}, true},
		{"family with second", func(f *InterviewCreateForm) {
			f.Type = model.InterviewTypeFamily
			f.SecondInterviewerID = "u-2"
		}, false},
		{"in person without location", func(f *InterviewCreateForm) { f.Location = "" }, true},
		{"virtual without link", func(f *InterviewCreateForm) { f.Mode = model.InterviewModeVirtual }, true},
		{"virtual with link", func(f *InterviewCreateForm) {
			f.Mode = model.InterviewModeVirtual
			f.VirtualMeetingLink = "https://meet.example.com/abc"
		}, false},
		{"unknown type", func(f *InterviewCreateForm) { f.Type = "GROUP" }, true},
	}
	for _, tc := range cases {
		f := validCreateForm()
		tc.modify(&f)
		err := f.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestInterviewCreateFormFillDefault(t *testing.T) {
	f := InterviewCreateForm{ScheduledTime: "9:30:00"}
	f.FillDefault()
	if f.Type != model.InterviewTypeIndividual || f.Mode != model.InterviewModeInPerson {
		t.Errorf("unexpected defaults: %s %s", f.Type, f.Mode)
	}
	if f.Duration != model.DefaultInterviewDuration {
		t.Errorf("duration = %d", f.Duration)
	}
	if f.ScheduledTime != "09:30" {
		t.Errorf("time = %q", f.ScheduledTime)
	}
	if got := f.ToInterview().Status; got != model.InterviewStatusScheduled {
		t.Errorf("status = %s", got)
	}
}

func TestInterviewUpdateForm(t *testing.T) {
	current := model.Interview{InterviewerID: "u-1", ScheduledDate: "2025-03-10", ScheduledTime: "10:00", Duration: 60, Notes: "a"}
	notes := "b"
	u := InterviewUpdateForm{Notes: &notes}
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if u.ChangesSlot(current) {
		t.Error("notes update should not change slot")
	}
	if got := u.Apply(current).Notes; got != "b" {
		t.Errorf("notes = %q", got)
	}

	clock := "10:00:00"
	u = InterviewUpdateForm{ScheduledTime: &clock}
	if u.ChangesSlot(current) {
		t.Error("equivalent time should not change slot")
	}
	clock = "11:00"
	if !u.ChangesSlot(current) {
		t.Error("new time should change slot")
	}

	bad := 5
	u = InterviewUpdateForm{Duration: &bad}
	if err := u.Validate(); err == nil {
		t.Error("expected duration error")
	}
}

func TestInterviewUpdateFormValidateAgainst(t *testing.T) {
	fixNow(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	current := model.Interview{
		InterviewerID: "u-1",
		Status:        model.InterviewStatusScheduled,
		Type:          model.InterviewTypeIndividual,
		Mode:          model.InterviewModeInPerson,
		ScheduledDate: "2025-03-10",
		ScheduledTime: "10:00",
		Duration:      60,
		Location:      "Sala 2",
	}
	str := func(s string) *string { return &s }
	virtual, family := model.InterviewModeVirtual, model.InterviewTypeFamily

	cases := []struct {
		name   string
		status model.InterviewStatus
		form   InterviewUpdateForm
		want   error
	}{
		{"notes only", model.InterviewStatusScheduled, InterviewUpdateForm{Notes: str("b")}, nil},
		{"notes on completed", model.InterviewStatusCompleted, InterviewUpdateForm{Notes: str("b")}, nil},
		{"new time", model.InterviewStatusScheduled, InterviewUpdateForm{ScheduledTime: str("11:00")}, nil},
		{"time on completed", model.InterviewStatusCompleted, InterviewUpdateForm{ScheduledTime: str("11:00")}, ErrSlotLocked},
		{"date on cancelled", model.InterviewStatusCancelled, InterviewUpdateForm{ScheduledDate: str("2025-03-12")}, ErrSlotLocked},
		{"past date", model.InterviewStatusScheduled, InterviewUpdateForm{ScheduledDate: str("2025-02-27")}, ErrScheduledInThePast},
		{"virtual without link", model.InterviewStatusScheduled, InterviewUpdateForm{Mode: &virtual}, ErrMeetingLinkRequired},
		{"virtual with link", model.InterviewStatusScheduled, InterviewUpdateForm{Mode: &virtual, VirtualMeetingLink: str("https://meet.example.cl/x")}, nil},
		{"location cleared", model.InterviewStatusScheduled, InterviewUpdateForm{Location: str("")}, ErrLocationRequired},
		{"family alone", model.InterviewStatusScheduled, InterviewUpdateForm{Type: &family}, ErrSecondInterviewer},
		{"same second interviewer", model.InterviewStatusScheduled, InterviewUpdateForm{SecondInterviewerID: str("u-1")}, ErrSameInterviewer},
	}
	for _, tc := range cases {
		c := current
		c.Status = tc.status
		if err := tc.form.ValidateAgainst(c); err != tc.want {
			t.Errorf("%s: ValidateAgainst() = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestCancelInterviewForm(t *testing.T) {
	cases := map[string]bool{
		"":                        true,
		"hola":                    true,
		"La familia no asistirá.": false,
	}
	for reason, wantErr := range cases {
		f := CancelInterviewForm{Reason: reason}
		if err := f.Validate(); (err != nil) != wantErr {
			t.Errorf("reason %q: err = %v, wantErr %v", reason, err, wantErr)
		}
	}
}

func TestRescheduleInterviewForm(t *testing.T) {
	fixNow(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	current := model.Interview{ScheduledDate: "2025-03-10", ScheduledTime: "10:00:00"}

	f := RescheduleInterviewForm{NewDate: "2025-03-10", NewTime: "10:00"}
	if err := f.ValidateAgainst(current); err != ErrRescheduleSameSlot {
		t.Errorf("same slot: err = %v", err)
	}
	f = RescheduleInterviewForm{NewDate: "2025-03-11", NewTime: "9:00"}
	if err := f.ValidateAgainst(current); err != nil {
		t.Errorf("new slot: err = %v", err)
	}
	if f.NewTime != "09:00" {
		t.Errorf("time not normalized: %q", f.NewTime)
	}
	f = RescheduleInterviewForm{NewDate: "2025-02-11", NewTime: "09:00"}
	if err := f.Validate(); err != ErrScheduledInThePast {
		t.Errorf("past slot: err = %v", err)
	}
}

func TestCompleteInterviewForm(t *testing.T) {
	score := func(v float64) *float64 { return &v }
	cases := []struct {
		name    string
		form    CompleteInterviewForm
		wantErr bool
	}{
		{"result required", CompleteInterviewForm{}, true},
		{"ok", CompleteInterviewForm{Result: model.InterviewResultPositive, Score: score(8)}, false},
		{"score high", CompleteInterviewForm{Result: model.InterviewResultPositive, Score: score(11)}, true},
		{"score low", CompleteInterviewForm{Result: model.InterviewResultNeutral, Score: score(0.5)}, true},
		{"follow-up without notes", CompleteInterviewForm{Result: model.InterviewResultNeutral, FollowUpRequired: true}, true},
		{"follow-up with notes", CompleteInterviewForm{Result: model.InterviewResultNeutral, FollowUpRequired: true, FollowUpNotes: "llamar"}, false},
	}
	for _, tc := range cases {
		f := tc.form
		if err := f.Validate(); (err != nil) != tc.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestValidateFilters(t *testing.T) {
	f := model.InterviewFilters{Page: -1}
	if err := ValidateFilters(&f); err != nil {
		t.Fatalf("err = %v", err)
	}
	if f.Page != 0 || f.Size != 20 {
		t.Errorf("defaults not applied: %+v", f)
	}
	f = model.InterviewFilters{Status: "DONE"}
	if err := ValidateFilters(&f); err == nil {
		t.Error("expected status error")
	}
}

func TestRut(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"11.111.111-1", true},
		{"12.345.678-5", true},
		{"123456785", true},
		{"10.000.013-k", true},
		{"12.345.678-9", false},
		{"abc", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidRut(tc.in); got != tc.valid {
			t.Errorf("ValidRut(%q) = %v, want %v", tc.in, got, tc.valid)
		}
	}
	if got := NormalizeRut(" 12.345.678-5 "); got != "12345678-5" {
		t.Errorf("NormalizeRut = %q", got)
	}
	if got := RutCheckDigit("10000013"); got != "K" {
		t.Errorf("RutCheckDigit = %q", got)
	}
}

func TestVerificationForms(t *testing.T) {
	f := EmailCodeForm{Email: " Familia@Example.COM "}
	if err := f.Validate(); err != nil {
		t.Fatalf("err = %v", err)
	}
	if f.Email != "familia@example.com" {
		t.Errorf("email = %q", f.Email)
	}
	v := VerifyCodeForm{Email: "familia@example.com", Code: "12a456"}
	if err := v.Validate(); err == nil {
		t.Error("expected code error")
	}
}

func TestReminderForm(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	f := ReminderForm{Channel: model.ReminderChannelSMS, Kind: model.ReminderKindReminder24h}
	if err := f.Validate(); err != ErrReminderTimeRequired {
		t.Errorf("err = %v", err)
	}
	f.MinutesBefore = 24 * 60
	if err := f.Validate(); err != nil {
		t.Fatalf("err = %v", err)
	}
	if got := f.SendTime(start, now); !got.Equal(start.Add(-24 * time.Hour)) {
		t.Errorf("SendTime = %v", got)
	}
	f.Immediate = true
	if got := f.SendTime(start, now); !got.Equal(now) {
		t.Errorf("SendTime = %v", got)
	}
	f.Channel = "FAX"
	if err := f.Validate(); err == nil {
		t.Error("expected channel error")
	}
}

func TestExportForm(t *testing.T) {
	f := ExportForm{Format: "XLSX"}
	if err := f.Validate(); err != nil || f.Format != ExportFormatXlsx {
		t.Errorf("err = %v format = %s", err, f.Format)
	}
	f = ExportForm{Format: "pdf"}
	if err := f.Validate(); err != ErrUnsupportedFormat {
		t.Errorf("err = %v", err)
	}
}
