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

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/cloud/admission"
	"github.com/solutions/admission-interview/internal/service/verification"
	"github.com/solutions/admission-interview/internal/service/web/middleware"
)

type fakeInterviews struct {
	items     map[string]model.Interview
	available bool
	availErr  error
	createErr error
	created   []model.Interview
	nextID    string

	calendarErr  error
	listAllCalls int
}

func newFakeInterviews(items ...model.Interview) *fakeInterviews {
	f := &fakeInterviews{items: map[string]model.Interview{}, available: true, nextID: "new-1"}
	for _, i := range items {
		f.items[i.ID] = i
	}
	return f
}

func (f *fakeInterviews) List(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) (*model.InterviewPage, error) {
	page := &model.InterviewPage{}
	for _, i := range f.items {
		page.Interviews = append(page.Interviews, i)
	}
	page.TotalElements = len(page.Interviews)
	return page, nil
}

func (f *fakeInterviews) ListAll(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) ([]model.Interview, error) {
	f.listAllCalls++
	var res []model.Interview
	for _, i := range f.items {
		if filters.InterviewerID != "" && i.InterviewerID != filters.InterviewerID {
			continue
		}
		if filters.DateFrom != "" && i.ScheduledDate < filters.DateFrom || filters.DateTo != "" && i.ScheduledDate > filters.DateTo {
			continue
		}
		res = append(res, i)
	}
	return res, nil
}

func (f *fakeInterviews) Get(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error) {
	i, ok := f.items[id]
	if !ok {
		return nil, admission.NewStatusCodeError(http.StatusNotFound, "Not Found")
	}
	return &i, nil
}

func (f *fakeInterviews) ListByApplication(ctx context.Context, xl *xlog.Logger, applicationID string) ([]model.Interview, error) {
	var res []model.Interview
	for _, i := range f.items {
		if i.ApplicationID == applicationID {
			res = append(res, i)
		}
	}
	return res, nil
}

func (f *fakeInterviews) Upcoming(ctx context.Context, xl *xlog.Logger) ([]model.Interview, error) {
	return f.ListAll(ctx, xl, model.InterviewFilters{})
}

func (f *fakeInterviews) Calendar(ctx context.Context, xl *xlog.Logger, from, to string) ([]model.Interview, error) {
	if f.calendarErr != nil {
		return nil, f.calendarErr
	}
	var res []model.Interview
	for _, i := range f.items {
		if i.ScheduledDate >= from && i.ScheduledDate <= to {
			res = append(res, i)
		}
	}
	return res, nil
}

func (f *fakeInterviews) Create(ctx context.Context, xl *xlog.Logger, in model.Interview) (*model.Interview, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	in.ID = f.nextID
	f.items[in.ID] = in
	f.created = append(f.created, in)
	return &in, nil
}

func (f *fakeInterviews) Update(ctx context.Context, xl *xlog.Logger, id string, in model.Interview) (*model.Interview, error) {
	in.ID = id
	f.items[id] = in
	return &in, nil
}

func (f *fakeInterviews) Delete(ctx context.Context, xl *xlog.Logger, id string) error {
	if _, ok := f.items[id]; !ok {
		return admission.NewStatusCodeError(http.StatusNotFound, "Not Found")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeInterviews) CheckAvailability(ctx context.Context, xl *xlog.Logger, interviewerID, date, clock string, duration int, excludeID string) (bool, error) {
	return f.available, f.availErr
}

func (f *fakeInterviews) setStatus(id string, status model.InterviewStatus) (*model.Interview, error) {
	i := f.items[id]
	i.Status = status
	f.items[id] = i
	return &i, nil
}

func (f *fakeInterviews) Confirm(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error) {
	return f.setStatus(id, model.InterviewStatusConfirmed)
}

func (f *fakeInterviews) Start(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error) {
	return f.setStatus(id, model.InterviewStatusInProgress)
}

func (f *fakeInterviews) Complete(ctx context.Context, xl *xlog.Logger, id string, args admission.CompleteArgs) (*model.Interview, error) {
	return f.setStatus(id, model.InterviewStatusCompleted)
}

func (f *fakeInterviews) Cancel(ctx context.Context, xl *xlog.Logger, id, reason string) (*model.Interview, error) {
	return f.setStatus(id, model.InterviewStatusCancelled)
}

func (f *fakeInterviews) Reschedule(ctx context.Context, xl *xlog.Logger, id, newDate, newTime, reason string) (*model.Interview, error) {
	i := f.items[id]
	i.ScheduledDate, i.ScheduledTime = newDate, newTime
	f.items[id] = i
	return &i, nil
}

func (f *fakeInterviews) MarkNoShow(ctx context.Context, xl *xlog.Logger, id, notes string) (*model.Interview, error) {
	return f.setStatus(id, model.InterviewStatusNoShow)
}

func (f *fakeInterviews) SendNotification(ctx context.Context, xl *xlog.Logger, id, notificationType string) error {
	return nil
}

type fakeReminders struct {
	planned   []string
	cancelled []string
	notified  []model.ReminderKind
	history   []model.ReminderMessage
}

func (f *fakeReminders) Schedule(xl *xlog.Logger, i model.Interview, rf *form.ReminderForm, createdBy string) (*model.ReminderMessage, error) {
	return &model.ReminderMessage{ID: "r-manual", InterviewID: i.ID, CreatedBy: createdBy}, nil
}

func (f *fakeReminders) Notify(xl *xlog.Logger, i model.Interview, kind model.ReminderKind) []model.ReminderMessage {
	f.notified = append(f.notified, kind)
	return nil
}

func (f *fakeReminders) PlanDefault(xl *xlog.Logger, i model.Interview) []model.ReminderMessage {
	f.planned = append(f.planned, i.ID)
	return nil
}

func (f *fakeReminders) Cancel(xl *xlog.Logger, id string) (*model.ReminderMessage, error) {
	return &model.ReminderMessage{ID: id, Status: model.ReminderStatusCancelled}, nil
}

func (f *fakeReminders) CancelForInterview(xl *xlog.Logger, interviewID string) int {
	f.cancelled = append(f.cancelled, interviewID)
	return 0
}

func (f *fakeReminders) History(xl *xlog.Logger, interviewID string) ([]model.ReminderMessage, error) {
	return f.history, nil
}

type fakeEmitter struct {
	events []model.InterviewEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, xl *xlog.Logger, event model.InterviewEvent) {
	f.events = append(f.events, event)
}

type fakeUsage struct {
	used []string
}

func (f *fakeUsage) RecordUsage(xl *xlog.Logger, id string) (*model.TemplateUsage, error) {
	f.used = append(f.used, id)
	return &model.TemplateUsage{TemplateID: id, Count: len(f.used)}, nil
}

type testResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func testEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.AddRequestID, func(c *gin.Context) {
		user := model.AuthUser{ID: "u-1", Email: "admision@colegio.cl", Name: "Admisión"}
		c.Set(model.UserContextKey, user)
		c.Set(model.UserIDContextKey, user.ID)
	})
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) testResponse {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s: http status %d", method, path, w.Code)
	}
	var resp testResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decode response %q: %v", method, path, w.Body.String(), err)
	}
	return resp
}

type interviewFixture struct {
	store     *fakeInterviews
	reminders *fakeReminders
	events    *fakeEmitter
	usage     *fakeUsage
	engine    *gin.Engine
}

func newInterviewFixture(items ...model.Interview) *interviewFixture {
	f := &interviewFixture{
		store:     newFakeInterviews(items...),
		reminders: &fakeReminders{},
		events:    &fakeEmitter{},
		usage:     &fakeUsage{},
	}
	h := NewInterviewApiHandler(f.store, f.reminders, f.events, f.usage, nil, time.UTC)
	h.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	r := testEngine()
	r.POST("/interviews", h.CreateInterview)
	r.GET("/interviews/:id", h.GetInterview)
	r.PUT("/interviews/:id", h.UpdateInterview)
	r.DELETE("/interviews/:id", h.DeleteInterview)
	r.POST("/interviews/:id/confirm", h.ConfirmInterview)
	r.POST("/interviews/:id/start", h.StartInterview)
	r.POST("/interviews/:id/cancel", h.CancelInterview)
	r.POST("/interviews/:id/reschedule", h.RescheduleInterview)
	f.engine = r
	return f
}

func scheduledInterview(id string, status model.InterviewStatus) model.Interview {
	return model.Interview{
		ID:            id,
		ApplicationID: "app-1",
		StudentName:   "Sofía Rojas",
		InterviewerID: "int-1",
		Status:        status,
		Type:          model.InterviewTypeIndividual,
		Mode:          model.InterviewModeInPerson,
		ScheduledDate: "2099-04-01",
		ScheduledTime: "10:00",
		Duration:      60,
		Location:      "Sala 2",
	}
}

func createBody() map[string]interface{} {
	return map[string]interface{}{
		"applicationId":    "app-1",
		"interviewerId":    "int-1",
		"scheduledDate":    "2099-04-01",
		"scheduledTime":    "10:00:00",
		"location":         "Sala 2",
		"templateId":       "tpl-family",
		"sendConfirmation": true,
	}
}

func TestCreateInterview(t *testing.T) {
	f := newInterviewFixture()
	resp := doRequest(t, f.engine, http.MethodPost, "/interviews", createBody())
	if resp.Code != 0 {
		t.Fatalf("code = %d, message %q", resp.Code, resp.Message)
	}
	var upsert model.UpsertInterviewResponse
	if err := json.Unmarshal(resp.Data, &upsert); err != nil {
		t.Fatal(err)
	}
	if upsert.ID != "new-1" || upsert.Interview.Type != model.InterviewTypeIndividual {
		t.Errorf("unexpected created interview %+v", upsert)
	}
	if upsert.Interview.ScheduledTime != "10:00" || upsert.Interview.Duration != model.DefaultInterviewDuration {
		t.Errorf("defaults not applied: %+v", upsert.Interview)
	}
	if len(f.usage.used) != 1 || f.usage.used[0] != "tpl-family" {
		t.Errorf("template usage = %v", f.usage.used)
	}
	if len(f.reminders.notified) != 1 || f.reminders.notified[0] != model.ReminderKindConfirmation {
		t.Errorf("notified = %v", f.reminders.notified)
	}
	if len(f.reminders.planned) != 1 {
		t.Errorf("planned = %v", f.reminders.planned)
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != model.InterviewEventCreated {
		t.Errorf("events = %+v", f.events.events)
	}
	if f.events.events[0].Actor != "admision@colegio.cl" {
		t.Errorf("actor = %q", f.events.events[0].Actor)
	}
}

func TestCreateInterviewRejected(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(f *interviewFixture, body map[string]interface{})
		code    int
		created bool
	}{
		{
			name: "slot taken",
			mutate: func(f *interviewFixture, body map[string]interface{}) {
				f.store.available = false
			},
			code: model.ResponseErrorSlotUnavailable,
		},
		{
			name: "backend conflict",
			mutate: func(f *interviewFixture, body map[string]interface{}) {
				f.store.createErr = admission.NewStatusCodeError(http.StatusConflict, "ocupado")
			},
			code: model.ResponseErrorScheduleConflict,
		},
		{
			name: "missing location",
			mutate: func(f *interviewFixture, body map[string]interface{}) {
				delete(body, "location")
			},
			code: model.ResponseErrorValidation,
		},
		{
			name: "family interview without second interviewer",
			mutate: func(f *interviewFixture, body map[string]interface{}) {
				body["type"] = string(model.InterviewTypeFamily)
			},
			code: model.ResponseErrorValidation,
		},
		{
			name: "availability check unreachable",
			mutate: func(f *interviewFixture, body map[string]interface{}) {
				f.store.availErr = admission.NewCallError("check availability", context.DeadlineExceeded)
			},
			code:    0,
			created: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newInterviewFixture()
			body := createBody()
			tc.mutate(f, body)
			resp := doRequest(t, f.engine, http.MethodPost, "/interviews", body)
			if resp.Code != tc.code {
				t.Errorf("code = %d, want %d (%s)", resp.Code, tc.code, resp.Message)
			}
			if got := len(f.store.created) == 1; got != tc.created {
				t.Errorf("created = %v, want %v", got, tc.created)
			}
		})
	}
}

func TestGetInterview(t *testing.T) {
	f := newInterviewFixture(scheduledInterview("iv-1", model.InterviewStatusScheduled))

	resp := doRequest(t, f.engine, http.MethodGet, "/interviews/iv-1", nil)
	if resp.Code != 0 {
		t.Fatalf("code = %d", resp.Code)
	}
	var detail model.InterviewDetailResponse
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		t.Fatal(err)
	}
	if !detail.CanConfirm || detail.CanComplete || detail.Overdue {
		t.Errorf("unexpected flags %+v", detail)
	}
	if detail.StatusLabel == "" || detail.DurationText != model.FormatDuration(60) {
		t.Errorf("labels not filled: %q %q", detail.StatusLabel, detail.DurationText)
	}

	resp = doRequest(t, f.engine, http.MethodGet, "/interviews/missing", nil)
	if resp.Code != model.ResponseErrorNoSuchInterview {
		t.Errorf("code = %d, want %d", resp.Code, model.ResponseErrorNoSuchInterview)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		name       string
		status     model.InterviewStatus
		path       string
		body       interface{}
		code       int
		wantStatus model.InterviewStatus
	}{
		{"confirm scheduled", model.InterviewStatusScheduled, "confirm", nil, 0, model.InterviewStatusConfirmed},
		{"confirm completed", model.InterviewStatusCompleted, "confirm", nil, model.ResponseErrorInvalidTransition, model.InterviewStatusCompleted},
		{"start scheduled", model.InterviewStatusScheduled, "start", nil, model.ResponseErrorInvalidTransition, model.InterviewStatusScheduled},
		{"start confirmed", model.InterviewStatusConfirmed, "start", nil, 0, model.InterviewStatusInProgress},
		{"cancel confirmed", model.InterviewStatusConfirmed, "cancel", map[string]interface{}{"reason": "enfermedad", "notifyFamily": true}, 0, model.InterviewStatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newInterviewFixture(scheduledInterview("iv-1", tc.status))
			resp := doRequest(t, f.engine, http.MethodPost, "/interviews/iv-1/"+tc.path, tc.body)
			if resp.Code != tc.code {
				t.Fatalf("code = %d, want %d (%s)", resp.Code, tc.code, resp.Message)
			}
			if got := f.store.items["iv-1"].Status; got != tc.wantStatus {
				t.Errorf("status = %s, want %s", got, tc.wantStatus)
			}
			if tc.code != 0 && len(f.events.events) != 0 {
				t.Errorf("rejected transition emitted events %+v", f.events.events)
			}
		})
	}
}

func TestCancelNotifiesFamily(t *testing.T) {
	f := newInterviewFixture(scheduledInterview("iv-1", model.InterviewStatusScheduled))
	resp := doRequest(t, f.engine, http.MethodPost, "/interviews/iv-1/cancel", map[string]interface{}{"reason": "viaje familiar", "notifyFamily": true})
	if resp.Code != 0 {
		t.Fatalf("code = %d (%s)", resp.Code, resp.Message)
	}
	if len(f.reminders.cancelled) != 1 || f.reminders.cancelled[0] != "iv-1" {
		t.Errorf("cancelled = %v", f.reminders.cancelled)
	}
	if len(f.reminders.notified) != 1 || f.reminders.notified[0] != model.ReminderKindCancelled {
		t.Errorf("notified = %v", f.reminders.notified)
	}
}

func TestRescheduleInterview(t *testing.T) {
	f := newInterviewFixture(scheduledInterview("iv-1", model.InterviewStatusConfirmed))

	resp := doRequest(t, f.engine, http.MethodPost, "/interviews/iv-1/reschedule", map[string]interface{}{
		"newDate": "2099-04-01", "newTime": "10:00",
	})
	if resp.Code != model.ResponseErrorValidation {
		t.Errorf("same slot: code = %d, want %d", resp.Code, model.ResponseErrorValidation)
	}

	resp = doRequest(t, f.engine, http.MethodPost, "/interviews/iv-1/reschedule", map[string]interface{}{
		"newDate": "2099-04-02", "newTime": "11:30", "notifyFamily": true,
	})
	if resp.Code != 0 {
		t.Fatalf("code = %d (%s)", resp.Code, resp.Message)
	}
	moved := f.store.items["iv-1"]
	if moved.ScheduledDate != "2099-04-02" || moved.ScheduledTime != "11:30" {
		t.Errorf("interview not moved: %+v", moved)
	}
	if len(f.reminders.planned) != 1 || len(f.reminders.cancelled) != 1 {
		t.Errorf("reminders not re-planned: planned %v cancelled %v", f.reminders.planned, f.reminders.cancelled)
	}
	last := f.events.events[len(f.events.events)-1]
	if last.Type != model.InterviewEventRescheduled {
		t.Errorf("event = %s", last.Type)
	}

	done := newInterviewFixture(scheduledInterview("iv-2", model.InterviewStatusCompleted))
	resp = doRequest(t, done.engine, http.MethodPost, "/interviews/iv-2/reschedule", map[string]interface{}{
		"newDate": "2099-04-02", "newTime": "11:30",
	})
	if resp.Code != model.ResponseErrorInvalidTransition {
		t.Errorf("completed: code = %d, want %d", resp.Code, model.ResponseErrorInvalidTransition)
	}
}

func TestUpdateInterview(t *testing.T) {
	cases := []struct {
		name   string
		status model.InterviewStatus
		body   map[string]interface{}
		code   int
	}{
		{"notes", model.InterviewStatusScheduled, map[string]interface{}{"notes": "traer certificado"}, 0},
		{"new time", model.InterviewStatusConfirmed, map[string]interface{}{"scheduledTime": "11:30"}, 0},
		{"time on completed", model.InterviewStatusCompleted, map[string]interface{}{"scheduledTime": "11:30"}, model.ResponseErrorValidation},
		{"time on cancelled", model.InterviewStatusCancelled, map[string]interface{}{"scheduledDate": "2099-04-02"}, model.ResponseErrorValidation},
		{"virtual without link", model.InterviewStatusScheduled, map[string]interface{}{"mode": "VIRTUAL"}, model.ResponseErrorValidation},
		{"location cleared", model.InterviewStatusScheduled, map[string]interface{}{"location": ""}, model.ResponseErrorValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newInterviewFixture(scheduledInterview("7", tc.status))
			resp := doRequest(t, f.engine, http.MethodPut, "/interviews/7", tc.body)
			if resp.Code != tc.code {
				t.Fatalf("code = %d, want %d (%s)", resp.Code, tc.code, resp.Message)
			}
			if tc.code == 0 {
				return
			}
			stored, want := f.store.items["7"], scheduledInterview("7", tc.status)
			if stored.ScheduledDate != want.ScheduledDate || stored.ScheduledTime != want.ScheduledTime ||
				stored.Mode != want.Mode || stored.Location != want.Location {
				t.Errorf("rejected update reached the backend: %+v", stored)
			}
		})
	}
}

func TestDeleteInterview(t *testing.T) {
	f := newInterviewFixture(scheduledInterview("iv-1", model.InterviewStatusScheduled))
	if resp := doRequest(t, f.engine, http.MethodDelete, "/interviews/iv-1", nil); resp.Code != 0 {
		t.Fatalf("code = %d", resp.Code)
	}
	if _, ok := f.store.items["iv-1"]; ok {
		t.Error("interview still exists")
	}
	if len(f.reminders.cancelled) != 1 {
		t.Errorf("cancelled = %v", f.reminders.cancelled)
	}
	if resp := doRequest(t, f.engine, http.MethodDelete, "/interviews/iv-1", nil); resp.Code != model.ResponseErrorNoSuchInterview {
		t.Errorf("second delete code = %d", resp.Code)
	}
}

func TestListRemindersPaging(t *testing.T) {
	reminders := &fakeReminders{}
	for _, id := range []string{"r1", "r2", "r3"} {
		reminders.history = append(reminders.history, model.ReminderMessage{ID: id, InterviewID: "iv-1"})
	}
	h := NewReminderApiHandler(newFakeInterviews(), reminders)
	r := testEngine()
	r.GET("/interviews/:id/reminders", middleware.FetchPageInfo, h.ListReminders)

	resp := doRequest(t, r, http.MethodGet, "/interviews/iv-1/reminders?pageNum=2&pageSize=2", nil)
	if resp.Code != 0 {
		t.Fatalf("code = %d", resp.Code)
	}
	var page ReminderPage
	if err := json.Unmarshal(resp.Data, &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Reminders) != 1 || page.Reminders[0].ID != "r3" {
		t.Errorf("unexpected page %+v", page)
	}

	resp = doRequest(t, r, http.MethodGet, "/interviews/iv-1/reminders?pageNum=9&pageSize=2", nil)
	if err := json.Unmarshal(resp.Data, &page); err != nil {
		t.Fatal(err)
	}
	if len(page.Reminders) != 0 || page.Total != 3 {
		t.Errorf("out of range page %+v", page)
	}
}

func TestCalendarWeekView(t *testing.T) {
	a := scheduledInterview("a", model.InterviewStatusScheduled)
	b := scheduledInterview("b", model.InterviewStatusConfirmed)
	b.ScheduledDate = "2099-04-03"
	b.ScheduledTime = "15:00"

	cases := []struct {
		name         string
		calendarErr  error
		query        string
		listAllCalls int
		code         int
	}{
		{"range endpoint", nil, "", 0, 0},
		{"range endpoint missing", admission.NewStatusCodeError(http.StatusNotFound, "not found"), "", 1, 0},
		{"interviewer filter", nil, "&interviewerId=int-1", 1, 0},
		{"backend down", admission.NewStatusCodeError(http.StatusBadGateway, "bad gateway"), "", 0, model.ResponseErrorExternalService},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			interviews := newFakeInterviews(a, b)
			interviews.calendarErr = c.calendarErr
			h := NewCalendarApiHandler(interviews, nil, &fakeReminders{}, &fakeEmitter{}, nil, nil, time.UTC)
			r := testEngine()
			r.GET("/interviews/calendar", h.Calendar)

			resp := doRequest(t, r, http.MethodGet, "/interviews/calendar?view=week&date=2099-04-01"+c.query, nil)
			if resp.Code != c.code {
				t.Fatalf("code = %d, want %d (%s)", resp.Code, c.code, resp.Message)
			}
			if interviews.listAllCalls != c.listAllCalls {
				t.Errorf("ListAll called %d times, want %d", interviews.listAllCalls, c.listAllCalls)
			}
			if c.code != 0 {
				return
			}
			var got CalendarResponse
			if err := json.Unmarshal(resp.Data, &got); err != nil {
				t.Fatal(err)
			}
			if len(got.Week) != 7 || got.Week[0].Date != "2099-03-30" {
				t.Fatalf("week = %+v", got.Week)
			}
			if n := len(got.Week[2].Interviews); n != 1 || got.Week[2].Interviews[0].ID != "a" {
				t.Errorf("wednesday interviews = %+v", got.Week[2].Interviews)
			}
			if n := len(got.Week[4].Interviews); n != 1 || got.Week[4].Interviews[0].ID != "b" {
				t.Errorf("friday interviews = %+v", got.Week[4].Interviews)
			}
		})
	}
}

func TestCalendarDayViewInterviewerFilter(t *testing.T) {
	mine := scheduledInterview("mine", model.InterviewStatusScheduled)
	other := scheduledInterview("other", model.InterviewStatusScheduled)
	other.InterviewerID = "int-2"
	other.ScheduledTime = "11:00"

	interviews := newFakeInterviews(mine, other)
	h := NewCalendarApiHandler(interviews, nil, &fakeReminders{}, &fakeEmitter{}, nil, nil, time.UTC)
	r := testEngine()
	r.GET("/interviews/calendar", h.Calendar)

	resp := doRequest(t, r, http.MethodGet, "/interviews/calendar?view=day&date=2099-04-01&interviewerId=int-1", nil)
	if resp.Code != 0 {
		t.Fatalf("code = %d (%s)", resp.Code, resp.Message)
	}
	if interviews.listAllCalls != 1 {
		t.Errorf("ListAll called %d times, want 1", interviews.listAllCalls)
	}
	var got CalendarResponse
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, row := range got.Day {
		for _, i := range row.Interviews {
			ids = append(ids, i.ID)
		}
	}
	if len(ids) != 1 || ids[0] != "mine" {
		t.Errorf("day view interviews = %v, want [mine]", ids)
	}
}

type fakeVerification struct {
	remaining int
}

func (f *fakeVerification) SendCode(ctx context.Context, xl *xlog.Logger, vf *form.EmailCodeForm) (int, error) {
	if f.remaining > 0 {
		return f.remaining, &verification.ResendTooFrequentError{Remaining: f.remaining}
	}
	f.remaining = 60
	return 60, nil
}

func (f *fakeVerification) Verify(ctx context.Context, xl *xlog.Logger, vf *form.VerifyCodeForm) error {
	return nil
}

func (f *fakeVerification) Status(xl *xlog.Logger, email string) *model.VerificationStatusResponse {
	return &model.VerificationStatusResponse{Email: email, CooldownRemaining: f.remaining}
}

func (f *fakeVerification) CheckRut(ctx context.Context, xl *xlog.Logger, rut string) (*model.RutCheckResponse, error) {
	return &model.RutCheckResponse{Rut: form.NormalizeRut(rut), Valid: form.ValidRut(rut)}, nil
}

func TestSendVerificationCooldown(t *testing.T) {
	h := NewEmailApiHandler(&fakeVerification{})
	r := testEngine()
	r.POST("/email/send-verification", h.SendVerification)
	r.POST("/users/check-rut", h.CheckRut)

	body := map[string]interface{}{"email": "Familia@Correo.cl"}
	resp := doRequest(t, r, http.MethodPost, "/email/send-verification", body)
	if resp.Code != 0 {
		t.Fatalf("first send code = %d (%s)", resp.Code, resp.Message)
	}

	resp = doRequest(t, r, http.MethodPost, "/email/send-verification", body)
	if resp.Code != model.ResponseErrorResendTooFrequent {
		t.Fatalf("second send code = %d", resp.Code)
	}
	var cooldown CooldownResponse
	if err := json.Unmarshal(resp.Data, &cooldown); err != nil {
		t.Fatal(err)
	}
	if cooldown.CooldownRemaining != 60 {
		t.Errorf("cooldownRemaining = %d", cooldown.CooldownRemaining)
	}

	resp = doRequest(t, r, http.MethodPost, "/email/send-verification", map[string]interface{}{"email": "no-es-correo"})
	if resp.Code != model.ResponseErrorValidation {
		t.Errorf("invalid email code = %d", resp.Code)
	}

	resp = doRequest(t, r, http.MethodPost, "/users/check-rut", map[string]interface{}{"rut": "12.345.678-0"})
	var check model.RutCheckResponse
	if err := json.Unmarshal(resp.Data, &check); err != nil {
		t.Fatal(err)
	}
	if resp.Code != 0 || check.Valid {
		t.Errorf("invalid rut accepted: code %d %+v", resp.Code, check)
	}
}

func TestResponseErrorOf(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{&transitionError{from: model.InterviewStatusCompleted, to: model.InterviewStatusConfirmed}, model.ResponseErrorInvalidTransition},
		{admission.NewStatusCodeError(http.StatusConflict, "taken"), model.ResponseErrorScheduleConflict},
		{admission.NewStatusCodeError(http.StatusNotFound, "missing"), model.ResponseErrorNotFound},
		{admission.NewStatusCodeError(http.StatusForbidden, "no"), model.ResponseErrorUnauthorized},
		{admission.NewStatusCodeError(http.StatusBadRequest, "fecha inválida"), model.ResponseErrorValidation},
		{admission.NewStatusCodeError(http.StatusBadGateway, "down"), model.ResponseErrorExternalService},
		{admission.NewCallError("list", context.DeadlineExceeded), model.ResponseErrorExternalService},
		{&verification.ResendTooFrequentError{Remaining: 3}, model.ResponseErrorResendTooFrequent},
		{errSlotUnavailable, model.ResponseErrorSlotUnavailable},
		{form.ErrRescheduleSameSlot, model.ResponseErrorValidation},
		{context.Canceled, model.ResponseErrorInternal},
	}
	for _, tc := range cases {
		if got := responseErrorOf(tc.err); got.Code != tc.code {
			t.Errorf("responseErrorOf(%v) = %d, want %d", tc.err, got.Code, tc.code)
		}
	}
}
