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

package admission

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
	"github.com/tidwall/gjson"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

const interviewsPath = "/api/interviews"

// InterviewService 后端 /api/interviews 接口的封装。
type InterviewService struct {
	client *Client
	xl     *xlog.Logger
}

func NewInterviewService(client *Client) *InterviewService {
	return &InterviewService{client: client, xl: xlog.New("interview-service")}
}

func interviewPath(id string, action ...string) string {
	p := interviewsPath + "/" + url.PathEscape(id)
	for _, a := range action {
		p += "/" + a
	}
	return p
}

func filterQuery(f model.InterviewFilters) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("status", string(f.Status))
	set("interviewType", string(f.Type))
	set("interviewMode", string(f.Mode))
	set("interviewerId", f.InterviewerID)
	set("applicationId", f.ApplicationID)
	set("startDate", f.DateFrom)
	set("endDate", f.DateTo)
	set("search", f.Search)
	q.Set("page", strconv.Itoa(f.Page))
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	}
	return q
}

// List 分页查询面试。
func (s *InterviewService) List(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) (*model.InterviewPage, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Get(ctx, xl, interviewsPath, filterQuery(filters))
	if err != nil {
		return nil, errors.Wrap(err, "list interviews")
	}
	return MapInterviewPage(res, filters.Page, filters.Size), nil
}

// ListAll 拉取满足条件的全部面试，用于统计、日历与导出。
func (s *InterviewService) ListAll(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) ([]model.Interview, error) {
	if filters.Size <= 0 {
		filters.Size = 200
	}
	filters.Page = 0
	all := make([]model.Interview, 0)
	for {
		page, err := s.List(ctx, xl, filters)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Interviews...)
		filters.Page++
		// 页长与请求不一致说明后端未分页或已是最后一页
		if len(page.Interviews) != page.Size || filters.Page >= page.TotalPages {
			break
		}
	}
	return all, nil
}

func (s *InterviewService) Get(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Get(ctx, xl, interviewPath(id), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "get interview %s", id)
	}
	i := MapInterview(res)
	return &i, nil
}

func (s *InterviewService) Create(ctx context.Context, xl *xlog.Logger, in model.Interview) (*model.Interview, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Post(ctx, xl, interviewsPath, ToBackend(in))
	if err != nil {
		return nil, errors.Wrap(err, "create interview")
	}
	i := MapInterview(res)
	xl.Infof("interview %s created for application %s", i.ID, in.ApplicationID)
	return &i, nil
}

func (s *InterviewService) Update(ctx context.Context, xl *xlog.Logger, id string, in model.Interview) (*model.Interview, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Put(ctx, xl, interviewPath(id), ToBackend(in))
	if err != nil {
		return nil, errors.Wrapf(err, "update interview %s", id)
	}
	i := MapInterview(res)
	if i.ID == "" {
		in.ID = id
		return &in, nil
	}
	return &i, nil
}

func (s *InterviewService) Delete(ctx context.Context, xl *xlog.Logger, id string) error {
	if xl == nil {
		xl = s.xl
	}
	if _, err := s.client.Delete(ctx, xl, interviewPath(id)); err != nil {
		return errors.Wrapf(err, "delete interview %s", id)
	}
	return nil
}

func (s *InterviewService) listPath(ctx context.Context, xl *xlog.Logger, path string, q url.Values) ([]model.Interview, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Get(ctx, xl, path, q)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", path)
	}
	return MapInterviewPage(res, 0, 0).Interviews, nil
}

func (s *InterviewService) ListByApplication(ctx context.Context, xl *xlog.Logger, applicationID string) ([]model.Interview, error) {
	return s.listPath(ctx, xl, interviewsPath+"/application/"+url.PathEscape(applicationID), nil)
}

func (s *InterviewService) ListByInterviewer(ctx context.Context, xl *xlog.Logger, interviewerID string) ([]model.Interview, error) {
	return s.listPath(ctx, xl, interviewsPath+"/interviewer/"+url.PathEscape(interviewerID), nil)
}

func (s *InterviewService) Upcoming(ctx context.Context, xl *xlog.Logger) ([]model.Interview, error) {
	return s.listPath(ctx, xl, interviewsPath+"/upcoming", nil)
}

// Calendar 查询 [from, to] 之间的面试，日期格式为 YYYY-MM-DD。
func (s *InterviewService) Calendar(ctx context.Context, xl *xlog.Logger, from, to string) ([]model.Interview, error) {
	q := url.Values{}
	q.Set("startDate", from)
	q.Set("endDate", to)
	return s.listPath(ctx, xl, interviewsPath+"/calendar", q)
}

// Statistics 后端统计结果，字段缺失时为零值。
func (s *InterviewService) Statistics(ctx context.Context, xl *xlog.Logger) (*model.InterviewStats, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Get(ctx, xl, interviewsPath+"/statistics", nil)
	if err != nil {
		return nil, errors.Wrap(err, "interview statistics")
	}
	stats := &model.InterviewStats{
		Total:            int(firstOf(res, "totalInterviews", "total").Int()),
		ByStatus:         map[model.InterviewStatus]int{},
		ByType:           map[model.InterviewType]int{},
		ByMode:           map[model.InterviewMode]int{},
		ByInterviewer:    map[string]int{},
		CompletionRate:   res.Get("completionRate").Float(),
		CancellationRate: res.Get("cancellationRate").Float(),
		NoShowRate:       res.Get("noShowRate").Float(),
		AverageScore:     firstOf(res, "averageScore", "avgScore").Float(),
		Upcoming:         int(firstOf(res, "upcomingInterviews", "upcoming").Int()),
		Overdue:          int(firstOf(res, "overdueInterviews", "overdue").Int()),
	}
	firstOf(res, "statusDistribution", "byStatus").ForEach(func(k, v gjson.Result) bool {
		stats.ByStatus[model.InterviewStatus(k.String())] = int(v.Int())
		return true
	})
	firstOf(res, "typeDistribution", "byType").ForEach(func(k, v gjson.Result) bool {
		stats.ByType[model.InterviewType(k.String())] = int(v.Int())
		return true
	})
	firstOf(res, "modeDistribution", "byMode").ForEach(func(k, v gjson.Result) bool {
		stats.ByMode[model.InterviewMode(k.String())] = int(v.Int())
		return true
	})
	return stats, nil
}

// CheckAvailability 检查面试官在指定时间是否空闲，excludeID 为重新安排的面试本身。
func (s *InterviewService) CheckAvailability(ctx context.Context, xl *xlog.Logger, interviewerID, date, clock string, duration int, excludeID string) (bool, error) {
	if xl == nil {
		xl = s.xl
	}
	q := url.Values{}
	q.Set("interviewerId", interviewerID)
	q.Set("date", date)
	q.Set("time", model.NormalizeTime(clock))
	if duration > 0 {
		q.Set("duration", strconv.Itoa(duration))
	}
	if excludeID != "" {
		q.Set("excludeInterviewId", excludeID)
	}
	res, err := s.client.Get(ctx, xl, interviewsPath+"/availability", q)
	if err != nil {
		return false, errors.Wrap(err, "check availability")
	}
	if res.IsObject() {
		return firstOf(res, "available", "isAvailable").Bool(), nil
	}
	return res.Bool(), nil
}

// AvailableSlots 面试官某天可预约的时间点，原样返回后端列表，由调用方做格式兼容。
func (s *InterviewService) AvailableSlots(ctx context.Context, xl *xlog.Logger, interviewerID, date string, duration int) (gjson.Result, error) {
	if xl == nil {
		xl = s.xl
	}
	q := url.Values{}
	q.Set("interviewerId", interviewerID)
	q.Set("date", date)
	if duration > 0 {
		q.Set("duration", strconv.Itoa(duration))
	}
	res, err := s.client.Get(ctx, xl, interviewsPath+"/available-slots", q)
	if err != nil {
		return gjson.Result{}, errors.Wrap(err, "available slots")
	}
	if !res.IsArray() {
		if slots := firstOf(res, "slots", "availableSlots"); slots.IsArray() {
			return slots, nil
		}
	}
	return res, nil
}

func (s *InterviewService) action(ctx context.Context, xl *xlog.Logger, id, action string, body interface{}) (*model.Interview, error) {
	if xl == nil {
		xl = s.xl
	}
	if body == nil {
		body = map[string]interface{}{}
	}
	res, err := s.client.Post(ctx, xl, interviewPath(id, action), body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s interview %s", action, id)
	}
	i := MapInterview(res)
	if i.ID == "" {
		i.ID = id
	}
	return &i, nil
}

func (s *InterviewService) Confirm(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error) {
	return s.action(ctx, xl, id, "confirm", nil)
}

func (s *InterviewService) Start(ctx context.Context, xl *xlog.Logger, id string) (*model.Interview, error) {
	return s.action(ctx, xl, id, "start", nil)
}

// CompleteArgs 完成面试时提交的评价。
type CompleteArgs struct {
	Result           model.InterviewResult `json:"result"`
	Score            *float64              `json:"score,omitempty"`
	Notes            string                `json:"notes,omitempty"`
	Recommendations  string                `json:"recommendations,omitempty"`
	FollowUpRequired bool                  `json:"followUpRequired"`
	FollowUpNotes    string                `json:"followUpNotes,omitempty"`
}

func (s *InterviewService) Complete(ctx context.Context, xl *xlog.Logger, id string, args CompleteArgs) (*model.Interview, error) {
	return s.action(ctx, xl, id, "complete", args)
}

func (s *InterviewService) Cancel(ctx context.Context, xl *xlog.Logger, id, reason string) (*model.Interview, error) {
	return s.action(ctx, xl, id, "cancel", map[string]string{"reason": reason})
}

// Reschedule 后端返回 409 时表示新时间已被占用。
func (s *InterviewService) Reschedule(ctx context.Context, xl *xlog.Logger, id, newDate, newTime, reason string) (*model.Interview, error) {
	return s.action(ctx, xl, id, "reschedule", map[string]string{
		"newDate": newDate,
		"newTime": model.NormalizeTime(newTime),
		"reason":  reason,
	})
}

func (s *InterviewService) MarkNoShow(ctx context.Context, xl *xlog.Logger, id, notes string) (*model.Interview, error) {
	return s.action(ctx, xl, id, "no-show", map[string]string{"notes": notes})
}

// SendNotification 请求后端发送面试通知邮件，notificationType 如 confirmation、reminder。
func (s *InterviewService) SendNotification(ctx context.Context, xl *xlog.Logger, id, notificationType string) error {
	if xl == nil {
		xl = s.xl
	}
	_, err := s.client.Post(ctx, xl, interviewPath(id, "notifications"), map[string]string{"type": notificationType})
	if err != nil {
		return errors.Wrapf(err, "send %s notification for interview %s", notificationType, id)
	}
	return nil
}
