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

package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/common/utils"
	errors "github.com/solutions/admission-interview/internal/protodef/errors"
	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/cloud"
	"github.com/solutions/admission-interview/internal/service/db"
)

var (
	ErrReminderNotFound = errors.NewServerError(errors.ServerErrorReminderNotFound, "reminder not found")
	ErrReminderInPast   = errors.NewServerError(errors.ServerErrorReminderInPast, "reminder time already passed")
)

// UnreachableError 面试没有该渠道可用的联系方式。
type UnreachableError struct {
	Channel model.ReminderChannel
	Reason  string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("recipient unreachable by %s: %s", e.Channel, e.Reason)
}

// Service 面试提醒：生成消息、定时发送并记录发送结果。
type Service struct {
	senders   map[model.ReminderChannel]cloud.Sender
	log       db.ReminderLog
	scheduler *Scheduler
	pool      *Pool
	school    School
	channels  []model.ReminderChannel
	leads     []time.Duration
	loc       *time.Location
	now       func() time.Time
	xl        *xlog.Logger
}

func NewService(conf utils.ReminderConfig, senders map[model.ReminderChannel]cloud.Sender, log db.ReminderLog, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		senders: senders,
		log:     log,
		pool:    NewPool(conf.Workers, 0),
		school:  School{Name: conf.SchoolName, Phone: conf.SchoolPhone},
		loc:     loc,
		now:     time.Now,
		xl:      xlog.New("interview reminder"),
	}
	for _, c := range conf.Channels {
		ch := model.ReminderChannel(strings.ToUpper(c))
		if _, ok := senders[ch]; ok {
			s.channels = append(s.channels, ch)
		}
	}
	for _, m := range conf.LeadMinutes {
		if m > 0 {
			s.leads = append(s.leads, time.Duration(m)*time.Minute)
		}
	}
	s.scheduler = NewScheduler(s.dispatch)
	return s
}

// Recipient 渠道对应的接收方：邮件使用邮箱，其余渠道使用规范化后的手机号。
func Recipient(i model.Interview, channel model.ReminderChannel, override string) (string, error) {
	switch channel {
	case model.ReminderChannelEmail:
		email := strings.TrimSpace(override)
		if email == "" {
			email = i.ContactEmail
		}
		if email == "" || !strings.Contains(email, "@") {
			return "", &UnreachableError{Channel: channel, Reason: "no email"}
		}
		return strings.ToLower(email), nil
	default:
		phone := override
		if phone == "" {
			phone = i.ContactPhone
		}
		if phone == "" {
			return "", &UnreachableError{Channel: channel, Reason: "no phone"}
		}
		normalized, err := NormalizePhone(phone)
		if err != nil {
			return "", &UnreachableError{Channel: channel, Reason: err.Error()}
		}
		return normalized, nil
	}
}

func (s *Service) build(i model.Interview, channel model.ReminderChannel, kind model.ReminderKind, recipient, custom string) (model.ReminderMessage, error) {
	to, err := Recipient(i, channel, recipient)
	if err != nil {
		return model.ReminderMessage{}, err
	}
	subject, body, err := Compose(kind, i, s.school, custom)
	if err != nil {
		return model.ReminderMessage{}, err
	}
	return model.ReminderMessage{
		InterviewID: i.ID,
		Channel:     channel,
		Kind:        kind,
		Recipient:   to,
		Subject:     subject,
		Body:        body,
		Status:      model.ReminderStatusPending,
	}, nil
}

// Schedule 按表单为面试安排一条提醒，发送时间已到时立即发送。
func (s *Service) Schedule(xl *xlog.Logger, i model.Interview, f *form.ReminderForm, createdBy string) (*model.ReminderMessage, error) {
	if xl == nil {
		xl = s.xl
	}
	if _, ok := s.senders[f.Channel]; !ok {
		return nil, &UnreachableError{Channel: f.Channel, Reason: "channel not configured"}
	}
	msg, err := s.build(i, f.Channel, f.Kind, f.Recipient, f.CustomBody)
	if err != nil {
		return nil, err
	}
	msg.CreatedBy = createdBy
	now := s.now()
	start, ok := model.ScheduledAt(i, s.loc)
	if !ok && !f.Immediate && f.SendAt == nil {
		return nil, ErrReminderInPast
	}
	msg.ScheduledFor = f.SendTime(start, now)
	if !f.Immediate && msg.ScheduledFor.Before(now.Add(-time.Minute)) {
		return nil, ErrReminderInPast
	}
	id, ok := s.scheduler.Schedule(msg)
	if !ok {
		return nil, fmt.Errorf("reminder scheduler is shut down")
	}
	msg.ID = id
	xl.Infof("reminder %s (%s %s) for interview %s scheduled at %s", id, msg.Channel, msg.Kind, i.ID, msg.ScheduledFor.Format(time.RFC3339))
	return &msg, nil
}

// Notify 立即通过全部已配置的渠道发送一种提醒，没有联系方式的渠道被跳过。
func (s *Service) Notify(xl *xlog.Logger, i model.Interview, kind model.ReminderKind) []model.ReminderMessage {
	if xl == nil {
		xl = s.xl
	}
	res := make([]model.ReminderMessage, 0, len(s.channels))
	for _, ch := range s.channels {
		msg, err := s.build(i, ch, kind, "", "")
		if err != nil {
			xl.Warnf("skip %s %s notification of interview %s: %v", ch, kind, i.ID, err)
			continue
		}
		msg.ScheduledFor = s.now()
		id, ok := s.scheduler.Schedule(msg)
		if !ok {
			continue
		}
		msg.ID = id
		res = append(res, msg)
	}
	return res
}

// PlanDefault 按配置的提前量为面试安排提醒（如 24h 与 2h），已过的时间点被跳过。
// id 由面试、种类与渠道决定，重复调用会替换之前的提醒。
func (s *Service) PlanDefault(xl *xlog.Logger, i model.Interview) []model.ReminderMessage {
	if xl == nil {
		xl = s.xl
	}
	res := make([]model.ReminderMessage, 0)
	start, ok := model.ScheduledAt(i, s.loc)
	if !ok || !model.IsActive(i.Status) {
		return res
	}
	now := s.now()
	for _, lead := range s.leads {
		at := start.Add(-lead)
		if !at.After(now) {
			continue
		}
		kind := model.ReminderKindReminder2h
		if lead >= 12*time.Hour {
			kind = model.ReminderKindReminder24h
		}
		for _, ch := range s.channels {
			msg, err := s.build(i, ch, kind, "", "")
			if err != nil {
				xl.Debugf("skip %s reminder of interview %s: %v", ch, i.ID, err)
				continue
			}
			msg.ID = fmt.Sprintf("%s-%s-%s", i.ID, strings.ToLower(string(kind)), strings.ToLower(string(ch)))
			msg.ScheduledFor = at
			if _, ok := s.scheduler.Schedule(msg); ok {
				res = append(res, msg)
			}
		}
	}
	if len(res) > 0 {
		xl.Infof("planned %d reminders for interview %s", len(res), i.ID)
	}
	return res
}

// Cancel 取消一条待发送的提醒并记录。
func (s *Service) Cancel(xl *xlog.Logger, id string) (*model.ReminderMessage, error) {
	if xl == nil {
		xl = s.xl
	}
	msg, ok := s.scheduler.Cancel(id)
	if !ok {
		return nil, ErrReminderNotFound
	}
	if err := s.log.Save(xl, msg); err != nil {
		xl.Errorf("failed to log cancelled reminder %s, error %v", id, err)
	}
	return &msg, nil
}

// CancelForInterview 面试取消或改期时取消其全部待发送提醒。
func (s *Service) CancelForInterview(xl *xlog.Logger, interviewID string) int {
	if xl == nil {
		xl = s.xl
	}
	cancelled := s.scheduler.CancelForInterview(interviewID)
	for _, msg := range cancelled {
		if err := s.log.Save(xl, msg); err != nil {
			xl.Errorf("failed to log cancelled reminder %s, error %v", msg.ID, err)
		}
	}
	return len(cancelled)
}

// History 面试的待发送提醒与已记录的提醒。
func (s *Service) History(xl *xlog.Logger, interviewID string) ([]model.ReminderMessage, error) {
	if xl == nil {
		xl = s.xl
	}
	logged, err := s.log.ListByInterview(xl, interviewID)
	if err != nil {
		return nil, err
	}
	res := append(s.scheduler.Pending(interviewID), logged...)
	sortByTime(res)
	return res, nil
}

// Pending 全部待发送的提醒。
func (s *Service) Pending() []model.ReminderMessage {
	return s.scheduler.Pending("")
}

// dispatch 到期的提醒交给发送协程。
func (s *Service) dispatch(msg model.ReminderMessage) {
	if !s.pool.Submit(func() { s.deliver(msg) }) {
		msg.Status = model.ReminderStatusFailed
		msg.Error = "send queue full"
		s.xl.Errorf("reminder %s dropped: send queue full", msg.ID)
		if err := s.log.Save(s.xl, msg); err != nil {
			s.xl.Errorf("failed to log reminder %s, error %v", msg.ID, err)
		}
	}
}

func (s *Service) deliver(msg model.ReminderMessage) {
	xl := xlog.New("reminder-" + msg.ID)
	sender, ok := s.senders[msg.Channel]
	if !ok {
		msg.Status = model.ReminderStatusFailed
		msg.Error = "channel not configured"
	} else if err := sender.Send(xl, msg); err != nil {
		xl.Errorf("failed to send %s reminder %s to %s, error %v", msg.Channel, msg.ID, msg.Recipient, err)
		msg.Status = model.ReminderStatusFailed
		msg.Error = err.Error()
	} else {
		sentAt := s.now()
		msg.Status = model.ReminderStatusSent
		msg.SentAt = &sentAt
	}
	if err := s.log.Save(xl, msg); err != nil {
		xl.Errorf("failed to log reminder %s, error %v", msg.ID, err)
	}
}

// Shutdown 丢弃待发送的提醒并等待正在发送的提醒完成。
func (s *Service) Shutdown() {
	dropped := s.scheduler.Shutdown()
	s.pool.Stop()
	if dropped > 0 {
		s.xl.Warnf("%d pending reminders dropped on shutdown", dropped)
	}
}
