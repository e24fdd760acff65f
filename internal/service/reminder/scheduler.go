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
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

type entry struct {
	msg   model.ReminderMessage
	timer *time.Timer
}

// Scheduler 进程内的定时提醒。待发送的提醒不持久化，服务重启后丢失。
type Scheduler struct {
	mutex   sync.Mutex
	pending map[string]*entry
	closed  bool
	fire    func(model.ReminderMessage)
	now     func() time.Time
}

// NewScheduler fire 在到期时调用，运行在定时器协程中；已到期的提醒在 Schedule 中直接调用。
func NewScheduler(fire func(model.ReminderMessage)) *Scheduler {
	return &Scheduler{
		pending: map[string]*entry{},
		fire:    fire,
		now:     time.Now,
	}
}

// Schedule 在 msg.ScheduledFor 时发送，时间已过时立即发送。msg.ID 为空时生成新的 ID。
func (s *Scheduler) Schedule(msg model.ReminderMessage) (string, bool) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Status = model.ReminderStatusPending
	delay := msg.ScheduledFor.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return "", false
	}
	if old, ok := s.pending[msg.ID]; ok {
		old.timer.Stop()
		delete(s.pending, msg.ID)
	}
	id := msg.ID
	if delay == 0 {
		s.mutex.Unlock()
		s.fire(msg)
		return id, true
	}
	defer s.mutex.Unlock()
	e := &entry{msg: msg}
	e.timer = time.AfterFunc(delay, func() {
		if m, ok := s.take(id, e); ok {
			s.fire(m)
		}
	})
	s.pending[id] = e
	return id, true
}

// take 取出到期的提醒，已被取消或替换时返回 false。
func (s *Scheduler) take(id string, e *entry) (model.ReminderMessage, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	cur, ok := s.pending[id]
	if !ok || cur != e {
		return model.ReminderMessage{}, false
	}
	delete(s.pending, id)
	return cur.msg, true
}

// Cancel 取消一条待发送的提醒。
func (s *Scheduler) Cancel(id string) (model.ReminderMessage, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	e, ok := s.pending[id]
	if !ok {
		return model.ReminderMessage{}, false
	}
	e.timer.Stop()
	delete(s.pending, id)
	e.msg.Status = model.ReminderStatusCancelled
	return e.msg, true
}

// CancelForInterview 取消某场面试的全部待发送提醒。
func (s *Scheduler) CancelForInterview(interviewID string) []model.ReminderMessage {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	res := make([]model.ReminderMessage, 0)
	for id, e := range s.pending {
		if e.msg.InterviewID != interviewID {
			continue
		}
		e.timer.Stop()
		delete(s.pending, id)
		e.msg.Status = model.ReminderStatusCancelled
		res = append(res, e.msg)
	}
	sortByTime(res)
	return res
}

// Pending 待发送的提醒，interviewID 为空时返回全部。
func (s *Scheduler) Pending(interviewID string) []model.ReminderMessage {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	res := make([]model.ReminderMessage, 0, len(s.pending))
	for _, e := range s.pending {
		if interviewID == "" || e.msg.InterviewID == interviewID {
			res = append(res, e.msg)
		}
	}
	sortByTime(res)
	return res
}

// Shutdown 停止全部定时器，返回被丢弃的提醒数量。之后的 Schedule 不再生效。
func (s *Scheduler) Shutdown() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
	n := len(s.pending)
	for id, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, id)
	}
	return n
}

func sortByTime(list []model.ReminderMessage) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].ScheduledFor.Equal(list[j].ScheduledFor) {
			return list[i].ScheduledFor.Before(list[j].ScheduledFor)
		}
		return list[i].ID < list[j].ID
	})
}
