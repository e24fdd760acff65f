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

package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qiniu/x/log"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/db"
	"github.com/solutions/admission-interview/internal/service/db/dao"
	"github.com/solutions/admission-interview/internal/service/events"
)

const (
	// PlanWindow 计划任务为这段时间内开始的面试安排提醒。
	PlanWindow = 48 * time.Hour
	// OverdueLookBack 逾期检查回看的天数。
	OverdueLookBack = 7
	taskTimeout     = 2 * time.Minute
)

type InterviewSource interface {
	ListAll(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) ([]model.Interview, error)
}

type ReminderPlanner interface {
	PlanDefault(xl *xlog.Logger, i model.Interview) []model.ReminderMessage
}

type EventEmitter interface {
	Emit(ctx context.Context, xl *xlog.Logger, event model.InterviewEvent)
}

// InterviewTask 面试相关的定时任务。
type InterviewTask struct {
	source    InterviewSource
	reminders ReminderPlanner
	storage   db.Storage
	emitter   EventEmitter
	loc       *time.Location
	now       func() time.Time
	// bootID 区分进程，提醒定时器只存在于内存中，重启后需要重新安排。
	bootID    string
}

func NewInterviewTask(source InterviewSource, reminders ReminderPlanner, storage db.Storage, emitter EventEmitter, loc *time.Location) *InterviewTask {
	if loc == nil {
		loc = time.Local
	}
	return &InterviewTask{
		source:    source,
		reminders: reminders,
		storage:   storage,
		emitter:   emitter,
		loc:       loc,
		now:       time.Now,
		bootID:    uuid.NewString(),
	}
}

func (t *InterviewTask) list(xl *xlog.Logger, from, to time.Time) ([]model.Interview, error) {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()
	return t.source.ListAll(ctx, xl, model.InterviewFilters{
		DateFrom: from.Format(model.DateLayout),
		DateTo:   to.Format(model.DateLayout),
	})
}

// TaskForOverdueInterviews 查找已过结束时间仍未结案的面试，每场面试只发布一次逾期事件。
func (t *InterviewTask) TaskForOverdueInterviews() int {
	xl := xlog.New("task-overdue")
	now := t.now().In(t.loc)
	log.Infof("taskForOverdueInterviews run at %s", now.String())

	interviews, err := t.list(xl, now.AddDate(0, 0, -OverdueLookBack), now)
	if err != nil {
		log.Errorf("TaskForOverdueInterviews list interviews, error: %v", err)
		return 0
	}
	n := 0
	for _, i := range interviews {
		if !model.IsOverdue(i, now) {
			continue
		}
		key := dao.StorageKeyOverduePrefix + i.ID
		var seen bool
		if err := t.storage.Get(xl, key, &seen); err == nil && seen {
			continue
		}
		log.Infof("TaskForOverdueInterviews interview %s overdue, status: %s, scheduled: %s %s", i.ID, i.Status, i.ScheduledDate, i.ScheduledTime)
		if t.emitter != nil {
			t.emitter.Emit(context.Background(), xl, events.EventOf(model.InterviewEventOverdue, i, "system"))
		}
		if err := t.storage.Set(xl, key, true, (OverdueLookBack+1)*24*time.Hour); err != nil {
			log.Errorf("TaskForOverdueInterviews mark %s, error %v", i.ID, err)
		}
		n++
	}
	return n
}

func (t *InterviewTask) planKey(i model.Interview) string {
	return dao.StorageKeyReminderPlanPrefix + t.bootID + "_" + i.ID + "_" + model.NormalizeDate(i.ScheduledDate) + "_" + model.NormalizeTime(i.ScheduledTime)
}

// TaskForPlanReminders 为未来 48 小时内已安排或已确认的面试安排默认提醒。
// 面试改期或进程重启后键不同，会重新安排。
func (t *InterviewTask) TaskForPlanReminders() int {
	xl := xlog.New("task-reminders")
	now := t.now().In(t.loc)
	log.Infof("taskForPlanReminders run at %s", now.String())

	interviews, err := t.list(xl, now, now.Add(PlanWindow))
	if err != nil {
		log.Errorf("TaskForPlanReminders list interviews, error: %v", err)
		return 0
	}
	planned := 0
	for _, i := range interviews {
		if i.Status != model.InterviewStatusScheduled && i.Status != model.InterviewStatusConfirmed {
			continue
		}
		if !model.IsUpcoming(i, now, PlanWindow) {
			continue
		}
		key := t.planKey(i)
		var done bool
		if err := t.storage.Get(xl, key, &done); err == nil && done {
			continue
		}
		msgs := t.reminders.PlanDefault(xl, i)
		if err := t.storage.Set(xl, key, true, PlanWindow+24*time.Hour); err != nil {
			log.Errorf("TaskForPlanReminders mark %s, error %v", i.ID, err)
		}
		planned += len(msgs)
	}
	if planned > 0 {
		log.Infof("TaskForPlanReminders planned %d reminders", planned)
	}
	return planned
}

// TaskForPurgeStorage 清理过期的键值记录。
func (t *InterviewTask) TaskForPurgeStorage() int {
	xl := xlog.New("task-purge")
	n, err := t.storage.PurgeExpired(xl, t.now())
	if err != nil {
		log.Errorf("TaskForPurgeStorage error %v", err)
		return 0
	}
	if n > 0 {
		log.Infof("TaskForPurgeStorage removed %d expired entries", n)
	}
	return n
}
