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

package db

import (
	"sort"
	"sync"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	errors "github.com/solutions/admission-interview/internal/protodef/errors"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/db/dao"
)

// ReminderLog 提醒的发送记录，同一 ID 的记录会被覆盖为最新状态。
type ReminderLog interface {
	Save(xl *xlog.Logger, msg model.ReminderMessage) error
	ListByInterview(xl *xlog.Logger, interviewID string) ([]model.ReminderMessage, error)
}

type MongoReminderLog struct {
	coll *mgo.Collection
	xl   *xlog.Logger
}

func NewMongoReminderLog(session *mgo.Session, database string) (*MongoReminderLog, error) {
	l := &MongoReminderLog{
		coll: session.DB(database).C(dao.CollectionReminderLog),
		xl:   xlog.New("reminder log"),
	}
	err := l.coll.EnsureIndex(mgo.Index{Key: []string{"interviewId", "scheduledFor"}, Background: true})
	if err != nil {
		l.xl.Errorf("failed to ensure index, error %v", err)
		return nil, err
	}
	return l, nil
}

func (l *MongoReminderLog) Save(xl *xlog.Logger, msg model.ReminderMessage) error {
	if xl == nil {
		xl = l.xl
	}
	if _, err := l.coll.UpsertId(msg.ID, msg); err != nil {
		xl.Errorf("failed to save reminder %s, error %v", msg.ID, err)
		return errors.NewServerError(errors.ServerErrorMongoOpFail, err.Error())
	}
	return nil
}

func (l *MongoReminderLog) ListByInterview(xl *xlog.Logger, interviewID string) ([]model.ReminderMessage, error) {
	if xl == nil {
		xl = l.xl
	}
	res := make([]model.ReminderMessage, 0)
	err := l.coll.Find(bson.M{"interviewId": interviewID}).Sort("scheduledFor").All(&res)
	if err != nil {
		xl.Errorf("failed to list reminders of %s, error %v", interviewID, err)
		return nil, errors.NewServerError(errors.ServerErrorMongoOpFail, err.Error())
	}
	return res, nil
}

type MemoryReminderLog struct {
	mutex    sync.RWMutex
	messages map[string]model.ReminderMessage
}

func NewMemoryReminderLog() *MemoryReminderLog {
	return &MemoryReminderLog{messages: map[string]model.ReminderMessage{}}
}

func (l *MemoryReminderLog) Save(xl *xlog.Logger, msg model.ReminderMessage) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.messages[msg.ID] = msg
	return nil
}

func (l *MemoryReminderLog) ListByInterview(xl *xlog.Logger, interviewID string) ([]model.ReminderMessage, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	res := make([]model.ReminderMessage, 0)
	for _, m := range l.messages {
		if m.InterviewID == interviewID {
			res = append(res, m)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ScheduledFor.Before(res[j].ScheduledFor)
	})
	return res, nil
}
