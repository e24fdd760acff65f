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
	"regexp"
	"testing"
	"time"

	"gopkg.in/mgo.v2/bson"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

func TestMemoryStorage(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStorage()
	s.Now = func() time.Time { return now }

	state := model.VerificationState{Email: "a@b.cl", Verified: true}
	if err := s.Set(nil, "verification_a@b.cl", state, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(nil, "resend_cooldown_a@b.cl", model.ResendCooldown{Email: "a@b.cl"}, time.Minute); err != nil {
		t.Fatal(err)
	}

	var got model.VerificationState
	if err := s.Get(nil, "verification_a@b.cl", &got); err != nil || !got.Verified {
		t.Errorf("Get = %+v, %v", got, err)
	}
	if err := s.Get(nil, "missing", &got); err != ErrKeyNotFound {
		t.Errorf("missing key err = %v", err)
	}

	keys, _ := s.Keys(nil, "resend_cooldown_")
	if len(keys) != 1 {
		t.Errorf("keys = %v", keys)
	}

	now = now.Add(2 * time.Minute)
	var cd model.ResendCooldown
	if err := s.Get(nil, "resend_cooldown_a@b.cl", &cd); err != ErrKeyNotFound {
		t.Errorf("expired key err = %v", err)
	}
	keys, _ = s.Keys(nil, "resend_cooldown_")
	if len(keys) != 0 {
		t.Errorf("expired keys listed: %v", keys)
	}
	if n, _ := s.PurgeExpired(nil, now); n != 1 {
		t.Errorf("purged = %d", n)
	}
	if err := s.Delete(nil, "verification_a@b.cl"); err != nil {
		t.Fatal(err)
	}
	if err := s.Get(nil, "verification_a@b.cl", &got); err != ErrKeyNotFound {
		t.Errorf("deleted key err = %v", err)
	}
}

func TestKeyPrefixFilter(t *testing.T) {
	filter := keyPrefixFilter("verification_a.b+c@x.cl", time.Now())
	pattern, _ := filter["_id"].(bson.M)["$regex"].(string)
	if pattern != `^verification_a\.b\+c@x\.cl` {
		t.Fatalf("pattern = %q", pattern)
	}
	re := regexp.MustCompile(pattern)
	if !re.MatchString("verification_a.b+c@x.cl") {
		t.Error("prefix does not match its own key")
	}
	if re.MatchString("verification_aXbbc@x.cl") {
		t.Error("metacharacters in prefix were not escaped")
	}
}

func TestMemoryReminderLog(t *testing.T) {
	l := NewMemoryReminderLog()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	_ = l.Save(nil, model.ReminderMessage{ID: "b", InterviewID: "1", ScheduledFor: base.Add(time.Hour)})
	_ = l.Save(nil, model.ReminderMessage{ID: "a", InterviewID: "1", ScheduledFor: base})
	_ = l.Save(nil, model.ReminderMessage{ID: "c", InterviewID: "2", ScheduledFor: base})
	_ = l.Save(nil, model.ReminderMessage{ID: "a", InterviewID: "1", ScheduledFor: base, Status: model.ReminderStatusSent})

	list, err := l.ListByInterview(nil, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Status != model.ReminderStatusSent {
		t.Errorf("status not updated: %s", list[0].Status)
	}
}
