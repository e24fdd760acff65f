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
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/solutions/admission-interview/internal/common/utils"
	errors "github.com/solutions/admission-interview/internal/protodef/errors"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/db/dao"
)

// ErrKeyNotFound 键不存在或已过期。
var ErrKeyNotFound = errors.NewServerError(errors.ServerErrorStorageKeyNotFound, "storage key not found")

// Storage 带过期时间的键值存储，值以 JSON 保存。
type Storage interface {
	// Get 读取 key 并解码到 v，不存在或已过期时返回 ErrKeyNotFound。
	Get(xl *xlog.Logger, key string, v interface{}) error
	// Set ttl<=0 表示永不过期。
	Set(xl *xlog.Logger, key string, v interface{}, ttl time.Duration) error
	Delete(xl *xlog.Logger, key string) error
	// Keys 以 prefix 开头且未过期的键。
	Keys(xl *xlog.Logger, prefix string) ([]string, error)
	// PurgeExpired 删除已过期的记录，返回删除数量。
	PurgeExpired(xl *xlog.Logger, now time.Time) (int, error)
}

// Dial 连接 mongo。
func Dial(conf *utils.MongoConfig) (*mgo.Session, error) {
	session, err := mgo.Dial(conf.URI)
	if err != nil {
		return nil, err
	}
	if err = session.Ping(); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

func newEntry(key string, v interface{}, ttl time.Duration, now time.Time) (*model.StorageEntryDo, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	entry := &model.StorageEntryDo{
		Key:        key,
		Value:      string(buf),
		UpdateTime: now,
	}
	if ttl > 0 {
		entry.ExpireAt = now.Add(ttl)
	}
	return entry, nil
}

// MongoStorage 基于 mongo 的键值存储，过期记录同时由 TTL 索引与定时任务清理。
type MongoStorage struct {
	coll *mgo.Collection
	xl   *xlog.Logger
	now  func() time.Time
}

func NewMongoStorage(session *mgo.Session, database string) (*MongoStorage, error) {
	s := &MongoStorage{
		coll: session.DB(database).C(dao.CollectionStorage),
		xl:   xlog.New("kv storage"),
		now:  time.Now,
	}
	err := s.coll.EnsureIndex(mgo.Index{
		Key:         []string{"expireAt"},
		ExpireAfter: time.Second,
		Background:  true,
	})
	if err != nil {
		s.xl.Errorf("failed to ensure ttl index, error %v", err)
		return nil, err
	}
	return s, nil
}

func (s *MongoStorage) Get(xl *xlog.Logger, key string, v interface{}) error {
	if xl == nil {
		xl = s.xl
	}
	entry := model.StorageEntryDo{}
	err := s.coll.FindId(key).One(&entry)
	if err != nil {
		if err == mgo.ErrNotFound {
			return ErrKeyNotFound
		}
		xl.Errorf("failed to get key %s, error %v", key, err)
		return errors.NewServerError(errors.ServerErrorMongoOpFail, err.Error())
	}
	if entry.Expired(s.now()) {
		return ErrKeyNotFound
	}
	return json.Unmarshal([]byte(entry.Value), v)
}

func (s *MongoStorage) Set(xl *xlog.Logger, key string, v interface{}, ttl time.Duration) error {
	if xl == nil {
		xl = s.xl
	}
	entry, err := newEntry(key, v, ttl, s.now())
	if err != nil {
		return err
	}
	if _, err = s.coll.UpsertId(key, entry); err != nil {
		xl.Errorf("failed to set key %s, error %v", key, err)
		return errors.NewServerError(errors.ServerErrorMongoOpFail, err.Error())
	}
	return nil
}

func (s *MongoStorage) Delete(xl *xlog.Logger, key string) error {
	if xl == nil {
		xl = s.xl
	}
	err := s.coll.RemoveId(key)
	if err != nil && err != mgo.ErrNotFound {
		xl.Errorf("failed to delete key %s, error %v", key, err)
		return errors.NewServerError(errors.ServerErrorMongoOpFail, err.Error())
	}
	return nil
}

func (s *MongoStorage) Keys(xl *xlog.Logger, prefix string) ([]string, error) {
	if xl == nil {
		xl = s.xl
	}
	filter := keyPrefixFilter(prefix, s.now())
	entries := make([]model.StorageEntryDo, 0)
	if err := s.coll.Find(filter).Select(bson.M{"_id": 1}).Sort("_id").All(&entries); err != nil {
		xl.Errorf("failed to list keys with prefix %s, error %v", prefix, err)
		return nil, errors.NewServerError(errors.ServerErrorMongoOpFail, err.Error())
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys, nil
}

func (s *MongoStorage) PurgeExpired(xl *xlog.Logger, now time.Time) (int, error) {
	if xl == nil {
		xl = s.xl
	}
	info, err := s.coll.RemoveAll(bson.M{"expireAt": bson.M{"$lte": now}})
	if err != nil {
		xl.Errorf("failed to purge expired keys, error %v", err)
		return 0, errors.NewServerError(errors.ServerErrorMongoOpFail, err.Error())
	}
	return info.Removed, nil
}

// keyPrefixFilter 以 prefix 开头且未过期的键。
func keyPrefixFilter(prefix string, now time.Time) bson.M {
	return bson.M{
		"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)},
		"$or": []bson.M{
			{"expireAt": bson.M{"$exists": false}},
			{"expireAt": bson.M{"$gt": now}},
		},
	}
}

// MemoryStorage 进程内的键值存储，未配置 mongo 时使用，也用于测试。
type MemoryStorage struct {
	mutex   sync.RWMutex
	entries map[string]model.StorageEntryDo
	// Now 可在测试中替换。
	Now func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: map[string]model.StorageEntryDo{},
		Now:     time.Now,
	}
}

func (m *MemoryStorage) Get(xl *xlog.Logger, key string, v interface{}) error {
	m.mutex.RLock()
	entry, ok := m.entries[key]
	m.mutex.RUnlock()
	if !ok || entry.Expired(m.Now()) {
		return ErrKeyNotFound
	}
	return json.Unmarshal([]byte(entry.Value), v)
}

func (m *MemoryStorage) Set(xl *xlog.Logger, key string, v interface{}, ttl time.Duration) error {
	entry, err := newEntry(key, v, ttl, m.Now())
	if err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.entries[key] = *entry
	return nil
}

func (m *MemoryStorage) Delete(xl *xlog.Logger, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryStorage) Keys(xl *xlog.Logger, prefix string) ([]string, error) {
	now := m.Now()
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	keys := make([]string, 0)
	for k, e := range m.entries {
		if strings.HasPrefix(k, prefix) && !e.Expired(now) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStorage) PurgeExpired(xl *xlog.Logger, now time.Time) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	removed := 0
	for k, e := range m.entries {
		if e.Expired(now) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}
