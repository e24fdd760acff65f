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

package template

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qiniu/x/xlog"

	errors "github.com/solutions/admission-interview/internal/protodef/errors"
	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/db"
	"github.com/solutions/admission-interview/internal/service/db/dao"
)

var (
	ErrTemplateNotFound = errors.NewServerError(errors.ServerErrorTemplateNotFound, "template not found")
	ErrTemplateReadOnly = errors.NewServerError(errors.ServerErrorTemplateReadOnly, "builtin template cannot be deleted")
)

// Service 面试模板：内置模板加自定义模板，使用次数保存在键值存储中。
type Service struct {
	storage db.Storage
	// mutex 保护 storage 中统计与自定义模板的读改写。
	mutex sync.Mutex
	now   func() time.Time
	xl    *xlog.Logger
}

func NewService(storage db.Storage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
		xl:      xlog.New("interview template"),
	}
}

func (s *Service) loadCustom(xl *xlog.Logger) ([]model.InterviewTemplate, error) {
	custom := []model.InterviewTemplate{}
	err := s.storage.Get(xl, dao.StorageKeyCustomTemplates, &custom)
	if err != nil && err != db.ErrKeyNotFound {
		return nil, err
	}
	return custom, nil
}

func (s *Service) loadStats(xl *xlog.Logger) (*model.TemplateStats, error) {
	stats := &model.TemplateStats{}
	err := s.storage.Get(xl, dao.StorageKeyTemplateStats, stats)
	if err != nil && err != db.ErrKeyNotFound {
		return nil, err
	}
	if stats.Usage == nil {
		stats.Usage = map[string]model.TemplateUsage{}
	}
	return stats, nil
}

// List 全部模板，内置模板在前。
func (s *Service) List(xl *xlog.Logger) ([]model.InterviewTemplate, error) {
	if xl == nil {
		xl = s.xl
	}
	custom, err := s.loadCustom(xl)
	if err != nil {
		xl.Errorf("failed to load custom templates, error %v", err)
		return nil, err
	}
	return append(Builtin(), custom...), nil
}

func (s *Service) Get(xl *xlog.Logger, id string) (*model.InterviewTemplate, error) {
	if xl == nil {
		xl = s.xl
	}
	if t, ok := builtinByID(id); ok {
		return &t, nil
	}
	custom, err := s.loadCustom(xl)
	if err != nil {
		return nil, err
	}
	for _, t := range custom {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, ErrTemplateNotFound
}

// ForType 某类面试可用的模板。
func (s *Service) ForType(xl *xlog.Logger, t model.InterviewType) ([]model.InterviewTemplate, error) {
	all, err := s.List(xl)
	if err != nil {
		return nil, err
	}
	res := make([]model.InterviewTemplate, 0)
	for _, tpl := range all {
		if tpl.Type == t {
			res = append(res, tpl)
		}
	}
	return res, nil
}

// CreateCustom 保存自定义模板。
func (s *Service) CreateCustom(xl *xlog.Logger, f *form.TemplateForm, createdBy string) (*model.InterviewTemplate, error) {
	if xl == nil {
		xl = s.xl
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	custom, err := s.loadCustom(xl)
	if err != nil {
		return nil, err
	}
	t := f.ToTemplate()
	t.ID = "custom-" + uuid.NewString()
	t.CreatedBy = createdBy
	t.CreatedAt = s.now()
	custom = append(custom, t)
	if err = s.storage.Set(xl, dao.StorageKeyCustomTemplates, custom, 0); err != nil {
		xl.Errorf("failed to save custom template %s, error %v", t.Name, err)
		return nil, err
	}
	xl.Infof("custom template %s created by %s", t.ID, createdBy)
	return &t, nil
}

// DeleteCustom 删除自定义模板，内置模板不能删除。
func (s *Service) DeleteCustom(xl *xlog.Logger, id string) error {
	if xl == nil {
		xl = s.xl
	}
	if _, ok := builtinByID(id); ok {
		return ErrTemplateReadOnly
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	custom, err := s.loadCustom(xl)
	if err != nil {
		return err
	}
	kept := make([]model.InterviewTemplate, 0, len(custom))
	for _, t := range custom {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(custom) {
		return ErrTemplateNotFound
	}
	if err = s.storage.Set(xl, dao.StorageKeyCustomTemplates, kept, 0); err != nil {
		return err
	}
	stats, err := s.loadStats(xl)
	if err != nil {
		return err
	}
	if u, ok := stats.Usage[id]; ok {
		delete(stats.Usage, id)
		stats.TotalUses -= u.Count
		stats.MostUsedID = mostUsedID(stats.Usage)
		return s.storage.Set(xl, dao.StorageKeyTemplateStats, stats, 0)
	}
	return nil
}

// RecordUsage 模板被用于一场面试时加一。
func (s *Service) RecordUsage(xl *xlog.Logger, id string) (*model.TemplateUsage, error) {
	if xl == nil {
		xl = s.xl
	}
	if _, err := s.Get(xl, id); err != nil {
		return nil, err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	stats, err := s.loadStats(xl)
	if err != nil {
		return nil, err
	}
	u := stats.Usage[id]
	u.TemplateID = id
	u.Count++
	u.LastUsedAt = s.now()
	stats.Usage[id] = u
	stats.TotalUses++
	stats.MostUsedID = mostUsedID(stats.Usage)
	if err = s.storage.Set(xl, dao.StorageKeyTemplateStats, stats, 0); err != nil {
		xl.Errorf("failed to save template stats, error %v", err)
		return nil, err
	}
	return &u, nil
}

func (s *Service) Stats(xl *xlog.Logger) (*model.TemplateStats, error) {
	if xl == nil {
		xl = s.xl
	}
	return s.loadStats(xl)
}

// MostUsed 按使用次数降序的前 n 个模板，次数相同时最近使用的在前。
func (s *Service) MostUsed(xl *xlog.Logger, n int) ([]model.InterviewTemplate, error) {
	if xl == nil {
		xl = s.xl
	}
	stats, err := s.loadStats(xl)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	usage := sortedUsage(stats.Usage)
	res := make([]model.InterviewTemplate, 0, n)
	for _, u := range usage {
		if len(res) >= n {
			break
		}
		t, err := s.Get(xl, u.TemplateID)
		if err != nil {
			// 已删除的模板
			continue
		}
		res = append(res, *t)
	}
	return res, nil
}

func sortedUsage(usage map[string]model.TemplateUsage) []model.TemplateUsage {
	res := make([]model.TemplateUsage, 0, len(usage))
	for _, u := range usage {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		if !res[i].LastUsedAt.Equal(res[j].LastUsedAt) {
			return res[i].LastUsedAt.After(res[j].LastUsedAt)
		}
		return res[i].TemplateID < res[j].TemplateID
	})
	return res
}

func mostUsedID(usage map[string]model.TemplateUsage) string {
	sorted := sortedUsage(usage)
	if len(sorted) == 0 {
		return ""
	}
	return sorted[0].TemplateID
}
