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
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

const mostUsedTemplates = 5

type TemplateInterface interface {
	List(xl *xlog.Logger) ([]model.InterviewTemplate, error)
	Get(xl *xlog.Logger, id string) (*model.InterviewTemplate, error)
	ForType(xl *xlog.Logger, t model.InterviewType) ([]model.InterviewTemplate, error)
	CreateCustom(xl *xlog.Logger, f *form.TemplateForm, createdBy string) (*model.InterviewTemplate, error)
	DeleteCustom(xl *xlog.Logger, id string) error
	RecordUsage(xl *xlog.Logger, id string) (*model.TemplateUsage, error)
	Stats(xl *xlog.Logger) (*model.TemplateStats, error)
	MostUsed(xl *xlog.Logger, n int) ([]model.InterviewTemplate, error)
}

type TemplateApiHandler struct {
	Templates TemplateInterface
}

func NewTemplateApiHandler(templates TemplateInterface) *TemplateApiHandler {
	return &TemplateApiHandler{Templates: templates}
}

// TemplateStatsResponse 使用统计与最常用的模板。
type TemplateStatsResponse struct {
	Stats    *model.TemplateStats      `json:"stats"`
	MostUsed []model.InterviewTemplate `json:"mostUsed"`
}

// ListTemplates 全部模板，type 参数按面试类型过滤。
func (h *TemplateApiHandler) ListTemplates(c *gin.Context) {
	xl := xlogOf(c)
	var (
		list []model.InterviewTemplate
		err  error
	)
	if t := c.Query("type"); t != "" {
		list, err = h.Templates.ForType(xl, model.InterviewType(t))
	} else {
		list, err = h.Templates.List(xl)
	}
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, list)
}

func (h *TemplateApiHandler) GetTemplate(c *gin.Context) {
	xl := xlogOf(c)
	t, err := h.Templates.Get(xl, c.Param("id"))
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, t)
}

func (h *TemplateApiHandler) CreateTemplate(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.TemplateForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	t, err := h.Templates.CreateCustom(xl, args, actorOf(c))
	if err != nil {
		sendError(c, xl, err)
		return
	}
	xl.Infof("custom template %s created by %s", t.ID, t.CreatedBy)
	sendSuccess(c, xl, t)
}

func (h *TemplateApiHandler) DeleteTemplate(c *gin.Context) {
	xl := xlogOf(c)
	if err := h.Templates.DeleteCustom(xl, c.Param("id")); err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, nil)
}

// UseTemplate 记录一次模板使用。
func (h *TemplateApiHandler) UseTemplate(c *gin.Context) {
	xl := xlogOf(c)
	usage, err := h.Templates.RecordUsage(xl, c.Param("id"))
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, usage)
}

func (h *TemplateApiHandler) TemplateStats(c *gin.Context) {
	xl := xlogOf(c)
	stats, err := h.Templates.Stats(xl)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	top, err := h.Templates.MostUsed(xl, mostUsedTemplates)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, &TemplateStatsResponse{Stats: stats, MostUsed: top})
}
