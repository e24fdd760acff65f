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
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/export"
	"github.com/solutions/admission-interview/internal/service/stats"
)

type StatsInterface interface {
	Overview(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) (*model.InterviewStats, error)
	Dashboard(ctx context.Context, xl *xlog.Logger) (*stats.DashboardView, error)
}

type ExportInterface interface {
	Export(ctx context.Context, xl *xlog.Logger, f *form.ExportForm) (*export.Artifact, error)
}

// ReportApiHandler 统计面板与报表导出。
type ReportApiHandler struct {
	Stats  StatsInterface
	Export ExportInterface
}

func NewReportApiHandler(overview StatsInterface, exporter ExportInterface) *ReportApiHandler {
	return &ReportApiHandler{Stats: overview, Export: exporter}
}

func (h *ReportApiHandler) Statistics(c *gin.Context) {
	xl := xlogOf(c)
	filters := model.InterviewFilters{}
	if err := c.ShouldBindQuery(&filters); err != nil {
		sendFail(c, xl, model.NewResponseErrorBadRequest())
		return
	}
	if err := form.ValidateFilters(&filters); err != nil {
		sendFail(c, xl, model.NewResponseErrorValidation(err))
		return
	}
	res, err := h.Stats.Overview(requestContext(c), xl, filters)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, res)
}

func (h *ReportApiHandler) Dashboard(c *gin.Context) {
	xl := xlogOf(c)
	res, err := h.Stats.Dashboard(requestContext(c), xl)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, res)
}

// ExportInterviews 导出 xlsx 或 HTML。upload=true 时返回下载地址，否则直接返回文件。
func (h *ReportApiHandler) ExportInterviews(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.ExportForm{}
	if !bindAndValidate(c, xl, args, true) {
		return
	}
	a, err := h.Export.Export(requestContext(c), xl, args)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	if a.URL != "" {
		sendSuccess(c, xl, &model.ExportResponse{FileName: a.FileName, URL: a.URL})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+a.FileName+`"`)
	c.Header(model.RequestIDHeader, xl.ReqId)
	c.Data(http.StatusOK, a.ContentType, a.Data)
}
