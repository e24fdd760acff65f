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

package export

import (
	"context"
	"fmt"
	"time"

	"github.com/qiniu/x/xlog"

	errors "github.com/solutions/admission-interview/internal/protodef/errors"
	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/cloud"
	"github.com/solutions/admission-interview/internal/service/stats"
)

const (
	ContentTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeHTML = "text/html; charset=utf-8"
)

var ErrUploadNotConfigured = errors.NewServerError(errors.ServerErrorUploadFail, "export upload is not configured")

// Source 导出的面试数据。
type Source interface {
	ListAll(ctx context.Context, xl *xlog.Logger, filters model.InterviewFilters) ([]model.Interview, error)
}

// Artifact 导出的文件，上传后 URL 不为空。
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
	URL         string
}

// Service 面试报表导出。
type Service struct {
	source   Source
	uploader cloud.Uploader
	loc      *time.Location
	now      func() time.Time
	xl       *xlog.Logger
}

// NewService uploader 可以为 nil，此时不支持上传。
func NewService(source Source, uploader cloud.Uploader, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		source:   source,
		uploader: uploader,
		loc:      loc,
		now:      time.Now,
		xl:       xlog.New("interview export"),
	}
}

// Export 按过滤条件导出 xlsx 或 HTML 报表，f 需已通过校验。
func (s *Service) Export(ctx context.Context, xl *xlog.Logger, f *form.ExportForm) (*Artifact, error) {
	if xl == nil {
		xl = s.xl
	}
	if f.Upload && s.uploader == nil {
		return nil, ErrUploadNotConfigured
	}
	interviews, err := s.source.ListAll(ctx, xl, f.InterviewFilters)
	if err != nil {
		return nil, err
	}
	now := s.now().In(s.loc)
	summary := stats.Compute(interviews, now)
	generated := model.FormatDate(now.Format(model.DateLayout)) + " " + now.Format(model.TimeLayout)
	name := fmt.Sprintf("entrevistas_%s", now.Format("20060102_1504"))

	a := &Artifact{}
	switch f.Format {
	case form.ExportFormatHTML:
		a.FileName = name + ".html"
		a.ContentType = ContentTypeHTML
		a.Data, err = Report(f.Title, generated, interviews, summary)
	default:
		a.FileName = name + ".xlsx"
		a.ContentType = ContentTypeXlsx
		a.Data, err = Workbook(f.Title, generated, interviews, summary)
	}
	if err != nil {
		xl.Errorf("failed to render %s export, error %v", f.Format, err)
		return nil, err
	}
	xl.Infof("exported %d interviews to %s (%d bytes)", len(interviews), a.FileName, len(a.Data))

	if f.Upload {
		key := "exports/" + a.FileName
		url, err := s.uploader.Upload(xl, key, a.Data, a.ContentType)
		if err != nil {
			return nil, errors.NewServerError(errors.ServerErrorUploadFail, err.Error())
		}
		a.URL = url
	}
	return a, nil
}
