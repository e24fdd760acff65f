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

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/common/utils"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// AddRequestID 使用请求中的 X-Reqid 或生成新的请求ID，并为请求创建 xlog logger。
func AddRequestID(c *gin.Context) {
	requestID := c.Request.Header.Get(model.RequestIDHeader)
	if requestID == "" {
		requestID = utils.NewReqID()
		c.Request.Header.Set(model.RequestIDHeader, requestID)
	}
	xl := xlog.New(requestID)
	c.Set(model.XLogKey, xl)
	c.Set(model.RequestStartKey, time.Now().UnixNano())
	c.Writer.Header().Set(model.RequestIDHeader, requestID)
}

// AccessLog 记录请求方法、路径、耗时与登录用户。
func AccessLog(c *gin.Context) {
	c.Next()
	xl, ok := c.Get(model.XLogKey)
	if !ok {
		return
	}
	start := c.GetInt64(model.RequestStartKey)
	elapsed := time.Duration(time.Now().UnixNano() - start)
	user := c.GetString(model.UserIDContextKey)
	xl.(*xlog.Logger).Infof("%s %s %d %s user=%q", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), elapsed, user)
}

// FetchPageInfo 读取分页参数，页码从 1 开始。
func FetchPageInfo(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	pageNumArg := c.DefaultQuery("pageNum", "1")
	pageSizeArg := c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize))
	pageNum, err := strconv.Atoi(pageNumArg)
	if err != nil || pageNum < 1 {
		xl.Infof("FetchPageInfo.pageNum %q invalid, use default value", pageNumArg)
		pageNum = 1
	}
	pageSize, err := strconv.Atoi(pageSizeArg)
	if err != nil || pageSize < 1 {
		xl.Infof("FetchPageInfo.pageSize %q invalid, use default value", pageSizeArg)
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	c.Set(model.PageNumContextKey, pageNum)
	c.Set(model.PageSizeContextKey, pageSize)
}
