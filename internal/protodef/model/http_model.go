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

package model

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

/*
	http_model.go: 规定API的参数与返回值的定义，***Args 表示 *** 接口的参数，***Response表示 *** 接口的返回体格式。
*/

const (
	// RequestIDHeader 七牛 request ID 头部。
	RequestIDHeader = "X-Reqid"
	// XLogKey gin context中，用于获取记录请求相关日志的 xlog logger的key。
	XLogKey = "xlog-logger"

	// UserIDContextKey 存放在请求context 中的用户ID。
	UserIDContextKey = "userID"
	// UserContextKey 存放登录用户的声明。
	UserContextKey = "user"
	// AuthorizationContextKey 原始 Authorization 头，需要时透传给招生后端。
	AuthorizationContextKey = "authorization"

	PageNumContextKey  = "pageNum"
	PageSizeContextKey = "pageSize"

	// RequestStartKey 存放在gin context中的请求开始的时间戳，单位为纳秒。
	RequestStartKey = "request-start-timestamp-nano"

	// 状态码和状态信息
	ResponseStatusCodeSuccess    ResponseStatusCode    = 0
	ResponseStatusMessageSuccess ResponseStatusMessage = "success"
)

// 状态码和状态信息
type ResponseStatusCode int
type ResponseStatusMessage string

type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId"`
}

// NewSuccessResponse 成功返回。
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    int(ResponseStatusCodeSuccess),
		Message: string(ResponseStatusMessageSuccess),
		Data:    data,
	}
}

// NewFailResponse 失败返回。
func NewFailResponse(err ResponseError) *Response {
	return &Response{
		Code:    int(err.Code),
		Message: string(err.Message),
	}
}

func (r *Response) WithRequestID(requestID string) *Response {
	r.RequestID = requestID
	return r
}

func (r *Response) WithData(data interface{}) *Response {
	r.Data = data
	return r
}

func (r *Response) Send(c *gin.Context) {
	c.JSON(http.StatusOK, r)
}

// AuthUser JWT 中携带的登录用户信息。
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// UpsertInterviewResponse 创建或者更新的面试结果
type UpsertInterviewResponse struct {
	ID        string    `json:"id"`
	Interview Interview `json:"interview"`
}

// InterviewDetailResponse 面试详情，附带前端可用的操作与展示文本。
type InterviewDetailResponse struct {
	Interview
	StatusLabel       string            `json:"statusLabel"`
	StatusColor       string            `json:"statusColor"`
	TypeLabel         string            `json:"typeLabel"`
	ModeLabel         string            `json:"modeLabel"`
	DurationText      string            `json:"durationText"`
	DateText          string            `json:"dateText"`
	Overdue           bool              `json:"overdue"`
	NextStatuses      []InterviewStatus `json:"nextStatuses"`
	CanConfirm        bool              `json:"canConfirm"`
	CanStart          bool              `json:"canStart"`
	CanComplete       bool              `json:"canComplete"`
	CanCancel         bool              `json:"canCancel"`
	CanReschedule     bool              `json:"canReschedule"`
	CanMarkNoShow     bool              `json:"canMarkNoShow"`
	NeedsSecondPerson bool              `json:"needsSecondInterviewer"`
}

// NewInterviewDetailResponse 生成面试详情，now 用于判断是否逾期。
func NewInterviewDetailResponse(i Interview, now time.Time) *InterviewDetailResponse {
	return &InterviewDetailResponse{
		Interview:         i,
		StatusLabel:       i.Status.Label(),
		StatusColor:       InterviewStatusColors[i.Status],
		TypeLabel:         i.Type.Label(),
		ModeLabel:         i.Mode.Label(),
		DurationText:      FormatDuration(int(DurationOf(i) / time.Minute)),
		DateText:          FormatDateTime(i),
		Overdue:           IsOverdue(i, now),
		NextStatuses:      NextStatuses(i.Status),
		CanConfirm:        CanBeConfirmed(i.Status),
		CanStart:          CanBeStarted(i.Status),
		CanComplete:       CanBeCompleted(i.Status),
		CanCancel:         CanBeCancelled(i.Status),
		CanReschedule:     CanBeRescheduled(i.Status),
		CanMarkNoShow:     CanMarkNoShow(i.Status),
		NeedsSecondPerson: RequiresSecondInterviewer(i.Type),
	}
}

// AvailabilityResponse 时间段可用性检查结果。
type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// ExportResponse 导出文件上传后的下载地址。
type ExportResponse struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}

// IMTokenResponse 站内通知使用的 IM token。
type IMTokenResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// RutCheckResponse RUT 校验结果。
type RutCheckResponse struct {
	Rut    string `json:"rut"`
	Valid  bool   `json:"valid"`
	Exists bool   `json:"exists"`
}

// VerificationStatusResponse 邮箱验证状态。
type VerificationStatusResponse struct {
	Email             string `json:"email"`
	Verified          bool   `json:"verified"`
	CooldownRemaining int    `json:"cooldownRemaining"`
}
