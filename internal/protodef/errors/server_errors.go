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

package errors

import (
	"encoding/json"
	"errors"
)

// ServerError 服务端内部错误与非正常返回结果定义
type ServerError struct {
	Code    int    `json:"code"`
	Summary string `json:"summary"`
}

func (e *ServerError) Error() string {
	buf, _ := json.Marshal(e)
	return string(buf)
}

// NewServerError 创建错误码为 code 的内部错误。
func NewServerError(code int, summary string) *ServerError {
	return &ServerError{Code: code, Summary: summary}
}

// CodeOf 返回错误链中 ServerError 的错误码，不存在时返回 0。
func CodeOf(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// Is 判断错误链中是否存在错误码为 code 的 ServerError。
func Is(err error, code int) bool {
	return err != nil && CodeOf(err) == code
}

// 各种服务端内部错误的错误码定义。错误码为5位数字。
const (
	// 1开头表示服务端内部，或数据库访问相关的错误。
	ServerErrorUserNotLoggedin       = 10001
	ServerErrorUserNoPermission      = 10003
	ServerErrorInterviewNotFound     = 10005
	ServerErrorTemplateNotFound      = 10006
	ServerErrorTemplateReadOnly      = 10007
	ServerErrorReminderNotFound      = 10008
	ServerErrorInvalidTransition     = 10009
	ServerErrorSlotUnavailable       = 10010
	ServerErrorResendTooFrequent     = 10011
	ServerErrorVerificationFailed    = 10012
	ServerErrorScheduleConflict      = 10013
	ServerErrorStorageKeyNotFound    = 10014
	ServerErrorMongoOpFail           = 11000
	ServerErrorUnsupportedExport     = 12000
	ServerErrorReminderInPast        = 12001
	ServerErrorRecipientUnreachable  = 12002
	// 2开头表示外部服务错误。
	ServerErrorUpstreamFail   = 20001
	ServerErrorNotifySendFail = 20002
	ServerErrorUploadFail     = 20003
)
