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

package admission

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// CallError 请求未到达后端或响应无法解析。
type CallError struct {
	Api string
	Err error
}

func NewCallError(api string, err error) *CallError {
	return &CallError{Api: api, Err: err}
}

func (c *CallError) Error() string {
	return fmt.Sprintf("call api %v error: %v", c.Api, c.Err)
}

func (c *CallError) Unwrap() error {
	return c.Err
}

// StatusCodeError 后端返回了非2xx状态码。
type StatusCodeError struct {
	Code int
	Msg  string
}

func NewStatusCodeError(code int, msg string) *StatusCodeError {
	return &StatusCodeError{Code: code, Msg: msg}
}

// newStatusCodeErrorFromBody 从错误响应体中提取后端给出的提示。
func newStatusCodeErrorFromBody(code int, body []byte) *StatusCodeError {
	msg := http.StatusText(code)
	if gjson.ValidBytes(body) {
		result := gjson.ParseBytes(body)
		for _, key := range []string{"message", "error", "detail"} {
			if v := result.Get(key); v.Exists() && v.Type == gjson.String && v.String() != "" {
				msg = v.String()
				break
			}
		}
	}
	return NewStatusCodeError(code, msg)
}

func (s *StatusCodeError) Error() string {
	return fmt.Sprintf("resp status %v: %s", s.Code, s.Msg)
}

// BackendError 后端返回 {"success":false} 的业务错误。
type BackendError struct {
	Message string
}

func (b *BackendError) Error() string {
	return "admission backend error: " + b.Message
}

// StatusCode 返回错误链中的 HTTP 状态码，不存在时返回 0。
func StatusCode(err error) int {
	var se *StatusCodeError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// IsConflict 后端返回 409，即时间段已被占用。
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsBadRequest 后端拒绝了请求参数。
func IsBadRequest(err error) bool {
	code := StatusCode(err)
	return code == http.StatusBadRequest || code == http.StatusUnprocessableEntity
}

// IsTransport 网络错误或响应无法解析，此时可以使用默认数据降级。
func IsTransport(err error) bool {
	var ce *CallError
	return errors.As(err, &ce)
}
