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

type ResponseError struct {
	// 自定义错误码。
	Code int `json:"code"`
	// 请求ID。
	RequestID string `json:"requestID"`
	// Message
	Message string `json:"message"`
}

const (
	ResponseErrorBadRequest          = 400000
	ResponseErrorUnauthorized        = 401000
	ResponseErrorNotLoggedIn         = 401001
	ResponseErrorBadToken            = 401003
	ResponseErrorValidation          = 401005
	ResponseErrorVerificationFailed  = 401006
	ResponseErrorNotFound            = 404000
	ResponseErrorNoSuchInterview     = 404002
	ResponseErrorNoSuchTemplate      = 404003
	ResponseErrorNoSuchReminder      = 404004
	ResponseErrorScheduleConflict    = 409001
	ResponseErrorInvalidTransition   = 409002
	ResponseErrorSlotUnavailable     = 409003
	ResponseErrorTemplateReadOnly    = 409004
	ResponseErrorResendTooFrequent   = 429001
	ResponseErrorInternal            = 500000
	ResponseErrorExternalService     = 502001
	ResponseErrorNotificationFailure = 502002
)

// ScheduleConflictMessage 后端返回 409 时给用户的提示。
const ScheduleConflictMessage = "El horario seleccionado ya no está disponible. Actualiza el calendario e intenta nuevamente."

// NewResponseErrorBadRequest 参数错误。
func NewResponseErrorBadRequest() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadRequest,
		Message: "parámetros inválidos",
	}
}

// NewResponseErrorNotLoggedIn 用户未登录。
func NewResponseErrorNotLoggedIn() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotLoggedIn,
		Message: "not logged in",
	}
}

// NewResponseErrorBadToken 登录token错误。
func NewResponseErrorBadToken() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadToken,
		Message: "bad token",
	}
}

// NewResponseErrorUnauthorized 一般的HTTP Unauthorized 错误。
func NewResponseErrorUnauthorized() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorUnauthorized,
		Message: "unauthorized",
	}
}

func NewResponseErrorValidation(err error) *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorValidation,
		Message: err.Error(),
	}
}

func NewResponseErrorNotFound() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotFound,
		Message: "not found",
	}
}

// NewResponseErrorNoSuchInterview 无此面试。
func NewResponseErrorNoSuchInterview() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchInterview,
		Message: "no such interview",
	}
}

func NewResponseErrorNoSuchTemplate() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchTemplate,
		Message: "no such template",
	}
}

func NewResponseErrorNoSuchReminder() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchReminder,
		Message: "no such reminder",
	}
}

// NewResponseErrorScheduleConflict 时间冲突，提示用户刷新后重试。
func NewResponseErrorScheduleConflict() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorScheduleConflict,
		Message: ScheduleConflictMessage,
	}
}

// NewResponseErrorInvalidTransition 当前状态不允许该操作。
func NewResponseErrorInvalidTransition(from, to InterviewStatus) *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorInvalidTransition,
		Message: "no se puede pasar de " + from.Label() + " a " + to.Label(),
	}
}

func NewResponseErrorSlotUnavailable() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorSlotUnavailable,
		Message: "el horario no está disponible para el entrevistador",
	}
}

func NewResponseErrorTemplateReadOnly() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorTemplateReadOnly,
		Message: "las plantillas predefinidas no se pueden eliminar",
	}
}

// NewResponseErrorResendTooFrequent 验证码已发送，短时间内不能重复发送。
func NewResponseErrorResendTooFrequent() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorResendTooFrequent,
		Message: "send verification code request limited",
	}
}

func NewResponseErrorVerificationFailed() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorVerificationFailed,
		Message: "código de verificación inválido o expirado",
	}
}

// NewResponseErrorInternal 其他内部服务错误。
func NewResponseErrorInternal() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorInternal,
		Message: "internal server error",
	}
}

// NewResponseErrorExternalService 调用外部服务错误。
func NewResponseErrorExternalService() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorExternalService,
		Message: "calling external service failed",
	}
}

func NewResponseErrorNotificationFailure() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotificationFailure,
		Message: "sending notification failed",
	}
}

func NewResponseError(code int, message string) *ResponseError {
	return &ResponseError{
		Code:    code,
		Message: message,
	}
}
