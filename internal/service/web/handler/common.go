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
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	servererrors "github.com/solutions/admission-interview/internal/protodef/errors"
	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/calendar"
	"github.com/solutions/admission-interview/internal/service/cloud/admission"
	"github.com/solutions/admission-interview/internal/service/reminder"
	"github.com/solutions/admission-interview/internal/service/verification"
)

func xlogOf(c *gin.Context) *xlog.Logger {
	return c.MustGet(model.XLogKey).(*xlog.Logger)
}

// requestContext 附带请求者的 Authorization 头，调用后端时透传。
func requestContext(c *gin.Context) context.Context {
	return admission.WithAuthorization(c.Request.Context(), c.GetString(model.AuthorizationContextKey))
}

func currentUser(c *gin.Context) model.AuthUser {
	v, ok := c.Get(model.UserContextKey)
	if !ok {
		return model.AuthUser{}
	}
	user, _ := v.(model.AuthUser)
	return user
}

// actorOf 事件与提醒记录中的操作人。
func actorOf(c *gin.Context) string {
	user := currentUser(c)
	if user.Email != "" {
		return user.Email
	}
	return user.ID
}

func sendSuccess(c *gin.Context, xl *xlog.Logger, data interface{}) {
	model.NewSuccessResponse(data).WithRequestID(xl.ReqId).Send(c)
}

func sendFail(c *gin.Context, xl *xlog.Logger, respErr *model.ResponseError) {
	model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
}

// bindAndValidate 解析请求体或查询参数并校验，失败时已写回响应。
func bindAndValidate(c *gin.Context, xl *xlog.Logger, args interface{ Validate() error }, query bool) bool {
	var err error
	switch {
	case query:
		err = c.ShouldBindQuery(args)
	case c.Request.ContentLength == 0:
		// 空请求体按全部默认值处理
	default:
		err = c.ShouldBindJSON(args)
	}
	if err != nil {
		xl.Infof("invalid args in request, error %v", err)
		sendFail(c, xl, model.NewResponseErrorBadRequest())
		return false
	}
	if err := args.Validate(); err != nil {
		xl.Infof("form validation error: %v", err)
		sendFail(c, xl, model.NewResponseErrorValidation(err))
		return false
	}
	return true
}

// transitionError 当前状态不允许进行该操作。
type transitionError struct {
	from, to model.InterviewStatus
}

func (e *transitionError) Error() string {
	return "cannot move interview from " + string(e.from) + " to " + string(e.to)
}

func checkTransition(current model.Interview, to model.InterviewStatus) error {
	if !model.CanTransitionTo(current.Status, to) {
		return &transitionError{from: current.Status, to: to}
	}
	return nil
}

var (
	errSlotUnavailable     = servererrors.NewServerError(servererrors.ServerErrorSlotUnavailable, "slot unavailable")
	errInterviewerRequired = fmt.Errorf("debe indicar el entrevistador")
	errDateTimeRequired    = fmt.Errorf("debe indicar fecha (YYYY-MM-DD) y hora (HH:mm)")
)

// responseErrorOf 将服务错误转换为返回给前端的错误码。
func responseErrorOf(err error) *model.ResponseError {
	var (
		transition   *transitionError
		cannotMove   *calendar.ErrCannotReschedule
		tooFrequent  *verification.ResendTooFrequentError
		unreachable  *reminder.UnreachableError
		statusErr    *admission.StatusCodeError
		backendErr   *admission.BackendError
		validateErrs validation.Errors
	)
	switch {
	case errors.As(err, &transition):
		return model.NewResponseErrorInvalidTransition(transition.from, transition.to)
	case errors.As(err, &cannotMove):
		return model.NewResponseErrorInvalidTransition(cannotMove.Status, model.InterviewStatusRescheduled)
	case calendar.IsConflict(err), admission.IsConflict(err), servererrors.Is(err, servererrors.ServerErrorScheduleConflict):
		return model.NewResponseErrorScheduleConflict()
	case errors.As(err, &tooFrequent):
		return model.NewResponseErrorResendTooFrequent()
	case errors.As(err, &unreachable):
		return model.NewResponseErrorValidation(err)
	case errors.As(err, &validateErrs):
		return model.NewResponseErrorValidation(err)
	case errors.Is(err, form.ErrRescheduleSameSlot), errors.Is(err, form.ErrUnsupportedFormat):
		return model.NewResponseErrorValidation(err)
	}

	switch servererrors.CodeOf(err) {
	case servererrors.ServerErrorInterviewNotFound:
		return model.NewResponseErrorNoSuchInterview()
	case servererrors.ServerErrorTemplateNotFound:
		return model.NewResponseErrorNoSuchTemplate()
	case servererrors.ServerErrorTemplateReadOnly:
		return model.NewResponseErrorTemplateReadOnly()
	case servererrors.ServerErrorReminderNotFound:
		return model.NewResponseErrorNoSuchReminder()
	case servererrors.ServerErrorSlotUnavailable:
		return model.NewResponseErrorSlotUnavailable()
	case servererrors.ServerErrorVerificationFailed:
		return model.NewResponseErrorVerificationFailed()
	case servererrors.ServerErrorResendTooFrequent:
		return model.NewResponseErrorResendTooFrequent()
	case servererrors.ServerErrorReminderInPast, servererrors.ServerErrorRecipientUnreachable, servererrors.ServerErrorUnsupportedExport:
		return model.NewResponseErrorValidation(err)
	case servererrors.ServerErrorNotifySendFail:
		return model.NewResponseErrorNotificationFailure()
	case servererrors.ServerErrorUploadFail, servererrors.ServerErrorUpstreamFail:
		return model.NewResponseErrorExternalService()
	}

	switch {
	case admission.IsNotFound(err):
		return model.NewResponseErrorNotFound()
	case admission.IsUnauthorized(err):
		return model.NewResponseErrorUnauthorized()
	case admission.IsBadRequest(err) && errors.As(err, &statusErr):
		return model.NewResponseError(model.ResponseErrorValidation, statusErr.Msg)
	case errors.As(err, &backendErr):
		return model.NewResponseError(model.ResponseErrorExternalService, backendErr.Message)
	case admission.IsTransport(err), admission.StatusCode(err) != 0:
		return model.NewResponseErrorExternalService()
	}
	return model.NewResponseErrorInternal()
}

func sendError(c *gin.Context, xl *xlog.Logger, err error) {
	respErr := responseErrorOf(err)
	if respErr.Code >= model.ResponseErrorInternal {
		xl.Errorf("%s %s failed, error %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		xl.Infof("%s %s rejected, error %v", c.Request.Method, c.Request.URL.Path, err)
	}
	sendFail(c, xl, respErr)
}

// sendInterviewError 面试接口中后端返回的 404 即面试不存在。
func sendInterviewError(c *gin.Context, xl *xlog.Logger, err error) {
	if admission.IsNotFound(err) {
		xl.Infof("interview %s not found", c.Param("id"))
		sendFail(c, xl, model.NewResponseErrorNoSuchInterview())
		return
	}
	sendError(c, xl, err)
}
