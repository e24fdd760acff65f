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
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/verification"
)

type VerificationInterface interface {
	SendCode(ctx context.Context, xl *xlog.Logger, f *form.EmailCodeForm) (int, error)
	Verify(ctx context.Context, xl *xlog.Logger, f *form.VerifyCodeForm) error
	Status(xl *xlog.Logger, email string) *model.VerificationStatusResponse
	CheckRut(ctx context.Context, xl *xlog.Logger, rut string) (*model.RutCheckResponse, error)
}

type EmailApiHandler struct {
	Verification VerificationInterface
}

func NewEmailApiHandler(v VerificationInterface) *EmailApiHandler {
	return &EmailApiHandler{Verification: v}
}

// CooldownResponse 距离可以再次发送验证码的秒数。
type CooldownResponse struct {
	CooldownRemaining int `json:"cooldownRemaining"`
}

// SendVerification 发送邮箱验证码，冷却期内返回 429001 与剩余秒数。
func (h *EmailApiHandler) SendVerification(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.EmailCodeForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	left, err := h.Verification.SendCode(requestContext(c), xl, args)
	if err != nil {
		var tooFrequent *verification.ResendTooFrequentError
		if errors.As(err, &tooFrequent) {
			xl.Infof("verification code for %s requested too frequently, %d seconds left", args.Email, tooFrequent.Remaining)
			model.NewFailResponse(*model.NewResponseErrorResendTooFrequent()).
				WithData(&CooldownResponse{CooldownRemaining: tooFrequent.Remaining}).
				WithRequestID(xl.ReqId).Send(c)
			return
		}
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, &CooldownResponse{CooldownRemaining: left})
}

func (h *EmailApiHandler) VerifyCode(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.VerifyCodeForm{}
	if !bindAndValidate(c, xl, args, false) {
		return
	}
	if err := h.Verification.Verify(requestContext(c), xl, args); err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, h.Verification.Status(xl, args.Email))
}

func (h *EmailApiHandler) VerificationStatus(c *gin.Context) {
	xl := xlogOf(c)
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		sendFail(c, xl, model.NewResponseErrorBadRequest())
		return
	}
	sendSuccess(c, xl, h.Verification.Status(xl, email))
}

// CheckRut 校验位不合法时返回 valid=false，不视为请求错误。
func (h *EmailApiHandler) CheckRut(c *gin.Context) {
	xl := xlogOf(c)
	args := &form.RutForm{}
	if err := c.ShouldBindJSON(args); err != nil || strings.TrimSpace(args.Rut) == "" {
		sendFail(c, xl, model.NewResponseErrorBadRequest())
		return
	}
	res, err := h.Verification.CheckRut(requestContext(c), xl, args.Rut)
	if err != nil {
		sendError(c, xl, err)
		return
	}
	sendSuccess(c, xl, res)
}
