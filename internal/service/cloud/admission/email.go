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
	"context"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
)

// EmailService 后端 /api/email 与 /api/users/check-rut 接口的封装。
type EmailService struct {
	client *Client
	xl     *xlog.Logger
}

func NewEmailService(client *Client) *EmailService {
	return &EmailService{client: client, xl: xlog.New("email-service")}
}

// SendVerification 请求后端向 email 发送验证码。
func (s *EmailService) SendVerification(ctx context.Context, xl *xlog.Logger, email, rut, firstName string) error {
	if xl == nil {
		xl = s.xl
	}
	body := map[string]string{"email": email}
	if rut != "" {
		body["rut"] = rut
	}
	if firstName != "" {
		body["firstName"] = firstName
	}
	if _, err := s.client.Post(ctx, xl, "/api/email/send-verification", body); err != nil {
		return errors.Wrapf(err, "send verification to %s", email)
	}
	return nil
}

// VerifyCode 校验验证码，后端可能返回布尔值或 {"valid":true}。
func (s *EmailService) VerifyCode(ctx context.Context, xl *xlog.Logger, email, code string) (bool, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Post(ctx, xl, "/api/email/verify-code", map[string]string{"email": email, "code": code})
	if err != nil {
		if IsBadRequest(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "verify code of %s", email)
	}
	if res.IsObject() {
		return firstOf(res, "valid", "verified", "isValid").Bool(), nil
	}
	if !res.Exists() {
		return true, nil
	}
	return res.Bool(), nil
}

// CheckRut 查询 RUT 是否已被注册。
func (s *EmailService) CheckRut(ctx context.Context, xl *xlog.Logger, rut string) (bool, error) {
	if xl == nil {
		xl = s.xl
	}
	res, err := s.client.Post(ctx, xl, "/api/users/check-rut", map[string]string{"rut": rut})
	if err != nil {
		return false, errors.Wrapf(err, "check rut %s", rut)
	}
	if res.IsObject() {
		return firstOf(res, "exists", "registered").Bool(), nil
	}
	return res.Bool(), nil
}
