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

package verification

import (
	"context"
	"math"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/common/utils"
	errors "github.com/solutions/admission-interview/internal/protodef/errors"
	"github.com/solutions/admission-interview/internal/protodef/form"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/db"
	"github.com/solutions/admission-interview/internal/service/db/dao"
)

const (
	DefaultResendCooldown = 60 * time.Second
	DefaultVerifiedTTL    = 24 * time.Hour
)

var ErrVerificationFailed = errors.NewServerError(errors.ServerErrorVerificationFailed, "verification code invalid or expired")

// ResendTooFrequentError 冷却时间内重复请求验证码。
type ResendTooFrequentError struct {
	Remaining int
}

func (e *ResendTooFrequentError) Error() string {
	return "send verification code request limited"
}

// Backend 招生后端的验证码与 RUT 接口。
type Backend interface {
	SendVerification(ctx context.Context, xl *xlog.Logger, email, rut, firstName string) error
	VerifyCode(ctx context.Context, xl *xlog.Logger, email, code string) (bool, error)
	CheckRut(ctx context.Context, xl *xlog.Logger, rut string) (bool, error)
}

// Service 邮箱验证：后端负责发送与校验验证码，本服务负责重发冷却与验证状态。
type Service struct {
	backend     Backend
	storage     db.Storage
	cooldown    time.Duration
	verifiedTTL time.Duration
	now         func() time.Time
	xl          *xlog.Logger
}

func NewService(backend Backend, storage db.Storage, conf utils.VerificationConfig) *Service {
	s := &Service{
		backend:     backend,
		storage:     storage,
		cooldown:    time.Duration(conf.ResendCooldownSecond) * time.Second,
		verifiedTTL: time.Duration(conf.VerifiedTTLSecond) * time.Second,
		now:         time.Now,
		xl:          xlog.New("email verification"),
	}
	if s.cooldown <= 0 {
		s.cooldown = DefaultResendCooldown
	}
	if s.verifiedTTL <= 0 {
		s.verifiedTTL = DefaultVerifiedTTL
	}
	return s
}

func cooldownKey(email string) string {
	return dao.StorageKeyResendCooldownPrefix + email
}

func stateKey(email string) string {
	return dao.StorageKeyVerificationPrefix + email
}

// cooldownRemaining 剩余冷却秒数，向上取整。
func (s *Service) cooldownRemaining(xl *xlog.Logger, email string) int {
	var cd model.ResendCooldown
	if err := s.storage.Get(xl, cooldownKey(email), &cd); err != nil {
		if err != db.ErrKeyNotFound {
			xl.Warnf("failed to read resend cooldown of %s, error %v", email, err)
		}
		return 0
	}
	left := cd.Until.Sub(s.now())
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

// SendCode 发送验证码，冷却时间内返回 ResendTooFrequentError。
func (s *Service) SendCode(ctx context.Context, xl *xlog.Logger, f *form.EmailCodeForm) (int, error) {
	if xl == nil {
		xl = s.xl
	}
	if left := s.cooldownRemaining(xl, f.Email); left > 0 {
		xl.Infof("verification code for %s requested again within cooldown, %ds left", f.Email, left)
		return left, &ResendTooFrequentError{Remaining: left}
	}
	if err := s.backend.SendVerification(ctx, xl, f.Email, form.NormalizeRut(f.Rut), f.FirstName); err != nil {
		xl.Errorf("failed to send verification code to %s, error %v", f.Email, err)
		return 0, err
	}
	now := s.now()
	if err := s.storage.Set(xl, cooldownKey(f.Email), model.ResendCooldown{Email: f.Email, Until: now.Add(s.cooldown)}, s.cooldown); err != nil {
		xl.Errorf("failed to save resend cooldown of %s, error %v", f.Email, err)
	}
	state := model.VerificationState{Email: f.Email, CodeSentAt: now}
	if err := s.storage.Set(xl, stateKey(f.Email), state, s.verifiedTTL); err != nil {
		xl.Errorf("failed to save verification state of %s, error %v", f.Email, err)
	}
	return int(s.cooldown.Seconds()), nil
}

// Verify 校验验证码，成功后记录验证状态并清除冷却。
func (s *Service) Verify(ctx context.Context, xl *xlog.Logger, f *form.VerifyCodeForm) error {
	if xl == nil {
		xl = s.xl
	}
	ok, err := s.backend.VerifyCode(ctx, xl, f.Email, f.Code)
	if err != nil {
		return err
	}
	state := model.VerificationState{Email: f.Email}
	if err := s.storage.Get(xl, stateKey(f.Email), &state); err != nil && err != db.ErrKeyNotFound {
		xl.Warnf("failed to read verification state of %s, error %v", f.Email, err)
	}
	if !ok {
		state.Attempts++
		if err := s.storage.Set(xl, stateKey(f.Email), state, s.verifiedTTL); err != nil {
			xl.Errorf("failed to save verification state of %s, error %v", f.Email, err)
		}
		return ErrVerificationFailed
	}
	state.Verified = true
	state.VerifiedAt = s.now()
	if err := s.storage.Set(xl, stateKey(f.Email), state, s.verifiedTTL); err != nil {
		xl.Errorf("failed to save verification state of %s, error %v", f.Email, err)
		return err
	}
	if err := s.storage.Delete(xl, cooldownKey(f.Email)); err != nil {
		xl.Warnf("failed to clear resend cooldown of %s, error %v", f.Email, err)
	}
	return nil
}

// Status 邮箱是否已验证以及剩余冷却时间。
func (s *Service) Status(xl *xlog.Logger, email string) *model.VerificationStatusResponse {
	if xl == nil {
		xl = s.xl
	}
	var state model.VerificationState
	verified := s.storage.Get(xl, stateKey(email), &state) == nil && state.Verified
	return &model.VerificationStatusResponse{
		Email:             email,
		Verified:          verified,
		CooldownRemaining: s.cooldownRemaining(xl, email),
	}
}

// CheckRut 先本地校验位，合法时再查询后端是否已注册。
func (s *Service) CheckRut(ctx context.Context, xl *xlog.Logger, rut string) (*model.RutCheckResponse, error) {
	if xl == nil {
		xl = s.xl
	}
	res := &model.RutCheckResponse{Rut: form.NormalizeRut(rut)}
	if !form.ValidRut(rut) {
		return res, nil
	}
	res.Valid = true
	exists, err := s.backend.CheckRut(ctx, xl, res.Rut)
	if err != nil {
		return nil, err
	}
	res.Exists = exists
	return res, nil
}
