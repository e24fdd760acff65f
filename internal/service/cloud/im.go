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

package cloud

import (
	"fmt"

	"github.com/qiniu/x/xlog"
	rcsdk "github.com/rongcloud/server-sdk-go/v3/sdk"

	"github.com/solutions/admission-interview/internal/common/utils"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

// DefaultPortraitURL 默认IM头像地址。
const DefaultPortraitURL = "https://developer.rongcloud.cn/static/images/newversion-logo.png"

// IMService 为站内通知签发 IM token。
type IMService interface {
	GetUserToken(xl *xlog.Logger, userID, name string) (*model.IMTokenResponse, error)
}

// RongCloudIMService 融云IM，用于向登录的教职员推送面试变更通知。
type RongCloudIMService struct {
	rongCloudClient *rcsdk.RongCloud
	xl              *xlog.Logger
}

// NewIMService 未配置融云时返回 nil。
func NewIMService(conf *utils.RongCloudIMConfig) IMService {
	if conf == nil || conf.AppKey == "" {
		return nil
	}
	return &RongCloudIMService{
		rongCloudClient: rcsdk.NewRongCloud(conf.AppKey, conf.AppSecret),
		xl:              xlog.New("admission-rongcloud-im"),
	}
}

// GetUserToken 用户注册，生成User token
func (c *RongCloudIMService) GetUserToken(xl *xlog.Logger, userID, name string) (*model.IMTokenResponse, error) {
	if xl == nil {
		xl = c.xl
	}
	if userID == "" {
		return nil, fmt.Errorf("empty user id")
	}
	if name == "" {
		name = userID
	}
	userRes, err := c.rongCloudClient.UserRegister(userID, name, DefaultPortraitURL)
	if err != nil {
		xl.Errorf("failed to get user token from rongcloud, error %v", err)
		return nil, err
	}
	return &model.IMTokenResponse{UserID: userRes.UserID, Token: userRes.Token}, nil
}
