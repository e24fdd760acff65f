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

	qiniuauth "github.com/qiniu/go-sdk/v7/auth"
	qiniusms "github.com/qiniu/go-sdk/v7/sms"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/common/utils"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

// SMSMessageParamKey 提醒短信模板中正文的变量名。
const SMSMessageParamKey = "message"

// QiniuSmsSender 七牛云短信发送器，对接七牛云短信平台发送面试提醒。
type QiniuSmsSender struct {
	conf    *utils.QiniuSMSConfig
	manager *qiniusms.Manager
}

// NewQiniuSmsSender 创建七牛云短信发送器。
func NewQiniuSmsSender(conf *utils.Config) *QiniuSmsSender {
	manager := qiniusms.NewManager(&qiniuauth.Credentials{
		AccessKey: conf.QiniuKeyPair.AccessKey,
		SecretKey: []byte(conf.QiniuKeyPair.SecretKey),
	})
	smsConf := &utils.QiniuSMSConfig{}
	if conf.SMS != nil && conf.SMS.QiniuSMS != nil {
		smsConf = conf.SMS.QiniuSMS
	}
	return &QiniuSmsSender{
		conf:    smsConf,
		manager: manager,
	}
}

func (s *QiniuSmsSender) Channel() model.ReminderChannel {
	return model.ReminderChannelSMS
}

// Send 以模板短信发送提醒正文。
func (s *QiniuSmsSender) Send(xl *xlog.Logger, msg model.ReminderMessage) error {
	if msg.Recipient == "" {
		return fmt.Errorf("empty SMS recipient")
	}
	_, err := s.manager.SendMessage(qiniusms.MessagesRequest{
		SignatureID: s.conf.SignatureID,
		TemplateID:  s.conf.TemplateID,
		Mobiles:     []string{msg.Recipient},
		Parameters:  map[string]interface{}{SMSMessageParamKey: msg.Body},
	})
	if err != nil {
		xl.Errorf("failed to send message to %s, error %v", msg.Recipient, err)
		return err
	}
	return nil
}
