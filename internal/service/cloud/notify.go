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
	"sync"

	"github.com/fatih/color"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/common/utils"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

// Sender 某一渠道的提醒发送器。
type Sender interface {
	Channel() model.ReminderChannel
	Send(xl *xlog.Logger, msg model.ReminderMessage) error
}

// NewSenders 按配置创建各渠道的发送器，未配置的渠道使用模拟发送器。
func NewSenders(conf *utils.Config) (map[model.ReminderChannel]Sender, error) {
	senders := map[model.ReminderChannel]Sender{}

	smsProvider := "test"
	if conf.SMS != nil && conf.SMS.Provider != "" {
		smsProvider = conf.SMS.Provider
	}
	switch smsProvider {
	// 模拟的短信发送器，仅供测试使用。
	case "test":
		senders[model.ReminderChannelSMS] = NewMockSender(model.ReminderChannelSMS)
	case "qiniu":
		senders[model.ReminderChannelSMS] = NewQiniuSmsSender(conf)
	default:
		return nil, fmt.Errorf("unsupported SMS provider %s", smsProvider)
	}

	waProvider := "test"
	if conf.WhatsApp != nil && conf.WhatsApp.Provider != "" {
		waProvider = conf.WhatsApp.Provider
	}
	switch waProvider {
	case "test":
		senders[model.ReminderChannelWhatsApp] = NewMockSender(model.ReminderChannelWhatsApp)
	case "gateway":
		senders[model.ReminderChannelWhatsApp] = NewWhatsAppSender(conf.WhatsApp)
	default:
		return nil, fmt.Errorf("unsupported WhatsApp provider %s", waProvider)
	}

	mailProvider := "test"
	if conf.Mail != nil && conf.Mail.Provider != "" {
		mailProvider = conf.Mail.Provider
	}
	switch mailProvider {
	case "test":
		senders[model.ReminderChannelEmail] = NewMockSender(model.ReminderChannelEmail)
	case "sendgrid":
		senders[model.ReminderChannelEmail] = NewSendgridSender(conf.Mail)
	default:
		return nil, fmt.Errorf("unsupported mail provider %s", mailProvider)
	}
	return senders, nil
}

// MockSender 只记录日志与已发送的消息，供测试与开发环境使用。
type MockSender struct {
	channel model.ReminderChannel
	// Err 不为空时每次发送都返回该错误。
	Err error

	mutex sync.Mutex
	sent  []model.ReminderMessage
}

func NewMockSender(channel model.ReminderChannel) *MockSender {
	return &MockSender{channel: channel}
}

func (m *MockSender) Channel() model.ReminderChannel {
	return m.channel
}

func (m *MockSender) Send(xl *xlog.Logger, msg model.ReminderMessage) error {
	if m.Err != nil {
		return m.Err
	}
	if xl != nil {
		xl.Debugf("mock: send %s %s to %s", m.channel, msg.Kind, msg.Recipient)
	}
	color.Cyan("[%s] %s -> %s\n%s", m.channel, msg.Kind, msg.Recipient, msg.Body)
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent 已发送消息的副本。
func (m *MockSender) Sent() []model.ReminderMessage {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	res := make([]model.ReminderMessage, len(m.sent))
	copy(res, m.sent)
	return res
}
