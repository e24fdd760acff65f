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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qiniu/x/xlog"
	"github.com/tidwall/gjson"

	"github.com/solutions/admission-interview/internal/common/utils"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

// WhatsAppSender 通过 HTTP 网关发送 WhatsApp 消息。
// 网关接收 {"from","to","body"}，返回 {"id":...} 或 {"error":...}。
type WhatsAppSender struct {
	endpoint string
	token    string
	sender   string
	client   *http.Client
}

func NewWhatsAppSender(conf *utils.WhatsAppConfig) *WhatsAppSender {
	return &WhatsAppSender{
		endpoint: conf.Endpoint,
		token:    conf.Token,
		sender:   conf.Sender,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WhatsAppSender) Channel() model.ReminderChannel {
	return model.ReminderChannelWhatsApp
}

func (s *WhatsAppSender) Send(xl *xlog.Logger, msg model.ReminderMessage) error {
	payload, err := json.Marshal(map[string]string{
		"from": s.sender,
		"to":   "whatsapp:" + msg.Recipient,
		"body": msg.Body,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		xl.Errorf("call whatsapp gateway error %v", err)
		return err
	}
	defer resp.Body.Close()
	res, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		xl.Errorf("whatsapp gateway StatusCode %d, body %s", resp.StatusCode, string(res))
		if gjson.ValidBytes(res) {
			if e := gjson.GetBytes(res, "error"); e.Exists() {
				return fmt.Errorf("whatsapp gateway: %s", e.String())
			}
		}
		return fmt.Errorf("whatsapp gateway: status %d", resp.StatusCode)
	}
	if gjson.ValidBytes(res) {
		xl.Debugf("whatsapp message %s queued for %s", gjson.GetBytes(res, "id").String(), msg.Recipient)
	}
	return nil
}
