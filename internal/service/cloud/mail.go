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
	"html"
	"net/http"
	"strings"

	"github.com/qiniu/x/xlog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/solutions/admission-interview/internal/common/utils"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridSender 通过 SendGrid 发送提醒邮件。
type SendgridSender struct {
	key  string
	from *sgmail.Email
}

func NewSendgridSender(conf *utils.MailConfig) *SendgridSender {
	return &SendgridSender{
		key:  conf.APIKey,
		from: sgmail.NewEmail(conf.FromName, conf.From),
	}
}

func (s *SendgridSender) Channel() model.ReminderChannel {
	return model.ReminderChannelEmail
}

func (s *SendgridSender) prepare(msg model.ReminderMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.Recipient))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.Body),
		sgmail.NewContent("text/html", textToHTML(msg.Body)),
	)
	return m
}

// textToHTML 纯文本正文转为简单的 HTML 段落。
func textToHTML(body string) string {
	lines := strings.Split(html.EscapeString(body), "\n")
	return "<p>" + strings.Join(lines, "<br>") + "</p>"
}

func (s *SendgridSender) Send(xl *xlog.Logger, msg model.ReminderMessage) error {
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		xl.Errorf("sendgrid request failed, error %v", err)
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		xl.Errorf("sendgrid StatusCode %d, body %s", res.StatusCode, res.Body)
		return fmt.Errorf("sendgrid: status %d", res.StatusCode)
	}
	return nil
}
