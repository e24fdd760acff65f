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
	"context"
	"encoding/json"

	"github.com/qiniu/x/xlog"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/solutions/admission-interview/internal/common/utils"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

// DefaultEventsExchange 面试事件默认发布到的 topic exchange。
const DefaultEventsExchange = "admission.interviews"

// EventPublisher 将面试变更事件发布到消息队列。
type EventPublisher interface {
	Publish(ctx context.Context, xl *xlog.Logger, event model.InterviewEvent) error
}

// NewEventPublisher 按配置创建发布器，未配置时返回不做任何事的发布器。
func NewEventPublisher(conf *utils.EventsConfig) EventPublisher {
	if conf == nil || conf.Provider != "amqp" || conf.URL == "" {
		return &DummyPublisher{}
	}
	exchange := conf.Exchange
	if exchange == "" {
		exchange = DefaultEventsExchange
	}
	return &AMQPPublisher{url: conf.URL, exchange: exchange}
}

type DummyPublisher struct{}

func (d *DummyPublisher) Publish(ctx context.Context, xl *xlog.Logger, event model.InterviewEvent) error {
	return nil
}

// AMQPPublisher 每次发布建立一次连接，事件频率低，不维护长连接。
type AMQPPublisher struct {
	url      string
	exchange string
}

func (p *AMQPPublisher) Publish(ctx context.Context, xl *xlog.Logger, event model.InterviewEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		xl.Errorf("failed to connect to amqp, error %v", err)
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err = ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		xl.Errorf("failed to declare exchange %s, error %v", p.exchange, err)
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.At,
		Body:         body,
	})
	if err != nil {
		xl.Errorf("failed to publish %s, error %v", event.Type, err)
		return err
	}
	xl.Debugf("published %s for interview %s", event.Type, event.InterviewID)
	return nil
}
