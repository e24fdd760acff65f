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

package events

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/cloud"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	user string
}

// Hub 日历页面的实时事件推送。慢连接的消息被丢弃，不影响其他连接。
type Hub struct {
	mutex    sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	xl       *xlog.Logger
}

// NewHub allowOrigins 为空或包含 "*" 时接受任意来源。
func NewHub(allowOrigins []string) *Hub {
	h := &Hub{
		clients: map[*client]struct{}{},
		xl:      xlog.New("interview events"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowOrigins) == 0 {
				return true
			}
			for _, o := range allowOrigins {
				if o == "*" || strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Serve 升级为 websocket 连接并阻塞到连接关闭。
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, user string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), user: user}
	h.mutex.Lock()
	h.clients[c] = struct{}{}
	h.mutex.Unlock()
	h.xl.Infof("calendar feed connected: %s", user)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) remove(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump 只处理 pong 与关闭，客户端不会发送业务消息。
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
		h.xl.Infof("calendar feed disconnected: %s", c.user)
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast 推送给全部连接，返回成功入队的连接数。
func (h *Hub) Broadcast(event model.InterviewEvent) int {
	buf, err := json.Marshal(event)
	if err != nil {
		h.xl.Errorf("failed to marshal event %s, error %v", event.Type, err)
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	n := 0
	for c := range h.clients {
		select {
		case c.send <- buf:
			n++
		default:
			h.xl.Warnf("calendar feed of %s is slow, drop event %s", c.user, event.Type)
		}
	}
	return n
}

// Clients 当前连接数。
func (h *Hub) Clients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close 关闭全部连接。
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Notifier 面试变更事件：推送给日历页面并发布到消息队列。
type Notifier struct {
	hub       *Hub
	publisher cloud.EventPublisher
	now       func() time.Time
	xl        *xlog.Logger
}

func NewNotifier(hub *Hub, publisher cloud.EventPublisher) *Notifier {
	return &Notifier{
		hub:       hub,
		publisher: publisher,
		now:       time.Now,
		xl:        xlog.New("interview notifier"),
	}
}

// EventOf 由面试生成事件。
func EventOf(t model.InterviewEventType, i model.Interview, actor string) model.InterviewEvent {
	return model.InterviewEvent{
		Type:          t,
		InterviewID:   i.ID,
		Status:        i.Status,
		ScheduledDate: i.ScheduledDate,
		ScheduledTime: i.ScheduledTime,
		InterviewerID: i.InterviewerID,
		Actor:         actor,
	}
}

// Emit 推送与发布事件，发布失败只记录日志。
func (n *Notifier) Emit(ctx context.Context, xl *xlog.Logger, event model.InterviewEvent) {
	if xl == nil {
		xl = n.xl
	}
	if event.At.IsZero() {
		event.At = n.now()
	}
	if n.hub != nil {
		n.hub.Broadcast(event)
	}
	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, xl, event); err != nil {
			xl.Errorf("failed to publish %s of interview %s, error %v", event.Type, event.InterviewID, err)
		}
	}
}
