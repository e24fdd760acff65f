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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
	"github.com/tidwall/gjson"

	"github.com/solutions/admission-interview/internal/common/utils"
	"github.com/solutions/admission-interview/internal/protodef/model"
)

// Client 招生后端 REST 客户端。
// 后端的返回值可能是 {"success":true,"data":...} 形式的信封，也可能直接是数据本身。
type Client struct {
	endpoint string
	token    string
	client   *http.Client
	xl       *xlog.Logger
}

func NewClient(conf *utils.AdmissionConfig) *Client {
	return &Client{
		endpoint: strings.TrimRight(conf.Endpoint, "/"),
		token:    conf.Token,
		client:   &http.Client{Timeout: conf.Timeout()},
		xl:       xlog.New("admission-client"),
	}
}

type authKey struct{}

// WithAuthorization 在 ctx 中附带请求者的 Authorization 头，客户端未配置服务 token 时透传给后端。
func WithAuthorization(ctx context.Context, authorization string) context.Context {
	if authorization == "" {
		return ctx
	}
	return context.WithValue(ctx, authKey{}, authorization)
}

func authorizationFrom(ctx context.Context) string {
	v, _ := ctx.Value(authKey{}).(string)
	return v
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		msg, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(msg)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if auth := authorizationFrom(ctx); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return req, nil
}

// Do 调用后端接口，返回去掉信封后的数据。
func (c *Client) Do(ctx context.Context, xl *xlog.Logger, method, path string, query url.Values, body interface{}) (gjson.Result, error) {
	if xl == nil {
		xl = c.xl
	}
	api := method + " " + path
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return gjson.Result{}, NewCallError(api, err)
	}
	req.Header.Set(model.RequestIDHeader, xl.ReqId)

	resp, err := c.client.Do(req)
	if err != nil {
		xl.Errorf("call %s error %v", api, err)
		return gjson.Result{}, NewCallError(api, err)
	}
	defer resp.Body.Close()

	res, err := io.ReadAll(resp.Body)
	if err != nil {
		xl.Errorf("read %s response error %v", api, err)
		return gjson.Result{}, NewCallError(api, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		xl.Warnf("call %s StatusCode %d, body %s", api, resp.StatusCode, truncate(res, 256))
		return gjson.Result{}, newStatusCodeErrorFromBody(resp.StatusCode, res)
	}
	if len(bytes.TrimSpace(res)) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(res) {
		xl.Errorf("invalid response json %s", truncate(res, 256))
		return gjson.Result{}, NewCallError(api, fmt.Errorf("invalid response"))
	}
	return unwrapEnvelope(gjson.ParseBytes(res))
}

// unwrapEnvelope 处理 {"success":...,"data":...} 信封。
func unwrapEnvelope(result gjson.Result) (gjson.Result, error) {
	if !result.IsObject() {
		return result, nil
	}
	success := result.Get("success")
	if !success.Exists() {
		return result, nil
	}
	if !success.Bool() {
		msg := result.Get("message").String()
		if msg == "" {
			msg = result.Get("error").String()
		}
		return gjson.Result{}, errors.WithStack(&BackendError{Message: msg})
	}
	if data := result.Get("data"); data.Exists() {
		return data, nil
	}
	return result, nil
}

func (c *Client) Get(ctx context.Context, xl *xlog.Logger, path string, query url.Values) (gjson.Result, error) {
	return c.Do(ctx, xl, http.MethodGet, path, query, nil)
}

func (c *Client) Post(ctx context.Context, xl *xlog.Logger, path string, body interface{}) (gjson.Result, error) {
	return c.Do(ctx, xl, http.MethodPost, path, nil, body)
}

func (c *Client) Put(ctx context.Context, xl *xlog.Logger, path string, body interface{}) (gjson.Result, error) {
	return c.Do(ctx, xl, http.MethodPut, path, nil, body)
}

func (c *Client) Delete(ctx context.Context, xl *xlog.Logger, path string) (gjson.Result, error) {
	return c.Do(ctx, xl, http.MethodDelete, path, nil, nil)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
