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

package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/protodef/model"
)

// Claims 管理端应用签发的 JWT 声明。
type Claims struct {
	jwt.StandardClaims
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
}

// User 由声明得到登录用户，userId 缺失时使用 sub。
func (c *Claims) User() model.AuthUser {
	u := model.AuthUser{
		ID:    c.UserID,
		Email: c.Email,
		Name:  c.Name,
		Role:  c.Role,
	}
	if u.ID == "" {
		u.ID = c.Subject
	}
	if u.Name == "" {
		u.Name = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	if u.Email == "" && strings.Contains(c.Subject, "@") {
		u.Email = c.Subject
	}
	return u
}

// JwtSign HS256 签名，测试与本地调试时使用。
func JwtSign(key string, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(key))
}

// ErrEmptyJwtKey 未配置签名密钥时拒绝所有 token。
var ErrEmptyJwtKey = errors.New("jwt key not configured")

// JwtDecode 校验签名与过期时间。
func JwtDecode(key, token string) (*Claims, error) {
	if key == "" {
		return nil, ErrEmptyJwtKey
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(key), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Authenticate 校验 Authorization: Bearer <token>。
// 浏览器建立 websocket 连接时无法设置头部，此时从 token 查询参数读取。
func Authenticate(jwtKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		xl := c.MustGet(model.XLogKey).(*xlog.Logger)
		requestID := xl.ReqId

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if t := c.Query("token"); t != "" {
				authHeader = "Bearer " + t
			}
		}
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			xl.Debugf("%s %s: request unauthorized, wrong auth header format", c.Request.Method, c.Request.URL.Path)
			model.NewFailResponse(*model.NewResponseErrorNotLoggedIn()).WithRequestID(requestID).Send(c)
			c.Abort()
			return
		}
		claims, err := JwtDecode(jwtKey, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			xl.Infof("%s %s: request unauthorized, error %v", c.Request.Method, c.Request.URL.Path, err)
			model.NewFailResponse(*model.NewResponseErrorBadToken()).WithRequestID(requestID).Send(c)
			c.Abort()
			return
		}
		user := claims.User()
		if user.ID == "" && user.Email == "" {
			xl.Infof("no user in jwt claims")
			model.NewFailResponse(*model.NewResponseErrorBadToken()).WithRequestID(requestID).Send(c)
			c.Abort()
			return
		}
		c.Set(model.UserContextKey, user)
		c.Set(model.UserIDContextKey, user.ID)
		c.Set(model.AuthorizationContextKey, authHeader)
		c.Next()
	}
}
