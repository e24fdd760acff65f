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

package utils

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	qconfig "github.com/qiniu/x/config"
)

var (
	DefaultConf Config
)

// InitConf 加载 .env 与 JSON 配置文件，环境变量中的密钥覆盖配置文件中的同名项。
func InitConf(configFilePath string) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env file, error %v", err)
	}
	err := qconfig.LoadFile(&DefaultConf, configFilePath)
	if err != nil {
		log.Fatalf("failed to load config file, error %v", err)
	}
	DefaultConf.ApplyEnv()
}

// MongoConfig mongo 数据库配置。
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// AdmissionConfig 招生后端 REST API 配置。
type AdmissionConfig struct {
	// Endpoint 后端地址，如 https://admision.example.cl ，不带 /api 后缀。
	Endpoint string `json:"endpoint"`
	// Token 调用后端使用的服务 token，为空时透传请求者的 Authorization 头。
	Token         string `json:"token"`
	TimeoutSecond int    `json:"timeout_s"`
}

// Timeout 后端请求超时时间。
func (c *AdmissionConfig) Timeout() time.Duration {
	if c == nil || c.TimeoutSecond <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSecond) * time.Second
}

// QiniuKeyPair 七牛APIaccess key/secret key配置。
type QiniuKeyPair struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// QiniuSMSConfig 七牛云短信配置。
type QiniuSMSConfig struct {
	SignatureID string `json:"signature_id"`
	TemplateID  string `json:"template_id"`
}

// SMSConfig 短信服务配置，provider 为 qiniu 或 test。
type SMSConfig struct {
	Provider string          `json:"provider"`
	QiniuSMS *QiniuSMSConfig `json:"qiniu_sms"`
}

// WhatsAppConfig WhatsApp 网关配置，provider 为 gateway 或 test。
type WhatsAppConfig struct {
	Provider string `json:"provider"`
	Endpoint string `json:"endpoint"`
	Token    string `json:"token"`
	Sender   string `json:"sender"`
}

// MailConfig 发送邮件的配置，provider 为 sendgrid 或 test。
type MailConfig struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	From     string `json:"from"`
	FromName string `json:"from_name"`
}

// QiniuStorageConfig 七牛对象存储服务配置。
type QiniuStorageConfig struct {
	// Bucket 导出报表上传的七牛对象存储bucket，为空时不上传。
	Bucket string `json:"bucket"`
	// URLPrefix 上传的文件的下载URL前缀，一般为该bucket对应的默认域名。
	URLPrefix string `json:"url_prefix"`
	// Zone 空间所在机房：z0 华东、z1 华北、z2 华南、na0 北美、as0 东南亚，为空时根据 bucket 自动查询。
	Zone string `json:"zone"`
}

// RongCloudIMConfig 融云IM服务配置。
type RongCloudIMConfig struct {
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
}

// EventsConfig 面试变更事件的发布配置，provider 为 amqp 或留空。
type EventsConfig struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
	Exchange string `json:"exchange"`
}

// ReminderConfig 面试提醒配置。
type ReminderConfig struct {
	// LeadMinutes 面试开始前多少分钟发送提醒，默认 24h 与 2h。
	LeadMinutes []int    `json:"lead_minutes"`
	Channels    []string `json:"channels"`
	SchoolName  string   `json:"school_name"`
	SchoolPhone string   `json:"school_phone"`
	Workers     int      `json:"workers"`
}

// VerificationConfig 邮箱验证配置。
type VerificationConfig struct {
	ResendCooldownSecond int `json:"resend_cooldown_s"`
	VerifiedTTLSecond    int `json:"verified_ttl_s"`
}

// Config 后端配置。
type Config struct {
	// debug等级，为1时输出info/warn/error日志，为0除以上外还输出debug日志
	DebugLevel int    `json:"debug_level"`
	ListenAddr string `json:"listen_addr"`
	// Timezone 学校所在时区，面试日期与时间均按该时区解释。
	Timezone     string              `json:"timezone"`
	AllowOrigins []string            `json:"allow_origins"`
	Mongo        *MongoConfig        `json:"mongo"`
	Admission    *AdmissionConfig    `json:"admission"`
	QiniuKeyPair QiniuKeyPair        `json:"qiniu_key_pair"`
	SMS          *SMSConfig          `json:"sms"`
	WhatsApp     *WhatsAppConfig     `json:"whatsapp"`
	Mail         *MailConfig         `json:"mail"`
	Storage      *QiniuStorageConfig `json:"storage"`
	RongCloud    *RongCloudIMConfig  `json:"rongcloud"`
	Events       *EventsConfig       `json:"events"`
	Reminder     ReminderConfig      `json:"reminder"`
	Verification VerificationConfig  `json:"verification"`
	JwtKey       string              `json:"jwt_key"`
}

// ApplyEnv 使用环境变量覆盖密钥类配置。
func (c *Config) ApplyEnv() {
	if v := os.Getenv("JWT_KEY"); v != "" {
		c.JwtKey = v
	}
	if v := os.Getenv("ADMISSION_API_TOKEN"); v != "" && c.Admission != nil {
		c.Admission.Token = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" && c.Mail != nil {
		c.Mail.APIKey = v
	}
	if v := os.Getenv("QINIU_ACCESS_KEY"); v != "" {
		c.QiniuKeyPair.AccessKey = v
	}
	if v := os.Getenv("QINIU_SECRET_KEY"); v != "" {
		c.QiniuKeyPair.SecretKey = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" && c.Events != nil {
		c.Events.URL = v
	}
}

// Location 学校时区，配置错误时退回本地时区。
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("unknown timezone %s, fallback to local, error %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

// NewSample 返回样例配置。
func NewSample() *Config {
	return &Config{
		DebugLevel: 0,
		ListenAddr: ":8080",
		Timezone:   "America/Santiago",
		Mongo: &MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "admission_interview_test",
		},
		Admission: &AdmissionConfig{
			Endpoint:      "http://localhost:8080",
			TimeoutSecond: 10,
		},
		SMS: &SMSConfig{
			Provider: "test",
			QiniuSMS: &QiniuSMSConfig{
				SignatureID: os.Getenv("QINIU_SMS_SIGN_ID"),
				TemplateID:  os.Getenv("QINIU_SMS_TEMP_ID"),
			},
		},
		WhatsApp: &WhatsAppConfig{Provider: "test"},
		Mail:     &MailConfig{Provider: "test", From: "admision@example.cl", FromName: "Admisión"},
		Reminder: ReminderConfig{
			LeadMinutes: []int{24 * 60, 2 * 60},
			Channels:    []string{"WHATSAPP"},
			SchoolName:  "Colegio",
			Workers:     4,
		},
		Verification: VerificationConfig{
			ResendCooldownSecond: 60,
			VerifiedTTLSecond:    24 * 3600,
		},
	}
}
