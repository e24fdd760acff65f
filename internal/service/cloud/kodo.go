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
	"context"
	"fmt"
	"strings"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"
	"github.com/qiniu/x/log"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/common/utils"
)

// Uploader 上传导出的报表，返回下载地址。
type Uploader interface {
	Upload(xl *xlog.Logger, key string, data []byte, mimeType string) (string, error)
}

// KodoUploader 七牛对象存储上传。
type KodoUploader struct {
	keyPair   utils.QiniuKeyPair
	bucket    string
	urlPrefix string
	zone      *storage.Zone
}

var kodoZones = map[string]*storage.Zone{
	"z0":  &storage.ZoneHuadong,
	"z1":  &storage.ZoneHuabei,
	"z2":  &storage.ZoneHuanan,
	"na0": &storage.ZoneBeimei,
	"as0": &storage.ZoneXinjiapo,
}

// zoneOf 机房编号对应的区域，编号为空时返回 nil，由 SDK 根据 bucket 查询。
func zoneOf(id string) (*storage.Zone, error) {
	if id == "" {
		return nil, nil
	}
	zone, ok := kodoZones[strings.ToLower(id)]
	if !ok {
		return nil, fmt.Errorf("unknown kodo zone %q", id)
	}
	return zone, nil
}

// NewKodoUploader 未配置 bucket 时返回 nil。
func NewKodoUploader(conf *utils.Config) Uploader {
	if conf.Storage == nil || conf.Storage.Bucket == "" {
		return nil
	}
	zone, err := zoneOf(conf.Storage.Zone)
	if err != nil {
		log.Warnf("kodo zone of bucket %s: %v, query by bucket instead", conf.Storage.Bucket, err)
	}
	return &KodoUploader{
		keyPair:   conf.QiniuKeyPair,
		bucket:    conf.Storage.Bucket,
		urlPrefix: strings.TrimRight(conf.Storage.URLPrefix, "/"),
		zone:      zone,
	}
}

// Upload key 为上传文件的访问名。
func (u *KodoUploader) Upload(xl *xlog.Logger, key string, data []byte, mimeType string) (string, error) {
	mac := qbox.NewMac(u.keyPair.AccessKey, u.keyPair.SecretKey)
	putPolicy := storage.PutPolicy{
		Scope: u.bucket + ":" + key,
	}
	upToken := putPolicy.UploadToken(mac)
	cfg := storage.Config{}
	// 空间对应的机房
	cfg.Zone = u.zone
	cfg.UseHTTPS = true
	cfg.UseCdnDomains = false
	formUploader := storage.NewFormUploader(&cfg)
	ret := storage.PutRet{}
	extra := &storage.PutExtra{MimeType: mimeType}
	err := formUploader.Put(context.Background(), &ret, upToken, key, bytes.NewReader(data), int64(len(data)), extra)
	if err != nil {
		xl.Errorf("file %s uploading failed err:%v", key, err)
		return "", err
	}
	xl.Infof("file %s upload success, hash %s", ret.Key, ret.Hash)
	return fmt.Sprintf("%s/%s", u.urlPrefix, key), nil
}
