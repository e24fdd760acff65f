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

package form

import (
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var ErrInvalidRut = fmt.Errorf("RUT inválido")

// NormalizeRut 去掉点号与空格，校验位大写，返回 "12345678-5" 形式。
func NormalizeRut(rut string) string {
	r := strings.ToUpper(strings.TrimSpace(rut))
	r = strings.NewReplacer(".", "", " ", "").Replace(r)
	if r == "" {
		return ""
	}
	if !strings.Contains(r, "-") && len(r) > 1 {
		r = r[:len(r)-1] + "-" + r[len(r)-1:]
	}
	return r
}

// RutCheckDigit 模11算法计算校验位，返回 "0"-"9" 或 "K"。
func RutCheckDigit(body string) string {
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(dv)
	}
}

// ValidRut 校验 RUT 格式与校验位。
func ValidRut(rut string) bool {
	parts := strings.Split(NormalizeRut(rut), "-")
	if len(parts) != 2 || len(parts[0]) < 7 || len(parts[0]) > 8 || len(parts[1]) != 1 {
		return false
	}
	for _, c := range parts[0] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return RutCheckDigit(parts[0]) == parts[1]
}

var rutRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !ValidRut(s) {
		return ErrInvalidRut
	}
	return nil
})

type RutForm struct {
	Rut string `json:"rut" form:"rut"`
}

func (f *RutForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Rut, validation.Required, rutRule),
	)
}
