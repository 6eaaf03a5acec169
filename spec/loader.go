// Copyright 2025 Zintix Labs
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

package spec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/zintix-labs/dicelab/errs"
	"gopkg.in/yaml.v3"
)

//go:embed lab.schema.json
var labSchemaSrc string

var labSchema = jsonschema.MustCompileString("lab.schema.json", labSchemaSrc)

// Parse 依副檔名選擇解析器（.yaml/.yml/.json）
func Parse(ext string, b []byte) (*LabSetting, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return ParseYAML(b)
	case ".json":
		return ParseJSON(b)
	default:
		return nil, errs.Kindf(errs.Validation, "unsupported config extension %q", ext)
	}
}

// ParseYAML 解析 YAML 設定。
//
// YAML 先轉成 JSON 值再做 Schema 檢查，兩種格式走同一條驗證路徑。
func ParseYAML(b []byte) (*LabSetting, error) {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, errs.WrapAs(err, errs.Warn, errs.Validation, "lab setting: invalid yaml")
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return nil, errs.WrapAs(err, errs.Warn, errs.Validation, "lab setting: yaml is not json compatible")
	}
	return ParseJSON(js)
}

// ParseJSON 解析 JSON 設定；數字以 json.Number 保留，整數骰面不會變成浮點。
func ParseJSON(b []byte) (*LabSetting, error) {
	var raw any
	if err := decode(b, &raw); err != nil {
		return nil, errs.WrapAs(err, errs.Warn, errs.Validation, "lab setting: invalid json")
	}
	if err := labSchema.Validate(raw); err != nil {
		return nil, errs.WrapAs(err, errs.Warn, errs.Validation, "lab setting: schema violation")
	}
	ls := &LabSetting{}
	if err := decode(b, ls); err != nil {
		return nil, errs.WrapAs(err, errs.Warn, errs.Validation, "lab setting: decode failed")
	}
	if err := ls.init(); err != nil {
		return nil, err
	}
	return ls, nil
}

func decode(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

// Validate 對程式內組出的設定（例如 HTTP 請求帶入）做同樣的語意檢查
func (ls *LabSetting) Validate() error {
	if ls == nil {
		return errs.Kindf(errs.Validation, "lab setting: nil")
	}
	return ls.init()
}
