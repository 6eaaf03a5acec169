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

package stats

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/zintix-labs/dicelab/errs"
	"gopkg.in/yaml.v3"
)

// Render 定義輸出行為
type Render interface {
	Write(w io.Writer, r *Report) error
}

// Json渲染
type JsonRender struct{}

func (jr *JsonRender) Write(w io.Writer, r *Report) error {
	return json.NewEncoder(w).Encode(r)
}

// YAML渲染
type YAMLRender struct{}

func (yr *YAMLRender) Write(w io.Writer, r *Report) error {
	// 外層陣列維持展開，最內層一維陣列輸出成 flow style：[..., ...]
	return forceReadableList(w, r)
}

// 表格渲染
type TableRender struct{}

func (tr *TableRender) Write(w io.Writer, r *Report) error {
	_, err := io.WriteString(w, r.Tables())
	return err
}

// RenderOf 依名稱取得輸出器：table / json / yaml
func RenderOf(name string) (Render, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "table":
		return &TableRender{}, nil
	case "json":
		return &JsonRender{}, nil
	case "yaml", "yml":
		return &YAMLRender{}, nil
	default:
		return nil, errs.Kindf(errs.Validation, "unknown output format %q (table|json|yaml)", name)
	}
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

// 沒有子 sequence 的 sequence 代表最內層維度，改成 flow style；外層維持 block。
func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		return

	case yaml.SequenceNode:
		hasChildSeq := false
		for _, c := range n.Content {
			if c != nil && (c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode) {
				hasChildSeq = true
				break
			}
		}
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		if !hasChildSeq {
			n.Style = yaml.FlowStyle
		}
		return
	}
}
