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

// Package demo 提供內建示範實驗，供 CLI 與 server 直接使用。
package demo

import (
	"github.com/zintix-labs/dicelab"
	"github.com/zintix-labs/dicelab/catalog"
	"github.com/zintix-labs/dicelab/demo/configs"
)

func New() (*catalog.Catalog, error) {
	return catalog.New(configs.FS)
}

func NewLab() (*dicelab.Lab, error) {
	return dicelab.NewLab(configs.FS)
}
