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

package app

import "context"

// Component 是可被 App 啟停的長駐元件（HTTP server、log drainer...）。
//
// Run 應阻塞直到元件停止；Shutdown 必須讓 Run 返回。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Func 把一組函式包成 Component
type Func struct {
	RunFn      func() error
	ShutdownFn func(ctx context.Context) error
}

func (f Func) Run() error {
	if f.RunFn == nil {
		return nil
	}
	return f.RunFn()
}

func (f Func) Shutdown(ctx context.Context) error {
	if f.ShutdownFn == nil {
		return nil
	}
	return f.ShutdownFn(ctx)
}
