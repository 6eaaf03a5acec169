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

package catalog

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/dicelab/errs"
)

const labA = "name: Alpha\ndice:\n  - id: d\n    faces: [1, 2]\ngame: [d, d]\n"
const labB = `{"name":"beta","dice":[{"id":"c","faces":["H","T"]}],"game":["c"]}`

func TestCatalogIndexesByName(t *testing.T) {
	c, err := New(fstest.MapFS{
		"a.yaml":    {Data: []byte(labA)},
		"b.json":    {Data: []byte(labB)},
		"README.md": {Data: []byte("ignored")},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	names := c.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("names mismatch: %v", names)
	}
	e, ok := c.GetByName("  ALPHA ")
	if !ok || e.ConfigName != "a.yaml" || e.Dice != 2 {
		t.Fatalf("entry mismatch: %+v %v", e, ok)
	}
	ls, err := c.SettingByName("beta")
	if err != nil || ls.Name != "beta" {
		t.Fatalf("setting: %v %v", ls, err)
	}
	if _, err := c.SettingByName("gamma"); !errors.Is(err, errs.OutOfRange) {
		t.Fatalf("unknown lab should be out of range, got %v", err)
	}
}

func TestCatalogRejects(t *testing.T) {
	cases := map[string][]fstest.MapFS{
		"nested":   {{"sub/a.yaml": {Data: []byte(labA)}}},
		"bad cfg":  {{"a.yaml": {Data: []byte("name: x\n")}}},
		"dup name": {{"a.yaml": {Data: []byte(labA)}, "a2.yml": {Data: []byte(labA)}}},
		"dup file": {{"a.yaml": {Data: []byte(labA)}}, {"a.yaml": {Data: []byte(labA)}}},
	}
	for name, srcs := range cases {
		t.Run(name, func(t *testing.T) {
			fss := make([]fs.FS, 0, len(srcs))
			for _, s := range srcs {
				fss = append(fss, s)
			}
			if _, err := New(fss...); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if _, err := New(); err == nil {
		t.Fatalf("no fs should fail")
	}
}
