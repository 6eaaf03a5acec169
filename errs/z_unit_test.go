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

package errs

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestKindMatchesThroughWrap(t *testing.T) {
	base := Kindf(OutOfRange, "face %d missing", 7)
	wrapped := Wrap(Wrap(base, "set weight"), "build die")
	if !errors.Is(wrapped, OutOfRange) {
		t.Fatalf("kind should survive wrapping: %v", wrapped)
	}
	if errors.Is(wrapped, Validation) {
		t.Fatalf("kind must not match a different kind")
	}
	if wrapped.ErrLv != Warn {
		t.Fatalf("wrap should keep cause level, got %s", ErrLv(wrapped.ErrLv))
	}
}

func TestWrapForeignIsFatal(t *testing.T) {
	e := Wrap(io.ErrUnexpectedEOF, "read")
	if e.ErrLv != Fatal || e.Kind != Unknown {
		t.Fatalf("foreign cause should be fatal/unknown: %+v", e)
	}
	if !errors.Is(e, io.ErrUnexpectedEOF) {
		t.Fatalf("cause should be reachable")
	}
	if errors.Is(e, Unknown) {
		t.Fatalf("Unknown is never a match target")
	}
}

func TestWrapAs(t *testing.T) {
	e := WrapAs(io.EOF, Warn, Validation, "parse yaml")
	if !errors.Is(e, Validation) || !errors.Is(e, io.EOF) {
		t.Fatalf("WrapAs should match both kind and cause")
	}
	got, ok := AsErr(Wrap(e, "load"))
	if !ok || got.Kind != Validation {
		t.Fatalf("AsErr should find *E")
	}
}

func TestErrorString(t *testing.T) {
	e := WrapWithExtra(Kindf(NoData, "no rolls"), "analyze", "lab=pair")
	s := e.Error()
	for _, want := range []string{"errlv=warn", "kind=no data", "analyze", "extra: lab=pair", "cause:"} {
		if !strings.Contains(s, want) {
			t.Fatalf("%q missing %q", s, want)
		}
	}
	if got := NewFatal("boom").Error(); got != "errlv=fatal boom" {
		t.Fatalf("plain error mismatch: %q", got)
	}
	if ErrLv(ErrLevel(99)) != "" || Kind(99).Error() != "unknown" {
		t.Fatalf("unknown level/kind should render empty/unknown")
	}
}
