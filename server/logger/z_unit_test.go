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

package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/zintix-labs/dicelab/errs"
)

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuf) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestParseMode(t *testing.T) {
	cases := map[string]LogMode{"": ModeDev, "DEV": ModeDev, "prod": ModeProd, " silence ": ModeSilence}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("loud"); !errors.Is(err, errs.Validation) {
		t.Fatalf("unknown mode should be validation, got %v", err)
	}
	var m LogMode
	if err := m.UnmarshalText([]byte("prod")); err != nil || m != ModeProd {
		t.Fatalf("UnmarshalText: %v %v", m, err)
	}
	if ModeSilence.String() != "silence" {
		t.Fatalf("String mismatch")
	}
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	buf := &lockedBuf{}
	ah := NewAsyncHandler(slog.NewTextHandler(buf, nil), 64)
	log := slog.New(ah).With(slog.String("lab", "pair"))
	for i := 0; i < 10; i++ {
		log.Info("rolled", slog.Int("i", i))
	}
	ah.Close()
	out := buf.String()
	if got := strings.Count(out, "msg=rolled"); got != 10 {
		t.Fatalf("want 10 records after drain, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "lab=pair") {
		t.Fatalf("WithAttrs lost:\n%s", out)
	}
	log.Info("late")
	if ah.Dropped() != 1 {
		t.Fatalf("records after Close should be dropped, got %d", ah.Dropped())
	}
	ah.Close()
}

func TestAsyncHandlerCloseRacingWriters(t *testing.T) {
	const writers, each = 8, 200
	for round := 0; round < 20; round++ {
		buf := &lockedBuf{}
		ah := NewAsyncHandler(slog.NewTextHandler(buf, nil), writers*each)
		log := slog.New(ah)
		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < each; i++ {
					log.Info("tick")
				}
			}()
		}
		ah.Close()
		wg.Wait()
		// Close 已回傳，之後不會再有紀錄寫出
		written := strings.Count(buf.String(), "msg=tick")
		if uint64(written)+ah.Dropped() != writers*each {
			t.Fatalf("round %d: written %d + dropped %d != %d", round, written, ah.Dropped(), writers*each)
		}
	}
}
