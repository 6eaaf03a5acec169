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

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/dicelab/demo"
	"github.com/zintix-labs/dicelab/server/logger"
	"github.com/zintix-labs/dicelab/server/svrcfg"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	lab, err := demo.NewLab()
	if err != nil {
		t.Fatalf("demo lab: %v", err)
	}
	svr, err := New(&svrcfg.SvrCfg{
		Env: svrcfg.Env{MaxRolls: 5000, MaxResultRows: 100},
		Log: logger.New(logger.ModeSilence),
		Lab: lab,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(svr.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v (%s)", path, err, raw)
	}
	return resp, out
}

func TestIndexAndLabs(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("index: %v %v", resp, err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}

	resp, err = http.Get(ts.URL + "/v1/labs")
	if err != nil {
		t.Fatalf("labs: %v", err)
	}
	defer resp.Body.Close()
	var labs struct {
		Labs []struct {
			Name string `json:"name"`
		} `json:"labs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&labs); err != nil {
		t.Fatalf("decode labs: %v", err)
	}
	if len(labs.Labs) != 3 || labs.Labs[0].Name != "coin_d6" {
		t.Fatalf("unexpected labs: %+v", labs)
	}

	r2, err := http.Get(ts.URL + "/v1/labs/loaded_d6")
	if err != nil || r2.StatusCode != http.StatusOK {
		t.Fatalf("lab setting: %v %v", r2, err)
	}
	r2.Body.Close()
	r3, err := http.Get(ts.URL + "/v1/labs/nope")
	if err != nil || r3.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown lab should be 404: %v %v", r3, err)
	}
	r3.Body.Close()
}

func TestSimByLab(t *testing.T) {
	ts := newTestServer(t)
	resp, out := post(t, ts, "/v1/sim", `{"lab":"fair_pair","rolls":3000,"seed":7}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, out)
	}
	summary := out["stats"].(map[string]any)["Summary"].(map[string]any)
	if summary["Rolls"].(float64) != 3000 || out["seed"].(float64) != 7 {
		t.Fatalf("summary mismatch: %v", summary)
	}

	_, again := post(t, ts, "/v1/sim", `{"lab":"fair_pair","rolls":3000,"seed":7}`)
	s2 := again["stats"].(map[string]any)["Summary"].(map[string]any)
	if s2["Jackpots"] != summary["Jackpots"] {
		t.Fatalf("same seed should reproduce jackpots: %v vs %v", s2["Jackpots"], summary["Jackpots"])
	}
}

func TestSimBySetting(t *testing.T) {
	ts := newTestServer(t)
	body := `{"setting":{"name":"adhoc","dice":[{"id":"c","faces":["H","T"],"weights":[1,0]}],"game":["c","c"]},"rolls":10}`
	resp, out := post(t, ts, "/v1/sim", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, out)
	}
	summary := out["stats"].(map[string]any)["Summary"].(map[string]any)
	if summary["Jackpots"].(float64) != 10 {
		t.Fatalf("heads-only coins always match: %v", summary)
	}
}

func TestSimRejects(t *testing.T) {
	ts := newTestServer(t)
	cases := []struct {
		body   string
		status int
	}{
		{`{"rolls":10}`, http.StatusBadRequest},
		{`{"lab":"fair_pair","setting":{"name":"x"},"rolls":10}`, http.StatusBadRequest},
		{`{"lab":"fair_pair","rolls":0}`, http.StatusBadRequest},
		{`{"lab":"fair_pair","rolls":5001}`, http.StatusBadRequest},
		{`{"lab":"missing","rolls":10}`, http.StatusNotFound},
		{`{"lab":"fair_pair","rolls":10,"bogus":1}`, http.StatusBadRequest},
		{`{"lab":"fair_pair","rolls":10,"seed":-1}`, http.StatusBadRequest},
		{`{"setting":{"name":"x","dice":[{"id":"a","faces":[1,1]}],"game":["a"]},"rolls":10}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, out := post(t, ts, "/v1/sim", tc.body)
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: want %d got %d (%v)", tc.body, tc.status, resp.StatusCode, out)
		}
		if out["error"] == nil {
			t.Fatalf("%s: error body missing", tc.body)
		}
	}
}

func TestResults(t *testing.T) {
	ts := newTestServer(t)
	resp, out := post(t, ts, "/v1/results", `{"lab":"coin_d6","rolls":20,"seed":1,"format":"narrow"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, out)
	}
	tbl := out["table"].(map[string]any)
	if rows := tbl["rows"].([]any); len(rows) != 40 {
		t.Fatalf("narrow rows want 40, got %d", len(rows))
	}
	if out["jackpot"].(float64) != 0 {
		t.Fatalf("coin and d6 never match")
	}

	resp, _ = post(t, ts, "/v1/results", `{"lab":"coin_d6","rolls":20,"format":"tall"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad format should be 400, got %d", resp.StatusCode)
	}
	resp, _ = post(t, ts, "/v1/results", `{"lab":"coin_d6","rolls":101}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("rows over limit should be 400, got %d", resp.StatusCode)
	}
}

func TestSimCheckpointResume(t *testing.T) {
	ts := newTestServer(t)
	_, first := post(t, ts, "/v1/sim", `{"lab":"loaded_d6","rolls":1000,"seed":3}`)
	cp, _ := first["checkpoint"].(string)
	if cp == "" {
		t.Fatalf("checkpoint missing: %v", first)
	}
	body := `{"lab":"loaded_d6","rolls":1000,"seed":3,"checkpoint":"` + cp + `"}`
	resp, a := post(t, ts, "/v1/sim", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, a)
	}
	_, b := post(t, ts, "/v1/sim", body)
	ja := a["stats"].(map[string]any)["Summary"].(map[string]any)["Jackpots"]
	jb := b["stats"].(map[string]any)["Summary"].(map[string]any)["Jackpots"]
	if ja != jb || a["checkpoint"] != b["checkpoint"] {
		t.Fatalf("resume from one checkpoint should be reproducible")
	}

	resp, _ = post(t, ts, "/v1/sim", `{"lab":"loaded_d6","rolls":10,"checkpoint":"AQ"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad checkpoint should be 400, got %d", resp.StatusCode)
	}
}
