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

package v1

import (
	"net/http"

	"github.com/zintix-labs/dicelab/catalog"
)

// Labs GET /v1/labs
func (h *Handler) Labs(w http.ResponseWriter, r *http.Request) {
	type LabsResponse struct {
		Labs []catalog.Entry `json:"labs"`
	}
	writeJSON(w, LabsResponse{Labs: h.Lab.All()})
}

// LabSetting GET /v1/labs/{name}
func (h *Handler) LabSetting(w http.ResponseWriter, r *http.Request) {
	ls, err := h.Lab.Setting(urlParam(r, "name"))
	if err != nil {
		h.fail(w, r, "lab setting", err)
		return
	}
	writeJSON(w, ls)
}
