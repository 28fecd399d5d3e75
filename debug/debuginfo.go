// Copyright 2025 Aviator Technologies, Inc.
// SPDX-License-Identifier: MIT

package debug

type LsRefsDebugInfo struct {
	// ResponseHeaders is the headers of the HTTP response when listing the refs.
	ResponseHeaders map[string][]string `json:"responseHeaders"`
}
