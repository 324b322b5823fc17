// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"time"

	"github.com/jeranaias/sonarchat/internal/util"
)

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

func toStr(n int) string {
	return strconv.Itoa(n)
}

// fmtNumber formats a number with thousand separators.
func fmtNumber(n int) string {
	if n < 0 {
		return "-" + fmtNumber(-n)
	}
	s := toStr(n)
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// formatElapsed formats a duration as "3.2s" below a minute and "1m05s" above.
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return util.FormatFloat(d.Seconds(), 1) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	s := toStr(secs)
	if secs < 10 {
		s = "0" + s
	}
	return toStr(mins) + "m" + s + "s"
}
