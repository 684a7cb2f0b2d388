package osd

import "strings"

const barWidth = 20

// levelBar draws pct as text for notification services without a value hint.
func levelBar(pct int32) string {
	filled := int(pct) * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
