package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

func formatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}

func formatRate(bytesPerSecond int64) string {
	if bytesPerSecond <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytesPerSecond)) + "/s"
}

func formatPercent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// formatETA renders the daemon's eta, where -1 means not available and -2
// means unknown.
func formatETA(seconds int64) string {
	if seconds < 0 {
		return "-"
	}
	return (time.Duration(seconds) * time.Second).String()
}

func formatDuration(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}
	return (time.Duration(seconds) * time.Second).String()
}
