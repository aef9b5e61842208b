// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package display formats timestamps, durations and byte counts for people.
package display

import (
	"fmt"
	"time"
)

// TimeLayout is the layout used by Time.
const TimeLayout = "2006/01/02 15:04:05"

// Time formats t as "2006/01/02 15:04:05".
func Time(t time.Time) string {
	return t.Format(TimeLayout)
}

// Duration formats d as hours, minutes and seconds, e.g. "26h03m09s".
// Hours are not wrapped into days. Negative durations are formatted with a leading "-".
func Duration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	d = d.Truncate(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second

	return fmt.Sprintf("%s%dh%02dm%02ds", sign, h, m, s)
}

var units = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// Bytes formats n using binary units with one decimal place, e.g. "1.5 GiB".
func Bytes(n uint64) string {
	const unit = 1024

	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	v := float64(n)
	i := 0

	for v >= unit && i < len(units)-1 {
		v /= unit
		i++
	}

	return fmt.Sprintf("%.1f %s", v, units[i])
}
