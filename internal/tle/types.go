package tle

import "time"

// TLEEntry represents a single satellite's two-line element set, built from
// its two element lines plus an optional name.
type TLEEntry struct {
	NORADID int
	Name    string
	Epoch   time.Time
	Line1   string
	Line2   string
}
