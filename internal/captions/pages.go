package captions

import (
	"fmt"
	"io"
	"strings"
)

// Page is a group of consecutive caption entries shown on screen together.
type Page struct {
	Text    string  `json:"text"`
	StartMs int64   `json:"startMs"`
	EndMs   int64   `json:"endMs"`
	Tokens  []Entry `json:"tokens"`
}

// Paginate groups entries into pages. An entry joins the current page while the
// page, extended to that entry's end, stays within combineWithinMs. A
// non-positive combineWithinMs puts every entry on its own page.
func Paginate(entries []Entry, combineWithinMs int64) []Page {
	pages := make([]Page, 0)
	for _, entry := range entries {
		if n := len(pages); n > 0 && combineWithinMs > 0 && entry.EndMs-pages[n-1].StartMs <= combineWithinMs {
			page := &pages[n-1]
			page.Tokens = append(page.Tokens, entry)
			page.Text += " " + entry.Text
			if entry.EndMs > page.EndMs {
				page.EndMs = entry.EndMs
			}
			continue
		}
		pages = append(pages, Page{
			Text:    entry.Text,
			StartMs: entry.StartMs,
			EndMs:   entry.EndMs,
			Tokens:  []Entry{entry},
		})
	}
	return pages
}

// WriteSRT writes pages as numbered SRT cues.
func WriteSRT(w io.Writer, pages []Page) error {
	var sb strings.Builder
	for i, page := range pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n", formatSRTTimestamp(page.StartMs), formatSRTTimestamp(page.EndMs))
		sb.WriteString(page.Text)
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatSRTTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3_600_000
	ms %= 3_600_000
	minutes := ms / 60_000
	ms %= 60_000
	secs := ms / 1_000
	millis := ms % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
