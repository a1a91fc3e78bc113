package captions

import (
	"bytes"
	"testing"
)

func TestPaginateCombinesWithinWindow(t *testing.T) {
	entries := []Entry{
		{Text: "a", StartMs: 0, EndMs: 300},
		{Text: "b", StartMs: 300, EndMs: 700},
		{Text: "c", StartMs: 700, EndMs: 1500},
		{Text: "d", StartMs: 1500, EndMs: 1600},
	}

	pages := Paginate(entries, 1200)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d: %+v", len(pages), pages)
	}
	if pages[0].Text != "a b" || pages[0].StartMs != 0 || pages[0].EndMs != 700 {
		t.Errorf("unexpected first page %+v", pages[0])
	}
	if pages[1].Text != "c d" || pages[1].StartMs != 700 || pages[1].EndMs != 1600 {
		t.Errorf("unexpected second page %+v", pages[1])
	}
	if len(pages[1].Tokens) != 2 {
		t.Errorf("expected 2 tokens on second page, got %d", len(pages[1].Tokens))
	}

	single := Paginate(entries, 0)
	if len(single) != len(entries) {
		t.Fatalf("expected one page per entry, got %d", len(single))
	}
}

func TestPaginateEmpty(t *testing.T) {
	pages := Paginate(nil, 1200)
	if pages == nil || len(pages) != 0 {
		t.Fatalf("expected empty non-nil pages, got %#v", pages)
	}
}

func TestWriteSRT(t *testing.T) {
	pages := []Page{
		{Text: "a b", StartMs: 0, EndMs: 700},
		{Text: "c d", StartMs: 700, EndMs: 3_661_001},
	}
	var buf bytes.Buffer
	if err := WriteSRT(&buf, pages); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:00,700\na b\n\n2\n00:00:00,700 --> 01:01:01,001\nc d\n"
	if buf.String() != want {
		t.Fatalf("WriteSRT() =\n%q\nwant\n%q", buf.String(), want)
	}
}
