package main

import (
	"strings"
	"testing"

	"neura/internal/manifest"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]tableColumn{column("Chunk"), numericColumn("Episodes")},
		[][]string{{"chunk-000", "12"}, {"chunk-001"}},
	)
	for _, want := range []string{"Chunk", "Episodes", "chunk-000", "12", "chunk-001"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil) != "" {
		t.Error("no columns should render nothing")
	}
}

func TestStatusLabel(t *testing.T) {
	cases := map[manifest.Status]string{
		manifest.StatusNew:         "New",
		manifest.StatusMissingSide: "Missing Side",
		manifest.StatusOrphanVideo: "Orphan Video",
	}
	for status, want := range cases {
		if got := statusLabel(status); got != want {
			t.Errorf("statusLabel(%s) = %q, want %q", status, got, want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tc := range cases {
		if got := formatBytes(tc.in); got != tc.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseStatusFilter(t *testing.T) {
	statuses, err := parseStatusFilter("new, changed")
	if err != nil {
		t.Fatalf("parseStatusFilter: %v", err)
	}
	if len(statuses) != 2 || statuses[0] != manifest.StatusNew || statuses[1] != manifest.StatusChanged {
		t.Errorf("statuses = %v", statuses)
	}

	if _, err := parseStatusFilter("bogus"); err == nil {
		t.Error("expected error for unknown status")
	}

	statuses, err = parseStatusFilter("")
	if err != nil || statuses != nil {
		t.Errorf("empty filter = %v, %v", statuses, err)
	}
}
