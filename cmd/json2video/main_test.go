package main

import (
	"bytes"
	"strings"
	"testing"

	"json2video/timeline"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"render", "plan", "batch", "serve", "consume", "watch"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected subcommand %q, got %v (%v)", name, cmd, err)
		}
	}
}

func TestWatchSkipsConfig(t *testing.T) {
	root := newRootCommand()
	watch, _, _ := root.Find([]string{"watch"})
	render, _, _ := root.Find([]string{"render"})
	if !shouldSkipConfig(watch) || shouldSkipConfig(render) {
		t.Error("only watch should skip config loading")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignLeft, alignRight})
	if !strings.Contains(out, "only") || !strings.Contains(out, "A") {
		t.Errorf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("expected empty output without headers")
	}
}

func TestPrintPlan(t *testing.T) {
	tl := &timeline.Timeline{
		Canvas:     timeline.Canvas{Width: 1080, Height: 1920},
		Background: "black",
		Segments:   []timeline.Segment{{ID: "intro", EndTime: 2.5, VoiceEndTime: 2}},
		Visuals: []timeline.VisualLayer{
			{Kind: timeline.KindText, Label: "text title", ZIndex: 2, Window: timeline.Window{End: 2}},
			{Kind: timeline.KindVideo, Label: "video bg.mp4", Window: timeline.Window{End: 2.5}, Size: timeline.Size{Width: 1080, Height: 1920}},
		},
		Audio:         []timeline.AudioLayer{{Label: "script intro", Window: timeline.Window{End: 2}, Volume: 1}},
		Skipped:       []timeline.Skip{{Kind: timeline.KindImage, Label: "image logo", Reason: "404"}},
		TotalDuration: 2.5,
	}

	var buf bytes.Buffer
	printPlan(&buf, tl)
	out := buf.String()

	for _, want := range []string{"Canvas 1080x1920", "duration 2.500s", "intro", "video bg.mp4", "1080x1920", "script intro", "image logo"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "video bg.mp4") > strings.Index(out, "text title") {
		t.Error("layers should be listed in paint order")
	}
}

func TestSortRows(t *testing.T) {
	rows := [][]string{{"b.json", "x"}, {"a.json", "y"}}
	sortRows(rows)
	if rows[0][0] != "a.json" {
		t.Errorf("expected sorted rows, got %v", rows)
	}
}
