package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"process.txt", "process"},
		{"dir/process.triples", "dir/process"},
		{"noext", "noext"},
		{"-", "diagram"},
	}

	for _, tt := range tests {
		if got := basePath(tt.input); got != tt.want {
			t.Errorf("basePath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		output string
		input  string
		format string
		multi  bool
		want   string
	}{
		{"", "process.txt", "drawio", false, "process.drawio"},
		{"out.xml", "process.txt", "drawio", false, "out.xml"},
		{"", "process.txt", "svg", true, "process.svg"},
		{"base", "process.txt", "png", true, "base.png"},
		{"", "-", "drawio", false, "diagram.drawio"},
	}

	for _, tt := range tests {
		got := artifactPath(tt.output, tt.input, tt.format, tt.multi)
		if got != tt.want {
			t.Errorf("artifactPath(%q, %q, %q, %v) = %q, want %q",
				tt.output, tt.input, tt.format, tt.multi, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "process.txt")

	artifacts := map[string][]byte{
		"drawio": []byte("<mxfile/>"),
		"dot":    []byte("digraph {}"),
	}

	paths, err := writeArtifacts(artifacts, []string{"drawio", "dot"}, "", input)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %d, want 2", len(paths))
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("read %s: %v", p, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", p)
		}
	}
}

func TestReadInputMissingFile(t *testing.T) {
	if _, err := readInput(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("missing file should fail")
	}
}
