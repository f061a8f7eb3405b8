package main

import (
	"bufio"
	"strings"
	"testing"

	"filedex/internal/dedup"
)

func TestPromptResolverAnswers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"yes short", "y\n", true},
		{"yes long", "yes\n", true},
		{"yes uppercase", "YES\n", true},
		{"no", "n\n", false},
		{"empty defaults to no", "\n", false},
		{"garbage defaults to no", "delete it\n", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &promptResolver{input: bufio.NewReader(strings.NewReader(tt.answer))}
			inspected := dedup.Entry{Path: "/files/a.txt", Size: 10}
			candidates := []dedup.Entry{{Path: "/files/b.txt", Size: 10}}

			if got := p.Resolve(inspected, candidates, nil); got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestPromptResolverReadError(t *testing.T) {
	t.Parallel()

	// No trailing newline, so the read fails with EOF
	p := &promptResolver{input: bufio.NewReader(strings.NewReader("y"))}
	if p.Resolve(dedup.Entry{Path: "/files/a.txt"}, nil, nil) {
		t.Error("Resolve should refuse deletion when the answer cannot be read")
	}
}
