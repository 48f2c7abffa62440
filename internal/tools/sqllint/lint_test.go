package main

import (
	"strings"
	"testing"
)

func TestLintSource(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		wants []string
	}{
		{
			name: "marked query passes",
			src: "package q\nconst QOk = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;\n`\n",
		},
		{
			name:  "unmarked query",
			src:   "package q\nconst QBad = `select * from jobs`\n",
			wants: []string{"missing or invalid"},
		},
		{
			name:  "malformed marker",
			src:   "package q\nconst QBad = `--sql not-a-uuid\nupdate jobs set status = 'x'`\n",
			wants: []string{"missing or invalid"},
		},
		{
			name:  "duplicate marker",
			src:   "package q\nconst (\nQA = `--sql 11111111-2222-4333-8444-555555555555\nselect 1`\nQB = `--sql 11111111-2222-4333-8444-555555555555\nselect 2`\n)\n",
			wants: []string{"already used by QA"},
		},
		{
			name: "prose mentioning update is ignored",
			src:  "package q\nconst msg = \"failed to update job\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLinter()
			if err := l.lintSource("q.go", tt.src); err != nil {
				t.Fatalf("lint error: %v", err)
			}
			if len(l.violations) != len(tt.wants) {
				t.Fatalf("expected %d violations, got %+v", len(tt.wants), l.violations)
			}
			for i, want := range tt.wants {
				if !strings.Contains(l.violations[i].message, want) {
					t.Fatalf("violation %d: expected %q in %q", i, want, l.violations[i].message)
				}
			}
		})
	}
}
