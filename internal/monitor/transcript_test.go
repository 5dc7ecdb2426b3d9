package monitor

import "testing"

func TestEncodeProjectPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/home/user/project", "-home-user-project"},
		{"/home/user/deep/nested/dir", "-home-user-deep-nested-dir"},
		{"/tmp/test/", "-tmp-test"},
	}

	for _, tt := range tests {
		got := EncodeProjectPath(tt.input)
		if got != tt.expected {
			t.Errorf("EncodeProjectPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSessionIDFromPath(t *testing.T) {
	got := SessionIDFromPath("/home/u/.claude/projects/-home-u-proj/abc-123.jsonl")
	if got != "abc-123" {
		t.Errorf("got %q, want abc-123", got)
	}
}

func TestProjectSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/home/user/myproject", "myproject"},
		{"/home/user/myproject/", "myproject"},
		{"/", "unknown"},
	}
	for _, tt := range tests {
		if got := ProjectSlug(tt.input); got != tt.expected {
			t.Errorf("ProjectSlug(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
