package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EncodeProjectPath maps a working directory to Claude Code's project
// directory name: every "/" becomes "-", including the leading one, so
// /home/user/proj becomes -home-user-proj.
func EncodeProjectPath(path string) string {
	clean := filepath.Clean(path)
	return strings.ReplaceAll(clean, "/", "-")
}

// FindTranscript returns the most recently modified session transcript for
// the given working directory.
func FindTranscript(workingDir string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	projectDir := filepath.Join(homeDir, ".claude", "projects", EncodeProjectPath(workingDir))
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return "", fmt.Errorf("reading project dir %s: %w", projectDir, err)
	}

	var bestPath string
	var bestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(bestTime) {
			bestTime = info.ModTime()
			bestPath = filepath.Join(projectDir, entry.Name())
		}
	}

	if bestPath == "" {
		return "", fmt.Errorf("no session transcripts found in %s", projectDir)
	}
	return bestPath, nil
}

// SessionIDFromPath derives the session id from a transcript filename.
func SessionIDFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".jsonl")
}

// ProjectSlug is the short display name for a working directory.
func ProjectSlug(workingDir string) string {
	base := filepath.Base(filepath.Clean(workingDir))
	if base == "." || base == "/" || base == "" {
		return "unknown"
	}
	return base
}
