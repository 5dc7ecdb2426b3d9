package goalstore

import (
	"os"
	"testing"
	"time"
)

func TestReadMissingGoal(t *testing.T) {
	s := New(t.TempDir())
	goal, err := s.Read("session-1")
	if err != nil {
		t.Fatal(err)
	}
	if goal != "" {
		t.Errorf("goal = %q, want empty", goal)
	}
}

func TestWriteThenRead(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Write("session-1", "fix the login flow"); err != nil {
		t.Fatal(err)
	}

	goal, err := s.Read("session-1")
	if err != nil {
		t.Fatal(err)
	}
	if goal != "fix the login flow" {
		t.Errorf("goal = %q", goal)
	}
}

func TestGoalsAreIsolatedPerSession(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Write("session-a", "goal a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("session-b", "goal b"); err != nil {
		t.Fatal(err)
	}

	if goal, _ := s.Read("session-a"); goal != "goal a" {
		t.Errorf("session-a goal = %q", goal)
	}
	if goal, _ := s.Read("session-b"); goal != "goal b" {
		t.Errorf("session-b goal = %q", goal)
	}
}

func TestModTime(t *testing.T) {
	s := New(t.TempDir())

	if mt := s.ModTime("session-1"); !mt.IsZero() {
		t.Errorf("mod time before write = %v, want zero", mt)
	}

	if err := s.Write("session-1", "goal"); err != nil {
		t.Fatal(err)
	}
	first := s.ModTime("session-1")
	if first.IsZero() {
		t.Fatal("mod time after write is zero")
	}

	// Rewrites bump the mtime so a watching monitor sees the change.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(s.goalPath("session-1"), future, future); err != nil {
		t.Fatal(err)
	}
	if !s.ModTime("session-1").After(first) {
		t.Error("mod time did not advance")
	}
}

func TestPIDLifecycle(t *testing.T) {
	s := New(t.TempDir())

	if _, alive := s.MonitorPID("session-1"); alive {
		t.Error("no pid file should report not alive")
	}

	// Our own pid is certainly alive.
	if err := s.WritePID("session-1", os.Getpid()); err != nil {
		t.Fatal(err)
	}
	pid, alive := s.MonitorPID("session-1")
	if !alive || pid != os.Getpid() {
		t.Errorf("got pid=%d alive=%v", pid, alive)
	}

	s.ClearPID("session-1")
	if _, alive := s.MonitorPID("session-1"); alive {
		t.Error("cleared pid should report not alive")
	}
}

func TestStalePID(t *testing.T) {
	s := New(t.TempDir())

	// High pids beyond the default pid_max are never allocated.
	if err := s.WritePID("session-1", 1<<30); err != nil {
		t.Fatal(err)
	}
	if pid, alive := s.MonitorPID("session-1"); alive {
		t.Errorf("stale pid %d reported alive", pid)
	}
}
