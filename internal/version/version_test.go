package version

import (
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	build := Current()

	if build.Version == "" {
		t.Error("version should not be empty")
	}
	if build.Commit == "" {
		t.Error("commit should not be empty")
	}
	if build.Date == "" {
		t.Error("date should not be empty")
	}
}

func TestBuildString(t *testing.T) {
	s := Current().String()

	if s == "" {
		t.Fatal("String should not return empty string")
	}
	if !strings.Contains(s, Current().Version) {
		t.Errorf("String %q should contain version %q", s, Current().Version)
	}
	if !strings.Contains(s, Current().Commit) {
		t.Errorf("String %q should contain commit %q", s, Current().Commit)
	}
}
