package exclude

import "testing"

func TestDefaultPatterns(t *testing.T) {
	filter := Default()

	skipped := []string{
		"module.pyc",
		"helper.pyo",
		"__pycache__",
		"alfred_workflow.egg-info",
		".info.plist.swp",
		"notes.txt~",
		".git",
		".hg",
		".svn",
		".DS_Store",
		"debug.log",
	}
	for _, name := range skipped {
		if !filter.Skip(name) {
			t.Errorf("expected %q to be excluded", name)
		}
	}

	kept := []string{
		"info.plist",
		"icon.png",
		"entrypoint.py",
		"README.md",
		"gitutils.py",
		"logbook",
	}
	for _, name := range kept {
		if filter.Skip(name) {
			t.Errorf("expected %q to be kept", name)
		}
	}
}

func TestExtraPatterns(t *testing.T) {
	filter := New([]string{"*.bak", "  ", "node_modules"})

	if !filter.Skip("old.bak") {
		t.Error("expected extra pattern *.bak to match")
	}
	if !filter.Skip("node_modules") {
		t.Error("expected extra pattern node_modules to match")
	}
	if !filter.Skip("cache.pyc") {
		t.Error("built-in patterns should survive extras")
	}
	if filter.Skip("keep.txt") {
		t.Error("unexpected match for keep.txt")
	}
}

func TestNilFilterNeverSkips(t *testing.T) {
	var filter *Filter
	if filter.Skip(".git") {
		t.Error("nil filter must not skip anything")
	}
}
