package hooks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func writeHooks(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func testExport() ExportContext {
	return ExportContext{
		Paths:     []string{"/tmp/board.json", "/tmp/board.md"},
		Formats:   []string{"json", "md"},
		CardCount: 4,
		Timestamp: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, warnings, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Empty() || len(warnings) != 0 {
		t.Errorf("expected no hooks, got %+v %v", cfg, warnings)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeHooks(t, `hooks:
  pre-export:
    - command: "true"
    - name: empty
      command: "  "
  post-export:
    - name: notify
      command: echo done
      timeout: 5s
    - command: echo slow
      timeout: 2
`)
	cfg, warnings, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	pre := cfg.ForPhase(PreExport)
	if len(pre) != 1 {
		t.Fatalf("pre-export hooks = %d, want 1", len(pre))
	}
	if pre[0].Name != "pre-export-1" || pre[0].OnError != "fail" || pre[0].Timeout != DefaultTimeout {
		t.Errorf("pre hook defaults = %+v", pre[0])
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "no command") {
		t.Errorf("warnings = %v", warnings)
	}

	post := cfg.ForPhase(PostExport)
	if len(post) != 2 {
		t.Fatalf("post-export hooks = %d, want 2", len(post))
	}
	if post[0].OnError != "continue" || post[0].Timeout != 5*time.Second {
		t.Errorf("post hook = %+v", post[0])
	}
	if post[1].Timeout != 2*time.Second {
		t.Errorf("bare seconds timeout = %v", post[1].Timeout)
	}
	if cfg.ForPhase("during-export") != nil {
		t.Error("unknown phase should have no hooks")
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	dir := writeHooks(t, "hooks:\n  pre-export:\n    - command: \"true\"\n      timeout: soon\n")
	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected error for bad timeout")
	}
}

func TestExportContextEnv(t *testing.T) {
	env := strings.Join(testExport().ToEnv(), "\n")
	for _, want := range []string{
		"LANEBOARD_EXPORT_PATHS=/tmp/board.json,/tmp/board.md",
		"LANEBOARD_EXPORT_FORMATS=json,md",
		"LANEBOARD_CARD_COUNT=4",
		"LANEBOARD_TIMESTAMP=2026-10-17T12:00:00Z",
	} {
		if !strings.Contains(env, want) {
			t.Errorf("env missing %q", want)
		}
	}
}

func TestPreExportStopsAtFirstFailure(t *testing.T) {
	cfg := &Config{Hooks: ByPhase{PreExport: []Hook{
		{Name: "check", Command: "echo checking; exit 3", OnError: "fail", Timeout: time.Second},
		{Name: "never", Command: "echo never", OnError: "fail", Timeout: time.Second},
	}}}
	e := NewExecutor(cfg, testExport())

	err := e.RunPreExport()
	if err == nil || !strings.Contains(err.Error(), `"check"`) {
		t.Fatalf("err = %v", err)
	}
	results := e.Results()
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Success || results[0].Stdout != "checking" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestPreExportContinue(t *testing.T) {
	cfg := &Config{Hooks: ByPhase{PreExport: []Hook{
		{Name: "soft", Command: "exit 1", OnError: "continue", Timeout: time.Second},
		{Name: "next", Command: "true", OnError: "fail", Timeout: time.Second},
	}}}
	e := NewExecutor(cfg, testExport())
	if err := e.RunPreExport(); err != nil {
		t.Fatalf("RunPreExport: %v", err)
	}
	if len(e.Results()) != 2 {
		t.Errorf("results = %d, want 2", len(e.Results()))
	}
}

func TestPostExportRunsAllAndSeesEnv(t *testing.T) {
	cfg := &Config{Hooks: ByPhase{PostExport: []Hook{
		{Name: "count", Command: "echo $LANEBOARD_CARD_COUNT", OnError: "continue", Timeout: time.Second},
		{Name: "broken", Command: "echo oops >&2; exit 1", OnError: "continue", Timeout: time.Second},
		{Name: "custom", Command: "echo $TARGET", Env: map[string]string{"TARGET": "cards=${LANEBOARD_CARD_COUNT}"}, OnError: "continue", Timeout: time.Second},
	}}}
	e := NewExecutor(cfg, testExport())
	if err := e.RunPostExport(); err != nil {
		t.Fatalf("RunPostExport: %v", err)
	}

	results := e.Results()
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].Stdout != "4" {
		t.Errorf("card count stdout = %q", results[0].Stdout)
	}
	if results[1].Success || results[1].Stderr != "oops" {
		t.Errorf("broken result = %+v", results[1])
	}
	if results[2].Stdout != "cards=4" {
		t.Errorf("expanded env stdout = %q", results[2].Stdout)
	}

	summary := e.Summary()
	if !strings.Contains(summary, "2 succeeded") || !strings.Contains(summary, "1 failed") {
		t.Errorf("summary = %q", summary)
	}
	if !strings.Contains(summary, "stderr: oops") {
		t.Errorf("summary missing stderr: %q", summary)
	}
}

func TestPostExportFailJoinsErrors(t *testing.T) {
	cfg := &Config{Hooks: ByPhase{PostExport: []Hook{
		{Name: "a", Command: "exit 1", OnError: "fail", Timeout: time.Second},
		{Name: "b", Command: "exit 2", OnError: "fail", Timeout: time.Second},
	}}}
	err := NewExecutor(cfg, testExport()).RunPostExport()
	if err == nil || !strings.Contains(err.Error(), `"a"`) || !strings.Contains(err.Error(), `"b"`) {
		t.Fatalf("err = %v", err)
	}
}

func TestHookTimeout(t *testing.T) {
	cfg := &Config{Hooks: ByPhase{PreExport: []Hook{
		{Name: "slow", Command: "sleep 5", OnError: "fail", Timeout: 50 * time.Millisecond},
	}}}
	e := NewExecutor(cfg, testExport())
	err := e.RunPreExport()
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("err = %v", err)
	}
}

func TestSummaryTruncatesStderr(t *testing.T) {
	e := NewExecutor(nil, testExport())
	if e.Summary() != "" {
		t.Error("summary of no runs should be empty")
	}
	e.results = append(e.results, Result{
		Hook:   Hook{Name: "loud"},
		Phase:  PostExport,
		Stderr: strings.Repeat("x", maxStderrInSummary+50),
	})
	if s := e.Summary(); !strings.Contains(s, "...") || strings.Contains(s, strings.Repeat("x", maxStderrInSummary+1)) {
		t.Errorf("stderr not truncated: %q", s)
	}
}

func TestSummaryKeepsMultibyteStderrValid(t *testing.T) {
	e := NewExecutor(nil, testExport())
	e.results = append(e.results, Result{
		Hook:   Hook{Name: "accents"},
		Phase:  PreExport,
		Stderr: "é" + strings.Repeat("ü", maxStderrInSummary),
	})
	s := e.Summary()
	if !utf8.ValidString(s) {
		t.Fatalf("summary is not valid UTF-8: %q", s)
	}
	if !strings.HasSuffix(s, "...") {
		t.Errorf("summary should end in an ellipsis: %q", s)
	}
}

func TestRunHooks(t *testing.T) {
	e, err := RunHooks(t.TempDir(), testExport(), false)
	if err != nil || e != nil {
		t.Errorf("no hooks file: e=%v err=%v", e, err)
	}

	dir := writeHooks(t, "hooks:\n  post-export:\n    - command: \"true\"\n")
	if e, _ := RunHooks(dir, testExport(), true); e != nil {
		t.Error("disabled hooks should return nil executor")
	}
	e, err = RunHooks(dir, testExport(), false)
	if err != nil || e == nil {
		t.Fatalf("RunHooks: e=%v err=%v", e, err)
	}
	if err := e.RunPostExport(); err != nil {
		t.Fatal(err)
	}

	bad := writeHooks(t, "hooks: [")
	if _, err := RunHooks(bad, testExport(), false); err == nil {
		t.Error("expected parse error")
	}
}
