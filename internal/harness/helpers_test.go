package harness

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"golang.org/x/tools/txtar"

	"snapcheck/internal/compare"
	"snapcheck/internal/config"
	"snapcheck/internal/discovery"
	"snapcheck/internal/domain"
	"snapcheck/internal/logging"
	"snapcheck/internal/parser"
	"snapcheck/internal/paths"
	"snapcheck/internal/storage"
)

// materialize writes the files of a txtar archive under a fresh temp dir
func materialize(t *testing.T, archive string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", f.Name, err)
		}
		if err := os.WriteFile(path, f.Data, 0644); err != nil {
			t.Fatalf("failed to write %s: %v", f.Name, err)
		}
	}
	return dir
}

// fakeRunner answers with canned output keyed by the path relative to the project dir
type fakeRunner struct {
	root      string
	outputs   map[string]string
	errs      map[string]error
	leakCodes map[string]int
	calls     []string
}

func newFakeRunner(root string) *fakeRunner {
	return &fakeRunner{
		root:      root,
		outputs:   make(map[string]string),
		errs:      make(map[string]error),
		leakCodes: make(map[string]int),
	}
}

func (f *fakeRunner) key(testPath string) string {
	rel, err := filepath.Rel(f.root, testPath)
	if err != nil {
		return testPath
	}
	return filepath.ToSlash(rel)
}

func (f *fakeRunner) Run(_ context.Context, testPath string) ([]byte, error) {
	k := f.key(testPath)
	f.calls = append(f.calls, k)
	if err := f.errs[k]; err != nil {
		return nil, err
	}
	return []byte(f.outputs[k]), nil
}

func (f *fakeRunner) RunUnderLeakCheck(_ context.Context, testPath string) (int, []byte, error) {
	k := f.key(testPath)
	f.calls = append(f.calls, k)
	if err := f.errs[k]; err != nil {
		return 0, nil, err
	}
	return f.leakCodes[k], []byte("diagnostics for " + k), nil
}

type recorder struct {
	results []domain.Result
	summary *domain.Summary
}

func (r *recorder) Result(res domain.Result) { r.results = append(r.results, res) }
func (r *recorder) Summary(s domain.Summary) { r.summary = &s }

type fakeProgress struct {
	updates  int
	finished bool
}

func (p *fakeProgress) Update(done, passed, failed int) { p.updates++ }
func (p *fakeProgress) Finish()                         { p.finished = true }

type fixture struct {
	dir    string
	cfg    *config.Config
	runner *fakeRunner
	rec    *recorder
	h      *Harness
}

func newFixture(t *testing.T, archive string) *fixture {
	t.Helper()
	dir := materialize(t, archive)
	cfg := config.New()
	cfg.ProjectPath = dir

	log := logging.Discard()
	mapper := paths.NewMapper(cfg.GetTestRoot(), cfg.GetSnapshotRoot(), cfg.SnapshotExt)
	store := storage.NewFileStore(mapper, log)
	runner := newFakeRunner(dir)
	rec := &recorder{}

	h := New(
		cfg,
		mapper,
		discovery.NewWalker(mapper, cfg.TestDirs, log),
		discovery.NewFilter(),
		runner,
		store,
		compare.NewEngine(store),
		parser.NewLeakParser(),
		rec,
		log,
	)
	if err := h.Prepare(); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	return &fixture{dir: dir, cfg: cfg, runner: runner, rec: rec, h: h}
}

func (f *fixture) run(t *testing.T, mode domain.Mode) *Report {
	t.Helper()
	f.rec.results = nil
	f.rec.summary = nil
	tests, err := f.h.Tests()
	if err != nil {
		t.Fatalf("discovery failed: %v", err)
	}
	report, err := f.h.Execute(context.Background(), mode, tests)
	if err != nil {
		t.Fatalf("%s failed: %v", mode, err)
	}
	if f.rec.summary == nil {
		t.Fatalf("%s did not report a summary", mode)
	}
	return report
}

func (f *fixture) path(rel string) string {
	return filepath.Join(f.dir, filepath.FromSlash(rel))
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(f.path(rel))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}

func (f *fixture) exists(rel string) bool {
	_, err := os.Stat(f.path(rel))
	return err == nil
}

// statuses maps the project relative test (or snapshot) path to its status
func (f *fixture) statuses(report *Report) map[string]domain.Status {
	out := make(map[string]domain.Status)
	for _, r := range report.Results {
		p := r.TestPath
		if p == "" {
			p = r.SnapshotPath
		}
		rel, _ := filepath.Rel(f.dir, p)
		out[filepath.ToSlash(rel)] = r.Status
	}
	return out
}

func sortedKeys(m map[string]domain.Status) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
