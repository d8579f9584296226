package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/solver"
)

func testResult() *sim.Result {
	return &sim.Result{
		Frames: []sim.Frame{
			{Tick: 0, Time: 0.5, Dt: 0.5, Particles: 10, MeanTemp: 1.25},
			{Tick: 1, Time: 1.0, Dt: 0.5, Particles: 12, Culled: 1, MaxPenetration: 0.75},
		},
		Metrics: map[string]float64{"population": 11},
		Ticks:   2,
		SimTime: 1,
		Seed:    42,
	}
}

func saveTestRun(t *testing.T, st *Store, name string) string {
	t.Helper()
	res := testResult()
	meta := NewMetadata(name, solver.DefaultConfig(), sim.DefaultConfig(), res)
	runID, err := st.Save(meta, res.Frames)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	return runID
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID := saveTestRun(t, st, "test")
	if !strings.HasPrefix(runID, "test_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.Name != "test" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["population"] != 11 {
		t.Errorf("expected population 11, got %f", meta.Metrics["population"])
	}
	if meta.Solver != solver.DefaultConfig() {
		t.Errorf("solver config not preserved: %+v", meta.Solver)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	want := testResult().Frames
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(frames))
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d: got %+v, want %+v", i, frames[i], want[i])
		}
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	a := saveTestRun(t, st, "same")
	b := saveTestRun(t, st, "same")
	if a == b {
		t.Errorf("expected distinct ids, both %q", a)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	saveTestRun(t, st, "test")
	os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755)

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runID := saveTestRun(t, st, "test")

	for _, name := range []string{"metadata.json", "frames.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, runID, "frames.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "tick,time,dt,particles") {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestRecorderEmptyRun(t *testing.T) {
	st := New(t.TempDir())
	rec, err := st.Create("empty")
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Finish(RunMetadata{Name: "empty"}); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	frames, err := st.LoadFrames(rec.ID())
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 0 {
		t.Errorf("expected no frames, got %d", len(frames))
	}
}

func TestExportJSON(t *testing.T) {
	res := testResult()
	meta := NewMetadata("x", solver.DefaultConfig(), sim.DefaultConfig(), res)

	var buf bytes.Buffer
	if err := ExportJSON(&buf, &meta, res.Frames); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Frames) != 2 || got.Metadata.Name != "x" {
		t.Errorf("unexpected export %+v", got)
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, testResult().Frames); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Errorf("expected 3 lines, got %d", n)
	}
}
