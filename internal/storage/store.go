package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/verletsim/internal/grid"
	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/solver"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

type Store struct {
	baseDir string
	log     *slog.Logger
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, log: slog.Default()}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("create store %s: %w", s.baseDir, err)
	}
	return nil
}

// RunMetadata describes a stored run. Particle state is never stored;
// frames.csv carries the per-tick aggregates.
type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Run       sim.Config         `json:"run"`
	Solver    solver.Config      `json:"solver"`
	Ticks     int                `json:"ticks"`
	SimTime   float64            `json:"sim_time"`
	ElapsedMS float64            `json:"elapsed_ms"`
	Final     solver.Stats       `json:"final"`
	Grid      grid.Info          `json:"grid"`
	Metrics   map[string]float64 `json:"metrics"`
}

// NewMetadata builds the metadata for a finished run.
func NewMetadata(name string, cfg solver.Config, run sim.Config, result *sim.Result) RunMetadata {
	return RunMetadata{
		Name:      name,
		Timestamp: time.Now(),
		Seed:      result.Seed,
		Run:       run,
		Solver:    cfg,
		Ticks:     result.Ticks,
		SimTime:   result.SimTime,
		ElapsedMS: float64(result.Elapsed) / float64(time.Millisecond),
		Final:     result.Final,
		Grid:      result.Grid,
		Metrics:   result.Metrics,
	}
}

// Save writes metadata.json and frames.csv into a new run directory and
// returns the run id.
func (s *Store) Save(meta RunMetadata, frames []sim.Frame) (string, error) {
	rec, err := s.Create(meta.Name)
	if err != nil {
		return "", err
	}
	for _, f := range frames {
		if err := rec.OnFrame(f); err != nil {
			rec.Close()
			return "", err
		}
	}
	if err := rec.Finish(meta); err != nil {
		return "", err
	}
	return rec.ID(), nil
}

func (s *Store) newRunID(name string) string {
	if name == "" {
		name = "run"
	}
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	id := base
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			s.log.Debug("skipping unreadable run", "id", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", metaPath, err)
	}

	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	csvPath := filepath.Join(s.baseDir, runID, framesFile)
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	frames := []sim.Frame{}
	if err := gocsv.UnmarshalFile(file, &frames); err != nil {
		return nil, fmt.Errorf("parse %s: %w", csvPath, err)
	}
	return frames, nil
}
