package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/verletsim/internal/sim"
)

// Recorder streams frames into a run directory as they are produced. It
// satisfies sim.Observer.
type Recorder struct {
	id            string
	dir           string
	file          *os.File
	headerWritten bool
	store         *Store
}

// Create opens a new run directory for streaming.
func (s *Store) Create(name string) (*Recorder, error) {
	id := s.newRunID(name)
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, framesFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", framesFile, err)
	}
	return &Recorder{id: id, dir: dir, file: f, store: s}, nil
}

func (r *Recorder) ID() string { return r.id }

func (r *Recorder) OnFrame(f sim.Frame) error {
	records := []sim.Frame{f}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.file); err != nil {
			return fmt.Errorf("writing frames: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.file); err != nil {
		return fmt.Errorf("writing frames: %w", err)
	}
	return nil
}

// Finish writes metadata.json and closes the frame stream.
func (r *Recorder) Finish(meta RunMetadata) error {
	defer r.Close()
	meta.ID = r.id

	if !r.headerWritten {
		if err := gocsv.Marshal([]sim.Frame{}, r.file); err != nil {
			return fmt.Errorf("writing frames: %w", err)
		}
		r.headerWritten = true
	}

	f, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return fmt.Errorf("creating %s: %w", metadataFile, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("writing %s: %w", metadataFile, err)
	}
	r.store.log.Info("run saved", "id", r.id, "ticks", meta.Ticks)
	return nil
}

func (r *Recorder) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
