package storage

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/verletsim/internal/sim"
)

type ExportData struct {
	Metadata *RunMetadata `json:"metadata"`
	Frames   []sim.Frame  `json:"frames"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, frames []sim.Frame) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Metadata: meta, Frames: frames})
}

func ExportCSV(w io.Writer, frames []sim.Frame) error {
	return gocsv.Marshal(frames, w)
}
