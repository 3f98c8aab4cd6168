// Package telemetry records per-step renderer statistics to CSV and
// summarizes build timings.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"
)

// StepStats is one row of steps.csv.
type StepStats struct {
	Step        int     `csv:"step"`
	Emitter     string  `csv:"emitter"`
	Mode        string  `csv:"mode"`
	Active      int     `csv:"active"`
	Vertices    int     `csv:"vertices"`
	Indices     int     `csv:"indices"`
	Capacity    int     `csv:"capacity"`
	BuildMicros float64 `csv:"build_us"`
}

// NewStepStats fills the timing column from a duration.
func NewStepStats(step int, emitter, mode string, active, vertices, indices, capacity int, build time.Duration) StepStats {
	return StepStats{
		Step:        step,
		Emitter:     emitter,
		Mode:        mode,
		Active:      active,
		Vertices:    vertices,
		Indices:     indices,
		Capacity:    capacity,
		BuildMicros: float64(build) / float64(time.Microsecond),
	}
}

// Writer appends StepStats rows, writing the header only once.
type Writer struct {
	out           io.Writer
	closer        io.Closer
	headerWritten bool
}

func NewWriter(out io.Writer) *Writer { return &Writer{out: out} }

// Create opens dir/steps.csv for writing, creating dir if needed.
func Create(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "steps.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating steps.csv: %w", err)
	}
	return &Writer{out: f, closer: f}, nil
}

func (w *Writer) Write(records ...StepStats) error {
	if len(records) == 0 {
		return nil
	}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.out); err != nil {
			return fmt.Errorf("writing steps: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.out); err != nil {
		return fmt.Errorf("writing steps: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Read parses rows written by Writer.
func Read(in io.Reader) ([]StepStats, error) {
	var rows []StepStats
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, fmt.Errorf("reading steps: %w", err)
	}
	return rows, nil
}

// Summary aggregates build timings over many steps.
type Summary struct {
	Steps        int
	MeanMicros   float64
	StdDevMicros float64
	MaxMicros    float64
	MeanActive   float64
	PeakActive   int
}

func (s Summary) String() string {
	return fmt.Sprintf("steps=%d build mean=%.1fus sd=%.1fus max=%.1fus active mean=%.1f peak=%d",
		s.Steps, s.MeanMicros, s.StdDevMicros, s.MaxMicros, s.MeanActive, s.PeakActive)
}

func Summarize(rows []StepStats) Summary {
	if len(rows) == 0 {
		return Summary{}
	}
	build := make([]float64, len(rows))
	active := make([]float64, len(rows))
	sum := Summary{Steps: len(rows)}
	for i, r := range rows {
		build[i] = r.BuildMicros
		active[i] = float64(r.Active)
		sum.MaxMicros = max(sum.MaxMicros, r.BuildMicros)
		sum.PeakActive = max(sum.PeakActive, r.Active)
	}
	sum.MeanMicros, sum.StdDevMicros = stat.MeanStdDev(build, nil)
	if len(rows) == 1 {
		// sample deviation is undefined for one value
		sum.StdDevMicros = 0
	}
	sum.MeanActive = stat.Mean(active, nil)
	return sum
}
