package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"
)

// BatchOptions configures RunBatch.
type BatchOptions struct {
	ConvertOptions
	// Workers bounds the number of concurrent conversions. Zero means
	// runtime.NumCPU().
	Workers int
	// MetricsFile, if set, receives conversion metrics in the Prometheus
	// text format once the batch is done.
	MetricsFile string
}

type batchMetrics struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newBatchMetrics() *batchMetrics {
	m := &batchMetrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ppmconv_conversions_total",
			Help: "Number of image conversions by result",
		}, []string{"from", "to", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ppmconv_conversion_duration_seconds",
			Help:    "Wall-clock duration of a single image conversion in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"from", "to"}),
	}
	m.registry.MustRegister(m.conversions, m.duration)
	return m
}

// BatchOutputPath returns the file in outDir that input converts to.
func BatchOutputPath(input, outDir string, to Format) string {
	base := filepath.Base(input)
	for {
		ext := filepath.Ext(base)
		if ext == "" {
			break
		}
		if _, ok := ParseFormat(ext); !ok && ext != ".gz" && ext != ".zst" {
			break
		}
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(outDir, base+to.Ext())
}

// RunBatch converts every input into outDir using format to. Conversions
// are independent of each other and run in parallel; all failures are
// collected and returned together. An input whose output path was already
// claimed by an earlier input is not converted and reported as a failure.
func RunBatch(inputs []string, outDir string, to Format, o BatchOptions) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input files provided")
	}
	if !to.CanEncode() {
		return &UnsupportedConversionError{From: "*", To: string(to)}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := o.out()
	progress := isTerminal(out)
	// per-file status lines are replaced by the progress line
	conv := o.ConvertOptions
	conv.Out = io.Discard
	if !progress {
		conv.Out = &syncWriter{w: out}
	}

	metrics := newBatchMetrics()
	errs := make([]error, len(inputs))
	outputs := make([]string, len(inputs))
	owner := make(map[string]string, len(inputs))
	for i, input := range inputs {
		outputs[i] = BatchOutputPath(input, outDir, to)
		if prev, ok := owner[outputs[i]]; ok {
			errs[i] = fmt.Errorf("%s: output %s is already produced by %s", input, outputs[i], prev)
			from, _, _ := FormatFromPath(input)
			metrics.conversions.WithLabelValues(string(from), string(to), "error").Inc()
			continue
		}
		owner[outputs[i]] = input
	}
	sem := make(chan struct{}, workers)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for i := range inputs {
		if errs[i] != nil {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			input := inputs[i]
			from, _, _ := FormatFromPath(input)
			start := time.Now()
			err := RunConvert(input, outputs[i], conv)
			metrics.duration.WithLabelValues(string(from), string(to)).Observe(time.Since(start).Seconds())
			result := "ok"
			if err != nil {
				result = "error"
				errs[i] = err
			}
			metrics.conversions.WithLabelValues(string(from), string(to), result).Inc()

			if progress {
				mu.Lock()
				done++
				fmt.Fprintf(out, "\r[%d/%d] %s", done, len(inputs), filepath.Base(input))
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if progress {
		fmt.Fprintln(out)
	}

	if o.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(o.MetricsFile, metrics.registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return errors.Join(errs...)
}

// syncWriter serialises status lines written from concurrent conversions.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
