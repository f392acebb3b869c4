// Package metrics wraps the armon/go-metrics global registry.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/armon/go-metrics"
)

// ServiceName prefixes every emitted key.
const ServiceName = "imgsim"

// Initialize installs an in-memory sink as the global metrics sink and
// returns it so callers can print a summary later.
func Initialize() (*metrics.InmemSink, error) {
	sink := metrics.NewInmemSink(time.Minute, 5*time.Minute)
	conf := metrics.DefaultConfig(ServiceName)
	conf.EnableHostname = false
	conf.EnableRuntimeMetrics = false
	if _, err := metrics.NewGlobal(conf, sink); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	return sink, nil
}

func IncrCounter(name []string, val float32) {
	metrics.IncrCounter(name, val)
}

func MeasureSince(name []string, start time.Time) {
	metrics.MeasureSince(name, start)
}

// WriteSummary prints counters and timer samples collected by sink, one per
// line, sorted by key. Timer values are in milliseconds.
func WriteSummary(w io.Writer, sink *metrics.InmemSink) error {
	counters := map[string]float64{}
	type timer struct {
		count    int
		sum, max float64
	}
	timers := map[string]*timer{}
	for _, interval := range sink.Data() {
		for _, v := range interval.Counters {
			counters[v.Name] += v.Sum
		}
		for _, v := range interval.Samples {
			t, ok := timers[v.Name]
			if !ok {
				t = &timer{}
				timers[v.Name] = t
			}
			t.count += v.Count
			t.sum += v.Sum
			if v.Max > t.max {
				t.max = v.Max
			}
		}
	}
	for _, name := range sortedKeys(counters) {
		if _, err := fmt.Fprintf(w, "%-32s count=%g\n", name, counters[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(timers) {
		t := timers[name]
		mean := 0.0
		if t.count > 0 {
			mean = t.sum / float64(t.count)
		}
		if _, err := fmt.Fprintf(w, "%-32s n=%d mean=%.2fms max=%.2fms\n", name, t.count, mean, t.max); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
