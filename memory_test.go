package main

import (
	"sync"
	"testing"
	"time"

	"averages_worker/average"
)

func TestMeasurePeakResidentMemoryTracksPeak(t *testing.T) {
	readings := []float64{100, 180, 120}
	var mu sync.Mutex

	rssBytesFunc = func() float64 {
		mu.Lock()
		defer mu.Unlock()
		if len(readings) == 0 {
			return 120
		}
		v := readings[0]
		readings = readings[1:]
		return v
	}
	t.Cleanup(func() { rssBytesFunc = rssBytes })

	want := average.GetAverages([]float64{1, 2, 3})
	averages, duration, peak := measurePeakResidentMemory(func() (average.Averages, float64) {
		time.Sleep(3 * samplingInterval)
		return want, 0.25
	})

	if duration != 0.25 {
		t.Fatalf("unexpected duration: %v", duration)
	}
	if peak != 180 {
		t.Fatalf("expected peak 180, got %v", peak)
	}
	if averages.Mean != want.Mean || averages.Median != want.Median {
		t.Fatalf("unexpected averages: %#v", averages)
	}
}

func TestMeasurePeakResidentMemoryHandlesZeroBaseline(t *testing.T) {
	rssBytesFunc = func() float64 { return 0 }
	t.Cleanup(func() { rssBytesFunc = rssBytes })

	_, _, peak := measurePeakResidentMemory(func() (average.Averages, float64) {
		return average.Averages{}, 0.0
	})

	if peak != 0 {
		t.Fatalf("expected peak 0, got %v", peak)
	}
}

func TestParseStatm(t *testing.T) {
	if got := parseStatm("1000 250 30 4 0 60 0", 4096); got != 250*4096 {
		t.Fatalf("unexpected rss: %v", got)
	}
	if got := parseStatm("1000", 4096); got != 0 {
		t.Fatalf("expected 0 for short statm, got %v", got)
	}
}

func TestParseKilobytes(t *testing.T) {
	if got := parseKilobytes("\t  2048 kB"); got != 2048*1024 {
		t.Fatalf("unexpected bytes: %v", got)
	}
	if got := parseKilobytes(""); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := parseKilobytes("abc"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
