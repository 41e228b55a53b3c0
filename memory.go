package main

import (
	"bufio"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"averages_worker/average"
)

const samplingInterval = 10 * time.Millisecond

var rssBytesFunc = rssBytes

// measurePeakResidentMemory runs fn while polling RSS and returns fn's
// averages, its reported duration and the highest RSS seen.
func measurePeakResidentMemory(fn func() (average.Averages, float64)) (average.Averages, float64, float64) {
	baseline := rssBytesFunc()

	var mu sync.Mutex
	peak := baseline

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(samplingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				current := rssBytesFunc()
				mu.Lock()
				if current > peak {
					peak = current
				}
				mu.Unlock()
			case <-stop:
				return
			}
		}
	}()

	averages, duration := fn()
	close(stop)
	wg.Wait()

	if final := rssBytesFunc(); final > peak {
		peak = final
	}
	return averages, duration, peak
}

func rssBytes() float64 {
	if runtime.GOOS == "linux" {
		if v := rssFromProcStatm(); v > 0 {
			return v
		}
		if v := rssFromProcStatus(); v > 0 {
			return v
		}
	}
	return rssFromPS()
}

func rssFromProcStatm() float64 {
	data, err := os.ReadFile("/proc/self/statm")
	if err != nil {
		return 0
	}
	return parseStatm(string(data), os.Getpagesize())
}

// parseStatm converts the resident page count (second field) to bytes.
func parseStatm(data string, pageSize int) float64 {
	fields := strings.Fields(data)
	if len(fields) < 2 {
		return 0
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return float64(pages * uint64(pageSize))
}

func rssFromProcStatus() float64 {
	file, err := os.Open("/proc/self/status")
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			return parseKilobytes(strings.TrimPrefix(line, "VmRSS:"))
		}
	}
	return 0
}

func rssFromPS() float64 {
	pid := os.Getpid()
	output, err := exec.Command("ps", "-o", "rss=", "-p", strconv.Itoa(pid)).Output()
	if err != nil {
		return 0
	}
	return parseKilobytes(string(output))
}

// parseKilobytes reads a leading kB count such as "  2048 kB".
func parseKilobytes(s string) float64 {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return 0
	}
	kb, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0
	}
	return float64(kb * 1024)
}
