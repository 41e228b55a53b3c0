package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"averages_worker/average"
)

// computeAverages times average.GetAverages and samples peak RSS while it runs.
func computeAverages(values []float64) (average.Averages, float64, float64) {
	return measurePeakResidentMemory(func() (average.Averages, float64) {
		start := time.Now()
		averages := average.GetAverages(values)
		return averages, time.Since(start).Seconds()
	})
}

func processTestRun(db *sql.DB, testRunID int64) error {
	if !existsTestRun(db, testRunID) {
		return fmt.Errorf("test_runs id %d not found", testRunID)
	}
	page, perPage, err := fetchTaskWindow(db, testRunID)
	if err != nil {
		return fmt.Errorf("fetch task window failed: %w", err)
	}
	values, err := fetchSamples(db, page, perPage)
	if err != nil {
		return fmt.Errorf("fetch samples failed: %w", err)
	}
	averages, elapsed, memBytes := computeAverages(values)
	if err := insertAverages(db, testRunID, averages, elapsed, memBytes); err != nil {
		return fmt.Errorf("insert average_result failed: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"test_run":     testRunID,
		"samples":      len(values),
		"mean":         averages.Mean,
		"median":       averages.Median,
		"modes":        len(averages.Mode),
		"duration":     fmt.Sprintf("%.6fs", elapsed),
		"memory_bytes": fmt.Sprintf("%.0f", memBytes),
	}).Info("processed test run")
	return nil
}

func dialRedis(cfg redisConfig) (net.Conn, *bufio.ReadWriter, error) {
	conn, err := net.DialTimeout("tcp", cfg.Host, 5*time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("redis connect failed: %w", err)
	}
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))

	if cfg.Password != "" {
		if err := writeCommand(rw, "AUTH", cfg.Password); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("redis auth failed: %w", err)
		}
		if err := readOK(rw); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("redis auth failed: %w", err)
		}
	}
	if cfg.DB != 0 {
		if err := writeCommand(rw, "SELECT", strconv.Itoa(cfg.DB)); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("redis select failed: %w", err)
		}
		if err := readOK(rw); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("redis select failed: %w", err)
		}
	}
	return conn, rw, nil
}

// consumeJobs pops jobs until the connection breaks, calling handle for each
// accepted test run id.
func consumeJobs(rw *bufio.ReadWriter, queue string, handle func(int64) error) {
	for {
		if err := writeCommand(rw, "BRPOP", queue, "5"); err != nil {
			logrus.WithError(err).Error("redis write error")
			return
		}
		_, payload, err := readBRPOP(rw)
		if err != nil {
			if err != ioEOF {
				logrus.WithError(err).Error("redis read error")
			}
			return
		}
		if payload == "" {
			continue // timeout
		}
		id, err := jobTestRunID(payload)
		if err != nil {
			logrus.WithField("payload", payload).Warn(err)
			continue
		}
		if err := handle(id); err != nil {
			logrus.WithError(err).WithField("test_run", id).Error("process error")
		}
	}
}

func runService(db *sql.DB) {
	cfg, err := parseRedisConfig(os.Getenv("REDIS_URL"), os.Getenv("WORKER_QUEUE"))
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.WithFields(logrus.Fields{"redis": cfg.Host, "queue": cfg.Queue}).Info("listening for jobs")

	for {
		conn, rw, err := dialRedis(cfg)
		if err != nil {
			logrus.WithError(err).Warn("retrying in 2s")
			time.Sleep(2 * time.Second)
			continue
		}
		consumeJobs(rw, cfg.Queue, func(id int64) error {
			return processTestRun(db, id)
		})
		conn.Close()
		time.Sleep(1 * time.Second)
	}
}
