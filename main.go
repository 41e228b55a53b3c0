package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment from .env files for local development.
	// Prefer the Rails app .env if present.
	_ = godotenv.Load("../benchmark_ui/.env")
	_ = godotenv.Load(".env")

	var testRunID int64
	var service bool
	var logLevel string
	flag.Int64Var(&testRunID, "test-run-id", 0, "ID of test_runs row to attach averages to (omit to run service)")
	flag.BoolVar(&service, "service", false, "Run as background service listening to Sidekiq queue")
	flag.StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	flag.Parse()

	if err := configureLogging(logLevel); err != nil {
		logrus.Fatalf("logging config error: %v", err)
	}

	dsn, err := buildDSNFromEnv()
	if err != nil {
		logrus.Fatalf("database config error: %v", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logrus.Fatalf("connect error: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logrus.Fatalf("database not reachable: %v", err)
	}

	if service || (testRunID == 0 && flag.NArg() == 0) {
		runService(db)
		return
	}

	if testRunID == 0 && flag.NArg() > 0 {
		var v int64
		if _, err := fmt.Sscan(flag.Arg(0), &v); err == nil {
			testRunID = v
		}
	}
	if testRunID == 0 {
		logrus.Fatal("missing --test-run-id <id> argument or --service")
	}

	if err := processTestRun(db, testRunID); err != nil {
		logrus.WithField("test_run", testRunID).Fatal(err)
	}
}

func configureLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
