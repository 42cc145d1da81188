// Copyright 2024 The mlflow-deploy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package test holds database helpers for package tests.
package test

import (
	"os"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Inject sqlite error checking.
	_ "github.com/avflor/mlflow-deploy/pkg/deploy/errors/sqlite"
)

// NewDB sets up a temporary file-backed database for testing and returns its
// path alongside the handle so tests can reopen it as a URI.
func NewDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "deploydb")
	if err != nil {
		t.Fatalf("failed to create temp file for db: %v", err)
	}
	t.Log("test database: ", tmpfile.Name())
	t.Cleanup(func() {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
	})

	// Verbose SQL logging through the test logger; shown when a test fails.
	gdb, err := gorm.Open(sqlite.Open(tmpfile.Name()), &gorm.Config{
		Logger: logger.New(&testLogger{t: t}, logger.Config{
			LogLevel: logger.Info,
			Colorful: true,
		}),
	})
	if err != nil {
		t.Fatalf("failed to open the test db: %v", err)
	}

	return gdb, tmpfile.Name()
}

type testLogger struct {
	t *testing.T
}

func (t *testLogger) Printf(format string, args ...any) {
	t.t.Logf(format, args...)
}
