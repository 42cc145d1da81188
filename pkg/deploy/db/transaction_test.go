package db

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	deployerrors "github.com/avflor/mlflow-deploy/pkg/deploy/errors"
)

// newMockDB pairs a gorm handle with a sqlmock driver so transaction
// boundaries can be asserted at the wire level.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() = %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open() = %v", err)
	}
	return gdb, mock
}

func TestWithTransactionCommits(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ran := false
	err := NewTransactionManager(gdb).WithTransaction(context.Background(), func(tx *gorm.DB) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithTransaction() = %v", err)
	}
	if !ran {
		t.Error("unit of work did not run")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction boundaries: %v", err)
	}
}

func TestWithTransactionClassifiedErrorPassesThrough(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	want := deployerrors.New(deployerrors.MissingArtifactData, "no payload")
	err := NewTransactionManager(gdb).WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return want
	})
	if err != want {
		t.Fatalf("WithTransaction() = %v, want the unit of work's error unchanged", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction boundaries: %v", err)
	}
}

func TestWithTransactionWrapsUnclassifiedError(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	cause := stderrors.New("boom")
	err := NewTransactionManager(gdb).WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return cause
	})
	if kind, ok := deployerrors.KindOf(err); !ok || kind != deployerrors.Internal {
		t.Fatalf("WithTransaction() = %v, want Internal", err)
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction boundaries: %v", err)
	}
}

func TestWithTransactionCommitFailure(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(stderrors.New("server closed the connection"))

	err := NewTransactionManager(gdb).WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return nil
	})
	if kind, ok := deployerrors.KindOf(err); !ok || kind != deployerrors.Commit {
		t.Fatalf("WithTransaction() = %v, want Commit", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction boundaries: %v", err)
	}
}

func TestWithTransactionBeginFailure(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(stderrors.New("too many clients"))

	err := NewTransactionManager(gdb).WithTransaction(context.Background(), func(tx *gorm.DB) error {
		t.Error("unit of work ran without a transaction")
		return nil
	})
	if kind, ok := deployerrors.KindOf(err); !ok || kind != deployerrors.Internal {
		t.Fatalf("WithTransaction() = %v, want Internal", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction boundaries: %v", err)
	}
}

func TestWithTransactionRollsBackOnPanic(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("panic did not propagate")
			}
		}()
		_ = NewTransactionManager(gdb).WithTransaction(context.Background(), func(tx *gorm.DB) error {
			panic("unit of work went sideways")
		})
	}()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction boundaries: %v", err)
	}
}
