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

package db

import (
	"context"

	"gorm.io/gorm"

	deployerrors "github.com/avflor/mlflow-deploy/pkg/deploy/errors"
)

// TxFunc is a unit of work executed inside a managed transaction.
type TxFunc func(tx *gorm.DB) error

// TransactionManager scopes units of work to exception-safe transactions.
type TransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager wraps an open gorm handle.
func NewTransactionManager(gdb *gorm.DB) *TransactionManager {
	return &TransactionManager{db: gdb}
}

// WithTransaction runs fn inside a single transaction. Exactly one of commit
// or rollback happens per call:
//
//   - fn returns nil: the transaction commits. A failed commit surfaces as a
//     Commit error and the store's abort-on-failure leaves the transaction
//     rolled back.
//   - fn returns a classified error: the transaction rolls back and the error
//     propagates unchanged.
//   - fn returns any other error: the transaction rolls back and the error
//     propagates wrapped as Internal, keeping the original as its cause.
//
// The connection is released on every exit path, panics included.
func (m *TransactionManager) WithTransaction(ctx context.Context, fn TxFunc) error {
	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return deployerrors.Wrap(deployerrors.Internal, tx.Error, "beginning transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		if deployerrors.Classified(err) {
			return err
		}
		return deployerrors.Wrap(deployerrors.Internal, err, "deployment transaction failed")
	}

	if err := tx.Commit().Error; err != nil {
		return deployerrors.Wrap(deployerrors.Commit, err, "committing deployment transaction")
	}
	return nil
}
