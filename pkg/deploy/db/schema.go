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
	"sync"

	"gorm.io/gorm"

	deployerrors "github.com/avflor/mlflow-deploy/pkg/deploy/errors"
)

// Registry hands out the row schema for a table name, creating the backing
// table on first use. Schemas are memoized by name for the life of the
// process; a table name uniquely determines its column set.
type Registry struct {
	mu      sync.Mutex
	schemas map[string]*TableSchema
}

// NewRegistry returns an empty schema registry. Construct one at startup and
// pass it to whatever needs schemas; there is no package-level instance.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*TableSchema)}
}

// GetOrCreate returns the schema bound to tableName, creating the physical
// table through gdb if it does not exist yet. Only the schema descriptor is
// memoized; the idempotent create-if-absent check runs against every store
// handed in, since successive deployments may target different databases. A
// pre-existing table is trusted as-is: no column-level verification is done,
// and a mismatched table will surface as an insert-time error instead. Losing
// a create race to a concurrent deployer counts as success.
func (r *Registry) GetOrCreate(gdb *gorm.DB, tableName string) (*TableSchema, error) {
	if tableName == "" {
		return nil, deployerrors.New(deployerrors.InvalidArgument, "table name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m := gdb.Table(tableName).Migrator()
	if !m.HasTable(tableName) {
		if err := m.CreateTable(&DeployedModel{}); err != nil && !deployerrors.IsAlreadyExists(err) {
			return nil, deployerrors.Wrap(deployerrors.SchemaCreation, err,
				"creating table %q", tableName)
		}
	}

	if s, ok := r.schemas[tableName]; ok {
		return s, nil
	}
	s := &TableSchema{name: tableName}
	r.schemas[tableName] = s
	return s, nil
}

// TableSchema binds the DeployedModel row layout to a physical table name.
type TableSchema struct {
	name string
}

// Name returns the physical table name.
func (s *TableSchema) Name() string {
	return s.name
}

// Insert writes one row through tx. The store assigns ModelID and gorm
// backfills it on the record.
func (s *TableSchema) Insert(tx *gorm.DB, rec *DeployedModel) error {
	return tx.Table(s.name).Create(rec).Error
}
