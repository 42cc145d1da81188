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

// Package deploy writes a previously trained, versioned model artifact into a
// row of a relational database table, so downstream consumers can retrieve
// the binary artifact and its provenance over plain SQL.
package deploy

import (
	"context"

	cw "github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/avflor/mlflow-deploy/pkg/deploy/db"
	deployerrors "github.com/avflor/mlflow-deploy/pkg/deploy/errors"
	"github.com/avflor/mlflow-deploy/pkg/deploy/flavor"
	"github.com/avflor/mlflow-deploy/pkg/deploy/metadata"
	"github.com/avflor/mlflow-deploy/pkg/deploy/model"
	"github.com/avflor/mlflow-deploy/pkg/deploy/registry"
)

// DefaultTableName is the table deployments land in unless overridden.
const DefaultTableName = "models"

// Deployer runs the deployment pipeline: resolve artifact, validate flavor,
// collect metadata, then open exactly one transaction to ensure the table and
// insert the row. Validation failures never touch the database.
type Deployer struct {
	resolver registry.Resolver
	schemas  *db.Registry
	clock    cw.Clock
	logger   *zap.SugaredLogger
	open     func(dbURI string) (*gorm.DB, error)
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithClock substitutes the clock used to stamp deployment times.
func WithClock(c cw.Clock) Option {
	return func(d *Deployer) { d.clock = c }
}

// WithLogger attaches a logger. The zero default is a nop logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Deployer) { d.logger = l }
}

// WithOpener substitutes how database URIs are opened. Tests use this to
// inject spy stores.
func WithOpener(open func(dbURI string) (*gorm.DB, error)) Option {
	return func(d *Deployer) { d.open = open }
}

// New builds a Deployer around an artifact resolver.
func New(resolver registry.Resolver, opts ...Option) *Deployer {
	d := &Deployer{
		resolver: resolver,
		schemas:  db.NewRegistry(),
		clock:    cw.NewRealClock(),
		logger:   zap.NewNop().Sugar(),
		open: func(dbURI string) (*gorm.DB, error) {
			return db.Open(dbURI, db.Options{})
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DeployOption adjusts a single deployment.
type DeployOption func(*deployRequest)

type deployRequest struct {
	flavor    string
	tableName string
}

// WithFlavor requests an explicit deployment flavor instead of auto-detecting
// one from the manifest.
func WithFlavor(name string) DeployOption {
	return func(r *deployRequest) { r.flavor = name }
}

// WithTableName overrides the target table.
func WithTableName(name string) DeployOption {
	return func(r *deployRequest) { r.tableName = name }
}

// Deploy resolves ref, validates its packaging, and inserts one row into the
// target table of the database at dbURI. principal is recorded as the
// deploying identity. The returned error always carries a classified kind.
func (d *Deployer) Deploy(ctx context.Context, ref, dbURI string, principal int64, opts ...DeployOption) error {
	req := &deployRequest{tableName: DefaultTableName}
	for _, opt := range opts {
		opt(req)
	}

	// Resolution, validation and collection run before any database
	// connection is made.
	art, err := d.resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	manifest, err := model.Load(art.Path)
	if err != nil {
		return err
	}
	flavorName, err := flavor.Validate(manifest, req.flavor)
	if err != nil {
		return err
	}
	rec, err := metadata.Collect(art, manifest, flavorName, principal)
	if err != nil {
		return err
	}

	gdb, err := d.open(dbURI)
	if err != nil {
		if deployerrors.Classified(err) {
			return err
		}
		return deployerrors.Wrap(deployerrors.Internal, err, "connecting to database")
	}
	defer db.Close(gdb) //nolint:errcheck

	schema, err := d.schemas.GetOrCreate(gdb, req.tableName)
	if err != nil {
		return err
	}

	txm := db.NewTransactionManager(gdb)
	err = txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		rec.ModelDeploymentTime = d.clock.Now()
		return schema.Insert(tx, rec)
	})
	if err != nil {
		return err
	}

	d.logger.Infow("deployed model",
		"model_id", rec.ModelID,
		"model", rec.ModelName,
		"version", rec.ModelVersion,
		"flavor", flavorName,
		"table", schema.Name(),
	)
	return nil
}

// Deploy is the package-level entry point, resolving refs against resolver in
// a one-shot Deployer.
func Deploy(ctx context.Context, resolver registry.Resolver, ref, dbURI string, principal int64, opts ...DeployOption) error {
	return New(resolver).Deploy(ctx, ref, dbURI, principal, opts...)
}
