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

// Package metadata assembles the database row for a validated model artifact.
package metadata

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/avflor/mlflow-deploy/pkg/deploy/db"
	deployerrors "github.com/avflor/mlflow-deploy/pkg/deploy/errors"
	"github.com/avflor/mlflow-deploy/pkg/deploy/model"
	"github.com/avflor/mlflow-deploy/pkg/deploy/registry"
)

// Collect builds the row draft for a resolved artifact and its validated
// flavor. The payload is read fully into memory as an opaque blob. ModelID
// and ModelDeploymentTime stay unset; the insert step owns both.
func Collect(art *registry.Artifact, m *model.Manifest, flavorName string, principal int64) (*db.DeployedModel, error) {
	cfg, ok := m.Flavors.Get(flavorName)
	if !ok {
		return nil, deployerrors.New(deployerrors.FlavorNotPresent,
			"the model does not contain the flavor %q; found flavors: %v",
			flavorName, m.Flavors.Names())
	}

	dataRel, ok := cfg.Data()
	if !ok {
		return nil, deployerrors.New(deployerrors.MalformedFlavorConfig,
			"flavor %q declares no data path", flavorName)
	}
	dataPath := filepath.Join(art.Path, dataRel)
	payload, err := os.ReadFile(dataPath)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, deployerrors.New(deployerrors.MissingArtifactData,
			"flavor %q declares data path %q but %q does not exist",
			flavorName, dataRel, dataPath)
	}
	if err != nil {
		return nil, deployerrors.Wrap(deployerrors.Internal, err,
			"reading artifact payload %q", dataPath)
	}

	version, ok := cfg.Version(flavorName)
	if !ok {
		return nil, deployerrors.New(deployerrors.MalformedFlavorConfig,
			"flavor %q config has no %q key", flavorName, flavorName+"_version")
	}

	rec := &db.DeployedModel{
		ModelName:             art.Version.Name,
		ModelVersion:          art.Version.Version,
		ModelFramework:        flavorName,
		ModelFrameworkVersion: version,
		Model:                 payload,
		DeployedBy:            &principal,
		ModelDescription:      art.Version.Description,
		RunID:                 runID(art, m),
	}
	if t, ok := art.Version.CreationTime(); ok {
		rec.ModelCreationTime = &t
	}
	return rec, nil
}

// runID prefers the registry's provenance link, falling back to the one the
// manifest itself records.
func runID(art *registry.Artifact, m *model.Manifest) string {
	if art.Version.RunID != "" {
		return art.Version.RunID
	}
	return m.RunID
}
