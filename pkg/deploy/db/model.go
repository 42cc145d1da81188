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

// Package db defines the database model and write path for deployed models.
package db

import (
	"fmt"
	"time"
)

// DeployedModel is the database row of a deployed model artifact. One row is
// written per deployment; rows are never updated afterwards.
type DeployedModel struct {
	// ModelID is assigned by the store on insert, never by the caller.
	ModelID int64 `gorm:"column:model_id;primaryKey;autoIncrement;"`

	ModelName    string `gorm:"column:model_name;size:256;not null;"`
	ModelVersion string `gorm:"column:model_version;size:50;not null;"`

	ModelFramework        string `gorm:"column:model_framework;size:50;not null;"`
	ModelFrameworkVersion string `gorm:"column:model_framework_version;size:50;not null;"`

	// Model is the artifact payload, stored opaque.
	Model []byte `gorm:"column:model;not null;"`

	ModelCreationTime   *time.Time `gorm:"column:model_creation_time;"`
	ModelDeploymentTime time.Time  `gorm:"column:model_deployment_time;not null;"`

	DeployedBy       *int64 `gorm:"column:deployed_by;"`
	ModelDescription string `gorm:"column:model_description;size:1024;"`
	RunID            string `gorm:"column:run_id;size:100;"`
}

func (m DeployedModel) String() string {
	return fmt.Sprintf("(%d, %s, %s, %s, %s)", m.ModelID, m.ModelName,
		m.ModelVersion, m.ModelFramework, m.ModelFrameworkVersion)
}
