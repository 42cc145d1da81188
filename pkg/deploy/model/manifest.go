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

// Package model reads a packaged model's self-describing manifest.
package model

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v2"

	deployerrors "github.com/avflor/mlflow-deploy/pkg/deploy/errors"
)

// ManifestFileName is the manifest's well-known name at the artifact root.
const ManifestFileName = "MLmodel"

// Manifest is the artifact's metadata file listing the flavors the model is
// packaged in.
type Manifest struct {
	ArtifactPath   string  `yaml:"artifact_path"`
	RunID          string  `yaml:"run_id"`
	UTCTimeCreated string  `yaml:"utc_time_created"`
	Flavors        Flavors `yaml:"flavors"`
}

// Load reads the manifest from the root of a resolved artifact directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	raw, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, deployerrors.New(deployerrors.ManifestNotFound,
			"failed to find %s configuration within the model's root directory %q",
			ManifestFileName, dir)
	}
	if err != nil {
		return nil, deployerrors.Wrap(deployerrors.Internal, err,
			"reading %s configuration", ManifestFileName)
	}

	m := &Manifest{}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, deployerrors.Wrap(deployerrors.MalformedFlavorConfig, err,
			"parsing %s configuration at %q", ManifestFileName, path)
	}
	return m, nil
}

// Flavors is the manifest's flavor section. Declaration order is preserved;
// auto-detection scans flavors in the order the manifest lists them.
type Flavors struct {
	names   []string
	configs map[string]Config
}

// UnmarshalYAML decodes the flavor mapping through a yaml.MapSlice so the
// manifest's key order survives.
func (f *Flavors) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw yaml.MapSlice
	if err := unmarshal(&raw); err != nil {
		return err
	}

	f.names = nil
	f.configs = make(map[string]Config, len(raw))
	for _, item := range raw {
		name, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("flavor name %v is not a string", item.Key)
		}
		cfg := make(Config)
		if items, ok := item.Value.(yaml.MapSlice); ok {
			for _, kv := range items {
				key, ok := kv.Key.(string)
				if !ok {
					return fmt.Errorf("flavor %q config key %v is not a string", name, kv.Key)
				}
				cfg[key] = kv.Value
			}
		}
		f.names = append(f.names, name)
		f.configs[name] = cfg
	}
	return nil
}

// Names returns the flavor names in manifest order.
func (f Flavors) Names() []string {
	return f.names
}

// Get returns the config declared for a flavor.
func (f Flavors) Get(name string) (Config, bool) {
	cfg, ok := f.configs[name]
	return cfg, ok
}

// Config is the per-flavor configuration mapping.
type Config map[string]interface{}

// Data returns the flavor's relative payload path.
func (c Config) Data() (string, bool) {
	return c.str("data")
}

// Version returns the value of the flavor's "<flavor>_version" key.
func (c Config) Version(flavorName string) (string, bool) {
	return c.str(flavorName + "_version")
}

func (c Config) str(key string) (string, bool) {
	v, ok := c[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	}
	return fmt.Sprintf("%v", v), true
}
