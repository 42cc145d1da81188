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

// Package registry resolves model references to local artifacts and their
// registry metadata.
package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	deployerrors "github.com/avflor/mlflow-deploy/pkg/deploy/errors"
)

// RefScheme prefixes registry model references, e.g. models:/fraud-detector/3.
const RefScheme = "models:"

// ModelVersion is the provenance metadata the registry tracks for one version
// of a model.
type ModelVersion struct {
	Name        string
	Version     string
	Description string
	RunID       string

	// CreationTimestamp is in milliseconds since the epoch, zero when the
	// registry does not report one.
	CreationTimestamp int64
}

// CreationTime converts the registry's millisecond timestamp. ok is false when
// the registry reported none.
func (v ModelVersion) CreationTime() (t time.Time, ok bool) {
	if v.CreationTimestamp == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(v.CreationTimestamp), true
}

// Artifact is a model version resolved to the local filesystem.
type Artifact struct {
	// Path is the artifact's root directory, holding the manifest and the
	// flavor payloads.
	Path string

	Version ModelVersion
}

// Resolver fetches a model reference to a local artifact. Implementations may
// hit the network; the pipeline treats Resolve as a blocking call.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (*Artifact, error)
}

// ParseRef splits a models:/<name>/<version> reference.
func ParseRef(ref string) (name, version string, err error) {
	rest, ok := strings.CutPrefix(ref, RefScheme+"/")
	if !ok {
		return "", "", deployerrors.New(deployerrors.InvalidArgument,
			"model reference %q must have the form %s/<name>/<version>", ref, RefScheme)
	}
	name, version, ok = strings.Cut(rest, "/")
	if !ok || name == "" || version == "" || strings.Contains(version, "/") {
		return "", "", deployerrors.New(deployerrors.InvalidArgument,
			"model reference %q must have the form %s/<name>/<version>", ref, RefScheme)
	}
	return name, version, nil
}

// DirResolver maps model references onto a local registry layout of
// <root>/<name>/<version>/. It stands in for a remote registry client; the
// version's creation time is taken from the artifact directory.
type DirResolver struct {
	Root string
}

var _ Resolver = (*DirResolver)(nil)

// Resolve locates the artifact directory for ref under the registry root.
func (r *DirResolver) Resolve(_ context.Context, ref string) (*Artifact, error) {
	name, version, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(r.Root, name, version)
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, deployerrors.New(deployerrors.InvalidArgument,
			"model %q version %q not found under registry root %q", name, version, r.Root)
	}

	return &Artifact{
		Path: dir,
		Version: ModelVersion{
			Name:              name,
			Version:           version,
			CreationTimestamp: fi.ModTime().UnixMilli(),
		},
	}, nil
}
