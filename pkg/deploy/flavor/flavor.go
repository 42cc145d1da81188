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

// Package flavor validates a model's packaging format against the set of
// flavors the deployment table can hold.
package flavor

import (
	deployerrors "github.com/avflor/mlflow-deploy/pkg/deploy/errors"
	"github.com/avflor/mlflow-deploy/pkg/deploy/model"
)

// Supported lists the deployment flavors, in auto-detect preference order.
var Supported = []string{"onnx", "sklearn"}

// IsSupported reports whether name is a supported deployment flavor.
func IsSupported(name string) bool {
	for _, s := range Supported {
		if s == name {
			return true
		}
	}
	return false
}

// Validate decides the flavor a manifest will be deployed as. With an explicit
// request the flavor must be supported and declared by the manifest. With an
// empty request the manifest's flavors are scanned in declaration order and
// the first supported one wins. Validate does no I/O.
func Validate(m *model.Manifest, requested string) (string, error) {
	if requested != "" {
		if !IsSupported(requested) {
			return "", deployerrors.New(deployerrors.UnsupportedFlavor,
				"the flavor %q is not supported for deployment; supported flavors: %v",
				requested, Supported)
		}
		if _, ok := m.Flavors.Get(requested); !ok {
			return "", deployerrors.New(deployerrors.FlavorNotPresent,
				"the model does not contain the flavor %q; found flavors: %v",
				requested, m.Flavors.Names())
		}
		return requested, nil
	}

	for _, name := range m.Flavors.Names() {
		if IsSupported(name) {
			return name, nil
		}
	}
	return "", deployerrors.New(deployerrors.UnsupportedFlavor,
		"the model flavors %v are not supported for deployment; supported flavors: %v",
		m.Flavors.Names(), Supported)
}
