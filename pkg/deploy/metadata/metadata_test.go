package metadata

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	deployerrors "github.com/avflor/mlflow-deploy/pkg/deploy/errors"
	"github.com/avflor/mlflow-deploy/pkg/deploy/model"
	"github.com/avflor/mlflow-deploy/pkg/deploy/registry"
)

// artifact lays out an artifact directory with a manifest and a payload and
// returns it paired with fixed registry metadata.
func artifact(t *testing.T, manifestYAML string, payload []byte) (*registry.Artifact, *model.Manifest) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, model.ManifestFileName), []byte(manifestYAML), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	if payload != nil {
		if err := os.WriteFile(filepath.Join(dir, "model.onnx"), payload, 0o644); err != nil {
			t.Fatalf("writing payload: %v", err)
		}
	}
	m, err := model.Load(dir)
	if err != nil {
		t.Fatalf("loading manifest fixture: %v", err)
	}
	return &registry.Artifact{
		Path: dir,
		Version: registry.ModelVersion{
			Name:              "fraud-detector",
			Version:           "3",
			Description:       "gradient boosted fraud scores",
			RunID:             "0f3c1e2d",
			CreationTimestamp: 1698945261201,
		},
	}, m
}

const onnxManifest = `
flavors:
  onnx:
    data: model.onnx
    onnx_version: "1.10"
`

func TestCollect(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0xab}, 2048)
	art, m := artifact(t, onnxManifest, payload)

	rec, err := Collect(art, m, "onnx", 42)
	if err != nil {
		t.Fatalf("Collect() = %v", err)
	}

	if rec.ModelName != "fraud-detector" || rec.ModelVersion != "3" {
		t.Errorf("record identity = (%q, %q), want (fraud-detector, 3)", rec.ModelName, rec.ModelVersion)
	}
	if rec.ModelFramework != "onnx" || rec.ModelFrameworkVersion != "1.10" {
		t.Errorf("framework = (%q, %q), want (onnx, 1.10)", rec.ModelFramework, rec.ModelFrameworkVersion)
	}
	if !bytes.Equal(rec.Model, payload) {
		t.Errorf("payload mismatch: got %d bytes", len(rec.Model))
	}
	if rec.DeployedBy == nil || *rec.DeployedBy != 42 {
		t.Errorf("DeployedBy = %v, want 42", rec.DeployedBy)
	}
	if rec.RunID != "0f3c1e2d" {
		t.Errorf("RunID = %q, want 0f3c1e2d", rec.RunID)
	}
	want := time.UnixMilli(1698945261201)
	if rec.ModelCreationTime == nil || !rec.ModelCreationTime.Equal(want) {
		t.Errorf("ModelCreationTime = %v, want %v", rec.ModelCreationTime, want)
	}

	// The insert step owns these.
	if rec.ModelID != 0 {
		t.Errorf("ModelID = %d, want unset", rec.ModelID)
	}
	if !rec.ModelDeploymentTime.IsZero() {
		t.Errorf("ModelDeploymentTime = %v, want unset", rec.ModelDeploymentTime)
	}
}

func TestCollectNoCreationTime(t *testing.T) {
	t.Parallel()

	art, m := artifact(t, onnxManifest, []byte("payload"))
	art.Version.CreationTimestamp = 0

	rec, err := Collect(art, m, "onnx", 42)
	if err != nil {
		t.Fatalf("Collect() = %v", err)
	}
	if rec.ModelCreationTime != nil {
		t.Errorf("ModelCreationTime = %v, want nil", rec.ModelCreationTime)
	}
}

func TestCollectMissingData(t *testing.T) {
	t.Parallel()

	art, m := artifact(t, onnxManifest, nil)

	_, err := Collect(art, m, "onnx", 42)
	if kind, ok := deployerrors.KindOf(err); !ok || kind != deployerrors.MissingArtifactData {
		t.Fatalf("Collect() = %v, want MissingArtifactData", err)
	}
}

func TestCollectMissingVersionKey(t *testing.T) {
	t.Parallel()

	art, m := artifact(t, "flavors:\n  onnx:\n    data: model.onnx\n", []byte("payload"))

	_, err := Collect(art, m, "onnx", 42)
	if kind, ok := deployerrors.KindOf(err); !ok || kind != deployerrors.MalformedFlavorConfig {
		t.Fatalf("Collect() = %v, want MalformedFlavorConfig", err)
	}
}

func TestCollectManifestRunIDFallback(t *testing.T) {
	t.Parallel()

	art, m := artifact(t, "run_id: ff123\n"+onnxManifest, []byte("payload"))
	art.Version.RunID = ""

	rec, err := Collect(art, m, "onnx", 42)
	if err != nil {
		t.Fatalf("Collect() = %v", err)
	}
	if rec.RunID != "ff123" {
		t.Errorf("RunID = %q, want ff123", rec.RunID)
	}
}
