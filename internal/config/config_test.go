package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tarungka/flowplan/plan"
)

func TestLoadAndApplyPlanAttributes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	content := "CONTAINERS_MAX_COUNT: 4\nDEBUG: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ko, err := Load([]string{path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p := plan.NewPlan()
	_ = ApplyPlanAttributes(ko, p)

	v, ok := plan.GetAttr(p.Attributes(), plan.ContainersMaxCount)
	if !ok || v != 4 {
		t.Fatalf("ContainersMaxCount = %v, %v, want 4, true", v, ok)
	}
	debug, ok := plan.GetAttr(p.Attributes(), plan.Debug)
	if !ok || !debug {
		t.Fatalf("Debug = %v, %v, want true, true", debug, ok)
	}
}

// TestApplyPlanAttributesFallsBackToCodecForNonNativeYAMLTypes covers a
// key whose Go type (time.Duration) has no native YAML representation:
// koanf/yaml.v3 hands ApplyPlanAttributes a plain string, which must be
// decoded through the key's registered codec rather than rejected as a
// type mismatch.
func TestApplyPlanAttributesFallsBackToCodecForNonNativeYAMLTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	content := "HDFS_TOKEN_LIFE_TIME: 48h\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ko, err := Load([]string{path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p := plan.NewPlan()
	if err := ApplyPlanAttributes(ko, p); err != nil {
		t.Fatalf("ApplyPlanAttributes: %v", err)
	}

	v, ok := plan.GetAttr(p.Attributes(), plan.HDFSTokenLifeTime)
	if !ok || v != 48*time.Hour {
		t.Fatalf("HDFSTokenLifeTime = %v, %v, want 48h, true", v, ok)
	}
}
