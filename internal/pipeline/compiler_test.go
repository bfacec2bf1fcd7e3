package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"datasync/internal/spec"
)

func TestBuild_StdoutSinkAndPolicy(t *testing.T) {
	dir := t.TempDir()
	pol := filepath.Join(dir, "policy.yml")
	if err := os.WriteFile(pol, []byte("tenants:\n  - {id: 5, domain: wso2.com}\n"), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	var cfg spec.File
	cfg.Target.Version = "5.7.0"
	cfg.Target.LowerCaseIdentifiers = true
	cfg.Policy.Config = pol
	cfg.Transform.OnDecodeError = "skip_row"
	cfg.Sinks = []string{"stdout"}

	r, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer r.Close()
	if len(r.sinks) != 1 {
		t.Fatalf("want 1 sink, got %d", len(r.sinks))
	}
	if r.pipeline.version != "5.7.0" {
		t.Fatalf("unexpected target version %q", r.pipeline.version)
	}
	if r.pipeline.decode != "skip_row" {
		t.Fatalf("decode policy not applied: %q", r.pipeline.decode)
	}
}

func TestBuild_Rejects(t *testing.T) {
	var badSink spec.File
	badSink.Target.Version = "5.6.0"
	badSink.Sinks = []string{"s3"}
	if _, err := Build(context.Background(), badSink); err == nil {
		t.Fatal("expected error for unknown sink")
	}

	var badPolicy spec.File
	badPolicy.Target.Version = "5.6.0"
	badPolicy.Transform.OnDecodeError = "ignore"
	if _, err := Build(context.Background(), badPolicy); err == nil {
		t.Fatal("expected error for unknown decode policy")
	}
}

func TestBuild_RejectsTargetVersions(t *testing.T) {
	cases := map[string]spec.Target{
		"typo":           {Version: "5.6.o"},
		"unregistered":   {Version: "9.9.9"},
		"bad from":       {Version: "5.7.0", FromVersion: "five"},
		"from after to":  {Version: "5.6.0", FromVersion: "5.7.0"},
		"from equals to": {Version: "5.7.0", FromVersion: "5.7.0"},
		"empty upgrade":  {Version: "5.6.5", FromVersion: "5.6.0"},
	}
	for name, tgt := range cases {
		var cfg spec.File
		cfg.Target = tgt
		cfg.Sinks = []string{"stdout"}
		if _, err := Build(context.Background(), cfg); err == nil {
			t.Errorf("%s: expected error for target %+v", name, tgt)
		}
	}
}

func TestBuild_AcceptsUpgradeRange(t *testing.T) {
	var cfg spec.File
	cfg.Target = spec.Target{Version: "5.8.0", FromVersion: "5.6.0"}
	cfg.Sinks = []string{"stdout"}
	r, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer r.Close()
	if got := r.pipeline.chain("IDN_AUTH_SESSION_STORE"); len(got) != 1 || got[0].Advice().Version != "5.7.0" {
		t.Fatalf("unexpected upgrade chain %v", got)
	}
}

func TestCompile_UnsupportedSource(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "pipeline.yml")
	body := "source: { kind: mysql }\ntarget: { version: 5.6.0 }\nsinks: [stdout]\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Compile(context.Background(), p); err == nil {
		t.Fatal("expected error for unsupported source kind")
	}
}
