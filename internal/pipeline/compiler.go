package pipeline

import (
	"context"
	"fmt"

	"datasync/internal/config"
	"datasync/internal/policy"
	"datasync/internal/spec"
	"datasync/internal/target"
	"datasync/internal/transform"
	"datasync/internal/transform/builtin"
	"datasync/sink"
	"datasync/sink/kafka"
	"datasync/sink/stdout"
	kafkasrc "datasync/source/kafka"
)

func Compile(ctx context.Context, path string) (*Runner, error) {
	cfg, err := config.LoadPipelineSpec(path)
	if err != nil {
		return nil, err
	}
	r, err := Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := attachSource(cfg, r); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// Build wires policy, registry, target probe and sinks from a parsed spec.
// The source is left unset.
func Build(ctx context.Context, cfg spec.File) (*Runner, error) {
	pc, err := config.LoadPolicyConfig(cfg.Policy.Config)
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	store, err := policy.NewStore(pc)
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	reg, err := builtin.Registry(store, pc.CacheManager)
	if err != nil {
		return nil, err
	}
	if err := checkTarget(reg, cfg.Target); err != nil {
		return nil, err
	}
	decode, err := transform.ParseDecodePolicy(cfg.Transform.OnDecodeError)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithDecodePolicy(decode)}
	if cfg.Target.FromVersion != "" {
		opts = append(opts, WithUpgradeFrom(cfg.Target.FromVersion))
	}
	p := New(reg, cfg.Target.Version, opts...)

	var cr target.CaseResolver = target.Static(cfg.Target.LowerCaseIdentifiers)
	var closers []func() error
	if cfg.Target.DSN != "" {
		pool, err := target.Connect(ctx, cfg.Target.DSN)
		if err != nil {
			return nil, err
		}
		cr = target.NewPostgres(pool)
		closers = append(closers, func() error { pool.Close(); return nil })
	}

	r := NewRunner(p, cr)
	for _, fn := range closers {
		r.OnClose(fn)
	}
	if err := attachSinks(cfg, r); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// checkTarget rejects target versions that would leave every batch passing
// through without derived columns.
func checkTarget(reg *transform.Registry, t spec.Target) error {
	if !transform.ValidVersion(t.Version) {
		return fmt.Errorf("target.version %q is not a semantic version", t.Version)
	}
	if t.FromVersion == "" {
		if !reg.HasVersion(t.Version) {
			return fmt.Errorf("target.version %s: no transformer registered (known: %v)", t.Version, reg.Versions())
		}
		return nil
	}
	if !transform.ValidVersion(t.FromVersion) {
		return fmt.Errorf("target.from_version %q is not a semantic version", t.FromVersion)
	}
	if transform.CompareVersions(t.FromVersion, t.Version) >= 0 {
		return fmt.Errorf("target.from_version %s must precede target.version %s", t.FromVersion, t.Version)
	}
	for _, v := range reg.Versions() {
		if transform.CompareVersions(v, t.FromVersion) > 0 && transform.CompareVersions(v, t.Version) <= 0 {
			return nil
		}
	}
	return fmt.Errorf("no transformer registered between %s and %s", t.FromVersion, t.Version)
}

func attachSource(cfg spec.File, r *Runner) error {
	if cfg.Source.Kind != "kafka" {
		return fmt.Errorf("unsupported source %q", cfg.Source.Kind)
	}
	kc, err := config.LoadKafkaConfig(cfg.Source.Config)
	if err != nil {
		return err
	}
	src, err := kafkasrc.NewAdapter(cfg.Source.Driver)
	if err != nil {
		return err
	}
	if err = src.Configure(kc); err != nil {
		return err
	}
	r.SetSource(src)
	return nil
}

func attachSinks(cfg spec.File, r *Runner) error {
	for _, name := range cfg.Sinks {
		sDrv, err := sink.NewAdapter(name)
		if err != nil {
			return err
		}

		switch name {
		case "stdout":
			err = sDrv.Configure(stdout.Config{
				Pretty:        cfg.SinkConfigs.Stdout.Pretty,
				ValueMaxBytes: cfg.SinkConfigs.Stdout.ValueMaxBytes,
			})
		case "kafka":
			kc := cfg.SinkConfigs.Kafka
			err = sDrv.Configure(kafka.Config{
				Brokers: kc.Brokers,
				Topic:   kc.Topic,
				Acks:    kc.Acks,
				Version: kc.Version,
			})
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			return err
		}
		r.AddSink(sDrv)
	}
	return nil
}
