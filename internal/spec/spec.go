package spec

type StdoutSink struct {
	Pretty        bool `yaml:"pretty"`
	ValueMaxBytes int  `yaml:"value_max_bytes"`
}

type KafkaSink struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Acks    int16    `yaml:"required_acks"` // 0,1,-1
	Version string   `yaml:"version"`
}

type sinkConfigs struct {
	Kafka  KafkaSink  `yaml:"kafka"`
	Stdout StdoutSink `yaml:"stdout"`
}

type Target struct {
	// Version is the schema version being synced towards.
	Version string `yaml:"version"`
	// FromVersion, when set, chains every transformer in (FromVersion, Version].
	FromVersion          string `yaml:"from_version"`
	LowerCaseIdentifiers bool   `yaml:"lower_case_identifiers"`
	// DSN of a PostgreSQL target; when set the case convention is probed.
	DSN string `yaml:"dsn"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Source struct {
		Kind   string `yaml:"kind"`
		Driver string `yaml:"driver"`
		Config string `yaml:"config"`
	} `yaml:"source"`

	Target Target `yaml:"target"`

	Policy struct {
		Config string `yaml:"config"`
	} `yaml:"policy"`

	Transform struct {
		OnDecodeError string `yaml:"on_decode_error"` // abort | skip_row
	} `yaml:"transform"`

	Sinks       []string    `yaml:"sinks"`
	SinkConfigs sinkConfigs `yaml:"sink_configs"`
}
