package config

import (
	"datasync/internal/policy"
	kcfg "datasync/source/kafka"
)

// LoadKafkaConfig delegates to the Kafka source loader while centralizing
// loader entrypoints under internal/config.
func LoadKafkaConfig(path string) (kcfg.Config, error) {
	return kcfg.LoadConfig(path)
}

// LoadPolicyConfig delegates to the policy loader.
func LoadPolicyConfig(path string) (policy.Config, error) {
	return policy.LoadConfig(path)
}
