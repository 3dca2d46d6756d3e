package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"dimos/internal/questions"
)

// Config is the persisted per-user record. There is no version field:
// unknown keys are ignored on read and missing keys keep their zero value.
type Config struct {
	InitCompleted bool              `toml:"init_completed" yaml:"init_completed" json:"init_completed"`
	Answers       map[string]string `toml:"answers,omitempty" yaml:"answers,omitempty" json:"answers,omitempty"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{}
}

// Answer returns the stored answer for k.
func (c Config) Answer(k questions.Key) (string, bool) {
	v, ok := c.Answers[k.Address()]
	return v, ok
}

// SetAnswer stores v under k's address.
func (c *Config) SetAnswer(k questions.Key, v string) {
	if c.Answers == nil {
		c.Answers = make(map[string]string)
	}
	c.Answers[k.Address()] = v
}

// AnswerAddresses returns the stored addresses in sorted order.
func (c Config) AnswerAddresses() []string {
	keys := make([]string, 0, len(c.Answers))
	for k := range c.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether two records hold the same values. A nil and an
// empty answers map compare equal.
func (c Config) Equal(other Config) bool {
	if c.InitCompleted != other.InitCompleted || len(c.Answers) != len(other.Answers) {
		return false
	}
	for k, v := range c.Answers {
		if ov, ok := other.Answers[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Marshal returns the TOML encoding written to disk.
func (c Config) Marshal() ([]byte, error) {
	buf, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

// Unmarshal decodes a TOML document on top of the defaults.
func Unmarshal(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MarshalYAMLDoc renders the record for `config show`.
func (c Config) MarshalYAMLDoc() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

// MarshalJSONDoc renders the record for `config show --json`.
func (c Config) MarshalJSONDoc() ([]byte, error) {
	buf, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return append(buf, '\n'), nil
}
