package recordcache

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the construction-time configuration of one Cache instance.
// It mirrors the shape consumed from application config files:
//
//	ttl: 300                # seconds; 0 or absent = no expiry
//	server: {host: localhost, port: 6379, db: 0}
//	indexes:
//	  - {name: by_email, fields: email}
//	  - {name: by_name, fields: [first, last]}
type Config struct {
	// TTL is the uniform expiry in seconds for primary entries, index
	// entries and negative markers. 0 means entries never expire.
	TTL int `json:"ttl,omitempty" yaml:"ttl,omitempty"`

	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	Indexes []IndexConfig `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

// ServerConfig identifies the backing server. Zero values mean
// localhost:6379, logical database 0.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
	DB   int    `json:"db,omitempty" yaml:"db,omitempty"`
}

// IndexConfig declares one secondary index.
type IndexConfig struct {
	Name   string    `json:"name" yaml:"name"`
	Fields FieldList `json:"fields" yaml:"fields"`
}

// FieldList is the ordered record fields of an index. In YAML and JSON it
// accepts either a single string or a list of strings; a scalar normalizes
// to a one-element list.
type FieldList []string

var _ yaml.Unmarshaler = (*FieldList)(nil)
var _ json.Unmarshaler = (*FieldList)(nil)

func (f *FieldList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return fmt.Errorf("fields must be a string or a list of strings: %w", err)
		}
		*f = FieldList{s}
		return nil
	case yaml.SequenceNode:
		var l []string
		if err := node.Decode(&l); err != nil {
			return fmt.Errorf("fields must be a string or a list of strings: %w", err)
		}
		*f = FieldList(l)
		return nil
	default:
		return fmt.Errorf("fields must be a string or a list of strings")
	}
}

func (f *FieldList) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("fields must be a string or a list of strings: %w", err)
		}
		*f = FieldList{s}
		return nil
	}
	var l []string
	if err := json.Unmarshal(b, &l); err != nil {
		return fmt.Errorf("fields must be a string or a list of strings: %w", err)
	}
	*f = FieldList(l)
	return nil
}

// Validate checks the whole configuration, including every index
// definition. Errors carry the path of the offending value.
func (c Config) Validate() error {
	if err := c.check(); err != nil {
		return err
	}
	_, err := newCatalog(c.Indexes)
	return err
}

// check validates everything except the index list, which newCatalog
// validates while building.
func (c Config) check() error {
	if c.TTL < 0 {
		return &ConfigError{Path: "ttl", Reason: "must be >= 0"}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return &ConfigError{Path: "server.port", Reason: "must be within 0-65535"}
	}
	if c.Server.DB < 0 {
		return &ConfigError{Path: "server.db", Reason: "must be >= 0"}
	}
	return nil
}

func (c Config) ttl() time.Duration {
	return time.Duration(c.TTL) * time.Second
}
