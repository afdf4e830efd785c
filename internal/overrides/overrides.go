package overrides

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/quixio/tributary/internal/filesystems"
)

// Built-in defaults applied when neither an override file nor the compose
// deploy section says otherwise. These mirror what the Quix templates give
// a fresh application.
const (
	DefaultCPUMillis  = 200
	DefaultMemoryMB   = 500
	DefaultReplicas   = 1
	DefaultLanguage   = "docker"
	DefaultEntryPoint = "main.py"
)

// Config is the optional conversion override file (tributary.json or
// tributary.toml) placed next to the compose file
type Config struct {
	Defaults Defaults                   `json:"defaults,omitempty" toml:"defaults,omitempty"`
	Services map[string]ServiceOverride `json:"services,omitempty" toml:"services,omitempty"`
}

// Defaults replaces the built-in fallbacks for every service
type Defaults struct {
	CPUMillis  int    `json:"cpuMillis,omitempty" toml:"cpuMillis,omitempty"`
	MemoryMB   int    `json:"memoryMB,omitempty" toml:"memoryMB,omitempty"`
	Replicas   int    `json:"replicas,omitempty" toml:"replicas,omitempty"`
	Language   string `json:"language,omitempty" toml:"language,omitempty"`
	EntryPoint string `json:"entryPoint,omitempty" toml:"entryPoint,omitempty"`
}

// ServiceOverride adjusts the conversion of a single service
type ServiceOverride struct {
	CPUMillis  int    `json:"cpuMillis,omitempty" toml:"cpuMillis,omitempty"`
	MemoryMB   int    `json:"memoryMB,omitempty" toml:"memoryMB,omitempty"`
	Replicas   int    `json:"replicas,omitempty" toml:"replicas,omitempty"`
	Language   string `json:"language,omitempty" toml:"language,omitempty"`
	EntryPoint string `json:"entryPoint,omitempty" toml:"entryPoint,omitempty"`
	URLPrefix  string `json:"urlPrefix,omitempty" toml:"urlPrefix,omitempty"`

	// Public forces public access on or off regardless of declared ports
	Public *bool `json:"public,omitempty" toml:"public,omitempty"`

	// Skip excludes the service from conversion entirely
	Skip bool `json:"skip,omitempty" toml:"skip,omitempty"`
}

// Effective is the fully resolved settings for one service: built-in
// defaults, overlaid with the file's defaults section, overlaid with the
// per-service entry
type Effective struct {
	CPUMillis  int
	MemoryMB   int
	Replicas   int
	Language   string
	EntryPoint string
	URLPrefix  string
	Public     *bool
	Skip       bool

	// EntryPointPinned marks an entry point named by the service's own
	// override entry, which outranks dockerfile inference
	EntryPointPinned bool
}

// Candidate file names in lookup order
var configNames = []string{"tributary.json", "tributary.toml"}

// Load reads the override file from a project directory. A missing file
// is not an error: Load returns a nil Config and "" for the path.
func Load(filesystem filesystems.FileSystem, dir string) (*Config, string, error) {
	var path string
	for _, name := range configNames {
		found, err := filesystems.FindFile(filesystem, dir, name)
		if err != nil {
			return nil, "", err
		}
		if found != "" {
			path = found
			break
		}
	}
	if path == "" {
		return nil, "", nil
	}

	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var config Config
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &config)
	} else {
		err = toml.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &config, path, nil
}

// Resolve computes the effective settings for a service. Works on a nil
// receiver so callers without an override file skip the existence check.
func (c *Config) Resolve(service string) Effective {
	eff := Effective{
		CPUMillis:  DefaultCPUMillis,
		MemoryMB:   DefaultMemoryMB,
		Replicas:   DefaultReplicas,
		Language:   DefaultLanguage,
		EntryPoint: DefaultEntryPoint,
	}
	if c == nil {
		return eff
	}

	applyDefaults(&eff, c.Defaults)

	if override, ok := c.Services[service]; ok {
		applyService(&eff, override)
	}

	return eff
}

func applyDefaults(eff *Effective, d Defaults) {
	if d.CPUMillis > 0 {
		eff.CPUMillis = d.CPUMillis
	}
	if d.MemoryMB > 0 {
		eff.MemoryMB = d.MemoryMB
	}
	if d.Replicas > 0 {
		eff.Replicas = d.Replicas
	}
	if d.Language != "" {
		eff.Language = d.Language
	}
	if d.EntryPoint != "" {
		eff.EntryPoint = d.EntryPoint
	}
}

func applyService(eff *Effective, o ServiceOverride) {
	if o.CPUMillis > 0 {
		eff.CPUMillis = o.CPUMillis
	}
	if o.MemoryMB > 0 {
		eff.MemoryMB = o.MemoryMB
	}
	if o.Replicas > 0 {
		eff.Replicas = o.Replicas
	}
	if o.Language != "" {
		eff.Language = o.Language
	}
	if o.EntryPoint != "" {
		eff.EntryPoint = o.EntryPoint
		eff.EntryPointPinned = true
	}
	if o.URLPrefix != "" {
		eff.URLPrefix = o.URLPrefix
	}
	if o.Public != nil {
		eff.Public = o.Public
	}
	eff.Skip = o.Skip
}
