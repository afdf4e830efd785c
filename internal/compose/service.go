package compose

import (
	"sort"
	"strconv"
	"strings"

	composetypes "github.com/compose-spec/compose-go/v2/types"
)

// Service is the converter's view of one compose service. It keeps only
// the fields the Quix mapping consumes, with ports and resource limits
// already reduced to plain numbers.
type Service struct {
	Name         string
	Image        string
	BuildContext string
	Dockerfile   string

	// Ports holds the distinct container ports the service declares,
	// merged from ports[].target and expose, sorted ascending.
	Ports []int

	// Env is the merged environment. A nil value means the variable was
	// declared without one.
	Env map[string]*string

	Volumes    []string
	DependsOn  []string
	Networks   []string
	Command    []string
	Entrypoint []string
	Restart    string

	Replicas  *int
	CPUMillis int
	MemoryMB  int
}

// HasBuild reports whether the service builds from source
func (s Service) HasBuild() bool {
	return s.BuildContext != ""
}

// EnvNames returns the environment variable names in sorted order
func (s Service) EnvNames() []string {
	names := make([]string, 0, len(s.Env))
	for name := range s.Env {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fromConfig reduces a compose-go service to the converter's model.
// Environment merging with env_file contents happens in the loader, so
// cfg.Environment is taken as-is here.
func fromConfig(name string, cfg composetypes.ServiceConfig) Service {
	svc := Service{
		Name:       name,
		Image:      cfg.Image,
		Command:    cfg.Command,
		Entrypoint: cfg.Entrypoint,
		Restart:    cfg.Restart,
	}

	if cfg.Build != nil {
		svc.BuildContext = cfg.Build.Context
		if svc.BuildContext == "" {
			svc.BuildContext = "."
		}
		svc.Dockerfile = cfg.Build.Dockerfile
		if svc.Dockerfile == "" {
			svc.Dockerfile = "Dockerfile"
		}
	}

	svc.Ports = declaredPorts(cfg)

	if len(cfg.Environment) > 0 {
		svc.Env = make(map[string]*string, len(cfg.Environment))
		for key, value := range cfg.Environment {
			svc.Env[key] = value
		}
	}

	for _, volume := range cfg.Volumes {
		svc.Volumes = append(svc.Volumes, formatVolume(volume))
	}

	for dep := range cfg.DependsOn {
		svc.DependsOn = append(svc.DependsOn, dep)
	}
	sort.Strings(svc.DependsOn)

	for network := range cfg.Networks {
		svc.Networks = append(svc.Networks, network)
	}
	sort.Strings(svc.Networks)

	if cfg.Deploy != nil {
		svc.Replicas = cfg.Deploy.Replicas
		if limits := cfg.Deploy.Resources.Limits; limits != nil {
			svc.CPUMillis = int(float64(limits.NanoCPUs) * 1000)
			svc.MemoryMB = bytesToMB(int64(limits.MemoryBytes))
		}
	}

	return svc
}

// declaredPorts merges ports[].target with expose entries. Expose ranges
// contribute both endpoints, which is enough to detect ambiguity without
// expanding the range.
func declaredPorts(cfg composetypes.ServiceConfig) []int {
	seen := make(map[int]bool)

	for _, port := range cfg.Ports {
		if port.Target > 0 {
			seen[int(port.Target)] = true
		}
	}

	for _, expose := range cfg.Expose {
		// Strip a protocol suffix like 8080/tcp
		entry := expose
		if i := strings.IndexByte(entry, '/'); i >= 0 {
			entry = entry[:i]
		}

		low, high, ok := strings.Cut(entry, "-")
		if n, err := strconv.Atoi(strings.TrimSpace(low)); err == nil && n > 0 {
			seen[n] = true
		}
		if ok {
			if n, err := strconv.Atoi(strings.TrimSpace(high)); err == nil && n > 0 {
				seen[n] = true
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	ports := make([]int, 0, len(seen))
	for port := range seen {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	return ports
}

func formatVolume(volume composetypes.ServiceVolumeConfig) string {
	if volume.Source != "" {
		return volume.Source + ":" + volume.Target
	}
	return volume.Target
}

// bytesToMB rounds byte counts up to whole megabytes so a 512m limit
// stays 512 and tiny limits never truncate to zero
func bytesToMB(bytes int64) int {
	if bytes <= 0 {
		return 0
	}
	const mb = 1 << 20
	return int((bytes + mb - 1) / mb)
}
