package compose

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	composetypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quixio/tributary/internal/diagnostics"
	"github.com/quixio/tributary/internal/filesystems"
)

// Project is a loaded compose project reduced to the converter's model.
// Services are sorted by name so downstream output is deterministic.
type Project struct {
	Name     string
	Dir      string
	Services []Service
	Diags    []diagnostics.Diagnostic
}

// Options control project loading
type Options struct {
	// ProjectName overrides the name derived from the source directory
	ProjectName string

	// Profiles selects the compose profiles to enable
	Profiles []string
}

// Loader reads compose projects through a FileSystem so remote checkouts
// and in-memory fixtures load exactly like local directories
type Loader struct {
	fs  filesystems.FileSystem
	log *zap.Logger
}

func NewLoader(filesystem filesystems.FileSystem, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fs: filesystem, log: logger}
}

// Load parses the compose file(s) behind src. Interpolation is skipped so
// ${VAR} placeholders survive into the variable mapping; env_file entries
// are read through the same FileSystem and merged beneath the service's
// own environment section.
func (l *Loader) Load(ctx context.Context, src Source, opts Options) (*Project, error) {
	configFiles := make([]composetypes.ConfigFile, 0, 2)
	for _, path := range src.Files() {
		content, err := l.fs.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		configFiles = append(configFiles, composetypes.ConfigFile{
			Filename: path,
			Content:  content,
		})
	}

	name := opts.ProjectName
	if name == "" {
		name = ProjectName(l.fs.Base(src.Dir))
	}

	details := composetypes.ConfigDetails{
		WorkingDir:  src.Dir,
		ConfigFiles: configFiles,
	}

	loaded, err := loader.LoadWithContext(ctx, details, func(options *loader.Options) {
		options.SetProjectName(name, true)
		options.SkipInterpolation = true
		options.SkipValidation = true
		options.SkipConsistencyCheck = true
		options.ResolvePaths = false
		options.Profiles = opts.Profiles
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load compose project: %w", err)
	}

	project := &Project{Name: loaded.Name, Dir: src.Dir}

	if src.OverridePath != "" {
		project.Diags = append(project.Diags,
			diagnostics.Notef("", "merged override file %s", l.fs.Base(src.OverridePath)))
	}

	serviceNames := make([]string, 0, len(loaded.Services))
	for svcName := range loaded.Services {
		serviceNames = append(serviceNames, svcName)
	}
	sort.Strings(serviceNames)

	for _, svcName := range serviceNames {
		cfg := loaded.Services[svcName]
		svc := fromConfig(svcName, cfg)

		if len(cfg.EnvFiles) > 0 {
			env, diags := l.mergedEnv(cfg, src.Dir, svcName)
			svc.Env = env
			project.Diags = append(project.Diags, diags...)
		}

		project.Services = append(project.Services, svc)
		l.log.Debug("loaded service",
			zap.String("service", svcName),
			zap.Int("ports", len(svc.Ports)),
			zap.Int("env", len(svc.Env)))
	}

	disabled := make([]string, 0, len(loaded.DisabledServices))
	for svcName := range loaded.DisabledServices {
		disabled = append(disabled, svcName)
	}
	sort.Strings(disabled)
	for _, svcName := range disabled {
		project.Diags = append(project.Diags,
			diagnostics.Notef(svcName, "disabled by profiles, skipping"))
	}

	l.log.Debug("loaded compose project",
		zap.String("name", project.Name),
		zap.String("file", src.Path),
		zap.Int("services", len(project.Services)))

	return project, nil
}

// mergedEnv layers env_file contents beneath the environment section.
// Later env files override earlier ones; the environment section always
// wins. Unreadable files degrade to a warning so one bad path does not
// sink the service.
func (l *Loader) mergedEnv(cfg composetypes.ServiceConfig, dir, service string) (map[string]*string, []diagnostics.Diagnostic) {
	merged := make(map[string]*string)
	var diags []diagnostics.Diagnostic

	for _, envFile := range cfg.EnvFiles {
		path := envFile.Path
		if !strings.HasPrefix(path, "/") {
			path = l.fs.Join(dir, path)
		}

		content, err := l.fs.ReadFile(path)
		if err != nil {
			if envFile.Required {
				diags = append(diags, diagnostics.Warningf(service,
					"env file %s could not be read, its variables are skipped", envFile.Path))
			}
			continue
		}

		vars, err := godotenv.Unmarshal(string(content))
		if err != nil {
			diags = append(diags, diagnostics.Warningf(service,
				"env file %s is not parseable: %v", envFile.Path, err))
			continue
		}

		for key, value := range vars {
			v := value
			merged[key] = &v
		}
	}

	for key, value := range cfg.Environment {
		merged[key] = value
	}

	if len(merged) == 0 {
		return nil, diags
	}
	return merged, diags
}

var invalidProjectChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// ProjectName normalizes a directory name into a valid compose project
// name: lowercase alphanumerics, underscores and dashes, starting with an
// alphanumeric
func ProjectName(base string) string {
	name := invalidProjectChars.ReplaceAllString(strings.ToLower(base), "-")
	name = strings.TrimLeft(name, "-_")
	if name == "" {
		return "project"
	}
	return name
}
