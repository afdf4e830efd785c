package convert

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quixio/tributary/internal/compose"
	"github.com/quixio/tributary/internal/diagnostics"
	"github.com/quixio/tributary/internal/dockerfile"
	"github.com/quixio/tributary/internal/filesystems"
	"github.com/quixio/tributary/internal/overrides"
	"github.com/quixio/tributary/internal/quix"
)

// Options control a conversion run
type Options struct {
	// ProjectName overrides the compose project name
	ProjectName string

	// Profiles selects the compose profiles to enable
	Profiles []string
}

// Output is everything a conversion produces: the project descriptor for
// quix.yaml, one folder per surviving service, and the run's diagnostics.
// Services that failed validation are listed in Failed; their presence
// never suppresses the output of the ones that succeeded.
type Output struct {
	ProjectName string
	Source      string
	Project     *quix.Project
	Apps        []AppFolder
	Diags       []diagnostics.Diagnostic
	Failed      []ServiceError
}

// AppFolder is the on-disk rendering of one service: a directory named
// after the application key holding app.yaml and the dockerfile
type AppFolder struct {
	Key        string
	Descriptor quix.AppDescriptor
	Dockerfile []byte
}

// ServiceError records a per-service conversion failure
type ServiceError struct {
	Service string
	Err     error
}

func (e ServiceError) Error() string {
	return e.Err.Error()
}

// Converter runs the compose-to-Quix pipeline over a FileSystem
type Converter struct {
	fs  filesystems.FileSystem
	log *zap.Logger
}

func New(filesystem filesystems.FileSystem, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{fs: filesystem, log: logger}
}

// Convert locates and loads the compose project in dir, maps every
// service, and assembles the project descriptor. Service order and
// variable order are sorted, so the same input tree always renders the
// same output.
func (c *Converter) Convert(ctx context.Context, dir string, opts Options) (*Output, error) {
	src, err := compose.LocateBelow(c.fs, dir)
	if err != nil {
		return nil, err
	}

	loader := compose.NewLoader(c.fs, c.log)
	project, err := loader.Load(ctx, src, compose.Options{
		ProjectName: opts.ProjectName,
		Profiles:    opts.Profiles,
	})
	if err != nil {
		return nil, err
	}

	config, configPath, err := overrides.Load(c.fs, src.Dir)
	if err != nil {
		return nil, err
	}

	output := &Output{
		ProjectName: project.Name,
		Source:      src.Path,
		Project:     quix.NewProject(),
		Diags:       project.Diags,
	}
	if configPath != "" {
		output.Diags = append(output.Diags,
			diagnostics.Notef("", "applying overrides from %s", c.fs.Base(configPath)))
	}

	if len(project.Services) == 0 {
		output.Diags = append(output.Diags,
			diagnostics.Warningf("", "project defines no services"))
		return output, nil
	}

	// Services convert independently; failures stay in their slot so the
	// output order never depends on scheduling
	outcomes := make([]serviceOutcome, len(project.Services))
	var group errgroup.Group
	group.SetLimit(4)
	for i, svc := range project.Services {
		group.Go(func() error {
			outcomes[i] = c.convertService(project.Dir, svc, config)
			return nil
		})
	}
	group.Wait()

	// Reassemble in service order. Application keys must be unique; on a
	// collision the first service keeps the key and later ones fail.
	claimed := make(map[string]string)
	topics := make(map[string]bool)

	for i, outcome := range outcomes {
		svc := project.Services[i]
		output.Diags = append(output.Diags, outcome.diags...)

		if outcome.skipped {
			continue
		}
		if outcome.err != nil {
			output.Failed = append(output.Failed, ServiceError{Service: svc.Name, Err: outcome.err})
			continue
		}

		key := outcome.result.Deployment.Application
		if prior, taken := claimed[key]; taken {
			output.Failed = append(output.Failed, ServiceError{
				Service: svc.Name,
				Err:     validationf(svc.Name, "application key %q is already used by service %q", key, prior),
			})
			continue
		}
		claimed[key] = svc.Name

		output.Project.AddDeployment(outcome.result.Deployment)
		output.Apps = append(output.Apps, outcome.folder)
		for _, topic := range outcome.result.Topics {
			topics[topic] = true
		}
	}

	topicNames := make([]string, 0, len(topics))
	for topic := range topics {
		topicNames = append(topicNames, topic)
	}
	sort.Strings(topicNames)
	for _, topic := range topicNames {
		output.Project.Topics = append(output.Project.Topics, quix.Topic{Name: topic})
	}

	c.log.Info("converted project",
		zap.String("project", project.Name),
		zap.Int("deployments", len(output.Project.Deployments)),
		zap.Int("topics", len(output.Project.Topics)),
		zap.Int("failed", len(output.Failed)))

	return output, nil
}

type serviceOutcome struct {
	result  Result
	folder  AppFolder
	diags   []diagnostics.Diagnostic
	err     error
	skipped bool
}

func (c *Converter) convertService(dir string, svc compose.Service, config *overrides.Config) serviceOutcome {
	eff := config.Resolve(svc.Name)
	if eff.Skip {
		return serviceOutcome{
			skipped: true,
			diags:   []diagnostics.Diagnostic{diagnostics.Notef(svc.Name, "skipped by override file")},
		}
	}

	var content []byte
	if svc.HasBuild() {
		path := c.fs.Join(dir, svc.BuildContext, svc.Dockerfile)
		var err error
		content, err = c.fs.ReadFile(path)
		if err != nil {
			return serviceOutcome{err: validationf(svc.Name, "dockerfile not found at %s", path)}
		}
	}

	result, err := Map(svc, eff, dockerfile.InferEntryPoint(content))
	if err != nil {
		return serviceOutcome{err: err}
	}

	ensureExpose := EnsureExpose(svc, eff)

	var normalized []byte
	if svc.HasBuild() {
		normalized, err = dockerfile.Normalize(content, ensureExpose)
		if err != nil {
			return serviceOutcome{err: validationf(svc.Name, "dockerfile cannot be parsed: %v", err)}
		}
	} else {
		normalized = dockerfile.Synthesize(svc.Image, ensureExpose)
	}

	c.log.Debug("converted service",
		zap.String("service", svc.Name),
		zap.String("application", result.Deployment.Application),
		zap.Bool("public", result.Deployment.PublicAccess != nil))

	return serviceOutcome{
		result: result,
		folder: AppFolder{
			Key:        result.Deployment.Application,
			Descriptor: result.App,
			Dockerfile: normalized,
		},
		diags: result.Diags,
	}
}

// Warnings counts the warning-severity diagnostics in the output
func (o *Output) Warnings() int {
	return diagnostics.Warnings(o.Diags)
}

// Err returns a summary error when any service failed, for callers that
// need a non-zero exit
func (o *Output) Err() error {
	if len(o.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d services failed validation",
		len(o.Failed), len(o.Failed)+len(o.Project.Deployments))
}
