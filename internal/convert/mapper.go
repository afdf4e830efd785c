package convert

import (
	"github.com/quixio/tributary/internal/compose"
	"github.com/quixio/tributary/internal/diagnostics"
	"github.com/quixio/tributary/internal/overrides"
	"github.com/quixio/tributary/internal/quix"
	"github.com/quixio/tributary/internal/variables"
)

// Result is the Quix-side rendering of one compose service
type Result struct {
	Deployment quix.Deployment
	App        quix.AppDescriptor

	// Topics holds the topic names referenced by the service's input and
	// output variables
	Topics []string

	Diags []diagnostics.Diagnostic
}

// Map converts one compose service into its Quix deployment and
// application descriptor. Map is pure: dockerfile contents are read
// beforehand and the inferred entry point is passed in, so the same
// inputs always produce the same result.
//
// The rules are fixed. Declared container ports route to port 80; any
// port makes the deployment public under a URL prefix slugged from the
// service name; secret-classified variables never carry plaintext;
// volumes are dropped with a warning.
func Map(svc compose.Service, eff overrides.Effective, inferredEntryPoint string) (Result, error) {
	if !svc.HasBuild() && svc.Image == "" {
		return Result{}, validationf(svc.Name, "declares neither a build context nor an image")
	}

	if len(svc.Ports) > 1 {
		return Result{}, validationf(svc.Name,
			"declares %d container ports %v: Quix routes one port per deployment", len(svc.Ports), svc.Ports)
	}

	appKey := Slug(svc.Name)
	if appKey == "" {
		return Result{}, validationf(svc.Name, "name reduces to an empty application key")
	}

	result := Result{}

	resources := quix.Resources{
		CPU:      eff.CPUMillis,
		Memory:   eff.MemoryMB,
		Replicas: eff.Replicas,
	}
	if svc.CPUMillis > 0 {
		resources.CPU = svc.CPUMillis
	}
	if svc.MemoryMB > 0 {
		resources.Memory = svc.MemoryMB
	}
	if svc.Replicas != nil && *svc.Replicas > 0 {
		resources.Replicas = *svc.Replicas
	}

	deployment := quix.NewDeployment(svc.Name, appKey, resources)

	public := len(svc.Ports) > 0
	if eff.Public != nil {
		public = *eff.Public
	}
	if public {
		prefix := eff.URLPrefix
		if prefix == "" {
			prefix = appKey
		}
		deployment.PublicAccess = &quix.PublicAccess{Enabled: true, URLPrefix: prefix}
	}

	for _, name := range svc.EnvNames() {
		variable, droppedLiteral := variables.Build(name, svc.Env[name])
		if droppedLiteral {
			result.Diags = append(result.Diags, diagnostics.Warningf(svc.Name,
				"literal value of %s was discarded: secrets are read from the secret store under key %q",
				name, variable.SecretKey))
		}
		deployment.Variables = append(deployment.Variables, variable)

		if variable.IsTopic() && variable.Value != "" {
			result.Topics = append(result.Topics, variable.Value)
		}
	}

	entryPoint := inferredEntryPoint
	if eff.EntryPointPinned || entryPoint == "" {
		entryPoint = eff.EntryPoint
	}

	app := quix.NewAppDescriptor(appKey, eff.Language, entryPoint)
	for _, variable := range deployment.Variables {
		app.Variables = append(app.Variables, variable.AppView())
	}

	for _, volume := range svc.Volumes {
		result.Diags = append(result.Diags, diagnostics.Warningf(svc.Name,
			"volume %s was dropped: deployments have no persistent mounts", volume))
	}
	if len(svc.DependsOn) > 0 {
		result.Diags = append(result.Diags, diagnostics.Notef(svc.Name,
			"depends_on %v is not carried over, deployments start independently", svc.DependsOn))
	}
	if len(svc.Networks) > 0 {
		result.Diags = append(result.Diags, diagnostics.Notef(svc.Name,
			"custom networks %v are flattened into the workspace network", svc.Networks))
	}
	if len(svc.Entrypoint) > 0 {
		result.Diags = append(result.Diags, diagnostics.Notef(svc.Name,
			"entrypoint override %v is not carried over, the dockerfile determines what runs", svc.Entrypoint))
	}
	if len(svc.Command) > 0 {
		result.Diags = append(result.Diags, diagnostics.Notef(svc.Name,
			"command override %v is not carried over, the dockerfile determines what runs", svc.Command))
	}
	if svc.Restart != "" && svc.Restart != "no" {
		result.Diags = append(result.Diags, diagnostics.Notef(svc.Name,
			"restart policy %q is not carried over, the platform supervises deployments", svc.Restart))
	}

	result.Deployment = deployment
	result.App = app
	return result, nil
}

// EnsureExpose reports whether the service's dockerfile needs an EXPOSE
// rewrite target. Any declared port or forced public access routes
// through port 80.
func EnsureExpose(svc compose.Service, eff overrides.Effective) bool {
	if eff.Public != nil {
		return *eff.Public || len(svc.Ports) > 0
	}
	return len(svc.Ports) > 0
}
