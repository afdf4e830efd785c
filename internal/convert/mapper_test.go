package convert_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/quixio/tributary/internal/compose"
	"github.com/quixio/tributary/internal/convert"
	"github.com/quixio/tributary/internal/diagnostics"
	"github.com/quixio/tributary/internal/overrides"
	"github.com/quixio/tributary/internal/quix"
)

func strptr(s string) *string { return &s }

func defaults() overrides.Effective {
	var config *overrides.Config
	return config.Resolve("any")
}

func TestMap_PublicServiceWithSecret(t *testing.T) {
	svc := compose.Service{
		Name:         "api",
		BuildContext: "./api",
		Dockerfile:   "Dockerfile",
		Ports:        []int{3000},
		Env: map[string]*string{
			"API_KEY": strptr("${API_KEY}"),
		},
	}

	result, err := convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dep := result.Deployment
	if dep.Name != "api" || dep.Application != "api" {
		t.Errorf("expected name and application 'api', got %q %q", dep.Name, dep.Application)
	}
	if dep.Application != result.App.Name {
		t.Errorf("deployment.application %q must equal app name %q", dep.Application, result.App.Name)
	}

	if dep.PublicAccess == nil || !dep.PublicAccess.Enabled {
		t.Fatal("a declared port must enable public access")
	}
	if dep.PublicAccess.URLPrefix != "api" {
		t.Errorf("expected urlPrefix 'api', got %q", dep.PublicAccess.URLPrefix)
	}

	if len(dep.Variables) != 1 {
		t.Fatalf("expected 1 variable, got %d", len(dep.Variables))
	}
	v := dep.Variables[0]
	if v.Name != "API_KEY" || v.InputType != quix.InputTypeSecret {
		t.Errorf("expected API_KEY as Secret, got %s %s", v.Name, v.InputType)
	}
	if !v.Required {
		t.Error("placeholder-valued variable must be required")
	}
	if v.Value != "" || v.DefaultValue != "" {
		t.Errorf("secret must carry no literal, got value=%q default=%q", v.Value, v.DefaultValue)
	}
	if v.SecretKey != "api_key" {
		t.Errorf("expected secretKey api_key, got %q", v.SecretKey)
	}
}

func TestMap_WorkerWithLiteralEnv(t *testing.T) {
	svc := compose.Service{
		Name:  "worker",
		Image: "worker:latest",
		Env: map[string]*string{
			"REDIS_URL": strptr("redis://redis:6379"),
		},
	}

	result, err := convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Deployment.PublicAccess != nil {
		t.Error("portless service must not be public")
	}

	v := result.Deployment.Variables[0]
	if v.InputType != quix.InputTypeFreeText {
		t.Errorf("expected FreeText, got %s", v.InputType)
	}
	if v.Value != "redis://redis:6379" {
		t.Errorf("literal value must survive, got %q", v.Value)
	}
	if v.Required {
		t.Error("literal-valued variable must not be required")
	}
}

func TestMap_NoBuildNoImage(t *testing.T) {
	svc := compose.Service{Name: "ghost"}

	_, err := convert.Map(svc, defaults(), "")
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *convert.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Service != "ghost" {
		t.Errorf("expected service 'ghost' in error, got %q", verr.Service)
	}
}

func TestMap_AmbiguousPorts(t *testing.T) {
	svc := compose.Service{
		Name:  "multi",
		Image: "multi:latest",
		Ports: []int{3000, 9090},
	}

	_, err := convert.Map(svc, defaults(), "")
	var verr *convert.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for multiple ports, got %v", err)
	}
}

func TestMap_SecretLiteralWarning(t *testing.T) {
	svc := compose.Service{
		Name:  "db",
		Image: "postgres:16",
		Env: map[string]*string{
			"POSTGRES_PASSWORD": strptr("hunter2"),
		},
	}

	result, err := convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := result.Deployment.Variables[0]
	if v.Value != "" {
		t.Errorf("plaintext secret must not survive, got %q", v.Value)
	}
	if v.SecretKey != "postgres_password" {
		t.Errorf("expected secretKey postgres_password, got %q", v.SecretKey)
	}

	warned := false
	for _, d := range result.Diags {
		if d.Severity == diagnostics.SeverityWarning && d.Service == "db" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning about the discarded literal")
	}
}

func TestMap_VolumesDropped(t *testing.T) {
	svc := compose.Service{
		Name:    "db",
		Image:   "postgres:16",
		Volumes: []string{"pgdata:/var/lib/postgresql/data"},
	}

	result, err := convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	warned := false
	for _, d := range result.Diags {
		if d.Severity == diagnostics.SeverityWarning {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning for the dropped volume")
	}
}

func TestMap_RuntimeOverrideNotes(t *testing.T) {
	svc := compose.Service{
		Name:       "api",
		Image:      "api:latest",
		Command:    []string{"python", "serve.py"},
		Entrypoint: []string{"/entry.sh"},
		Restart:    "unless-stopped",
	}

	result, err := convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"command", "entrypoint", "restart"} {
		found := false
		for _, d := range result.Diags {
			if d.Severity == diagnostics.SeverityNote && strings.Contains(d.Message, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("expected a note mentioning %s, got %v", want, result.Diags)
		}
	}

	plain := compose.Service{Name: "plain", Image: "plain:1", Restart: "no"}
	result, err = convert.Map(plain, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Diags) != 0 {
		t.Errorf("restart \"no\" must not be diagnosed, got %v", result.Diags)
	}
}

func TestMap_TopicsCollected(t *testing.T) {
	svc := compose.Service{
		Name:  "enricher",
		Image: "enricher:latest",
		Env: map[string]*string{
			"input":  strptr("raw-readings"),
			"output": strptr("enriched-readings"),
		},
	}

	result, err := convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Topics) != 2 {
		t.Fatalf("expected 2 topics, got %v", result.Topics)
	}

	byName := map[string]quix.Variable{}
	for _, v := range result.Deployment.Variables {
		byName[v.Name] = v
	}
	if byName["input"].InputType != quix.InputTypeInputTopic {
		t.Errorf("expected input as InputTopic, got %s", byName["input"].InputType)
	}
	if byName["output"].InputType != quix.InputTypeOutputTopic {
		t.Errorf("expected output as OutputTopic, got %s", byName["output"].InputType)
	}
}

func TestMap_ResourcesFromCompose(t *testing.T) {
	three := 3
	svc := compose.Service{
		Name:      "crunch",
		Image:     "crunch:latest",
		Replicas:  &three,
		CPUMillis: 1500,
		MemoryMB:  2048,
	}

	result, err := convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := result.Deployment.Resources
	if res.CPU != 1500 || res.Memory != 2048 || res.Replicas != 3 {
		t.Errorf("expected compose limits to win, got %+v", res)
	}
}

func TestMap_ResourceDefaults(t *testing.T) {
	svc := compose.Service{Name: "plain", Image: "plain:latest"}

	result, err := convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := result.Deployment.Resources
	if res.CPU != overrides.DefaultCPUMillis || res.Memory != overrides.DefaultMemoryMB || res.Replicas != overrides.DefaultReplicas {
		t.Errorf("expected built-in defaults, got %+v", res)
	}
	if result.Deployment.Version != "latest" {
		t.Errorf("expected version latest, got %q", result.Deployment.Version)
	}
	if result.Deployment.DeploymentType != quix.DeploymentTypeService {
		t.Errorf("expected deployment type Service, got %q", result.Deployment.DeploymentType)
	}
}

func TestMap_PublicOverrides(t *testing.T) {
	svc := compose.Service{Name: "api", Image: "api:latest", Ports: []int{8080}}

	off := false
	eff := defaults()
	eff.Public = &off
	result, err := convert.Map(svc, eff, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Deployment.PublicAccess != nil {
		t.Error("public=false override must suppress public access")
	}

	on := true
	eff = defaults()
	eff.Public = &on
	eff.URLPrefix = "gateway"
	result, err = convert.Map(compose.Service{Name: "hidden", Image: "hidden:1"}, eff, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Deployment.PublicAccess == nil || result.Deployment.PublicAccess.URLPrefix != "gateway" {
		t.Errorf("expected forced public access with prefix gateway, got %+v", result.Deployment.PublicAccess)
	}
}

func TestMap_EntryPointPrecedence(t *testing.T) {
	svc := compose.Service{Name: "app", Image: "app:latest"}

	result, err := convert.Map(svc, defaults(), "server.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.App.RunEntryPoint != "server.js" {
		t.Errorf("inferred entry point must win, got %q", result.App.RunEntryPoint)
	}

	result, err = convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.App.RunEntryPoint != overrides.DefaultEntryPoint {
		t.Errorf("expected default entry point, got %q", result.App.RunEntryPoint)
	}

	pinned := defaults()
	pinned.EntryPoint = "run.sh"
	pinned.EntryPointPinned = true
	result, err = convert.Map(svc, pinned, "server.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.App.RunEntryPoint != "run.sh" {
		t.Errorf("pinned entry point must win over inference, got %q", result.App.RunEntryPoint)
	}
}

func TestMap_AppVariablesUseDefaults(t *testing.T) {
	svc := compose.Service{
		Name:  "api",
		Image: "api:latest",
		Env: map[string]*string{
			"REDIS_URL": strptr("redis://redis:6379"),
		},
	}

	result, err := convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	appVar := result.App.Variables[0]
	if appVar.Value != "" {
		t.Errorf("app descriptor variables carry defaults, not values, got value=%q", appVar.Value)
	}
	if appVar.DefaultValue != "redis://redis:6379" {
		t.Errorf("expected defaultValue redis://redis:6379, got %q", appVar.DefaultValue)
	}
}

func TestMap_Deterministic(t *testing.T) {
	svc := compose.Service{
		Name:  "api",
		Image: "api:latest",
		Env: map[string]*string{
			"B_VAR": strptr("2"),
			"A_VAR": strptr("1"),
			"C_VAR": strptr("3"),
		},
	}

	first, err := convert.Map(svc, defaults(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for range 10 {
		again, err := convert.Map(svc, defaults(), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, v := range again.Deployment.Variables {
			if first.Deployment.Variables[i].Name != v.Name {
				t.Fatalf("variable order is not stable: %v", again.Deployment.Variables)
			}
		}
	}

	want := []string{"A_VAR", "B_VAR", "C_VAR"}
	for i, v := range first.Deployment.Variables {
		if v.Name != want[i] {
			t.Errorf("expected sorted variables %v, got %s at %d", want, v.Name, i)
		}
	}
}
