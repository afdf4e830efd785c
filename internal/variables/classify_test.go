package variables_test

import (
	"testing"

	"github.com/quixio/tributary/internal/quix"
	"github.com/quixio/tributary/internal/variables"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want quix.InputType
	}{
		{"API_KEY", quix.InputTypeSecret},
		{"JWT_SECRET", quix.InputTypeSecret},
		{"POSTGRES_PASSWORD", quix.InputTypeSecret},
		{"ACCESS_TOKEN", quix.InputTypeSecret},
		{"GOOGLE_CREDENTIALS", quix.InputTypeSecret},
		{"apikey", quix.InputTypeSecret},
		{"REDIS_URL", quix.InputTypeFreeText},
		{"PORT", quix.InputTypeFreeText},
		{"DEBUG", quix.InputTypeFreeText},
		{"input", quix.InputTypeInputTopic},
		{"INPUT", quix.InputTypeInputTopic},
		{"input_topic", quix.InputTypeInputTopic},
		{"RAW_INPUT_TOPIC", quix.InputTypeInputTopic},
		{"output", quix.InputTypeOutputTopic},
		{"OUTPUT_TOPIC", quix.InputTypeOutputTopic},
		{"ALERTS_OUTPUT_TOPIC", quix.InputTypeOutputTopic},
		// "inputs" is neither an exact match nor a _input suffix
		{"INPUTS", quix.InputTypeFreeText},
		{"THROUGHPUT", quix.InputTypeFreeText},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := variables.Classify(c.name); got != c.want {
				t.Errorf("Classify(%q) = %q, want %q", c.name, got, c.want)
			}
		})
	}
}

func TestPlaceholder(t *testing.T) {
	cases := []struct {
		value    string
		wantName string
		wantOK   bool
	}{
		{"${API_KEY}", "API_KEY", true},
		{"${PORT:-3000}", "PORT", true},
		{"${PORT-3000}", "PORT", true},
		{"${NAME:?required}", "NAME", true},
		{"$HOME", "HOME", true},
		{"$$NOT_A_PLACEHOLDER", "", false},
		{"redis://redis:6379", "", false},
		{"plain value", "", false},
		{"${BAD", "", false},
		{"prefix ${VAR}", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		name, ok := variables.Placeholder(c.value)
		if ok != c.wantOK || name != c.wantName {
			t.Errorf("Placeholder(%q) = (%q, %t), want (%q, %t)", c.value, name, ok, c.wantName, c.wantOK)
		}
	}
}

func TestBuild_SecretPlaceholder(t *testing.T) {
	raw := "${API_KEY}"
	v, dropped := variables.Build("API_KEY", &raw)

	if v.InputType != quix.InputTypeSecret {
		t.Errorf("expected Secret, got %q", v.InputType)
	}
	if !v.Required {
		t.Error("placeholder-valued variable should be required")
	}
	if v.Value != "" || v.DefaultValue != "" {
		t.Errorf("secret should carry no value, got value=%q default=%q", v.Value, v.DefaultValue)
	}
	if v.SecretKey != "api_key" {
		t.Errorf("expected secretKey api_key, got %q", v.SecretKey)
	}
	if dropped {
		t.Error("placeholder is not a literal, nothing should be dropped")
	}
}

func TestBuild_SecretLiteralDropped(t *testing.T) {
	raw := "hunter2"
	v, dropped := variables.Build("DB_PASSWORD", &raw)

	if !dropped {
		t.Error("literal secret value should be reported as dropped")
	}
	if v.Value != "" {
		t.Errorf("literal secret value must not survive, got %q", v.Value)
	}
	if v.SecretKey != "db_password" {
		t.Errorf("expected secretKey db_password, got %q", v.SecretKey)
	}
	if !v.Required {
		t.Error("secrets are always required")
	}
}

func TestBuild_FreeTextLiteral(t *testing.T) {
	raw := "redis://redis:6379"
	v, dropped := variables.Build("REDIS_URL", &raw)

	if v.InputType != quix.InputTypeFreeText {
		t.Errorf("expected FreeText, got %q", v.InputType)
	}
	if v.Value != "redis://redis:6379" {
		t.Errorf("literal value should survive, got %q", v.Value)
	}
	if v.Required {
		t.Error("literal-valued free text should not be required")
	}
	if dropped {
		t.Error("free text literals are never dropped")
	}
}

func TestBuild_NilValue(t *testing.T) {
	v, _ := variables.Build("DEBUG", nil)

	if !v.Required {
		t.Error("variable declared without value should be required")
	}
	if v.Value != "" {
		t.Errorf("expected no value, got %q", v.Value)
	}
}

func TestBuild_Topics(t *testing.T) {
	raw := "sensor-readings"
	v, _ := variables.Build("input", &raw)

	if v.InputType != quix.InputTypeInputTopic {
		t.Errorf("expected InputTopic, got %q", v.InputType)
	}
	if v.Value != "sensor-readings" {
		t.Errorf("topic variable should keep the topic name, got %q", v.Value)
	}
	if !v.Required {
		t.Error("topic variables are required")
	}
	if v.Description == "" {
		t.Error("topic variables carry a description")
	}
}

func TestBuild_EscapedDollar(t *testing.T) {
	raw := "$$literal"
	v, _ := variables.Build("MOTD", &raw)

	if v.Required {
		t.Error("escaped dollar is a literal, not a placeholder")
	}
	if v.Value != "$literal" {
		t.Errorf("expected unescaped literal, got %q", v.Value)
	}
}
