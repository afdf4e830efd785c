package variables

import (
	"regexp"
	"strings"

	"github.com/quixio/tributary/internal/quix"
)

// Name fragments that mark a variable as secret-bearing. Matching is a
// case-insensitive substring check, so API_KEY, JWT_SECRET and
// postgres_password all classify as Secret.
var secretPatterns = []string{
	"key", "secret", "password", "token", "credential",
}

// Exact names and suffixes that bind a variable to a Kafka topic. Quix
// applications conventionally read their topic names from "input" and
// "output" environment variables.
var (
	inputTopicNames  = []string{"input", "input_topic"}
	outputTopicNames = []string{"output", "output_topic"}
)

// Classify determines the Quix input type for an environment variable
// from its name alone. Unrecognized names default to FreeText; values
// play no part in classification.
func Classify(name string) quix.InputType {
	lower := strings.ToLower(name)

	for _, n := range inputTopicNames {
		if lower == n || strings.HasSuffix(lower, "_"+n) {
			return quix.InputTypeInputTopic
		}
	}
	for _, n := range outputTopicNames {
		if lower == n || strings.HasSuffix(lower, "_"+n) {
			return quix.InputTypeOutputTopic
		}
	}

	for _, pattern := range secretPatterns {
		if strings.Contains(lower, pattern) {
			return quix.InputTypeSecret
		}
	}

	return quix.InputTypeFreeText
}

var (
	bracedPlaceholder = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)(?::?[-?+][^}]*)?\}$`)
	barePlaceholder   = regexp.MustCompile(`^\$([A-Za-z_][A-Za-z0-9_]*)$`)
)

// Placeholder reports whether a value is a substitution placeholder
// (${VAR}, ${VAR:-default}, $VAR) and returns the referenced name.
// Escaped dollars ($$VAR) are literals, not placeholders.
func Placeholder(value string) (string, bool) {
	if strings.HasPrefix(value, "$$") {
		return "", false
	}
	if m := bracedPlaceholder.FindStringSubmatch(value); m != nil {
		return m[1], true
	}
	if m := barePlaceholder.FindStringSubmatch(value); m != nil {
		return m[1], true
	}
	return "", false
}

// SecretKey derives the secret store key referenced by a Secret variable
func SecretKey(name string) string {
	return strings.ToLower(name)
}

// Unescape resolves compose-style $$ escaping in literal values
func Unescape(value string) string {
	return strings.ReplaceAll(value, "$$", "$")
}

func describe(t quix.InputType) string {
	switch t {
	case quix.InputTypeInputTopic:
		return "Name of the input topic to listen to."
	case quix.InputTypeOutputTopic:
		return "Name of the output topic to write into."
	default:
		return ""
	}
}

// Build converts one compose environment entry into a deployment-view
// Quix variable. A nil raw value means the variable was declared without
// a value (inherited from the host environment), which behaves like a
// placeholder: required, no default.
//
// The returned flag reports that a literal value was discarded because
// the variable classified as Secret; callers surface that as a warning.
func Build(name string, raw *string) (quix.Variable, bool) {
	v := quix.Variable{
		Name:        name,
		InputType:   Classify(name),
		Description: describe(Classify(name)),
	}

	value := ""
	literal := false
	if raw == nil {
		v.Required = true
	} else if _, ok := Placeholder(*raw); ok {
		v.Required = true
	} else {
		value = Unescape(*raw)
		literal = true
	}

	droppedLiteral := false
	switch v.InputType {
	case quix.InputTypeSecret:
		// Secrets never carry plaintext: only the secret store key.
		v.Required = true
		v.SecretKey = SecretKey(name)
		droppedLiteral = literal && value != ""
	case quix.InputTypeInputTopic, quix.InputTypeOutputTopic:
		v.Required = true
		v.Value = value
	default:
		v.Value = value
	}

	return v, droppedLiteral
}
