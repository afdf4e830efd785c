package dockerfile

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/parser"

	"github.com/quixio/tributary/internal/quix"
)

// Source file extensions recognized as runnable entry points, in the
// order Quix templates prefer them
var entryPointExtensions = []string{".py", ".js", ".ts", ".sh", ".go", ".rb", ".jar"}

// Normalize rewrites a Dockerfile for the Quix runtime. Every EXPOSE
// instruction collapses to a single EXPOSE 80; when the Dockerfile
// exposes nothing but ensureExpose is set (the service declares ports),
// an EXPOSE 80 is appended.
func Normalize(content []byte, ensureExpose bool) ([]byte, error) {
	result, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse dockerfile: %w", err)
	}

	type span struct{ start, end int }
	var exposes []span
	for _, child := range result.AST.Children {
		if strings.EqualFold(child.Value, "expose") {
			exposes = append(exposes, span{child.StartLine, child.EndLine})
		}
	}

	exposeLine := fmt.Sprintf("EXPOSE %d", quix.PublicPort)

	if len(exposes) == 0 {
		out := normalizeTrailingNewline(content)
		if ensureExpose {
			out = append(out, []byte(exposeLine+"\n")...)
		}
		return out, nil
	}

	// Rewrite the first EXPOSE in place and drop the rest. Lines are
	// 1-based in the buildkit AST.
	skip := make(map[int]bool)
	rewrite := map[int]string{exposes[0].start: exposeLine}
	for l := exposes[0].start + 1; l <= exposes[0].end; l++ {
		skip[l] = true
	}
	for _, e := range exposes[1:] {
		for l := e.start; l <= e.end; l++ {
			skip[l] = true
		}
	}

	var out bytes.Buffer
	for i, line := range strings.Split(string(content), "\n") {
		lineno := i + 1
		if replacement, ok := rewrite[lineno]; ok {
			out.WriteString(replacement)
			out.WriteByte('\n')
			continue
		}
		if skip[lineno] {
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}

	return normalizeTrailingNewline(out.Bytes()), nil
}

// Synthesize produces a minimal Dockerfile for services that only name a
// prebuilt image
func Synthesize(image string, ensureExpose bool) []byte {
	var out bytes.Buffer
	fmt.Fprintf(&out, "FROM %s\n", image)
	if ensureExpose {
		fmt.Fprintf(&out, "EXPOSE %d\n", quix.PublicPort)
	}
	return out.Bytes()
}

// InferEntryPoint scans CMD and ENTRYPOINT instructions for something
// that looks like an application source file. The last instruction wins,
// matching image build semantics. Returns "" when nothing matches.
func InferEntryPoint(content []byte) string {
	result, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	entryPoint := ""
	for _, child := range result.AST.Children {
		if !strings.EqualFold(child.Value, "cmd") && !strings.EqualFold(child.Value, "entrypoint") {
			continue
		}

		var args []string
		for n := child.Next; n != nil; n = n.Next {
			args = append(args, n.Value)
		}

		// Shell form arrives as one string; split it into tokens so
		// "python main.py" still yields main.py
		if len(args) == 1 && strings.ContainsAny(args[0], " \t") {
			args = strings.Fields(args[0])
		}

		if found := findSourceFile(args); found != "" {
			entryPoint = found
		}
	}

	return entryPoint
}

func findSourceFile(args []string) string {
	for _, arg := range args {
		lower := strings.ToLower(arg)
		for _, ext := range entryPointExtensions {
			if strings.HasSuffix(lower, ext) {
				return strings.TrimPrefix(arg, "./")
			}
		}
	}
	return ""
}

func normalizeTrailingNewline(content []byte) []byte {
	trimmed := bytes.TrimRight(content, "\n")
	return append(trimmed, '\n')
}
