package export

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/quixio/tributary/internal/convert"
	"github.com/quixio/tributary/internal/quix"
)

// Sink is the writable side of output materialization. MemoryFS
// implements it for tests; OSSink writes to disk.
type Sink interface {
	WriteFile(name string, content []byte) error
	MkdirAll(name string) error
}

// OSSink writes through the host filesystem
type OSSink struct{}

func (OSSink) WriteFile(name string, content []byte) error {
	return os.WriteFile(name, content, 0o644)
}

func (OSSink) MkdirAll(name string) error {
	return os.MkdirAll(name, 0o755)
}

// Writer materializes a conversion into a directory tree: quix.yaml at
// the root and one folder per application holding app.yaml plus the
// normalized dockerfile
type Writer struct {
	sink Sink
	log  *zap.Logger
}

func NewWriter(sink Sink, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{sink: sink, log: logger}
}

// Write renders the output under dir and returns the paths it wrote
func (w *Writer) Write(output *convert.Output, dir string) ([]string, error) {
	if err := w.sink.MkdirAll(dir); err != nil {
		return nil, err
	}

	var written []string

	projectYAML, err := ProjectYAML(output.Project)
	if err != nil {
		return nil, err
	}
	rootPath := filepath.Join(dir, "quix.yaml")
	if err := w.sink.WriteFile(rootPath, projectYAML); err != nil {
		return nil, err
	}
	written = append(written, rootPath)

	for _, app := range output.Apps {
		appDir := filepath.Join(dir, app.Key)
		if err := w.sink.MkdirAll(appDir); err != nil {
			return nil, err
		}

		appYAML, err := AppYAML(app.Descriptor)
		if err != nil {
			return nil, err
		}
		appPath := filepath.Join(appDir, "app.yaml")
		if err := w.sink.WriteFile(appPath, appYAML); err != nil {
			return nil, err
		}
		written = append(written, appPath)

		dockerfilePath := filepath.Join(appDir, quix.DockerfileName)
		if err := w.sink.WriteFile(dockerfilePath, app.Dockerfile); err != nil {
			return nil, err
		}
		written = append(written, dockerfilePath)
	}

	w.log.Debug("wrote project tree",
		zap.String("dir", dir),
		zap.Int("files", len(written)))

	return written, nil
}
