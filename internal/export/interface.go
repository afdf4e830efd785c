package export

import "github.com/quixio/tributary/internal/convert"

// Exporter renders a conversion result into one target format
type Exporter interface {
	// Export serializes the conversion output
	Export(output *convert.Output) ([]byte, error)

	// Name returns the exporter name (e.g. "yaml", "json")
	Name() string
}
