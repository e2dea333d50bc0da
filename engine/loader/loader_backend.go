package loader

import (
	"context"

	"github.com/Carmen-Shannon/oxy-tutorial/engine/model"
)

// readFunc fetches a file referenced by a model, such as a material library.
type readFunc func(ctx context.Context, name string) ([]byte, error)

// loaderBackend defines the generic interface for importing models from their source bytes.
// Concrete implementations (e.g., objLoaderBackendImpl) handle format-specific details.
type loaderBackend interface {
	// Import parses a model file. Files the model references are fetched through read, with
	// names resolved relative to the model's own name.
	//
	// Parameters:
	//   - ctx: cancels reads of referenced files
	//   - name: the model's asset name
	//   - data: the model file contents
	//   - read: fetches referenced files; its errors are returned as *AssetError with ErrIO
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if parsing fails
	Import(ctx context.Context, name string, data []byte, read readFunc) (*model.ImportedModel, error)

	// Extensions lists the lower-case file extensions the backend accepts, including the dot.
	Extensions() []string
}
