package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/vk/movegen/internal/output"
	"github.com/vk/movegen/internal/session"
)

// Report describes a finished generation.
type Report struct {
	Dir      string
	Bindings []*session.Result
	Output   output.Result
}

// ErrInvalidManifest marks manifest validation failures.
var ErrInvalidManifest = errors.New("invalid manifest")

// Generate loads the manifest, generates every binding it declares and
// writes the result. Nothing is written unless every binding succeeded.
func (a *App) Generate(ctx context.Context) (report *Report, err error) {
	ctx = a.context(ctx)
	a.logger.Debug("App.Generate method started.", "manifest", a.config.ManifestPaths)

	m, err := a.loader.Load(ctx, a.config.ManifestPaths...)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	a.logger.Debug("Manifest loaded.", "bindings", len(m.Bindings), "networks", m.Networks.Names())

	dir := m.Output.Dir
	if a.config.OutputDir != "" {
		dir = a.config.OutputDir
	}

	s := session.New(m.Output.ImportPath, session.NetworkDialer(m.Networks))
	defer func() {
		if cerr := s.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	a.logger.Info("Starting generation.", "bindings", len(m.Bindings), "import_path", m.Output.ImportPath)
	results, err := s.Run(ctx, m.Bindings)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	res, err := output.Write(ctx, dir, session.Files(results))
	if err != nil {
		return nil, fmt.Errorf("failed to write bindings: %w", err)
	}
	a.logger.Debug("App.Generate method finished.")
	return &Report{Dir: dir, Bindings: results, Output: res}, nil
}
