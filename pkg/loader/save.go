package loader

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/determined-ai/trainconf/pkg/check"
	"github.com/determined-ai/trainconf/pkg/schemas"
	"github.com/determined-ai/trainconf/pkg/trainconf"
)

// Marshal renders a complete document, with every default written out, that loads back to an
// identical config. The config must be valid and complete.
func Marshal(cfg *trainconf.Config) ([]byte, error) {
	if complete, errs := schemas.IsComplete(cfg); !complete {
		return nil, schemaErrorFromFailures("<unsaved>", errs)
	}
	if err := check.Validate(cfg); err != nil {
		return nil, schemaErrorFromCheck("<unsaved>", err)
	}
	return cfg.Printable()
}

// Save writes the complete document of cfg to w.
func Save(w io.Writer, cfg *trainconf.Config) error {
	byts, err := Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(byts)
	return errors.Wrap(err, "writing config")
}

// SaveFile writes the complete document of cfg to path.
func SaveFile(path string, cfg *trainconf.Config) error {
	byts, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, byts, 0o600), "writing %s", path)
}
