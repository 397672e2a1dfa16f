package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/urfave/cli"
)

// Validate every config file given as an argument.
func validateConfigs(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("missing config file argument")
	}

	var failed []error
	for _, path := range ctx.Args() {
		f, err := config.Load(path)
		if err == nil {
			err = f.Validate(filepath.Dir(path))
		}
		if err != nil {
			logger.Errorf("%s: %v", path, err)
			failed = append(failed, fmt.Errorf("%s: %w", path, err))
			continue
		}
		logger.Noticef("%s: ok", path)
	}
	return errors.Join(failed...)
}
