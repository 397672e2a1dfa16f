package main

import (
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/urfave/cli"
)

var logger = log.New("oxyrender")

// setupLogging applies the config file's level, then the verbosity flags.
func setupLogging(ctx *cli.Context, f config.File) {
	if level, err := f.LogLevel(); err == nil {
		log.SetLevel(level)
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
