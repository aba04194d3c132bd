package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/zedseven/textsteg"
	"github.com/zedseven/textsteg/internal/config"
)

// Program entry point

type cli struct {
	Output string          `help:"How much output to provide (nothing, steps, info, debug)." enum:"nothing,steps,info,debug" default:"steps"`
	Config kong.ConfigFlag `help:"YAML file to read flag defaults from."`

	Hide     hideCmd     `cmd:"" help:"Hide a text message in an image."`
	Dig      digCmd      `cmd:"" help:"Extract a text message hidden in an image."`
	Capacity capacityCmd `cmd:"" help:"Report how much text each image can hold."`
	Version  versionCmd  `cmd:"" help:"Print the version."`
}

// runContext is handed to every command's Run method.
type runContext struct {
	Level  textsteg.OutputLevel
	Stdout io.Writer
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("textsteg"),
		kong.Description("Hides UTF-8 text in the least-significant bits of an image's colour channels."),
		kong.UsageOnError(),
		kong.Configuration(config.YAML, config.DefaultPaths...),
	)

	level := textsteg.StringToOutputLevel(c.Output)
	slog.SetDefault(textsteg.NewLogger(os.Stderr, level))

	if err := kctx.Run(&runContext{Level: level, Stdout: os.Stdout}); err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
