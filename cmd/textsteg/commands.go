package main

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/alecthomas/kong"

	"github.com/zedseven/textsteg"
	"github.com/zedseven/textsteg/internal/parallel"
)

type hideCmd struct {
	Img     string `help:"Image to hide the message in (png, bmp, gif or jpeg)." required:"" type:"existingfile"`
	Out     string `help:"Where to write the result. A .bmp extension writes a BMP without transparency, anything else is written as PNG." required:""`
	Message string `help:"Text to hide." short:"m"`
	File    string `help:"UTF-8 text file to hide." type:"existingfile"`
}

func (c *hideCmd) Validate(kctx *kong.Context) error {
	switch {
	case c.Message == "" && c.File == "":
		return fmt.Errorf("one of --message or --file is required")
	case c.Message != "" && c.File != "":
		return fmt.Errorf("--message and --file can't be used together")
	}
	return nil
}

func (c *hideCmd) Run(rc *runContext) error {
	outPath, err := textsteg.Hide(&textsteg.HideConfig{
		ImagePath:   c.Img,
		Message:     c.Message,
		MessagePath: c.File,
		OutPath:     c.Out,
	}, rc.Level)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(rc.Stdout, outPath)
	return err
}

type digCmd struct {
	Img     string `help:"Image with a hidden message." required:"" type:"existingfile"`
	Out     string `help:"File to write the message to. Printed to stdout if empty."`
	Lenient bool   `help:"Replace invalid UTF-8 with U+FFFD instead of failing."`
}

func (c *digCmd) Run(rc *runContext) error {
	text, err := textsteg.Dig(textsteg.DigConfig{
		ImagePath:   c.Img,
		OutPath:     c.Out,
		Lenient:     c.Lenient,
		OutputLevel: rc.Level,
	})
	if err != nil {
		return err
	}

	if c.Out == "" {
		_, err = fmt.Fprintln(rc.Stdout, text)
	}
	return err
}

type capacityCmd struct {
	Images  []string `arg:"" help:"Images to inspect." type:"existingfile"`
	Workers int      `help:"Number of images to inspect at once. Defaults to the number of CPUs." default:"0"`
}

func (c *capacityCmd) Run(rc *runContext) error {
	pool := parallel.Start(c.Workers)

	infos := make([]textsteg.ImageInfo, len(c.Images))
	failed := make([]bool, len(c.Images))
	var errCount atomic.Uint64
	for i, imgPath := range c.Images {
		pool.Do(func() {
			info, err := textsteg.ImageCapacity(imgPath)
			if err != nil {
				errCount.Add(1)
				failed[i] = true
				slog.Error("could not inspect image", "path", imgPath, "error", err)
				return
			}
			infos[i] = info
		})
	}
	pool.Wait(true)

	for i, info := range infos {
		if failed[i] {
			continue
		}
		if _, err := fmt.Fprintln(rc.Stdout, info); err != nil {
			return err
		}
	}

	if errs := errCount.Load(); errs > 0 {
		return fmt.Errorf("could not inspect %d of %d images", errs, len(c.Images))
	}
	return nil
}

type versionCmd struct{}

func (c *versionCmd) Run(rc *runContext) error {
	_, err := fmt.Fprintf(rc.Stdout, "textsteg v%v\n", textsteg.Version())
	return err
}
