package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"archconv/internal/pipeline"
)

// progressView renders conversion events: a progress bar on a terminal,
// plain step lines otherwise.
type progressView struct {
	out         io.Writer
	interactive bool
	converter   *pipeline.Converter
	bar         *progressbar.ProgressBar
}

func newProgressView(out io.Writer, converter *pipeline.Converter, quiet bool) *progressView {
	return &progressView{
		out:         out,
		interactive: !quiet && isTerminal(out),
		converter:   converter,
	}
}

func (v *progressView) listeners(quiet bool) pipeline.Listeners {
	if quiet {
		return pipeline.Listeners{}
	}
	return pipeline.Listeners{
		Step: func(message string) {
			if !v.interactive {
				fmt.Fprintln(v.out, message)
				return
			}
			if v.bar == nil {
				v.bar = newBar(v.out, v.converter.MaxProgress())
			}
			v.bar.Describe(message)
		},
		Progress: func(count int64) {
			if v.bar != nil {
				_ = v.bar.Set64(count)
			}
		},
	}
}

// finish stops the bar, filling it only when the run succeeded.
func (v *progressView) finish(success bool) {
	if v.bar == nil {
		return
	}
	if success {
		_ = v.bar.Finish()
	} else {
		_ = v.bar.Exit()
	}
	fmt.Fprintln(v.out)
}

func newBar(out io.Writer, max int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
