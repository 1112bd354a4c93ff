package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/peterbourgon/ff/v3"
	log "github.com/sirupsen/logrus"

	"github.com/hverr/gviz"
	"github.com/hverr/gviz/render"
)

func main() {
	if err := run(os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(args []string, r io.Reader, w io.Writer, wErr io.Writer) error {
	flags := flag.NewFlagSet("gviz", flag.ContinueOnError)
	flags.SetOutput(wErr)
	format := flags.String("T", "cmapx", "output format, name[:renderer[:library]]")
	output := flags.String("o", "", "write output to `file` instead of stdout")
	listFormats := flags.Bool("formats", false, "list the supported output formats and exit")
	verbose := flags.Bool("v", false, "verbose logging")

	if err := ff.Parse(flags, args[1:], ff.WithEnvVarPrefix("GVIZ")); err != nil {
		return err
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *listFormats {
		for _, f := range render.Default().List() {
			fmt.Fprintln(w, f)
		}
		return nil
	}

	in := r
	if rest := flags.Args(); len(rest) > 0 {
		f, err := os.Open(rest[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	out := w
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return gviz.ParseAndDraw(in, *format, out)
}
