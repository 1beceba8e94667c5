// This tool prints the production metadata extracted from the passed wav file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/prodsound/wavmeta"
)

const missingPathMessage = "You must pass the path of the file to read"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("metadata", flag.ContinueOnError)

	noHeuristics := flagSet.Bool("no-heuristics", false, "disable free-text pattern extraction")
	debug := flagSet.Bool("debug", false, "dump chunk diagnostics while reading")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() < 1 {
		return errMissingPath
	}

	var opts []wavmeta.Option
	if *noHeuristics {
		opts = append(opts, wavmeta.WithoutHeuristics())
	}

	if *debug {
		opts = append(opts, wavmeta.WithDebugOutput(out))
	}

	rec := wavmeta.ReadFile(flagSet.Arg(0), opts...)
	if rec.Error != "" {
		return errors.New(rec.Error)
	}

	for _, name := range wavmeta.FieldNames {
		fmt.Fprintf(out, "%s: %s\n", name, rec.Get(name))
	}

	return nil
}
