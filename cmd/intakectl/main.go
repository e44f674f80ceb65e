// intakectl evaluates and imports alert integration definitions.
//
//	intakectl eval --definition prometheus.yaml --payload alert.json
//	intakectl import --definition prometheus.yaml
//	intakectl schema
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return errors.New("missing command")
	}

	switch args[0] {
	case "eval":
		return runEval(args[1:], out)
	case "import":
		return runImport(ctx, args[1:], out)
	case "schema":
		return runSchema(out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func parseFlags(name string, args []string, setup func(fs *pflag.FlagSet)) error {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	setup(fs)
	return fs.Parse(args)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `Usage: intakectl <command> [flags]

Commands:
  eval     Run filter rules and field mappings from a definition against a payload
  import   Create the integration described by a definition
  schema   Print the JSON Schema of the definition format
`)
}
