package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"alertdesk.app/intake/internal/definition"
	"alertdesk.app/intake/internal/jsonpath"
)

func runEval(args []string, out io.Writer) error {
	var definitionPath, payloadPath string
	if err := parseFlags("eval", args, func(fs *pflag.FlagSet) {
		fs.StringVarP(&definitionPath, "definition", "d", "", "integration definition (YAML)")
		fs.StringVarP(&payloadPath, "payload", "p", "-", "alert payload (JSON), - for stdin")
	}); err != nil {
		return err
	}
	if definitionPath == "" {
		return errors.New("--definition is required")
	}

	def, err := definition.Load(definitionPath)
	if err != nil {
		return err
	}

	raw, err := readPayload(payloadPath)
	if err != nil {
		return err
	}
	payload, err := jsonpath.Decode(raw)
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	return writeJSON(out, def.Evaluate(payload))
}

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
