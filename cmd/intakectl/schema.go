package main

import (
	"io"

	"alertdesk.app/intake/internal/definition"
)

func runSchema(out io.Writer) error {
	schema, err := definition.Schema()
	if err != nil {
		return err
	}
	_, err = out.Write(schema)
	return err
}
