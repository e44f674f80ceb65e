package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"alertdesk.app/intake/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
