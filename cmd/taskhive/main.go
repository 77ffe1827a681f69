package main

import (
	"github.com/taskhive/taskhive/adapter/cli"
	"github.com/taskhive/taskhive/pkg/observability"
)

func main() {
	cli.SetLogger(observability.LoggerFromEnv())
	cli.Execute()
}
