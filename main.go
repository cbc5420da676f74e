package main

import (
	"os"

	"github.com/pyromage/micro-oidc/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
