package main

import (
	"github.com/robotalks/tictac.go/pkg/board/env"
	"github.com/robotalks/tictac.go/pkg/cli/sh"

	_ "github.com/robotalks/tictac.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
