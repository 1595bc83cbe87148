package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	"github.com/robotalks/tictac.go/pkg/board/env"
	"github.com/robotalks/tictac.go/pkg/device/joystick"
	fx "github.com/robotalks/tictac.go/pkg/framework"
)

func init() {
	env.SetupFlags()
	joystick.SetupFlags()
}

func main() {
	flag.Parse()

	runner := fx.NewRunnerWith(context.Background()).HandleSignals()
	b := env.NewConfig().MustNewBoard(runner.Context)
	b.Loop.Add(joystick.NewConfig().NewSource(b.Buttons))
	runner.Go(fx.NamedRun("board", b.Loop))
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
