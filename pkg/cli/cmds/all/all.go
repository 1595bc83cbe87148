// Package all registers all command providers.
package all

import (
	_ "github.com/robotalks/tictac.go/pkg/cli/cmds/peer"
)
