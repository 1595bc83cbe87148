package env

import (
	"github.com/denisbrodbeck/machineid"
)

// MachineID retrieves an ID identifying the board, derived from the
// machine ID so it's stable and doesn't expose the raw one.
func MachineID() (string, error) {
	id, err := machineid.ProtectedID("tictac")
	if err != nil {
		return "", err
	}
	return id[:12], nil
}
