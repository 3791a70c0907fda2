package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReveal(t *testing.T) {
	e := newExecutor(t)

	e.Run(t, "mintreveal", "reveal", "--seed", "42", "--supply", "10")
	require.Equal(t, []string{"0: 9", "1: 6", "2: 0", "3: 7", "4: 4", "5: 8", "6: 3", "7: 2", "8: 5", "9: 1"}, e.lines())

	e.Run(t, "mintreveal", "reveal", "--seed", "0x2a", "--supply", "10", "--from", "2", "--to", "4")
	require.Equal(t, []string{"2: 0", "3: 7"}, e.lines())

	e.Run(t, "mintreveal", "reveal", "-s", "0", "-n", "5", "--from", "4")
	require.Equal(t, []string{"4: 3"}, e.lines())

	e.RunWithError(t, "mintreveal", "reveal", "--seed", "42", "--supply", "10", "--to", "11")
	e.RunWithError(t, "mintreveal", "reveal", "--seed", "forty-two", "--supply", "10")
	e.RunWithError(t, "mintreveal", "reveal", "--seed", "42", "--supply", "10", "extra")
}
