package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProposalsCommandTree(t *testing.T) {
	t.Parallel()

	cmd := proposalsCommand()

	names := make([]string, 0, len(cmd.Commands))
	for _, sub := range cmd.Commands {
		names = append(names, sub.Name)
	}

	require.ElementsMatch(t, []string{"list", "approve", "reject", "execute", "history", "delete"}, names)
}
