package cli

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/bazaar/internal/output"
)

func newTestParser(t *testing.T) *kong.Kong {
	t.Helper()
	parser, err := kong.New(&CLI{}, kong.Name("bazaar"), kong.Vars{"version": "dev"})
	require.NoError(t, err)
	return parser
}

func TestDescribeCommand(t *testing.T) {
	parser := newTestParser(t)

	node, err := findCommand(parser.Model.Node, "listings create")
	require.NoError(t, err)

	c := describeCommand(node)
	assert.Equal(t, "create", c.Name)

	flags := map[string]commandFlag{}
	for _, f := range c.Flags {
		flags[f.Name] = f
	}
	require.Contains(t, flags, "title")
	assert.Equal(t, "t", flags["title"].Short)
	assert.Contains(t, flags, "image")
	assert.Contains(t, flags, "contact")
}

func TestDescribeRootHidesHiddenFlags(t *testing.T) {
	parser := newTestParser(t)
	c := describeCommand(parser.Model.Node)

	var names []string
	for _, f := range c.Flags {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "base-url")
	assert.NotContains(t, names, "store-password")
	assert.NotContains(t, names, "help")

	var commands []string
	for _, sub := range c.Commands {
		commands = append(commands, sub.Name)
	}
	assert.Subset(t, commands, []string{"auth", "listings", "profile", "config", "schema"})
}

func TestFindCommandUnknown(t *testing.T) {
	parser := newTestParser(t)

	_, err := findCommand(parser.Model.Node, "listings frobnicate")

	var cliErr *output.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, output.ExitUsage, cliErr.ExitCode)
}
