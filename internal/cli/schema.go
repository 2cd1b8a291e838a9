package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/semmy-space/bazaar/internal/output"
)

// SchemaCmd prints the command tree as JSON for scripts
type SchemaCmd struct {
	Command string `arg:"" optional:"" help:"Command path to describe (e.g. 'listings create')"`
}

type schemaDoc struct {
	Command   *commandNode `json:"command"`
	ExitCodes []exitCode   `json:"exit_codes,omitempty"`
}

type commandNode struct {
	Name     string         `json:"name"`
	Help     string         `json:"help,omitempty"`
	Aliases  []string       `json:"aliases,omitempty"`
	Flags    []commandFlag  `json:"flags,omitempty"`
	Args     []commandArg   `json:"args,omitempty"`
	Commands []*commandNode `json:"commands,omitempty"`
}

type commandFlag struct {
	Name    string   `json:"name"`
	Short   string   `json:"short,omitempty"`
	Help    string   `json:"help,omitempty"`
	Type    string   `json:"type"`
	Default string   `json:"default,omitempty"`
	Enum    []string `json:"enum,omitempty"`
	Env     string   `json:"env,omitempty"`
}

type commandArg struct {
	Name     string `json:"name"`
	Help     string `json:"help,omitempty"`
	Required bool   `json:"required,omitempty"`
}

type exitCode struct {
	Code    int    `json:"code"`
	Meaning string `json:"meaning"`
}

var exitCodes = []exitCode{
	{output.ExitOK, "success"},
	{output.ExitGeneral, "general error"},
	{output.ExitUsage, "invalid usage or input"},
	{output.ExitAuth, "not logged in, or the session was rejected"},
	{output.ExitNotFound, "listing or account not found"},
	{output.ExitForbidden, "not allowed to change this listing"},
	{output.ExitValidation, "backend rejected the input"},
	{output.ExitTimeout, "request timed out"},
	{output.ExitAPIError, "backend error"},
	{output.ExitConfigError, "configuration error"},
	{output.ExitNetworkError, "backend unreachable"},
	{output.ExitRateLimit, "rate limited"},
}

// Run executes the schema command
func (cmd *SchemaCmd) Run(ctx *kong.Context) error {
	node, err := findCommand(ctx.Model.Node, cmd.Command)
	if err != nil {
		return err
	}

	doc := schemaDoc{Command: describeCommand(node)}
	if node == ctx.Model.Node {
		doc.ExitCodes = exitCodes
	}

	enc := json.NewEncoder(ctx.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func describeCommand(node *kong.Node) *commandNode {
	c := &commandNode{Name: node.Name, Help: node.Help, Aliases: node.Aliases}

	for _, f := range node.Flags {
		if f.Name == "help" || f.Hidden {
			continue
		}
		cf := commandFlag{Name: f.Name, Help: f.Help, Type: "string", Default: f.Default}
		if f.Value != nil && f.Value.Target.IsValid() {
			cf.Type = f.Value.Target.Type().String()
		}
		if f.Short != 0 {
			cf.Short = string(f.Short)
		}
		if f.Enum != "" {
			cf.Enum = strings.Split(f.Enum, ",")
		}
		if len(f.Envs) > 0 {
			cf.Env = f.Envs[0]
		}
		c.Flags = append(c.Flags, cf)
	}

	for _, a := range node.Positional {
		c.Args = append(c.Args, commandArg{Name: a.Name, Help: a.Help, Required: a.Required})
	}

	for _, child := range node.Children {
		if child.Hidden {
			continue
		}
		c.Commands = append(c.Commands, describeCommand(child))
	}
	return c
}

// findCommand resolves a space-separated command path below root.
func findCommand(root *kong.Node, path string) (*kong.Node, error) {
	current := root
	for _, part := range strings.Fields(path) {
		var next *kong.Node
		for _, child := range current.Children {
			if child.Name == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil, output.NewCLIError(output.ExitUsage, fmt.Sprintf("Unknown command: %s", path)).
				WithHint("Run: bazaar schema")
		}
		current = next
	}
	return current, nil
}
