package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/graph"
	"github.com/matzehuels/beltwright/pkg/library"
	"github.com/matzehuels/beltwright/pkg/registry"
)

// bundleCommand creates the bundle command.
func (c *CLI) bundleCommand() *cobra.Command {
	var nodes []int
	var name string

	cmd := &cobra.Command{
		Use:   "bundle [file]",
		Short: "Package selected nodes of a circuit into the library",
		Long: `Package selected nodes of a circuit into the library.

The selection keeps only the edges among its nodes; it exposes ports through
its own source and sink nodes. Nested packages are stored alongside.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: circuitFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateName(name); err != nil {
				return err
			}
			return c.runBundle(cmd.Context(), args[0], nodes, name)
		},
	}

	cmd.Flags().IntSliceVarP(&nodes, "nodes", "n", nil, "node ids to bundle (comma-separated)")
	cmd.Flags().StringVar(&name, "name", "", "package name")
	_ = cmd.MarkFlagRequired("nodes")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (c *CLI) runBundle(ctx context.Context, input string, nodes []int, name string) error {
	loaded, err := c.load(ctx, input)
	if err != nil {
		return err
	}

	sel := make([]graph.NodeID, len(nodes))
	for i, id := range nodes {
		sel[i] = graph.NodeID(id)
	}
	p, err := loaded.Registry.Bundle(loaded.Graph, sel, name)
	if err != nil {
		return err
	}

	lib, err := openLibrary(c.mustConfig())
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.Put(ctx, withChildren(loaded.Registry, p)...); err != nil {
		return err
	}
	printSuccess("Bundled %s", name)
	printKeyValue("Hash", p.Hash)
	printKeyValue("Ports", fmt.Sprint(len(p.Template.Ports)))
	printNewline()
	printNextStep("Expand it on export", fmt.Sprintf("%s export --library <file>", appName))
	return nil
}

// withChildren returns p followed by every package it nests.
func withChildren(reg *registry.Registry, p *graph.PackageModel) []*graph.PackageModel {
	out := []*graph.PackageModel{p}
	for _, h := range p.ChildHashes {
		if c, ok := reg.Get(h); ok {
			out = append(out, c)
		}
	}
	return out
}

// =============================================================================
// Library Commands
// =============================================================================

// libraryCommand creates the package library command.
func (c *CLI) libraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage the package library",
	}

	cmd.AddCommand(c.libraryAddCommand())
	cmd.AddCommand(c.libraryListCommand())
	cmd.AddCommand(c.libraryShowCommand())
	cmd.AddCommand(c.libraryRemoveCommand())

	return cmd
}

// withLibrary opens the library for the duration of fn.
func (c *CLI) withLibrary(fn func(*library.Store) error) error {
	lib, err := openLibrary(c.mustConfig())
	if err != nil {
		return err
	}
	defer lib.Close()
	return fn(lib)
}

func (c *CLI) libraryAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "add [file...]",
		Short:             "Store every package of the given documents",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: circuitFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withLibrary(func(lib *library.Store) error {
				total := 0
				for _, path := range args {
					loaded, err := c.load(ctx, path)
					if err != nil {
						return err
					}
					var pkgs []*graph.PackageModel
					for _, h := range loaded.Registry.Hashes() {
						p, _ := loaded.Registry.Get(h)
						pkgs = append(pkgs, p)
					}
					if err := lib.Put(ctx, pkgs...); err != nil {
						return err
					}
					c.Logger.Debug("stored packages", "file", path, "count", len(pkgs))
					total += len(pkgs)
				}
				printSuccess("Stored %d packages", total)
				return nil
			})
		},
	}
}

func (c *CLI) libraryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored packages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(func(lib *library.Store) error {
				entries, err := lib.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					printInfo("Library is empty")
					return nil
				}
				fmt.Fprintln(stdout, entryTable(entries))
				return nil
			})
		},
	}
}

// entryTable renders library entries; stale rows are highlighted.
func entryTable(entries []library.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			shortHash(e.Hash),
			e.Name,
			fmt.Sprint(e.Nodes),
			fmt.Sprint(len(e.Children)),
			e.AddedAt.Format("2006-01-02"),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Hash", "Name", "Nodes", "Nested", "Added").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if entries[row].Stale() {
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			if col == 0 || col == 4 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

// shortHash abbreviates a content address for display.
func shortHash(h string) string {
	v, digest, ok := strings.Cut(h, ":")
	if !ok || len(digest) <= 12 {
		return h
	}
	return v + ":" + digest[:12]
}

func (c *CLI) libraryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [hash]",
		Short: "Show a stored package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(func(lib *library.Store) error {
				p, err := lib.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printKeyValue("Name", p.Name)
				printKeyValue("Hash", p.Hash)
				printKeyValue("Nodes", fmt.Sprint(p.Graph.NodeCount()))
				printKeyValue("Edges", fmt.Sprint(p.Graph.EdgeCount()))
				printKeyValue("Nested", fmt.Sprint(len(p.ChildHashes)))
				if registry.IsStale(p.Hash) {
					printWarning("Hashed with an older scheme, run: %s migrate --library", appName)
				}
				for i, port := range p.Template.Ports {
					printDetail("port %d: %s item %d ×%d (node %d)", i, port.Dir, port.ItemID, port.Count, port.NodeID)
				}
				return nil
			})
		},
	}
}

func (c *CLI) libraryRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [hash...]",
		Aliases: []string{"remove"},
		Short:   "Remove packages and every package nesting them",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withLibrary(func(lib *library.Store) error {
				reg, err := lib.Registry(ctx)
				if err != nil {
					return err
				}
				var removed []string
				for _, h := range args {
					gone := reg.Delete(h)
					if len(gone) == 0 {
						printWarning("%s is not in the library", h)
					}
					removed = append(removed, gone...)
				}
				n, err := lib.Delete(ctx, removed...)
				if err != nil {
					return err
				}
				printSuccess("Removed %d packages", n)
				for _, h := range removed {
					printDetail("%s", h)
				}
				return nil
			})
		},
	}
}
