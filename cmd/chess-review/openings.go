package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/park285/Cheese-GameReview/internal/chess/openingbook"
	"github.com/park285/Cheese-GameReview/internal/config"
)

func newOpeningsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "openings <san moves...>",
		Short: "Name the opening a line of moves reaches",
		Example: `  chess-review openings e4 e5 Nf3 Nc6 Bc4
  chess-review openings "1. d4 d5 2. c4"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			book, err := openingbook.New(openingbook.Options{
				CatalogPath:  cfg.OpeningCatalogPath,
				PolyglotPath: cfg.OpeningBookPath,
			})
			if err != nil {
				return err
			}
			return printOpenings(cmd, book, openingbook.SplitLine(strings.Join(args, " ")))
		},
	}
}

func printOpenings(cmd *cobra.Command, book *openingbook.Book, san []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(strings.Join(san, " ")))

	if e, ok := book.Describe(san); ok {
		fmt.Fprintf(out, "catalog: %s %s\n", e.ECO, e.Name)
		if e.Description != "" {
			fmt.Fprintln(out, mutedStyle.Render(e.Description))
		}
	} else if name, ok := book.Lookup(san); ok {
		fmt.Fprintf(out, "book: %s\n", name)
	} else {
		fmt.Fprintln(out, mutedStyle.Render("catalog: no exact line"))
	}

	code, title, ok := book.Label(san)
	if !ok {
		fmt.Fprintln(out, mutedStyle.Render("eco: unknown"))
		return nil
	}
	fmt.Fprintf(out, "eco: %s %s\n", code, title)
	if style, ok := book.Style(code); ok {
		fmt.Fprintf(out, "style: %s\n", style.Label)
	}

	suggestions, err := book.Suggest(san)
	if err != nil {
		return err
	}
	for i, s := range suggestions {
		if i == 5 {
			break
		}
		fmt.Fprintf(out, "  %-6s %-5s weight %d\n", s.SAN, s.Move, s.Weight)
	}
	return nil
}
