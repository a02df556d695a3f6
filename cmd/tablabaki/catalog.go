package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yourusername/tablabaki/internal/positionid"
	"github.com/yourusername/tablabaki/pkg/match"
)

func cmdVariants(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("variants", flag.ExitOnError)
	dir := fs.String("dir", "", "Directory of variant JSON files")
	fs.Parse(args)

	store := openCatalog(*dir)
	names, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		def, err := store.Get(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("%-14s %s\n", name, def.Description)
	}
	return nil
}

func cmdRules(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rules", flag.ExitOnError)
	dir := fs.String("dir", "", "Directory of variant JSON files")
	raw := fs.Bool("json", false, "Print the raw variant definition")
	fs.Parse(args)

	name := "standard"
	if fs.NArg() > 0 {
		name = fs.Arg(0)
	}
	store := openCatalog(*dir)

	if *raw {
		data, err := store.Raw(ctx, name)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		fmt.Println()
		return nil
	}

	g, err := newGame(ctx, store, name)
	if err != nil {
		return err
	}
	p := g.Rules().Params
	fmt.Printf("Variant: %s\n", name)
	fmt.Printf("Points: %d  Directions: white %+d, black %+d\n", p.Points, p.Directions[0], p.Directions[1])
	fmt.Println()
	fmt.Println("Rules:")
	for i, line := range g.Rules().Describe() {
		fmt.Printf("  %d. %s\n", i+1, line)
	}
	fmt.Println()
	fmt.Println("Starting position:")
	b := g.Board()
	fmt.Println(b.String())
	fmt.Printf("Position ID: %s\n", positionid.Encode(b))
	return nil
}

func cmdReplay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	dir := fs.String("dir", "", "Directory of variant JSON files")
	verbose := fs.Bool("v", false, "Print every turn")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: tablabaki replay [-v] <file.mat>")
		os.Exit(1)
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := match.ImportMAT(f)
	if err != nil {
		return err
	}
	name := m.Variant
	if name == "" {
		name = "standard"
	}
	rs, layout, err := openCatalog(*dir).Load(ctx, name)
	if err != nil {
		return err
	}

	for _, tr := range m.Games {
		g, err := match.Replay(tr, rs, layout)
		if err != nil {
			return err
		}
		fmt.Printf("Game %d: %d turns\n", tr.Number, tr.Turns())
		if *verbose {
			for _, seq := range g.History() {
				fmt.Printf("  %s\n", seq)
			}
		}
		b := g.Board()
		fmt.Println(b.String())
		fmt.Printf("Position ID: %s\n", positionid.Encode(b))
		if g.GameOver() {
			fmt.Printf("%s wins (%s)\n\n", g.Winner(), match.Classify(b, g.Winner()))
		} else {
			fmt.Printf("%s to play\n\n", g.Turn())
		}
	}
	return nil
}
