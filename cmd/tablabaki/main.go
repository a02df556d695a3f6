// tablabaki - backgammon variants from the command line
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/tablabaki/internal/config"
	"github.com/yourusername/tablabaki/pkg/engine"
	"github.com/yourusername/tablabaki/pkg/variant"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "variants":
		err = cmdVariants(ctx, args)
	case "rules":
		err = cmdRules(ctx, args)
	case "play":
		err = cmdPlay(ctx, args)
	case "selfplay":
		err = cmdSelfplay(ctx, args)
	case "replay":
		err = cmdReplay(ctx, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tablabaki - Backgammon Variant Engine

Usage: tablabaki <command> [options]

Commands:
  variants  List the variant catalog
  rules     Show a variant's rules and starting position
  play      Play a variant against the agent in the terminal
  selfplay  Play agent-versus-agent games in parallel
  replay    Replay a MAT transcript and show the final position

Use "tablabaki <command> -h" for command-specific help.

Environment:
  TABLABAKI_VARIANTS_DIR  Directory of variant JSON files (default: built-in catalog)
  TABLABAKI_LOG_LEVEL     Log level for selfplay progress (default: info)`)
}

// openCatalog returns the variant catalog: dir when given, then
// TABLABAKI_VARIANTS_DIR, then the built-in one.
func openCatalog(dir string) *variant.Store {
	if dir == "" {
		var cfg config.Config
		if err := config.ParseEnv(&cfg); err == nil {
			dir = cfg.VariantsDir
		}
	}
	if dir != "" {
		return variant.NewDirStore(dir)
	}
	return variant.NewEmbeddedStore()
}

// newGame loads a variant and starts a game on its layout.
func newGame(ctx context.Context, store *variant.Store, name string, opts ...engine.Option) (*engine.Game, error) {
	rs, layout, err := store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	g, err := engine.NewGame(rs, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.Start(layout); err != nil {
		return nil, err
	}
	return g, nil
}
