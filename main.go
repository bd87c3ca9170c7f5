package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"multigame/agent"
	"multigame/communication/server"
	"multigame/communication/uci"
	"multigame/engine"
	"multigame/experiments"
	"multigame/experiments/metrics"
	"multigame/meta"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: multigame <command> [flags]

commands:
  uci         run the line protocol on stdin and stdout
  serve       serve game sessions over http
  play        let two engines play a game on the console
  tournament  run a round robin tournament from a yaml config
  throughput  measure the search speed of the engines of a yaml config
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "uci":
		err = runUCI(ctx, os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "tournament":
		err = runTournament(ctx, os.Args[2:])
	case "throughput":
		err = runThroughput(ctx, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Msgf("%s failed: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// engineFlags registers the flags of an engine config on fs.
func engineFlags(fs *flag.FlagSet, config *agent.Config, prefix string) *string {
	kind := fs.String(prefix+"kind", string(agent.Default), "engine kind: default, random, minmax or montecarlo")
	fs.IntVar(&config.Depth, prefix+"depth", meta.MAX_DEPTH, "minmax search depth")
	fs.DurationVar(&config.Duration, prefix+"duration", meta.PLAYOUT_DURATION, "montecarlo search duration")
	fs.IntVar(&config.Playouts, prefix+"playouts", 0, "montecarlo playout rounds, 0 for unlimited")
	fs.Uint64Var(&config.Seed, prefix+"seed", 0, "random seed, 0 for a random one")
	fs.StringVar(&config.Book, prefix+"book", "", "opening book file (chess)")
	fs.StringVar(&config.Tablebase, prefix+"tablebase", "", "endgame tablebase url (chess)")
	return kind
}

func runUCI(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("uci", flag.ExitOnError)
	name := fs.String("game", agent.Chess, "game: "+strings.Join(agent.Names(), ", "))
	verbose := fs.Bool("v", false, "debug logging")
	var config agent.Config
	kind := engineFlags(fs, &config, "")
	fs.Parse(args)
	setupLogging(*verbose)
	config.Kind = agent.Kind(*kind)

	p, err := uci.New(os.Stdin, os.Stdout, uci.EngineFactory(agent.Factory(config)), *name)
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	verbose := fs.Bool("v", false, "debug logging")
	var config agent.Config
	kind := engineFlags(fs, &config, "")
	fs.Parse(args)
	setupLogging(*verbose)
	config.Kind = agent.Kind(*kind)

	return server.New(server.EngineFactory(agent.Factory(config))).ListenAndServe(ctx, *addr)
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	name := fs.String("game", agent.TicTacToe, "game: "+strings.Join(agent.Names(), ", "))
	state := fs.String("state", "", "start state, empty for the start position")
	budget := fs.Duration("budget", time.Second, "thinking time per move")
	maxTurns := fs.Int("maxturns", meta.MAX_TURNS, "turns until the game is a draw")
	pgnPath := fs.String("pgn", "", "write the game as PGN to this file (chess)")
	plain := fs.Bool("plain", false, "no colors")
	verbose := fs.Bool("v", false, "debug logging")
	var white, black agent.Config
	whiteKind := engineFlags(fs, &white, "white-")
	blackKind := engineFlags(fs, &black, "black-")
	fs.Parse(args)
	setupLogging(*verbose)
	white.Kind = agent.Kind(*whiteKind)
	black.Kind = agent.Kind(*blackKind)

	g, err := agent.NewGame(*name)
	if err != nil {
		return err
	}
	if *state != "" {
		if err := g.SetState(*state); err != nil {
			return err
		}
	}

	players := make([]*agent.Agent, 2)
	for i, config := range []agent.Config{white, black} {
		e, err := agent.Factory(config)(*name)
		if err != nil {
			return err
		}
		players[i] = agent.New(config.String(), e, *budget)
	}

	console := engine.NewConsole(os.Stdout)
	if *plain {
		console = engine.NewPlainConsole(os.Stdout)
	}
	local := engine.NewLocal(*name, g, players[0], players[1],
		engine.WithMaxTurns(*maxTurns), engine.WithConsole(console))
	result, _, err := local.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Msgf("game over after %d moves in %v", result.TotalMoves, result.Duration)

	if *pgnPath != "" {
		pgn, err := local.PGN(map[string]string{
			"White": players[0].Name,
			"Black": players[1].Name,
			"Date":  result.StartTime.Format("2006.01.02"),
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(*pgnPath, []byte(pgn), 0o644); err != nil {
			return err
		}
		log.Info().Msgf("PGN written to %s", *pgnPath)
	}
	return nil
}

func loadExperiment(name string, args []string) (experiments.Config, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	path := fs.String("config", name+".yaml", "yaml config file")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)
	setupLogging(*verbose)
	return experiments.LoadConfig(*path)
}

func runTournament(ctx context.Context, args []string) error {
	config, err := loadExperiment("tournament", args)
	if err != nil {
		return err
	}
	result, err := experiments.RunTournament(ctx, config)
	if err != nil {
		return err
	}

	for i, s := range result.Standings {
		log.Info().Msgf("%d. %s: %.1f points (%d wins, %d draws, %d losses)",
			i+1, s.Name, s.Points(), s.Wins, s.Draws, s.Losses)
	}

	w, err := metrics.NewWriter(config.Output, config.Name)
	if err != nil {
		return err
	}
	if err := result.Write(w); err != nil {
		return err
	}
	log.Info().Msgf("results written to %s", w.Dir())
	return nil
}

func runThroughput(ctx context.Context, args []string) error {
	config, err := loadExperiment("throughput", args)
	if err != nil {
		return err
	}
	results, err := experiments.RunThroughput(ctx, config)
	if err != nil {
		return err
	}
	w, err := metrics.NewWriter(config.Output, config.Name)
	if err != nil {
		return err
	}
	if err := experiments.WriteThroughput(w, results); err != nil {
		return err
	}
	log.Info().Msgf("results written to %s", w.Dir())
	return nil
}
