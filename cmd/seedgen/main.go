// Package main provides the seedgen CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/version"
	"github.com/AaronLay10/SeedEngine/internal/world"
	"github.com/AaronLay10/SeedEngine/internal/world/standard"
)

var rootCmd = &cobra.Command{
	Use:   "seedgen",
	Short: "Generate and verify randomizer seeds",
	Long:  `seedgen places items into the world with assumed fill so every seed is completable, archives the results and replays stored layouts.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quietFlag {
			events.SetOutput(nil)
			return
		}
		events.SetOutput(cmd.ErrOrStderr())
	},
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one or more seeds",
	RunE:  runGenerate,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <file|id|hash>",
	Short: "Replay a generated seed and check it is completable",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Describe the world graph for the current settings",
	RunE:  runGraph,
}

var seedsCmd = &cobra.Command{
	Use:   "seeds",
	Short: "Seed archive commands",
}

var seedsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived seeds, newest first",
	RunE:  runSeedsList,
}

var seedsShowCmd = &cobra.Command{
	Use:   "show <id|hash>",
	Short: "Show an archived seed as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeedsShow,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Version)
	},
}

var (
	quietFlag    bool
	settingsPath string
	seedFlag     uint64
	logicFlag    string
	attemptsFlag int
	worldDir     string
	worldPattern string

	countFlag   int
	workersFlag int
	outPath     string
	storeFlag   bool
	publishFlag bool

	spoilerFlag bool
	jsonFlag    bool
	limitFlag   int
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Do not print events to stderr")

	for _, cmd := range []*cobra.Command{generateCmd, graphCmd} {
		cmd.Flags().StringVar(&settingsPath, "settings", config.Getenv("SEEDENGINE_SETTINGS", ""), "Settings YAML file")
		cmd.Flags().Uint64Var(&seedFlag, "seed", 0, "Seed, overrides the settings file")
		cmd.Flags().StringVar(&logicFlag, "logic", "", "Logic mode: normal, hard, glitch_basic, glitch_advanced, glitch_hell")
		cmd.Flags().IntVar(&attemptsFlag, "attempts", 0, "Maximum fill attempts per seed")
		cmd.Flags().StringVar(&worldDir, "world-dir", "", "Directory of world files; the built-in world is used when empty")
		cmd.Flags().StringVar(&worldPattern, "world", "**/*.yaml", "Glob of world files inside --world-dir")
	}

	generateCmd.Flags().IntVarP(&countFlag, "count", "n", 1, "Number of consecutive seeds to generate")
	generateCmd.Flags().IntVar(&workersFlag, "workers", 0, "Parallel fills for --count, 0 for unlimited")
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the seed to this file, or into this directory with --count")
	generateCmd.Flags().BoolVar(&storeFlag, "store", false, "Archive seeds in Postgres (PGHOST) or SQLite")
	generateCmd.Flags().BoolVar(&publishFlag, "publish", false, "Publish seeds to MQTT (MQTT_URL)")

	verifyCmd.Flags().StringVar(&worldDir, "world-dir", "", "Directory of world files the seed was generated from")
	verifyCmd.Flags().StringVar(&worldPattern, "world", "**/*.yaml", "Glob of world files inside --world-dir")
	verifyCmd.Flags().BoolVar(&spoilerFlag, "spoiler", false, "Print the playthrough sphere by sphere")
	graphCmd.Flags().BoolVar(&jsonFlag, "json", false, "Output as JSON")
	seedsListCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of seeds")

	seedsCmd.AddCommand(seedsListCmd)
	seedsCmd.AddCommand(seedsShowCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(seedsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings reads --settings and applies the flag overrides.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	s := config.Default()
	if settingsPath != "" {
		loaded, err := config.LoadSettings(settingsPath)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	if cmd.Flags().Changed("seed") {
		s.Seed = seedFlag
	}
	if logicFlag != "" {
		mode, err := config.ParseLogicMode(logicFlag)
		if err != nil {
			return nil, &config.ValidationError{Field: "logic", Detail: err.Error()}
		}
		s.Logic = mode
	}
	if cmd.Flags().Changed("attempts") {
		s.MaxAttempts = attemptsFlag
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadWorld builds the world s plays in.
func loadWorld(s *config.Settings) (*world.Definition, error) {
	if worldDir != "" {
		return world.LoadFiles(os.DirFS(worldDir), worldPattern)
	}
	return standard.Definition(s)
}
