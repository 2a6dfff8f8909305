package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jagritiyatra/alumnidex/internal/app"
	"github.com/jagritiyatra/alumnidex/internal/config"
	"github.com/jagritiyatra/alumnidex/internal/db"
	logpkg "github.com/jagritiyatra/alumnidex/internal/logger"
	searchuc "github.com/jagritiyatra/alumnidex/internal/usecase/search"
	"github.com/jagritiyatra/alumnidex/internal/version"
)

var (
	env      string
	userKey  string
	jsonOut  bool
	seedFile string
)

// session is one opened store with the services wired over it.
type session struct {
	store db.Store
	app   *app.App
	log   *zap.Logger
}

func (s *session) close() {
	s.app.Close()
	s.store.Close()
	_ = s.log.Sync()
}

func open(ctx context.Context) (*session, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, err
	}
	log, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	store, err := app.OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a, err := app.Build(ctx, app.Params{
		Store:  store,
		Prefix: cfg.Database.KeyPrefix,
		LLM:    &cfg.LLM,
		Search: cfg.Search,
		Logger: log,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return &session{store: store, app: a, log: log}, nil
}

// SeedHandler loads profiles from a YAML or JSON file into the store.
func SeedHandler(cmd *cobra.Command, _ []string) error {
	ps, err := readProfiles(seedFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.app.Profiles.UpsertMany(ctx, ps); err != nil {
		return fmt.Errorf("store profiles: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d profiles from %s\n", len(ps), seedFile)
	return nil
}

// AskHandler runs one search turn.
func AskHandler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	reply := s.app.Search.Search(logpkg.ContextWithLogger(ctx, s.log), strings.Join(args, " "), userKey)
	return printReply(cmd.OutOrStdout(), reply)
}

// MoreHandler shows the next page of the last search.
func MoreHandler(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	reply := s.app.Search.ShowMore(logpkg.ContextWithLogger(ctx, s.log), userKey)
	return printReply(cmd.OutOrStdout(), reply)
}

func printReply(w io.Writer, reply searchuc.Reply) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	}
	_, err := fmt.Fprintln(w, reply.Text)
	return err
}

// NewCLI builds the alumnictl command tree.
func NewCLI() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load profiles from a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE:  SeedHandler,
	}
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Profiles file (.yaml, .yml or .json)")
	_ = seedCmd.MarkFlagRequired("file")

	askCmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send a chat message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE:  AskHandler,
	}

	moreCmd := &cobra.Command{
		Use:   "more",
		Short: "Show the next page of the last search",
		Args:  cobra.NoArgs,
		RunE:  MoreHandler,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of alumnictl",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "alumnictl version %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}

	rootCmd := &cobra.Command{
		Use:           "alumnictl",
		Short:         "Operate the alumni directory search core",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "Config environment (reads config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVarP(&userKey, "user", "u", "cli", "User key the turn belongs to")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print the full reply as JSON")

	rootCmd.AddCommand(seedCmd, askCmd, moreCmd, versionCmd)
	return rootCmd
}
