package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/logging"
	"github.com/dmitrijs2005/fitmacro/internal/server/config"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fitmacro/internal/server/seed"
	"github.com/dmitrijs2005/fitmacro/internal/server/services"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// adminApp is the database handle plus the services the commands need.
// The caller must defer close().
type adminApp struct {
	db      *sql.DB
	rm      repomanager.RepositoryManager
	cfg     *config.Config
	logger  logging.Logger
	users   *services.UserService
	catalog *services.CatalogService
	diary   *services.DiaryService
	goals   *services.GoalService
	weights *services.WeightService
}

func (a *adminApp) close() {
	_ = a.db.Close()
}

func newAdminApp(cmd *cobra.Command) (*adminApp, error) {
	cfg := config.LoadConfig()
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing repositories: %w", err)
	}

	agg := services.NewAggregatorService(db, rm)
	return &adminApp{
		db:     db,
		rm:     rm,
		cfg:    cfg,
		logger: logger,
		users:  services.NewUserService(db, rm, cfg),
		// the admin tool never imports from the external API
		catalog: services.NewCatalogService(db, rm, nil, logger),
		diary:   services.NewDiaryService(db, rm, agg, nil, logger),
		goals:   services.NewGoalService(db, rm, agg, cfg.TrendWindowDays),
		weights: services.NewWeightService(db, rm),
	}, nil
}

var rootCmd = &cobra.Command{
	Use:          "fitmacro-admin",
	Short:        "FitMacro maintenance tool",
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAdminApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.rm.RunMigrations(cmd.Context(), a.db); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
		return nil
	},
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account",
	Long: "Create an account. Without --password the value of FITMACRO_USER_PASSWORD\n" +
		"is used, and without that a random password is generated and printed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		generated := false
		if password == "" {
			password = os.Getenv("FITMACRO_USER_PASSWORD")
		}
		if password == "" {
			p, err := common.MakeRandHexString(8)
			if err != nil {
				return err
			}
			password, generated = p, true
		}

		a, err := newAdminApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		u, err := a.users.Register(cmd.Context(), username, password)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "User created: %s (%s)\n", u.UserName, u.ID)
		if generated {
			fmt.Fprintf(out, "Password: %s\n", password)
		}
		fmt.Fprintf(out, "To load demo data run: fitmacro-admin seed --user %s\n", u.UserName)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo foods, goal, weights and meals for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("user")

		a, err := newAdminApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		s := seed.NewSeeder(a.users, a.catalog, a.diary, a.goals, a.weights, a.logger)
		rep, err := s.Seed(cmd.Context(), username)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Foods created:   %d\n", rep.Foods)
		fmt.Fprintf(out, "Goal created:    %t\n", rep.Goal)
		fmt.Fprintf(out, "Weights logged:  %d\n", rep.Weights)
		fmt.Fprintf(out, "Entries created: %d\n", rep.Entries)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (overrides configuration)")

	createUserCmd.Flags().String("username", "testuser", "User name")
	createUserCmd.Flags().String("password", "", "Password")
	seedCmd.Flags().String("user", "admin", "User to load data for")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.SetContext(context.Background())
}
