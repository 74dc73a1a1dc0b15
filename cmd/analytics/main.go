package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tapqyr/analytics/internal/profile"
	"github.com/tapqyr/analytics/server"
	"github.com/tapqyr/analytics/store"
	"github.com/tapqyr/analytics/store/db"
)

var (
	// version, commit are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "analytics",
	Short:         "Descriptive analytics over users and their todos",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analytics HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 8081, "port of server")
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "database driver")
	flags.String("dsn", "", "database source name(aka. DSN)")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("analytics %s (commit %s)\n", version, commit)
		},
	}
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetEnvPrefix("analytics")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newServeCmd(), newVersionCmd())
}

func serve(ctx context.Context) error {
	if err := profile.LoadDotEnv(); err != nil {
		return err
	}

	instanceProfile := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: version,
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if instanceProfile.IsDev() {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return err
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	if instanceProfile.IsDev() {
		if err := storeInstance.Migrate(ctx); err != nil {
			_ = storeInstance.Close()
			return err
		}
	}

	s, err := server.NewServer(ctx, instanceProfile, storeInstance, logger)
	if err != nil {
		_ = storeInstance.Close()
		return err
	}
	if err := s.Start(ctx); err != nil {
		_ = storeInstance.Close()
		return err
	}

	logger.Info("analytics ready",
		slog.String("version", instanceProfile.Version),
		slog.String("driver", instanceProfile.Driver),
		slog.String("timezone", instanceProfile.Timezone),
	)

	<-ctx.Done()
	// The serve context is already canceled; shutdown gets a fresh deadline.
	s.Shutdown(context.Background())
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
