package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/safetrack/safetrack/engine"
	"github.com/safetrack/safetrack/journal"
	"github.com/safetrack/safetrack/repository"
	"github.com/safetrack/safetrack/server"
	service_registry "github.com/safetrack/safetrack/srvreg"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "safetrack",
		Short:   "Workplace safety inspection tracker",
		Long:    "Safetrack schedules periodic safety inspections, tracks their execution and multi-party signing, and generates corrective follow-ups.",
		Version: version,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to config file (TOML)")
	pf.String("postgres-host", "localhost:5432", "DB host address")
	viper.BindPFlag("postgres_host", pf.Lookup("postgres-host"))

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	sf := serveCmd.Flags()
	sf.String("http-port", "5000", "HTTP web server port")
	sf.String("data-dir", "./data", "Directory for the transition journal")
	viper.BindPFlag("http_port", sf.Lookup("http-port"))
	viper.BindPFlag("data_dir", sf.Lookup("data-dir"))

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := connect(cmd)
			if err != nil {
				return err
			}
			if err := repo.Migrate(); err != nil {
				return fmt.Errorf("migrating schema: %w", err)
			}
			log.Println("Migration complete")
			return nil
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, areas and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := connect(cmd)
			if err != nil {
				return err
			}
			if err := repo.Migrate(); err != nil {
				return fmt.Errorf("migrating schema: %w", err)
			}
			if err := repo.Seed(); err != nil {
				return fmt.Errorf("seeding data: %w", err)
			}
			log.Println("Seed complete")
			return nil
		},
	}

	root.AddCommand(serveCmd, migrateCmd, seedCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// connect loads configuration and opens the Postgres connection.
func connect(cmd *cobra.Command) (*repository.Repository, error) {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	viper.SetEnvPrefix("SAFETRACK")
	viper.AutomaticEnv()

	dsn := viper.GetString("postgres_dsn")
	if dsn == "" {
		dsn = fmt.Sprintf("postgresql://postgres:postgrespassword@%s/postgres", viper.GetString("postgres_host"))
	}
	repo := repository.NewRepository()
	log.Printf("Connecting to: %s\n", viper.GetString("postgres_host"))
	if err := repo.ConnectDB(dsn); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return repo, nil
}

func runServe(cmd *cobra.Command) error {
	repo, err := connect(cmd)
	if err != nil {
		return err
	}
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	// Transition journal
	journalPath := filepath.Join(viper.GetString("data_dir"), "journal")
	jrnl, err := journal.Open(journalPath)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer func() {
		if err := jrnl.Close(); err != nil {
			log.Printf("Closing journal: %v", err)
		}
	}()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	eng := engine.New(repo.Store(), repo.Notifier(), repo.Config(), engine.WithAuditor(jrnl))

	serviceRegistry := service_registry.NewServiceRegistry(eng, repo, logger)
	serviceRegistry.RegisterDefaultServices()

	webserver := server.NewWebServer(viper.GetString("http_port"), logger, serviceRegistry, repo, jrnl)
	if err := webserver.Start(); err != nil {
		return fmt.Errorf("starting web server: %w", err)
	}

	// Wait for interrupt
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := webserver.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	return nil
}
