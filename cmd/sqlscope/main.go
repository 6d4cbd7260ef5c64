package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/sqlscope/internal/adapter"
	"github.com/sadopc/sqlscope/internal/complete"
	"github.com/sadopc/sqlscope/internal/config"
	"github.com/sadopc/sqlscope/internal/diag"
	"github.com/sadopc/sqlscope/internal/snippet"
	"github.com/sadopc/sqlscope/internal/token"
	"github.com/sadopc/sqlscope/internal/usage"

	// Register database adapters
	_ "github.com/sadopc/sqlscope/internal/adapter/duckdb"
	_ "github.com/sadopc/sqlscope/internal/adapter/mysql"
	_ "github.com/sadopc/sqlscope/internal/adapter/postgres"
	_ "github.com/sadopc/sqlscope/internal/adapter/sqlite"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		adapterFlag    string
		dsnFlag        string
		queryFlag      string
		lineFlag       int
		colFlag        int
		serverFlag     string
		configFlag     string
		connectionFlag string
	)

	rootCmd := &cobra.Command{
		Use:   "sqlscope",
		Short: "Context-aware SQL completion core",
	}

	completeCmd := &cobra.Command{
		Use:   "complete",
		Short: "Compute ranked completion items for a query and cursor position",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not load config: %v\n", err)
				cfg = config.DefaultConfig()
			}

			if connectionFlag != "" {
				sc, ok := cfg.FindConnection(connectionFlag)
				if !ok {
					return fmt.Errorf("no saved connection named %q", connectionFlag)
				}
				adapterFlag = sc.Adapter
				dsnFlag = sc.BuildDSN()
				if serverFlag == "" {
					serverFlag = sc.Name
				}
			}

			if adapterFlag == "" || dsnFlag == "" {
				return fmt.Errorf("--adapter and --dsn are required (or use --connection with a saved connection)")
			}
			a, ok := adapter.Registry[strings.ToLower(adapterFlag)]
			if !ok {
				return fmt.Errorf("unknown adapter %q (available: %s)", adapterFlag, availableAdapters())
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			conn, err := a.Connect(ctx, dsnFlag)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer conn.Close()

			server := serverFlag
			if server == "" {
				server = conn.DatabaseName()
			}

			usageStore, err := usage.New()
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: usage store disabled: %v\n", err)
				usageStore = nil
			}
			if usageStore != nil {
				defer usageStore.Close()
			}

			var diagLog *diag.Logger
			if dir, err := config.ConfigDir(); err == nil {
				if l, err := diag.New(dir+"/diag.jsonl", 10); err == nil {
					diagLog = l
					defer diagLog.Close()
				}
			}

			src := adapter.NewMetadataBridge(conn, server, usageStore)
			if cfg.Completion.SnippetsPath != "" {
				snippets, err := snippet.Load(cfg.Completion.SnippetsPath)
				if err != nil {
					fmt.Fprintf(os.Stderr, "warning: could not load snippets: %v\n", err)
				}
				src.LoadSnippets = snippets
			}

			engine := complete.New(src, complete.Options{
				FKMaxDepth:     cfg.Completion.FKMaxDepth,
				RequestTimeout: time.Duration(cfg.Completion.RequestTimeoutMS) * time.Millisecond,
				MaxItems:       cfg.Completion.MaxItems,
				Server:         server,
				Database:       conn.DatabaseName(),
				ShowSchema:     true,
			})
			if diagLog != nil {
				engine.Diag = diagLog.Hook("cli")
			}

			engine.SetBuffer("cli", complete.Buffer{Text: queryFlag, Dialect: token.Normalize(adapterFlag)})

			done := make(chan complete.Result, 1)
			var callErr error
			engine.Complete(ctx, "cli", lineFlag, colFlag, func(r complete.Result, err error) {
				callErr = err
				done <- r
			})

			select {
			case res := <-done:
				if callErr != nil {
					return callErr
				}
				out, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}

	completeCmd.Flags().StringVarP(&adapterFlag, "adapter", "a", "", "Database adapter (postgres, mysql, sqlite, duckdb)")
	completeCmd.Flags().StringVar(&dsnFlag, "dsn", "", "Connection string")
	completeCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "SQL buffer text")
	completeCmd.Flags().IntVar(&lineFlag, "line", 1, "Cursor line (1-based)")
	completeCmd.Flags().IntVar(&colFlag, "col", 1, "Cursor column (1-based)")
	completeCmd.Flags().StringVar(&serverFlag, "server", "", "Server identifier for usage-weight scoping")
	completeCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Config file path")
	completeCmd.Flags().StringVar(&connectionFlag, "connection", "", "Name of a saved connection (see 'sqlscope connections')")
	rootCmd.AddCommand(completeCmd)

	connectionsCmd := &cobra.Command{
		Use:   "connections",
		Short: "List saved connections from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if len(cfg.Connections) == 0 {
				fmt.Println("no saved connections")
				return nil
			}
			for _, sc := range cfg.Connections {
				fmt.Printf("%-20s %s\n", sc.Name, sc.DisplayString())
			}
			return nil
		},
	}
	connectionsCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Config file path")
	rootCmd.AddCommand(connectionsCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sqlscope %s (commit: %s, built: %s)\n", version, commit, date)
			fmt.Println("\nSupported adapters:")
			for name := range adapter.Registry {
				fmt.Printf("  - %s\n", name)
			}
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

func availableAdapters() string {
	var names []string
	for name := range adapter.Registry {
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
