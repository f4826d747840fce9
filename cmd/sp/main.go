package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"successplan/internal/app"
	"successplan/internal/config"
	"successplan/internal/logger"
	"successplan/internal/server"
	"successplan/internal/share"
)

var rootCmd = &cobra.Command{
	Use:   "sp",
	Short: "Success plan manager",
	Long: `sp keeps one customer success plan: objectives with KPIs, stakeholders,
risks and value metrics. Every change is written through to the configured
storage (sqlite in .successplan/ by default).

Reports are assembled from presets (QBR, EBR, Implementation) and rendered
as text or paginated PNG pages. 'sp share' issues a signed read-only link
served by 'sp serve'.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("SUCCESSPLAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("storage", "", "storage driver (sqlite, postgres, redis, s3, memory); overrides successplan.yml")
	rootCmd.PersistentFlags().String("log-mode", "", "log mode (production, development, nop); overrides successplan.yml")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("storage", rootCmd.PersistentFlags().Lookup("storage"))
	_ = viper.BindPFlag("log-mode", rootCmd.PersistentFlags().Lookup("log-mode"))
}

func registerCommands() {
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(objectiveCmd())
	rootCmd.AddCommand(stakeholderCmd())
	rootCmd.AddCommand(riskCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(shareCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create successplan.yml",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configInitCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			masked := *cfg
			if masked.Share.Secret != "" {
				masked.Share.Secret = "********"
			}
			if masked.Storage.S3.SecretAccessKey != "" {
				masked.Storage.S3.SecretAccessKey = "********"
			}
			if viper.GetBool("json") {
				return printJSON(masked)
			}
			return yaml.NewEncoder(os.Stdout).Encode(masked)
		},
	}
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default successplan.yml into the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(viper.GetString("storage"))), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath, publicURL string
	var external bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("base-path") && cfg.Server.BasePath != "" {
				basePath = cfg.Server.BasePath
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			st, err := app.Bootstrap(cmd.Context(), cfg, log, reg)
			if err != nil {
				return err
			}
			defer st.Close()
			if external {
				restore := st.Gate().Enter()
				defer restore()
			}
			handler, err := server.New(server.Config{
				State:     st,
				BasePath:  basePath,
				PublicURL: publicURL,
				Share:     shareIssuer(cfg),
				Gatherer:  reg,
				Log:       log,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			log.Info("serving success plan API", "addr", addr, "basePath", basePath, "storage", cfg.Storage.Driver, "external", external)
			fmt.Printf("Serving Success Plan API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs, metrics at /metrics)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	cmd.Flags().StringVar(&publicURL, "public-url", "", "external URL prefix for share links")
	cmd.Flags().BoolVar(&external, "external", false, "start in external (read-only) view")
	return cmd
}

// --- helpers ---

func resolveConfig() (*config.Config, error) {
	cfg, err := app.ResolveConfig(viper.GetString("workspace"), viper.GetString("storage"))
	if err != nil {
		return nil, err
	}
	if secret := viper.GetString("share-secret"); secret != "" {
		cfg.Share.Secret = secret
	}
	if mode := viper.GetString("log-mode"); mode != "" {
		cfg.Log.Mode = mode
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(cfg.Log.Mode)
}

func shareIssuer(cfg *config.Config) share.Issuer {
	return share.Issuer{Secret: cfg.Share.Secret, TTL: cfg.ShareTTL()}
}

// withState opens the configured storage, loads the plan and hands it to fn.
func withState(ctx context.Context, fn func(context.Context, *app.State) error) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()
	st, err := app.Bootstrap(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(header)
	return tw
}
