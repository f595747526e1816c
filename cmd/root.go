package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/config"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/telemetry"
)

var (
	cfgFile  string
	cfg      config.Config
	logger   *zap.SugaredLogger
	tracer   trace.Tracer
	meter    metric.Meter
	shutdown func(context.Context) error
	services *internal.Services
	Version  = "dev" // Set at build time: go build -ldflags "-X github.com/Qubut/IP-Claim/packages/epo_mcp/cmd.Version=v1.0.0"
)

var RootCmd = &cobra.Command{
	Use:           "epo-mcp",
	Short:         "MCP server for the EPO Open Patent Services",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logDir := cfg.Log.LogDir
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}

		logFile := filepath.Join(logDir,
			fmt.Sprintf("epo-mcp[%s].log", time.Now().Format("20060102-150405")))

		exporter := cfg.Telemetry.Exporter
		if !cfg.Telemetry.Enabled {
			exporter = telemetry.ExporterNone
		}
		teleCfg := telemetry.Config{
			ServiceName: cfg.Telemetry.ServiceName,
			Version:     Version,
			Exporter:    exporter,
			Endpoint:    cfg.Telemetry.Endpoint,
			Protocol:    cfg.Telemetry.Protocol,
			Insecure:    cfg.Telemetry.Insecure,
			Headers:     cfg.Telemetry.Headers,
			LogFile:     logFile,
			LogLevel:    cfg.Log.LogLevel,
		}
		tracer, meter, logger, shutdown, err = telemetry.InitOTEL(teleCfg)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		services, err = internal.InitServices(cmd.Context(), cfg, tracer, logger, meter)
		if err != nil {
			return fmt.Errorf("init services: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		var errs []error
		if services != nil {
			errs = append(errs, services.Close())
		}
		if shutdown != nil {
			if err := shutdown(context.Background()); err != nil {
				logger.Errorw("shutdown error", "err", err)
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	},
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of epo-mcp",
	// Overrides the root hook: printing the version needs no configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config operations",
}

var printConfigCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the current loaded configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		printable := cfg
		if printable.OPS.Secret != "" {
			printable.OPS.Secret = "********"
		}
		data, err := json.MarshalIndent(printable, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "Path to config file (yaml/json/toml)")

	// Flag names are config keys; dashes map to underscores.
	type flagDef struct {
		name, def, usage string
	}
	flags := []flagDef{
		{"log.log-level", "info", "Log level (debug/info/warn/error)"},
		{"log.log-dir", "logs", "Directory for log files"},
		{"telemetry.enabled", "false", "Enable OpenTelemetry"},
		{"telemetry.exporter", "none", "Telemetry exporter (otlp|stdout|none)"},
		{"telemetry.endpoint", "localhost:4317", "OTLP endpoint (host:port)"},
		{"telemetry.protocol", "grpc", "OTLP protocol (grpc|http)"},
		{"telemetry.insecure", "true", "Allow insecure OTLP connection"},
		{"telemetry.service-name", "epo-mcp", "Service name for telemetry"},
		{"ops.base-url", "https://ops.epo.org/3.2", "OPS base URL"},
		{"ops.timeout", "30s", "OPS request timeout (duration)"},
		{"ops.attach-middleware", "false", "Attach cache and throttle middleware to the OPS client"},
		{"server.host", "0.0.0.0", "Listen host for http/sse"},
		{"server.port", "8000", "Listen port for http/sse"},
		{"server.transport", "stdio", "MCP transport (stdio|http|sse)"},
		{"server.path", "/mcp", "HTTP path of the MCP endpoint"},
		{"cache.enabled", "false", "Enable the response cache"},
		{"cache.backend", "sqlite", "Cache backend (sqlite|redis)"},
		{"cache.path", "/var/tmp/epo-ops-server/cache.db", "SQLite cache file"},
		{"cache.redis-url", "", "Redis URL for the redis cache"},
		{"cache.ttl", "24h", "Cache entry lifetime"},
		{"throttle.requests-per-minute", "30", "Default OPS requests per minute per service"},
	}
	for _, f := range flags {
		RootCmd.PersistentFlags().String(f.name, f.def, f.usage)
	}

	configCmd.AddCommand(printConfigCmd)

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(toolsCmd)
	RootCmd.AddCommand(callCmd)
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(configCmd)
}
