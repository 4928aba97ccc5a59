package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/ainoio/ainoship/internal/cliconfig"
)

const helpDescription = `
Ship integration transaction logs to Aino.io.

Highlights:
  - Batches transactions in the background and sends them on a size-or-time policy.
  - Flushes everything still buffered before exiting.
  - Reads NDJSON from stdin or a file (optionally following it), or sends a single transaction from flags.
  - Configure via TOML files, .env, AINO_* environment variables, or flags.

Docs: https://docs.aino.io
`

var exampleUsage = strings.TrimSpace(`
  ainoship send --api-key <key> --from crm --to erp --operation "sync customer" --status success
  tail -f transactions.ndjson | ainoship run --api-key <key>
  ainoship run --input transactions.ndjson --follow --transport kafka --kafka-brokers localhost:9092
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the effective configuration from the root command to its
// subcommands.
type cli struct {
	cfg        cliconfig.Config
	configPath string
	configDir  string
	envFile    string
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: cliconfig.DefaultConfig()}

	root := &cobra.Command{
		Use:           "ainoship",
		Short:         "Ship integration transaction logs to Aino.io",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	cfg := &c.cfg
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to a single config file (disables layered files)")
	flags.StringVar(&c.configDir, "config-dir", "config", "directory with default.toml, $RUN_MODE.toml and local.toml")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading AINO_* variables")

	flags.StringVar(&cfg.URL, "url", cfg.URL, "transaction API endpoint")
	flags.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key for authentication")
	flags.DurationVar(&cfg.SendInterval, "send-interval", cfg.SendInterval, "maximum time a transaction waits before its batch is sent")
	flags.IntVar(&cfg.MaxBatchSize, "max-batch-size", cfg.MaxBatchSize, "maximum transactions per batch")
	flags.DurationVar(&cfg.SendTimeout, "send-timeout", cfg.SendTimeout, "timeout of a single send attempt")
	flags.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "retries for a failed batch before it is dropped")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "how long to wait for the final flush")

	flags.StringVar(&cfg.Transport, "transport", cfg.Transport, "transport: http, kafka or redis")
	flags.StringVar(&cfg.KafkaBrokers, "kafka-brokers", cfg.KafkaBrokers, "comma-separated Kafka brokers")
	flags.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic")
	flags.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL, e.g. redis://localhost:6379/0")
	flags.StringVar(&cfg.RedisKey, "redis-key", cfg.RedisKey, "Redis list receiving batches")

	flags.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP/HTTP metrics endpoint (disabled when empty)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	root.AddCommand(newRunCmd(c), newSendCmd(c))
	return root
}

// load applies configuration sources in increasing precedence:
// defaults, files, environment, flags.
func (c *cli) load(cmd *cobra.Command) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if err := cliconfig.LoadDotEnv(c.envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	var applied []string
	if c.configPath != "" {
		fc, err := cliconfig.LoadFileConfig(c.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
		applied = append(applied, c.configPath)
	} else {
		var err error
		applied, err = cliconfig.ApplyLayeredFiles(&c.cfg, c.configDir, os.Getenv("RUN_MODE"), changed)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.log = cliconfig.Logger(c.cfg.LogLevel)
	c.log.Info().
		Strs("files", applied).
		Interface("config", c.cfg.Masked()).
		Msg("configuration")

	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log := cliconfig.Logger("error")
		log.Error().Err(err).Msg("ainoship")
		os.Exit(1)
	}
}
