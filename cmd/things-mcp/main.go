package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevinberny/things-mcp/internal/config"
	"github.com/kevinberny/things-mcp/internal/launch"
	"github.com/kevinberny/things-mcp/internal/script"
	"github.com/kevinberny/things-mcp/internal/server"
	"github.com/kevinberny/things-mcp/internal/things"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
)

// rootCmd serves MCP on stdio. Logging must stay off stdout: that stream
// belongs to the protocol.
var rootCmd = &cobra.Command{
	Use:   "things-mcp",
	Short: "MCP server bridging AI assistants to Things 3",
	Long: `things-mcp exposes the Things 3 task manager to MCP clients.

Write tools translate tool calls into the things:/// URL scheme; read tools
shell out to the macOS automation interpreter. Run without arguments to
serve MCP on stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level, err := cfg.ZapLevel()
		if err != nil {
			return err
		}
		if verbose {
			level = zapcore.DebugLevel
		}

		zcfg := zap.NewProductionConfig()
		zcfg.OutputPaths = []string{"stderr"}
		zcfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the things-mcp version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("things-mcp %s\n", version)
	},
}

// checkCmd verifies the host before an MCP client wires the server in.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that Things and the automation interpreter are available",
	RunE:  runCheck,
}

func runServe(cmd *cobra.Command, args []string) error {
	opener := launch.NewOpener(cfg.LaunchTimeout(), logger)
	runner := &script.OSARunner{Timeout: cfg.ScriptTimeout()}
	client := script.NewClient(runner, logger)
	srv := server.New(version, cfg, opener, client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving MCP on stdio", zap.String("version", version))
	return srv.Run(ctx)
}

func runCheck(cmd *cobra.Command, args []string) error {
	failed := false
	report := func(ok bool, format string, a ...any) {
		mark := "ok"
		if !ok {
			mark = "FAIL"
			failed = true
		}
		fmt.Printf("[%4s] %s\n", mark, fmt.Sprintf(format, a...))
	}

	report(runtime.GOOS == "darwin", "platform is macOS (have %s)", runtime.GOOS)

	_, statErr := os.Stat(cfg.AppPath)
	report(statErr == nil, "Things application at %s", cfg.AppPath)

	_, lookErr := exec.LookPath("osascript")
	report(lookErr == nil, "osascript on PATH")

	if _, tokErr := things.ResolveToken("", cfg.AuthToken); tokErr != nil {
		// Reads still work without a token, so this is not a failure.
		fmt.Println("[warn] no auth token configured; update tools will be rejected")
	} else {
		fmt.Println("[  ok] auth token configured")
	}

	if failed {
		return fmt.Errorf("environment check failed")
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
