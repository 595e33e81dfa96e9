package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/sentibot/internal/client"
	"github.com/zhouzirui/sentibot/internal/config"
	"github.com/zhouzirui/sentibot/internal/device"
	"github.com/zhouzirui/sentibot/internal/logging"
	"github.com/zhouzirui/sentibot/internal/model/account"
	"github.com/zhouzirui/sentibot/internal/model/route"
	"github.com/zhouzirui/sentibot/internal/service/auth"
	"github.com/zhouzirui/sentibot/internal/tui"
)

var (
	configPath string
	apiURL     string
	token      string
	logLevel   string

	cfg     *config.ClientConfig
	logger  zerolog.Logger
	api     *client.Client
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Sentibot chat client",
	Long: `Terminal client for the Sentibot conversational assistant.

Run without arguments to open the interactive screens (login, registration
and chat). The subcommands run a single operation for scripting.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML client config (default $SENTIBOT_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "session token (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
			logFile = nil
		}
	}

	rootCmd.AddCommand(sendCmd, historyCmd, sentimentCmd, loginCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, opens the log sink and builds the API client.
func setup(cmd *cobra.Command) error {
	_ = godotenv.Load()

	var err error
	cfg, err = config.LoadClient(configPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}
	if token != "" {
		cfg.Token = token
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	out, closer, err := logOutput(cmd, cfg.LogFile)
	if err != nil {
		return err
	}
	logFile = closer
	logger = logging.New(out, cfg.LogLevel, cfg.LogFile != "")

	api = client.New(cfg.BaseURL, cfg.Timeout, client.WithLogger(logger.With().Str("component", "client").Logger()))
	logger.Debug().Str("api", api.BaseURL()).Msg("client configured")
	return nil
}

// logOutput picks the log sink for cmd. The interactive screens own the
// terminal, so without a log file they log nowhere.
func logOutput(cmd *cobra.Command, path string) (io.Writer, io.Closer, error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return f, f, nil
	}
	if !cmd.HasParent() {
		return io.Discard, nil, nil
	}
	return os.Stderr, nil, nil
}

// newGateway wires the identity providers of this machine. Configure decides
// which of them are offered.
func newGateway(extra ...auth.Option) *auth.Gateway {
	opts := []auth.Option{
		auth.WithLogger(logger.With().Str("component", "auth").Logger()),
		auth.WithGoogle(device.LocalProvider{}),
		auth.WithFacebook(device.LocalProvider{}),
	}
	opts = append(opts, extra...)

	gateway := auth.NewGateway(api, opts...)
	gateway.Configure(auth.ProviderConfig{
		GoogleClientID: cfg.GoogleClientID,
		FacebookAppID:  cfg.FacebookAppID,
		OfflineAccess:  true,
	})
	return gateway
}

func runInteractive(ctx context.Context) error {
	bridge := tui.NewBridge()
	gateway := newGateway(auth.WithBiometric(device.Prompter{Confirm: bridge.Confirm}))

	model := tui.New(ctx, tui.Deps{
		Gateway: gateway,
		Remote:  api,
		Logger:  logger.With().Str("component", "session").Logger(),
	}, bridge)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Bind(p.Send)

	if cfg.Token != "" {
		// A configured token skips the login screen.
		go func() {
			if err := bridge.Navigate(route.Chat{User: account.User{ID: cfg.Token}, Token: cfg.Token}); err != nil {
				logger.Warn().Err(err).Msg("open chat with configured token")
			}
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
