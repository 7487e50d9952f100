package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nachoal/parts-agent-go/agent"
	"github.com/nachoal/parts-agent-go/config"
	"github.com/nachoal/parts-agent-go/history"
	"github.com/nachoal/parts-agent-go/internal/logger"
	"github.com/nachoal/parts-agent-go/internal/metrics"
	"github.com/nachoal/parts-agent-go/internal/toolinit"
	"github.com/nachoal/parts-agent-go/llm/openai"
	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools/base"
	"github.com/nachoal/parts-agent-go/tui"
)

var (
	// Flags
	configPath  string
	provider    string
	model       string
	userID      string
	metricsAddr string
	verbose     bool

	// Root command
	rootCmd = &cobra.Command{
		Use:   "parts-agent",
		Short: "WhatsApp auto-parts sales assistant",
		Long:  "Parts Agent - collects customer and vehicle data over chat and prepares part quotes",
		RunE:  runConsole,
	}

	// Query command for one-shot turns
	queryCmd = &cobra.Command{
		Use:   "query [message]",
		Short: "Process one customer message without entering the console",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}

	functionsCmd = &cobra.Command{
		Use:   "functions",
		Short: "Function registry commands",
	}

	listFunctionsCmd = &cobra.Command{
		Use:   "list",
		Short: "List the functions offered to the model",
		Run:   listFunctions,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	validateConfigCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check the effective configuration",
		RunE:  validateConfig,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider (openai, groq, deepseek, moonshot, lmstudio)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model to use")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "console", "Customer id the conversation belongs to")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(functionsCmd)
	functionsCmd.AddCommand(listFunctionsCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(validateConfigCmd)
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config and applies command line overrides
func loadConfig() (*config.Config, error) {
	if provider != "" {
		os.Setenv(config.EnvPrefix+"_LLM_PROVIDER", provider)
	}
	if model != "" {
		os.Setenv(config.EnvPrefix+"_LLM_MODEL", model)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// app bundles what a command needs to run turns
type app struct {
	cfg          *config.Config
	orchestrator *agent.Orchestrator
}

func newApp(cfg *config.Config) (*app, error) {
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	client, err := openai.NewClient(cfg.ClientOptionFuncs()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.LLM.Provider, err)
	}

	store, err := openStore(cfg.Session)
	if err != nil {
		client.Close()
		return nil, err
	}

	opts := []agent.Option{
		agent.WithModel(cfg.LLM.Model),
		agent.WithHistoryWindow(cfg.Agent.HistoryWindow),
		agent.WithSerializeTurns(cfg.Agent.SerializeTurns),
		agent.WithWelcomeMessage(cfg.Agent.WelcomeMessage),
	}
	if cfg.Agent.SystemPromptFile != "" {
		prompt, err := os.ReadFile(cfg.Agent.SystemPromptFile)
		if err != nil {
			client.Close()
			store.Close()
			return nil, fmt.Errorf("failed to read system prompt: %w", err)
		}
		opts = append(opts, agent.WithSystemPrompt(string(prompt)))
	}

	return &app{
		cfg:          cfg,
		orchestrator: agent.New(client, toolinit.NewRegistry(), store, opts...),
	}, nil
}

func openStore(cfg config.SessionConfig) (session.Store, error) {
	opts := []session.Option{
		session.WithTimeout(cfg.Timeout),
		session.WithSweepInterval(cfg.SweepInterval),
	}
	switch cfg.Backend {
	case config.BackendBadger:
		store, err := session.OpenBadgerStore(cfg.BadgerPath, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		return store, nil
	default:
		return session.NewMemoryStore(opts...), nil
	}
}

func (a *app) conversationID() string {
	return agent.ConversationID(a.cfg.Agent.ConversationPrefix, userID)
}

// serveMetrics runs the prometheus endpoint until ctx is done
func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The console owns the terminal; logs only reach stderr when verbose
	if verbose {
		logger.Init(cfg.Log.Level, cfg.Log.Format)
	} else {
		slog.SetDefault(logger.Discard())
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.orchestrator.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Metrics.Addr != "" {
		g.Go(func() error { return serveMetrics(gctx, cfg.Metrics.Addr) })
	}
	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(
			tui.NewConsole(a.orchestrator, a.conversationID(), userID, cfg.LLM.Model),
			tea.WithAltScreen(),
			tea.WithContext(gctx),
		)
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("error running console: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// stdoutSender prints replies as if they were delivered to the customer
type stdoutSender struct{}

func (stdoutSender) SendMessage(_ context.Context, to, message string) (agent.SendResult, error) {
	fmt.Println(message)
	return agent.SendResult{Success: true, MessageID: fmt.Sprintf("console-%d", time.Now().UnixNano())}, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.orchestrator.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayOpts := []agent.RelayOption{agent.WithSender(stdoutSender{})}
	if cfg.Agent.TranscriptDir != "" {
		transcripts, err := history.NewManager(cfg.Agent.TranscriptDir)
		if err != nil {
			return err
		}
		relayOpts = append(relayOpts, agent.WithRecorder(transcripts))
	}

	relay := agent.NewRelay(a.orchestrator, cfg.Agent.ConversationPrefix, relayOpts...)
	result, _ := relay.HandleInbound(ctx, userID, strings.Join(args, " "))

	if verbose {
		fmt.Fprintf(os.Stderr, "\n[state: %s", result.State)
		if result.FunctionCalled {
			fmt.Fprintf(os.Stderr, " | function: %s", result.FunctionName)
		}
		fmt.Fprintln(os.Stderr, "]")
	}
	if result.Error != "" {
		return errors.New(result.Error)
	}
	return nil
}

func listFunctions(cmd *cobra.Command, args []string) {
	r := toolinit.NewRegistry()
	fmt.Println("Available functions:")
	for _, name := range r.List() {
		tool, err := r.Get(name)
		if err != nil {
			continue
		}
		kind := base.KindCapture
		if k, ok := tool.(interface{ Kind() base.Kind }); ok {
			kind = k.Kind()
		}
		fmt.Printf("  %-26s [%-7s] %s\n", name, kind, tool.Description())
	}
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("provider: %s\nbase url: %s\nmodel:    %s\nsessions: %s (timeout %s)\n",
		cfg.LLM.Provider, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.Session.Backend, cfg.Session.Timeout)

	problems := cfg.Validate()
	if len(problems) == 0 {
		fmt.Println("configuration OK")
		return nil
	}
	for _, p := range problems {
		fmt.Printf("  - %s\n", p)
	}
	return fmt.Errorf("%d configuration problem(s)", len(problems))
}
