// Package main provides the CLI entrypoint for studydash.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/studydash/internal/analytics"
	"github.com/verte-zerg/studydash/internal/client"
	"github.com/verte-zerg/studydash/internal/config"
	"github.com/verte-zerg/studydash/internal/dashui"
	"github.com/verte-zerg/studydash/internal/model"
	"github.com/verte-zerg/studydash/internal/server"
	"github.com/verte-zerg/studydash/internal/service"
	"github.com/verte-zerg/studydash/internal/store"
)

const (
	defaultMode    = model.ModeWeek
	defaultRate    = 4.0
	defaultAddr    = ":8080"
	commandTimeout = 30 * time.Second
)

var (
	apiURL   string
	memberID int64
	rateFlag float64
	modeFlag string
	offline  bool
	dbPath   string

	reportWidth int
	reportColor bool

	serveAddr string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "studydash",
		Short:         "Study cafe analytics dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiURL, "api-url", "", "backend base URL")
	flags.Int64Var(&memberID, "member-id", 0, "member id for offline reads and imports")
	flags.Float64Var(&rateFlag, "rate", defaultRate, "max backend requests per second (0 = unlimited)")
	flags.StringVar(&modeFlag, "mode", defaultMode, "study summary window: week or month")
	flags.BoolVar(&offline, "offline", false, "read cached payloads only")
	flags.StringVar(&dbPath, "db", "", "cache database path")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newChallengeCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

type app struct {
	cfg   model.Config
	addr  string
	store *store.Store
	svc   *service.Service
}

func (r *app) Close() {
	if cerr := r.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func resolveConfig(cmd *cobra.Command, cacheOnly bool) (model.Config, string, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	env, err := config.LoadEnv(config.DefaultEnvPath())
	if err != nil {
		return model.Config{}, "", err
	}

	applyStringConfig(cmd, "api-url", &apiURL, fileCfg.API.BaseURL)
	if env.APIURL != "" && !cmd.Flags().Changed("api-url") {
		apiURL = env.APIURL
	}
	applyInt64Config(cmd, "member-id", &memberID, fileCfg.API.MemberID)
	applyFloatConfig(cmd, "rate", &rateFlag, fileCfg.API.Rate)
	applyStringConfig(cmd, "mode", &modeFlag, fileCfg.Dashboard.Mode)
	applyBoolConfig(cmd, "offline", &offline, fileCfg.Dashboard.Offline)
	addr := serveAddr
	if cmd.Flags().Lookup("addr") != nil {
		applyStringConfig(cmd, "addr", &addr, fileCfg.Server.Addr)
	}

	cfg := model.Config{
		BaseURL:  strings.TrimSpace(apiURL),
		MemberID: memberID,
		Session:  env.Session,
		Rate:     rateFlag,
		Mode:     strings.TrimSpace(modeFlag),
		Offline:  offline || cacheOnly,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, "", err
	}
	return cfg, addr, nil
}

func openApp(cmd *cobra.Command, cacheOnly bool) (*app, error) {
	cfg, addr, err := resolveConfig(cmd, cacheOnly)
	if err != nil {
		return nil, err
	}
	path := dbPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	var backend service.Backend
	if !cfg.Offline {
		c, err := client.New(cfg.BaseURL, client.WithSession(cfg.Session), client.WithRate(cfg.Rate))
		if err != nil {
			if cerr := st.Close(); cerr != nil {
				// Best-effort close on client setup failure.
				_ = cerr
			}
			return nil, err
		}
		if cfg.Session == "" {
			logErrf("warning: %s is not set; the backend will likely reject requests\n", config.EnvSession)
		}
		backend = c
	}
	return &app{cfg: cfg, addr: addr, store: st, svc: service.New(st, backend, cfg.MemberID)}, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	rt, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	m := dashui.NewModel(rt.svc, rt.cfg.Mode)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard as text",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().IntVar(&reportWidth, "width", 0, "output width (default: terminal width)")
	cmd.Flags().BoolVar(&reportColor, "color", false, "force colored bars")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	rt, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()
	rep, err := rt.svc.Report(ctx, rt.cfg.Mode)
	if err != nil {
		return reportError(err)
	}
	return analytics.RenderReport(os.Stdout, rep.View, reportWidth, reportColor)
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load payload JSON files (times.json, seats.json, ...) into the cache",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	rt, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.cfg.MemberID <= 0 {
		return fmt.Errorf("--member-id is required for import")
	}
	kinds, err := rt.svc.ImportDir(cmd.Context(), rt.cfg.MemberID, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Imported %s for member %d\n", strings.Join(kinds, ", "), rt.cfg.MemberID)
	return nil
}

func newChallengeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Show or select the monthly challenge",
		Args:  cobra.NoArgs,
		RunE:  runChallengeListCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "select <id>",
		Short: "Select a challenge from this month's candidates",
		Args:  cobra.ExactArgs(1),
		RunE:  runChallengeSelectCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "List recorded selections",
		Args:  cobra.NoArgs,
		RunE:  runChallengeHistoryCmd,
	})
	return cmd
}

func runChallengeListCmd(cmd *cobra.Command, _ []string) error {
	rt, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()
	rep, err := rt.svc.Report(ctx, rt.cfg.Mode)
	if err != nil {
		return reportError(err)
	}
	c := rep.View.Challenge
	if c.State != analytics.StateNone {
		status := c.State.String()
		if c.Completed {
			status += " [완료]"
		}
		fmt.Printf("%s\n%s  %s  (%s / %s)\n", c.Title, analytics.PercentLabel(c.Percent), status, c.CurrentLabel, c.TargetLabel)
		return nil
	}
	fmt.Println(c.Heading)
	if len(rep.View.Candidates) == 0 {
		fmt.Println(c.Title)
		return nil
	}
	for _, cand := range rep.View.Candidates {
		fmt.Printf("%4d  %s  (%s)\n", cand.ID, cand.Title, analytics.MetricLabel(cand.Kind, cand.TargetValue))
	}
	fmt.Println("Select with: studydash challenge select <id>")
	return nil
}

func runChallengeSelectCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid challenge id %q", args[0])
	}
	rt, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()
	d, err := rt.svc.Dashboard(ctx)
	if err != nil {
		return reportError(err)
	}
	if d.Challenge != nil {
		return fmt.Errorf("a challenge is already selected this month: %s", d.Challenge.Title)
	}
	sel, err := rt.svc.SelectChallenge(ctx, d, id)
	if err != nil {
		if errors.Is(err, analytics.ErrUnknownChallenge) {
			return fmt.Errorf("challenge %d is not among this month's candidates", id)
		}
		return reportError(err)
	}
	fmt.Printf("Selected challenge %d (request %s)\n", sel.ChallengeID, sel.RequestID)
	return nil
}

func runChallengeHistoryCmd(cmd *cobra.Command, _ []string) error {
	rt, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	list, err := rt.svc.Selections(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list selections: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No selections recorded.")
		return nil
	}
	for _, sel := range list {
		submitted := "pending"
		if sel.SubmittedAt != nil {
			submitted = sel.SubmittedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("%s  challenge=%d  submitted=%s  request=%s\n",
			sel.SelectedAt.Local().Format("2006-01-02 15:04"), sel.ChallengeID, submitted, sel.RequestID)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API and metrics",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	rt, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := server.New(rt.svc, server.NewLogger(os.Stderr), server.NewMetrics())
	if err := srv.Run(ctx, rt.addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func reportError(err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return fmt.Errorf("%w (log in on the web and export the access_token cookie)", err)
	case errors.Is(err, store.ErrNotCached):
		return fmt.Errorf("%w: run once online or use: studydash import <dir> --member-id <id>", err)
	default:
		return err
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# studydash configuration
# Uncomment a value to enable it. CLI flags override config values.
# The session cookie is read from %s (environment or %s).

[api]
# base-url = "https://cafe.example.com"   # Backend base URL (or %s)
# member-id = 0                           # Member for offline reads and imports
# rate = %.1f                              # Max requests per second (0 = unlimited)

[dashboard]
# mode = %q                           # Study summary window: week or month
# offline = false                         # Read cached payloads only

[server]
# addr = %q                          # Listen address for studydash serve
`,
		config.EnvSession,
		config.DefaultEnvPath(),
		config.EnvAPIURL,
		defaultRate,
		defaultMode,
		defaultAddr,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Mode != model.ModeWeek && cfg.Mode != model.ModeMonth {
		return fmt.Errorf("--mode must be week or month")
	}
	if cfg.Rate < 0 {
		return fmt.Errorf("--rate must be >= 0")
	}
	if cfg.MemberID < 0 {
		return fmt.Errorf("--member-id must be >= 0")
	}
	if !cfg.Offline && cfg.BaseURL == "" {
		return fmt.Errorf("api base url is not set: use --api-url, [api] base-url or %s, or run with --offline", config.EnvAPIURL)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
