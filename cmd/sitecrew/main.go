package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/config"
	"github.com/emilianohg/sitecrew/internal/db"
	"github.com/emilianohg/sitecrew/internal/display"
	"github.com/emilianohg/sitecrew/internal/logger"
	"github.com/emilianohg/sitecrew/internal/repository"
	"github.com/emilianohg/sitecrew/internal/sandbox"
	"github.com/emilianohg/sitecrew/internal/session"
	"github.com/emilianohg/sitecrew/internal/tui"
	"github.com/emilianohg/sitecrew/internal/tui/screens"
)

// app is everything a command needs once the local state is open.
type app struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Manager
	logFile *os.File
}

func (a *app) close() {
	if err := db.Close(); err != nil {
		slog.Warn("close database", "error", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logPath, err := config.LogPath()
	if err != nil {
		return nil, err
	}
	logFile, err := logger.OpenFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	if _, err := logger.New(logFile, cfg.LogLevel); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}

	database, err := db.OpenAndMigrate()
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	mgr := session.NewManager(repository.NewSessionRepo(database))
	if err := mgr.Restore(ctx); err != nil {
		slog.WarnContext(ctx, "restore session", "error", err)
	}

	client := api.New(api.Config{
		BaseURL:  cfg.APIURL,
		Timeout:  time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		RetryMax: cfg.RetryMax,
	}, mgr)

	return &app{cfg: cfg, client: client, session: mgr, logFile: logFile}, nil
}

// withApp runs fn with an opened app and exits non-zero on failure.
func withApp(fn func(ctx context.Context, cmd *cobra.Command, a *app) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		err = fn(ctx, cmd, a)
		if err != nil {
			slog.ErrorContext(ctx, "command failed", "command", cmd.Name(), "error", err)
		}
		a.close()

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message(err))
			os.Exit(1)
		}
	}
}

func message(err error) string {
	if m := api.Message(err); m != "" {
		return m
	}
	return err.Error()
}

var rootCmd = &cobra.Command{
	Use:   "sitecrew",
	Short: "Terminal client for the construction workforce booking system",
	Long: `Sitecrew signs you in to the workforce booking backend and opens the
dashboard for your role: admin, manager, employee or client.`,
	Run: withApp(func(_ context.Context, _ *cobra.Command, a *app) error {
		return tui.Run(screens.Deps{Client: a.client, Session: a.session, Config: a.cfg})
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app) error {
		email, _ := cmd.Flags().GetString("email")
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")
		if strings.TrimSpace(email) == "" {
			return errors.New("--email is required")
		}

		password, err := readPassword(fromStdin)
		if err != nil {
			return err
		}

		identity, err := screens.SignIn(ctx, a.client, a.session, email, password)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s (%s)\n", identity.Name, identity.Role)
		return nil
	}),
}

func readPassword(fromStdin bool) (string, error) {
	fd := os.Stdin.Fd()
	if !fromStdin && term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app) error {
		if _, ok := a.session.Current(); ok {
			if err := a.client.Logout(ctx); err != nil {
				slog.WarnContext(ctx, "backend logout failed", "error", err)
			}
		}
		if err := a.session.SignOut(ctx); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	Run: withApp(func(_ context.Context, _ *cobra.Command, a *app) error {
		id, ok := a.session.Current()
		if !ok {
			fmt.Println("Not signed in.")
			return nil
		}
		fmt.Printf("%s <%s>\nRole: %s\nID:   %d\n", id.Name, id.Email, id.Role, id.ID)
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, local database and session state",
	Run: withApp(func(_ context.Context, _ *cobra.Command, a *app) error {
		configPath, err := config.ConfigPath()
		if err != nil {
			return err
		}
		migrations, err := db.GetMigrationStatus()
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}

		fmt.Printf("Config:   %s\n", configPath)
		fmt.Printf("Backend:  %s\n", a.cfg.APIURL)
		fmt.Printf("Exports:  %s\n", a.cfg.ExportsDir)
		fmt.Printf("Database: schema v%d of v%d", migrations.CurrentVersion, migrations.LatestVersion)
		if migrations.Dirty {
			fmt.Print(" (dirty)")
		}
		fmt.Println()

		if id, ok := a.session.Current(); ok {
			fmt.Printf("Session:  %s (%s)\n", id.Email, id.Role)
		} else {
			fmt.Println("Session:  signed out")
		}
		return nil
	}),
}

var payrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Payroll tools (admin)",
}

var payrollExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the payroll CSV for a period",
	Long: `Download the payroll CSV for a period into exports_dir.

Examples:
  sitecrew payroll export --start 2025-03-01 --end 2025-03-31`,
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		dir, _ := cmd.Flags().GetString("dir")

		for _, d := range []string{start, end} {
			if _, ok := display.ParseDate(d); !ok {
				return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", d)
			}
		}
		if dir == "" {
			dir = a.cfg.ExportsDir
		}

		path, err := a.client.ExportPayroll(ctx, start, end, dir)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", path)
		return nil
	}),
}

var sandboxCmd = &cobra.Command{
	Use:    "sandbox",
	Short:  "Serve an in-memory backend with demo data",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")

		if _, err := logger.New(os.Stderr, "info"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		srv := &http.Server{
			Addr:              addr,
			Handler:           sandbox.New().Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Printf("Sandbox listening on http://%s/api (password for every account: %s)\n", addr, sandbox.DemoPassword)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")

	payrollExportCmd.Flags().String("start", "", "First day of the period (YYYY-MM-DD)")
	payrollExportCmd.Flags().String("end", "", "Last day of the period (YYYY-MM-DD)")
	payrollExportCmd.Flags().String("dir", "", "Directory to save into (default: exports_dir)")
	payrollExportCmd.MarkFlagRequired("start")
	payrollExportCmd.MarkFlagRequired("end")
	payrollCmd.AddCommand(payrollExportCmd)

	sandboxCmd.Flags().String("addr", "127.0.0.1:5000", "Listen address")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(payrollCmd)
	rootCmd.AddCommand(sandboxCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
