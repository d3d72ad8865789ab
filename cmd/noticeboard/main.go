package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"noticeboard/internal/app"
	"noticeboard/internal/board"
	"noticeboard/internal/config"
	"noticeboard/internal/web"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errorText(err))
		os.Exit(1)
	}
}

// errorText shows refusals the way the web surface does and keeps the full
// chain for infrastructure failures, which the operator needs to see.
func errorText(err error) string {
	if board.IsUserError(err) || errors.Is(err, board.ErrStoreBusy) {
		return web.ErrorMessage(err)
	}
	return err.Error()
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "AddNotice").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// newAuthenticatedApp creates an App and logs in as the --user administrator.
func newAuthenticatedApp(cmd *cobra.Command, operation string) (*app.App, error) {
	username, _ := cmd.Flags().GetString("user")
	if username == "" {
		return nil, fmt.Errorf("%w: --user is required", board.ErrValidation)
	}
	password, err := readSecret("NOTICEBOARD_PASSWORD", fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return nil, err
	}

	a, err := newApp(operation)
	if err != nil {
		return nil, err
	}
	if err := a.Login(username, password); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// readSecret returns the value of envVar, or prompts for it without echo.
func readSecret(envVar, prompt string) (string, error) {
	if v, ok := os.LookupEnv(envVar); ok {
		return v, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: no terminal to prompt for a password, set %s", board.ErrValidation, envVar)
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// readContent resolves the --content flag; "-" reads from stdin.
func readContent(cmd *cobra.Command) (string, error) {
	content, _ := cmd.Flags().GetString("content")
	if content != "-" {
		return content, nil
	}
	b, err := io.ReadAll(bufio.NewReader(cmd.InOrStdin()))
	if err != nil {
		return "", fmt.Errorf("reading content from stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func printNotice(w io.Writer, n *board.Notice) {
	fmt.Fprintf(w, "#%d  %s\n", n.ID, n.Title)
	fmt.Fprintf(w, "Posted: %s\n", n.Date.Local().Format("2006-01-02 15:04:05"))
	if n.UpdatedAt != nil {
		fmt.Fprintf(w, "Edited: %s\n", n.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "\n%s\n", n.Content)
}

var rootCmd = &cobra.Command{
	Use:           "noticeboard",
	Short:         "Flat-file notice board",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		instanceID := uuid.New().String()
		secret := hex.EncodeToString(securecookie.GenerateRandomKey(32))

		cfg := config.NewConfig(instanceID, defaults["base_dir"], secret)

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Instance ID: %s\n", instanceID)
		fmt.Printf("Data Dir:    %s\n", cfg.Storage.DataDir)
		fmt.Printf("Default login is %s / %s, replace it after the first start.\n",
			board.DefaultAdminUsername, board.DefaultAdminPassword)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Instance ID:  %s\n", cfg.InstanceID)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Storage:      %s %s\n", cfg.Storage.Type, cfg.Storage.DataDir)
		fmt.Printf("Lock Timeout: %s\n", cfg.Storage.LockTimeout.Duration)
		fmt.Printf("Listen:       %s\n", cfg.Server.Listen)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.Server.Listen = listen
		}

		a, err := app.New(cfg, "Serve")
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()

		handler, err := a.Handler()
		if err != nil {
			return fmt.Errorf("creating handler: %w", err)
		}
		srv := &http.Server{
			Addr:              cfg.Server.Listen,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			fmt.Printf("Listening on %s\n", cfg.Server.Listen)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// notice command
var noticeCmd = &cobra.Command{
	Use:   "notice",
	Short: "Read and manage notices",
}

var noticeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notices, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListNotices")
		if err != nil {
			return err
		}
		defer a.Close()

		notices, err := a.ListNotices()
		if err != nil {
			return err
		}
		if len(notices) == 0 {
			fmt.Println("No notices available.")
			return nil
		}
		for _, n := range notices {
			fmt.Printf("#%d  %s  %s\n", n.ID, n.Date.Local().Format("2006-01-02 15:04"), n.Title)
		}
		return nil
	},
}

var noticeShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a notice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ShowNotice")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.ShowNotice(args[0])
		if err != nil {
			return err
		}
		printNotice(cmd.OutOrStdout(), n)
		return nil
	},
}

var noticeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Publish a notice",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, err := readContent(cmd)
		if err != nil {
			return err
		}

		a, err := newAuthenticatedApp(cmd, "AddNotice")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.AddNotice(title, content)
		if err != nil {
			return err
		}
		fmt.Printf("Notice added successfully (#%d)\n", n.ID)
		return nil
	},
}

var noticeEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a notice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, err := readContent(cmd)
		if err != nil {
			return err
		}

		a, err := newAuthenticatedApp(cmd, "EditNotice")
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.EditNotice(args[0], title, content); err != nil {
			return err
		}
		fmt.Println("Notice updated successfully")
		return nil
	},
}

var noticeDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a notice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAuthenticatedApp(cmd, "DeleteNotice")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteNotice(args[0]); err != nil {
			return err
		}
		fmt.Println("Notice deleted successfully")
		return nil
	},
}

// admin command
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrators",
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List administrators",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAuthenticatedApp(cmd, "ListAdmins")
		if err != nil {
			return err
		}
		defer a.Close()

		admins, err := a.ListAdmins()
		if err != nil {
			return err
		}
		for _, adm := range admins {
			fmt.Printf("#%d  %-20s  %s\n", adm.ID, adm.Username, adm.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var adminAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Add an administrator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAuthenticatedApp(cmd, "AddAdmin")
		if err != nil {
			return err
		}
		defer a.Close()

		password, confirm, err := readNewPassword(args[0])
		if err != nil {
			return err
		}
		adm, err := a.AddAdmin(args[0], password, confirm)
		if err != nil {
			return err
		}
		fmt.Printf("Admin added successfully (#%d %s)\n", adm.ID, adm.Username)
		return nil
	},
}

// readNewPassword returns the new administrator's password and its
// confirmation, from NOTICEBOARD_NEW_PASSWORD or two prompts.
func readNewPassword(username string) (string, string, error) {
	if v, ok := os.LookupEnv("NOTICEBOARD_NEW_PASSWORD"); ok {
		return v, v, nil
	}
	password, err := readSecret("NOTICEBOARD_NEW_PASSWORD", fmt.Sprintf("New password for %s: ", username))
	if err != nil {
		return "", "", err
	}
	confirm, err := readSecret("NOTICEBOARD_NEW_PASSWORD", "Confirm password: ")
	if err != nil {
		return "", "", err
	}
	return password, confirm, nil
}

var adminDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an administrator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAuthenticatedApp(cmd, "DeleteAdmin")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteAdmin(args[0]); err != nil {
			return err
		}
		fmt.Println("Admin deleted successfully")
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	serveCmd.Flags().String("listen", "", "Override the configured listen address")

	// notice subcommands
	noticeCmd.AddCommand(noticeListCmd)
	noticeCmd.AddCommand(noticeShowCmd)
	noticeCmd.AddCommand(noticeAddCmd)
	noticeCmd.AddCommand(noticeEditCmd)
	noticeCmd.AddCommand(noticeDeleteCmd)
	for _, c := range []*cobra.Command{noticeAddCmd, noticeEditCmd} {
		c.Flags().StringP("title", "t", "", "Notice title")
		c.Flags().StringP("content", "c", "", `Notice content, "-" reads stdin`)
	}

	// admin subcommands
	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminAddCmd)
	adminCmd.AddCommand(adminDeleteCmd)

	for _, c := range []*cobra.Command{noticeAddCmd, noticeEditCmd, noticeDeleteCmd, adminListCmd, adminAddCmd, adminDeleteCmd} {
		c.Flags().StringP("user", "u", "", "Administrator to act as")
	}

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(noticeCmd)
	rootCmd.AddCommand(adminCmd)
}
