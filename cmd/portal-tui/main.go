package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/apiclient"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/config"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/msgsync"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/session"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/tui"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "portal-tui",
	Short: "Terminal client for the FirmConnect legal portal",
	Long: "Sign in, message colleagues in real time and read case-law documents " +
		"from the terminal. Type :help inside the client for commands.",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.close()

		p := tea.NewProgram(tui.NewModel(c.deps()), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

var logoutCmd = &cobra.Command{
	Use:          "logout",
	Short:        "Revoke the saved session and delete it from disk",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := c.sessions.Logout(ctx, c.api); err != nil {
			fmt.Fprintf(os.Stderr, "server logout failed, local session removed: %v\n", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the client YAML config. Defaults to "+config.DefaultClientConfigPath())
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "v", "info",
		"Log verbosity: debug, info, warn or error. Logs go to the configured log_file.")
	rootCmd.AddCommand(logoutCmd)
}

type client struct {
	logFile   *os.File
	sessions  *session.Manager
	api       *apiclient.Client
	engine    *msgsync.Engine
	portal    *caselaw.PortalClient
	navigator *caselaw.Navigator
	bookmarks *caselaw.Bookmarks
	notifier  *tui.Notifier
}

func newClient() (*client, error) {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	c := &client{notifier: tui.NewNotifier()}
	if err := c.openLog(cfg.LogFile); err != nil {
		return nil, err
	}

	c.sessions = session.NewManager(session.NewFileStore(cfg.SessionFile))
	if _, err := c.sessions.Load(); err != nil {
		logger.Warn("portal-tui: stored session unreadable, signing out: %v", err)
	}
	c.sessions.Subscribe(func(s *session.Session, reason string) {
		if s == nil && reason != "" {
			c.notifier.SessionEnded(reason)
		}
	})

	c.api = apiclient.New(cfg.APIURL)
	c.api.Token = c.sessions.Token
	c.api.OnUnauthorized = func() { c.sessions.Expire("Your session has expired, please sign in again") }

	c.engine = msgsync.NewEngine(
		msgsync.NewRESTClient(c.api),
		&msgsync.WSDialer{URL: cfg.WSURL, Token: c.sessions.Token, Gzip: true},
		msgsync.OnChange(c.notifier.Changed),
		msgsync.OnSessionExpired(c.sessions.Expire),
	)

	c.portal = caselaw.NewPortalClient(c.api)
	c.navigator = caselaw.NewNavigator(c.portal, cfg.SourceOrigin,
		caselaw.WithOpener(caselaw.OpenerFunc(openBrowser)),
		caselaw.WithOnChange(c.notifier.Changed),
	)
	c.bookmarks = caselaw.NewBookmarks(c.portal)

	c.refreshIfExpired()
	return c, nil
}

func (c *client) openLog(path string) error {
	if path == "" || path == "-" {
		logger.SetLevel(logLevel)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "create log dir")
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	c.logFile = f
	// the terminal belongs to the UI
	logger.SetOutput(f)
	logger.SetLevel(logLevel)
	return nil
}

// refreshIfExpired rotates a stored session whose access token lapsed while
// the client was closed.
func (c *client) refreshIfExpired() {
	s := c.sessions.Current()
	if s == nil || !s.AccessExpired(time.Now()) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := c.sessions.Refresh(ctx, c.api); err != nil {
		logger.Warn("portal-tui: refresh stored session: %v", err)
	}
}

func (c *client) deps() tui.Deps {
	return tui.Deps{
		Engine:    c.engine,
		Sessions:  c.sessions,
		API:       c.api,
		Portal:    c.portal,
		Navigator: c.navigator,
		Bookmarks: c.bookmarks,
		Notifier:  c.notifier,
		Location:  time.Local,
	}
}

func (c *client) close() {
	if err := c.engine.Close(); err != nil {
		logger.Debug("portal-tui: close realtime: %v", err)
	}
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
