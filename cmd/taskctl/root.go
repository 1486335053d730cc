package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/logger"
	"github.com/TWRT/taskboard/internal/tasksync"
)

// Exit codes.
const (
	exitOK      = 0
	exitUser    = 1
	exitAuth    = 2
	exitBackend = 3
)

var errNotLoggedIn = &client.APIError{
	Kind:    client.KindUnauthenticated,
	Message: "not logged in (run: taskctl login)",
}

type app struct {
	out    io.Writer
	errOut io.Writer

	configDir string
	server    string
	debug     bool

	cfg     *cliConfig
	client  *client.Client
	session *tasksync.Session
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	root := newRootCmd(out, errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		fmt.Fprintf(errOut, "error: %s\n", msg)
		switch apiErr.Kind {
		case client.KindUnauthenticated:
			return exitAuth
		case client.KindNetwork, client.KindServer:
			return exitBackend
		}
		return exitUser
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitUser
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage your taskboard tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.persist()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configDir, "config-dir", "", "configuration directory (default $XDG_CONFIG_HOME/taskctl)")
	flags.StringVar(&a.server, "server", "", "taskboard server URL (default from config, then $TASKCTL_SERVER)")
	flags.BoolVar(&a.debug, "debug", false, "log requests and state changes to stderr")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newToggleCmd(a),
		newRmCmd(a),
		newMoveCmd(a),
	)
	return root
}

func (a *app) setup() error {
	if a.configDir == "" {
		a.configDir = defaultConfigDir()
	}
	cfg, err := loadConfig(a.configDir)
	if err != nil {
		return err
	}
	if env := os.Getenv("TASKCTL_SERVER"); env != "" && a.server == "" {
		a.server = env
	}
	if a.server != "" && a.server != cfg.Server {
		cfg.Server = a.server
		cfg.Token = ""
	}
	a.cfg = cfg

	log := zap.NewNop()
	if a.debug {
		if log, err = logger.New("debug", true); err != nil {
			return err
		}
	}

	a.client, err = client.NewClient(cfg.Server)
	if err != nil {
		return err
	}
	a.client.SetToken(cfg.Token)
	a.session = tasksync.NewSession(a.client, log)
	return nil
}

func (a *app) persist() error {
	if a.cfg == nil || a.client == nil {
		return nil
	}
	a.cfg.Token = a.client.Token()
	return saveConfig(a.configDir, a.cfg)
}

// requireSession resumes the saved session and loads the user's tasks.
func (a *app) requireSession(ctx context.Context) error {
	if err := a.session.Start(ctx); err != nil {
		return err
	}
	if _, ok := a.session.User(); !ok {
		return errNotLoggedIn
	}
	return nil
}
