package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vk/movegen/internal/app"
	"github.com/vk/movegen/internal/hcl"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Execute runs the command line args. Command output goes to outW and logs
// to errW. env is the process environment, available to manifests as env.*.
// Failures are returned as *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, env map[string]string) error {
	cmd := newRootCommand(outW, errW, env)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return usageError(err)
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// options carries what every command shares.
type options struct {
	v    *viper.Viper
	env  map[string]string
	errW io.Writer
}

func newRootCommand(outW, errW io.Writer, env map[string]string) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MOVEGEN")
	v.AutomaticEnv()
	opts := &options{v: v, env: env, errW: errW}

	root := &cobra.Command{
		Use:   "movegen",
		Short: "Generate Go bindings for Sui Move packages",
		Long: `movegen reads the on-chain schema of Sui Move packages and generates
typed Go bindings for their datatypes and functions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setColor(v.GetString("color"))
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.String("log-level", "info", "logging level: debug, info, warn or error")
	cobra.CheckErr(v.BindPFlag("log_level", pf.Lookup("log-level")))
	pf.String("log-format", "text", "log output format: text or json")
	cobra.CheckErr(v.BindPFlag("log_format", pf.Lookup("log-format")))
	pf.String("color", "auto", "colorize output: auto, always or never")
	cobra.CheckErr(v.BindPFlag("color", pf.Lookup("color")))

	root.AddCommand(
		newGenerateCommand(opts),
		newResolveCommand(opts),
		newDumpCommand(opts),
		newInspectCommand(opts),
	)
	return root
}

// addNetworkFlags registers the flags of commands reading a single package.
// They are bound to viper when the command runs, since several commands
// share the keys.
func addNetworkFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("network", "mainnet", "network to read from")
	f.String("graphql", "", "GraphQL endpoint overriding the network's default")
	f.String("mvr", "", "Move Registry endpoint overriding the network's default")
}

var networkKeys = []string{"network", "graphql", "mvr"}

func setColor(mode string) error {
	switch mode {
	case "auto":
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		return usageError(fmt.Errorf("invalid color mode %q: must be auto, always or never", mode))
	}
	return nil
}

// newApp validates the configuration assembled from flags and environment
// and builds the App.
func (o *options) newApp(cmd *cobra.Command, cfg app.Config) (*app.App, error) {
	for _, key := range networkKeys {
		if f := cmd.Flags().Lookup(key); f != nil {
			if err := o.v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	cfg.LogLevel = strings.ToLower(o.v.GetString("log_level"))
	cfg.LogFormat = strings.ToLower(o.v.GetString("log_format"))
	cfg.Network = o.v.GetString("network")
	cfg.GraphQL = o.v.GetString("graphql")
	cfg.MVR = o.v.GetString("mvr")

	c, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return app.NewApp(o.errW, c, hcl.NewLoader(o.env)), nil
}

// args wraps a positional argument validator so its failures are usage errors.
func args(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := fn(cmd, a); err != nil {
			return usageError(err)
		}
		return nil
	}
}
