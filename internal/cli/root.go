// Package cli provides the command-line interface for covergen.
package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/covergen/internal/config"
	"github.com/jmylchreest/covergen/internal/version"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbose    bool
	quiet      bool
	configFile string
}

// level maps --verbose and --quiet onto a log level. --quiet wins.
func (o *globalOptions) level() hclog.Level {
	switch {
	case o.quiet:
		return hclog.Error
	case o.verbose:
		return hclog.Debug
	default:
		return hclog.Info
	}
}

// logger builds the root logger writing to w.
func (o *globalOptions) logger(w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "covergen",
		Output: w,
		Level:  o.level(),
		Color:  hclog.AutoColor,
	})
}

// NewRootCmd builds the command tree. Each call returns an independent tree
// with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := config.New()
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "covergen",
		Short: "Playlist cover image generator",
		Long: `covergen renders square playlist cover images for monthly and weekly
playlists and publishes them to an S3-compatible object store.

The background colour of each cover is derived from its label text, so the
same playlist always gets the same cover.`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadFile(v, opts.configFile)
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (yaml, json or toml)")

	root.SetVersionTemplate(version.String() + "\n")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd(v, opts))
	root.AddCommand(newRenderCmd(v, opts))
	root.AddCommand(newConfigCmd(v))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// bindFlag binds a command flag to a config key so that an explicitly set
// flag overrides the environment.
func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, flag string) {
	// BindPFlag only fails for a nil flag, which is a programming error.
	if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %q: %v", flag, err))
	}
}
