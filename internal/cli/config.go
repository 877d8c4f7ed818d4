package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/covergen/internal/config"
)

func newConfigCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show every configuration key, the environment variable it is read from, and
its effective value. Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := NewTable([]string{"Key", "Environment", "Value"})
			for _, key := range config.Keys() {
				value := v.GetString(key)
				if config.IsSecret(key) {
					value = mask(value)
				}
				t.AddRow([]string{key, config.EnvName(key), value})
			}
			fmt.Fprint(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

// mask hides all but the last two characters of a secret.
func mask(s string) string {
	switch {
	case s == "":
		return "(unset)"
	case len(s) <= 4:
		return strings.Repeat("*", len(s))
	default:
		return strings.Repeat("*", len(s)-2) + s[len(s)-2:]
	}
}
