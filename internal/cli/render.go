package cli

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/jmylchreest/covergen/internal/colour"
	"github.com/jmylchreest/covergen/internal/compose"
	"github.com/jmylchreest/covergen/internal/config"
	"github.com/jmylchreest/covergen/internal/cover"
	"github.com/jmylchreest/covergen/internal/label"
	"github.com/jmylchreest/covergen/internal/objectkey"
)

// stdoutPath selects standard output for --out.
const stdoutPath = "-"

var errTerminalOutput = errors.New("refusing to write PNG data to a terminal; use --out <file> or redirect stdout")

type renderOptions struct {
	out   string
	force bool
	font  string
}

func newRenderCmd(v *viper.Viper, global *globalOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a cover locally without uploading it",
		Long: `Render a monthly or weekly cover to a local file. Nothing is uploaded; the
object key the service would use is printed alongside the derived colours.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.out, "out", "o", "", "output file, or - for stdout (default: <slug>.png)")
	cmd.PersistentFlags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing output file")
	cmd.PersistentFlags().StringVar(&opts.font, "font", "", "TrueType/OpenType font file (default: FONT_PATH or embedded Go Regular)")

	monthly := &cobra.Command{
		Use:     "monthly <month> <year>",
		Short:   "Render a monthly cover",
		Example: "  covergen render monthly june 2025",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := label.ParseYear(args[1])
			if err != nil {
				return err
			}
			return runRender(cmd, v, global, opts, func(val label.Validator, cfg config.Config) (cover.Plan, error) {
				m, err := val.ValidateMonthly(args[0], year)
				if err != nil {
					return cover.Plan{}, err
				}
				return cover.PlanMonthly(cfg.Canvas, m)
			})
		},
	}

	weekly := &cobra.Command{
		Use:     "weekly <date1> <date2> <year>",
		Short:   "Render a weekly cover",
		Example: `  covergen render weekly "march 3" "march 9" 2025`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := label.ParseYear(args[2])
			if err != nil {
				return err
			}
			return runRender(cmd, v, global, opts, func(val label.Validator, cfg config.Config) (cover.Plan, error) {
				w, err := val.ValidateWeekly(args[0], args[1], year)
				if err != nil {
					return cover.Plan{}, err
				}
				return cover.PlanWeekly(cfg.Canvas, w)
			})
		},
	}

	cmd.AddCommand(monthly, weekly)
	return cmd
}

type planFunc func(label.Validator, config.Config) (cover.Plan, error)

func runRender(cmd *cobra.Command, v *viper.Viper, global *globalOptions, opts *renderOptions, plan planFunc) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if opts.font != "" {
		cfg.FontPath = opts.font
	}

	p, err := plan(label.NewValidator(cfg.MinYear), cfg)
	if err != nil {
		return err
	}

	composer := compose.New(compose.Options{
		FontPath: cfg.FontPath,
		Logger:   global.logger(cmd.ErrOrStderr()).Named("compose"),
	})
	img, err := composer.Render(p.Canvas, p.Background.RGBA(), p.Labels)
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = objectkey.Slug(p.Key) + objectkey.Extension
	}
	if err := writeImage(cmd.OutOrStdout(), out, opts.force, img); err != nil {
		return err
	}

	// With PNG data on stdout the summary goes to stderr.
	summary := cmd.OutOrStdout()
	if out == stdoutPath {
		summary = cmd.ErrOrStderr()
	}

	t := NewTable([]string{"Field", "Value"})
	t.AddRow([]string{"Key", p.Key})
	t.AddRow([]string{"Background", p.Background.Hex()})
	t.AddRow([]string{"Contrast", fmt.Sprintf("%.2f:1", colour.ContrastRatio(p.Background.RGBA(), compose.DefaultStyle().PlaqueColor))})
	if out != stdoutPath {
		t.AddRow([]string{"Written", out})
	}
	fmt.Fprint(summary, t.Render())
	return nil
}

func writeImage(stdout io.Writer, path string, force bool, img image.Image) error {
	if path == stdoutPath {
		if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return errTerminalOutput
		}
		if err := png.Encode(stdout, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	}

	if !force {
		return compose.WritePNG(path, img)
	}

	// Replace only once the new cover is fully written.
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"-"+uuid.NewString())
	if err := compose.WritePNG(tmp, img); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
