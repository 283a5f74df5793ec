package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-include/pkg/include"
	"github.com/benjaminschreck/go-include/pkg/include/source/pages"
)

const diagnosticMarker = "[[SystemMessage("

func newPreprocessCommand(opts *options) *cobra.Command {
	var (
		file string
		id   string
	)

	cmd := &cobra.Command{
		Use:   "preprocess [PAGE]",
		Short: "Expand every directive of a page or file",
		Long: `Expand every directive of a wiki page, as done before the page is rendered.
Only wiki markup is expanded; directives naming other content are left as written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (len(args) == 0) {
				return fmt.Errorf("give either a PAGE or --file")
			}

			env, err := openEnvironment(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			var text string
			if file != "" {
				if text, err = readInput(cmd.InOrStdin(), file); err != nil {
					return err
				}
				if id == "" {
					id = pageID(file)
				}
			} else {
				if text, err = env.loadPage(cmd.Context(), args[0]); err != nil {
					return err
				}
				id = args[0]
			}

			out, err := env.engine.Preprocess(cmd.Context(), env.settings.caller, id, text)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			reportDiagnostics(cmd.ErrOrStderr(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the page text from a file (\"-\" for stdin)")
	cmd.Flags().StringVar(&id, "id", "", "page name used for relative references (defaults to the file name)")
	return cmd
}

// reportDiagnostics prints a one-line summary of failed directives.
func reportDiagnostics(w io.Writer, out string) {
	n := strings.Count(out, diagnosticMarker)
	if n == 0 {
		return
	}
	s := newStyles(w)
	noun := "directive"
	if n > 1 {
		noun = "directives"
	}
	fmt.Fprintln(w, s.render(s.warning, fmt.Sprintf("%d %s failed to expand", n, noun)))
}

func newExpandCommand(opts *options) *cobra.Command {
	var (
		origin  string
		line    int
		execute bool
		named   map[string]string
	)

	cmd := &cobra.Command{
		Use:   "expand [ARGS]",
		Short: "Expand a single directive",
		Long: `Expand a single include directive, given its argument list:

  include expand --origin WikiStart 'Guide/Intro, version=2'

With --execute the template body is read from stdin and --set gives its arguments.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			var argText string
			var namedArgs map[string]string
			if execute {
				if argText, err = readInput(cmd.InOrStdin(), "-"); err != nil {
					return err
				}
				namedArgs = make(map[string]string, len(named))
				for k, v := range named {
					namedArgs[k] = v
				}
			} else {
				if len(args) == 0 {
					return fmt.Errorf("missing directive arguments")
				}
				argText = args[0]
			}

			text, contentType, err := env.engine.ExpandDirective(cmd.Context(), env.settings.caller, origin, line, argText, namedArgs)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			if contentType != "" {
				s := newStyles(cmd.ErrOrStderr())
				fmt.Fprintln(cmd.ErrOrStderr(), s.render(s.muted, "content-type: "+contentType))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "WikiStart", "page the directive appears on")
	cmd.Flags().IntVar(&line, "line", 1, "line the directive appears on")
	cmd.Flags().BoolVar(&execute, "execute", false, "expand a template body read from stdin")
	cmd.Flags().StringToStringVar(&named, "set", nil, "template argument as key=value (repeatable)")
	return cmd
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that the user may save a page with these directives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			engine := include.NewWithOptions(include.WithConfig(s.engine))
			result := engine.Validate(s.caller, text)

			st := newStyles(cmd.OutOrStdout())
			if result.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), st.render(st.success, "ok"))
				return nil
			}
			for _, issue := range result.Issues {
				fmt.Fprintln(cmd.OutOrStdout(), st.render(st.failure, issue.Message))
			}
			return result.Err()
		},
	}
}

func newImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import DIR",
		Short: "Copy a directory of pages into the database as new versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			db, ok := env.pages.(*pages.SQLiteStore)
			if !ok {
				return fmt.Errorf("import needs --db")
			}

			dir := pages.NewDirStore(args[0])
			names, err := dir.Names(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(names)

			st := newStyles(cmd.OutOrStdout())
			for _, name := range names {
				page, err := dir.Get(cmd.Context(), name, "")
				if err != nil {
					return err
				}
				if page == nil {
					continue
				}
				v, err := db.Put(cmd.Context(), name, page.Text)
				if err != nil {
					return fmt.Errorf("importing %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, st.render(st.muted, fmt.Sprintf("@%d", v)))
			}
			return nil
		},
	}
}
