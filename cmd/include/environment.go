package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/benjaminschreck/go-include/pkg/include"
	"github.com/benjaminschreck/go-include/pkg/include/source"
	"github.com/benjaminschreck/go-include/pkg/include/source/pages"
	"github.com/benjaminschreck/go-include/pkg/include/source/remote"
	"github.com/benjaminschreck/go-include/pkg/include/source/repo"
	"github.com/benjaminschreck/go-include/pkg/include/source/sqlitedb"
	"github.com/benjaminschreck/go-include/pkg/include/source/tickets"
)

// environment is everything a command needs to expand pages.
type environment struct {
	settings *settings
	engine   *include.Engine
	logger   *include.Logger
	pages    pages.Store
	dir      *pages.DirStore
	pool     *sqlitedb.Pool
}

// newHandler logs text to a terminal and JSON otherwise.
func newHandler(w *os.File, level include.LogLevel) slog.Handler {
	options := &slog.HandlerOptions{Level: slog.LevelDebug}
	if level == include.LogOff {
		options.Level = slog.LevelError + 4
	}
	if term.IsTerminal(int(w.Fd())) {
		return slog.NewTextHandler(w, options)
	}
	return slog.NewJSONHandler(w, options)
}

func openEnvironment(ctx context.Context, o *options) (*environment, error) {
	s, err := o.settings()
	if err != nil {
		return nil, err
	}

	level := include.ParseLogLevel(s.engine.LogLevel)
	handler := newHandler(os.Stderr, level)
	env := &environment{
		settings: s,
		logger:   include.NewLoggerWithHandler(handler, level),
	}

	mux := source.NewMux()

	if s.dbPath != "" {
		pool, err := sqlitedb.Open(sqlitedb.Config{
			Path:   s.dbPath,
			Logger: slog.New(handler),
			Schema: pages.Schema + tickets.Schema,
		})
		if err != nil {
			return nil, err
		}
		env.pool = pool
		env.pages = pages.NewSQLiteStore(pool)
		mux.Handle(source.SchemeTicket, tickets.NewResolver(tickets.NewSQLiteStore(pool), s.engine.NativeType))
	}

	if s.pagesDir != "" {
		env.dir = pages.NewDirStore(s.pagesDir)
		if env.pages == nil {
			env.pages = env.dir
		}
	}

	if env.pages != nil {
		mux.Handle(source.SchemePage, pages.NewResolver(env.pages, pages.WithContentType(s.engine.NativeType)))
	}

	if len(s.repositories) > 0 {
		var repoOpts []repo.Option
		for name, dir := range s.repositories {
			if name != "" {
				repoOpts = append(repoOpts, repo.WithRepository(name, dir))
			}
		}
		repoOpts = append(repoOpts, repo.WithExtensionType(pages.DefaultExtension, s.engine.NativeType))
		mux.Handle(source.SchemeRepository, repo.NewResolver(s.repositories[""], repoOpts...))
	}

	if s.remote {
		mux.Handle(source.SchemeRemote, remote.NewResolver(
			remote.WithTimeout(s.engine.RemoteTimeout),
			remote.WithMaxBytes(s.engine.RemoteMaxBytes),
			remote.WithUserAgent("go-include/"+version),
		))
	}

	engineOpts := []include.Option{
		include.WithConfig(s.engine),
		include.WithResolver(mux),
		include.WithLogger(env.logger),
		include.WithGlobals(s.globals),
	}
	if env.pages != nil {
		engineOpts = append(engineOpts, include.WithPartials(pages.Partials{Store: env.pages, Context: ctx}))
	}
	env.engine = include.NewWithOptions(engineOpts...)

	env.logger.WithFields(include.Fields{
		"pages":   s.pagesDir,
		"db":      s.dbPath,
		"remote":  s.remote,
		"schemes": handledSchemes(mux),
	}).Debug("environment ready")
	return env, nil
}

func handledSchemes(mux *source.Mux) string {
	var names []string
	for _, scheme := range []source.Scheme{source.SchemePage, source.SchemeRemote, source.SchemeRepository, source.SchemeTicket} {
		if mux.Handles(scheme) {
			names = append(names, string(scheme))
		}
	}
	return strings.Join(names, ",")
}

func (env *environment) Close() error {
	if env.pool != nil {
		return env.pool.Close()
	}
	return nil
}

// loadPage reads the latest version of a page.
func (env *environment) loadPage(ctx context.Context, name string) (string, error) {
	if env.pages == nil {
		return "", errors.New("no page source configured (use --pages or --db)")
	}
	page, err := env.pages.Get(ctx, name, "")
	if err != nil {
		return "", err
	}
	if page == nil {
		return "", fmt.Errorf("wiki page %q does not exist", name)
	}
	return page.Text, nil
}

// readInput reads a file, or stdin for "-".
func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// pageID names a file by its base name without extension.
func pageID(path string) string {
	if path == "-" {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
