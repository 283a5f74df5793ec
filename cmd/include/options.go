package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-include/pkg/include"
)

// options holds the flags shared by every command.
type options struct {
	configPath string
	pagesDir   string
	dbPath     string
	repoDir    string
	grants     []string
	user       string
	logLevel   string
	remote     bool
}

func (o *options) flagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("include", pflag.ContinueOnError)
	flagSet.StringVar(&o.configPath, "config", "", "configuration file (.yaml, .yml, .json or .jsonc)")
	flagSet.StringVar(&o.pagesDir, "pages", "", "directory of wiki pages")
	flagSet.StringVar(&o.dbPath, "db", "", "SQLite database holding pages and tickets")
	flagSet.StringVar(&o.repoDir, "repo", "", "git work tree served for source: references")
	flagSet.StringSliceVar(&o.grants, "grant", nil, "capability granted to the user (repeatable, \"all\" grants every capability)")
	flagSet.StringVar(&o.user, "user", "", "name of the requesting user")
	flagSet.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error or off")
	flagSet.BoolVar(&o.remote, "remote", false, "allow fetching http: and https: sources")
	return flagSet
}

// fileConfig is the layout of the --config file.
type fileConfig struct {
	Engine       *include.Config   `yaml:"engine" json:"engine"`
	Pages        string            `yaml:"pages" json:"pages"`
	Database     string            `yaml:"database" json:"database"`
	Repositories map[string]string `yaml:"repositories" json:"repositories"`
	Remote       bool              `yaml:"remote" json:"remote"`
	User         string            `yaml:"user" json:"user"`
	Grant        []string          `yaml:"grant" json:"grant"`
	Globals      map[string]string `yaml:"globals" json:"globals"`
}

// loadFileConfig reads YAML or JSON with comments, chosen by extension.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return &cfg, nil
}

// settings is the merged view of the config file and the flags. Flags win.
type settings struct {
	engine       *include.Config
	pagesDir     string
	dbPath       string
	repositories map[string]string
	remote       bool
	caller       include.Caller
	globals      include.Vars
}

func (o *options) settings() (*settings, error) {
	file := &fileConfig{}
	if o.configPath != "" {
		loaded, err := loadFileConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		file = loaded
	}

	engine := include.ConfigFromEnvironment()
	if file.Engine != nil {
		engine = include.NewConfigWithDefaults(file.Engine)
	}
	if o.logLevel != "" {
		engine.LogLevel = strings.ToLower(o.logLevel)
	}
	if err := engine.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &settings{
		engine:       engine,
		pagesDir:     firstNonEmpty(o.pagesDir, file.Pages),
		dbPath:       firstNonEmpty(o.dbPath, file.Database),
		repositories: make(map[string]string),
		remote:       o.remote || file.Remote,
		globals:      make(include.Vars),
	}
	for name, dir := range file.Repositories {
		s.repositories[name] = dir
	}
	if o.repoDir != "" {
		s.repositories[""] = o.repoDir
	}
	for name, value := range file.Globals {
		s.globals[name] = include.String(value)
	}

	s.caller = include.Caller{
		Name: firstNonEmpty(o.user, file.User, os.Getenv("USER")),
		Perm: grantCapabilities(append(append([]string(nil), file.Grant...), o.grants...)),
	}
	return s, nil
}

// grantCapabilities turns --grant values into a permission set. With no
// grants the user may read every source but not create directives.
func grantCapabilities(grants []string) include.Permission {
	if len(grants) == 0 {
		return include.NewCapabilities(include.CapIncludeURL, include.CapWikiView, include.CapFileView, include.CapTicketView)
	}
	for _, g := range grants {
		if strings.EqualFold(strings.TrimSpace(g), "all") {
			return include.AllowAll
		}
	}
	return include.NewCapabilities(grants...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
