// Command edition collates witnesses and generates critical editions.
// It loads witnesses, builds and repairs collation tables, renders the main
// text with its apparatus, and keeps versioned tables in a local store.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/FocuswithJustin/JuniperEdition/core/tokenizer"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
	"github.com/FocuswithJustin/JuniperEdition/internal/config"
	"github.com/FocuswithJustin/JuniperEdition/internal/logging"
	"github.com/FocuswithJustin/JuniperEdition/internal/witnessio"
)

const version = "0.1.0"

// CLI defines the command-line interface for edition.
var CLI struct {
	Globals

	Tokenize TokenizeCmd `cmd:"" help:"Tokenize witness files"`
	Collate  CollateCmd  `cmd:"" help:"Align witnesses into a collation table"`
	Check    CheckCmd    `cmd:"" help:"Check a collation table for consistency"`
	Table    TableCmd    `cmd:"" help:"Print a collation table as a matrix"`
	Edition  EditionCmd  `cmd:"" help:"Generate main text and critical apparatus"`
	Store    StoreGroup  `cmd:"" help:"Versioned table store"`
	Config   ConfigGroup `cmd:"" help:"Configuration file management"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// Globals are flags shared by every command.
type Globals struct {
	ConfigFile string `name:"config" short:"c" help:"Configuration file path" type:"path"`
	LogLevel   string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat  string `name:"log-format" help:"Log format (auto, json, text)"`
}

// env carries the loaded configuration and output stream into commands.
type env struct {
	cfg     *config.Config
	cfgPath string
	out     io.Writer
	errOut  io.Writer
}

func newEnv(g Globals, out, logOut io.Writer) (*env, error) {
	cfg, path, _, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	formatName := strings.ToLower(cfg.Log.Format)
	if formatName == "auto" {
		formatName = "json"
		if isTerminal(logOut) {
			formatName = "text"
		}
	}
	format, err := logging.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	logging.InitLoggerTo(logOut, level, format)

	return &env{cfg: cfg, cfgPath: path, out: out, errOut: logOut}, nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// witnessOptions builds loader options from the collation settings.
func (e *env) witnessOptions() (witnessio.Options, error) {
	c := e.cfg.Collation
	opts := witnessio.Options{Lang: c.Lang}
	if c.ExtraPunctuation != "" {
		opts.Tokenizer = tokenizer.New(tokenizer.WithPunctuation(c.ExtraPunctuation))
	}
	for _, name := range c.Normalizers {
		n, err := witness.NormalizerByName(name)
		if err != nil {
			return witnessio.Options{}, err
		}
		opts.Normalizers = append(opts.Normalizers, n)
	}
	return opts, nil
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	e.printf("edition version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("edition"),
		kong.Description("Juniper Edition - collation and critical apparatus"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	e, err := newEnv(CLI.Globals, os.Stdout, os.Stderr)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(e)
	ctx.FatalIfErrorf(err)
}
