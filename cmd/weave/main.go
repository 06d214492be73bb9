package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"github.com/pgavlin/weave"
	"github.com/pgavlin/weave/codebase"
	"github.com/pgavlin/weave/codec"
	"github.com/pgavlin/weave/term"
)

const usage = `usage: weave [-r root] [-d db] [-n steps] [-a ability=arities]... [-v] <command> [args]

options:
  -a ref=n,n,...   declare an ability and the arity of each of its operations

commands:
  eval <name|hash|file.ub>   evaluate a definition and print its value
  decode <name|hash|file.ub> print the decoded term
  deps <name|hash>           list the definitions a term transitively uses
  import                     copy the terms under root into the database
  names                      list the names in the database
  bind <name> <hash>         name a definition in the database
`

type options struct {
	root     string
	dbPath   string
	maxSteps  int
	abilities []weave.Option
	verbose   bool
}

type cli struct {
	options
	out    io.Writer
	dir    *codebase.Dir
	db     *codebase.DB
	loader *codebase.Loader
}

func fatal(err error) {
	color.Red("weave: %v", err)
	os.Exit(1)
}

func main() {
	opts, optind, err := getopt.Getopts(os.Args, "r:d:n:a:vh")
	if err != nil {
		fatal(err)
	}

	var o options
	for _, opt := range opts {
		switch opt.Option {
		case 'r':
			o.root = opt.Value
		case 'd':
			o.dbPath = opt.Value
		case 'n':
			n, err := strconv.Atoi(opt.Value)
			if err != nil || n < 0 {
				fatal(fmt.Errorf("invalid -n parameter %q", opt.Value))
			}
			o.maxSteps = n
		case 'a':
			ability, err := parseAbility(opt.Value)
			if err != nil {
				fatal(err)
			}
			o.abilities = append(o.abilities, ability)
		case 'v':
			o.verbose = true
		case 'h':
			fmt.Print(usage)
			return
		}
	}

	args := os.Args[optind:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if o.verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	c, err := open(o)
	if err != nil {
		fatal(err)
	}
	defer c.close()

	if err := c.run(args[0], args[1:]); err != nil {
		c.close()
		fatal(err)
	}
}

func open(o options) (*cli, error) {
	if o.root == "" {
		root, err := codebase.DefaultRoot()
		if err != nil {
			return nil, err
		}
		o.root = root
	}

	c := &cli{options: o, out: os.Stdout, dir: codebase.OpenDir(o.root)}
	var source codebase.Source = c.dir
	if o.dbPath != "" {
		db, err := codebase.OpenDB(o.dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", o.dbPath, err)
		}
		c.db, source = db, db
	}
	c.loader = codebase.NewLoader(source)
	return c, nil
}

func (c *cli) close() {
	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
}

func (c *cli) run(command string, args []string) error {
	switch command {
	case "eval":
		if len(args) != 1 {
			return errors.New("usage: weave eval <name|hash|file.ub>")
		}
		return c.eval(args[0])
	case "decode":
		if len(args) != 1 {
			return errors.New("usage: weave decode <name|hash|file.ub>")
		}
		a, _, err := c.lookup(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, a)
		return nil
	case "deps":
		if len(args) != 1 {
			return errors.New("usage: weave deps <name|hash>")
		}
		hash, err := c.resolve(args[0])
		if err != nil {
			return err
		}
		order, err := c.loader.Prefetch(hash)
		if err != nil {
			return err
		}
		for _, h := range order[1:] {
			fmt.Fprintln(c.out, "#"+h)
		}
		return nil
	case "import":
		db, err := c.requireDB(command)
		if err != nil {
			return err
		}
		n, err := db.Import(c.dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "imported %d terms from %s\n", n, c.root)
		return nil
	case "names":
		db, err := c.requireDB(command)
		if err != nil {
			return err
		}
		names, err := db.Names()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintf(c.out, "%s\t#%s\n", n.Path, n.Hash)
		}
		return nil
	case "bind":
		if len(args) != 2 {
			return errors.New("usage: weave bind <name> <hash>")
		}
		db, err := c.requireDB(command)
		if err != nil {
			return err
		}
		return db.Bind(args[0], strings.TrimPrefix(args[1], "#"))
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c *cli) requireDB(command string) (*codebase.DB, error) {
	if c.db == nil {
		return nil, fmt.Errorf("%s needs a database (-d)", command)
	}
	return c.db, nil
}

// resolve turns a name or #hash into a hash. Names are only known to a
// database.
func (c *cli) resolve(target string) (string, error) {
	if strings.HasPrefix(target, "#") {
		return target[1:], nil
	}
	if c.db != nil {
		hash, err := c.db.Resolve(target)
		if err == nil {
			return hash, nil
		}
		if !errors.Is(err, weave.ErrTermNotFound) {
			return "", err
		}
	}
	if _, err := term.ParseHash(target); err != nil {
		return "", fmt.Errorf("%q is neither a name nor a hash", target)
	}
	return target, nil
}

// lookup returns the term named by target and the frame identifier to run it
// in. A target ending in .ub is read from that file.
func (c *cli) lookup(target string) (term.ABT, string, error) {
	if strings.HasSuffix(target, ".ub") {
		compiled, err := os.ReadFile(target)
		if err != nil {
			return nil, "", err
		}
		a, err := codec.DecodeTerm(compiled, codec.WithLogger(slog.Default()))
		if err != nil {
			return nil, "", fmt.Errorf("decoding %s: %w", target, err)
		}
		return a, weave.RootFrame, nil
	}

	hash, err := c.resolve(target)
	if err != nil {
		return nil, "", err
	}
	a, err := c.loader.Load(hash)
	if err != nil {
		return nil, "", err
	}
	return a, hash, nil
}

// parseAbility parses an -a value of the form ref=arity,arity,... where ref
// is written as #hash, #hash.index or ##Name.
func parseAbility(text string) (weave.Option, error) {
	i := strings.LastIndexByte(text, '=')
	if i < 0 {
		return nil, fmt.Errorf("invalid -a parameter %q: expected ref=arities", text)
	}
	ref, err := term.ParseReference(text[:i])
	if err != nil {
		return nil, fmt.Errorf("invalid -a parameter %q: %w", text, err)
	}
	if text[i+1:] == "" {
		return nil, fmt.Errorf("invalid -a parameter %q: no arities", text)
	}

	var arities []int
	for _, a := range strings.Split(text[i+1:], ",") {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid -a parameter %q: bad arity %q", text, a)
		}
		arities = append(arities, n)
	}
	return weave.WithAbility(ref, arities...), nil
}

func (c *cli) env() *weave.Env {
	opts := append([]weave.Option{weave.WithMaxSteps(c.maxSteps)}, c.abilities...)
	return weave.NewEnv(c.loader, opts...)
}

func (c *cli) eval(target string) error {
	a, frame, err := c.lookup(target)
	if err != nil {
		return err
	}

	env := c.env()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer func() {
		signal.Stop(interrupts)
		close(interrupts)
	}()
	go func() {
		for range interrupts {
			env.Interrupt()
		}
	}()

	var v weave.Value
	if frame == weave.RootFrame {
		v, err = env.Eval(a)
	} else {
		v, err = env.EvalRef(frame)
	}
	if err != nil {
		return err
	}

	if err := weave.Encode(c.out, v); err != nil {
		return err
	}
	fmt.Fprintln(c.out)

	stats := c.loader.Stats()
	slog.Debug("done", slog.Int64("hits", stats.Hits), slog.Int64("misses", stats.Misses), slog.Int("definitions", stats.Entries))
	return nil
}
