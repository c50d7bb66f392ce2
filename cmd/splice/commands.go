package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/splice/internal/app"
	"github.com/dshills/splice/internal/engine/resource"
	"github.com/dshills/splice/internal/project/search"
)

type cmdEnv struct {
	app    *app.Application
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	summary string
	usage   string
	run     func(ctx context.Context, env *cmdEnv, args []string) error
}

// usageError marks bad command-line arguments.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

var commandOrder = []string{"new", "info", "dump", "find", "check", "script", "watch"}

var commands = map[string]command{
	"new": {
		summary: "create an empty project",
		usage:   "FILE",
		run:     runNew,
	},
	"info": {
		summary: "print a short description of a project",
		usage:   "FILE",
		run:     runInfo,
	},
	"dump": {
		summary: "print a project as YAML",
		usage:   "FILE",
		run:     runDump,
	},
	"find": {
		summary: "search resources by name or folder path",
		usage:   "[-mode MODE] [-kind KIND] [-offline] [-limit N] FILE QUERY",
		run:     runFind,
	},
	"check": {
		summary: "probe media files and report offline resources",
		usage:   "[-save] FILE",
		run:     runCheck,
	},
	"script": {
		summary: "run a Lua script against a project and save it",
		usage:   "[-dry-run] FILE SCRIPT",
		run:     runScript,
	},
	"watch": {
		summary: "report media changes until interrupted",
		usage:   "[-metrics-addr ADDR] FILE",
		run:     runWatch,
	},
}

func newFlagSet(name string, env *cmdEnv) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	return fs
}

func positional(fs *flag.FlagSet, args []string, n int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != n {
		return nil, usageError{msg: fmt.Sprintf("%s: want %d arguments, got %d", fs.Name(), n, fs.NArg())}
	}
	return fs.Args(), nil
}

func runNew(ctx context.Context, env *cmdEnv, args []string) error {
	pos, err := positional(newFlagSet("new", env), args, 1)
	if err != nil {
		return err
	}
	if err := env.app.NewProject(ctx); err != nil {
		return err
	}
	if err := env.app.SaveProject(ctx, pos[0]); err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "created %s\n", pos[0])
	return nil
}

func runInfo(ctx context.Context, env *cmdEnv, args []string) error {
	pos, err := positional(newFlagSet("info", env), args, 1)
	if err != nil {
		return err
	}
	if err := env.app.OpenProject(ctx, pos[0]); err != nil {
		return err
	}
	s, err := env.app.Summary(ctx)
	if err != nil {
		return err
	}

	total, offline := s.ResourceCount()
	w := env.stdout
	fmt.Fprintf(w, "project:   %s\n", s.ID)
	fmt.Fprintf(w, "file:      %s\n", s.File)
	fmt.Fprintf(w, "format:    %dx%d @ %g fps\n", s.Settings.Width, s.Settings.Height, s.Settings.FrameRate)
	fmt.Fprintf(w, "duration:  %d frames\n", s.Duration)
	fmt.Fprintf(w, "resources: %d (%d offline)\n", total, offline)
	fmt.Fprintf(w, "tracks:    %d\n", len(s.Tracks))
	for _, t := range s.Tracks {
		fmt.Fprintf(w, "  %-6s %-20s %d clips\n", t.Kind, t.Name, len(t.Clips))
	}
	return nil
}

func runDump(ctx context.Context, env *cmdEnv, args []string) error {
	pos, err := positional(newFlagSet("dump", env), args, 1)
	if err != nil {
		return err
	}
	if err := env.app.OpenProject(ctx, pos[0]); err != nil {
		return err
	}
	s, err := env.app.Summary(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(env.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

var kindAliases = map[string]string{
	"media": resource.FactoryMedia,
	"image": resource.FactoryImage,
	"color": resource.FactoryColor,
}

func runFind(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet("find", env)
	mode := fs.String("mode", "fuzzy", "fuzzy, exact, prefix, contains, glob or regex")
	kind := fs.String("kind", "", "only resources of this kind (media, image, color)")
	offline := fs.Bool("offline", false, "only offline resources")
	limit := fs.Int("limit", search.DefaultOptions().MaxResults, "maximum results (0 = unlimited)")
	pos, err := positional(fs, args, 2)
	if err != nil {
		return err
	}

	opts := search.Options{MaxResults: *limit, OfflineOnly: *offline}
	if opts.Mode, err = search.ParseMatchMode(*mode); err != nil {
		return usageError{msg: err.Error()}
	}
	if *kind != "" {
		id, ok := kindAliases[*kind]
		if !ok {
			id = *kind
		}
		opts.Kinds = []string{id}
	}

	if err := env.app.OpenProject(ctx, pos[0]); err != nil {
		return err
	}
	matches, err := env.app.FindResources(ctx, pos[1], opts)
	if err != nil {
		return err
	}
	for _, m := range matches {
		state := "online"
		if !m.Online {
			state = "offline"
		}
		fmt.Fprintf(env.stdout, "%-8d %-6s %-7s %s\n", m.ID, m.Kind, state, m.Path)
	}
	if len(matches) == 0 {
		fmt.Fprintf(env.stdout, "no resources match %q\n", pos[1])
	}
	return nil
}

func printChange(w io.Writer, c app.ResourceChange) {
	var state string
	switch {
	case c.Err != nil:
		state = "error: " + c.Err.Error()
	case c.WentOffline:
		state = "offline"
	case c.WentOnline:
		state = "online"
	case c.ContentChanged:
		state = "changed"
	}
	fmt.Fprintf(w, "%-8d %-24s %s (%s)\n", c.ID, c.Name, state, c.Path)
}

func runCheck(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet("check", env)
	save := fs.Bool("save", false, "save the project when states changed")
	pos, err := positional(fs, args, 1)
	if err != nil {
		return err
	}
	if err := env.app.OpenProject(ctx, pos[0]); err != nil {
		return err
	}

	changes, err := env.app.CheckResources(ctx)
	if err != nil {
		return err
	}
	for _, c := range changes {
		printChange(env.stdout, c)
	}
	s, err := env.app.Summary(ctx)
	if err != nil {
		return err
	}
	total, offline := s.ResourceCount()
	fmt.Fprintf(env.stdout, "%d resources, %d offline\n", total, offline)

	if *save && len(changes) > 0 {
		if err := env.app.SaveProject(ctx, ""); err != nil {
			return err
		}
	}
	if env.app.Config().Resources().Watch {
		return watchUntilDone(ctx, env, "")
	}
	return nil
}

func runScript(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet("script", env)
	dryRun := fs.Bool("dry-run", false, "run the script without saving")
	pos, err := positional(fs, args, 2)
	if err != nil {
		return err
	}
	if err := env.app.OpenProject(ctx, pos[0]); err != nil {
		return err
	}

	res, err := env.app.RunScript(ctx, pos[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "%s: %d edits, %d calls\n", res.Script, res.Edits, res.Calls)

	if *dryRun || res.Edits == 0 {
		return nil
	}
	return env.app.SaveProject(ctx, "")
}

func runWatch(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet("watch", env)
	addr := fs.String("metrics-addr", "", "serve /metrics, /healthz and /project on this address")
	pos, err := positional(fs, args, 1)
	if err != nil {
		return err
	}
	if err := env.app.OpenProject(ctx, pos[0]); err != nil {
		return err
	}
	return watchUntilDone(ctx, env, *addr)
}

func watchUntilDone(ctx context.Context, env *cmdEnv, addr string) error {
	rw, err := env.app.Watch(ctx)
	if err != nil {
		return err
	}
	defer rw.Close()

	if addr != "" {
		srv, err := env.app.Serve(addr)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				fmt.Fprintf(env.stderr, "Error: status server: %v\n", err)
			}
		}()
		fmt.Fprintf(env.stdout, "serving metrics on http://%s/metrics\n", srv.Addr())
	}

	fmt.Fprintf(env.stdout, "watching %s\n", strings.Join(rw.Files(), ", "))
	for c := range rw.Changes() {
		printChange(env.stdout, c)
	}
	return nil
}
