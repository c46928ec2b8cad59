//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/weaviate/simple-todo/adapters/repos/db/todokv"
	"github.com/weaviate/simple-todo/usecases/config"
	"github.com/weaviate/simple-todo/usecases/monitoring"
	"github.com/weaviate/simple-todo/usecases/todo"
)

// state is built in Before and torn down in After, every command runs
// against the same open store.
type state struct {
	config      config.Config
	logger      *logrus.Logger
	promMetrics *monitoring.PrometheusMetrics
	store       *todokv.Store
	manager     *todo.Manager
}

func newApp() *cli.App {
	st := &state{}

	return &cli.App{
		Name:  "simple-todo",
		Usage: "a single-user todo list kept in an append-only change log",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config-file",
				Usage: "path to a yaml config file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "checkpoint file path, the change log and id counter live next to it",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "json or text",
			},
		},
		Before: func(c *cli.Context) error {
			return st.open(c)
		},
		After: func(c *cli.Context) error {
			return st.close()
		},
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "show where the list is stored and how many items it holds",
				Action: st.info,
			},
			{
				Name:      "add",
				Usage:     "add an item",
				ArgsUsage: "<content...>",
				Action:    st.add,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "remove an item by id",
				ArgsUsage: "<id>",
				Action:    st.remove,
			},
			{
				Name:   "list",
				Usage:  "list all items",
				Action: st.list,
			},
			{
				Name:   "compact",
				Usage:  "fold the change log into the checkpoint",
				Action: st.compact,
			},
		},
	}
}

func (st *state) open(c *cli.Context) error {
	cfg, err := config.LoadConfig(config.Flags{
		ConfigFile: c.String("config-file"),
		DataPath:   c.String("db"),
		LogLevel:   c.String("log-level"),
		LogFormat:  c.String("log-format"),
	})
	if err != nil {
		return err
	}
	st.config = cfg

	st.logger = config.NewLogger(cfg)
	st.logger.SetOutput(c.App.ErrWriter)

	if cfg.Monitoring.Enabled {
		st.promMetrics = monitoring.NewPrometheusMetrics()
	} else {
		st.promMetrics = monitoring.NewNoopPrometheusMetrics()
	}

	path := cfg.Persistence.DataPath
	metrics := todokv.NewMetrics(st.promMetrics, filepath.Base(path))
	store, err := todokv.Open(path, st.logger, metrics,
		todokv.WithCompactionProbability(cfg.Compaction.Probability),
		todokv.WithDegradedReads(cfg.DegradedReads),
	)
	if err != nil {
		return errors.Wrapf(err, "open todo list at %q", path)
	}
	st.store = store

	retry := cfg.Retry
	st.manager = todo.NewManager(store, st.logger, func() backoff.BackOff {
		return todo.ConstantBackoff(retry.MaxRetries, retry.Interval)
	})

	return nil
}

func (st *state) close() error {
	if st.store == nil {
		return nil
	}

	err := st.store.Close()
	st.store = nil

	if st.config.Monitoring.Enabled {
		path := st.config.Monitoring.TextfilePath
		if werr := st.promMetrics.WriteTextfile(path); werr != nil {
			st.logger.WithField("action", "write_metrics_textfile").
				WithField("path", path).
				WithError(werr).
				Error("could not write metrics")
		}
	}

	return err
}

func (st *state) info(c *cli.Context) error {
	count, err := st.manager.Count(c.Context)
	if err != nil {
		return err
	}

	path := st.config.Persistence.DataPath
	w := c.App.Writer
	fmt.Fprintf(w, "checkpoint:  %s\n", path)
	fmt.Fprintf(w, "change log:  %s.change\n", path)
	fmt.Fprintf(w, "id counter:  %s.seq\n", path)
	fmt.Fprintf(w, "compaction:  p=%v\n", st.config.Compaction.Probability)
	fmt.Fprintf(w, "items:       %d\n", count)
	return nil
}

func (st *state) add(c *cli.Context) error {
	content := strings.Join(c.Args().Slice(), " ")
	id, err := st.manager.Add(c.Context, content)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "added %d\n", id)
	return nil
}

func (st *state) remove(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("remove takes exactly one id", 1)
	}

	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid id %q", c.Args().First()), 1)
	}

	return st.manager.Remove(c.Context, id)
}

func (st *state) list(c *cli.Context) error {
	items, err := st.manager.List(c.Context)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		st.logger.WithField("action", "todo_list").Warn("the todo list is empty")
		return nil
	}

	for _, item := range items {
		fmt.Fprintf(c.App.Writer, "🔥 %d: %s\n", item.ID, item.Content)
	}
	return nil
}

func (st *state) compact(c *cli.Context) error {
	if err := st.manager.Compact(c.Context); err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "compacted")
	return nil
}
