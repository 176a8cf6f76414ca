package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/FocuswithJustin/JuniperEdition/core/sqlite"
	"github.com/FocuswithJustin/JuniperEdition/internal/config"
	"github.com/FocuswithJustin/JuniperEdition/internal/store"
)

// StoreGroup contains versioned table store operations.
type StoreGroup struct {
	Init    StoreInitCmd    `cmd:"" help:"Create the store database and snapshot directory"`
	List    StoreListCmd    `cmd:"" help:"List stored tables"`
	Save    StoreSaveCmd    `cmd:"" help:"Save a table file as a new version"`
	Show    StoreShowCmd    `cmd:"" help:"Print a stored version of a table"`
	History StoreHistoryCmd `cmd:"" help:"List the versions of a table"`
}

func (e *env) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, store.Options{
		Dir:         e.cfg.Store.Dir,
		DBFile:      e.cfg.Store.DBFile,
		LockTimeout: time.Duration(e.cfg.Store.LockTimeoutSeconds) * time.Second,
	})
}

// StoreInitCmd creates an empty store.
type StoreInitCmd struct{}

func (c *StoreInitCmd) Run(e *env) error {
	s, err := e.openStore(context.Background())
	if err != nil {
		return err
	}
	defer s.Close()
	info := sqlite.GetInfo()
	e.printf("database:  %s\nsnapshots: %s\ndriver:    %s (%s)\n", e.cfg.DBPath(), e.cfg.SnapshotDir(), info.Package, info.DriverType)
	return nil
}

// StoreListCmd lists stored tables.
type StoreListCmd struct{}

func (c *StoreListCmd) Run(e *env) error {
	ctx := context.Background()
	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	tables, err := s.ListTables(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, len(tables))
	for i, t := range tables {
		rows[i] = []string{t.ID, t.Title, t.CreatedAt.Local().Format(time.DateTime)}
	}
	e.printf("%s\n", renderTable([]string{"ID", "Title", "Created"}, rows, nil))
	return nil
}

// StoreSaveCmd saves a table file as the next version of a stored table.
type StoreSaveCmd struct {
	Table   string `arg:"" help:"Collation table JSON file" type:"existingfile"`
	ID      string `help:"Stored table ID (default: create a new table)"`
	Author  string `help:"Version author (default: the USER environment variable)"`
	Message string `short:"m" help:"Version description"`
}

func (c *StoreSaveCmd) Run(e *env) error {
	ct, err := readTable(c.Table)
	if err != nil {
		return err
	}
	ctx := context.Background()
	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	author := c.Author
	if author == "" {
		author = os.Getenv("USER")
	}
	id := c.ID
	if id == "" {
		t, err := s.CreateTable(ctx, ct.Title)
		if err != nil {
			return err
		}
		id = t.ID
	}
	v, err := s.SaveVersion(ctx, id, ct, author, c.Message)
	if err != nil {
		return err
	}
	e.printf("table %s version %s (sha256 %s)\n", id, v.ID, v.SnapshotSHA256)
	return nil
}

// StoreShowCmd prints the current or a past version of a table.
type StoreShowCmd struct {
	ID  string `arg:"" help:"Stored table ID"`
	At  string `help:"Show the version current at this RFC 3339 time"`
	Out string `short:"o" help:"Output path (default: stdout)" type:"path"`
}

func (c *StoreShowCmd) Run(e *env) error {
	ctx := context.Background()
	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var v *store.Version
	if c.At == "" {
		v, err = s.Latest(ctx, c.ID)
	} else {
		at, perr := time.Parse(time.RFC3339, c.At)
		if perr != nil {
			return fmt.Errorf("invalid --at time: %w", perr)
		}
		v, err = s.VersionAt(ctx, c.ID, at)
	}
	if err != nil {
		return err
	}
	ct, err := s.Load(v)
	if err != nil {
		return err
	}
	return e.writeTable(ct, c.Out)
}

// StoreHistoryCmd lists the versions of a table.
type StoreHistoryCmd struct {
	ID string `arg:"" help:"Stored table ID"`
}

func (c *StoreHistoryCmd) Run(e *env) error {
	ctx := context.Background()
	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	versions, err := s.History(ctx, c.ID)
	if err != nil {
		return err
	}
	rows := make([][]string, len(versions))
	for i, v := range versions {
		until := "current"
		if v.TimeUntil != nil {
			until = v.TimeUntil.UTC().Format(time.RFC3339Nano)
		}
		rows[i] = []string{v.ID, v.TimeFrom.UTC().Format(time.RFC3339Nano), until, v.Author, v.Description}
	}
	e.printf("%s\n", renderTable([]string{"Version", "From", "Until", "Author", "Description"}, rows, nil))
	return nil
}

// ConfigGroup contains configuration file operations.
type ConfigGroup struct {
	Init ConfigInitCmd `cmd:"" help:"Write a sample configuration file"`
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration"`
}

// ConfigInitCmd writes the sample configuration.
type ConfigInitCmd struct {
	Path  string `arg:"" optional:"" help:"Destination (default: user config path)" type:"path"`
	Force bool   `help:"Overwrite an existing file"`
}

func (c *ConfigInitCmd) Run(e *env) error {
	path := c.Path
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.CreateSample(path); err != nil {
		return err
	}
	e.printf("wrote %s\n", path)
	return nil
}

// ConfigShowCmd prints the effective configuration as TOML.
type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(e *env) error {
	data, err := e.cfg.Encode()
	if err != nil {
		return err
	}
	e.printf("# %s\n%s", e.cfgPath, data)
	return nil
}
