package config

import (
	"fmt"
	"os"
	"strings"
)

// storeDirEnv overrides store.dir when set.
const storeDirEnv = "JUNIPER_EDITION_STORE"

func (c *Config) normalize() error {
	if dir, ok := os.LookupEnv(storeDirEnv); ok && strings.TrimSpace(dir) != "" {
		c.Store.Dir = dir
	}
	var err error
	if c.Store.Dir, err = expandPath(strings.TrimSpace(c.Store.Dir)); err != nil {
		return fmt.Errorf("store.dir: %w", err)
	}
	if strings.TrimSpace(c.Store.DBFile) == "" {
		c.Store.DBFile = "tables.db"
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = "auto"
	}

	c.Collation.Lang = strings.TrimSpace(c.Collation.Lang)
	names := c.Collation.Normalizers[:0]
	for _, n := range c.Collation.Normalizers {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			names = append(names, n)
		}
	}
	c.Collation.Normalizers = names
	return nil
}
