package config

import (
	"errors"
	"fmt"

	"github.com/FocuswithJustin/JuniperEdition/core/witness"
	"github.com/FocuswithJustin/JuniperEdition/internal/logging"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateCollation()
}

func (c *Config) validateStore() error {
	if c.Store.Dir == "" {
		return errors.New("store.dir is required")
	}
	if c.Store.LockTimeoutSeconds < 0 {
		return fmt.Errorf("store.lock_timeout_seconds must be >= 0, got %d", c.Store.LockTimeoutSeconds)
	}
	return nil
}

func (c *Config) validateLog() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format == "auto" {
		return nil
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be >= 0, got %d", c.Cache.TTLSeconds)
	}
	return nil
}

func (c *Config) validateCollation() error {
	if c.Collation.Lang == "" {
		return errors.New("collation.lang is required")
	}
	for _, n := range c.Collation.Normalizers {
		if _, err := witness.NormalizerByName(n); err != nil {
			return fmt.Errorf("collation.normalizers: %w", err)
		}
	}
	if c.Collation.MaxEditCost < 0 {
		return fmt.Errorf("collation.max_edit_cost must be >= 0, got %d", c.Collation.MaxEditCost)
	}
	if c.Collation.InsertColumnRounds < 0 {
		return fmt.Errorf("collation.insert_column_rounds must be >= 0, got %d", c.Collation.InsertColumnRounds)
	}
	return nil
}
