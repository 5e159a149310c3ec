package config

import (
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateArchive() error {
	switch c.Archive.Engine {
	case "internal", "tool":
	default:
		return fmt.Errorf("archive.engine must be \"internal\" or \"tool\", got %q", c.Archive.Engine)
	}
	if c.Archive.CompressionLevel < 1 || c.Archive.CompressionLevel > 9 {
		return fmt.Errorf("archive.compression_level must be between 1 and 9, got %d", c.Archive.CompressionLevel)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
