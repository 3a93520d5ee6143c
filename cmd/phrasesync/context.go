package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"phrasesync/internal/api"
	"phrasesync/internal/config"
	"phrasesync/internal/library"
	"phrasesync/internal/logging"
	"phrasesync/internal/script"
)

type commandContext struct {
	apiFlag    *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) apiAddress() string {
	if c.apiFlag != nil && strings.TrimSpace(*c.apiFlag) != "" {
		return strings.TrimSpace(*c.apiFlag)
	}
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil {
		return ""
	}
	return cfg.Paths.APIBind
}

func (c *commandContext) withClient(fn func(*api.Client) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	client, err := api.NewClient(c.apiAddress(), cfg.Paths.APIToken)
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("connect to daemon: %w; set paths.api_bind or pass --api", api.ErrAPIUnavailable)
	}
	if err := fn(client); err != nil {
		if api.IsAPIUnavailable(err) {
			return fmt.Errorf("connect to daemon at %s: %w; start it with `phrasesync serve`", c.apiAddress(), err)
		}
		return err
	}
	return nil
}

func (c *commandContext) withLibrary(fn func(*library.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// resolver builds a script resolver backed by store, which may be nil.
func (c *commandContext) resolver(store *library.Store) (*script.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	r := &script.Resolver{
		ScriptDir: cfg.Paths.ScriptDir,
		Default:   cfg.Playback.DefaultScript,
		Logger:    logging.NewNop(),
	}
	if store != nil {
		r.Catalog = store
	}
	return r, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
