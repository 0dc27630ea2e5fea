package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"scrubarr/internal/config"
	"scrubarr/internal/services/sonarr"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// selectClients narrows clients to one instance index when index is positive.
func selectClients(clients []*sonarr.Client, index int) ([]*sonarr.Client, error) {
	if index <= 0 {
		return clients, nil
	}
	name := config.InstanceName(index)
	for _, client := range clients {
		if client.Name() == name {
			return []*sonarr.Client{client}, nil
		}
	}
	return nil, fmt.Errorf("instance %d is not configured or not usable", index)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
