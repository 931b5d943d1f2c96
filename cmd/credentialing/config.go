package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"credentialing/internal/storage"
	"credentialing/internal/tools"
	"credentialing/pkg/types"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

func loadConfig(prefix string) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DBPath == "" {
		c.DBPath = ":memory:"
	}

	if c.WorkspacePath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		c.WorkspacePath = wd
	}

	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	return c, nil
}

// parseAllowedTools accepts a JSON array or a comma separated list. An empty
// value means no restriction and yields nil.
func parseAllowedTools(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if strings.HasPrefix(raw, "[") {
		names := []string{}
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return nil, fmt.Errorf("failed to parse allowed tools as JSON: %w", err)
		}
		return names, nil
	}

	names := []string{}
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// allowedTools resolves the session's allow-list. An explicit list wins over
// the role's.
func allowedTools(c *types.Config) ([]string, error) {
	names, err := parseAllowedTools(c.AllowedTools)
	if err != nil || names != nil {
		return names, err
	}

	if c.Role == "" {
		return nil, nil
	}
	return tools.RoleTools(tools.Role(c.Role))
}

// principalFromConfig returns nil unless both a known actor type and an actor
// id are configured.
func principalFromConfig(c *types.Config) *types.Principal {
	actorType := types.ActorType(strings.TrimSpace(c.ActorType))
	actorID := strings.TrimSpace(c.ActorID)
	if !actorType.Valid() || actorID == "" {
		return nil
	}

	return &types.Principal{
		ActorType:   actorType,
		ActorID:     actorID,
		HumanUserID: strings.TrimSpace(c.HumanUserID),
	}
}

func packetStoreFromConfig(ctx context.Context, c *types.Config) (storage.PacketStore, error) {
	switch strings.ToLower(c.PacketStore) {
	case "", "filesystem":
		return storage.NewFilesystemPacketStore(c.WorkspacePath), nil
	case "s3":
		return storage.NewS3PacketStoreFromConfig(ctx, storage.S3Config{
			Bucket:   c.PacketBucket,
			Region:   c.S3Region,
			Endpoint: c.S3Endpoint,
		})
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown packet store %q", c.PacketStore)
}

// newLogger writes to stderr. In stdio mode stdout carries the protocol.
func newLogger(c *types.Config, jsonFormat bool) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if jsonFormat {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	logger.SetLevel(level)

	return logger, nil
}
