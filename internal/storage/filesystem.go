package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"credentialing/internal/utils"
)

// FilesystemPacketStore writes manifests next to the case's documents under
// {workspace}/credentialing/{caseId}/packets.
type FilesystemPacketStore struct {
	workspace string
}

func NewFilesystemPacketStore(workspace string) *FilesystemPacketStore {
	return &FilesystemPacketStore{workspace: workspace}
}

func (s *FilesystemPacketStore) packetDir(caseID string) string {
	return filepath.Join(s.workspace, "credentialing", caseID, "packets")
}

func (s *FilesystemPacketStore) SavePacket(_ context.Context, manifest *Manifest) (string, error) {
	dir := s.packetDir(manifest.CaseID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create packet directory: %w", err)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal packet manifest: %w", err)
	}

	name := fmt.Sprintf("packet-%s-%s.json", manifest.AssembledAt.UTC().Format("20060102T150405.000000Z"), utils.Suffix())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write packet manifest: %w", err)
	}

	return path, nil
}

// resolve maps a key to a path inside the workspace's credentialing tree.
func (s *FilesystemPacketStore) resolve(key string) (string, error) {
	root, err := filepath.Abs(filepath.Join(s.workspace, "credentialing"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	path, err := filepath.Abs(key)
	if err != nil {
		return "", fmt.Errorf("failed to resolve packet key: %w", err)
	}
	if !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("packet key %s is outside the workspace", key)
	}
	return path, nil
}

func (s *FilesystemPacketStore) LoadPacket(_ context.Context, key string) (*Manifest, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrPacketNotFound
		}
		return nil, fmt.Errorf("failed to read packet manifest: %w", err)
	}

	manifest := new(Manifest)
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("failed to decode packet manifest: %w", err)
	}

	return manifest, nil
}

func (s *FilesystemPacketStore) DeletePacket(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete packet manifest: %w", err)
	}
	return nil
}
