package storage

import (
	"context"
	"errors"

	"credentialing/pkg/types"
)

const ManifestVersion = 1

var ErrPacketNotFound = errors.New("packet not found")

// Manifest is the assembled credentialing packet for one case.
type Manifest struct {
	CaseID          string                `json:"caseId"`
	ManifestVersion int                   `json:"manifestVersion"`
	Documents       []*types.Document     `json:"documents"`
	Verifications   []*types.Verification `json:"verifications"`
	AssembledAt     types.Timestamp       `json:"assembledAt"`
}

// PacketStore persists packet manifests. SavePacket returns the key the
// manifest can be loaded back with. Deleting a missing key is not an error.
type PacketStore interface {
	SavePacket(ctx context.Context, manifest *Manifest) (string, error)
	LoadPacket(ctx context.Context, key string) (*Manifest, error)
	DeletePacket(ctx context.Context, key string) error
}
