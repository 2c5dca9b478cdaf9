package storage

import (
	"context"
	"time"
)

// Metadata contains metadata stored alongside a generated document
type Metadata struct {
	ContentType    string            `json:"contentType,omitempty"`
	ProposalNumber string            `json:"proposalNumber,omitempty"`
	Client         string            `json:"client,omitempty"`
	GeneratedAt    time.Time         `json:"generatedAt,omitempty"`
	Custom         map[string]string `json:"custom,omitempty"`
}

// FileInfo contains information about a stored document
type FileInfo struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	Checksum    string    `json:"checksum"`
	ContentType string    `json:"contentType,omitempty"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	Metadata    *Metadata `json:"metadata,omitempty"`
}

// Storage defines the interface for archiving generated proposals.
// Only generated documents are stored; catalog and cart data never are.
type Storage interface {
	// Put stores content at the given key with optional metadata
	Put(ctx context.Context, key string, content []byte, metadata *Metadata) error

	// Get retrieves content from the given key
	Get(ctx context.Context, key string) ([]byte, error)

	// GetInfo retrieves file information without content
	GetInfo(ctx context.Context, key string) (*FileInfo, error)

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all keys matching the given prefix
	List(ctx context.Context, prefix string) ([]string, error)
}
