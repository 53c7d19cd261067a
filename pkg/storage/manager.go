package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Manager holds the configured disks and knows which one is the default.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
}

// NewManager returns a manager whose default disk is name. Register disks
// before use.
func NewManager(defaultDisk string) *Manager {
	return &Manager{disks: map[string]Disk{}, defaultDisk: defaultDisk}
}

// Connect boots the disks described by configuration: the local disk always,
// the s3 disk when S3_BUCKET is set. A default disk that failed to boot
// falls back to local.
func Connect(ctx context.Context) *Manager {
	m := NewManager(config.StorageDefault())
	m.Register("local", NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()))

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.Register("s3", d)
		}
	}

	if _, err := m.Use(m.defaultDisk); err != nil {
		logger.Warn("storage: default disk unavailable, using local", "disk", m.defaultDisk)
		m.defaultDisk = "local"
	}
	return m
}

// Register adds or replaces a disk.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}

// Use returns the named disk.
func (m *Manager) Use(name string) (Disk, error) {
	m.mu.RLock()
	d, ok := m.disks[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the default disk. It panics when the default was never
// registered, which only happens with a hand-built Manager.
func (m *Manager) Default() Disk {
	d, err := m.Use(m.defaultDisk)
	if err != nil {
		panic(err)
	}
	return d
}

// LocalRoot reports the directory backing d when d is a local disk, so the
// HTTP kernel can serve it.
func LocalRoot(d Disk) (string, bool) {
	type rooted interface{ Root() string }
	if r, ok := d.(rooted); ok {
		return r.Root(), true
	}
	return "", false
}
