// Package seeders provides a registry of seed functions run by `storefront seed`.
//
// Seeders go through the services, never the store, so seeded records pass
// the same validation and fire the same events as API writes:
//
//	func init() {
//	    seeders.Register("categories", seedCategories)
//	}
//
//	func seedCategories(ctx context.Context, s kernel.Services) error {
//	    _, err := s.Categories.Create(ctx, models.CategoryInput{Name: "Lighting"})
//	    return err
//	}
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shashiranjanraj/storefront/internal/kernel"
)

// SeederFunc is the signature for a seed function. Seeders must be
// idempotent: `seed` may run against a populated store.
type SeederFunc func(ctx context.Context, s kernel.Services) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
// Call this from init() in your seeder files.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// Names lists the registered seeders in run order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// RunAll executes every registered seeder in registration order, reporting
// progress to out. It stops on the first error.
func RunAll(ctx context.Context, s kernel.Services, out io.Writer) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if len(current) == 0 {
		fmt.Fprintln(out, "  (no seeders registered)")
		return nil
	}

	for _, e := range current {
		fmt.Fprintf(out, "  • Running seeder: %s … ", e.name)
		if err := e.fn(ctx, s); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(out, "done")
	}
	return nil
}
