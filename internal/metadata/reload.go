package metadata

import (
	"context"
	"os"
	"sync"

	"github.com/zjrosen/domxml/internal/log"
	"github.com/zjrosen/domxml/internal/watcher"
)

// Reloader keeps a Registry's mapping descriptors in sync with a directory.
type Reloader struct {
	reg *Registry
	dir string
	w   *watcher.Watcher

	mu      sync.Mutex
	lastErr error
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewReloader loads the mappings in dir once and prepares a watcher for it.
// A failed initial load is returned; later failures keep the previous
// descriptors and are reported by Err.
func NewReloader(reg *Registry, dir string) (*Reloader, error) {
	if err := reg.LoadMappings(os.DirFS(dir), "."); err != nil {
		return nil, err
	}
	w, err := watcher.New(watcher.DefaultConfig(dir, IsMappingFile))
	if err != nil {
		return nil, err
	}
	return &Reloader{reg: reg, dir: dir, w: w, done: make(chan struct{})}, nil
}

// Start reloads mappings on every debounced change until ctx is done or Stop
// is called.
func (r *Reloader) Start(ctx context.Context) error {
	changes, err := r.w.Start()
	if err != nil {
		return err
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				r.reload()
			}
		}
	}()
	log.Info(log.CatWatcher, "Watching domain mappings", "dir", r.dir)
	return nil
}

func (r *Reloader) reload() {
	err := r.reg.LoadMappings(os.DirFS(r.dir), ".")
	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Mapping reload failed, keeping previous descriptors", err, "dir", r.dir)
	}
}

// Err returns the error of the most recent reload, nil if it succeeded.
func (r *Reloader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Stop terminates the watcher.
func (r *Reloader) Stop() error {
	close(r.done)
	err := r.w.Stop()
	r.wg.Wait()
	return err
}
