package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/domxml/internal/access"
	"github.com/zjrosen/domxml/internal/config"
	"github.com/zjrosen/domxml/internal/flags"
	"github.com/zjrosen/domxml/internal/infrastructure/sqlite"
	"github.com/zjrosen/domxml/internal/library"
	"github.com/zjrosen/domxml/internal/log"
	"github.com/zjrosen/domxml/internal/marshal"
	"github.com/zjrosen/domxml/internal/metadata"
	"github.com/zjrosen/domxml/internal/proxy"
	"github.com/zjrosen/domxml/internal/tracing"
)

// app wires the collaborators every command needs.
type app struct {
	cfg      config.Config
	registry *metadata.Registry
	reloader *metadata.Reloader
	tracer   *tracing.Provider
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	reg := metadata.NewRegistry(metadata.Options{
		CacheDescriptors: flags.New(cfg.Flags).Enabled(flags.FlagDescribeCache),
		CacheTTL:         cfg.Cache.TTL,
	})
	if err := library.Register(reg); err != nil {
		reg.Close()
		return nil, err
	}

	a := &app{cfg: cfg, registry: reg}
	if cfg.Mapping.Dir != "" {
		r, err := metadata.NewReloader(reg, cfg.Mapping.Dir)
		if err != nil {
			reg.Close()
			return nil, fmt.Errorf("loading mappings: %w", err)
		}
		a.reloader = r
		if cfg.Mapping.Watch {
			if err := r.Start(ctx); err != nil {
				a.Close()
				return nil, err
			}
		}
	}

	tp, err := tracing.NewProvider(cfg.TracingConfig())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	a.tracer = tp
	return a, nil
}

// Marshaller returns a marshaller configured from the marshal section, with
// extra options applied last.
func (a *app) Marshaller(extra ...marshal.Option) (*marshal.DomainMarshaller, error) {
	opts, err := a.cfg.MarshalOptions()
	if err != nil {
		return nil, err
	}
	return marshal.New(a.registry, access.New(), proxy.NewResolver(), append(opts, extra...)...), nil
}

// ResolveClass returns the registered class matching name case-insensitively.
func (a *app) ResolveClass(name string) (string, error) {
	for _, class := range a.registry.Classes() {
		if strings.EqualFold(class, name) {
			return class, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, metadata.ErrUnknownClass)
}

func (a *app) OpenDB() (*sqlite.DB, error) {
	return sqlite.NewDB(a.cfg.Database.Path)
}

func (a *app) Close() {
	var errs []error
	if a.reloader != nil {
		errs = append(errs, a.reloader.Stop())
	}
	if a.tracer != nil {
		errs = append(errs, a.tracer.Shutdown(context.Background()))
	}
	a.registry.Close()
	if err := errors.Join(errs...); err != nil {
		log.ErrorErr(log.CatCLI, "Shutdown failed", err)
	}
}
