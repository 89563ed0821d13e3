package media

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/arviel/mediactl/internal/rx"
)

// Selector is the reactive source-selection pipeline. It normalizes the
// user-supplied candidates, re-resolves the (source, loader) pair when
// the candidate list or loader preference changes, and drives provider
// attachment, preconnect and source loading off the can-load flag.
type Selector struct {
	log     *slog.Logger
	store   *Store
	writer  *SourceWriter
	queue   *RequestQueue
	events  *Dispatcher
	factory ProviderFactory
	loaders func() []Loader

	rawSources   *rx.Cell[[]Source]
	preferNative *rx.Cell[bool]

	mu        sync.Mutex
	curSource Source
	curLoader Loader
	loaded    bool

	effect *rx.Effect
}

func NewSelector(
	store *Store,
	events *Dispatcher,
	queue *RequestQueue,
	factory ProviderFactory,
	nativeHLS func() bool,
	log *slog.Logger,
) *Selector {
	s := &Selector{
		log:          log,
		store:        store,
		writer:       store.SourceWriter(),
		queue:        queue,
		events:       events,
		factory:      factory,
		rawSources:   rx.NewCellFunc[[]Source](nil, SourcesEqual),
		preferNative: rx.NewCell(false),
	}
	s.loaders = func() []Loader {
		return DefaultLoaders(s.preferNative.Get(), nativeHLS)
	}
	s.effect = rx.NewEffect(s.resolve)
	return s
}

// SetSources replaces the user-supplied candidate list. Normalization
// and re-selection run reactively.
func (s *Selector) SetSources(specs []Source) {
	s.rawSources.Set(Normalize(specs))
}

// SetPreferNativeHLS flips the loader-preference flag: when true,
// native playback of streaming formats is probed before the adaptive
// engine.
func (s *Selector) SetPreferNativeHLS(v bool) {
	s.preferNative.Set(v)
}

// Close stops re-selection and detaches any attached provider.
func (s *Selector) Close() {
	s.effect.Stop()
	s.detachProvider()
}

func (s *Selector) resolve(t *rx.Track) {
	sources := rx.Read(t, rx.Signal[[]Source](s.rawSources))
	_ = rx.Read(t, rx.Signal[bool](s.preferNative))
	canLoad := rx.Read(t, s.store.CanLoad())

	if !SourcesEqual(sources, s.store.Sources().Get()) {
		s.writer.SetSources(sources)
		s.events.Dispatch(Event{Type: EventSourcesChange, Detail: sources})
	}

	src, loader, ok := SelectSource(sources, s.loaders())

	s.mu.Lock()
	changed := !src.Equal(s.curSource) || !sameLoader(loader, s.curLoader)
	wasLoaded := s.loaded
	if changed {
		s.curSource = src
		s.curLoader = loader
		s.loaded = false
	}
	s.mu.Unlock()

	if changed {
		s.writer.SetSource(src)
		s.events.Dispatch(Event{Type: EventSourceChange, Detail: src})

		mt := MediaTypeUnknown
		if ok {
			mt = loader.MediaType(src)
		}
		s.writer.SetMediaType(mt)
		s.events.Dispatch(Event{Type: EventMediaTypeChange, Detail: mt})

		if wasLoaded {
			s.detachProvider()
		}

		// Loading deferred: only warm the network for the new loader.
		if ok && !canLoad {
			if pc, has := loader.(Preconnector); has {
				pc.Preconnect(context.Background())
			}
		}

		s.writer.SetLoader(loader)
		s.events.Dispatch(Event{Type: EventProviderLoaderChange, Detail: loader})
	}

	if !ok || !canLoad {
		return
	}

	s.mu.Lock()
	needSetup := !s.loaded
	if needSetup {
		s.loaded = true
	}
	s.mu.Unlock()
	if !needSetup {
		return
	}

	s.setupProvider(src, loader)
}

func (s *Selector) setupProvider(src Source, loader Loader) {
	prov, err := s.factory(loader, src)
	if err != nil {
		s.log.Error("provider setup failed", "loader", loader.Name(), "src", src.String(), "err", err)
		s.mu.Lock()
		s.loaded = false
		s.mu.Unlock()
		return
	}

	trigger := s.queue.Serve(RequestLoad)
	s.writer.SetProvider(prov)
	s.events.Dispatch(Event{Type: EventProviderChange, Detail: prov, Trigger: trigger})

	if err := prov.LoadSource(context.Background(), src, PreloadMetadata); err != nil {
		s.log.Error("source load failed", "provider", prov.Name(), "src", src.String(), "err", err)
	}
}

func (s *Selector) detachProvider() {
	old := s.store.Provider().Get()
	if old == nil {
		return
	}
	s.writer.SetProvider(nil)
	s.events.Dispatch(Event{Type: EventProviderChange, Detail: nil})
	if c, ok := old.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.log.Warn("provider teardown", "provider", old.Name(), "err", err)
		}
	}
}

func sameLoader(a, b Loader) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}
