package media

import (
	"math"

	"github.com/arviel/mediactl/internal/rx"
)

// TimeRange is a closed seekable interval in seconds.
type TimeRange struct {
	Start float64
	End   float64
}

// StreamType classifies the loaded stream once known.
type StreamType string

const (
	StreamTypeUnknown  StreamType = "unknown"
	StreamTypeOnDemand StreamType = "on-demand"
	StreamTypeLive     StreamType = "live"
	StreamTypeLiveDVR  StreamType = "live:dvr"

	// Low-latency hints. Never produced by stream classification, but
	// accepted as a user hint so the adaptive engine can be constructed
	// in low-latency mode up front.
	StreamTypeLiveLL    StreamType = "ll-live"
	StreamTypeLiveDVRLL StreamType = "ll-live:dvr"
)

// Store is the per-player observable state bag. Every externally
// visible media property lives here as a cell. Writes go through one of
// three narrow writer views so each field has exactly one authorized
// writer: the request manager (playback intent), the source selector
// (source/loader/provider), and the stream lifecycle manager
// (stream-type/duration/live-sync).
type Store struct {
	// playback intent
	paused             *rx.Cell[bool]
	muted              *rx.Cell[bool]
	volume             *rx.Cell[float64]
	currentTime        *rx.Cell[float64]
	seeking            *rx.Cell[bool]
	ended              *rx.Cell[bool]
	canPlay            *rx.Cell[bool]
	canSeek            *rx.Cell[bool]
	seekable           *rx.Cell[TimeRange]
	live               *rx.Cell[bool]
	fullscreen         *rx.Cell[bool]
	canLoad            *rx.Cell[bool]
	canLoadPoster      *rx.Cell[bool]
	looping            *rx.Cell[bool]
	userBehindLiveEdge *rx.Cell[bool]
	userIdlePaused     *rx.Cell[bool]

	// source selection
	sources   *rx.Cell[[]Source]
	source    *rx.Cell[Source]
	mediaType *rx.Cell[MediaType]
	loader    *rx.Cell[Loader]
	provider  *rx.Cell[Provider]

	// stream lifecycle
	streamType       *rx.Cell[StreamType]
	duration         *rx.Cell[float64]
	liveSyncPosition *rx.Cell[float64]
}

func NewStore() *Store {
	return &Store{
		paused:             rx.NewCell(true),
		muted:              rx.NewCell(false),
		volume:             rx.NewCell(1.0),
		currentTime:        rx.NewCell(0.0),
		seeking:            rx.NewCell(false),
		ended:              rx.NewCell(false),
		canPlay:            rx.NewCell(false),
		canSeek:            rx.NewCell(true),
		seekable:           rx.NewCell(TimeRange{}),
		live:               rx.NewCell(false),
		fullscreen:         rx.NewCell(false),
		canLoad:            rx.NewCell(false),
		canLoadPoster:      rx.NewCell(false),
		looping:            rx.NewCell(false),
		userBehindLiveEdge: rx.NewCell(false),
		userIdlePaused:     rx.NewCell(false),

		sources:   rx.NewCellFunc(nil, SourcesEqual),
		source:    rx.NewCellFunc(Source{}, Source.Equal),
		mediaType: rx.NewCell(MediaTypeUnknown),
		loader: rx.NewCellFunc[Loader](nil, func(a, b Loader) bool {
			if a == nil || b == nil {
				return a == nil && b == nil
			}
			return a.Name() == b.Name()
		}),
		provider: rx.NewCellFunc[Provider](nil, func(a, b Provider) bool {
			return a == b
		}),

		streamType: rx.NewCell(StreamTypeUnknown),
		duration:   rx.NewCell(0.0),
		liveSyncPosition: rx.NewCellFunc(math.NaN(), func(a, b float64) bool {
			return a == b || (math.IsNaN(a) && math.IsNaN(b))
		}),
	}
}

// Read-side signals.

func (s *Store) Paused() rx.Signal[bool]                 { return s.paused }
func (s *Store) Muted() rx.Signal[bool]                  { return s.muted }
func (s *Store) Volume() rx.Signal[float64]              { return s.volume }
func (s *Store) CurrentTime() rx.Signal[float64]         { return s.currentTime }
func (s *Store) Seeking() rx.Signal[bool]                { return s.seeking }
func (s *Store) Ended() rx.Signal[bool]                  { return s.ended }
func (s *Store) CanPlay() rx.Signal[bool]                { return s.canPlay }
func (s *Store) CanSeek() rx.Signal[bool]                { return s.canSeek }
func (s *Store) Seekable() rx.Signal[TimeRange]          { return s.seekable }
func (s *Store) Live() rx.Signal[bool]                   { return s.live }
func (s *Store) Fullscreen() rx.Signal[bool]             { return s.fullscreen }
func (s *Store) CanLoad() rx.Signal[bool]                { return s.canLoad }
func (s *Store) CanLoadPoster() rx.Signal[bool]          { return s.canLoadPoster }
func (s *Store) Looping() rx.Signal[bool]                { return s.looping }
func (s *Store) UserBehindLiveEdge() rx.Signal[bool]     { return s.userBehindLiveEdge }
func (s *Store) UserIdlePaused() rx.Signal[bool]         { return s.userIdlePaused }
func (s *Store) Sources() rx.Signal[[]Source]            { return s.sources }
func (s *Store) Source() rx.Signal[Source]               { return s.source }
func (s *Store) MediaType() rx.Signal[MediaType]         { return s.mediaType }
func (s *Store) Loader() rx.Signal[Loader]               { return s.loader }
func (s *Store) Provider() rx.Signal[Provider]           { return s.provider }
func (s *Store) StreamType() rx.Signal[StreamType]       { return s.streamType }
func (s *Store) Duration() rx.Signal[float64]            { return s.duration }
func (s *Store) LiveSyncPosition() rx.Signal[float64]    { return s.liveSyncPosition }

// AtLiveEdge reports whether playback is within tolerance of the live
// edge. Always false for non-live streams.
func (s *Store) AtLiveEdge(tolerance float64) bool {
	if !s.live.Get() {
		return false
	}
	if s.userBehindLiveEdge.Get() {
		return false
	}
	edge := s.liveSyncPosition.Get()
	if math.IsNaN(edge) {
		edge = s.seekable.Get().End
	}
	return s.currentTime.Get() >= edge-tolerance
}

// PlaybackWriter is the request manager's write view.
type PlaybackWriter struct{ s *Store }

func (s *Store) PlaybackWriter() *PlaybackWriter { return &PlaybackWriter{s} }

func (w *PlaybackWriter) SetPaused(v bool)             { w.s.paused.Set(v) }
func (w *PlaybackWriter) SetMuted(v bool)              { w.s.muted.Set(v) }
func (w *PlaybackWriter) SetVolume(v float64)          { w.s.volume.Set(v) }
func (w *PlaybackWriter) SetCurrentTime(v float64)     { w.s.currentTime.Set(v) }
func (w *PlaybackWriter) SetSeeking(v bool)            { w.s.seeking.Set(v) }
func (w *PlaybackWriter) SetEnded(v bool)              { w.s.ended.Set(v) }
func (w *PlaybackWriter) SetCanPlay(v bool)            { w.s.canPlay.Set(v) }
func (w *PlaybackWriter) SetCanSeek(v bool)            { w.s.canSeek.Set(v) }
func (w *PlaybackWriter) SetSeekable(v TimeRange)      { w.s.seekable.Set(v) }
func (w *PlaybackWriter) SetFullscreen(v bool)         { w.s.fullscreen.Set(v) }
func (w *PlaybackWriter) SetCanLoad(v bool)            { w.s.canLoad.Set(v) }
func (w *PlaybackWriter) SetCanLoadPoster(v bool)      { w.s.canLoadPoster.Set(v) }
func (w *PlaybackWriter) SetLooping(v bool)            { w.s.looping.Set(v) }
func (w *PlaybackWriter) SetUserBehindLiveEdge(v bool) { w.s.userBehindLiveEdge.Set(v) }
func (w *PlaybackWriter) SetUserIdlePaused(v bool)     { w.s.userIdlePaused.Set(v) }

// SourceWriter is the source selector's write view.
type SourceWriter struct{ s *Store }

func (s *Store) SourceWriter() *SourceWriter { return &SourceWriter{s} }

func (w *SourceWriter) SetSources(v []Source)      { w.s.sources.Set(v) }
func (w *SourceWriter) SetSource(v Source)         { w.s.source.Set(v) }
func (w *SourceWriter) SetMediaType(v MediaType)   { w.s.mediaType.Set(v) }
func (w *SourceWriter) SetLoader(v Loader)         { w.s.loader.Set(v) }
func (w *SourceWriter) SetProvider(v Provider)     { w.s.provider.Set(v) }

// StreamWriter is the adaptive-streaming lifecycle manager's write view.
type StreamWriter struct{ s *Store }

func (s *Store) StreamWriter() *StreamWriter { return &StreamWriter{s} }

func (w *StreamWriter) SetStreamType(v StreamType)    { w.s.streamType.Set(v) }
func (w *StreamWriter) SetDuration(v float64)         { w.s.duration.Set(v) }
func (w *StreamWriter) SetLiveSyncPosition(v float64) { w.s.liveSyncPosition.Set(v) }
func (w *StreamWriter) SetLive(v bool)                { w.s.live.Set(v) }
