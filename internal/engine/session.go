// Package engine wraps FFmpeg (via go-astiav) into decode sessions used
// by the playback providers and the default adaptive-streaming engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/asticode/go-astiav"

	"github.com/arviel/mediactl/internal/utils"
)

const (
	// Output format: s16le stereo 48 kHz interleaved PCM.
	SampleRate = 48000
	Channels   = 2
	// 20 ms frame.
	FrameSamples = 960
	FrameBytes   = FrameSamples * Channels * 2
)

// Info is probed container-level metadata.
type Info struct {
	// Duration in seconds; 0 or negative when the container reports none
	// (live streams).
	Duration float64
	Live     bool
}

// Probe opens url, reads stream info and closes the input again.
func Probe(ctx context.Context, url string) (Info, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return Info{}, errors.New("alloc format context")
	}
	defer fc.Free()

	dict := astiav.NewDictionary()
	defer dict.Free()
	_ = dict.Set("reconnect", "1", 0)
	_ = dict.Set("reconnect_streamed", "1", 0)
	_ = dict.Set("reconnect_delay_max", "5", 0)
	_ = dict.Set("user_agent", utils.RandomUserAgent(), 0)

	if err := fc.OpenInput(url, nil, dict); err != nil {
		return Info{}, fmt.Errorf("open input: %w", err)
	}
	defer fc.CloseInput()

	if err := fc.FindStreamInfo(nil); err != nil {
		return Info{}, fmt.Errorf("find stream info: %w", err)
	}

	return infoOf(fc), nil
}

func infoOf(fc *astiav.FormatContext) Info {
	// FormatContext duration is in AV_TIME_BASE (microsecond) units.
	d := float64(fc.Duration()) / 1e6
	return Info{Duration: d, Live: d <= 0}
}

// Session decodes one input into s16le stereo 48k PCM readable from
// PCM(). The decode loop runs until EOF, an error, or Close.
type Session struct {
	fc          *astiav.FormatContext
	audioStream *astiav.Stream
	decCtx      *astiav.CodecContext
	swr         *astiav.SoftwareResampleContext
	srcFrame    *astiav.Frame
	dstFrame    *astiav.Frame
	cancel      context.CancelFunc
	pr          *io.PipeReader
	pw          *io.PipeWriter
	info        Info

	closeOnce sync.Once

	mu      sync.Mutex
	lastPTS float64
	runErr  error
}

// Open opens url and starts decoding at offset seconds.
func Open(ctx context.Context, url string, offset float64) (*Session, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, errors.New("alloc format context")
	}

	dict := astiav.NewDictionary()
	defer dict.Free()
	_ = dict.Set("reconnect", "1", 0)
	_ = dict.Set("reconnect_streamed", "1", 0)
	_ = dict.Set("reconnect_delay_max", "5", 0)
	_ = dict.Set("user_agent", utils.RandomUserAgent(), 0)

	if err := fc.OpenInput(url, nil, dict); err != nil {
		fc.Free()
		return nil, fmt.Errorf("open input: %w", err)
	}
	if err := fc.FindStreamInfo(nil); err != nil {
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("find stream info: %w", err)
	}

	st, codec, err := fc.FindBestStream(astiav.MediaTypeAudio, -1, -1)
	if err != nil || st == nil || codec == nil {
		fc.CloseInput()
		fc.Free()
		if err != nil {
			return nil, fmt.Errorf("find best audio stream: %w", err)
		}
		return nil, errors.New("no audio stream found")
	}

	decCtx := astiav.AllocCodecContext(codec)
	if decCtx == nil {
		fc.CloseInput()
		fc.Free()
		return nil, errors.New("alloc codec context")
	}
	if err := decCtx.FromCodecParameters(st.CodecParameters()); err != nil {
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("codec from params: %w", err)
	}
	decCtx.SetTimeBase(st.TimeBase())
	if err := decCtx.Open(codec, nil); err != nil {
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("open decoder: %w", err)
	}

	swr := astiav.AllocSoftwareResampleContext()
	srcFrame := astiav.AllocFrame()
	dstFrame := astiav.AllocFrame()
	if swr == nil || srcFrame == nil || dstFrame == nil {
		if srcFrame != nil {
			srcFrame.Free()
		}
		if dstFrame != nil {
			dstFrame.Free()
		}
		if swr != nil {
			swr.Free()
		}
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, errors.New("alloc resample resources")
	}

	pr, pw := io.Pipe()
	ctx2, cancel := context.WithCancel(ctx)
	s := &Session{
		fc:          fc,
		audioStream: st,
		decCtx:      decCtx,
		swr:         swr,
		srcFrame:    srcFrame,
		dstFrame:    dstFrame,
		cancel:      cancel,
		pr:          pr,
		pw:          pw,
		info:        infoOf(fc),
		lastPTS:     offset,
	}

	go s.run(ctx2, offset)
	return s, nil
}

// PCM is the decoded output stream. Read returns io.EOF when the input
// is exhausted, or io.ErrClosedPipe after Close.
func (s *Session) PCM() io.Reader { return s.pr }

// Info reports the probed container metadata.
func (s *Session) Info() Info { return s.info }

// Position is the presentation time of the most recently decoded frame,
// in seconds.
func (s *Session) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPTS
}

// Err reports the first decode error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runErr
}

// Close stops decoding and releases all FFmpeg resources.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		_ = s.pr.Close()
		_ = s.pw.Close()
		if s.srcFrame != nil {
			s.srcFrame.Free()
		}
		if s.dstFrame != nil {
			s.dstFrame.Free()
		}
		if s.swr != nil {
			s.swr.Free()
		}
		if s.decCtx != nil {
			s.decCtx.Free()
		}
		if s.fc != nil {
			s.fc.CloseInput()
			s.fc.Free()
		}
	})
}

func (s *Session) run(ctx context.Context, offset float64) {
	defer func() { _ = s.pw.Close() }()

	if offset > 0 {
		tb := s.audioStream.TimeBase()
		ts := int64(offset / tb.Float64())
		// Best effort: lands on the nearest preceding keyframe.
		if err := s.fc.SeekFrame(s.audioStream.Index(), ts, astiav.NewSeekFlags()); err == nil {
			_ = s.fc.Flush()
		}
	}

	packet := astiav.AllocPacket()
	defer packet.Free()

	for {
		select {
		case <-ctx.Done():
			s.setErr(ctx.Err())
			return
		default:
		}

		packet.Unref()
		if err := s.fc.ReadFrame(packet); err != nil {
			if astErr, ok := err.(astiav.Error); ok && astErr.Is(io.EOF) {
				s.drainDecoder()
				return
			}
			if astErr, ok := err.(astiav.Error); ok && astErr.Is(astiav.ErrEagain) {
				continue
			}
			s.setErr(fmt.Errorf("read frame: %w", err))
			return
		}

		if packet.StreamIndex() != s.audioStream.Index() {
			continue
		}

		if err := s.decCtx.SendPacket(packet); err != nil {
			if astErr, ok := err.(astiav.Error); !ok || !astErr.Is(astiav.ErrEagain) {
				s.setErr(fmt.Errorf("send packet: %w", err))
				return
			}
		}

		if !s.receiveFrames() {
			return
		}
	}
}

// drainDecoder flushes remaining frames after input EOF.
func (s *Session) drainDecoder() {
	_ = s.decCtx.SendPacket(nil)
	for {
		s.srcFrame.Unref()
		if err := s.decCtx.ReceiveFrame(s.srcFrame); err != nil {
			return
		}
		if err := s.convertAndWrite(s.srcFrame); err != nil {
			s.setErr(err)
			return
		}
	}
}

func (s *Session) receiveFrames() bool {
	for {
		s.srcFrame.Unref()
		if err := s.decCtx.ReceiveFrame(s.srcFrame); err != nil {
			if astErr, ok := err.(astiav.Error); ok && (astErr.Is(astiav.ErrEagain) || astErr.Is(io.EOF)) {
				return true
			}
			s.setErr(fmt.Errorf("receive frame: %w", err))
			return false
		}
		if err := s.convertAndWrite(s.srcFrame); err != nil {
			s.setErr(err)
			return false
		}
	}
}

func (s *Session) convertAndWrite(src *astiav.Frame) error {
	if pts := src.Pts(); pts != astiav.NoPtsValue {
		sec := float64(pts) * s.audioStream.TimeBase().Float64()
		s.mu.Lock()
		s.lastPTS = sec
		s.mu.Unlock()
	}

	s.dstFrame.Unref()
	s.dstFrame.SetNbSamples(src.NbSamples())
	s.dstFrame.SetChannelLayout(astiav.ChannelLayoutStereo)
	s.dstFrame.SetSampleRate(SampleRate)
	s.dstFrame.SetSampleFormat(astiav.SampleFormatS16)
	if err := s.dstFrame.AllocBuffer(0); err != nil {
		return fmt.Errorf("dst alloc buffer: %w", err)
	}

	if err := s.swr.ConvertFrame(src, s.dstFrame); err != nil {
		return fmt.Errorf("swr convert: %w", err)
	}

	b, err := s.dstFrame.Data().Bytes(0)
	if err != nil {
		return fmt.Errorf("dst bytes: %w", err)
	}
	_, err = s.pw.Write(b)
	return err
}

func (s *Session) setErr(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runErr == nil {
		s.runErr = err
	}
}
