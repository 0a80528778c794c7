package audio

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is used for the chime and as the speaker rate when
// nothing else has been played yet.
const DefaultSampleRate = beep.SampleRate(44100)

// speakerLatency is the speaker buffer length.
const speakerLatency = 100 * time.Millisecond

type decodeFunc func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// decoders maps a lower-case file extension to its decoder.
var decoders = map[string]decodeFunc{
	".wav": func(r io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(r) },
	".ogg": vorbis.Decode,
	".mp3": mp3.Decode,
}

// Player plays short cues on the default speaker. Decoded files are kept
// in memory, keyed by path.
type Player struct {
	logger *slog.Logger

	mu         sync.Mutex
	volume     float64 // 0.0 to 1.0
	speakerOn  bool
	speakerSR  beep.SampleRate
	soundCache map[string]*beep.Buffer
}

// NewPlayer creates a player at full volume. The speaker is opened lazily.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		logger:     logger,
		volume:     1.0,
		speakerSR:  DefaultSampleRate,
		soundCache: make(map[string]*beep.Buffer),
	}
}

// SetVolume clamps volume to [0, 1].
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	p.volume = min(max(volume, 0), 1)
	p.mu.Unlock()
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Play plays a WAV, OGG or MP3 file.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}
	buf, err := p.buffer(expandPath(path))
	if err != nil {
		p.logger.Warn("failed to load sound", "path", path, "error", err)
		return err
	}
	return p.PlayStreamer(buf.Streamer(0, buf.Len()), buf.Format().SampleRate)
}

// PlayStreamer plays s, which produces samples at sr. It returns once
// playback is queued.
func (p *Player) PlayStreamer(s beep.Streamer, sr beep.SampleRate) error {
	if err := p.openSpeaker(sr); err != nil {
		return err
	}

	p.mu.Lock()
	volume, target := p.volume, p.speakerSR
	p.mu.Unlock()

	if sr != target {
		s = beep.Resample(4, sr, target, s)
	}
	if volume < 1 {
		s = &effects.Volume{Streamer: s, Base: 2, Volume: volumeToExponent(volume), Silent: volume == 0}
	}
	speaker.Play(s)
	return nil
}

// Preload decodes path into the cache.
func (p *Player) Preload(path string) error {
	if path == "" {
		return nil
	}
	_, err := p.buffer(expandPath(path))
	return err
}

func (p *Player) buffer(path string) (*beep.Buffer, error) {
	p.mu.Lock()
	buf, ok := p.soundCache[path]
	p.mu.Unlock()
	if ok {
		return buf, nil
	}

	buf, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.soundCache[path] = buf
	p.mu.Unlock()
	p.logger.Debug("sound decoded", "path", path, "samples", buf.Len())
	return buf, nil
}

func decodeFile(path string) (*beep.Buffer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported audio format: %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	// the decoder owns f and closes it with the stream
	stream, format, err := decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = stream.Close() }()

	buf := beep.NewBuffer(format)
	buf.Append(stream)
	return buf, nil
}

// openSpeaker initialises the speaker at the rate of the first sound.
func (p *Player) openSpeaker(sr beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.speakerOn {
		return nil
	}
	if err := speaker.Init(sr, sr.N(speakerLatency)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	p.speakerOn = true
	p.speakerSR = sr
	p.logger.Debug("speaker initialized", "sample_rate", sr)
	return nil
}

// ClearCache drops every decoded sound.
func (p *Player) ClearCache() {
	p.mu.Lock()
	p.soundCache = make(map[string]*beep.Buffer)
	p.mu.Unlock()
}

// Close stops playback and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	if p.speakerOn {
		speaker.Close()
		p.speakerOn = false
	}
	p.soundCache = make(map[string]*beep.Buffer)
	p.mu.Unlock()
	p.logger.Debug("audio player closed")
}

// volumeToExponent converts a linear volume to the base-2 exponent used by
// effects.Volume.
func volumeToExponent(volume float64) float64 {
	if volume <= 0 {
		return -10
	}
	return math.Log2(volume)
}

// expandPath expands a leading ~/ to the home directory.
func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
