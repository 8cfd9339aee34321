package game

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// AudioSampleRate sample rate of the shared audio context and the shipped cue files.
const AudioSampleRate = 44100

// VisualDir directory holding the backdrop images named by cue visuals.
const VisualDir = "assets/images"

// VisualPath image file for a cue visual id.
func VisualPath(visualID string) string {
	return VisualDir + "/" + visualID + ".png"
}

// ResourceManager loads and caches images and audio players from a file system.
//
// Paths are slash separated and relative to the file system root
// (for example "assets/images/mouth.png"). The caches are plain maps and
// must only be used from the game loop goroutine.
type ResourceManager struct {
	fsys         fs.FS
	imageCache   map[string]*ebiten.Image // path -> Image
	audioCache   map[string]*audio.Player // path -> Player
	audioContext *audio.Context           // nil disables audio
}

// NewResourceManager creates a ResourceManager reading from fsys.
//
// Parameters:
//   - fsys: The file system holding the assets (usually the embedded one).
//   - audioContext: The shared audio context, may be nil when audio is unavailable.
func NewResourceManager(fsys fs.FS, audioContext *audio.Context) *ResourceManager {
	return &ResourceManager{
		fsys:         fsys,
		imageCache:   make(map[string]*ebiten.Image),
		audioCache:   make(map[string]*audio.Player),
		audioContext: audioContext,
	}
}

// FS returns the file system resources are read from.
func (rm *ResourceManager) FS() fs.FS {
	return rm.fsys
}

// LoadImage loads an image and caches it for future use.
// Supported formats: PNG and JPEG.
func (rm *ResourceManager) LoadImage(p string) (*ebiten.Image, error) {
	if cached, exists := rm.imageCache[p]; exists {
		return cached, nil
	}

	file, err := rm.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", p, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", p, err)
	}

	ebitenImg := ebiten.NewImageFromImage(img)
	rm.imageCache[p] = ebitenImg
	return ebitenImg, nil
}

// GetImage returns a previously loaded image, or nil.
func (rm *ResourceManager) GetImage(p string) *ebiten.Image {
	return rm.imageCache[p]
}

// LoadSoundEffect loads a one-shot sound effect (WAV or OGG).
func (rm *ResourceManager) LoadSoundEffect(p string) (*audio.Player, error) {
	return rm.loadAudio(p, false)
}

// LoadLoop loads a sound wrapped in an infinite loop (water running, brushing).
func (rm *ResourceManager) LoadLoop(p string) (*audio.Player, error) {
	return rm.loadAudio(p, true)
}

// GetAudioPlayer returns a previously loaded audio player, or nil.
func (rm *ResourceManager) GetAudioPlayer(p string) *audio.Player {
	return rm.audioCache[p]
}

func (rm *ResourceManager) loadAudio(p string, loop bool) (*audio.Player, error) {
	if rm.audioContext == nil {
		return nil, fmt.Errorf("audio is unavailable, cannot load %s", p)
	}
	key := p
	if loop {
		key = "loop:" + p
	}
	if cached, exists := rm.audioCache[key]; exists {
		return cached, nil
	}

	data, err := fs.ReadFile(rm.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file %s: %w", p, err)
	}

	stream, err := decodeAudio(p, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var src io.Reader = stream
	if loop {
		src = audio.NewInfiniteLoop(stream, stream.Length())
	}
	player, err := rm.audioContext.NewPlayer(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player for %s: %w", p, err)
	}

	rm.audioCache[key] = player
	return player, nil
}

type audioStream interface {
	io.ReadSeeker
	Length() int64
}

func decodeAudio(p string, r io.ReadSeeker) (audioStream, error) {
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".wav":
		s, err := wav.DecodeWithSampleRate(AudioSampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV audio %s: %w", p, err)
		}
		return s, nil
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(AudioSampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG audio %s: %w", p, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .wav, .ogg)", ext)
	}
}
