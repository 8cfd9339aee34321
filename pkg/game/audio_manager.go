package game

import (
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/rs/zerolog/log"
)

// CueDir 提示音效所在目录，文件名为 <cue>.wav
const CueDir = "assets/audio"

// AudioManager 音频管理器
// 职责：
//   - 按提示 ID 播放一次性音效（实现 systems.CueDispatcher）
//   - 播放/停止循环音（水声、刷牙声）
//   - 应用 SettingsManager 中的静音与音量
type AudioManager struct {
	resourceManager *ResourceManager // 可为 nil（无音频）
	settingsManager *SettingsManager // 可为 nil（使用默认音量）
	soundPlayers    map[string]*audio.Player
	missing         map[string]bool // 加载失败的提示，不再重复尝试
	currentLoop     *audio.Player
	currentLoopID   string
}

// NewAudioManager 创建音频管理器
//
// 参数：
//   - rm: ResourceManager 实例，可为 nil
//   - sm: SettingsManager 实例，可为 nil
func NewAudioManager(rm *ResourceManager, sm *SettingsManager) *AudioManager {
	return &AudioManager{
		resourceManager: rm,
		settingsManager: sm,
		soundPlayers:    make(map[string]*audio.Player),
		missing:         make(map[string]bool),
	}
}

// CuePath 提示 ID 对应的音频文件
func CuePath(cueID string) string {
	return CueDir + "/" + cueID + ".wav"
}

// PlayCue 派发一个提示：有音效则播放
func (am *AudioManager) PlayCue(cue config.CueConfig) {
	if cue.Sound != "" {
		am.PlaySound(cue.Sound)
	}
}

// PlaySound 播放一次音效
//
// 返回：
//   - bool: 是否成功播放（静音或资源缺失时为 false）
func (am *AudioManager) PlaySound(cueID string) bool {
	if am.Muted() {
		return false
	}
	player := am.getSoundPlayer(cueID)
	if player == nil {
		return false
	}
	player.SetVolume(am.getSoundVolume())
	if err := player.Rewind(); err != nil {
		log.Warn().Err(err).Str("component", "AudioManager").Str("cue", cueID).Msg("failed to rewind sound")
	}
	player.Play()
	return true
}

// PlayLoop 播放循环音，同一时间只有一个
func (am *AudioManager) PlayLoop(cueID string) bool {
	if am.Muted() || am.resourceManager == nil {
		return false
	}
	if am.currentLoopID == cueID && am.currentLoop != nil && am.currentLoop.IsPlaying() {
		return true
	}
	am.StopLoop()

	player, err := am.resourceManager.LoadLoop(CuePath(cueID))
	if err != nil {
		log.Warn().Err(err).Str("component", "AudioManager").Str("cue", cueID).Msg("failed to load loop")
		return false
	}
	player.SetVolume(am.getMusicVolume())
	if err := player.Rewind(); err != nil {
		log.Warn().Err(err).Str("component", "AudioManager").Str("cue", cueID).Msg("failed to rewind loop")
	}
	player.Play()
	am.currentLoop = player
	am.currentLoopID = cueID
	return true
}

// StopLoop 停止当前循环音
func (am *AudioManager) StopLoop() {
	if am.currentLoop != nil {
		am.currentLoop.Pause()
		am.currentLoop = nil
		am.currentLoopID = ""
	}
}

// SetMuted 设置静音并立即应用到循环音
func (am *AudioManager) SetMuted(muted bool) {
	if am.settingsManager != nil {
		am.settingsManager.SetMuted(muted)
	}
	if muted {
		am.StopLoop()
	}
}

// Muted 是否静音
func (am *AudioManager) Muted() bool {
	return am.settingsManager != nil && am.settingsManager.GetSettings().Muted
}

// SetSoundVolume 设置音效音量，影响后续播放
func (am *AudioManager) SetSoundVolume(volume float64) {
	if am.settingsManager != nil {
		am.settingsManager.SetSoundVolume(volume)
	}
	for _, player := range am.soundPlayers {
		player.SetVolume(am.getSoundVolume())
	}
}

// Preload 预加载提示音效，避免首次播放时的延迟
func (am *AudioManager) Preload(cueIDs []string) {
	for _, id := range cueIDs {
		am.getSoundPlayer(id)
	}
	log.Debug().Str("component", "AudioManager").Int("count", len(cueIDs)).Msg("cues preloaded")
}

func (am *AudioManager) getSoundPlayer(cueID string) *audio.Player {
	if player, exists := am.soundPlayers[cueID]; exists {
		return player
	}
	if am.resourceManager == nil || am.missing[cueID] {
		return nil
	}
	player, err := am.resourceManager.LoadSoundEffect(CuePath(cueID))
	if err != nil {
		am.missing[cueID] = true
		log.Warn().Err(err).Str("component", "AudioManager").Str("cue", cueID).Msg("sound not found")
		return nil
	}
	am.soundPlayers[cueID] = player
	return player
}

func (am *AudioManager) getMusicVolume() float64 {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings().MusicVolume
	}
	return DefaultSettings().MusicVolume
}

func (am *AudioManager) getSoundVolume() float64 {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings().SoundVolume
	}
	return DefaultSettings().SoundVolume
}
