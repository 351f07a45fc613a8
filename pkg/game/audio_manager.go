package game

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/decker502/quackduck/pkg/skin"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// AudioManager 播放皮肤里的声音
// 职责：
//   - 把皮肤声音（.wav）解码为 ebiten 播放器并缓存
//   - 换肤后丢弃旧皮肤的播放器
//
// 实现 pet.AudioSink。
type AudioManager struct {
	context    *audio.Context
	generation func() int // 皮肤代号，变化时清空缓存，可为 nil
	gen        int
	players    map[string]*audio.Player // 声音名 -> 播放器
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - ctx: ebiten 音频上下文（进程内只能创建一个）
//   - generation: 返回当前皮肤代号，通常为 skin.Store.Generation，可为 nil
func NewAudioManager(ctx *audio.Context, generation func() int) *AudioManager {
	return &AudioManager{
		context:    ctx,
		generation: generation,
		players:    make(map[string]*audio.Player),
	}
}

// Play 以给定音量从头播放声音
//
// 返回：
//   - error: 格式不支持或解码失败
func (am *AudioManager) Play(snd skin.Sound, volume float64) error {
	player, err := am.player(snd)
	if err != nil {
		return err
	}

	player.SetVolume(clampVolume(volume))
	if err := player.Rewind(); err != nil {
		log.Printf("[Audio] Warning: Failed to rewind sound %s: %v", snd.Name, err)
	}
	player.Play()
	return nil
}

// player 获取或创建声音的播放器
func (am *AudioManager) player(snd skin.Sound) (*audio.Player, error) {
	am.syncGeneration()

	if player, ok := am.players[snd.Name]; ok {
		return player, nil
	}

	if ext := strings.ToLower(filepath.Ext(snd.Name)); ext != ".wav" {
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .wav)", ext)
	}
	stream, err := wav.DecodeWithSampleRate(am.context.SampleRate(), bytes.NewReader(snd.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV sound %s: %w", snd.Name, err)
	}
	player, err := am.context.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player for %s: %w", snd.Name, err)
	}

	am.players[snd.Name] = player
	return player, nil
}

// syncGeneration 皮肤代号变化时关闭并丢弃所有缓存的播放器
func (am *AudioManager) syncGeneration() {
	if am.generation == nil {
		return
	}
	gen := am.generation()
	if gen == am.gen {
		return
	}
	am.gen = gen
	am.Close()
}

// Cached 已缓存的播放器数量
func (am *AudioManager) Cached() int {
	return len(am.players)
}

// Close 关闭所有播放器
func (am *AudioManager) Close() {
	for name, player := range am.players {
		if err := player.Close(); err != nil {
			log.Printf("[Audio] Warning: Failed to close %s: %v", name, err)
		}
	}
	am.players = make(map[string]*audio.Player)
}
