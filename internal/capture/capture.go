// Package capture 麦克风采集
//
// 启动一个录音进程（默认 arecord），从其标准输出读取 16 位小端单声道 PCM，
// 每个数据块换算成 0–100 的音量写入 stimulus.VolumeFeed。
// 采集在独立的 goroutine 中运行，Stop 设置停止标志并等待其退出。
package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"sync"

	"github.com/decker502/quackduck/pkg/stimulus"
)

// 默认参数：16kHz 下 20ms 一个数据块
const (
	DefaultSampleRate = 16000
	DefaultChunk      = DefaultSampleRate / 50
)

// Capture 麦克风采集器
type Capture struct {
	Command []string // 录音命令及参数
	Chunk   int      // 每个数据块的采样数

	feed *stimulus.VolumeFeed

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New 创建采集器
//
// 参数：
//   - command: 录音命令行，例如 config.DefaultMicCommand
//   - device: 设备序号（selected_mic_index），nil 表示系统默认设备
//   - feed: 音量输出
func New(command string, device *int, feed *stimulus.VolumeFeed) *Capture {
	return &Capture{
		Command: BuildCommand(command, device),
		Chunk:   DefaultChunk,
		feed:    feed,
	}
}

// BuildCommand 拆分命令行，并为 arecord 追加设备参数
func BuildCommand(command string, device *int) []string {
	args := strings.Fields(command)
	if device != nil && len(args) > 0 && strings.HasSuffix(args[0], "arecord") {
		args = append(args, "-D", fmt.Sprintf("plughw:%d", *device))
	}
	return args
}

// Start 启动录音进程和采集 goroutine
//
// 进程无法启动时返回错误，宠物在没有聆听功能的情况下继续运行
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return nil
	}
	if len(c.Command) == 0 {
		return errors.New("capture: empty command")
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("capture: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("capture: failed to start %s: %w", c.Command[0], err)
	}

	c.cancel = cancel
	c.feed.SetRunning(true)
	log.Printf("[Capture] Started: %s", strings.Join(c.Command, " "))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.feed.SetRunning(false)

		err := Pump(ctx, stdout, c.Chunk, c.feed)
		if waitErr := cmd.Wait(); err == nil && ctx.Err() == nil {
			err = waitErr
		}
		if err != nil && ctx.Err() == nil {
			log.Printf("[Capture] Stopped after fault: %v", err)
			return
		}
		log.Printf("[Capture] Stopped")
	}()
	return nil
}

// Stop 通知采集停止并等待 goroutine 退出
func (c *Capture) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	c.wg.Wait()
}

// Running 采集是否在运行
func (c *Capture) Running() bool {
	return c.feed.Running()
}

// Pump 从 r 读取 PCM 数据块并写入音量，直到 EOF、读错误或 ctx 取消
//
// 返回：
//   - error: 读错误；正常结束（EOF 或取消）时为 nil
func Pump(ctx context.Context, r io.Reader, chunk int, feed *stimulus.VolumeFeed) error {
	if chunk <= 0 {
		chunk = DefaultChunk
	}
	buf := make([]byte, chunk*2)
	samples := make([]int16, chunk)

	for ctx.Err() == nil {
		n, err := io.ReadFull(r, buf)
		if n >= 2 {
			count := n / 2
			for i := 0; i < count; i++ {
				samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
			}
			feed.Push(stimulus.Level(samples[:count]))
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil
		default:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("capture: read: %w", err)
		}
	}
	return nil
}
