// Package crash 日志文件和崩溃报告
package crash

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志轮转参数
const (
	LogFileName   = "quackduck.log"
	LogMaxSizeMB  = 5
	LogMaxBackups = 3
)

// SetupLogging 配置全局 log 输出
//
// 非 verbose 模式下丢弃所有日志；verbose 模式下同时写 stderr 和 dir 下的轮转日志文件。
// dir 为空时只写 stderr。返回的 io.Closer 用于退出时关闭日志文件。
func SetupLogging(verbose bool, dir string) io.Closer {
	if !verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
		return io.NopCloser(nil)
	}

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if dir == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    LogMaxSizeMB,
		MaxBackups: LogMaxBackups,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file
}

// Report 崩溃报告内容
type Report struct {
	Time    time.Time
	Panic   any
	Stack   []byte
	Version string
}

// WriteReport 写入崩溃报告，返回报告文件路径
//
// 系统信息采集失败时只在报告里注明，不影响报告写入
func WriteReport(dir string, r Report) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create crash dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", r.Time.Format("20060102-150405")))
	if err := os.WriteFile(path, []byte(Format(r)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write crash report: %w", err)
	}
	return path, nil
}

// Format 生成报告文本
func Format(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QuackDuck crash report\n")
	fmt.Fprintf(&b, "time: %s\n", r.Time.Format(time.RFC3339))
	if r.Version != "" {
		fmt.Fprintf(&b, "version: %s\n", r.Version)
	}
	fmt.Fprintf(&b, "panic: %v\n\n", r.Panic)

	fmt.Fprintf(&b, "== system ==\n")
	fmt.Fprintf(&b, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	writeSystemInfo(&b)

	fmt.Fprintf(&b, "\n== stack ==\n%s\n", r.Stack)
	return b.String()
}

func writeSystemInfo(w io.Writer) {
	if h, err := host.Info(); err == nil {
		fmt.Fprintf(w, "host: %s %s %s (%s)\n", h.Platform, h.PlatformVersion, h.KernelVersion, h.KernelArch)
	} else {
		fmt.Fprintf(w, "host: unavailable (%v)\n", err)
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		fmt.Fprintf(w, "cpu: %s x%d\n", infos[0].ModelName, len(infos))
	} else {
		fmt.Fprintf(w, "cpu: unavailable\n")
	}
	if v, err := mem.VirtualMemory(); err == nil {
		fmt.Fprintf(w, "memory: %d MiB total, %.1f%% used\n", v.Total>>20, v.UsedPercent)
	} else {
		fmt.Fprintf(w, "memory: unavailable (%v)\n", err)
	}
}

// Recover 在 main 中 defer 调用：捕获 panic，写入崩溃报告后以非零状态退出
//
//	defer crash.Recover(dir, version)
func Recover(dir, version string) {
	p := recover()
	if p == nil {
		return
	}
	path, err := WriteReport(dir, Report{
		Time:    time.Now(),
		Panic:   p,
		Stack:   debug.Stack(),
		Version: version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "quackduck crashed: %v (report failed: %v)\n", p, err)
	} else {
		fmt.Fprintf(os.Stderr, "quackduck crashed: %v (report: %s)\n", p, path)
	}
	os.Exit(2)
}
