// Package cli 定义 quackduck 命令行
//
// 根命令启动桌面宠物；子命令提供终端模拟、参数查看和皮肤工具。
package cli

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/decker502/quackduck/internal/crash"
	"github.com/decker502/quackduck/pkg/config"
	"github.com/decker502/quackduck/pkg/embedded"
	"github.com/decker502/quackduck/pkg/game"
	"github.com/decker502/quackduck/pkg/skin"
)

// Version 程序版本
const Version = "v0.3.0"

// options 全局命令行参数
type options struct {
	configPath string
	verbose    bool
	logDir     string
	volume     float64
	mute       bool

	env    config.Env
	assets fs.FS
	out    io.Writer
}

// NewRootCommand 创建根命令
//
// 参数：
//   - assets: 嵌入的资源文件系统（包含 assets/skins/default.zip），可为 nil
func NewRootCommand(assets fs.FS) *cobra.Command {
	opts := &options{assets: assets}

	rootCmd := &cobra.Command{
		Use:           "quackduck",
		Short:         "QuackDuck - a desktop duck that walks along the bottom of your screen",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.out = cmd.OutOrStdout()
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			opts.env = env
			if opts.logDir == "" {
				opts.logDir = env.LogDir
			}
			if assets != nil && !embedded.IsInitialized() {
				embedded.Init(assets)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPet(opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a TOML settings override file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "V", false, "Write log output to stderr and the log directory")
	rootCmd.PersistentFlags().StringVar(&opts.logDir, "log-dir", "", "Directory for the rotating log and crash reports")
	rootCmd.PersistentFlags().Float64Var(&opts.volume, "volume", -1, "Sound volume 0..1 (saved with the settings)")
	rootCmd.PersistentFlags().BoolVar(&opts.mute, "mute", false, "Disable sounds (saved with the settings)")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newSimCmd(opts))
	rootCmd.AddCommand(newTraitsCmd(opts))
	rootCmd.AddCommand(newSkinCmd(opts))

	return rootCmd
}

// Execute 运行命令行并返回进程退出码
func Execute(assets fs.FS) int {
	if err := NewRootCommand(assets).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadSettings 加载已保存的设置并依次应用 TOML 覆盖文件和环境变量
//
// 返回的 SettingsManager 持有最终设置；存储不可用时以降级模式返回
func (o *options) loadSettings() (*game.SettingsManager, error) {
	sm := game.NewSettingsManager(game.OpenStorage(game.AppName))
	if !sm.Persistent() {
		log.Printf("[Settings] Storage unavailable, changes will not be saved")
	}
	settings := sm.GetSettings()

	if o.configPath != "" {
		override, err := config.LoadOverride(o.configPath)
		if err != nil {
			return nil, err
		}
		for _, key := range override.Apply(settings) {
			log.Printf("[Config] Override value for %q is invalid, using default", key)
		}
	}
	o.env.Apply(settings)

	if o.volume >= 0 {
		sm.SetSoundVolume(o.volume)
	}
	if o.mute {
		sm.SetSoundEnabled(false)
	}
	return sm, nil
}

// newStore 创建以嵌入皮肤为默认皮肤的帧仓库并加载选中的皮肤
//
// 皮肤加载失败不是致命错误：仓库已回退到默认皮肤或占位帧
func newStore(selected string) *skin.Store {
	store := skin.NewStore(embedded.DefaultSkin)
	if err := store.LoadSkin(selected); err != nil {
		log.Printf("[Skin] Warning: %v", err)
	}
	return store
}

func (o *options) setupLogging() io.Closer {
	return crash.SetupLogging(o.verbose || o.env.Verbose, o.logDir)
}
