package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/decker502/quackduck/pkg/embedded"
	"github.com/decker502/quackduck/pkg/skin"
)

// standardAnimations 宠物会请求的动画名
var standardAnimations = []string{
	skin.AnimIdle, skin.AnimWalk, skin.AnimListen, skin.AnimFall, skin.AnimJump,
	skin.AnimLand, skin.AnimSleep, skin.AnimSleepTransition, skin.AnimRunning, skin.AnimAttack,
}

func newSkinCmd(opts *options) *cobra.Command {
	skinCmd := &cobra.Command{
		Use:   "skin",
		Short: "Inspect skin archives",
	}

	skinCmd.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Load a skin archive and report problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sk, err := skin.OpenArchive(args[0])
			if err != nil {
				return err
			}
			problems := inspectSkin(sk)
			printSkin(opts.out, sk, problems)
			if len(problems) > 0 {
				return fmt.Errorf("%s: %d problem(s)", filepath.Base(args[0]), len(problems))
			}
			return nil
		},
	})

	skinCmd.AddCommand(&cobra.Command{
		Use:   "list [DIR]",
		Short: "List skin archives in DIR (default: the configured skin folder)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			} else {
				sm, err := opts.loadSettings()
				if err != nil {
					return err
				}
				dir = sm.GetSettings().SkinFolder
			}
			if dir == "" {
				return fmt.Errorf("no skin folder configured, pass a directory")
			}
			paths, err := skin.ListArchives(dir)
			if err != nil {
				return err
			}
			builtin := builtinSkins()
			if len(paths) == 0 && len(builtin) == 0 {
				fmt.Fprintf(opts.out, "No skins in %s\n", dir)
				return nil
			}
			for _, p := range builtin {
				fmt.Fprintf(opts.out, "%s (built-in)\n", p)
			}
			for _, p := range paths {
				fmt.Fprintln(opts.out, p)
			}
			return nil
		},
	})

	return skinCmd
}

// builtinSkins 嵌入资源中的皮肤包，未初始化时为空
func builtinSkins() []string {
	if !embedded.IsInitialized() {
		return nil
	}
	paths, err := embedded.Glob("assets/skins/*.zip")
	if err != nil {
		return nil
	}
	return paths
}

// inspectSkin 检查瓦片引用是否在 spritesheet 内、声音是否可用
func inspectSkin(sk *skin.Skin) []string {
	m := sk.Manifest
	b := sk.Sheet.Bounds()
	rows, cols := b.Dy()/m.FrameHeight, b.Dx()/m.FrameWidth

	var problems []string

	names := make([]string, 0, len(m.Animations))
	for name := range m.Animations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tiles := m.Animations[name]
		if len(tiles) == 0 {
			problems = append(problems, fmt.Sprintf("animation %q has no frames", name))
			continue
		}
		for _, tile := range tiles {
			row, col, err := skin.ParseTile(tile)
			if err != nil {
				problems = append(problems, fmt.Sprintf("animation %q: %v", name, err))
				continue
			}
			if row >= rows || col >= cols {
				problems = append(problems, fmt.Sprintf("animation %q: tile %s outside %dx%d grid", name, tile, rows, cols))
			}
		}
	}

	if len(sk.Sounds) < len(m.Sound) {
		problems = append(problems, fmt.Sprintf("%d of %d sounds could not be loaded", len(m.Sound)-len(sk.Sounds), len(m.Sound)))
	}
	return problems
}

// missingAnimations 未提供的标准动画（运行时走回退链）
func missingAnimations(sk *skin.Skin) []string {
	var missing []string
	for _, name := range standardAnimations {
		if _, ok := sk.Manifest.Animations[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func printSkin(w io.Writer, sk *skin.Skin, problems []string) {
	m := sk.Manifest
	b := sk.Sheet.Bounds()
	fmt.Fprintf(w, "Skin %s\n", sk.Name)
	fmt.Fprintf(w, "  spritesheet: %s (%dx%d), frame %dx%d\n", m.Spritesheet, b.Dx(), b.Dy(), m.FrameWidth, m.FrameHeight)
	fmt.Fprintf(w, "  animations:  %d\n", len(m.Animations))
	fmt.Fprintf(w, "  sounds:      %d\n", len(sk.Sounds))
	if missing := missingAnimations(sk); len(missing) > 0 {
		fmt.Fprintf(w, "  fallbacks:   %s\n", strings.Join(missing, ", "))
	}
	for _, p := range problems {
		fmt.Fprintf(w, "  problem: %s\n", p)
	}
	if len(problems) == 0 {
		fmt.Fprintln(w, "  OK")
	}
}
