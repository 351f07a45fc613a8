// Package sim 在终端里运行宠物核心的无窗口模拟器
//
// 虚拟屏幕按比例缩小成字符网格，光标、麦克风音量和前台全屏状态都由键盘控制。
package sim

import (
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/decker502/quackduck/pkg/config"
	"github.com/decker502/quackduck/pkg/pet"
	"github.com/decker502/quackduck/pkg/sched"
	"github.com/decker502/quackduck/pkg/skin"
	"github.com/decker502/quackduck/pkg/stimulus"
)

// 虚拟屏幕与字符网格
const (
	ScreenWidth  = 1920
	ScreenHeight = 1080
	gridCols     = 64
	gridRows     = 18

	TickInterval = 50 * time.Millisecond
	cursorStep   = 40
	loudLevel    = 80
)

var styles = struct {
	title  lipgloss.Style
	status lipgloss.Style
	screen lipgloss.Style
	help   lipgloss.Style
}{
	title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFD700")).
		Padding(0, 1),

	status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7FDBFF")),

	screen: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#555555")),

	help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")),
}

type tickMsg time.Time

// soundCounter 记录播放次数的音频输出
type soundCounter struct {
	count int
	last  string
}

func (s *soundCounter) Play(snd skin.Sound, _ float64) error {
	s.count++
	s.last = snd.Name
	return nil
}

// Model 模拟器状态，实现 tea.Model
type Model struct {
	Pet   *pet.Pet
	Sched *sched.Scheduler

	feed       *stimulus.VolumeFeed
	sounds     *soundCounter
	cursor     image.Point
	fullscreen bool
	loud       bool
	pressed    bool
	speed      int
	paused     bool
	quitting   bool
}

// New 以给定皮肤和设置创建模拟器，虚拟时钟从 start 开始
func New(store *skin.Store, settings *config.Settings, start time.Time) *Model {
	m := &Model{
		Sched:  sched.New(start),
		feed:   stimulus.NewVolumeFeed(),
		sounds: &soundCounter{},
		cursor: image.Pt(ScreenWidth/2, ScreenHeight/2),
		speed:  1,
	}
	m.feed.SetRunning(true)
	m.Pet = pet.New(pet.Options{
		Scheduler:    m.Sched,
		Store:        store,
		Settings:     settings,
		ScreenWidth:  ScreenWidth,
		ScreenHeight: ScreenHeight,
		Audio:        m.sounds,
		Cursor:       pet.CursorFunc(func() image.Point { return m.cursor }),
		Fullscreen:   stimulus.DetectorFunc(func() bool { return m.fullscreen }),
		Volume:       m.feed,
	})
	m.Pet.Start()
	return m
}

// Run 在终端中运行模拟器直到退出
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Step 推进一个模拟 tick（TickInterval × 倍速的虚拟时间）
func (m *Model) Step() {
	if m.paused {
		return
	}
	remaining := TickInterval * time.Duration(m.speed)
	for remaining > 0 {
		step := min(remaining, pet.VolumePollInterval)
		if m.loud {
			m.feed.Push(loudLevel)
		} else {
			m.feed.Push(0)
		}
		m.Sched.AdvanceBy(step)
		remaining -= step
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.Step()
		return m, tick()
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	}
	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return tea.Quit
	case "+", "=":
		if m.speed < 64 {
			m.speed *= 2
		}
	case "-":
		if m.speed > 1 {
			m.speed /= 2
		}
	case " ", "space":
		m.paused = !m.paused
	case "l":
		m.loud = !m.loud
	case "f":
		m.fullscreen = !m.fullscreen
	case "left", "h":
		m.moveCursor(-cursorStep, 0)
	case "right":
		m.moveCursor(cursorStep, 0)
	case "up", "k":
		m.moveCursor(0, -cursorStep)
	case "down", "j":
		m.moveCursor(0, cursorStep)
	case "enter":
		m.toggleButton()
	case "d":
		m.Pet.MouseDoubleClick(m.event(pet.ButtonLeft))
	case "t":
		m.Pet.DebugTouch()
	case "s":
		m.Pet.ForceState(pet.KindSleeping)
	case "p":
		m.Pet.ForceState(pet.KindPlayful)
	case "r":
		m.Pet.ForceState(pet.KindRunning)
	}
	return nil
}

func (m *Model) event(buttons pet.ButtonMask) pet.MouseEvent {
	return pet.MouseEvent{
		Local:   m.cursor.Sub(m.Pet.Position()),
		Global:  m.cursor,
		Buttons: buttons,
	}
}

// toggleButton 按下或松开虚拟左键
func (m *Model) toggleButton() {
	if m.pressed {
		m.pressed = false
		m.Pet.MouseRelease(m.event(0))
		return
	}
	w, h := m.Pet.Size()
	sprite := image.Rectangle{Min: m.Pet.Position(), Max: m.Pet.Position().Add(image.Pt(w, h))}
	if !m.cursor.In(sprite) {
		return
	}
	m.pressed = true
	m.Pet.MousePress(m.event(pet.ButtonLeft))
}

func (m *Model) moveCursor(dx, dy int) {
	m.cursor.X = clamp(m.cursor.X+dx, 0, ScreenWidth-1)
	m.cursor.Y = clamp(m.cursor.Y+dy, 0, ScreenHeight-1)
	if m.pressed {
		m.Pet.MouseMove(m.event(pet.ButtonLeft))
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	name := m.Pet.Settings().PetName
	if name == "" {
		name = "QuackDuck"
	}
	title := styles.title.Render("🦆 " + name)

	status := styles.status.Render(fmt.Sprintf(
		"state %-9s pos %4d,%4d  speed %.2f  x%d%s\nmic %-4s fullscreen %-5v sounds %d  last touch %s ago",
		m.Pet.Kind(), m.Pet.X(), m.Pet.Y(), m.Pet.Speed(), m.speed, pausedTag(m.paused),
		onOff(m.loud), m.fullscreen, m.sounds.count,
		m.Sched.Now().Sub(m.Pet.LastInteraction()).Truncate(time.Second),
	))

	help := styles.help.Render("arrows move cursor · enter press/release · d double-click · l mic · f fullscreen\n" +
		"s sleep · p playful · r run · t touch · +/- speed · space pause · q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		status,
		styles.screen.Render(m.renderScreen()),
		m.renderHistory(),
		help,
	)
}

// renderScreen 把虚拟屏幕缩小成字符网格
func (m *Model) renderScreen() string {
	grid := make([][]rune, gridRows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", gridCols))
	}

	ground := toRow(m.Pet.GroundLevel())
	if ground >= 0 && ground < gridRows {
		for c := range grid[ground] {
			grid[ground][c] = '_'
		}
	}

	if m.Pet.Visible() {
		w, h := m.Pet.Size()
		glyph := '<'
		if m.Pet.FacingRight() {
			glyph = '>'
		}
		c0, c1 := toCol(m.Pet.X()), toCol(m.Pet.X()+w-1)
		r0, r1 := toRow(m.Pet.Y()), toRow(m.Pet.Y()+h-1)
		for r := max(r0, 0); r <= min(r1, gridRows-1); r++ {
			for c := max(c0, 0); c <= min(c1, gridCols-1); c++ {
				grid[r][c] = glyph
			}
		}
		for _, heart := range m.Pet.Hearts() {
			if r, c := toRow(heart.Y), toCol(heart.X); r >= 0 && r < gridRows && c >= 0 && c < gridCols {
				grid[r][c] = '♥'
			}
		}
	}

	if r, c := toRow(m.cursor.Y), toCol(m.cursor.X); r >= 0 && r < gridRows && c >= 0 && c < gridCols {
		grid[r][c] = '+'
	}

	lines := make([]string, gridRows)
	for r := range grid {
		lines[r] = string(grid[r])
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHistory() string {
	hist := m.Pet.History()
	var b strings.Builder
	b.WriteString("history:")
	start := len(hist) - 5
	if start < 0 {
		start = 0
	}
	for _, t := range hist[start:] {
		fmt.Fprintf(&b, " %s→%s", t.From, t.To)
	}
	return styles.help.Render(b.String())
}

func toCol(x int) int { return floorDiv(x*gridCols, ScreenWidth) }
func toRow(y int) int { return floorDiv(y*gridRows, ScreenHeight) }

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func pausedTag(paused bool) string {
	if paused {
		return " (paused)"
	}
	return ""
}
