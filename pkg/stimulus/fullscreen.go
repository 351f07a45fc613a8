package stimulus

// Detector 前台窗口全屏检测
// 实现必须排除桌面/外壳窗口（桌面本身"全屏"时返回 false）
type Detector interface {
	IsForegroundFullscreen() bool
}

// DetectorFunc 函数适配器
type DetectorFunc func() bool

// IsForegroundFullscreen 实现 Detector
func (f DetectorFunc) IsForegroundFullscreen() bool {
	return f()
}

// FullscreenWatcher 把轮询结果转换为边沿事件
type FullscreenWatcher struct {
	detector   Detector
	fullscreen bool
}

// NewFullscreenWatcher 创建全屏监视器，初始状态为非全屏
func NewFullscreenWatcher(d Detector) *FullscreenWatcher {
	return &FullscreenWatcher{detector: d}
}

// Poll 查询一次检测器
//
// 返回：
//   - fullscreen: 当前是否全屏
//   - changed: 是否与上次结果不同
func (w *FullscreenWatcher) Poll() (fullscreen, changed bool) {
	if w.detector == nil {
		return false, false
	}
	now := w.detector.IsForegroundFullscreen()
	changed = now != w.fullscreen
	w.fullscreen = now
	return now, changed
}

// Fullscreen 返回上次轮询的结果
func (w *FullscreenWatcher) Fullscreen() bool {
	return w.fullscreen
}
