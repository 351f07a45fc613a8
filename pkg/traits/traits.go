// Package traits 根据宠物名字生成行为参数
//
// 映射是纯函数：同一个名字在任何机器、任何运行中都得到相同的 Traits。
package traits

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// Traits 宠物的行为参数
type Traits struct {
	BaseSpeed         float64       // 尺寸为 3 时每个物理 tick 移动的像素
	SoundIntervalMin  time.Duration // 自发叫声的最小间隔
	SoundIntervalMax  time.Duration // 自发叫声的最大间隔
	SoundResponseProb float64       // 进入聆听时回应叫声的概率
	PlayfulProb       float64       // 每次玩耍检查进入玩耍的概率
	SleepTimeout      time.Duration // 无交互多久后入睡
}

// Default 返回未命名宠物使用的默认参数
func Default() Traits {
	return Traits{
		BaseSpeed:         1.25,
		SoundIntervalMin:  120 * time.Second,
		SoundIntervalMax:  600 * time.Second,
		SoundResponseProb: 0.01,
		PlayfulProb:       0.10,
		SleepTimeout:      300 * time.Second,
	}
}

// Seed 返回名字对应的 32 位随机种子
// 即 UTF-8 字节的 SHA-256 摘要按大端整数取模 2^32
func Seed(name string) uint32 {
	sum := sha256.Sum256([]byte(name))
	return binary.BigEndian.Uint32(sum[len(sum)-4:])
}

// For 返回名字对应的参数
// 抽取顺序固定，改变顺序会改变所有已有宠物
func For(name string) Traits {
	if name == "" {
		return Default()
	}

	rng := rand.New(rand.NewPCG(uint64(Seed(name)), 0))
	uniform := func(lo, hi float64) float64 {
		return lo + (hi-lo)*rng.Float64()
	}

	t := Traits{}
	t.BaseSpeed = uniform(0.8, 1.5)
	minSec := uniform(60, 300)
	maxSec := uniform(301, 900)
	if minSec >= maxSec {
		minSec, maxSec = maxSec, minSec
	}
	t.SoundIntervalMin = seconds(minSec)
	t.SoundIntervalMax = seconds(maxSec)
	t.SoundResponseProb = uniform(0.01, 0.25)
	t.PlayfulProb = uniform(0.10, 0.50)
	t.SleepTimeout = seconds(uniform(5, 15) * 60)

	return t
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
