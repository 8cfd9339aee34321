package systems

// timerEpsilon 浮点累加误差容忍（60 帧 1/60 秒的累加不一定恰好等于 1.0）
const timerEpsilon = 1e-9

// TimerHandle 定时器句柄，0 表示无效
type TimerHandle uint64

type scheduledTimer struct {
	id  TimerHandle
	due float64
	fn  func()
}

// TimerScheduler 可取消的延迟回调调度器
//
// 时间由调用方通过 Advance(dt) 推进（主循环每帧 1/60 秒），
// 回调在推进过程中按到期时间顺序同步执行；到期时间相同的按登记顺序执行。
// 回调内部可以继续登记或取消定时器，新登记的延迟从回调触发时刻起算。
type TimerScheduler struct {
	now    float64
	nextID TimerHandle
	timers []*scheduledTimer
}

// NewTimerScheduler 创建调度器，时间从 0 开始
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

// Now 当前调度器时间（秒）
func (s *TimerScheduler) Now() float64 {
	return s.now
}

// After 登记一个在 delay 秒后执行的回调
func (s *TimerScheduler) After(delay float64, fn func()) TimerHandle {
	if delay < 0 {
		delay = 0
	}
	s.nextID++
	s.timers = append(s.timers, &scheduledTimer{id: s.nextID, due: s.now + delay, fn: fn})
	return s.nextID
}

// Cancel 取消定时器，返回是否确实取消了一个待执行的定时器
func (s *TimerScheduler) Cancel(h TimerHandle) bool {
	if h == 0 {
		return false
	}
	for i, t := range s.timers {
		if t.id == h {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	return false
}

// CancelAll 同步取消全部待执行的定时器
func (s *TimerScheduler) CancelAll() {
	s.timers = s.timers[:0]
}

// Pending 待执行的定时器数量
func (s *TimerScheduler) Pending() int {
	return len(s.timers)
}

// Advance 推进时间并执行所有到期的回调
func (s *TimerScheduler) Advance(dt float64) {
	if dt < 0 {
		return
	}
	target := s.now + dt
	for {
		idx := s.earliestDue(target)
		if idx < 0 {
			break
		}
		t := s.timers[idx]
		s.timers = append(s.timers[:idx], s.timers[idx+1:]...)
		if t.due > s.now {
			s.now = t.due
		}
		t.fn()
	}
	s.now = target
}

// earliestDue 返回不晚于 limit 的最早定时器下标，没有则返回 -1
func (s *TimerScheduler) earliestDue(limit float64) int {
	best := -1
	for i, t := range s.timers {
		if t.due > limit+timerEpsilon {
			continue
		}
		if best < 0 || t.due < s.timers[best].due ||
			(t.due == s.timers[best].due && t.id < s.timers[best].id) {
			best = i
		}
	}
	return best
}
