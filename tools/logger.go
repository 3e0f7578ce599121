package tools

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

var isEnabled = true
var printTimestamp = false

func EnableLogger() {
	isEnabled = true
}

func DisableLogger() {
	isEnabled = false
}

func EnableLoggerTimestamp() {
	printTimestamp = true
}

func DisableLoggerTimestamp() {
	printTimestamp = false
}

func IsLoggerEnabled() bool {
	return isEnabled
}

// Logs the given values unless the logger has been silenced
func LogOutput(val ...interface{}) {
	if isEnabled {
		if printTimestamp {
			glog.Infoln(append([]interface{}{"[" + time.Now().Format("2006-01-02 15.04:05.000") + "]"}, val...)...)
			return
		}
		glog.Infoln(val...)
	}
}

// Logs the time elapsed since start, to be used as defer TimeTrack(time.Now(), "stage")
func TimeTrack(start time.Time, name string) {
	if isEnabled {
		glog.Infof("%s took %s", name, time.Since(start))
	}
}

// Reports the advancement of a long running loop every 10% of the total.
// Step can be called from multiple goroutines.
type Progress struct {
	name  string
	total int64
	done  int64
	last  int64
}

func NewProgress(name string, total int) *Progress {
	return &Progress{name: name, total: int64(total)}
}

func (p *Progress) Step() {
	p.Add(1)
}

func (p *Progress) Add(n int) {
	if p == nil || p.total <= 0 {
		return
	}
	done := atomic.AddInt64(&p.done, int64(n))
	decile := done * 10 / p.total
	last := atomic.LoadInt64(&p.last)
	if decile > last && atomic.CompareAndSwapInt64(&p.last, last, decile) {
		LogOutput(fmt.Sprintf("%s: %d%% (%d/%d)", p.name, decile*10, done, p.total))
	}
}

func (p *Progress) Done() int {
	return int(atomic.LoadInt64(&p.done))
}
