package presenter

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/handlebauer/ar-io-observer/internal/entity"
)

// ProgressBar is the non-dashboard fallback: a single mpb bar tracking
// gateways started vs. gateways assessed, for use when --dashboard is not
// set.
type ProgressBar struct {
	progress *mpb.Progress
	bar      *mpb.Bar
	numAll   int64
	numDone  int64
	start    time.Time
}

// NewProgressBar creates and starts rendering a ProgressBar to stderr.
func NewProgressBar() *ProgressBar {
	progress := mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
	bar := progress.AddBar(0,
		mpb.PrependDecorators(decor.Name("gateways", decor.WCSyncWidth)),
		mpb.AppendDecorators(
			decor.CountersNoUnit("[%d / %d]", decor.WCSyncWidth),
			decor.Percentage(decor.WCSyncSpace),
		),
	)
	return &ProgressBar{progress: progress, bar: bar, start: time.Now()}
}

// OnGatewayStarted grows the bar's total by one.
func (p *ProgressBar) OnGatewayStarted(string) {
	total := atomic.AddInt64(&p.numAll, 1)
	p.bar.SetTotal(total, false)
}

// OnGatewayAssessed advances the bar's current count by one.
func (p *ProgressBar) OnGatewayAssessed(string, entity.GatewayAssessment) {
	done := atomic.AddInt64(&p.numDone, 1)
	p.bar.EwmaSetCurrent(done, time.Since(p.start))
}

// Wait blocks until the bar has finished rendering, called after
// GenerateReport returns.
func (p *ProgressBar) Wait() {
	p.bar.SetTotal(-1, true)
	p.progress.Wait()
}
