package pipeline

import (
	"github.com/GriffinCanCode/rtpipe/internal/domain/record"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rtpipe/internal/watchdog"
)

// Health is a point-in-time view of the pipeline for the status endpoint.
type Health struct {
	Tag          string                     `json:"tag"`
	Healthy      bool                       `json:"healthy"`
	Report       *Report                    `json:"report,omitempty"`
	Pending      string                     `json:"pending_flags"`
	ChannelDepth int                        `json:"channel_depth"`
	TimeoutCount int                        `json:"timeout_count"`
	Pool         record.PoolStats           `json:"pool"`
	Counters     monitoring.MetricsSnapshot `json:"counters"`
	Watchdog     []watchdog.LiaisonState    `json:"watchdog,omitempty"`
}

// Health reports the latest supervision result plus live counters. Pending
// flags are read without clearing them. Before the first supervision cycle
// the pipeline counts as healthy.
func (p *Pipeline) Health() Health {
	h := Health{
		Tag:          p.logger.Tag(),
		Healthy:      true,
		Pending:      p.liveness.Peek().String(),
		ChannelDepth: p.channel.Len(),
		TimeoutCount: p.consumer.TimeoutCount(),
		Pool:         p.pool.Stats(),
		Counters:     p.metrics.Snapshot(),
	}
	if report, ok := p.supervisor.Last(); ok {
		h.Report = &report
		h.Healthy = report.Status.Healthy()
	}
	if p.watchdog != nil {
		h.Watchdog = p.watchdog.Snapshot()
	}
	return h
}
