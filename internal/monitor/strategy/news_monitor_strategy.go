package strategy

import (
	"context"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/dto"
	"golang-market-alert/internal/monitor/service"
	"golang-market-alert/pkg/common"
	"golang-market-alert/pkg/logger"
)

// NewsMonitorStrategy runs one news monitor cycle.
type NewsMonitorStrategy struct {
	logger  *logger.Logger
	monitor service.NewsMonitorService
	notify  bool
}

// NewNewsMonitorStrategy creates a news monitor strategy. Jobs notify only when notify
// is set; a job may opt out with its own notify param.
func NewNewsMonitorStrategy(log *logger.Logger, monitor service.NewsMonitorService, notify bool) JobExecutionStrategy {
	return &NewsMonitorStrategy{logger: log, monitor: monitor, notify: notify}
}

func (s *NewsMonitorStrategy) GetType() entity.JobType {
	return entity.JobTypeNewsMonitor
}

func (s *NewsMonitorStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var params dto.NewsMonitorParams
	if err := decodeParams(job, &params); err != nil {
		s.logger.ErrorContext(ctx, "Invalid news monitor params", logger.StringField("job", job.Name), logger.ErrorField(err))
		return "", err
	}

	result, err := s.monitor.RunCycle(ctx, notifyEnabled(params.Notify, s.notify))
	if err != nil {
		s.logger.ErrorContext(ctx, "News monitor cycle failed", logger.StringField("job", job.Name), logger.ErrorField(err))
		return "", err
	}

	status := common.SUCCESS
	switch {
	case result.Relevant == 0:
		status = common.SKIPPED
	case result.Failed > 0 && result.Sent == 0:
		status = common.FAILED
	}
	return marshalResult(JobResult{Status: status, Data: result})
}
