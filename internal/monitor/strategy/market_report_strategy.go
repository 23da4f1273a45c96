package strategy

import (
	"context"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/dto"
	"golang-market-alert/internal/monitor/service"
	"golang-market-alert/pkg/common"
	"golang-market-alert/pkg/logger"
)

// MarketReportStrategy builds the top performers report.
type MarketReportStrategy struct {
	logger *logger.Logger
	report service.MarketReportService
	notify bool
}

func NewMarketReportStrategy(log *logger.Logger, report service.MarketReportService, notify bool) JobExecutionStrategy {
	return &MarketReportStrategy{logger: log, report: report, notify: notify}
}

func (s *MarketReportStrategy) GetType() entity.JobType {
	return entity.JobTypeMarketReport
}

func (s *MarketReportStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var params dto.MarketReportParams
	if err := decodeParams(job, &params); err != nil {
		s.logger.ErrorContext(ctx, "Invalid market report params", logger.StringField("job", job.Name), logger.ErrorField(err))
		return "", err
	}

	report, err := s.report.Run(ctx, service.ReportOptions{
		Metric:       params.Metric,
		TopN:         params.TopN,
		Period:       params.Period,
		Symbols:      params.Symbols,
		WithEarnings: boolOr(params.WithEarnings, true),
		Notify:       notifyEnabled(params.Notify, s.notify),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Market report failed", logger.StringField("job", job.Name), logger.ErrorField(err))
		if report != nil {
			out, _ := marshalResult(JobResult{Status: common.FAILED, Data: report, Errors: []string{err.Error()}})
			return out, err
		}
		return "", err
	}
	return marshalResult(JobResult{Status: common.SUCCESS, Data: report})
}
