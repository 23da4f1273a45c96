package strategy

import (
	"context"
	"fmt"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/dto"
	"golang-market-alert/internal/monitor/service"
	"golang-market-alert/pkg/common"
	"golang-market-alert/pkg/logger"
	"golang-market-alert/pkg/telegram"
	"golang-market-alert/pkg/utils"
)

// StockAnalyzerStrategy analyzes a list of symbols and optionally sends each recommendation.
type StockAnalyzerStrategy struct {
	logger         *logger.Logger
	analyzer       service.StockAnalyzerService
	notifier       telegram.Notifier
	defaultSymbols []string
	notify         bool
}

func NewStockAnalyzerStrategy(
	log *logger.Logger,
	analyzer service.StockAnalyzerService,
	notifier telegram.Notifier,
	defaultSymbols []string,
	notify bool,
) JobExecutionStrategy {
	return &StockAnalyzerStrategy{
		logger:         log,
		analyzer:       analyzer,
		notifier:       notifier,
		defaultSymbols: defaultSymbols,
		notify:         notify,
	}
}

func (s *StockAnalyzerStrategy) GetType() entity.JobType {
	return entity.JobTypeStockAnalyzer
}

func (s *StockAnalyzerStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var params dto.StockAnalyzerParams
	if err := decodeParams(job, &params); err != nil {
		s.logger.ErrorContext(ctx, "Invalid stock analyzer params", logger.StringField("job", job.Name), logger.ErrorField(err))
		return "", err
	}
	symbols := params.Symbols
	if len(symbols) == 0 {
		symbols = s.defaultSymbols
	}
	if len(symbols) == 0 {
		return marshalResult(JobResult{Status: common.SKIPPED})
	}
	notify := notifyEnabled(params.Notify, s.notify)

	var (
		results []*entity.RecommendationResult
		errs    []string
	)
	for _, symbol := range symbols {
		if !utils.ShouldContinue(ctx, s.logger) {
			return "", ctx.Err()
		}
		result, err := s.analyzer.Analyze(ctx, symbol)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to analyze stock", logger.StringField("symbol", symbol), logger.ErrorField(err))
			errs = append(errs, fmt.Sprintf("%s: %v", symbol, err))
			continue
		}
		results = append(results, result)

		if notify {
			if err := s.notifier.SendMessage(telegram.FormatRecommendation(*result)); err != nil {
				s.logger.ErrorContext(ctx, "Failed to send recommendation", logger.StringField("symbol", symbol), logger.ErrorField(err))
				errs = append(errs, fmt.Sprintf("%s: notify: %v", symbol, err))
			}
		}
	}

	status := common.SUCCESS
	if len(results) == 0 {
		status = common.FAILED
	}
	out, err := marshalResult(JobResult{Status: status, Data: results, Errors: errs})
	if err != nil {
		return "", err
	}
	if status == common.FAILED {
		return out, fmt.Errorf("no symbol could be analyzed")
	}
	return out, nil
}
