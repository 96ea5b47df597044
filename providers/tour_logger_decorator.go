package providers

import (
	"time"

	"tourmate.app/models"
)

// TourLoggerDecorator records every upstream lookup through a FileLogger
type TourLoggerDecorator struct {
	wrappedProvider TourProvider
	logger          FileLogger
	providerName    string
}

func NewTourLoggerDecorator(provider TourProvider, logger FileLogger, providerName string) TourProvider {
	return &TourLoggerDecorator{
		wrappedProvider: provider,
		logger:          logger,
		providerName:    providerName,
	}
}

func (d *TourLoggerDecorator) GetTours(category string, query *models.TourQuery) ([]models.TourItem, error) {
	d.logger.LogRequest(d.providerName, category)
	startTime := time.Now()

	items, err := d.wrappedProvider.GetTours(category, query)
	duration := time.Since(startTime)

	if err != nil {
		d.logger.LogError(d.providerName, category, err, duration)
		return nil, err
	}

	d.logger.LogResponse(d.providerName, category, len(items), duration)
	return items, nil
}

func (d *TourLoggerDecorator) GetTourDetail(contentID string) (*models.TourDetail, error) {
	d.logger.LogRequest(d.providerName, "detail")
	startTime := time.Now()

	detail, err := d.wrappedProvider.GetTourDetail(contentID)
	duration := time.Since(startTime)

	if err != nil {
		d.logger.LogError(d.providerName, "detail", err, duration)
		return nil, err
	}

	d.logger.LogResponse(d.providerName, "detail", 1, duration)
	return detail, nil
}
