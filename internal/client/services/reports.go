package services

import (
	"context"

	"github.com/dmitrijs2005/fitmacro/internal/client/client"
	"github.com/dmitrijs2005/fitmacro/internal/client/models"
)

// ReportService fetches the read-only views the CLI shows.
type ReportService interface {
	Today(ctx context.Context, date string) (*models.Summary, error)
	Chart(ctx context.Context, days int) (*models.CalorieSeries, error)
}

type reportService struct {
	client client.Client
}

func NewReportService(c client.Client) ReportService {
	return &reportService{client: c}
}

// Today returns the summary of date, or of the server's today when date is "".
func (r *reportService) Today(ctx context.Context, date string) (*models.Summary, error) {
	if !r.loggedIn() {
		return nil, client.ErrNotLoggedIn
	}
	return r.client.DailySummary(ctx, date)
}

// Chart returns the last days of calorie totals.
func (r *reportService) Chart(ctx context.Context, days int) (*models.CalorieSeries, error) {
	if !r.loggedIn() {
		return nil, client.ErrNotLoggedIn
	}
	return r.client.CalorieSeries(ctx, days)
}

func (r *reportService) loggedIn() bool {
	access, _ := r.client.Tokens()
	return access != ""
}
