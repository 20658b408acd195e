package services

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/models"
)

// ResearchAPI is the slice of the API client the dashboard reads.
type ResearchAPI interface {
	PopularStocks(ctx context.Context) ([]models.PopularStock, error)
	SavedAnalyses(ctx context.Context) ([]models.SavedAnalysis, error)
	MarketNews(ctx context.Context) (json.RawMessage, error)
}

// Dashboard holds each section together with the error that section hit.
// Sections fail independently.
type Dashboard struct {
	Popular    []models.PopularStock
	PopularErr error

	Saved    []models.SavedAnalysis
	SavedErr error

	News    json.RawMessage
	NewsErr error
}

// Err returns the first section error, or nil.
func (d Dashboard) Err() error {
	for _, err := range []error{d.PopularErr, d.SavedErr, d.NewsErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

type ResearchService interface {
	Dashboard(ctx context.Context) Dashboard
}

type researchService struct {
	api ResearchAPI
}

func NewResearchService(api ResearchAPI) ResearchService {
	return &researchService{api: api}
}

// Dashboard fetches the three dashboard sections concurrently. A failing
// section does not cancel the others.
func (r *researchService) Dashboard(ctx context.Context) Dashboard {
	// The group only joins the fetches. Each section keeps its own error and
	// none cancels the others, so every request still reaches the pipeline.
	var (
		d Dashboard
		g errgroup.Group
	)

	g.Go(func() error {
		d.Popular, d.PopularErr = r.api.PopularStocks(ctx)
		return nil
	})
	g.Go(func() error {
		d.Saved, d.SavedErr = r.api.SavedAnalyses(ctx)
		return nil
	})
	g.Go(func() error {
		d.News, d.NewsErr = r.api.MarketNews(ctx)
		return nil
	})

	_ = g.Wait() // always nil
	return d
}
