package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bidwatch-dev/bidwatch/backend/internal/config"
	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
)

// EVPSource pulls solicitations from the NC eVP portal's entity-grid-data
// endpoint, the JSON API behind the portal's solicitation grid.
type EVPSource struct {
	cfg    *config.Config
	client *http.Client
}

func NewEVPSource(cfg *config.Config) *EVPSource {
	return &EVPSource{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Sources.EVP.RequestTimeout) * time.Second,
		},
	}
}

func (s *EVPSource) Name() string {
	return "evp_nc_gov"
}

type gridRequest struct {
	PageSize int `json:"pageSize"`
	Page     int `json:"page"`
}

type gridResponse struct {
	Records []domain.GridRecord `json:"Records"`
}

func (s *EVPSource) Fetch(ctx context.Context) ([]domain.Solicitation, error) {
	payload, err := json.Marshal(gridRequest{
		PageSize: s.cfg.Sources.EVP.PageSize,
		Page:     1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Sources.EVP.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", s.cfg.Sources.EVP.Referer)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, s.cfg.Sources.EVP.URL)
	}

	grid := gridResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&grid); err != nil {
		return nil, err
	}

	solicitations := make([]domain.Solicitation, 0, len(grid.Records))
	for _, rec := range grid.Records {
		solicitation, err := domain.SolicitationFromGridRecord(rec)
		if err != nil {
			// a record without attributes is a portal quirk, not a reason to
			// fail the whole fetch
			slog.Warn("skipping grid record", "id", rec.ID, "error", err)
			continue
		}
		solicitations = append(solicitations, solicitation)
	}

	return solicitations, nil
}
