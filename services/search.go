package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MedShare/apperr"

	"github.com/google/logger"
)

const maxSearchBody = 4 << 20

// DrugSearchService looks brand names up in the OpenFDA drugs@FDA endpoint
// and hands the payload back untouched.
type DrugSearchService struct {
	client  *http.Client
	baseURL string
}

func NewDrugSearchService(baseURL string, timeout time.Duration) *DrugSearchService {
	return &DrugSearchService{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

/*
* Query by brand name, at most 10 results
* A 404 from the provider means no match and its payload is passed through
* Any other failure is an upstream error
 */
func (s *DrugSearchService) Search(ctx context.Context, query string) (json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fail("drug.search", apperr.Validation(apperr.DRUG_SEARCH_QUERY_MISSING, map[string]string{"query": "required"}))
	}
	params := url.Values{}
	params.Set("search", fmt.Sprintf("openfda.brand_name:%q", query))
	params.Set("limit", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fail("drug.search", apperr.Internal(apperr.DRUG_SEARCH_UNAVAILABLE, err))
	}
	resp, err := s.client.Do(req)
	if err != nil {
		logger.Errorf("Error from drug search request: %v", err)
		return nil, fail("drug.search", apperr.Upstream(apperr.DRUG_SEARCH_UNAVAILABLE, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBody))
	if err != nil {
		logger.Errorf("Error reading drug search response: %v", err)
		return nil, fail("drug.search", apperr.Upstream(apperr.DRUG_SEARCH_UNAVAILABLE, err))
	}
	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		logger.Errorf("Drug search returned status %d", resp.StatusCode)
		return nil, fail("drug.search", apperr.Upstream(apperr.DRUG_SEARCH_UNAVAILABLE, fmt.Errorf("status %d", resp.StatusCode)))
	}
	if !json.Valid(body) {
		return nil, fail("drug.search", apperr.Upstream(apperr.DRUG_SEARCH_UNAVAILABLE, fmt.Errorf("invalid json payload")))
	}
	return json.RawMessage(body), nil
}
