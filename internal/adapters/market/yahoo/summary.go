package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bnema/pulse/internal/adapters/httpapi"
	"github.com/bnema/pulse/internal/domain"
)

const summaryModules = "assetProfile,summaryDetail,defaultKeyStatistics"

// rawValue is the {"raw": 1.5, "fmt": "1.50"} pair the summary endpoint uses
// for numbers. An empty object decodes to zero.
type rawValue struct {
	Raw float64 `json:"raw"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type summaryResult struct {
	AssetProfile struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
	SummaryDetail struct {
		MarketCap     rawValue `json:"marketCap"`
		TrailingPE    rawValue `json:"trailingPE"`
		DividendYield rawValue `json:"dividendYield"`
		Beta          rawValue `json:"beta"`
		AverageVolume rawValue `json:"averageVolume"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		TrailingEPS rawValue `json:"trailingEps"`
	} `json:"defaultKeyStatistics"`
}

func (c *Client) Fundamentals(ctx context.Context, symbols []string) (map[string]domain.Fundamentals, map[string]error) {
	return fanOut(c.concurrency(), symbols, func(symbol string) (domain.Fundamentals, error) {
		return c.fundamentals(ctx, symbol)
	})
}

func (c *Client) fundamentals(ctx context.Context, symbol string) (domain.Fundamentals, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.Fundamentals{}, errors.New("symbol is required")
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint, err := httpapi.BuildURL(base, "v10/finance/quoteSummary/"+url.PathEscape(symbol), url.Values{
		"modules": {summaryModules},
	})
	if err != nil {
		return domain.Fundamentals{}, err
	}

	var payload summaryResponse
	if err := c.HTTP.GetJSON(ctx, endpoint, &payload); err != nil {
		return domain.Fundamentals{}, fmt.Errorf("fetch summary %s: %w", symbol, err)
	}
	if payload.QuoteSummary.Error != nil {
		return domain.Fundamentals{}, fmt.Errorf("summary %s: %s: %w", symbol, payload.QuoteSummary.Error.Description, ErrNoData)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return domain.Fundamentals{}, fmt.Errorf("summary %s: %w", symbol, ErrNoData)
	}

	result := payload.QuoteSummary.Result[0]
	return domain.Fundamentals{
		Sector:        result.AssetProfile.Sector,
		Industry:      result.AssetProfile.Industry,
		MarketCap:     result.SummaryDetail.MarketCap.Raw,
		PERatio:       result.SummaryDetail.TrailingPE.Raw,
		EPS:           result.DefaultKeyStatistics.TrailingEPS.Raw,
		DividendYield: result.SummaryDetail.DividendYield.Raw,
		Beta:          result.SummaryDetail.Beta.Raw,
		AvgVolume:     int64(result.SummaryDetail.AverageVolume.Raw),
	}, nil
}
