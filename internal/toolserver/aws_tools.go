package toolserver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bnema/pulse/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sourcegraph/conc/iter"
)

const (
	defaultCostDays = 30
	maxCostDays     = 365
	topServices     = 5
	reportSummary   = "summary"
	reportDetailed  = "detailed"
	dateLayout      = "2006-01-02"
)

type serviceShare struct {
	Service    string  `json:"service"`
	Cost       float64 `json:"cost"`
	Percentage float64 `json:"percentage"`
}

type profileCost struct {
	Success       bool           `json:"success"`
	Profile       string         `json:"profile"`
	AccountID     string         `json:"account_id,omitempty"`
	Region        string         `json:"region,omitempty"`
	PeriodDays    int            `json:"period_days"`
	StartDate     string         `json:"start_date,omitempty"`
	EndDate       string         `json:"end_date,omitempty"`
	TotalCost     float64        `json:"total_cost"`
	Currency      string         `json:"currency,omitempty"`
	TopServices   []serviceShare `json:"top_5_services,omitempty"`
	TotalServices int            `json:"total_services"`
	Error         string         `json:"error,omitempty"`
}

type accountCost struct {
	Profile   string  `json:"profile"`
	AccountID string  `json:"account_id"`
	Cost      float64 `json:"cost"`
}

type awsSummary struct {
	TopServices   []serviceShare `json:"top_5_services_across_all_accounts"`
	MostExpensive *accountCost   `json:"most_expensive_account,omitempty"`
}

type awsAnalysis struct {
	Success      bool                   `json:"success"`
	AnalysisType string                 `json:"analysis_type"`
	AnalysisDate string                 `json:"analysis_date"`
	PeriodDays   int                    `json:"period_days"`
	Total        int                    `json:"total_profiles"`
	Successful   int                    `json:"profiles_successful"`
	Failed       int                    `json:"profiles_failed"`
	TotalCost    float64                `json:"total_cost"`
	Currency     string                 `json:"currency"`
	Profiles     map[string]profileCost `json:"profiles"`
	Summary      awsSummary             `json:"summary"`

	order []string
}

func (s *Server) registerAWSTools() {
	s.addTool(mcp.NewTool("discover_aws_profiles",
		mcp.WithDescription("Discover AWS profiles configured in the local AWS config and credentials files"),
	), s.discoverAWSProfiles)

	s.addTool(mcp.NewTool("analyze_aws_costs",
		mcp.WithDescription("Analyze AWS costs by service for one profile or across all profiles"),
		mcp.WithNumber("days", mcp.Description("Number of days to analyze"), mcp.DefaultNumber(defaultCostDays)),
		mcp.WithString("profile", mcp.Description("AWS profile name; all profiles when omitted")),
	), s.analyzeAWSCosts)

	s.addTool(mcp.NewTool("get_aws_cost_report",
		mcp.WithDescription("Generate a formatted AWS cost report across all profiles"),
		mcp.WithNumber("days", mcp.Description("Number of days to analyze"), mcp.DefaultNumber(defaultCostDays)),
		mcp.WithString("format_type", mcp.Description("Report format"), mcp.Enum(reportSummary, reportDetailed), mcp.DefaultString(reportDetailed)),
	), s.awsCostReport)
}

func (s *Server) discoverAWSProfiles(ctx context.Context, _ map[string]any) (*mcp.CallToolResult, error) {
	if s.deps.Cloud == nil {
		return failure(fmt.Errorf("aws %w", errProviderMissing), nil)
	}

	profiles, err := s.deps.Cloud.Profiles(ctx)
	if err != nil {
		return failure(err, nil)
	}

	return jsonResult(map[string]any{
		"success":        true,
		"total_profiles": len(profiles),
		"profiles":       profilePayloads(profiles),
		"message":        fmt.Sprintf("Found %d AWS profiles in local configuration", len(profiles)),
	})
}

func profilePayloads(profiles []domain.CloudProfile) []map[string]any {
	out := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		entry := map[string]any{
			"name":            p.Name,
			"region":          p.Region,
			"output":          p.Output,
			"source":          p.Source,
			"has_credentials": p.HasCredentials,
		}
		if p.AccessKeyHint != "" {
			entry["access_key_id"] = p.AccessKeyHint
		}
		if p.RoleARN != "" {
			entry["role_arn"] = p.RoleARN
		}
		if p.SourceProfile != "" {
			entry["source_profile"] = p.SourceProfile
		}
		out = append(out, entry)
	}
	return out
}

func (s *Server) analyzeAWSCosts(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	days, err := costDays(args)
	if err != nil {
		return argumentError(err)
	}
	if s.deps.Cloud == nil {
		return failure(fmt.Errorf("aws %w", errProviderMissing), nil)
	}

	if profile := stringArg(args, "profile", ""); profile != "" {
		result := s.profileCost(ctx, profile, days)
		if !result.Success {
			return failure(errors.New(result.Error), map[string]any{"profile": profile})
		}
		return jsonResult(map[string]any{
			"success":       true,
			"analysis_type": "single_profile",
			"profile":       profile,
			"period_days":   days,
			"total_cost":    result.TotalCost,
			"currency":      result.Currency,
			"services":      result.TopServices,
			"result":        result,
		})
	}

	analysis, err := s.analyzeAllProfiles(ctx, days)
	if err != nil {
		return failure(err, nil)
	}
	return jsonResult(analysis)
}

func (s *Server) awsCostReport(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	days, err := costDays(args)
	if err != nil {
		return argumentError(err)
	}
	format := strings.ToLower(stringArg(args, "format_type", reportDetailed))
	if format != reportSummary && format != reportDetailed {
		return argumentError(fmt.Errorf("format_type must be %s or %s", reportSummary, reportDetailed))
	}
	if s.deps.Cloud == nil {
		return mcp.NewToolResultText("❌ Analysis failed: aws " + errProviderMissing.Error()), nil
	}

	analysis, err := s.analyzeAllProfiles(ctx, days)
	if err != nil {
		return mcp.NewToolResultText("❌ Analysis failed: " + err.Error()), nil
	}
	if format == reportSummary {
		return mcp.NewToolResultText(awsSummaryReport(analysis)), nil
	}
	return mcp.NewToolResultText(awsDetailedReport(analysis)), nil
}

func (s *Server) analyzeAllProfiles(ctx context.Context, days int) (awsAnalysis, error) {
	profiles, err := s.deps.Cloud.Profiles(ctx)
	if err != nil {
		return awsAnalysis{}, err
	}
	if len(profiles) == 0 {
		return awsAnalysis{}, errors.New("no AWS profiles found in the local AWS configuration")
	}

	results := iter.Map(profiles, func(p *domain.CloudProfile) profileCost {
		return s.profileCost(ctx, p.Name, days)
	})

	analysis := awsAnalysis{
		Success:      true,
		AnalysisType: "all_profiles",
		AnalysisDate: s.deps.Clock.Now().UTC().Format(time.RFC3339),
		PeriodDays:   days,
		Total:        len(profiles),
		Currency:     "USD",
		Profiles:     make(map[string]profileCost, len(results)),
	}

	byService := map[string]float64{}
	for _, result := range results {
		analysis.order = append(analysis.order, result.Profile)
		analysis.Profiles[result.Profile] = result
		if !result.Success {
			analysis.Failed++
			continue
		}
		analysis.Successful++
		analysis.TotalCost += result.TotalCost
		if result.Currency != "" {
			analysis.Currency = result.Currency
		}
		for _, service := range result.TopServices {
			byService[service.Service] += service.Cost
		}
		if analysis.Summary.MostExpensive == nil || result.TotalCost > analysis.Summary.MostExpensive.Cost {
			analysis.Summary.MostExpensive = &accountCost{Profile: result.Profile, AccountID: result.AccountID, Cost: result.TotalCost}
		}
	}
	analysis.TotalCost = round2(analysis.TotalCost)

	services := make([]domain.ServiceCost, 0, len(byService))
	for name, cost := range byService {
		services = append(services, domain.ServiceCost{Service: name, Cost: cost})
	}
	analysis.Summary.TopServices = shares(services, analysis.TotalCost)

	return analysis, nil
}

func (s *Server) profileCost(ctx context.Context, profile string, days int) profileCost {
	end := s.deps.Clock.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -days)

	report, err := s.deps.Cloud.CostByService(ctx, profile, start, end)
	if err != nil {
		return profileCost{Profile: profile, PeriodDays: days, Error: err.Error()}
	}

	total := report.Total()
	return profileCost{
		Success:       true,
		Profile:       profile,
		AccountID:     report.AccountID,
		Region:        report.Region,
		PeriodDays:    days,
		StartDate:     start.Format(dateLayout),
		EndDate:       end.Format(dateLayout),
		TotalCost:     round2(total),
		Currency:      report.Currency,
		TopServices:   shares(report.Services, total),
		TotalServices: len(report.Services),
	}
}

// shares returns the top services by cost with their share of total.
func shares(services []domain.ServiceCost, total float64) []serviceShare {
	sorted := append([]domain.ServiceCost(nil), services...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Cost != sorted[j].Cost {
			return sorted[i].Cost > sorted[j].Cost
		}
		return sorted[i].Service < sorted[j].Service
	})
	if len(sorted) > topServices {
		sorted = sorted[:topServices]
	}

	out := make([]serviceShare, 0, len(sorted))
	for _, service := range sorted {
		share := serviceShare{Service: service.Service, Cost: round2(service.Cost)}
		if total > 0 {
			share.Percentage = round2(service.Cost / total * 100)
		}
		out = append(out, share)
	}
	return out
}

func costDays(args map[string]any) (int, error) {
	days, err := intArg(args, "days", defaultCostDays, 1)
	if err != nil {
		return 0, err
	}
	if days > maxCostDays {
		return 0, fmt.Errorf("days must be at most %d", maxCostDays)
	}
	return days, nil
}
