// Package awscost reads local AWS profiles and per-service spend from Cost
// Explorer.
package awscost

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
)

const (
	DefaultRegion = "us-east-1"
	dateLayout    = "2006-01-02"
	costMetric    = "BlendedCost"
)

type costAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

type identityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type clientFactory func(ctx context.Context, profile string) (costAPI, identityAPI, error)

type Explorer struct {
	configFile      string
	credentialsFile string
	region          string
	clients         clientFactory
}

var _ ports.CloudCostProvider = (*Explorer)(nil)

func NewExplorer(configFile string, credentialsFile string, region string) *Explorer {
	if region == "" {
		region = DefaultRegion
	}

	explorer := &Explorer{configFile: configFile, credentialsFile: credentialsFile, region: region}
	explorer.clients = explorer.sdkClients

	return explorer
}

func (e *Explorer) Profiles(ctx context.Context) ([]domain.CloudProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	profiles, err := loadProfiles(e.configFile, e.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("load aws profiles: %w", err)
	}

	return profiles, nil
}

func (e *Explorer) CostByService(ctx context.Context, profile string, start, end time.Time) (domain.CloudCostReport, error) {
	if profile == "" {
		profile = "default"
	}
	if !end.After(start) {
		return domain.CloudCostReport{}, errors.New("cost period end must be after start")
	}

	costs, identity, err := e.clients(ctx, profile)
	if err != nil {
		return domain.CloudCostReport{}, fmt.Errorf("configure aws profile %s: %w", profile, err)
	}

	report := domain.CloudCostReport{
		Profile:  profile,
		Region:   e.profileRegion(profile),
		Start:    start,
		End:      end,
		Currency: "USD",
	}

	who, err := identity.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return domain.CloudCostReport{}, fmt.Errorf("identify aws profile %s: %w", profile, err)
	}
	report.AccountID = aws.ToString(who.Account)

	totals := map[string]float64{}
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format(dateLayout)),
			End:   aws.String(end.Format(dateLayout)),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{costMetric},
		GroupBy: []cetypes.GroupDefinition{{
			Type: cetypes.GroupDefinitionTypeDimension,
			Key:  aws.String("SERVICE"),
		}},
	}
	for {
		out, err := costs.GetCostAndUsage(ctx, input)
		if err != nil {
			return domain.CloudCostReport{}, fmt.Errorf("get cost and usage for %s: %w", profile, err)
		}
		for _, period := range out.ResultsByTime {
			for _, group := range period.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				metric, ok := group.Metrics[costMetric]
				if !ok {
					continue
				}
				amount, err := strconv.ParseFloat(aws.ToString(metric.Amount), 64)
				if err != nil {
					return domain.CloudCostReport{}, fmt.Errorf("parse cost of %s: %w", group.Keys[0], err)
				}
				totals[group.Keys[0]] += amount
				if unit := aws.ToString(metric.Unit); unit != "" {
					report.Currency = unit
				}
			}
		}
		if aws.ToString(out.NextPageToken) == "" {
			break
		}
		input.NextPageToken = out.NextPageToken
	}

	for service, cost := range totals {
		report.Services = append(report.Services, domain.ServiceCost{Service: service, Cost: cost})
	}
	sort.Slice(report.Services, func(i, j int) bool {
		if report.Services[i].Cost != report.Services[j].Cost {
			return report.Services[i].Cost > report.Services[j].Cost
		}
		return report.Services[i].Service < report.Services[j].Service
	})

	return report, nil
}

func (e *Explorer) profileRegion(profile string) string {
	profiles, err := loadProfiles(e.configFile, e.credentialsFile)
	if err == nil {
		for _, p := range profiles {
			if p.Name == profile && p.Region != "" {
				return p.Region
			}
		}
	}
	return e.region
}

func (e *Explorer) sdkClients(ctx context.Context, profile string) (costAPI, identityAPI, error) {
	options := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithSharedConfigProfile(profile),
		awsconfig.WithRegion(e.region),
	}
	if e.configFile != "" {
		options = append(options, awsconfig.WithSharedConfigFiles([]string{e.configFile}))
	}
	if e.credentialsFile != "" {
		options = append(options, awsconfig.WithSharedCredentialsFiles([]string{e.credentialsFile}))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, nil, err
	}

	return costexplorer.NewFromConfig(cfg), sts.NewFromConfig(cfg), nil
}
