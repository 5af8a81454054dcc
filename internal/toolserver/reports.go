package toolserver

import (
	"fmt"
	"strings"

	"github.com/bnema/pulse/internal/domain"
)

func awsSummaryReport(a awsAnalysis) string {
	var b strings.Builder
	b.WriteString("🏦 AWS COST SUMMARY\n")
	fmt.Fprintf(&b, "💰 Total Cost (All Accounts): $%.2f\n", a.TotalCost)
	fmt.Fprintf(&b, "👥 Profiles Analyzed: %d/%d\n", a.Successful, a.Total)
	fmt.Fprintf(&b, "📊 Period: Last %d days\n\n", a.PeriodDays)
	b.WriteString("🌟 TOP 5 SERVICES:\n")
	for i, service := range a.Summary.TopServices {
		fmt.Fprintf(&b, "%d. %s: $%.2f (%.2f%%)\n", i+1, service.Service, service.Cost, service.Percentage)
	}
	if expensive := a.Summary.MostExpensive; expensive != nil {
		fmt.Fprintf(&b, "\n💸 Most Expensive Account: %s ($%.2f)", expensive.Profile, expensive.Cost)
	}

	return strings.TrimRight(b.String(), "\n")
}

func awsDetailedReport(a awsAnalysis) string {
	lines := []string{
		"🏦 AWS COST ANALYSIS REPORT",
		strings.Repeat("=", 50),
		"📅 Analysis Date: " + a.AnalysisDate,
		fmt.Sprintf("📊 Period: Last %d days", a.PeriodDays),
		fmt.Sprintf("👥 Total Profiles: %d", a.Total),
		fmt.Sprintf("✅ Successful: %d", a.Successful),
		fmt.Sprintf("❌ Failed: %d", a.Failed),
		fmt.Sprintf("💰 Total Cost (All Accounts): $%.2f", a.TotalCost),
		"",
	}

	if len(a.Summary.TopServices) > 0 {
		lines = append(lines, "🌟 TOP 5 SERVICES (ALL ACCOUNTS)", strings.Repeat("-", 40))
		for i, service := range a.Summary.TopServices {
			lines = append(lines,
				fmt.Sprintf("%d. %s", i+1, service.Service),
				fmt.Sprintf("   💰 $%.2f (%.2f%%)", service.Cost, service.Percentage),
			)
		}
		lines = append(lines, "")
	}

	if expensive := a.Summary.MostExpensive; expensive != nil {
		lines = append(lines,
			"💸 MOST EXPENSIVE ACCOUNT",
			strings.Repeat("-", 30),
			"Profile: "+expensive.Profile,
			"Account ID: "+expensive.AccountID,
			fmt.Sprintf("Cost: $%.2f", expensive.Cost),
			"",
		)
	}

	lines = append(lines, "📋 INDIVIDUAL PROFILE DETAILS", strings.Repeat("-", 40))
	for _, name := range a.order {
		result := a.Profiles[name]
		if !result.Success {
			lines = append(lines, fmt.Sprintf("❌ %s: %s", name, result.Error), "")
			continue
		}
		lines = append(lines,
			fmt.Sprintf("🔹 %s (Account: %s)", name, result.AccountID),
			"   Region: "+result.Region,
			fmt.Sprintf("   Total Cost: $%.2f", result.TotalCost),
			fmt.Sprintf("   Services: %d", result.TotalServices),
		)
		if len(result.TopServices) > 0 {
			lines = append(lines, "   Top 5 Services:")
			for i, service := range result.TopServices {
				lines = append(lines, fmt.Sprintf("     %d. %s: $%.2f (%.2f%%)", i+1, service.Service, service.Cost, service.Percentage))
			}
		}
		lines = append(lines, "")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func stockReport(quote domain.Quote, f domain.Fundamentals) string {
	changeMarker := "📈"
	if quote.Change() < 0 {
		changeMarker = "📉"
	}

	lines := []string{
		fmt.Sprintf("📈 %s (%s)", quote.Name, quote.Symbol),
		strings.Repeat("=", 50),
		fmt.Sprintf("💰 Current Price: $%.2f", quote.Price),
		fmt.Sprintf("%s Change: $%.2f (%.2f%%)", changeMarker, quote.Change(), quote.ChangePercent()),
		"📊 Volume: " + groupThousands(quote.Volume),
		"",
		"🏢 Listing:",
		"   Exchange: " + orUnknown(quote.Exchange),
		"   Currency: " + orUnknown(quote.Currency),
		fmt.Sprintf("   Day Range: $%.2f - $%.2f", quote.DayLow, quote.DayHigh),
		"",
		"🏢 Company Metrics:",
		"   Sector: " + orNotAvailable(f.Sector),
		"   Industry: " + orNotAvailable(f.Industry),
		"   Market Cap: $" + groupThousands(int64(f.MarketCap)),
		fmt.Sprintf("   P/E Ratio: %.2f", f.PERatio),
		fmt.Sprintf("   Beta: %.2f", f.Beta),
		"",
		"📅 52-Week Range:",
		fmt.Sprintf("   High: $%.2f", quote.FiftyTwoWeekHigh),
		fmt.Sprintf("   Low: $%.2f", quote.FiftyTwoWeekLow),
	}

	return strings.Join(lines, "\n")
}

func snowflakeReport(summary snowflakeSummary) string {
	overall := summary.Overall
	lines := []string{
		"❄️ SNOWFLAKE COST ANALYSIS REPORT",
		strings.Repeat("=", 50),
		"📅 Analysis Date: " + summary.AnalysisDate,
		fmt.Sprintf("📊 Period: Last %d days", summary.PeriodDays),
		fmt.Sprintf("💰 Total Estimated Cost: $%.2f", overall.TotalCost),
		"",
		"💻 COMPUTE COSTS",
		strings.Repeat("-", 30),
		fmt.Sprintf("Credits Used: %.2f", overall.Compute.Credits),
		fmt.Sprintf("Estimated Cost: $%.2f", overall.Compute.Cost),
		fmt.Sprintf("Warehouses Used: %d", overall.Compute.Warehouses),
		fmt.Sprintf("Metering Samples: %d", overall.Compute.Samples),
		"",
		"💾 STORAGE COSTS",
		strings.Repeat("-", 30),
		fmt.Sprintf("Avg Storage: %.2f GB", overall.Storage.StorageGB),
		fmt.Sprintf("Avg Stage: %.2f GB", overall.Storage.StageGB),
		fmt.Sprintf("Avg Failsafe: %.2f GB", overall.Storage.FailsafeGB),
		fmt.Sprintf("Estimated Cost: $%.2f", overall.Storage.Cost),
		"",
		"🏭 TOP 5 WAREHOUSES BY COST",
		strings.Repeat("-", 40),
	}

	for i, warehouse := range summary.Top.Warehouses {
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, warehouse.Name),
			fmt.Sprintf("   💰 Cost: $%.2f (%.2f%%)", warehouse.Cost, warehouse.Percentage),
			fmt.Sprintf("   🔄 Credits: %.2f", warehouse.Credits),
			fmt.Sprintf("   📊 Samples: %d", warehouse.Samples),
			"",
		)
	}

	lines = append(lines,
		"📝 Note: Costs are estimated based on standard Snowflake pricing.",
		"Actual costs may vary based on your contract and region.",
	)

	return strings.Join(lines, "\n")
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}

	digits := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, digit := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	return sign + b.String()
}

func orUnknown(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
