package domain

import "time"

type WeatherReport struct {
	City        string
	Temperature float64
	FeelsLike   float64
	Conditions  string
	Description string
	Humidity    int
	WindSpeed   float64
	Units       string
	Mock        bool
}

type SearchHit struct {
	Title     string
	URL       string
	Snippet   string
	Source    string
	Relevance float64
}

type Quote struct {
	Symbol           string
	Name             string
	Currency         string
	Exchange         string
	Price            float64
	PreviousClose    float64
	Volume           int64
	DayHigh          float64
	DayLow           float64
	FiftyTwoWeekHigh float64
	FiftyTwoWeekLow  float64
	Time             time.Time
}

func (q Quote) Change() float64 {
	return q.Price - q.PreviousClose
}

// ChangePercent is zero when the previous close is unknown.
func (q Quote) ChangePercent() float64 {
	if q.PreviousClose == 0 {
		return 0
	}

	return q.Change() / q.PreviousClose * 100
}

// Fundamentals are company figures that do not move with every trade. Zero
// means the figure was not reported.
type Fundamentals struct {
	Sector        string
	Industry      string
	MarketCap     float64
	PERatio       float64
	EPS           float64
	DividendYield float64
	Beta          float64
	AvgVolume     int64
}

// Bar is one OHLCV sample of a price history.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

type CloudProfile struct {
	Name           string
	Region         string
	Output         string
	Source         string
	HasCredentials bool
	AccessKeyHint  string
	RoleARN        string
	SourceProfile  string
}

type ServiceCost struct {
	Service string
	Cost    float64
}

// CloudCostReport holds the costs of one profile, services sorted by cost
// descending.
type CloudCostReport struct {
	Profile   string
	AccountID string
	Region    string
	Start     time.Time
	End       time.Time
	Currency  string
	Services  []ServiceCost
}

func (r CloudCostReport) Total() float64 {
	total := 0.0
	for _, service := range r.Services {
		total += service.Cost
	}

	return total
}

type WarehouseCredentials struct {
	Account       string
	User          string
	Password      string
	Role          string
	Warehouse     string
	Authenticator string
}

type ComputeUsage struct {
	Credits    float64
	Warehouses int64
	Samples    int64
}

type StorageUsage struct {
	StorageGB  float64
	StageGB    float64
	FailsafeGB float64
}

func (s StorageUsage) TotalGB() float64 {
	return s.StorageGB + s.StageGB + s.FailsafeGB
}

type WarehouseUsage struct {
	Name       string
	Credits    float64
	Samples    int64
	AvgCredits float64
	MaxCredits float64
	FirstUsage time.Time
	LastUsage  time.Time
}
