package domain

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategorySnowflake Category = "snowflake"
	CategoryAWS       Category = "aws"
	CategoryFinance   Category = "finance"
	CategoryWeather   Category = "weather"
	CategoryMath      Category = "math"
	CategorySearch    Category = "search"
	CategoryUtility   Category = "utility"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategorySnowflake,
	CategoryAWS,
	CategoryFinance,
	CategoryWeather,
	CategoryMath,
	CategorySearch,
	CategoryUtility,
}

func (c Category) Label() string {
	switch c {
	case CategorySnowflake:
		return "Snowflake"
	case CategoryAWS:
		return "AWS"
	case CategoryFinance:
		return "Stocks & Crypto"
	case CategoryWeather:
		return "Weather"
	case CategoryMath:
		return "Math"
	case CategorySearch:
		return "Search"
	case CategoryUtility:
		return "Utility"
	default:
		return string(c)
	}
}

type CapabilityDescriptor struct {
	Name            string
	Description     string
	Category        Category
	ParameterSchema map[string]any
}

func (d CapabilityDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrCapabilityNameRequired
	}
	if d.Category == "" {
		return fmt.Errorf("capability %q: category is required", d.Name)
	}

	return nil
}

// CategoryForName infers the category of a capability from its name. Live
// servers advertise names and schemas only, so discovery relies on this.
// IsConnectCapability reports whether name opens an external session. These
// calls can wait on a person, for example a browser SSO login.
func IsConnectCapability(name string) bool {
	return strings.HasPrefix(name, "connect_")
}

func CategoryForName(name string) Category {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "snowflake"):
		return CategorySnowflake
	case strings.Contains(lower, "aws"):
		return CategoryAWS
	case strings.Contains(lower, "stock"),
		strings.Contains(lower, "market"),
		strings.Contains(lower, "crypto"),
		strings.Contains(lower, "portfolio"),
		strings.Contains(lower, "technical"):
		return CategoryFinance
	case strings.Contains(lower, "weather"):
		return CategoryWeather
	case strings.Contains(lower, "calculat"):
		return CategoryMath
	case strings.Contains(lower, "search"):
		return CategorySearch
	default:
		return CategoryUtility
	}
}
