package domain

type Intent string

const (
	IntentSnowflake Intent = "snowflake"
	IntentAWS       Intent = "aws"
	IntentStock     Intent = "stock"
	IntentCrypto    Intent = "crypto"
	IntentWeather   Intent = "weather"
	IntentMath      Intent = "math"
	IntentSearch    Intent = "search"
)

type Action string

const (
	ActionCostAnalysis   Action = "cost_analysis"
	ActionGenerateReport Action = "generate_report"
	ActionConnect        Action = "connect"
	ActionList           Action = "list"
)

// QuestionAnalysis is built per question and discarded once it is answered.
// Intents and Actions hold no duplicates and keep rule declaration order.
type QuestionAnalysis struct {
	Intents     []Intent
	Actions     []Action
	RawQuestion string
}

func (a QuestionAnalysis) HasIntent(intent Intent) bool {
	for _, candidate := range a.Intents {
		if candidate == intent {
			return true
		}
	}

	return false
}

func (a QuestionAnalysis) HasAction(action Action) bool {
	for _, candidate := range a.Actions {
		if candidate == action {
			return true
		}
	}

	return false
}

func (a QuestionAnalysis) Empty() bool {
	return len(a.Intents) == 0
}
