package domain

import "fmt"

type ResultKind string

const (
	ResultStructured ResultKind = "structured"
	ResultText       ResultKind = "text"
	ResultError      ResultKind = "error"
)

// Result is the normalized outcome of one capability call. Exactly one of
// Data, Text or Message is meaningful, selected by Kind.
type Result struct {
	Kind    ResultKind
	Data    map[string]any
	Text    string
	Message string
}

func StructuredResult(data map[string]any) Result {
	if data == nil {
		data = map[string]any{}
	}

	return Result{Kind: ResultStructured, Data: data}
}

func TextResult(text string) Result {
	return Result{Kind: ResultText, Text: text}
}

func ErrorResult(message string) Result {
	return Result{Kind: ResultError, Message: message}
}

// ErrorMessage reports the failure carried by r, either as an Error result or
// as a structured payload with an "error" field.
func (r Result) ErrorMessage() (string, bool) {
	switch r.Kind {
	case ResultError:
		return r.Message, true
	case ResultStructured:
		value, ok := r.Data["error"]
		if !ok || value == nil {
			return "", false
		}
		return fmt.Sprint(value), true
	default:
		return "", false
	}
}

// Succeeded reports whether a structured payload carries success == true.
func (r Result) Succeeded() bool {
	if r.Kind != ResultStructured {
		return false
	}

	ok, _ := r.Data["success"].(bool)
	return ok
}

// TextEnvelope is a wrapped text item as returned by the tool transport.
type TextEnvelope struct {
	Type string
	Text string
}

type ToolInvocation struct {
	CapabilityName string
	Parameters     map[string]any
	Result         Result
}
