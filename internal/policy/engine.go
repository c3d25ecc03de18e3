// Package policy gates source retrieval with an OPA rego policy.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the policy.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Input is the document the policy sees as `input`.
type Input struct {
	Category string
	OwnerID  string
	Query    string
}

// Decision is the evaluated outcome.
type Decision struct {
	Action string
	Reason string
}

// Allowed reports whether retrieval may proceed. Any action other than
// DecisionAllow refuses it.
func (d Decision) Allowed() bool {
	return d.Action == DecisionAllow
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.source_policy.decision"),
		rego.Module("source_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewEngineFromFile loads the policy at path, or DefaultPolicy when path is empty.
func NewEngineFromFile(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewEngine(ctx, string(content))
}

// Evaluate checks whether a retrieval is allowed. The rule may yield a plain
// string or an object with "decision" and "reason".
func (e *Engine) Evaluate(ctx context.Context, in Input) (Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"category": in.Category,
		"owner_id": in.OwnerID,
		"query":    in.Query,
	}))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Action: DecisionAllow, Reason: "default"}, nil
	}

	switch v := results[0].Expressions[0].Value.(type) {
	case string:
		return Decision{Action: v}, nil
	case map[string]interface{}:
		d := Decision{}
		d.Action, _ = v["decision"].(string)
		d.Reason, _ = v["reason"].(string)
		if d.Action == "" {
			return Decision{}, fmt.Errorf("policy object has no decision")
		}
		return d, nil
	default:
		return Decision{}, fmt.Errorf("unexpected policy result type %T", v)
	}
}

// DefaultPolicy blocks requests for credentials and personal identifiers.
const DefaultPolicy = `
package source_policy

default decision = "allow"

sensitive_terms = {"password", "passwd", "aadhaar", "pan number", "bank account", "cvv"}

decision = {"decision": "block", "reason": "sensitive data request"} {
	some term
	sensitive_terms[term]
	contains(lower(input.query), term)
}
`
