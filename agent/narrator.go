package agent

import (
	"context"
	"fmt"

	"github.com/etnz/rebalance/rebalance"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// newFacilitator creates the orchestrating expert that routes the user's
// request to the registered experts, kept generic so additional experts
// can be added without touching it.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Ask the Narrator expert whenever the user wants to understand why an account's
			rebalance came out the way it did, or what one of its diagnostics means. The
			Narrator can only explain a run that already happened; it never proposes a
			different allocation.
			`}}},
		},
		Library: NewLibrary(experts),
	}
}

// AccountResultLookup is a read-only accessor into the last completed
// engine run, bound to the Narrator's single tool. It can only report a
// status, residual and diagnostics; nothing it returns is fed back into
// the engine.
type AccountResultLookup func(accountKey string) (rebalance.AccountResult, bool)

// NewNarrator builds the Narrator expert: a diagnostics-explaining chat
// whose only tool is lookup, a read-only view of the last run's
// per-account results.
func NewNarrator(lookup AccountResultLookup) *Expert {
	fn := &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "AccountDiagnostics",
			Description: `Looks up the last rebalance run's status, residual and diagnostics for
			one account, identified by "institution/number".`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"account": {
						Type:        genai.TypeString,
						Description: `Account key formatted as "institution/number".`,
					},
				},
				Required: []string{"account"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The account's status, residual and diagnostics.",
			},
		},
		Func: func(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
			key, _ := args["account"].(string)
			result, ok := lookup(key)
			if !ok {
				return &genai.FunctionResponse{
					ID:   id,
					Name: "AccountDiagnostics",
					Response: map[string]any{
						"error": fmt.Sprintf("no rebalance result for account %q", key),
					},
				}
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "AccountDiagnostics",
				Response: map[string]any{
					"output": formatResult(result),
				},
			}
		},
	}

	lib := []Function{fn}
	return &Expert{
		Name: "Narrator",
		Description: `Explains why the rebalance engine proposed what it proposed: reads the last
		run's statuses, residuals and diagnostics and narrates them in plain language. Cannot
		change any proposed value.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the Narrator. You explain, in plain language, why the rebalance engine
			proposed what it proposed for an account: its status, its residual, and each
			diagnostic it raised. You never suggest or imply a different allocation than the
			one already computed; you only explain it.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

func formatResult(r rebalance.AccountResult) string {
	s := fmt.Sprintf("status: %s\nresidual: %s\n", r.Status, r.Residual)
	if len(r.Diagnostics) == 0 {
		return s + "no diagnostics"
	}
	for _, d := range r.Diagnostics {
		s += fmt.Sprintf("- %s\n", d.Error())
	}
	return s
}
