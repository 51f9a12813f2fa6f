package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tax-agent/domain"
)

const (
	DefaultAdvisorURL   = "https://api.openai.com/v1/chat/completions"
	DefaultAdvisorModel = "gpt-4o-mini"

	advisorMaxTokens    = 300
	advisorSystemPrompt = "You are a tax planning assistant for salaried individuals in India. " +
		"You explain investment plans under the old and new income tax regimes in plain English, " +
		"quote amounts in rupees, and never invent deductions that are not in the plan."
)

// AdvisorService narrates investment plans through an OpenAI compatible chat
// completions endpoint. Without an API key it only produces canned text.
type AdvisorService struct {
	apiKey     string
	apiURL     string
	model      string
	enabled    bool
	httpClient *http.Client
}

type ChatRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

func NewAdvisorService(apiKey, apiURL, model string, timeout time.Duration) *AdvisorService {
	if apiURL == "" {
		apiURL = DefaultAdvisorURL
	}
	if model == "" {
		model = DefaultAdvisorModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &AdvisorService{
		apiKey:  apiKey,
		apiURL:  apiURL,
		model:   model,
		enabled: apiKey != "",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ExplainPlan returns a short explanation of plan. It falls back to a fixed
// template when the advisor is disabled or the call fails.
func (s *AdvisorService) ExplainPlan(
	ctx context.Context,
	input domain.PlanInput,
	plan domain.InvestmentPlanResult,
) string {
	if !s.enabled {
		return s.fallbackPlanExplanation(input, plan)
	}

	prompt := fmt.Sprintf(`Explain this tax saving plan to the taxpayer.

PROFILE:
- Gross annual income: Rs %.0f
- Existing deductions: Rs %.0f
- Tax regime: %s
- Budget available for tax saving: Rs %.0f

SUGGESTED ALLOCATION:
%s
- Unallocated budget: Rs %.0f
- Expected tax saved: Rs %.0f

INSTRUCTIONS:
1. Explain in 3-4 sentences why the money is split this way.
2. Mention the expected tax saved.
3. If budget is left over, say that the regime offers no further deductions for it.`,
		input.Income, input.BaseDeductions, input.Regime, input.Budget,
		formatSuggestions(plan.Suggestions),
		plan.RemainingBudget, plan.ExpectedTaxSaved)

	explanation, err := s.callLLM(ctx, prompt)
	if err != nil {
		log.Warnf("advisor call failed, using fallback explanation: %v", err)
		return s.fallbackPlanExplanation(input, plan)
	}

	return explanation
}

func (s *AdvisorService) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := ChatRequest{
		Model: s.model,
		Messages: []ChatMessage{
			{Role: "system", Content: advisorSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: advisorMaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("advisor API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", err
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from advisor")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func formatSuggestions(suggestions []domain.Suggestion) string {
	if len(suggestions) == 0 {
		return "- nothing"
	}
	var b strings.Builder
	for _, sg := range suggestions {
		fmt.Fprintf(&b, "- %s: Rs %.0f\n", sg.Code, sg.Suggested)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *AdvisorService) fallbackPlanExplanation(
	input domain.PlanInput,
	plan domain.InvestmentPlanResult,
) string {
	if len(plan.Suggestions) == 0 {
		return fmt.Sprintf("No deduction under the %s regime can absorb a budget of Rs %.0f, so no investment is suggested.",
			input.Regime, input.Budget)
	}

	codes := make([]string, len(plan.Suggestions))
	for i, sg := range plan.Suggestions {
		codes[i] = sg.Code
	}

	text := fmt.Sprintf("Investing Rs %.0f across %s under the %s regime is expected to save Rs %.0f in tax.",
		plan.TotalSuggested, strings.Join(codes, ", "), input.Regime, plan.ExpectedTaxSaved)
	if plan.RemainingBudget > 0 {
		text += fmt.Sprintf(" The remaining Rs %.0f has no eligible deduction left.", plan.RemainingBudget)
	}
	return text
}
