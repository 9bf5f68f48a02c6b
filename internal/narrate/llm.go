package narrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fintone/internal/core"
	"fintone/internal/log"
)

const systemPrompt = "You are a financial data assistant. Only use data provided in the ledger records. Never hallucinate."

const promptTemplate = `Analyze the ledger records below and answer the user's question.

CRITICAL RULES:
1. ONLY use data from the records provided below
2. DO NOT make up or hallucinate any data
3. If information is not in the records, say "No data available"
4. Be accurate and precise with numbers
5. Format the response in a clear, readable way

LEDGER RECORDS:
%s
USER QUESTION: %s

Generate a clear, accurate summary based ONLY on the records above:`

// LLMConfig configures the chat-completions narrator. Endpoint is the base
// URL of any OpenAI-compatible server (Ollama, Groq, OpenAI).
type LLMConfig struct {
	Endpoint    string
	Model       string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

// LLM phrases summaries through a chat-completions endpoint, falling back
// to the template narrator when the endpoint fails. Answers therefore
// degrade to deterministic text instead of erroring.
type LLM struct {
	cfg      LLMConfig
	client   *http.Client
	fallback Template
	logger   *log.Logger
}

func NewLLM(cfg LLMConfig, logger *log.Logger) *LLM {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LLM{
		cfg:      cfg,
		client:   &http.Client{Timeout: timeout},
		fallback: NewTemplate(),
		logger:   logger.WithComponent(log.ComponentNarrate),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (l *LLM) Summarize(ctx context.Context, records []core.Record, question string) (string, error) {
	if len(records) == 0 {
		return "No records found.", nil
	}
	text, err := l.complete(ctx, records, question)
	if err != nil {
		l.logger.WarnContext(ctx, "llm narration failed, using template", log.FieldError, err.Error())
		return l.fallback.Summarize(ctx, records, question)
	}
	return text, nil
}

func (l *LLM) complete(ctx context.Context, records []core.Record, question string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, recordContext(records), question)
	body, err := json.Marshal(chatRequest{
		Model: l.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: l.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := strings.TrimSuffix(l.cfg.Endpoint, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if l.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.cfg.APIKey)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("chat endpoint returned no content")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// recordContext renders the records as the numbered block the prompt embeds.
func recordContext(records []core.Record) string {
	var b strings.Builder
	for i, r := range records {
		fmt.Fprintf(&b, "Record %d:\n", i+1)
		fmt.Fprintf(&b, "  Type: %s\n", r.Type)
		fmt.Fprintf(&b, "  Amount: %s\n", core.FormatUSD(r.Amount))
		fmt.Fprintf(&b, "  Date: %s\n", r.Date.ISO())
		fmt.Fprintf(&b, "  Details: %s\n\n", r.Details)
	}
	return b.String()
}
