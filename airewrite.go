// airewrite.go — optional English-rewrite front end (spec.md §4.6):
// boundary-only, pure text-to-text, never required by the core pipeline.
//
// Grounded on the teacher's `http` builtin (std_io_net.go): build an
// *http.Request, set a timeout-bound *http.Client, read the body with
// io.ReadAll, and fail closed (a literal or malformed response becomes a
// reported error rather than a silently-accepted value) — the same
// contract as the teacher's oracle executor (oracles.go's execOracle).
package vyra

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// AIRewriteConfig holds the five environment variables spec.md §6 defines
// for the optional rewrite front end.
type AIRewriteConfig struct {
	Endpoint string
	Model    string
	APIKey   string
	Provider string
	Timeout  time.Duration
}

// LoadAIRewriteConfig reads VYRA_AI_ENDPOINT, VYRA_AI_MODEL,
// VYRA_AI_API_KEY, VYRA_AI_PROVIDER, and VYRA_AI_TIMEOUT_SECONDS (default
// 30). Returns an error if the required endpoint/model are missing.
func LoadAIRewriteConfig() (AIRewriteConfig, error) {
	endpoint, ok := os.LookupEnv("VYRA_AI_ENDPOINT")
	if !ok || endpoint == "" {
		return AIRewriteConfig{}, &AIRewriteError{Msg: "VYRA_AI_ENDPOINT is not set"}
	}
	model, ok := os.LookupEnv("VYRA_AI_MODEL")
	if !ok || model == "" {
		return AIRewriteConfig{}, &AIRewriteError{Msg: "VYRA_AI_MODEL is not set"}
	}
	provider := os.Getenv("VYRA_AI_PROVIDER")
	if provider == "" {
		provider = "openai_compatible"
	}
	timeout := 30 * time.Second
	if s := os.Getenv("VYRA_AI_TIMEOUT_SECONDS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return AIRewriteConfig{}, &AIRewriteError{Msg: "VYRA_AI_TIMEOUT_SECONDS must be a positive integer"}
		}
		timeout = time.Duration(n) * time.Second
	}
	return AIRewriteConfig{
		Endpoint: endpoint,
		Model:    model,
		APIKey:   os.Getenv("VYRA_AI_API_KEY"),
		Provider: provider,
		Timeout:  timeout,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

const rewriteSystemPrompt = `You rewrite free-form English programs into canonical Vyra sentences (Set, Display, If/Otherwise, While, Repeat, For each, Create function, Call, Return). Output only the rewritten source, nothing else.`

// Rewrite POSTs src to the configured chat-completions endpoint and returns
// the rewritten source. Any failure (network, non-2xx, malformed response,
// missing configuration) is returned as *AIRewriteError.
func Rewrite(cfg AIRewriteConfig, src string) (string, error) {
	if cfg.Provider != "openai_compatible" {
		return "", &AIRewriteError{Msg: "unsupported VYRA_AI_PROVIDER: " + cfg.Provider}
	}

	reqBody := chatRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: rewriteSystemPrompt},
			{Role: "user", Content: src},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &AIRewriteError{Msg: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequest(http.MethodPost, cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &AIRewriteError{Msg: "failed to build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", &AIRewriteError{Msg: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AIRewriteError{Msg: "failed to read response body", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AIRewriteError{Msg: fmt.Sprintf("endpoint returned status %d", resp.StatusCode)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &AIRewriteError{Msg: "response was not valid JSON", Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &AIRewriteError{Msg: "response contained no choices"}
	}
	rewritten := parsed.Choices[0].Message.Content
	if rewritten == "" {
		return "", &AIRewriteError{Msg: "response contained empty content"}
	}
	return rewritten, nil
}
