package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkoukk/tiktoken-go"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/pkg/models"
)

const OpenAIAPIKeyNotSetError = "MSCOPE_OPENAI_API_KEY is not set" //nolint:gosec

const (
	MaxOpenAIAPIRequestAttempts = 5
	OpenAIAPITimeout            = 90 * time.Second
	// The embeddings endpoint accepts at most this many inputs per request.
	maxInputsPerRequest = 2048
)

// OpenAIEncoder embeds texts through an OpenAI-compatible /embeddings API.
// Batches are split so each request stays under the configured token budget,
// counted with tiktoken when the BPE asset is available.
type OpenAIEncoder struct {
	model            string
	endpoint         string
	apiKey           string
	orgID            string
	maxRequestTokens int
	client           *retryablehttp.Client
	tkm              *tiktoken.Tiktoken
}

func NewOpenAIEncoder(cfg *config.Config) (*OpenAIEncoder, error) {
	if cfg.Encoder.OpenAI.APIKey == "" {
		return nil, models.NewEncoderError(OpenAIAPIKeyNotSetError, nil)
	}

	// Initialize the Tiktoken client
	encoding := "cl100k_base"
	tkm, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		log.Warnf("tiktoken encoding unavailable, using character estimates: %v", err)
		tkm = nil
	}

	return &OpenAIEncoder{
		model:            cfg.Model.Name,
		endpoint:         cfg.Encoder.OpenAI.Endpoint,
		apiKey:           cfg.Encoder.OpenAI.APIKey,
		orgID:            cfg.Encoder.OpenAI.OrgID,
		maxRequestTokens: cfg.Encoder.OpenAI.MaxRequestTokens,
		client:           NewRetryableHTTPClient(MaxOpenAIAPIRequestAttempts, OpenAIAPITimeout),
		tkm:              tkm,
	}, nil
}

func (e *OpenAIEncoder) ModelName() string {
	return e.model
}

// GetTokenCount returns the number of tokens in the text
func (e *OpenAIEncoder) GetTokenCount(text string) int {
	if e.tkm == nil {
		return len(text)/4 + 1
	}
	return len(e.tkm.Encode(text, nil, nil))
}

type openAIEmbedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openAIEmbedResponse struct {
	Data  []openAIEmbedData `json:"data"`
	Error *openAIAPIError   `json:"error,omitempty"`
}

type openAIEmbedData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type openAIAPIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// EmbedTexts embeds the given texts
func (e *OpenAIEncoder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))

	start := 0
	batchTokens := 0
	for i, text := range texts {
		tokens := e.GetTokenCount(text)
		overBudget := batchTokens+tokens > e.maxRequestTokens || i-start >= maxInputsPerRequest
		if i > start && overBudget {
			embeddings, err := e.embedBatch(ctx, texts[start:i])
			if err != nil {
				return nil, err
			}
			out = append(out, embeddings...)
			start = i
			batchTokens = 0
		}
		batchTokens += tokens
	}

	embeddings, err := e.embedBatch(ctx, texts[start:])
	if err != nil {
		return nil, err
	}
	out = append(out, embeddings...)

	return out, nil
}

func (e *OpenAIEncoder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	jsonBody, err := json.Marshal(openAIEmbedRequest{Input: texts, Model: e.model})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodPost,
		e.endpoint+"/embeddings",
		bytes.NewBuffer(jsonBody),
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	if e.orgID != "" {
		req.Header.Set("OpenAI-Organization", e.orgID)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, models.NewEncoderError("embeddings request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewEncoderError(
			fmt.Sprintf("embeddings API returned %d: %s", resp.StatusCode, preview(body)),
			nil,
		)
	}

	var embResp openAIEmbedResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, models.NewEncoderError(
			fmt.Sprintf("parsing embeddings response failed (body: %s)", preview(body)),
			err,
		)
	}

	if embResp.Error != nil {
		return nil, models.NewEncoderError(embResp.Error.Message, nil)
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index >= 0 && data.Index < len(embeddings) {
			embeddings[data.Index] = data.Embedding
		}
	}
	for i, embedding := range embeddings {
		if len(embedding) == 0 {
			return nil, models.NewEncoderError(
				fmt.Sprintf("embeddings response is missing vector for input %d", i),
				nil,
			)
		}
	}

	return embeddings, nil
}

func preview(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
