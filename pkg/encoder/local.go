package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/pkg/models"
)

// LocalEncoder calls a local embedding service wrapping a sentence-transformer
// model. The service embeds a batch of texts in one request.
type LocalEncoder struct {
	model     string
	serverURL string
	timeout   time.Duration
}

func NewLocalEncoder(cfg *config.Config) *LocalEncoder {
	return &LocalEncoder{
		model:     cfg.Model.Name,
		serverURL: cfg.Encoder.Local.ServerURL,
		timeout:   time.Duration(cfg.Encoder.Local.TimeoutSeconds) * time.Second,
	}
}

func (e *LocalEncoder) ModelName() string {
	return e.model
}

type localEmbedRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

type localEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedTexts embeds the given texts
func (e *LocalEncoder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	url := e.serverURL + "/embeddings"

	jsonBody, err := json.Marshal(localEmbedRequest{Model: e.model, Texts: texts})
	if err != nil {
		log.Error("Error marshaling request body:", err)
		return nil, err
	}

	var bodyBytes []byte
	// Retry POST request to the embedding service 3 times with 1 second delay.
	err = retry.Do(
		func() error {
			var err error
			bodyBytes, err = e.makeEmbedRequest(ctx, url, jsonBody)
			if err != nil {
				return err
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
	)
	if err != nil {
		return nil, models.NewEncoderError("embedding service request failed", err)
	}

	var resp localEmbedResponse
	err = json.Unmarshal(bodyBytes, &resp)
	if err != nil {
		log.Errorf("Error unmarshaling response body: %s", err)
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, models.NewEncoderError(
			fmt.Sprintf(
				"embedding service returned %d vectors for %d texts",
				len(resp.Embeddings),
				len(texts),
			),
			nil,
		)
	}

	return resp.Embeddings, nil
}

func (e *LocalEncoder) makeEmbedRequest(
	ctx context.Context,
	url string,
	jsonBody []byte,
) ([]byte, error) {
	httpClient := &http.Client{Timeout: e.timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		log.Error("Error making POST request:", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorString := fmt.Sprintf(
			"Error making POST request: %d - %s",
			resp.StatusCode,
			resp.Status,
		)
		log.Error(errorString)
		return nil, fmt.Errorf(errorString)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Error reading response body:", err)
		return nil, err
	}

	return bodyBytes, nil
}
