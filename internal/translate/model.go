package translate

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

// defaultAPIBase is the Mistral API base. The chat side of the API is
// OpenAI compatible under /v1.
const defaultAPIBase = "https://api.mistral.ai"

// NewMistralChatModel builds a chat model backed by the Mistral chat
// completions endpoint. Empty baseURL and model fall back to the
// defaults, a non-positive timeout leaves the client's own default.
func NewMistralChatModel(ctx context.Context, apiKey, baseURL, modelName string, timeout time.Duration) (ChatModel, error) {
	if apiKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "API key is not set", nil)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if baseURL == "" {
		baseURL = defaultAPIBase
	}

	cfg := &openai.ChatModelConfig{
		Model:   modelName,
		APIKey:  apiKey,
		BaseURL: chatBaseURL(baseURL),
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}

	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create chat model", err)
	}

	logger.Debug("chat model created",
		logger.String("model", modelName),
		logger.String("baseURL", cfg.BaseURL))
	return chatModel, nil
}

// chatBaseURL ensures the base URL carries the /v1 prefix the
// OpenAI-compatible client expects.
func chatBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(baseURL, "/v1") {
		return baseURL
	}
	return baseURL + "/v1"
}
