package agentrelay

import (
	"context"
	"errors"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentrelay/config"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/model/anthropic"
	"github.com/hupe1980/agentrelay/model/gemini"
	"github.com/hupe1980/agentrelay/model/openai"
)

// errUnknownProvider is wrapped in the ConfigError returned by NewModel.
var errUnknownProvider = errors.New("unknown model provider")

// NewModel builds the reply service named by mc.Provider. Empty names and
// keys fall back to the adapter defaults and the SDK environment variables.
func NewModel(ctx context.Context, mc config.ModelConfig) (model.Model, error) {
	switch mc.Provider {
	case "gemini":
		m, err := gemini.NewModel(ctx, func(o *gemini.Options) {
			if mc.Name != "" {
				o.Model = mc.Name
			}
			o.Temperature = float32(mc.Temperature)
			o.MaxOutputTokens = int32(mc.MaxTokens)
			o.APIKey = mc.APIKey
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini model: %w", err)
		}
		return m, nil
	case "openai":
		var reqOpts []option.RequestOption
		if mc.APIKey != "" {
			reqOpts = append(reqOpts, option.WithAPIKey(mc.APIKey))
		}
		client := openaisdk.NewClient(reqOpts...)
		return openai.NewModelFromClient(&client, func(o *openai.Options) {
			if mc.Name != "" {
				o.Model = mc.Name
			}
			o.Temperature = mc.Temperature
			o.MaxCompletionTokens = int64(mc.MaxTokens)
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if mc.Name != "" {
				o.Model = anthropicsdk.Model(mc.Name)
			}
			o.Temperature = mc.Temperature
			o.MaxTokens = int64(mc.MaxTokens)
			o.APIKey = mc.APIKey
		}), nil
	case "mock":
		name := mc.Name
		if name == "" {
			name = "mock"
		}
		return model.NewMockModel(name, "mock"), nil
	default:
		return nil, &core.ConfigError{Op: "new model", Name: mc.Provider, Err: errUnknownProvider}
	}
}

// NewLogger builds the configured logger: zap when lc.Format is "zap",
// otherwise slog with a json or text handler.
func NewLogger(lc config.LogConfig) (logging.Logger, error) {
	level, err := logging.ParseLevel(lc.Level)
	if err != nil {
		return nil, &core.ConfigError{Op: "new logger", Err: err}
	}
	if lc.Format == "zap" {
		zl, err := logging.NewZapLogger(level, false)
		if err != nil {
			return nil, fmt.Errorf("create zap logger: %w", err)
		}
		return zl, nil
	}
	return logging.NewSlogLogger(level, lc.Format, lc.AddSource).WithComponent("agentrelay"), nil
}
