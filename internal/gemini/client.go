// Package gemini は校正・翻訳に使うGemini APIクライアントです。
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel は既定の生成モデルです。
const DefaultModel = "gemini-2.5-pro"

// Client はモデル名を固定したGeminiクライアントのラッパです。
type Client struct {
	client    *genai.Client
	modelName string
}

// NewClient はAPIキーでクライアントを生成します。modelName が空なら
// DefaultModel を使います。
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Client{client: cl, modelName: modelName}, nil
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Generate はプロンプトを送り、候補のテキスト部分を連結して返します。
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	m := c.client.GenerativeModel(c.modelName)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// Proofread は1チャンク分のOCR校正を行います。応答から校正済み本文だけを
// 取り出して返します。取り出せなかった場合は空文字列です。
func (c *Client) Proofread(ctx context.Context, chunk, language string) (string, error) {
	raw, err := c.Generate(ctx, proofreadPrompt(chunk, language))
	if err != nil {
		return "", err
	}
	return ExtractCorrectedText(raw), nil
}

// Translate は1チャンク分の翻訳を行います。送信前にサンスクリット書式
// マーカーを正規化します。
func (c *Client) Translate(ctx context.Context, chunk, targetLang string) (string, error) {
	cleaned := CleanSanskritFormatting(chunk)
	raw, err := c.Generate(ctx, translatePrompt(cleaned, targetLang))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}
