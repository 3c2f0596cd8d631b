// Package vision はGoogle Cloud Vision APIによるページ画像のOCRを提供します。
package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	visionv1 "google.golang.org/api/vision/v1"

	"github.com/Aman-2203/ShabdSetu/internal/transform"
)

// gRPCステータスコード（Vision APIのレスポンス内エラーが使う体系）。
const (
	codeDeadlineExceeded  = 4
	codeResourceExhausted = 8
)

// Client はテキスト検出専用のVision APIラッパです。
type Client struct {
	service *visionv1.Service
}

// NewClient はAPIキーでVisionクライアントを生成します。
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vision api key is required")
	}
	svc, err := visionv1.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}
	return &Client{service: svc}, nil
}

// DetectText は画像1枚からテキストを抽出します。テキストが見つからない
// ページは空文字列を返します（エラーではありません）。
func (c *Client) DetectText(ctx context.Context, image []byte) (string, error) {
	req := &visionv1.BatchAnnotateImagesRequest{
		Requests: []*visionv1.AnnotateImageRequest{{
			Image: &visionv1.Image{
				Content: base64.StdEncoding.EncodeToString(image),
			},
			Features: []*visionv1.Feature{{
				Type:       "TEXT_DETECTION",
				MaxResults: 1,
			}},
		}},
	}

	resp, err := c.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", fmt.Errorf("vision returned no responses")
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return "", annotationError(r.Error)
	}
	if len(r.TextAnnotations) == 0 {
		return "", nil
	}
	return r.TextAnnotations[0].Description, nil
}

// annotationError はレスポンス内エラーを種別付きエラーへ写像します。
// HTTP層では200で返るため、ここで分類しないと再試行戦略が選べません。
func annotationError(status *visionv1.Status) error {
	err := fmt.Errorf("vision annotation failed: %s (code %d)", status.Message, status.Code)
	switch status.Code {
	case codeResourceExhausted:
		return transform.NewError(transform.KindRateLimit, "ocr", err)
	case codeDeadlineExceeded:
		return transform.NewError(transform.KindTimeout, "ocr", err)
	default:
		return transform.NewError(transform.KindTransient, "ocr", err)
	}
}
