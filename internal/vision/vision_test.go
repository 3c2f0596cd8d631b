package vision

import (
	"testing"

	visionv1 "google.golang.org/api/vision/v1"

	"github.com/Aman-2203/ShabdSetu/internal/transform"
)

func TestAnnotationErrorKinds(t *testing.T) {
	cases := []struct {
		code int64
		want transform.Kind
	}{
		{codeResourceExhausted, transform.KindRateLimit},
		{codeDeadlineExceeded, transform.KindTimeout},
		{13, transform.KindTransient}, // INTERNAL
	}
	for _, tc := range cases {
		err := annotationError(&visionv1.Status{Code: tc.code, Message: "boom"})
		if got := transform.KindOf(err); got != tc.want {
			t.Errorf("code %d classified as %s, want %s", tc.code, got, tc.want)
		}
	}
}
