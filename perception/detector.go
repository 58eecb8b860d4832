// Package perception wraps the object detector used to check camera frames
// for the object a user is looking for.
package perception

import (
	"context"
	"strings"
)

// Detector returns the labels of the objects visible in an image addressed by
// path or URL.
type Detector interface {
	Detect(ctx context.Context, image string) ([]string, error)
}

// ImageDetector is implemented by detectors that accept raw image bytes, for
// example frames stored as session artifacts.
type ImageDetector interface {
	DetectImage(ctx context.Context, data []byte) ([]string, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, image string) ([]string, error)

// Detect implements Detector.
func (f DetectorFunc) Detect(ctx context.Context, image string) ([]string, error) {
	return f(ctx, image)
}

// Contains reports whether label is among labels, ignoring case and
// surrounding whitespace.
func Contains(labels []string, label string) bool {
	want := strings.TrimSpace(label)
	for _, l := range labels {
		if strings.EqualFold(strings.TrimSpace(l), want) {
			return true
		}
	}
	return false
}
