package facematch

import (
	"context"
	"time"

	"verigate/internal/verification/models"
)

// MockDetectionClient scripts detection responses per image filename, falling
// back to a confident frontal face. Used for local wiring and tests.
type MockDetectionClient struct {
	Latency time.Duration

	// ByFilename scripts a detection for a specific image.
	ByFilename map[string]*Detection
	Err        error
}

func (c MockDetectionClient) Detect(_ context.Context, img models.Image) (*Detection, error) {
	time.Sleep(c.Latency)
	if c.Err != nil {
		return nil, c.Err
	}
	if d, ok := c.ByFilename[img.Filename]; ok {
		return d, nil
	}
	return &Detection{
		FaceFound:  true,
		Confidence: 0.93,
		PoseYaw:    2,
		PoseRoll:   1,
		Sharpness:  0.85,
	}, nil
}
