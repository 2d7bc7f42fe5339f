// Package facematch implements the face comparison adapter. Detection runs
// against both images concurrently; comparison and liveness estimation are
// local arithmetic over the detection signals.
package facematch

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"verigate/internal/verification/models"
)

// Detection is the per-image metadata returned by the detection service.
type Detection struct {
	FaceFound  bool
	Confidence float64 // detector confidence in the face crop, 0-1
	PoseYaw    float64 // degrees off frontal
	PoseRoll   float64 // degrees off level
	Sharpness  float64 // 0-1, blur estimate of the face region
}

// DetectionClient is the external face detection service boundary.
type DetectionClient interface {
	Detect(ctx context.Context, img models.Image) (*Detection, error)
}

// Thresholds are the verdict cutoffs on match confidence.
type Thresholds struct {
	Match   float64 // >= Match -> "match"
	NoMatch float64 // < NoMatch -> "no_match"
}

// Adapter compares a document photo against a live photo.
type Adapter struct {
	client     DetectionClient
	thresholds Thresholds
	logger     *slog.Logger
}

func NewAdapter(client DetectionClient, thresholds Thresholds, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, thresholds: thresholds, logger: logger}
}

// Compare detects faces in both images concurrently, then derives a match
// confidence from the detection and pose signals and a liveness score from
// the live photo's sharpness. A missing face in either image short-circuits
// to an inconclusive result rather than attempting a comparison.
func (a *Adapter) Compare(ctx context.Context, doc, live models.Image) (*models.FaceMatchResult, error) {
	var docFace, liveFace *Detection

	// The two detections are independent reads; issue them together and
	// join before any comparison happens.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := a.client.Detect(gctx, doc)
		if err != nil {
			return err
		}
		docFace = d
		return nil
	})
	g.Go(func() error {
		d, err := a.client.Detect(gctx, live)
		if err != nil {
			return err
		}
		liveFace = d
		return nil
	})
	if err := g.Wait(); err != nil {
		// A failed detection call is a detection failure, not a hard error.
		if a.logger != nil {
			a.logger.WarnContext(ctx, "face detection call failed", "error", err)
		}
		return inconclusive(false, false, "detection_service_failed"), nil
	}

	docFound := docFace != nil && docFace.FaceFound
	liveFound := liveFace != nil && liveFace.FaceFound
	if !docFound || !liveFound {
		flag := "no_face_in_document_photo"
		if docFound {
			flag = "no_face_in_live_photo"
		}
		return inconclusive(docFound, liveFound, flag), nil
	}

	matchConfidence := similarity(docFace, liveFace)
	liveness := clamp01(liveFace.Sharpness)

	verdict := models.FaceInconclusive
	switch {
	case matchConfidence >= a.thresholds.Match:
		verdict = models.FaceMatch
	case matchConfidence < a.thresholds.NoMatch:
		verdict = models.FaceNoMatch
	}

	var flags []string
	if liveness < 0.5 {
		flags = append(flags, "low_liveness_signal")
	}

	return &models.FaceMatchResult{
		Provider:           "facedetect",
		MatchConfidence:    matchConfidence,
		LivenessScore:      liveness,
		DocumentFaceFound:  true,
		LivePhotoFaceFound: true,
		Verdict:            verdict,
		Flags:              flags,
	}, nil
}

// similarity estimates match confidence from the two faces' detector
// confidence and pose agreement. Pose disagreement discounts the score
// because off-angle captures inflate false matches.
func similarity(doc, live *Detection) float64 {
	base := math.Sqrt(clamp01(doc.Confidence) * clamp01(live.Confidence))

	yawDelta := math.Abs(doc.PoseYaw-live.PoseYaw) / 90.0
	rollDelta := math.Abs(doc.PoseRoll-live.PoseRoll) / 90.0
	posePenalty := clamp01((yawDelta + rollDelta) / 2.0)

	return clamp01(base * (1.0 - 0.5*posePenalty))
}

func inconclusive(docFound, liveFound bool, flag string) *models.FaceMatchResult {
	return &models.FaceMatchResult{
		Provider:           "facedetect",
		MatchConfidence:    0,
		LivenessScore:      0,
		DocumentFaceFound:  docFound,
		LivePhotoFaceFound: liveFound,
		Verdict:            models.FaceInconclusive,
		Flags:              []string{flag},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
