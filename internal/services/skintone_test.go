package services

import (
	"image"
	"image/color"
	"testing"

	"github.com/fitmirror/fitmirror-backend/internal/types"
)

func TestClassifyITA_BucketBoundaries(t *testing.T) {
	tests := []struct {
		ita  float64
		want string
	}{
		{70, types.ToneVeryLight},
		{55.1, types.ToneVeryLight},
		{55, types.ToneLight}, // lower bound is exclusive
		{42, types.ToneLight},
		{41, types.ToneIntermediate},
		{29, types.ToneIntermediate},
		{28, types.ToneTan},
		{10.5, types.ToneTan},
		{10, types.ToneDark},
		{-30, types.ToneDark},
	}
	for _, tt := range tests {
		if got := classifyITA(tt.ita); got != tt.want {
			t.Fatalf("classifyITA(%v) = %q, want %q", tt.ita, got, tt.want)
		}
	}
}

func TestClassifyUndertone_SignRule(t *testing.T) {
	if got := classifyUndertone(5); got != types.UndertoneWarm {
		t.Fatalf("b*=5: got %q, want warm", got)
	}
	if got := classifyUndertone(-5); got != types.UndertoneCool {
		t.Fatalf("b*=-5: got %q, want cool", got)
	}
	if got := classifyUndertone(0); got != types.UndertoneCool {
		t.Fatalf("b*=0: got %q, want cool", got)
	}
}

func TestComputeITA_ClampsNearGrayWithSign(t *testing.T) {
	// Near-zero b* must not blow the angle past +-90 degrees, and the clamp
	// must not flip the side of the axis.
	pos := computeITA(60, 0.001)
	if pos <= 0 || pos > 90 {
		t.Fatalf("ITA for tiny positive b* = %v, want in (0, 90]", pos)
	}
	neg := computeITA(40, -0.001)
	if neg >= 0 {
		t.Fatalf("ITA for tiny negative b* = %v, want negative", neg)
	}
	if got, want := computeITA(60, 0.001), computeITA(60, 0.1); got != want {
		t.Fatalf("clamped ITA = %v, want %v", got, want)
	}
}

func TestTonePalettes_CompleteAndDistinct(t *testing.T) {
	tones := []string{
		types.ToneVeryLight, types.ToneLight, types.ToneIntermediate,
		types.ToneTan, types.ToneDark,
	}
	undertones := []string{types.UndertoneWarm, types.UndertoneCool}

	for _, tone := range tones {
		for _, undertone := range undertones {
			palette, ok := tonePalettes[tonePair{tone, undertone}]
			if !ok {
				t.Fatalf("missing palette for (%s, %s)", tone, undertone)
			}
			if len(palette) != 10 {
				t.Fatalf("palette (%s, %s) has %d colors, want 10", tone, undertone, len(palette))
			}
			seen := map[string]bool{}
			for _, c := range palette {
				if seen[c] {
					t.Fatalf("palette (%s, %s) repeats color %q", tone, undertone, c)
				}
				seen[c] = true
			}
		}
	}
}

func TestNormalizeTone(t *testing.T) {
	if got := NormalizeTone("medium"); got != types.ToneIntermediate {
		t.Fatalf("medium -> %q, want intermediate", got)
	}
	if got := NormalizeTone("dark"); got != types.ToneDark {
		t.Fatalf("dark -> %q, want dark", got)
	}
	if got := NormalizeTone(types.ToneVeryLight); got != types.ToneVeryLight {
		t.Fatalf("very_light -> %q, want passthrough", got)
	}
}

func TestRecommendedColors_LegacyAndUnknownTones(t *testing.T) {
	svc := NewSkinToneService(testLogger(t))

	legacy := svc.RecommendedColors("medium", types.UndertoneCool)
	modern := svc.RecommendedColors(types.ToneIntermediate, types.UndertoneCool)
	if len(legacy) != len(modern) || legacy[0] != modern[0] {
		t.Fatalf("legacy medium palette differs from intermediate palette")
	}

	fallback := svc.RecommendedColors("chartreuse", "sideways")
	want := tonePalettes[tonePair{types.ToneIntermediate, types.UndertoneWarm}]
	if len(fallback) != len(want) || fallback[0] != want[0] {
		t.Fatalf("unknown pair did not fall back to (intermediate, warm)")
	}
}

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// A mid-range skin color that passes the YCbCr chroma filter.
var sampleSkin = color.RGBA{R: 224, G: 172, B: 105, A: 255}

func TestClassifyImage_FaceRegionGivesHighConfidence(t *testing.T) {
	svc := NewSkinToneService(testLogger(t))
	img := uniformImage(100, 100, sampleSkin)

	face := image.Rect(40, 10, 60, 30) // 400 candidate pixels
	got := svc.ClassifyImage(img, []image.Rectangle{face})

	if got.Confidence != faceConfidence {
		t.Fatalf("confidence = %v, want %v", got.Confidence, faceConfidence)
	}
	if got.SkinTone != types.ToneIntermediate {
		t.Fatalf("skin tone = %q, want intermediate", got.SkinTone)
	}
	if got.Undertone != types.UndertoneWarm {
		t.Fatalf("undertone = %q, want warm", got.Undertone)
	}
}

func TestClassifyImage_CenterFallbackWithoutFace(t *testing.T) {
	svc := NewSkinToneService(testLogger(t))
	img := uniformImage(90, 90, sampleSkin)

	got := svc.ClassifyImage(img, nil)
	if got.Confidence != fallbackConfidence {
		t.Fatalf("confidence = %v, want fallback %v", got.Confidence, fallbackConfidence)
	}
	if got.SkinTone != types.ToneIntermediate {
		t.Fatalf("skin tone = %q, want intermediate", got.SkinTone)
	}
}

func TestClassifyImage_NoSkinPixelsReturnsNeutralDefault(t *testing.T) {
	svc := NewSkinToneService(testLogger(t))
	img := uniformImage(60, 60, color.RGBA{R: 0, G: 0, B: 255, A: 255})

	got := svc.ClassifyImage(img, nil)
	if got.Confidence != 0.0 {
		t.Fatalf("confidence = %v, want 0", got.Confidence)
	}
	if got.SkinTone != types.ToneIntermediate || got.Undertone != types.UndertoneWarm {
		t.Fatalf("default = (%s, %s), want (intermediate, warm)", got.SkinTone, got.Undertone)
	}
	if got.ITAValue != 30.0 {
		t.Fatalf("default ITA = %v, want 30", got.ITAValue)
	}
}
