package services

import (
	"image"
	"math"
	"sort"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

// SkinToneService derives a skin-tone profile from sampled skin pixels using
// the Individual Typology Angle. Deterministic, no learned model; it never
// fails, low-quality input degrades to a neutral default with confidence 0.
type SkinToneService struct {
	log *logger.Logger
}

func NewSkinToneService(log *logger.Logger) *SkinToneService {
	return &SkinToneService{log: log.With("service", "SkinToneService")}
}

// Skin chroma range in YCbCr, the usual empirical bounds for skin detection.
const (
	skinCrMin = 133
	skinCrMax = 173
	skinCbMin = 77
	skinCbMax = 127
)

const (
	minFacePixels   = 100
	minUsablePixels = 10

	faceConfidence     = 0.9
	fallbackConfidence = 0.5
)

type rgbPixel struct {
	r, g, b uint8
}

// ClassifyImage samples skin pixels and classifies them. Face regions, when
// supplied by the capture client's pose overlay, give the high-confidence
// sample; otherwise the center third of the image is used as a fallback.
func (st *SkinToneService) ClassifyImage(img image.Image, faceRegions []image.Rectangle) types.SkinToneResult {
	facePixels := st.sampleSkinPixels(img, faceRegions)
	if len(facePixels) >= minFacePixels {
		return st.classifyPixels(facePixels, faceConfidence)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	center := image.Rect(
		bounds.Min.X+w/3,
		bounds.Min.Y+h/3,
		bounds.Min.X+2*w/3,
		bounds.Min.Y+2*h/3,
	)
	centerPixels := st.sampleSkinPixels(img, []image.Rectangle{center})
	if len(centerPixels) >= minUsablePixels {
		return st.classifyPixels(centerPixels, fallbackConfidence)
	}

	combined := append(facePixels, centerPixels...)
	if len(combined) >= minUsablePixels {
		return st.classifyPixels(combined, fallbackConfidence)
	}

	st.log.Warn("Too few usable skin pixels, returning neutral default",
		"face_pixels", len(facePixels), "center_pixels", len(centerPixels))
	return types.SkinToneResult{
		SkinTone:   types.ToneIntermediate,
		Undertone:  types.UndertoneWarm,
		ITAValue:   30.0,
		LStar:      60.0,
		BStar:      17.3,
		Confidence: 0.0,
	}
}

// sampleSkinPixels collects the pixels inside the given regions that pass
// the YCbCr skin-chroma filter.
func (st *SkinToneService) sampleSkinPixels(img image.Image, regions []image.Rectangle) []rgbPixel {
	var pixels []rgbPixel
	bounds := img.Bounds()
	for _, region := range regions {
		clipped := region.Intersect(bounds)
		for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
			for x := clipped.Min.X; x < clipped.Max.X; x++ {
				r16, g16, b16, _ := img.At(x, y).RGBA()
				r, g, b := uint8(r16>>8), uint8(g16>>8), uint8(b16>>8)
				if isSkinChroma(r, g, b) {
					pixels = append(pixels, rgbPixel{r, g, b})
				}
			}
		}
	}
	return pixels
}

func isSkinChroma(r, g, b uint8) bool {
	cb := 128 + (-0.168736*float64(r) - 0.331264*float64(g) + 0.5*float64(b))
	cr := 128 + (0.5*float64(r) - 0.418688*float64(g) - 0.081312*float64(b))
	return cr >= skinCrMin && cr <= skinCrMax && cb >= skinCbMin && cb <= skinCbMax
}

func (st *SkinToneService) classifyPixels(pixels []rgbPixel, confidence float64) types.SkinToneResult {
	lValues := make([]float64, len(pixels))
	bValues := make([]float64, len(pixels))
	for i, p := range pixels {
		l, b := rgbToLabLB(p.r, p.g, p.b)
		lValues[i] = l
		bValues[i] = b
	}

	lStar := median(lValues)
	bStar := median(bValues)
	ita := computeITA(lStar, bStar)

	result := types.SkinToneResult{
		SkinTone:   classifyITA(ita),
		Undertone:  classifyUndertone(bStar),
		ITAValue:   ita,
		LStar:      lStar,
		BStar:      bStar,
		Confidence: confidence,
	}
	st.log.Debug("Skin tone classified",
		"skin_tone", result.SkinTone,
		"undertone", result.Undertone,
		"ita", result.ITAValue,
		"pixels", len(pixels),
		"confidence", confidence,
	)
	return result
}

// computeITA is the Individual Typology Angle in degrees. The b* magnitude
// is clamped to >= 0.1 before the division so near-gray samples do not blow
// up the angle; the clamp preserves sign (b* of exactly 0 counts positive).
func computeITA(lStar, bStar float64) float64 {
	b := bStar
	if b >= 0 && b < 0.1 {
		b = 0.1
	} else if b < 0 && b > -0.1 {
		b = -0.1
	}
	return math.Atan2(lStar-50.0, b) * 180.0 / math.Pi
}

// classifyITA buckets the angle into the five ordered tone categories.
// Buckets are exclusive on their lower bound: ITA of exactly 41 is
// intermediate, exactly 10 is dark.
func classifyITA(ita float64) string {
	switch {
	case ita > 55:
		return types.ToneVeryLight
	case ita > 41:
		return types.ToneLight
	case ita > 28:
		return types.ToneIntermediate
	case ita > 10:
		return types.ToneTan
	default:
		return types.ToneDark
	}
}

// classifyUndertone applies the sign rule: yellow-leaning (b* > 0) is warm,
// blue-leaning is cool. b* of exactly 0 is classified cool.
func classifyUndertone(bStar float64) string {
	if bStar > 0 {
		return types.UndertoneWarm
	}
	return types.UndertoneCool
}

// rgbToLabLB converts an sRGB pixel to CIELAB (D65) and returns L* and b*.
func rgbToLabLB(r8, g8, b8 uint8) (float64, float64) {
	r := srgbToLinear(float64(r8) / 255.0)
	g := srgbToLinear(float64(g8) / 255.0)
	b := srgbToLinear(float64(b8) / 255.0)

	// sRGB D65 reference white.
	_ = (0.4124564*r + 0.3575761*g + 0.1804375*b) / 0.95047
	y := 0.2126729*r + 0.7151522*g + 0.0721750*b
	z := (0.0193339*r + 0.1191920*g + 0.9503041*b) / 1.08883

	fy := labF(y)
	lStar := 116.0*fy - 16.0
	bStar := 200.0 * (fy - labF(z))
	return lStar, bStar
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// ---- curated palettes ----

type tonePair struct {
	tone      string
	undertone string
}

var tonePalettes = map[tonePair][]string{
	{types.ToneVeryLight, types.UndertoneWarm}: {
		"Peach", "Coral", "Ivory Cream", "Camel Beige", "Soft Yellow",
		"Warm Taupe", "Salmon Pink", "Light Olive", "Golden Brown", "Cream White",
	},
	{types.ToneVeryLight, types.UndertoneCool}: {
		"Pastel Pink", "Baby Blue", "Lavender", "Mint Green", "Soft Gray",
		"Powder Blue", "Rose Quartz", "Icy Lilac", "Cool Silver", "Dusty Blue",
	},
	{types.ToneLight, types.UndertoneWarm}: {
		"Warm Beige", "Terracotta", "Mustard Yellow", "Olive Green", "Coral Rose",
		"Honey Gold", "Apricot", "Camel", "Warm Ivory", "Tomato Red",
	},
	{types.ToneLight, types.UndertoneCool}: {
		"Sky Blue", "Emerald Green", "Ruby Red", "Cool Navy", "Plum",
		"Soft Lavender", "Raspberry", "Slate Gray", "True Blue", "Amethyst",
	},
	{types.ToneIntermediate, types.UndertoneWarm}: {
		"Earth Brown", "Olive Green", "Burgundy", "Mustard Yellow", "Terracotta",
		"Warm Orange", "Camel", "Rust", "Forest Green", "Bronze",
	},
	{types.ToneIntermediate, types.UndertoneCool}: {
		"Teal", "Deep Purple", "Navy Blue", "Cool Pink", "Charcoal Gray",
		"Wine Red", "Sapphire Blue", "Cool Mint", "Steel Blue", "Magenta",
	},
	{types.ToneTan, types.UndertoneWarm}: {
		"Warm White", "Burnt Orange", "Saffron Yellow", "Chocolate Brown", "Brick Red",
		"Golden Olive", "Copper", "Amber", "Moss Green", "Paprika",
	},
	{types.ToneTan, types.UndertoneCool}: {
		"Royal Blue", "Fuchsia", "Emerald Green", "Cool Burgundy", "Icy Gray",
		"Deep Teal", "Violet", "Cranberry", "Midnight Blue", "Silver",
	},
	{types.ToneDark, types.UndertoneWarm}: {
		"Bright White", "Sunny Yellow", "Warm Orange", "Gold", "Vibrant Red",
		"Lime Green", "Coral", "Copper Brown", "Saffron", "Burnt Sienna",
	},
	{types.ToneDark, types.UndertoneCool}: {
		"Electric Blue", "Hot Pink", "Turquoise", "Magenta", "Cobalt Blue",
		"Icy White", "Silver", "Royal Purple", "Emerald Green", "Fuchsia",
	},
}

// legacyToneRemap accepts the older 3-bucket tone labels still produced by
// some callers and stored on old scans.
var legacyToneRemap = map[string]string{
	"light":  types.ToneLight,
	"medium": types.ToneIntermediate,
	"dark":   types.ToneDark,
}

// NormalizeTone maps legacy 3-bucket tone names onto the 5-bucket scale.
func NormalizeTone(tone string) string {
	if mapped, ok := legacyToneRemap[tone]; ok {
		return mapped
	}
	return tone
}

// RecommendedColors returns the curated palette for a (tone, undertone)
// pair. Unknown pairs fall back to (intermediate, warm).
func (st *SkinToneService) RecommendedColors(skinTone string, undertone string) []string {
	tone := NormalizeTone(skinTone)
	if palette, ok := tonePalettes[tonePair{tone, undertone}]; ok {
		return palette
	}
	return tonePalettes[tonePair{types.ToneIntermediate, types.UndertoneWarm}]
}
