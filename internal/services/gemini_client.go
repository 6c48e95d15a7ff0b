package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

// GeminiClient is the narrow contract to the external vision-language
// service: images and instructions in, structured attributes out. A test
// double implementing this interface scripts the whole pipeline offline.
type GeminiClient interface {
	Available() bool
	AnalyzeBody(ctx context.Context, frontImage []byte, sideImage []byte, referenceHeightCM float64) (*types.BodyAnalysis, error)
	RecommendSize(ctx context.Context, measurements types.MeasurementSet, garmentType string, bodyShape string, availableSizes []string) (*types.SizeRecommendation, error)
	RecommendColors(ctx context.Context, skinTone string, undertone string, bodyShape string, garmentType string) ([]string, error)
	StylingAdvice(ctx context.Context, measurements types.MeasurementSet, bodyShape string, skinTone string, undertone string) (string, error)
}

const geminiSystemInstruction = "You are an expert anthropometric AI. Your goal is to visually analyze human body proportions and provide highly accurate clothing size and measurement data."

type geminiClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient builds the client from the environment. A missing API key
// is not a construction error: calls surface ErrServiceUnavailable instead,
// so the rest of the system (frame feedback, catalog reads) stays up.
func NewGeminiClient(log *logger.Logger) GeminiClient {
	clientLog := log.With("service", "GeminiClient")

	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		clientLog.Error("No Gemini API key configured, vision calls will fail")
	}

	baseURL := os.Getenv("GEMINI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	// Callers impose their own deadline per scan; this is the hard ceiling.
	timeoutSec := 60
	if v := os.Getenv("GEMINI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &geminiClient{
		log:        clientLog,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

func (c *geminiClient) Available() bool {
	return c.apiKey != ""
}

type geminiHTTPError struct {
	StatusCode int
	Body       string
}

func (e *geminiHTTPError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

// ---- wire types ----

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateContentRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

func imagePart(imageBytes []byte) geminiPart {
	return geminiPart{InlineData: &geminiInlineData{
		MimeType: "image/jpeg",
		Data:     base64.StdEncoding.EncodeToString(imageBytes),
	}}
}

// generate performs one synchronous request/response round trip. There is
// deliberately no retry loop: a failed call surfaces immediately so the
// caller never waits on a silently degrading decision.
func (c *geminiClient) generate(ctx context.Context, parts []geminiPart) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("no API key configured: %w", ErrServiceUnavailable)
	}

	req := generateContentRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: geminiSystemInstruction}}},
		Contents:          []geminiContent{{Role: "user", Parts: parts}},
	}
	req.GenerationConfig.Temperature = 0.2

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return "", err
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &geminiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, httpErr)
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode error: %v; raw=%s", ErrMalformedResponse, err, excerpt(string(raw)))
	}

	var text strings.Builder
	for _, cand := range decoded.Candidates {
		for _, part := range cand.Content.Parts {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: empty candidate text; raw=%s", ErrMalformedResponse, excerpt(string(raw)))
	}
	return text.String(), nil
}

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?\\s*```")

// extractJSONObject pulls the first well-formed JSON object out of model
// output that may be wrapped in prose or code fences.
func extractJSONObject(text string) (map[string]any, error) {
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object in text")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				var obj map[string]any
				if err := json.Unmarshal([]byte(text[start:i+1]), &obj); err != nil {
					return nil, err
				}
				return obj, nil
			}
		}
	}
	return nil, fmt.Errorf("unterminated JSON object in text")
}

func excerpt(s string) string {
	const max = 300
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// ---- AnalyzeBody ----

func (c *geminiClient) AnalyzeBody(ctx context.Context, frontImage []byte, sideImage []byte, referenceHeightCM float64) (*types.BodyAnalysis, error) {
	heightInfo := "Estimate height based on surroundings."
	if referenceHeightCM > 0 {
		heightInfo = fmt.Sprintf("The person's actual height is %.1f cm. Use it as a hard calibration anchor.", referenceHeightCM)
	}

	prompt := fmt.Sprintf(`Analyze the person in the image(s) for a virtual fitting room.
%s

1. Extract precise body measurements in cm. Realistic adult ranges: height 140-210, shoulder_width 30-60, chest 70-140, waist 55-130, hip 75-140, torso_length 40-75, arm_length 45-80, inseam 60-100.
2. Identify body shape (hourglass, rectangle, triangle, inverted_triangle, oval).
3. Identify skin tone (very_light, light, intermediate, tan, dark) and undertone (warm, cool).

Return ONLY a JSON object:
{
    "measurements": {
        "height": <cm>,
        "shoulder_width": <cm>,
        "chest": <cm>,
        "waist": <cm>,
        "hip": <cm>,
        "torso_length": <cm>,
        "arm_length": <cm>,
        "inseam": <cm>
    },
    "body_shape": "...",
    "skin_tone": "...",
    "undertone": "...",
    "confidence": <0.0-1.0>
}`, heightInfo)

	parts := []geminiPart{{Text: prompt}, imagePart(frontImage)}
	if len(sideImage) > 0 {
		parts = append(parts, imagePart(sideImage))
	}

	text, err := c.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	obj, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v; text=%s", ErrMalformedResponse, err, excerpt(text))
	}

	rawMeasurements, ok := obj["measurements"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing measurements object; text=%s", ErrMalformedResponse, excerpt(text))
	}

	measurements := types.MeasurementSet{}
	for key, v := range rawMeasurements {
		if f, ok := toFloat(v); ok {
			measurements[key] = f
		}
	}

	analysis := &types.BodyAnalysis{
		Measurements: measurements,
		BodyShape:    toString(obj["body_shape"]),
		SkinTone:     toString(obj["skin_tone"]),
		Undertone:    toString(obj["undertone"]),
	}
	if conf, ok := toFloat(obj["confidence"]); ok {
		analysis.Confidence = conf
	}

	c.log.Info("Body analysis extracted",
		"body_shape", analysis.BodyShape,
		"skin_tone", analysis.SkinTone,
		"confidence", analysis.Confidence,
	)
	return analysis, nil
}

// ---- RecommendSize ----

func (c *geminiClient) RecommendSize(ctx context.Context, measurements types.MeasurementSet, garmentType string, bodyShape string, availableSizes []string) (*types.SizeRecommendation, error) {
	if len(availableSizes) == 0 {
		availableSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}
	}
	if bodyShape == "" {
		bodyShape = types.ShapeRectangle
	}

	measurementsJSON, err := json.MarshalIndent(measurements, "", "  ")
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are an expert fashion sizing specialist.

Analyze the following body measurements and recommend the single best clothing size.

Body Measurements (all values in centimetres):
%s

Garment Type: %s
Body Shape: %s
Available Sizes: %s

Use your expert knowledge of international sizing standards.
Do NOT apply fixed thresholds - reason holistically from ALL measurements (chest, waist, hips, shoulder width, height, etc.).
Consider the garment type and body shape when deciding between borderline sizes.

Return ONLY a valid JSON object:
{
    "recommended_size": "<one of the available sizes>",
    "fit_type": "<slim, regular, or oversize>",
    "reasoning": "<one sentence explaining why this size fits best>"
}`, measurementsJSON, garmentType, bodyShape, strings.Join(availableSizes, ", "))

	text, err := c.generate(ctx, []geminiPart{{Text: prompt}})
	if err != nil {
		return nil, err
	}

	obj, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v; text=%s", ErrMalformedResponse, err, excerpt(text))
	}

	recommended := toString(obj["recommended_size"])
	if recommended == "" {
		return nil, fmt.Errorf("%w: missing recommended_size; text=%s", ErrMalformedResponse, excerpt(text))
	}

	valid := false
	for _, s := range availableSizes {
		if recommended == s {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("%w: size %q is not in available sizes %v", ErrInvalidSelection, recommended, availableSizes)
	}

	result := &types.SizeRecommendation{
		RecommendedSize: recommended,
		FitType:         toString(obj["fit_type"]),
		Reasoning:       toString(obj["reasoning"]),
	}
	// Unknown fit labels are normalized, not failed.
	switch result.FitType {
	case types.FitSlim, types.FitRegular, types.FitOversize:
	default:
		result.FitType = types.FitRegular
	}

	c.log.Info("Size recommendation", "size", result.RecommendedSize, "fit", result.FitType, "reasoning", result.Reasoning)
	return result, nil
}

// ---- RecommendColors ----

func (c *geminiClient) RecommendColors(ctx context.Context, skinTone string, undertone string, bodyShape string, garmentType string) ([]string, error) {
	if undertone == "" {
		undertone = types.UndertoneWarm
	}
	if bodyShape == "" {
		bodyShape = types.ShapeRectangle
	}
	garmentContext := ""
	if garmentType != "" {
		garmentContext = " for " + garmentType
	}

	prompt := fmt.Sprintf(`You are a fashion color consultant. Recommend clothing colors%s.

Person's profile:
- Skin tone: %s
- Undertone: %s
- Body shape: %s

Return ONLY a JSON object:
{"recommended_colors": ["Color1", "Color2", ...]}

Provide 8-12 specific fashion color names (e.g. "Navy Blue", "Burgundy", "Emerald Green").
Respond with ONLY the JSON.`, garmentContext, skinTone, undertone, bodyShape)

	text, err := c.generate(ctx, []geminiPart{{Text: prompt}})
	if err != nil {
		return nil, err
	}

	obj, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v; text=%s", ErrMalformedResponse, err, excerpt(text))
	}

	rawColors, _ := obj["recommended_colors"].([]any)
	colors := make([]string, 0, len(rawColors))
	for _, v := range rawColors {
		if name := toString(v); name != "" {
			colors = append(colors, name)
		}
	}
	if len(colors) == 0 {
		return nil, fmt.Errorf("%w: no color recommendations; text=%s", ErrMalformedResponse, excerpt(text))
	}
	return colors, nil
}

// ---- StylingAdvice ----

func (c *geminiClient) StylingAdvice(ctx context.Context, measurements types.MeasurementSet, bodyShape string, skinTone string, undertone string) (string, error) {
	if undertone == "" {
		undertone = types.UndertoneWarm
	}
	measurementsJSON, err := json.Marshal(measurements)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`You are a personal fashion stylist. Give brief, practical styling advice.

Person's profile:
- Body shape: %s
- Skin tone: %s with %s undertone
- Measurements: %s

Give 3-4 concise styling tips specific to their body type and coloring. Return plain text.`, bodyShape, skinTone, undertone, measurementsJSON)

	text, err := c.generate(ctx, []geminiPart{{Text: prompt}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
