package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/repos"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

// Priority score components for product ranking.
const (
	priorityBase         = 5
	priorityFitMatch     = 15
	prioritySizeInStock  = 10
	priorityColorInStock = 10
)

const (
	maxRecommendationsPerScan = 10
	maxStoredColors           = 5

	// Garment type used for the scoring-wide size decision; garment-specific
	// sizes are recomputed per product category when matching variants.
	genericGarmentType = "general clothing"
)

// Variant match kinds, strongest first.
const (
	MatchPerfect = "perfect_match"
	MatchSize    = "size_match"
)

// ProductScore is one ranked product recommendation.
type ProductScore struct {
	Product  *types.Product `json:"product"`
	Priority int            `json:"priority"`
}

// VariantMatch is a purchasable variant matched against a scan.
type VariantMatch struct {
	Product         *types.Product        `json:"product"`
	Variant         *types.ProductVariant `json:"variant"`
	RecommendedSize string                `json:"recommended_size"`
	MatchType       string                `json:"match_type"`
	FitMatch        bool                  `json:"fit_match"`
	Message         string                `json:"message"`
}

type RecommendationService interface {
	RecommendSize(ctx context.Context, measurements types.MeasurementSet, garmentType string, bodyShape string) (string, error)
	RecommendFit(ctx context.Context, measurements types.MeasurementSet, garmentType string, bodyShape string) (string, error)
	RecommendColors(skinTone string, undertone string) ([]string, error)
	RecommendProducts(ctx context.Context, measurements types.MeasurementSet, skinTone string, undertone string, gender string, bodyShape string, limit int) ([]ProductScore, error)
	GetMatchingProductVariants(ctx context.Context, scan *types.BodyScan, gender string, limit int) ([]VariantMatch, error)
	GenerateRecommendationsForScan(ctx context.Context, scan *types.BodyScan) ([]*types.Recommendation, error)
	StylingAdvice(ctx context.Context, scan *types.BodyScan) (string, error)
}

type recommendationService struct {
	db          *gorm.DB
	log         *logger.Logger
	gemini      GeminiClient
	skinTone    *SkinToneService
	productRepo repos.ProductRepo
	variantRepo repos.ProductVariantRepo
	sizeRepo    repos.SizeRepo
	recRepo     repos.RecommendationRepo
}

func NewRecommendationService(
	db *gorm.DB,
	log *logger.Logger,
	gemini GeminiClient,
	skinTone *SkinToneService,
	productRepo repos.ProductRepo,
	variantRepo repos.ProductVariantRepo,
	sizeRepo repos.SizeRepo,
	recRepo repos.RecommendationRepo,
) RecommendationService {
	return &recommendationService{
		db:          db,
		log:         log.With("service", "RecommendationService"),
		gemini:      gemini,
		skinTone:    skinTone,
		productRepo: productRepo,
		variantRepo: variantRepo,
		sizeRepo:    sizeRepo,
		recRepo:     recRepo,
	}
}

// sizeAndFit asks the vision service for a size and fit decision against the
// store's actual size chart. Failures propagate: a wrong size silently
// substituted is worse than a visible error.
func (rs *recommendationService) sizeAndFit(ctx context.Context, measurements types.MeasurementSet, garmentType string, bodyShape string) (*types.SizeRecommendation, error) {
	availableSizes, err := rs.sizeRepo.ListNames(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("loading available sizes: %w", err)
	}
	return rs.gemini.RecommendSize(ctx, measurements, garmentType, bodyShape, availableSizes)
}

func (rs *recommendationService) RecommendSize(ctx context.Context, measurements types.MeasurementSet, garmentType string, bodyShape string) (string, error) {
	rec, err := rs.sizeAndFit(ctx, measurements, garmentType, bodyShape)
	if err != nil {
		return "", err
	}
	return rec.RecommendedSize, nil
}

func (rs *recommendationService) RecommendFit(ctx context.Context, measurements types.MeasurementSet, garmentType string, bodyShape string) (string, error) {
	rec, err := rs.sizeAndFit(ctx, measurements, garmentType, bodyShape)
	if err != nil {
		return "", err
	}
	return rec.FitType, nil
}

// RecommendColors uses the deterministic palette table keyed by tone and
// undertone; legacy 3-bucket tone names are accepted.
func (rs *recommendationService) RecommendColors(skinTone string, undertone string) ([]string, error) {
	if undertone == "" {
		undertone = types.UndertoneWarm
	}
	colors := rs.skinTone.RecommendedColors(skinTone, undertone)
	if len(colors) == 0 {
		return nil, fmt.Errorf("no colors recommended for tone %q undertone %q", skinTone, undertone)
	}
	return colors, nil
}

// RecommendProducts ranks catalog products for one gender. Products with no
// in-stock variant are discarded outright; the rest are scored on fit-type
// match, size availability and color availability over a flat base score.
func (rs *recommendationService) RecommendProducts(ctx context.Context, measurements types.MeasurementSet, skinTone string, undertone string, gender string, bodyShape string, limit int) ([]ProductScore, error) {
	sizeRec, err := rs.sizeAndFit(ctx, measurements, genericGarmentType, bodyShape)
	if err != nil {
		return nil, err
	}

	colors, err := rs.RecommendColors(skinTone, undertone)
	if err != nil {
		return nil, err
	}
	colorSet := make(map[string]struct{}, len(colors))
	for _, name := range colors {
		colorSet[name] = struct{}{}
	}

	products, err := rs.productRepo.ListByGender(ctx, nil, gender)
	if err != nil {
		return nil, err
	}

	scored := make([]ProductScore, 0, len(products))
	for _, product := range products {
		variants, err := rs.variantRepo.ListInStockByProduct(ctx, nil, product.ID)
		if err != nil {
			return nil, err
		}
		if len(variants) == 0 {
			continue
		}

		priority := priorityBase
		if product.FitType == sizeRec.FitType {
			priority += priorityFitMatch
		}

		sizeInStock := false
		colorInStock := false
		for _, v := range variants {
			if v.Size != nil && v.Size.Name == sizeRec.RecommendedSize {
				sizeInStock = true
			}
			if v.Color != nil {
				if _, ok := colorSet[v.Color.Name]; ok {
					colorInStock = true
				}
			}
		}
		if sizeInStock {
			priority += prioritySizeInStock
		}
		if colorInStock {
			priority += priorityColorInStock
		}

		scored = append(scored, ProductScore{Product: product, Priority: priority})
	}

	// Stable: ties keep catalog iteration order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Priority > scored[j].Priority
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// sizeForCategory memoizes the garment-specific size decision per product
// category, since the recommended size can differ between, say, jeans and
// jackets but not between two jackets.
func (rs *recommendationService) sizeForCategory(ctx context.Context, memo map[string]string, measurements types.MeasurementSet, category string, bodyShape string) (string, error) {
	if size, ok := memo[category]; ok {
		return size, nil
	}
	rec, err := rs.sizeAndFit(ctx, measurements, category, bodyShape)
	if err != nil {
		return "", err
	}
	memo[category] = rec.RecommendedSize
	return rec.RecommendedSize, nil
}

// GetMatchingProductVariants finds concrete purchasable variants for a scan:
// per product it recomputes the garment-specific size, then prefers an
// in-stock variant in both the right size and a recommended color, falling
// back to the right size in any in-stock color.
func (rs *recommendationService) GetMatchingProductVariants(ctx context.Context, scan *types.BodyScan, gender string, limit int) ([]VariantMatch, error) {
	measurements := scan.Measurements()

	fitRec, err := rs.sizeAndFit(ctx, measurements, genericGarmentType, scan.BodyShape)
	if err != nil {
		return nil, err
	}

	colors, err := rs.RecommendColors(scan.SkinTone, scan.Undertone)
	if err != nil {
		return nil, err
	}
	colorSet := make(map[string]struct{}, len(colors))
	for _, name := range colors {
		colorSet[name] = struct{}{}
	}

	var products []*types.Product
	if gender != "" {
		products, err = rs.productRepo.ListByGender(ctx, nil, gender)
	} else {
		products, err = rs.productRepo.ListFiltered(ctx, nil, repos.ProductFilter{})
	}
	if err != nil {
		return nil, err
	}

	sizeMemo := make(map[string]string)
	matches := make([]VariantMatch, 0, len(products))
	for _, product := range products {
		size, err := rs.sizeForCategory(ctx, sizeMemo, measurements, product.Category, scan.BodyShape)
		if err != nil {
			return nil, err
		}

		variants, err := rs.variantRepo.ListInStockByProductAndSize(ctx, nil, product.ID, size)
		if err != nil {
			return nil, err
		}
		if len(variants) == 0 {
			continue
		}

		var chosen *types.ProductVariant
		matchType := MatchSize
		for _, v := range variants {
			if v.Color != nil {
				if _, ok := colorSet[v.Color.Name]; ok {
					chosen = v
					matchType = MatchPerfect
					break
				}
			}
		}
		if chosen == nil {
			chosen = variants[0]
		}

		colorName := ""
		if chosen.Color != nil {
			colorName = chosen.Color.Name
		}
		fitMatch := product.FitType == fitRec.FitType

		var message string
		if matchType == MatchPerfect {
			message = fmt.Sprintf("Great match: this %s in size %s comes in %s, a color picked for your skin tone", product.Category, size, colorName)
		} else {
			message = fmt.Sprintf("Size match: this %s fits you in size %s and is in stock in %s", product.Category, size, colorName)
		}

		matches = append(matches, VariantMatch{
			Product:         product,
			Variant:         chosen,
			RecommendedSize: size,
			MatchType:       matchType,
			FitMatch:        fitMatch,
			Message:         message,
		})
	}

	// Fit-type matches first, perfect matches before size-only, then by name.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].FitMatch != matches[j].FitMatch {
			return matches[i].FitMatch
		}
		if matches[i].MatchType != matches[j].MatchType {
			return matches[i].MatchType == MatchPerfect
		}
		return matches[i].Product.Name < matches[j].Product.Name
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// GenerateRecommendationsForScan produces and persists the scan's
// recommendation batch: the product ranking is run for every gender bucket,
// merged, deduplicated keeping the highest priority, and capped at ten rows.
func (rs *recommendationService) GenerateRecommendationsForScan(ctx context.Context, scan *types.BodyScan) ([]*types.Recommendation, error) {
	measurements := scan.Measurements()

	fitRec, err := rs.sizeAndFit(ctx, measurements, genericGarmentType, scan.BodyShape)
	if err != nil {
		return nil, err
	}

	colors, err := rs.RecommendColors(scan.SkinTone, scan.Undertone)
	if err != nil {
		return nil, err
	}
	if len(colors) > maxStoredColors {
		colors = colors[:maxStoredColors]
	}
	colorsJSON, err := json.Marshal(colors)
	if err != nil {
		return nil, err
	}

	genders := []string{types.GenderMen, types.GenderWomen, types.GenderUnisex}
	perGender := make([][]ProductScore, len(genders))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, gender := range genders {
		i, gender := i, gender
		group.Go(func() error {
			scores, err := rs.RecommendProducts(groupCtx, measurements, scan.SkinTone, scan.Undertone, gender, scan.BodyShape, maxRecommendationsPerScan)
			if err != nil {
				return err
			}
			perGender[i] = scores
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Dedupe by product, keeping the highest-priority occurrence.
	bestIdx := make(map[uuid.UUID]int)
	var unique []ProductScore
	for _, scores := range perGender {
		for _, score := range scores {
			if idx, seen := bestIdx[score.Product.ID]; seen {
				if score.Priority > unique[idx].Priority {
					unique[idx] = score
				}
				continue
			}
			bestIdx[score.Product.ID] = len(unique)
			unique = append(unique, score)
		}
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Priority > unique[j].Priority
	})
	if len(unique) > maxRecommendationsPerScan {
		unique = unique[:maxRecommendationsPerScan]
	}

	sizeMemo := make(map[string]string)
	recs := make([]*types.Recommendation, 0, len(unique))
	for _, score := range unique {
		garmentSize, err := rs.sizeForCategory(ctx, sizeMemo, measurements, score.Product.Category, scan.BodyShape)
		if err != nil {
			return nil, err
		}
		recs = append(recs, &types.Recommendation{
			BodyScanID:        scan.ID,
			ProductID:         score.Product.ID,
			RecommendedSize:   garmentSize,
			RecommendedFit:    fitRec.FitType,
			RecommendedColors: datatypes.JSON(colorsJSON),
			Priority:          score.Priority,
		})
	}

	created, err := rs.recRepo.Create(ctx, nil, recs)
	if err != nil {
		return nil, fmt.Errorf("persisting recommendations: %w", err)
	}
	rs.log.Info("Recommendations generated for scan", "session_id", scan.SessionID, "count", len(created))
	return created, nil
}

// StylingAdvice relays the scan profile to the vision service for free-form
// styling tips.
func (rs *recommendationService) StylingAdvice(ctx context.Context, scan *types.BodyScan) (string, error) {
	return rs.gemini.StylingAdvice(ctx, scan.Measurements(), scan.BodyShape, scan.SkinTone, scan.Undertone)
}
