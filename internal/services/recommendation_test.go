package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitmirror/fitmirror-backend/internal/repos"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

// ---- test doubles ----

type scriptedGemini struct {
	size    *types.SizeRecommendation
	sizeErr error
}

func (g *scriptedGemini) Available() bool { return true }

func (g *scriptedGemini) AnalyzeBody(ctx context.Context, front, side []byte, referenceHeightCM float64) (*types.BodyAnalysis, error) {
	return nil, errors.New("not scripted")
}

func (g *scriptedGemini) RecommendSize(ctx context.Context, measurements types.MeasurementSet, garmentType string, bodyShape string, availableSizes []string) (*types.SizeRecommendation, error) {
	if g.sizeErr != nil {
		return nil, g.sizeErr
	}
	return g.size, nil
}

func (g *scriptedGemini) RecommendColors(ctx context.Context, skinTone, undertone, bodyShape, garmentType string) ([]string, error) {
	return nil, errors.New("not scripted")
}

func (g *scriptedGemini) StylingAdvice(ctx context.Context, measurements types.MeasurementSet, bodyShape, skinTone, undertone string) (string, error) {
	return "wear what fits", nil
}

type fakeProductRepo struct {
	products []*types.Product
}

func (r *fakeProductRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
	return products, nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error) {
	for _, p := range r.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) ListByGender(ctx context.Context, tx *gorm.DB, gender string) ([]*types.Product, error) {
	var out []*types.Product
	for _, p := range r.products {
		if p.Gender == gender || p.Gender == types.GenderUnisex {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) ListFiltered(ctx context.Context, tx *gorm.DB, filter repos.ProductFilter) ([]*types.Product, error) {
	return r.products, nil
}

func (r *fakeProductRepo) DistinctCategories(ctx context.Context, tx *gorm.DB) ([]string, error) {
	return nil, nil
}

func (r *fakeProductRepo) DistinctGenders(ctx context.Context, tx *gorm.DB) ([]string, error) {
	return nil, nil
}

type fakeVariantRepo struct {
	// in-stock variants keyed by product ID
	inStock map[uuid.UUID][]*types.ProductVariant
}

func (r *fakeVariantRepo) Create(ctx context.Context, tx *gorm.DB, variants []*types.ProductVariant) ([]*types.ProductVariant, error) {
	return variants, nil
}

func (r *fakeVariantRepo) ListInStockByProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.ProductVariant, error) {
	return r.inStock[productID], nil
}

func (r *fakeVariantRepo) ListInStockByProductAndSize(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sizeName string) ([]*types.ProductVariant, error) {
	var out []*types.ProductVariant
	for _, v := range r.inStock[productID] {
		if v.Size != nil && v.Size.Name == sizeName {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVariantRepo) ListWithInventory(ctx context.Context, tx *gorm.DB) ([]*types.ProductVariant, error) {
	var out []*types.ProductVariant
	for _, vs := range r.inStock {
		out = append(out, vs...)
	}
	return out, nil
}

type fakeSizeRepo struct {
	names []string
}

func (r *fakeSizeRepo) Create(ctx context.Context, tx *gorm.DB, sizes []*types.Size) ([]*types.Size, error) {
	return sizes, nil
}

func (r *fakeSizeRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Size, error) {
	return nil, nil
}

func (r *fakeSizeRepo) ListNames(ctx context.Context, tx *gorm.DB) ([]string, error) {
	return r.names, nil
}

func (r *fakeSizeRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Size, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeRecRepo struct {
	created []*types.Recommendation
}

func (r *fakeRecRepo) Create(ctx context.Context, tx *gorm.DB, recs []*types.Recommendation) ([]*types.Recommendation, error) {
	r.created = append(r.created, recs...)
	return recs, nil
}

func (r *fakeRecRepo) ListByScanID(ctx context.Context, tx *gorm.DB, scanID uuid.UUID) ([]*types.Recommendation, error) {
	return r.created, nil
}

// ---- fixture helpers ----

type catalogFixture struct {
	products *fakeProductRepo
	variants *fakeVariantRepo
}

func newCatalogFixture() *catalogFixture {
	return &catalogFixture{
		products: &fakeProductRepo{},
		variants: &fakeVariantRepo{inStock: map[uuid.UUID][]*types.ProductVariant{}},
	}
}

// addProduct registers a product with one in-stock variant per (size, color).
func (f *catalogFixture) addProduct(name, category, fitType, gender string, sizes []string, colorNames []string) *types.Product {
	p := &types.Product{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
		FitType:  fitType,
		Gender:   gender,
	}
	f.products.products = append(f.products.products, p)
	for _, s := range sizes {
		for _, cn := range colorNames {
			f.variants.inStock[p.ID] = append(f.variants.inStock[p.ID], &types.ProductVariant{
				ID:        uuid.New(),
				ProductID: p.ID,
				Size:      &types.Size{Name: s},
				Color:     &types.Color{Name: cn},
				Inventory: &types.Inventory{Quantity: 5},
			})
		}
	}
	return p
}

func newTestRecommendationService(t *testing.T, gemini GeminiClient, fx *catalogFixture, recRepo repos.RecommendationRepo) RecommendationService {
	t.Helper()
	log := testLogger(t)
	return NewRecommendationService(
		nil,
		log,
		gemini,
		NewSkinToneService(log),
		fx.products,
		fx.variants,
		&fakeSizeRepo{names: []string{"S", "M", "L", "XL"}},
		recRepo,
	)
}

func testScan() *types.BodyScan {
	return &types.BodyScan{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		Height:    175, ShoulderWidth: 46, Chest: 98, Waist: 84,
		Hip: 100, TorsoLength: 52, ArmLength: 60, Inseam: 80,
		BodyShape: types.ShapeRectangle,
		SkinTone:  types.ToneIntermediate,
		Undertone: types.UndertoneWarm,
	}
}

// ---- tests ----

func TestRecommendProducts_ScoresAndOrders(t *testing.T) {
	fx := newCatalogFixture()
	// Warm intermediate palette includes "Terracotta" and "Camel".
	full := fx.addProduct("Full Match Shirt", "shirt", types.FitRegular, types.GenderMen,
		[]string{"M"}, []string{"Terracotta"})
	fitOnly := fx.addProduct("Fit Only Jacket", "jacket", types.FitRegular, types.GenderMen,
		[]string{"S"}, []string{"Neon Green"})
	baseOnly := fx.addProduct("Base Only Jeans", "pants", types.FitSlim, types.GenderMen,
		[]string{"S"}, []string{"Neon Green"})
	noStock := fx.addProduct("Ghost Coat", "jacket", types.FitRegular, types.GenderMen, nil, nil)

	gemini := &scriptedGemini{size: &types.SizeRecommendation{RecommendedSize: "M", FitType: types.FitRegular}}
	svc := newTestRecommendationService(t, gemini, fx, &fakeRecRepo{})

	scored, err := svc.RecommendProducts(context.Background(), testScan().Measurements(),
		types.ToneIntermediate, types.UndertoneWarm, types.GenderMen, types.ShapeRectangle, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(scored) != 3 {
		t.Fatalf("got %d scored products, want 3 (out-of-stock product must be dropped)", len(scored))
	}
	for _, s := range scored {
		if s.Product.ID == noStock.ID {
			t.Fatalf("out-of-stock product %q was recommended", s.Product.Name)
		}
	}

	// base 5 + fit 15 + size 10 + color 10
	if scored[0].Product.ID != full.ID || scored[0].Priority != 40 {
		t.Fatalf("top = (%s, %d), want (%s, 40)", scored[0].Product.Name, scored[0].Priority, full.Name)
	}
	// base 5 + fit 15
	if scored[1].Product.ID != fitOnly.ID || scored[1].Priority != 20 {
		t.Fatalf("second = (%s, %d), want (%s, 20)", scored[1].Product.Name, scored[1].Priority, fitOnly.Name)
	}
	// base 5 only
	if scored[2].Product.ID != baseOnly.ID || scored[2].Priority != 5 {
		t.Fatalf("third = (%s, %d), want (%s, 5)", scored[2].Product.Name, scored[2].Priority, baseOnly.Name)
	}
}

func TestRecommendProducts_SizingFailurePropagates(t *testing.T) {
	fx := newCatalogFixture()
	fx.addProduct("Shirt", "shirt", types.FitRegular, types.GenderMen, []string{"M"}, []string{"Terracotta"})

	gemini := &scriptedGemini{sizeErr: ErrInvalidSelection}
	svc := newTestRecommendationService(t, gemini, fx, &fakeRecRepo{})

	_, err := svc.RecommendProducts(context.Background(), testScan().Measurements(),
		types.ToneIntermediate, types.UndertoneWarm, types.GenderMen, types.ShapeRectangle, 0)
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestRecommendColors_DeterministicPalette(t *testing.T) {
	svc := newTestRecommendationService(t, &scriptedGemini{}, newCatalogFixture(), &fakeRecRepo{})

	colors, err := svc.RecommendColors(types.ToneDark, types.UndertoneCool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := tonePalettes[tonePair{types.ToneDark, types.UndertoneCool}]
	if len(colors) != len(want) || colors[0] != want[0] {
		t.Fatalf("colors = %v, want palette %v", colors, want)
	}

	// Missing undertone defaults to warm instead of failing.
	colors, err = svc.RecommendColors(types.ToneTan, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if colors[0] != tonePalettes[tonePair{types.ToneTan, types.UndertoneWarm}][0] {
		t.Fatalf("empty undertone did not default to warm")
	}
}

func TestGetMatchingProductVariants_PrefersRecommendedColor(t *testing.T) {
	fx := newCatalogFixture()
	perfect := fx.addProduct("Terracotta Shirt", "shirt", types.FitRegular, types.GenderMen,
		[]string{"M"}, []string{"Neon Green", "Terracotta"})
	sizeOnly := fx.addProduct("Green Shirt", "shirt", types.FitRegular, types.GenderMen,
		[]string{"M"}, []string{"Neon Green"})
	fx.addProduct("Wrong Size Shirt", "shirt", types.FitRegular, types.GenderMen,
		[]string{"S"}, []string{"Terracotta"})

	gemini := &scriptedGemini{size: &types.SizeRecommendation{RecommendedSize: "M", FitType: types.FitRegular}}
	svc := newTestRecommendationService(t, gemini, fx, &fakeRecRepo{})

	matches, err := svc.GetMatchingProductVariants(context.Background(), testScan(), types.GenderMen, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2 (no M variant in stock for the third product)", len(matches))
	}
	if matches[0].Product.ID != perfect.ID || matches[0].MatchType != MatchPerfect {
		t.Fatalf("first match = (%s, %s), want (%s, %s)", matches[0].Product.Name, matches[0].MatchType, perfect.Name, MatchPerfect)
	}
	if matches[0].Variant.Color == nil || matches[0].Variant.Color.Name != "Terracotta" {
		t.Fatalf("perfect match did not pick the recommended color variant")
	}
	if matches[1].Product.ID != sizeOnly.ID || matches[1].MatchType != MatchSize {
		t.Fatalf("second match = (%s, %s), want (%s, %s)", matches[1].Product.Name, matches[1].MatchType, sizeOnly.Name, MatchSize)
	}
	for _, m := range matches {
		if m.RecommendedSize != "M" {
			t.Fatalf("match size = %q, want M", m.RecommendedSize)
		}
	}
}

func TestGenerateRecommendationsForScan_DedupesAndCaps(t *testing.T) {
	fx := newCatalogFixture()
	// Unisex products appear in every gender bucket and must be deduplicated.
	fx.addProduct("Unisex Hoodie", "jacket", types.FitRegular, types.GenderUnisex,
		[]string{"M"}, []string{"Terracotta"})
	for i := 0; i < 12; i++ {
		fx.addProduct("Mens Shirt "+string(rune('A'+i)), "shirt", types.FitSlim, types.GenderMen,
			[]string{"M"}, []string{"Neon Green"})
	}

	gemini := &scriptedGemini{size: &types.SizeRecommendation{RecommendedSize: "M", FitType: types.FitRegular}}
	recRepo := &fakeRecRepo{}
	svc := newTestRecommendationService(t, gemini, fx, recRepo)

	recs, err := svc.GenerateRecommendationsForScan(context.Background(), testScan())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recs) != maxRecommendationsPerScan {
		t.Fatalf("got %d recommendations, want cap %d", len(recs), maxRecommendationsPerScan)
	}
	seen := map[uuid.UUID]bool{}
	for _, rec := range recs {
		if seen[rec.ProductID] {
			t.Fatalf("product %s recommended twice", rec.ProductID)
		}
		seen[rec.ProductID] = true
		if rec.RecommendedSize != "M" {
			t.Fatalf("recommended size = %q, want M", rec.RecommendedSize)
		}
		if rec.RecommendedFit != types.FitRegular {
			t.Fatalf("recommended fit = %q, want regular", rec.RecommendedFit)
		}
	}
	// Highest-priority product (fit + size + color) must rank first.
	if recs[0].Priority < recs[len(recs)-1].Priority {
		t.Fatalf("recommendations not ordered by priority: first %d < last %d", recs[0].Priority, recs[len(recs)-1].Priority)
	}
	if len(recRepo.created) != len(recs) {
		t.Fatalf("persisted %d rows, want %d", len(recRepo.created), len(recs))
	}
}
