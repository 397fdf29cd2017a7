package validation

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/creative-compliance/internal/faces"
	"github.com/jonathan/creative-compliance/internal/llm"
	"github.com/jonathan/creative-compliance/internal/types"
)

var story = types.CanvasSize{W: 1080, H: 1920}

// compliantPage passes every rule on a 1080x1920 social canvas
func compliantPage() types.Page {
	return types.Page{
		ID:         "page-1",
		Background: "#FFFFFF",
		Children: []types.Element{
			{ID: "headline", Type: "text", Text: "Summer Deals", X: 100, Y: 300, Width: 800, Height: 60, FontSize: 48, FontWeight: "bold", Fill: "#000000"},
			{ID: "price", Type: "text", Text: "£2.50", X: 100, Y: 400, Width: 200, Height: 50, FontSize: 32, FontWeight: "bold", Fill: "#000000"},
			{ID: "packshot-1", Type: "image", X: 500, Y: 500, Width: 200, Height: 200},
			{ID: "cta", Type: "text", Text: "Shop now", X: 100, Y: 1000, Width: 300, Height: 40, FontSize: 24, Fill: "#000000"},
			{ID: "tag", Type: "text", Text: "Available at Tesco", X: 100, Y: 1500, Width: 400, Height: 30, FontSize: 20, Fill: "#000000"},
		},
	}
}

func request(pages ...types.Page) *types.ValidationRequest {
	return &types.ValidationRequest{
		Pages:   pages,
		Canvas:  story,
		Options: types.Options{FormatType: "social"},
	}
}

func rulesOf(vs []types.Violation) map[types.RuleID]int {
	out := map[types.RuleID]int{}
	for _, v := range vs {
		out[v.Rule]++
	}
	return out
}

func TestValidate_CompliantDesign(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := NewEngine(nil, WithClock(func() time.Time { return fixed }))

	report, err := engine.Validate(context.Background(), request(compliantPage()))
	require.NoError(t, err)

	assert.True(t, report.Compliant)
	assert.Equal(t, 100, report.Score)
	assert.Empty(t, report.Violations)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, types.Summary{}, report.Summary)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "social", report.FormatType)
	assert.Equal(t, fixed, report.CreatedAt)
}

func TestValidate_ScenarioA(t *testing.T) {
	engine := NewEngine(nil)
	req := request(types.Page{Children: []types.Element{
		{ID: "t1", Type: "text", Text: "Hello", FontSize: 12, X: 100, Y: 400},
	}})

	report, err := engine.Validate(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, report.Compliant)
	hard := rulesOf(report.Violations)
	assert.Equal(t, 1, hard[types.RuleMinFontSize])
	assert.Equal(t, 1, hard[types.RuleMissingTag])
	assert.Equal(t, 1, hard[types.RuleMissingHeadline])
}

func TestValidate_ScenarioB_SafeZone(t *testing.T) {
	page := compliantPage()
	page.Children = append(page.Children, types.Element{ID: "top", Type: "text", Text: "Hi", X: 900, Y: 0, Height: 50, FontSize: 20})

	report, err := NewEngine(nil).Validate(context.Background(), request(page))
	require.NoError(t, err)

	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, types.RuleSafeZone, v.Rule)
	assert.Equal(t, "top", v.Zone)
	assert.GreaterOrEqual(t, *v.Distance, 150.0)
	assert.Equal(t, 85, report.Score)
}

func TestValidate_ScenarioC_Overlap(t *testing.T) {
	page := compliantPage()
	page.Children = append(page.Children,
		types.Element{ID: "a", Type: "image", X: 100, Y: 1100, Width: 200, Height: 100},
		types.Element{ID: "b", Type: "image", X: 200, Y: 1100, Width: 200, Height: 100},
	)

	report, err := NewEngine(nil).Validate(context.Background(), request(page))
	require.NoError(t, err)

	assert.True(t, report.Compliant)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, types.RuleOverlap, report.Warnings[0].Rule)
	assert.InDelta(t, 50.0, *report.Warnings[0].OverlapPercent, 1e-9)
	assert.Equal(t, 95, report.Score)
}

func TestValidate_ScenarioD_BlockedKeywords(t *testing.T) {
	page := compliantPage()
	page.Children[0].Text = "Win a free prize!"

	report, err := NewEngine(nil).Validate(context.Background(), request(page))
	require.NoError(t, err)

	var keywords []string
	for _, v := range report.Violations {
		if v.Rule == types.RuleBlockedKeyword {
			keywords = append(keywords, v.Keyword)
			assert.False(t, v.AutoFixable)
			assert.NotEmpty(t, v.Suggestion)
		}
	}
	assert.ElementsMatch(t, []string{"win", "prize"}, keywords)
}

func TestValidate_ScenarioE_Contrast(t *testing.T) {
	page := compliantPage()
	page.Children[0].Fill = "#CCCCCC"

	report, err := NewEngine(nil).Validate(context.Background(), request(page))
	require.NoError(t, err)

	require.Len(t, report.Warnings, 1)
	v := report.Warnings[0]
	assert.Equal(t, types.RuleContrast, v.Rule)
	require.True(t, v.AutoFixable)
	assert.Equal(t, types.ColorFix{Property: "fill", Color: "#000000"}, v.AutoFix.Fix)
}

func TestValidate_ScenarioF_ClubcardDate(t *testing.T) {
	page := compliantPage()
	page.Children[1].Text = "Clubcard Price"

	report, err := NewEngine(nil).Validate(context.Background(), request(page))
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, types.RuleClubcardDate, report.Violations[0].Rule)
	assert.False(t, report.Violations[0].AutoFixable)

	page.Children[1].Text = "Clubcard Price Ends 12/12"
	report, err = NewEngine(nil).Validate(context.Background(), request(page))
	require.NoError(t, err)
	assert.True(t, report.Compliant)
}

func TestValidate_EmptyInputs(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name  string
		pages []types.Page
	}{
		{"no pages", nil},
		{"empty page", []types.Page{{}}},
		{"several empty pages", []types.Page{{}, {}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := engine.Validate(context.Background(), request(tt.pages...))
			require.NoError(t, err)

			for _, v := range report.All() {
				assert.Empty(t, v.ElementID, "only document-level violations expected, got %s", v.Rule)
			}
			assert.False(t, report.Compliant)
			assert.Equal(t, report.Summary.Total, len(report.Violations)+len(report.Warnings))
		})
	}
}

func TestValidate_MultiplePages(t *testing.T) {
	second := types.Page{Children: []types.Element{
		{ID: "small", Type: "text", Text: "tiny print", FontSize: 8, X: 100, Y: 600},
	}}

	report, err := NewEngine(nil).Validate(context.Background(), request(compliantPage(), second))
	require.NoError(t, err)

	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, types.RuleMinFontSize, v.Rule)
	require.NotNil(t, v.PageIndex)
	assert.Equal(t, 1, *v.PageIndex)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	req := request(types.Page{Children: []types.Element{{ID: "t", Type: "text", Text: "x"}}})

	_, err := NewEngine(nil).Validate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, types.Element{ID: "t", Type: "text", Text: "x"}, req.Pages[0].Children[0])
}

func TestValidate_InvalidInput(t *testing.T) {
	engine := NewEngine(nil)

	_, err := engine.Validate(context.Background(), nil)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)

	req := request(compliantPage())
	req.Canvas = types.CanvasSize{W: 0, H: 1920}
	_, err = engine.Validate(context.Background(), req)
	require.ErrorAs(t, err, &inputErr)
}

func TestValidateJSON(t *testing.T) {
	engine := NewEngine(nil)

	report, err := engine.ValidateJSON(context.Background(), []byte(`{
		"pages": [{"children": [{"id": "t1", "type": "text", "text": "Hello", "fontSize": 12, "x": 100, "y": 400}]}],
		"canvas": {"w": 1080, "h": 1920},
		"options": {"formatType": "social"}
	}`))
	require.NoError(t, err)
	assert.False(t, report.Compliant)
	assert.Equal(t, 1, rulesOf(report.Violations)[types.RuleMinFontSize])
}

func TestValidateJSON_NumericTokens(t *testing.T) {
	engine := NewEngine(nil)

	report, err := engine.ValidateJSON(context.Background(), []byte(`{
		"pages": [{"children": [
			{"id": "v", "type": "text", "text": "£2", "fontSize": 30, "fontWeight": 700, "x": 100, "y": 400},
			{"id": 42, "type": "text", "text": "Hello", "fontSize": 12, "x": 100, "y": 600}
		]}],
		"canvas": {"w": 1080, "h": 1920},
		"options": {"formatType": "social"}
	}`))
	require.NoError(t, err)

	assert.Zero(t, rulesOf(report.All())[types.RuleValueTiles], "numeric weight 700 counts as bold")
	var fontIDs []string
	for _, v := range report.Violations {
		if v.Rule == types.RuleMinFontSize {
			fontIDs = append(fontIDs, v.ElementID)
		}
	}
	assert.Equal(t, []string{"42"}, fontIDs)
}

func TestValidateJSON_ContractViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"pages not a list", `{"pages": {"children": []}, "canvas": {"w": 1080, "h": 1920}}`},
		{"missing canvas", `{"pages": []}`},
		{"children not a list", `{"pages": [{"children": "none"}], "canvas": {"w": 1080, "h": 1920}}`},
		{"malformed", `{"pages": [`},
	}

	engine := NewEngine(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := engine.ValidateJSON(context.Background(), []byte(tt.doc))
			assert.Nil(t, report)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.NotEmpty(t, inputErr.Fields)
		})
	}
}

func TestScore(t *testing.T) {
	cfg := NewEngine(nil).Config()

	tests := []struct {
		hard, nonHard int
		want          int
	}{
		{0, 0, 100},
		{1, 0, 85},
		{0, 1, 95},
		{2, 3, 55},
		{7, 0, 0},
		{10, 10, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.hard, tt.nonHard, cfg), "hard=%d nonHard=%d", tt.hard, tt.nonHard)
	}
}

func TestScore_Monotonic(t *testing.T) {
	cfg := NewEngine(nil).Config()
	for hard := 0; hard < 10; hard++ {
		for nonHard := 0; nonHard < 25; nonHard++ {
			s := Score(hard, nonHard, cfg)
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
			assert.LessOrEqual(t, Score(hard+1, nonHard, cfg), s)
			assert.LessOrEqual(t, Score(hard, nonHard+1, cfg), s)
		}
	}
}

func TestBuildReport_Partitions(t *testing.T) {
	cfg := NewEngine(nil).Config()
	violations := []types.Violation{
		{Rule: types.RuleSafeZone, Severity: types.SeverityHard},
		{Rule: types.RuleOverlap, Severity: types.SeverityWarning},
		{Rule: types.RuleCTA, Severity: types.SeverityInfo},
		{Rule: types.RuleMissingTag, Severity: types.SeverityHard},
	}

	report := BuildReport(violations, cfg)
	assert.False(t, report.Compliant)
	assert.Len(t, report.Violations, 2)
	assert.Len(t, report.Warnings, 2)
	assert.Equal(t, types.Summary{Total: 4, Hard: 2, Warnings: 1, Info: 1}, report.Summary)
	assert.Equal(t, 60, report.Score)
	for _, v := range report.Violations {
		assert.True(t, v.IsHard())
	}
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func pageWithImages(t *testing.T, srcs ...string) types.Page {
	page := compliantPage()
	for i, src := range srcs {
		page.Children = append(page.Children, types.Element{
			ID: "photo-" + string(rune('a'+i)), Type: "image", Src: src,
			X: 750, Y: 800 + float64(i)*120, Width: 100, Height: 100,
		})
	}
	return page
}

func TestValidate_FaceDetection(t *testing.T) {
	var calls atomic.Int32
	cache := faces.NewCache(func(ctx context.Context) (faces.Detector, error) {
		return faces.DetectorFunc(func(ctx context.Context, img llm.Image) ([]faces.Face, error) {
			calls.Add(1)
			return []faces.Face{{X: 1, Y: 1, Width: 5, Height: 5, Confidence: 0.9}, {X: 10, Y: 10, Width: 5, Height: 5, Confidence: 0.8}}, nil
		}), nil
	})
	engine := NewEngine(nil, WithFaceDetection(cache))

	src := pngDataURL(t, 20, 20)
	req := request(pageWithImages(t, src, "https://cdn.example.com/remote.png", src))
	req.Options.EnableFaceDetection = true

	report, err := engine.Validate(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, report.Compliant)
	require.Len(t, report.Warnings, 2)
	assert.Equal(t, "photo-a", report.Warnings[0].ElementID)
	assert.Equal(t, "photo-c", report.Warnings[1].ElementID)
	for _, v := range report.Warnings {
		assert.Equal(t, types.RulePeopleDetected, v.Rule)
		assert.Equal(t, types.SeverityWarning, v.Severity)
		require.NotNil(t, v.Faces)
		assert.Equal(t, 2, *v.Faces)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestValidate_FaceDetectionDisabled(t *testing.T) {
	var loads atomic.Int32
	cache := faces.NewCache(func(ctx context.Context) (faces.Detector, error) {
		loads.Add(1)
		return nil, errors.New("should not load")
	})
	engine := NewEngine(nil, WithFaceDetection(cache))

	report, err := engine.Validate(context.Background(), request(pageWithImages(t, pngDataURL(t, 10, 10))))
	require.NoError(t, err)
	assert.True(t, report.Compliant)
	assert.Empty(t, report.Warnings)
	assert.Zero(t, loads.Load())
}

func TestValidate_FaceDetectionFailuresAreOmitted(t *testing.T) {
	tests := []struct {
		name   string
		loader faces.Loader
	}{
		{
			name: "load error",
			loader: func(ctx context.Context) (faces.Detector, error) {
				return nil, errors.New("model unavailable")
			},
		},
		{
			name: "inference error",
			loader: func(ctx context.Context) (faces.Detector, error) {
				return faces.DetectorFunc(func(ctx context.Context, img llm.Image) ([]faces.Face, error) {
					return nil, errors.New("quota exceeded")
				}), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(nil, WithFaceDetection(faces.NewCache(tt.loader)))
			req := request(pageWithImages(t, pngDataURL(t, 10, 10)))
			req.Options.EnableFaceDetection = true

			report, err := engine.Validate(context.Background(), req)
			require.NoError(t, err)
			assert.True(t, report.Compliant)
			assert.Equal(t, 100, report.Score)
			assert.Empty(t, report.Warnings)
		})
	}
}

func TestValidate_FaceDetectionWithoutDetector(t *testing.T) {
	req := request(pageWithImages(t, pngDataURL(t, 10, 10)))
	req.Options.EnableFaceDetection = true

	report, err := NewEngine(nil).Validate(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
}

func TestValidate_DefaultFormat(t *testing.T) {
	engine := NewEngine(nil, WithDefaultFormat("story"))

	req := request(compliantPage())
	req.Options.FormatType = ""
	report, err := engine.Validate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "story", report.FormatType)
	assert.Empty(t, req.Options.FormatType, "request is not modified")

	report, err = engine.Validate(context.Background(), request(compliantPage()))
	require.NoError(t, err)
	assert.Equal(t, "social", report.FormatType, "an explicit format wins")
}

func TestValidate_FaceDetectionRemoteImages(t *testing.T) {
	cache := faces.NewCache(func(ctx context.Context) (faces.Detector, error) {
		return faces.DetectorFunc(func(ctx context.Context, img llm.Image) ([]faces.Face, error) {
			return []faces.Face{{X: 1, Y: 1, Width: 5, Height: 5, Confidence: 0.9}}, nil
		}), nil
	})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	fetcher := faces.ImageFetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		return buf.Bytes(), nil
	})
	engine := NewEngine(nil, WithFaceDetection(cache), WithImageFetcher(fetcher))

	req := request(pageWithImages(t, "https://cdn.example.com/remote.png", "/relative.png"))
	req.Options.EnableFaceDetection = true

	report, err := engine.Validate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "photo-a", report.Warnings[0].ElementID)
	assert.Equal(t, types.RulePeopleDetected, report.Warnings[0].Rule)
}
