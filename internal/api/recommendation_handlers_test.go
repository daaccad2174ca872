package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/outfit-advisor/internal/outfit"
	"github.com/spigell/outfit-advisor/internal/recommend"
	"github.com/spigell/outfit-advisor/internal/supabase"
)

func TestCreateUpload(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, body := env.do(t, http.MethodPost, "/api/v1/uploads", map[string]string{"image": "data:image/png;base64,aGVsbG8="}, testToken)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got uploadResponse
	decodeData(t, body, &got)
	assert.Equal(t, int64(5), got.UploadID)
	assert.Equal(t, "https://cdn/image-1", got.ImageURL)
	assert.Equal(t, []string{testToken}, env.store.tokens)
}

func TestCreateUploadValidation(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, body := env.do(t, http.MethodPost, "/api/v1/uploads", map[string]string{"image": "hello"}, testToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, map[string]any{"image": "must start with data:image/"}, body.Details)

	rr, _ = env.do(t, http.MethodPost, "/api/v1/uploads", map[string]string{"image": "data:image/gif;base64,R0lG"}, testToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, body = env.do(t, http.MethodPost, "/api/v1/uploads", "{not json", testToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, map[string]any{"body": "must be valid JSON"}, body.Details)
}

func TestCreateUploadMissingBucket(t *testing.T) {
	env := setupTestServer(t, Config{})
	env.store.imageErr = &supabase.APIError{Status: http.StatusNotFound, Code: "Bucket not found", Message: "Bucket not found"}

	rr, body := env.do(t, http.MethodPost, "/api/v1/uploads", map[string]string{"image": "data:image/png;base64,aGVsbG8="}, testToken)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "backend request failed", body.Error)
}

func TestCreateUploadBodyTooLarge(t *testing.T) {
	env := setupTestServer(t, Config{MaxBodyBytes: 64})

	image := "data:image/png;base64," + strings.Repeat("A", 256)
	rr, body := env.do(t, http.MethodPost, "/api/v1/uploads", map[string]string{"image": image}, testToken)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, "request body too large: limit is 64 bytes", body.Error)
	assert.Empty(t, env.store.tokens)
}

func TestValidateImage(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, body := env.do(t, http.MethodPost, "/api/v1/images/validate", map[string]string{"url": "https://cdn/a.png"}, testToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"url": "https://cdn/a.png", "valid": true}, body.Data)

	rr, body = env.do(t, http.MethodPost, "/api/v1/images/validate", map[string]string{"url": "https://cdn/a.gif"}, testToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, body.Data.(map[string]any)["valid"])
}

func TestCreateRecommendation(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, body := env.do(t, http.MethodPost, "/api/v1/recommendations", map[string]any{
		"upload_id":       7,
		"gender":          "female",
		"clothing_type":   "bottom",
		"model":           "gpt-4o-mini",
		"max_suggestions": 4,
	}, testToken)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got recommend.Recommendation
	decodeData(t, body, &got)
	assert.Equal(t, int64(30), got.ID)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, "街頭", got.Suggestions[0].StyleName)

	require.Len(t, env.rec.requests, 1)
	assert.Equal(t, recommend.Request{
		UserID:         "u-1",
		UploadID:       7,
		Gender:         outfit.GenderFemale,
		ClothingType:   outfit.ClothingBottom,
		Model:          "gpt-4o-mini",
		MaxSuggestions: 4,
	}, env.rec.requests[0])
}

func TestCreateRecommendationErrors(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		err  error
		want int
	}{
		{name: "bad gender", body: map[string]any{"image_url": "https://cdn/a.png", "gender": "robot", "clothing_type": "top"}, want: http.StatusBadRequest},
		{name: "too many suggestions", body: map[string]any{"image_url": "https://cdn/a.png", "gender": "male", "clothing_type": "top", "max_suggestions": 11}, want: http.StatusBadRequest},
		{name: "invalid request", body: map[string]any{"gender": "male", "clothing_type": "top"}, err: fmt.Errorf("%w: no image", recommend.ErrInvalidRequest), want: http.StatusBadRequest},
		{name: "unreachable image", body: map[string]any{"image_url": "https://cdn/x.png", "gender": "male", "clothing_type": "top"}, err: recommend.ErrImageUnreachable, want: http.StatusUnprocessableEntity},
		{name: "foreign upload", body: map[string]any{"upload_id": 3, "gender": "male", "clothing_type": "top"}, err: recommend.ErrForbidden, want: http.StatusForbidden},
		{name: "unusable reply", body: map[string]any{"image_url": "https://cdn/a.png", "gender": "male", "clothing_type": "top"}, err: fmt.Errorf("%w: empty reply", outfit.ErrBadReply), want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestServer(t, Config{})
			env.rec.err = tt.err

			rr, body := env.do(t, http.MethodPost, "/api/v1/recommendations", tt.body, testToken)

			assert.Equal(t, tt.want, rr.Code)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestCreateRecommendationRateLimited(t *testing.T) {
	env := setupTestServer(t, Config{RateLimit: 2})
	body := map[string]any{"image_url": "https://cdn/a.png", "gender": "male", "clothing_type": "top"}

	for i := 0; i < 2; i++ {
		rr, _ := env.do(t, http.MethodPost, "/api/v1/recommendations", body, testToken)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr, resp := env.do(t, http.MethodPost, "/api/v1/recommendations", body, testToken)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "too many requests, try again later", resp.Error)

	rr, _ = env.do(t, http.MethodGet, "/api/v1/recommendations", nil, testToken)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestListRecommendations(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, body := env.do(t, http.MethodGet, "/api/v1/recommendations", nil, testToken)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []outfit.RecommendationPreview
	decodeData(t, body, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "u-1", got[0].UserID)
	require.NotNil(t, got[0].Upload)
	assert.Equal(t, "https://cdn/a.png", got[0].Upload.ImageURL)
}

func TestGetRecommendation(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, body := env.do(t, http.MethodGet, "/api/v1/recommendations/1", nil, testToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var got recommendationDetail
	decodeData(t, body, &got)
	assert.Equal(t, int64(1), got.Recommendation.ID)
	assert.Equal(t, "gpt-4o", got.Param.Model)
	assert.Equal(t, "https://cdn/a.png", got.Upload.ImageURL)
	require.Len(t, got.Suggestions, 1)

	rr, _ = env.do(t, http.MethodGet, "/api/v1/recommendations/9", nil, testToken)
	assert.Equal(t, http.StatusNotFound, rr.Code, "other users' recommendations are hidden")

	rr, _ = env.do(t, http.MethodGet, "/api/v1/recommendations/404", nil, testToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, body = env.do(t, http.MethodGet, "/api/v1/recommendations/abc", nil, testToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, map[string]any{"id": "must be a positive integer"}, body.Details)
}

func TestGetSuggestions(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, body := env.do(t, http.MethodGet, "/api/v1/recommendations/1/suggestions", nil, testToken)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []outfit.Suggestion
	decodeData(t, body, &got)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].RecommendationID)
}

func TestResults(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, body := env.do(t, http.MethodGet, "/api/v1/suggestions/11/results", nil, testToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var results []outfit.Result
	decodeData(t, body, &results)
	require.Len(t, results, 1)
	assert.Equal(t, int64(11), results[0].SuggestionID)

	rr, body = env.do(t, http.MethodPost, "/api/v1/suggestions/11/results", map[string]any{
		"matches": []map[string]any{{"item_id": "A1", "distance": 0.1}, {"item_id": "B2", "distance": 0.4}},
	}, testToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	var ids map[string][]int64
	decodeData(t, body, &ids)
	assert.Equal(t, []int64{100, 101}, ids["ids"])
	assert.Equal(t, []recommend.ItemMatch{{ItemID: "A1", Distance: 0.1}, {ItemID: "B2", Distance: 0.4}}, env.rec.matches)

	rr, body = env.do(t, http.MethodPost, "/api/v1/suggestions/11/results", map[string]any{
		"matches": []map[string]any{{"distance": 0.1}},
	}, testToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, body.Details, "matches[0].item_id")
}

func TestResultsOfOtherUsersSuggestion(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, _ := env.do(t, http.MethodGet, "/api/v1/suggestions/19/results", nil, testToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = env.do(t, http.MethodPost, "/api/v1/suggestions/19/results", map[string]any{
		"matches": []map[string]any{{"item_id": "A1", "distance": 0.1}},
	}, testToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Nil(t, env.rec.matches, "nothing is attached to another user's suggestion")

	rr, _ = env.do(t, http.MethodGet, "/api/v1/suggestions/77/results", nil, testToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
