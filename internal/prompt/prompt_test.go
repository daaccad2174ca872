package prompt

import (
	"strings"
	"testing"

	"github.com/spigell/outfit-advisor/internal/outfit"
)

func TestForRecommendationTop(t *testing.T) {
	p, err := ForRecommendation(outfit.ClothingTop, outfit.GenderMale, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"男性上衣", "請推薦4種與之搭配的下身類衣物", `"褲管"`, `"裙擺"`, "[風格名稱]"} {
		if !strings.Contains(p, want) {
			t.Fatalf("expected prompt to contain %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, `"領子"`) {
		t.Fatalf("did not expect top attributes when recommending bottoms:\n%s", p)
	}
}

func TestForRecommendationBottomDefaultCount(t *testing.T) {
	p, err := ForRecommendation(outfit.ClothingBottom, outfit.GenderFemale, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"女性下身類衣物", "請推薦3種與之搭配的上衣", `"領子"`, `"袖子"`} {
		if !strings.Contains(p, want) {
			t.Fatalf("expected prompt to contain %q:\n%s", want, p)
		}
	}
}

func TestForImageSearchUsesOwnAttributes(t *testing.T) {
	p, err := ForImageSearch(outfit.ClothingTop, outfit.GenderFemale)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(p, "女性上衣") || !strings.Contains(p, `"領子"`) || !strings.Contains(p, "[衣物描述]") {
		t.Fatalf("unexpected image search prompt:\n%s", p)
	}
}

func TestForTextSearch(t *testing.T) {
	p, err := ForTextSearch(outfit.ClothingBottom, outfit.GenderMale, "  黑色\n寬褲 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(p, "使用者的需求為：黑色 寬褲。") || !strings.Contains(p, `"褲管"`) {
		t.Fatalf("unexpected text search prompt:\n%s", p)
	}

	if _, err := ForTextSearch(outfit.ClothingTop, outfit.GenderMale, " \n "); err == nil {
		t.Fatal("expected error for empty request")
	}

	long, err := ForTextSearch(outfit.ClothingTop, outfit.GenderMale, strings.Repeat("字", MaxUserRequestRunes+20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(long, strings.Repeat("字", MaxUserRequestRunes+1)) {
		t.Fatal("expected request to be capped")
	}
}
