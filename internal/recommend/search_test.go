package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/outfit-advisor/internal/outfit"
)

func TestDescribeImage(t *testing.T) {
	ch := &fakeChat{reachable: true, reply: `[{"styleName":"休閒","description":"白色T恤","item":{"顏色":"白色","領子":"圓領"}}]`}
	svc := newService(&fakeStore{}, ch)

	drafts, err := svc.DescribeImage(context.Background(), SearchRequest{
		ImageURL: "https://cdn/a.png", Gender: outfit.GenderFemale, ClothingType: outfit.ClothingTop,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Item["領子"] != "圓領" {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}
	if ch.images[0] != "https://cdn/a.png" || ch.models[0] != "gpt-4o" {
		t.Fatalf("unexpected call: %v %v", ch.images, ch.models)
	}

	if _, err := svc.DescribeImage(context.Background(), SearchRequest{Gender: outfit.GenderFemale, ClothingType: outfit.ClothingTop}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest without image, got %v", err)
	}
}

func TestDescribeText(t *testing.T) {
	ch := &fakeChat{reachable: true, reply: `[{"styleName":"正式","description":"黑色西裝褲","item":{"顏色":"黑色"}}]`}
	svc := newService(&fakeStore{}, ch)

	drafts, err := svc.DescribeText(context.Background(), SearchRequest{
		Text: "  想要一件\n黑色的西裝褲 ", Gender: outfit.GenderMale, ClothingType: outfit.ClothingBottom,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 1 || drafts[0].StyleName != "正式" {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}
	if ch.images[0] != "" {
		t.Fatalf("expected no image, got %q", ch.images[0])
	}
	if !strings.Contains(ch.prompts[0], "想要一件 黑色的西裝褲") {
		t.Fatalf("expected request in prompt, got %q", ch.prompts[0])
	}

	if _, err := svc.DescribeText(context.Background(), SearchRequest{Text: "   ", Gender: outfit.GenderMale, ClothingType: outfit.ClothingBottom}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty text, got %v", err)
	}
}

func TestAttachResults(t *testing.T) {
	st := &fakeStore{}
	svc := newService(st, &fakeChat{})

	ids, err := svc.AttachResults(context.Background(), 5, []ItemMatch{{ItemID: "A1", Distance: 0.1}, {ItemID: "B2", Distance: 0.3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 100 || len(st.results) != 2 || st.results[1].SuggestionID != 5 {
		t.Fatalf("unexpected results: %v %+v", ids, st.results)
	}

	if _, err := svc.AttachResults(context.Background(), 5, []ItemMatch{{ItemID: ""}}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty item id, got %v", err)
	}
	if _, err := svc.AttachResults(context.Background(), 0, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing suggestion, got %v", err)
	}
}
