package services_test

import (
	"context"
	"testing"

	"reelcast/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithArticle(ctx, "why-go")
	ctx = services.WithSceneIndex(ctx, 2)
	ctx = services.WithRequestID(ctx, "req-123")

	if slug, ok := services.ArticleFromContext(ctx); !ok || slug != "why-go" {
		t.Fatalf("unexpected article: %v %v", slug, ok)
	}
	if index, ok := services.SceneIndexFromContext(ctx); !ok || index != 2 {
		t.Fatalf("unexpected scene index: %v %v", index, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithArticle(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.ArticleFromContext(ctx); ok {
		t.Fatal("expected no article value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id value")
	}
	if _, ok := services.SceneIndexFromContext(ctx); ok {
		t.Fatal("expected no scene index value")
	}
}
