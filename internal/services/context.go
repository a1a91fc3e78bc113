package services

import "context"

type contextKey string

const (
	articleKey    contextKey = "article"
	sceneIndexKey contextKey = "scene_index"
	requestIDKey  contextKey = "request_id"
)

// WithArticle annotates context with the storyboard slug being processed.
func WithArticle(ctx context.Context, slug string) context.Context {
	if slug == "" {
		return ctx
	}
	return context.WithValue(ctx, articleKey, slug)
}

// ArticleFromContext returns the storyboard slug if present.
func ArticleFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(articleKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSceneIndex annotates context with the zero-based scene position.
func WithSceneIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, sceneIndexKey, index)
}

// SceneIndexFromContext extracts the scene position if present.
func SceneIndexFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(sceneIndexKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
