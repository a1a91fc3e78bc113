package logging

import (
	"strconv"
	"strings"
)

// FormatSubject builds the article/scene subject shown in console output.
// Scene positions are zero-based in context and shown one-based.
func FormatSubject(article, sceneIndex string) string {
	article = strings.TrimSpace(article)
	sceneIndex = strings.TrimSpace(sceneIndex)
	parts := make([]string, 0, 2)
	if article != "" {
		parts = append(parts, article)
	}
	if sceneIndex != "" {
		if n, err := strconv.Atoi(sceneIndex); err == nil {
			sceneIndex = strconv.Itoa(n + 1)
		}
		parts = append(parts, "scene "+sceneIndex)
	}
	return strings.Join(parts, " · ")
}
