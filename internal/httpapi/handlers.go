package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"reelcast/internal/captions"
	"reelcast/internal/timeline"
)

type tokenPayload struct {
	Text    string `json:"text"`
	StartMs int64  `json:"startMs" validate:"gte=0"`
	EndMs   int64  `json:"endMs" validate:"gtefield=StartMs"`
}

type mergeRequest struct {
	Tokens []tokenPayload `json:"tokens" validate:"dive"`
}

type mergeResponse struct {
	Tokens []captions.MergedToken `json:"tokens"`
}

type captionsRequest struct {
	Narration     string         `json:"narration"`
	Tokens        []tokenPayload `json:"tokens" validate:"dive"`
	PageCombineMs *int64         `json:"pageCombineMs" validate:"omitempty,gte=0"`
}

type captionsResponse struct {
	Captions []captions.Entry `json:"captions"`
	Pages    []captions.Page  `json:"pages"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) mergeTokens(c *fiber.Ctx) error {
	var req mergeRequest
	if err := s.parse(c, &req); err != nil {
		return err
	}
	return c.JSON(mergeResponse{Tokens: captions.Merge(rawTokens(req.Tokens))})
}

func (s *Server) alignCaptions(c *fiber.Ctx) error {
	var req captionsRequest
	if err := s.parse(c, &req); err != nil {
		return err
	}
	combine := s.cfg.Captions.PageCombineMs
	if req.PageCombineMs != nil {
		combine = *req.PageCombineMs
	}
	entries := s.cfg.Aligner().Align(req.Narration, captions.Merge(rawTokens(req.Tokens)))
	return c.JSON(captionsResponse{
		Captions: entries,
		Pages:    captions.Paginate(entries, combine),
	})
}

func (s *Server) layoutTimeline(c *fiber.Ctx) error {
	sb, err := timeline.DecodeStoryboard(bytes.NewReader(c.Body()))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	format := sb.Format
	if override := strings.ToLower(strings.TrimSpace(c.Query("format"))); override != "" {
		format = timeline.Format(override)
	}
	if format == "" {
		format = s.cfg.VideoFormat()
	}
	if !slices.Contains(timeline.Formats(), format) {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
	return c.JSON(s.cfg.Timeline().Layout(sb.Scenes, format))
}

func (s *Server) parse(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := s.validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, strings.Join(formatValidationErrors(err), "; "))
	}
	return nil
}

func formatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		message := fmt.Sprintf("field '%s' failed on the '%s' tag", fieldErr.Namespace(), fieldErr.Tag())
		if fieldErr.Param() != "" {
			message = fmt.Sprintf("%s (%s)", message, fieldErr.Param())
		}
		messages = append(messages, message)
	}
	return messages
}

func rawTokens(payload []tokenPayload) []captions.RawToken {
	tokens := make([]captions.RawToken, len(payload))
	for i, token := range payload {
		tokens[i] = captions.RawToken{Text: token.Text, StartMs: token.StartMs, EndMs: token.EndMs}
	}
	return tokens
}
