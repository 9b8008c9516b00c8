package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quietmindco/engram/pkg/eventstream"
	"github.com/quietmindco/engram/pkg/storage"
)

// handleDueReviews returns items due for review, most overdue first.
func (s *Server) handleDueReviews(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	items, err := s.services.Learning.DueItems(c.Context(), time.Now(), limit)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"count": len(items),
		"items": items,
	})
}

type recordReviewRequest struct {
	ItemID     int64 `json:"item_id"`
	Correct    bool  `json:"correct"`
	Confidence int   `json:"confidence"`
}

// handleRecordReview applies one review outcome and returns the updated item
// with its new due date.
func (s *Server) handleRecordReview(c *fiber.Ctx) error {
	var req recordReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.ItemID <= 0 {
		return fail(c, fiber.StatusBadRequest, "item_id is required")
	}

	item, err := s.services.Learning.RecordReview(c.Context(), req.ItemID, req.Correct, req.Confidence)
	if err != nil {
		return s.domainError(c, err)
	}

	s.announce(c.Context(), eventstream.NewEvent(eventstream.EventTypeReviewRecorded, "", map[string]any{
		"item_id": item.ID,
		"correct": req.Correct,
	}))

	return c.JSON(item)
}

type addItemRequest struct {
	SkillID int64    `json:"skill_id"`
	Type    string   `json:"type,omitempty"`
	Prompt  string   `json:"prompt"`
	Answer  string   `json:"answer"`
	Tags    []string `json:"tags,omitempty"`
}

// handleAddItem creates a learning item. Fresh items are due immediately.
func (s *Server) handleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.SkillID <= 0 {
		return fail(c, fiber.StatusBadRequest, "skill_id is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return fail(c, fiber.StatusBadRequest, "prompt is required")
	}

	itemType := storage.ItemType(req.Type)
	if itemType == "" {
		itemType = storage.ItemTypeQA
	}

	item, err := s.services.Learning.AddItem(c.Context(), req.SkillID, itemType, req.Prompt, req.Answer, req.Tags)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// handleProgression reports a skill's evidence-based level, recounted from
// completed challenges on every call.
func (s *Server) handleProgression(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := s.services.Challenges.SkillProgression(c.Context(), id)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(progress)
}
