package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quietmindco/engram/pkg/storage"
)

var (
	dueReviewsToolName    = "due_reviews"
	dueReviewsDescription = "List learning items due for review right now, most overdue first."

	recordReviewToolName    = "record_review"
	recordReviewDescription = "Record the outcome of reviewing a learning item. Correct answers push the next review out by an interval sized from confidence (1-5); wrong answers schedule a retry in four hours."

	addLearningItemToolName    = "add_learning_item"
	addLearningItemDescription = "Add a learning item (question/answer pair, concept, or mistake) to a skill's review deck. New items are due immediately."
)

// DueReviewsInput represents the input arguments for the due_reviews tool.
type DueReviewsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum items to return (default: all due items)"`
}

// DueReviewsOutput carries the due items.
type DueReviewsOutput struct {
	Items []*storage.LearningItem `json:"items"`
	Count int                     `json:"count"`
}

func (s *Server) handleDueReviews(ctx context.Context, _ *mcp.CallToolRequest, input DueReviewsInput) (*mcp.CallToolResult, DueReviewsOutput, error) {
	items, err := s.config.Learning.DueItems(ctx, time.Now(), input.Limit)
	if err != nil {
		return errorResult[DueReviewsOutput](fmt.Sprintf("Failed to load due items: %v", err))
	}

	if items == nil {
		items = []*storage.LearningItem{}
	}

	return jsonResult(DueReviewsOutput{Items: items, Count: len(items)})
}

// RecordReviewInput represents the input arguments for the record_review tool.
type RecordReviewInput struct {
	ItemID     int64 `json:"item_id" jsonschema:"the learning item id"`
	Correct    bool  `json:"correct" jsonschema:"whether the answer was correct"`
	Confidence int   `json:"confidence,omitempty" jsonschema:"confidence 1-5, sizes the next interval for correct answers"`
}

// RecordReviewOutput carries the item with its updated schedule.
type RecordReviewOutput struct {
	Item *storage.LearningItem `json:"item"`
}

func (s *Server) handleRecordReview(ctx context.Context, _ *mcp.CallToolRequest, input RecordReviewInput) (*mcp.CallToolResult, RecordReviewOutput, error) {
	if input.ItemID <= 0 {
		return errorResult[RecordReviewOutput]("item_id is required")
	}

	item, err := s.config.Learning.RecordReview(ctx, input.ItemID, input.Correct, input.Confidence)
	if err != nil {
		return errorResult[RecordReviewOutput](fmt.Sprintf("Failed to record review: %v", err))
	}

	return jsonResult(RecordReviewOutput{Item: item})
}

// AddLearningItemInput represents the input arguments for the add_learning_item tool.
type AddLearningItemInput struct {
	SkillID int64    `json:"skill_id" jsonschema:"the skill this item belongs to"`
	Type    string   `json:"type,omitempty" jsonschema:"item type: qa, concept, or mistake (default: qa)"`
	Prompt  string   `json:"prompt" jsonschema:"the prompt or question"`
	Answer  string   `json:"answer,omitempty" jsonschema:"the expected answer"`
	Tags    []string `json:"tags,omitempty" jsonschema:"optional tags"`
}

// AddLearningItemOutput carries the created item.
type AddLearningItemOutput struct {
	Item *storage.LearningItem `json:"item"`
}

func (s *Server) handleAddLearningItem(ctx context.Context, _ *mcp.CallToolRequest, input AddLearningItemInput) (*mcp.CallToolResult, AddLearningItemOutput, error) {
	if input.SkillID <= 0 {
		return errorResult[AddLearningItemOutput]("skill_id is required")
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return errorResult[AddLearningItemOutput]("prompt is required")
	}

	itemType := storage.ItemType(input.Type)
	if itemType == "" {
		itemType = storage.ItemTypeQA
	}

	item, err := s.config.Learning.AddItem(ctx, input.SkillID, itemType, input.Prompt, input.Answer, input.Tags)
	if err != nil {
		return errorResult[AddLearningItemOutput](fmt.Sprintf("Failed to add item: %v", err))
	}

	return jsonResult(AddLearningItemOutput{Item: item})
}
