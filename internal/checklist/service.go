package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tianea2160/discipline/internal/ai"
	"github.com/Tianea2160/discipline/internal/identity"
	"github.com/Tianea2160/discipline/internal/logger"
)

// ErrGenerationFailed reports that the model could not produce a usable
// checklist and the pipeline was configured to surface that instead of
// falling back.
var ErrGenerationFailed = errors.New("checklist generation failed")

const dateLayout = "2006-01-02"

// Service runs the generation pipeline: persist the request, call the model,
// parse its output, and record the outcome on the same row.
type Service struct {
	store     Store
	generator ai.Generator

	// fallbackOnError substitutes a fixed starter checklist when generation
	// fails; when false the failure is surfaced as ErrGenerationFailed.
	fallbackOnError bool
}

func NewService(store Store, generator ai.Generator, fallbackOnError bool) *Service {
	return &Service{
		store:           store,
		generator:       generator,
		fallbackOnError: fallbackOnError,
	}
}

// Generate produces a checklist for the request. The current user may be nil;
// the record is then unattributed.
func (s *Service) Generate(ctx context.Context, req Request, current *identity.User) (*Response, error) {
	targetDate := s.targetDate(req.Date)

	entry := Entry{
		UserID:     userIDOf(current),
		TargetDate: targetDate,
		Goal:       req.Goal,
		Status:     StatusPending,
		StartedAt:  time.Now(),
	}
	saved, err := s.store.Save(ctx, entry)
	if err != nil {
		return nil, err
	}
	logger.Info("checklist generation requested", map[string]any{
		"id":      saved.ID,
		"user_id": saved.UserID,
		"goal":    saved.Goal,
	})

	saved.Start()
	if err := s.store.Update(ctx, *saved); err != nil {
		return nil, err
	}

	response, genErr := s.generate(ctx, req, targetDate)
	if genErr != nil {
		logger.Error("checklist generation failed", map[string]any{
			"id":    saved.ID,
			"error": genErr.Error(),
		})
		saved.Fail(genErr.Error())
		if err := s.store.Update(ctx, *saved); err != nil {
			logger.Error("failed to record generation failure", map[string]any{
				"id":    saved.ID,
				"error": err.Error(),
			})
		}

		if !s.fallbackOnError {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, genErr)
		}
		return s.fallbackChecklist(req, targetDate), nil
	}

	itemsJSON, err := json.Marshal(response.Items)
	if err != nil {
		return nil, fmt.Errorf("checklist: marshal items: %w", err)
	}
	saved.Complete(string(itemsJSON))
	if err := s.store.Update(ctx, *saved); err != nil {
		return nil, err
	}

	logger.Info("checklist generation completed", map[string]any{
		"id":    saved.ID,
		"items": len(response.Items),
	})
	return response, nil
}

// ListForUser returns the user's completed checklists, newest first. Rows
// whose stored JSON no longer parses are skipped.
func (s *Service) ListForUser(ctx context.Context, current *identity.User) ([]Response, error) {
	entries, err := s.store.FindByUser(ctx, userIDOf(current))
	if err != nil {
		return nil, err
	}

	responses := make([]Response, 0, len(entries))
	for _, e := range entries {
		if !e.IsCompleted() || e.ChecklistJSON == "" {
			continue
		}
		var items []Item
		if err := json.Unmarshal([]byte(e.ChecklistJSON), &items); err != nil {
			logger.Error("stored checklist json unparseable", map[string]any{
				"id":    e.ID,
				"error": err.Error(),
			})
			continue
		}
		responses = append(responses, Response{
			Date:               e.TargetDate.Format(dateLayout),
			Goal:               e.Goal,
			Items:              items,
			EstimatedTotalTime: totalTime(items),
		})
	}
	return responses, nil
}

func (s *Service) generate(ctx context.Context, req Request, targetDate time.Time) (*Response, error) {
	prompt := buildPrompt(req, targetDate)

	completion, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	items, err := parseCompletion(completion)
	if err != nil {
		return nil, err
	}

	return &Response{
		Date:               targetDate.Format(dateLayout),
		Goal:               req.Goal,
		Items:              items,
		EstimatedTotalTime: totalTime(items),
	}, nil
}

func (s *Service) targetDate(raw string) time.Time {
	if raw != "" {
		if d, err := time.Parse(dateLayout, raw); err == nil {
			return d
		}
	}
	return time.Now().Truncate(24 * time.Hour)
}

func buildPrompt(req Request, targetDate time.Time) string {
	var b strings.Builder
	b.WriteString("You are an expert at building checklists that get goals done.\n")
	b.WriteString("Given:\n")
	fmt.Fprintf(&b, "- date: %s\n", targetDate.Format(dateLayout))
	fmt.Fprintf(&b, "- goal: %s\n", req.Goal)
	if strings.TrimSpace(req.Context) != "" {
		fmt.Fprintf(&b, "- extra context: %s\n", req.Context)
	}
	b.WriteString(`
Produce a one-day checklist as a JSON array of this shape:
[
  {
    "task": "concrete task",
    "description": "optional detail",
    "priority": "HIGH|MEDIUM|LOW",
    "estimatedTime": "e.g. 30m, 1h"
  }
]

Rules:
1. 3-7 actionable tasks
2. set priorities explicitly (HIGH: must, MEDIUM: important, LOW: optional)
3. each task concrete and measurable
4. realistic for a single day
5. respond with the JSON array only, no other text
`)
	return b.String()
}

// parseCompletion pulls the JSON array out of the completion (models tend to
// wrap it in prose or fences) and normalizes each element.
func parseCompletion(completion string) ([]Item, error) {
	start := strings.Index(completion, "[")
	end := strings.LastIndex(completion, "]")
	if start == -1 || end <= start {
		return nil, errors.New("checklist: no json array in completion")
	}

	var raw []map[string]any
	if err := json.Unmarshal([]byte(completion[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("checklist: invalid completion format: %w", err)
	}

	items := make([]Item, 0, len(raw))
	for _, entry := range raw {
		task, _ := entry["task"].(string)
		if task == "" {
			task = "unnamed task"
		}
		description, _ := entry["description"].(string)
		estimated, _ := entry["estimatedTime"].(string)

		items = append(items, Item{
			Task:          task,
			Description:   description,
			Priority:      normalizePriority(entry["priority"]),
			EstimatedTime: estimated,
		})
	}
	return items, nil
}

func normalizePriority(v any) Priority {
	s, _ := v.(string)
	switch strings.ToUpper(s) {
	case string(PriorityHigh):
		return PriorityHigh
	case string(PriorityLow):
		return PriorityLow
	default:
		return PriorityMedium
	}
}

func totalTime(items []Item) string {
	times := make([]string, 0, len(items))
	for _, item := range items {
		if item.EstimatedTime != "" {
			times = append(times, item.EstimatedTime)
		}
	}
	if len(times) == 0 {
		return "no time estimate"
	}
	return "estimated total: " + strings.Join(times, ", ")
}

func (s *Service) fallbackChecklist(req Request, targetDate time.Time) *Response {
	items := []Item{
		{
			Task:          "plan the goal in detail",
			Description:   fmt.Sprintf("break %q into concrete steps", req.Goal),
			Priority:      PriorityHigh,
			EstimatedTime: "30m",
		},
		{
			Task:          "gather what you need",
			Description:   "collect the materials or tools the goal requires",
			Priority:      PriorityMedium,
			EstimatedTime: "20m",
		},
		{
			Task:          "do the first step",
			Description:   "execute the first planned step",
			Priority:      PriorityHigh,
			EstimatedTime: "1h",
		},
	}
	return &Response{
		Date:               targetDate.Format(dateLayout),
		Goal:               req.Goal,
		Items:              items,
		EstimatedTotalTime: totalTime(items),
	}
}

func userIDOf(current *identity.User) string {
	if current == nil {
		return ""
	}
	return fmt.Sprint(current.ExternalID)
}
