package evaluation

import "github.com/noah-isme/hw-eval-api/internal/models"

// Item is one rubric slot of a materialized submission. SelfEval and
// GraderEval are nil until created. The pointed-to records belong to the
// session and must only be changed through Session operations.
type Item struct {
	EvalItem   *models.EvalItem
	SelfEval   *models.SelfEval
	GraderEval *models.GraderEval
}

// Cache is the per-session materialization of a submission's evaluations,
// indexed by rubric sequence.
type Cache struct {
	submission *models.Submission
	items      []Item
	sequences  map[uint]int
	itemCount  int
	pointValue float64
}

func newCache(submission *models.Submission) *Cache {
	return &Cache{
		submission: submission,
		sequences:  make(map[uint]int),
	}
}

func (c *Cache) addEvalItem(item *models.EvalItem) {
	for len(c.items) <= item.Sequence {
		c.items = append(c.items, Item{})
	}
	c.items[item.Sequence].EvalItem = item
	c.sequences[item.ID] = item.Sequence
	c.itemCount++
	c.pointValue += item.RelativeValue
}

// Submission returns the session's copy of the submission.
func (c *Cache) Submission() *models.Submission {
	return c.submission
}

// Items returns the rubric slots in sequence order.
func (c *Cache) Items() []Item {
	result := make([]Item, 0, c.itemCount)
	for _, item := range c.items {
		if item.EvalItem != nil {
			result = append(result, item)
		}
	}
	return result
}

// Item returns the slot for a rubric sequence.
func (c *Cache) Item(sequence int) (Item, bool) {
	slot := c.slot(sequence)
	if slot == nil {
		return Item{}, false
	}
	return *slot, true
}

// ItemCount is the number of rubric items.
func (c *Cache) ItemCount() int {
	return c.itemCount
}

// PointValue is the total weight of the rubric.
func (c *Cache) PointValue() float64 {
	return c.pointValue
}

// Summary derives the evaluation counters from the slots.
func (c *Cache) Summary() models.EvalSummary {
	summary := models.EvalSummary{
		ItemCount:  c.itemCount,
		PointValue: c.pointValue,
	}

	for _, item := range c.items {
		if item.EvalItem == nil || item.SelfEval == nil {
			continue
		}
		summary.SelfEvalCount++
		if item.GraderEval != nil && item.GraderEval.IsReady() {
			summary.GradedCount++
			summary.WeightedScore += item.GraderEval.Score * item.EvalItem.RelativeValue
		}
	}

	return summary
}

func (c *Cache) slot(sequence int) *Item {
	if sequence < 0 || sequence >= len(c.items) || c.items[sequence].EvalItem == nil {
		return nil
	}
	return &c.items[sequence]
}

func (c *Cache) slotForEvalItem(evalItemID uint) *Item {
	sequence, ok := c.sequences[evalItemID]
	if !ok {
		return nil
	}
	return c.slot(sequence)
}
