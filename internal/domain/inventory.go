package domain

import "time"

// CardCondition is the grading condition of an owned card.
type CardCondition string

const (
	// ConditionMint is the condition of every card pulled from a sealed pack.
	ConditionMint          CardCondition = "MINT"
	ConditionNearMint      CardCondition = "NEAR_MINT"
	ConditionLightlyPlayed CardCondition = "LIGHTLY_PLAYED"
	ConditionHeavilyPlayed CardCondition = "HEAVILY_PLAYED"
	ConditionDamaged       CardCondition = "DAMAGED"
)

// UserInventoryItem is one (card, condition) stack owned by a user.
type UserInventoryItem struct {
	UserID    string        `json:"user_id" db:"user_id"`
	CardID    int64         `json:"card_id" db:"card_id"`
	Condition CardCondition `json:"condition" db:"condition"`
	Quantity  int           `json:"quantity" db:"quantity"`
	// ValueTotal is the sum of the snapshot values of every unit in the stack.
	ValueTotal        int64     `json:"value_total" db:"value_total"`
	LastSnapshotValue int64     `json:"last_snapshot_value" db:"last_snapshot_value"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// UserInventory is the per-user aggregate. TotalCards and TotalValue are caches over Items.
type UserInventory struct {
	UserID     string              `json:"user_id" db:"user_id"`
	TotalCards int                 `json:"total_cards" db:"total_cards"`
	TotalValue int64               `json:"total_value" db:"total_value"`
	Items      []UserInventoryItem `json:"items"`
	UpdatedAt  time.Time           `json:"updated_at" db:"updated_at"`
}

// ComputeTotals sums the inventory items.
func (inv *UserInventory) ComputeTotals() (int, int64) {
	cards := 0
	var value int64
	for _, item := range inv.Items {
		cards += item.Quantity
		value += item.ValueTotal
	}
	return cards, value
}

// IsConsistent reports whether the cached totals match the items.
func (inv *UserInventory) IsConsistent() bool {
	cards, value := inv.ComputeTotals()
	return cards == inv.TotalCards && value == inv.TotalValue
}

// InventoryDelta is one upsert applied to an inventory stack.
type InventoryDelta struct {
	CardID    int64
	Condition CardCondition
	Quantity  int
	Value     int64
	// LastValue is the snapshot value of the last unit added.
	LastValue int64
}

// ReconcileReport describes the outcome of recomputing inventory totals.
type ReconcileReport struct {
	UserID        string `json:"user_id"`
	CachedCards   int    `json:"cached_cards"`
	CachedValue   int64  `json:"cached_value"`
	ComputedCards int    `json:"computed_cards"`
	ComputedValue int64  `json:"computed_value"`
	DriftDetected bool   `json:"drift_detected"`
	Repaired      bool   `json:"repaired"`
}
