package fairness

import (
	"fmt"

	"trade_exchange/internal/domain"
	"trade_exchange/internal/domain/entity"
	"trade_exchange/pkg/errcodes"
)

// workingInventory: изменяемая копия инвентаря для симуляции обмена.
type workingInventory struct {
	items []entity.Item
}

func newWorkingInventory(inventory []entity.Item) *workingInventory {
	return &workingInventory{items: entity.CloneItems(inventory)}
}

// remove списывает item.Amount с подходящих записей в порядке их следования.
func (w *workingInventory) remove(item entity.Item) error {
	remaining := item.Amount

	for i := range w.items {
		if remaining == 0 {
			break
		}

		entry := &w.items[i]
		if entry.Amount == 0 || !entry.SameDefinition(item) {
			continue
		}

		taken := min(entry.Amount, remaining)
		entry.Amount -= taken
		remaining -= taken
	}

	if remaining > 0 {
		return domain.NewError(
			errcodes.InventoryInvariantViolation,
			fmt.Sprintf("inventory lacks %d of class %d", remaining, item.ClassID),
		)
	}

	w.compact()

	return nil
}

// add добавляет предметы отдельными записями, без слияния по ClassID.
func (w *workingInventory) add(items []entity.Item) {
	w.items = append(w.items, items...)
}

func (w *workingInventory) compact() {
	kept := w.items[:0]
	for _, entry := range w.items {
		if entry.Amount > 0 {
			kept = append(kept, entry)
		}
	}

	w.items = kept
}
