// Package fairness оценивает, выгоден ли обмен для сбора коллекций.
// Все функции чистые: не делают I/O и не меняют переданные срезы.
package fairness

import (
	"slices"

	"trade_exchange/internal/domain"
	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/errcodes"
)

// Sets: для каждой коллекции отсортированные по возрастанию количества
// по каждому ClassID. Сумма нескольких записей одного ClassID может не
// поместиться в uint32, поэтому uint64.
type Sets map[value.SetKey][]uint64

// SummarizeSets группирует предметы по коллекциям и суммирует Amount по ClassID.
// Несколько записей с одним ClassID сливаются в одну.
func SummarizeSets(inventory []entity.Item) (Sets, error) {
	if len(inventory) == 0 {
		return nil, domain.NewError(errcodes.InvalidTradeInput, "inventory is empty")
	}

	return summarize(inventory), nil
}

func summarize(items []entity.Item) Sets {
	perClass := make(map[value.SetKey]map[uint64]uint64)

	for _, item := range items {
		if item.Amount == 0 {
			continue
		}

		key := item.SetKey()

		amounts, ok := perClass[key]
		if !ok {
			amounts = make(map[uint64]uint64)
			perClass[key] = amounts
		}

		amounts[item.ClassID] += uint64(item.Amount)
	}

	sets := make(Sets, len(perClass))

	for key, amounts := range perClass {
		list := make([]uint64, 0, len(amounts))
		for _, amount := range amounts {
			list = append(list, amount)
		}

		slices.Sort(list)
		sets[key] = list
	}

	return sets
}

// IsFairExchange: быстрая проверка по количеству: для каждой коллекции,
// из которой мы отдаём, получаем не меньше, чем отдаём.
func IsFairExchange(give, receive []entity.Item) (bool, error) {
	if len(give) == 0 {
		return false, domain.NewError(errcodes.InvalidTradeInput, "items to give are empty")
	}

	if len(receive) == 0 {
		return false, domain.NewError(errcodes.InvalidTradeInput, "items to receive are empty")
	}

	giveTotals := totalsBySet(give)
	receiveTotals := totalsBySet(receive)

	for key, given := range giveTotals {
		if given > receiveTotals[key] {
			return false, nil
		}
	}

	return true, nil
}

func totalsBySet(items []entity.Item) map[value.SetKey]uint64 {
	totals := make(map[value.SetKey]uint64)
	for _, item := range items {
		totals[item.SetKey()] += uint64(item.Amount)
	}

	return totals
}

// IsNeutralOrBetter моделирует обмен на копии инвентаря и проверяет, что
// ни одна коллекция не потеряла уникальных предметов, а накопленная разница
// по возрастающим количествам нигде не уходит в минус.
//
// Если give нельзя полностью списать с инвентаря, возвращается ошибка
// с кодом errcodes.InventoryInvariantViolation.
func IsNeutralOrBetter(inventory, give, receive []entity.Item) (bool, error) {
	if len(inventory) == 0 {
		return false, domain.NewError(errcodes.InvalidTradeInput, "inventory is empty")
	}

	if len(give) == 0 {
		return false, domain.NewError(errcodes.InvalidTradeInput, "items to give are empty")
	}

	if len(receive) == 0 {
		return false, domain.NewError(errcodes.InvalidTradeInput, "items to receive are empty")
	}

	working := newWorkingInventory(inventory)
	before := summarize(working.items)

	for _, item := range give {
		if err := working.remove(item); err != nil {
			return false, err
		}
	}

	working.add(receive)

	after := summarize(working.items)

	for key, beforeAmounts := range before {
		afterAmounts, ok := after[key]
		if !ok {
			return false, nil
		}

		if !isSetNeutralOrBetter(beforeAmounts, afterAmounts) {
			return false, nil
		}
	}

	return true, nil
}

func isSetNeutralOrBetter(before, after []uint64) bool {
	if len(after) < len(before) {
		return false
	}

	// новые ClassID считаем начавшимися с нуля
	padded := make([]uint64, len(after)-len(before), len(after))
	padded = append(padded, before...)

	var neutrality int64
	for i := range after {
		neutrality += int64(after[i]) - int64(padded[i])
		if neutrality < 0 {
			return false
		}
	}

	return true
}
