package exchange

import (
	"strconv"

	"github.com/patrickmn/go-cache"
)

// ProcessedSet хранит ID офферов, уже разобранных в текущей сессии.
// Безопасен для конкурентного использования.
type ProcessedSet struct {
	cache *cache.Cache
}

func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func processedKey(offerID uint64) string {
	return strconv.FormatUint(offerID, 10)
}

// TryAdd атомарно добавляет ID и возвращает false, если он уже был.
func (s *ProcessedSet) TryAdd(offerID uint64) bool {
	return s.cache.Add(processedKey(offerID), struct{}{}, cache.NoExpiration) == nil
}

func (s *ProcessedSet) Contains(offerID uint64) bool {
	_, ok := s.cache.Get(processedKey(offerID))
	return ok
}

func (s *ProcessedSet) Remove(offerID uint64) {
	s.cache.Delete(processedKey(offerID))
}

func (s *ProcessedSet) RemoveAll(offerIDs []uint64) {
	for _, id := range offerIDs {
		s.Remove(id)
	}
}

// IntersectWith оставляет только ID, которые всё ещё приходят от площадки.
func (s *ProcessedSet) IntersectWith(offerIDs []uint64) {
	keep := make(map[string]struct{}, len(offerIDs))
	for _, id := range offerIDs {
		keep[processedKey(id)] = struct{}{}
	}

	for key := range s.cache.Items() {
		if _, ok := keep[key]; !ok {
			s.cache.Delete(key)
		}
	}
}

func (s *ProcessedSet) Clear() {
	s.cache.Flush()
}

func (s *ProcessedSet) Len() int {
	return s.cache.ItemCount()
}
