package recipe

// Store exposes recipe retrieval for handlers and the client core.
type Store interface {
	List() []Recipe
	FindByID(id string) (Recipe, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Recipe
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied recipes.
func NewMemoryStore(items []Recipe) *MemoryStore {
	return &MemoryStore{items: append([]Recipe(nil), items...)}
}

// List returns the catalog in declaration order.
func (s *MemoryStore) List() []Recipe {
	return append([]Recipe(nil), s.items...)
}

// FindByID looks up a recipe by identifier.
func (s *MemoryStore) FindByID(id string) (Recipe, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Recipe{}, false
}

// Prompts returns the id to system prompt table used to seed server storage.
func (s *MemoryStore) Prompts() map[string]string {
	prompts := make(map[string]string, len(s.items))
	for _, item := range s.items {
		prompts[item.ID] = item.Prompt()
	}
	return prompts
}
