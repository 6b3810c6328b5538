package model

// CategoryAll - сентинел "все категории" для активного фильтра.
// Не является настоящей категорией и не может быть присвоен заметке.
const CategoryAll = "All"

// Category описывает одну категорию из закрытого набора
type Category struct {
	Name  string // Имя категории (Personal, Work, ...)
	Emoji string // Глиф по умолчанию для заметок этой категории
}

// Catalog - закрытый набор категорий. Набор задается конфигурацией
// при старте и после этого не меняется.
type Catalog struct {
	categories []Category
	byName     map[string]Category
}

// NewCatalog создает каталог из списка категорий, сохраняя их порядок
func NewCatalog(categories []Category) *Catalog {
	byName := make(map[string]Category, len(categories))
	for _, c := range categories {
		byName[c.Name] = c
	}
	return &Catalog{
		categories: categories,
		byName:     byName,
	}
}

// DefaultCatalog возвращает каталог со стандартным набором категорий
func DefaultCatalog() *Catalog {
	return NewCatalog([]Category{
		{Name: "Personal", Emoji: "🏠"},
		{Name: "Work", Emoji: "💼"},
		{Name: "Reading", Emoji: "📚"},
		{Name: "Ideas", Emoji: "💡"},
		{Name: "Travel", Emoji: "✈️"},
		{Name: "Health", Emoji: "💊"},
	})
}

// Categories возвращает категории в порядке объявления
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Contains проверяет, входит ли имя в закрытый набор (без учета CategoryAll)
func (c *Catalog) Contains(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// DefaultEmoji возвращает глиф по умолчанию для категории.
// Для неизвестной категории возвращается пустая строка.
func (c *Catalog) DefaultEmoji(name string) string {
	return c.byName[name].Emoji
}
