package models

import "time"

// MaxTitleLength — максимальная длина названия товара.
const MaxTitleLength = 100

// Owner описывает владельца товара для отображения.
type Owner struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// Item — товар каталога. Price всегда неотрицательна.
type Item struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Owner       Owner     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ItemInput — данные для создания товара, приходят из JSON-запроса.
// Price передаётся указателем: nil значит "не передано".
type ItemInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category" validate:"required"`
}

// ItemPatch — частичное обновление товара. nil означает "поле не передано".
type ItemPatch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// Empty сообщает, что в патче нет ни одного поля.
func (p ItemPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.Category == nil
}

// Apply возвращает копию товара с применёнными полями патча.
func (p ItemPatch) Apply(it Item) Item {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Price != nil {
		it.Price = *p.Price
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	return it
}
