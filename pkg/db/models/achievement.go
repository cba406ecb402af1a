package models

// Achievement is a challenge published by an author for others to book.
type Achievement struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"column:name;not null"`
	Description *string `gorm:"column:description"`
	Image       []byte  `gorm:"column:image"`
	AuthorID    int64   `gorm:"column:author_id;not null"`
}
