// internal/storage/models/token.go
package models

// Token is the activation record for one mint address. Rows are created
// lazily on first activation and never deleted; only IsActive ever changes.
type Token struct {
	BaseModel
	Address  string `gorm:"unique;not null;type:varchar(44)" json:"address"`
	IsActive bool   `gorm:"not null;default:false" json:"isActive"`
}
