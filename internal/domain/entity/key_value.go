package entity

import "time"

// KeyValue is a row of the local key-value store.
type KeyValue struct {
	Key       string    `gorm:"column:kv_key;primaryKey"`
	Value     string    `gorm:"column:kv_value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for the KeyValue entity.
func (KeyValue) TableName() string {
	return "key_value"
}
