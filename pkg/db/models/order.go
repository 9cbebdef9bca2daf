package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/graingrove-backend/pkg/enums"
	"github.com/angelmondragon/graingrove-backend/pkg/types"
)

// Order is a placed order. The id is assigned by the database.
type Order struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserEmail string            `gorm:"column:user_email;not null"`
	FullName  string            `gorm:"column:full_name;not null"`
	Address   string            `gorm:"column:address;not null"`
	City      string            `gorm:"column:city;not null"`
	State     string            `gorm:"column:state;not null"`
	Zip       string            `gorm:"column:zip;not null"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	Items     types.LineItems   `gorm:"column:items;type:jsonb;not null"`
	Status    enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
