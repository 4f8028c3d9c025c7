package model

const TableUser = "users"

type User struct {
	Address string `gorm:"primaryKey"`
}

func (User) TableName() string {
	return TableUser
}
