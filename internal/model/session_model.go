package model

type Session struct {
	ID     uint    `gorm:"column:id;primaryKey"`
	UserID string  `gorm:"column:user_id"`
	Token  string  `gorm:"column:token;unique"`
	Name   *string `gorm:"column:name"`
}

func (Session) TableName() string {
	return "sessions"
}
