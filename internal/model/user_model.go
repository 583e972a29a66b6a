package model

type User struct {
	Username   string `gorm:"column:username;primaryKey"`
	TotpSecret string `gorm:"column:totp_secret"`
}

func (User) TableName() string {
	return "users"
}
