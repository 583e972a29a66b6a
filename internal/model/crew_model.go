package model

type Crew struct {
	ID        uint   `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name"`
	Specialty string `gorm:"column:specialty"`
	DMID      string `gorm:"column:dm_id"`
}

func (Crew) TableName() string {
	return "crews"
}

type CrewMember struct {
	UserID      string `gorm:"column:user_id;primaryKey"`
	CrewID      uint   `gorm:"column:crew_id;primaryKey"`
	DisplayName string `gorm:"column:display_name"`
}

func (CrewMember) TableName() string {
	return "crew_members"
}

type CrewInvite struct {
	Code    string `gorm:"column:code;primaryKey"`
	CrewID  uint   `gorm:"column:crew_id"`
	Used    int    `gorm:"column:used"`
	MaxUses int    `gorm:"column:max_uses"`
}

func (CrewInvite) TableName() string {
	return "crew_invites"
}
