package model

// Character is the full Blades-style sheet. Harm, XP and action dots live on
// the character row; abilities, contacts and class items are child tables.
type Character struct {
	ID         uint   `gorm:"column:id;primaryKey"`
	UserID     string `gorm:"column:user_id"`
	CrewID     uint   `gorm:"column:crew_id"`
	Name       string `gorm:"column:name"`
	Class      string `gorm:"column:class"`
	Look       string `gorm:"column:look"`
	Heritage   string `gorm:"column:heritage"`
	Background string `gorm:"column:background"`
	Vice       string `gorm:"column:vice"`
	Stress     int    `gorm:"column:stress"`
	Trauma     int    `gorm:"column:trauma"`
	Healing    int    `gorm:"column:healing"`
	Armor      int    `gorm:"column:armor"`
	Notes      string `gorm:"column:notes"`
	Stash      int    `gorm:"column:stash"`
	Coin       int    `gorm:"column:coin"`
	Load       *int   `gorm:"column:load"`
	Items      int    `gorm:"column:items"`

	Harm11 string `gorm:"column:harm_1_1"`
	Harm12 string `gorm:"column:harm_1_2"`
	Harm21 string `gorm:"column:harm_2_1"`
	Harm22 string `gorm:"column:harm_2_2"`
	Harm3  string `gorm:"column:harm_3"`

	XpPlaybook int `gorm:"column:xp_playbook"`
	XpInsight  int `gorm:"column:xp_insight"`
	XpProwess  int `gorm:"column:xp_prowess"`
	XpResolve  int `gorm:"column:xp_resolve"`

	Hunt     int `gorm:"column:hunt"`
	Study    int `gorm:"column:study"`
	Survey   int `gorm:"column:survey"`
	Tinker   int `gorm:"column:tinker"`
	Finesse  int `gorm:"column:finesse"`
	Prowl    int `gorm:"column:prowl"`
	Skirmish int `gorm:"column:skirmish"`
	Wreck    int `gorm:"column:wreck"`
	Attune   int `gorm:"column:attune"`
	Command  int `gorm:"column:command"`
	Consort  int `gorm:"column:consort"`
	Sway     int `gorm:"column:sway"`
}

func (Character) TableName() string {
	return "characters"
}

type CharacterAbility struct {
	ID          uint   `gorm:"column:id;primaryKey"`
	CharacterID uint   `gorm:"column:character_id"`
	Name        string `gorm:"column:name"`
}

func (CharacterAbility) TableName() string {
	return "character_abilities"
}

type CharacterContact struct {
	ID          uint   `gorm:"column:id;primaryKey"`
	CharacterID uint   `gorm:"column:character_id"`
	Name        string `gorm:"column:name"`
	Friend      bool   `gorm:"column:friend"`
}

func (CharacterContact) TableName() string {
	return "character_contacts"
}

type CharacterClassItem struct {
	ID          uint   `gorm:"column:id;primaryKey"`
	CharacterID uint   `gorm:"column:character_id"`
	Name        string `gorm:"column:name"`
}

func (CharacterClassItem) TableName() string {
	return "character_class_items"
}
