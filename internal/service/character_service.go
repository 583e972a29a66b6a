package service

import (
	"errors"

	"github.com/doskvol-ltd/doskvol/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CharacterPreview is the summary row shown on a crew's roster.
type CharacterPreview struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	CrewID     uint   `json:"crewId"`
}

// NewCharacter is the payload for character creation.
type NewCharacter struct {
	CrewID     uint   `json:"crewId"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	Look       string `json:"look"`
	Heritage   string `json:"heritage"`
	Background string `json:"background"`
	Vice       string `json:"vice"`
}

// Harm is the five-slot harm tracker.
type Harm struct {
	Lesser1   string `json:"lesser1"`
	Lesser2   string `json:"lesser2"`
	Moderate1 string `json:"moderate1"`
	Moderate2 string `json:"moderate2"`
	Severe    string `json:"severe"`
}

// Xp is the per-track experience tally.
type Xp struct {
	Playbook int `json:"playbook"`
	Insight  int `json:"insight"`
	Prowess  int `json:"prowess"`
	Resolve  int `json:"resolve"`
}

// ActionDots is the twelve-action rating block.
type ActionDots struct {
	Hunt     int `json:"hunt"`
	Study    int `json:"study"`
	Survey   int `json:"survey"`
	Tinker   int `json:"tinker"`
	Finesse  int `json:"finesse"`
	Prowl    int `json:"prowl"`
	Skirmish int `json:"skirmish"`
	Wreck    int `json:"wreck"`
	Attune   int `json:"attune"`
	Command  int `json:"command"`
	Consort  int `json:"consort"`
	Sway     int `json:"sway"`
}

// Contact is a named contact with a friend/rival flag.
type Contact struct {
	Name   string `json:"name"`
	Friend bool   `json:"friend"`
}

// CharacterUpdate is a partial sheet update. Nil fields are untouched;
// list fields replace the stored lists wholesale.
type CharacterUpdate struct {
	Look       *string     `json:"look"`
	Heritage   *string     `json:"heritage"`
	Background *string     `json:"background"`
	Vice       *string     `json:"vice"`
	Stress     *int        `json:"stress"`
	Trauma     *int        `json:"trauma"`
	Healing    *int        `json:"healing"`
	Armor      *int        `json:"armor"`
	Harm       *Harm       `json:"harm"`
	Notes      *string     `json:"notes"`
	Coin       *int        `json:"coin"`
	Stash      *int        `json:"stash"`
	Load       *int        `json:"load"`
	Items      *int        `json:"items"`
	Xp         *Xp         `json:"xp"`
	Dots       *ActionDots `json:"dots"`
	Abilities  *[]string   `json:"abilities"`
	ClassItems *[]string   `json:"classItems"`
	Contacts   *[]Contact  `json:"contacts"`
}

// CharacterSheet is a character plus its list attachments.
type CharacterSheet struct {
	model.Character
	Abilities  []string  `json:"abilities"`
	ClassItems []string  `json:"classItems"`
	Contacts   []Contact `json:"contacts"`
}

type CharacterService struct {
	db    *gorm.DB
	crews *CrewService
}

func NewCharacterService(db *gorm.DB, crews *CrewService) *CharacterService {
	return &CharacterService{
		db:    db,
		crews: crews,
	}
}

// IsOwner reports whether the character exists and is owned by the user.
// Ownership is exact match on the owning user id, no delegation.
func (chars *CharacterService) IsOwner(characterID uint, username string) bool {
	var count int64
	err := chars.db.Model(&model.Character{}).Where("id = ? AND user_id = ?", characterID, username).Count(&count).Error

	if err != nil {
		log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to check character ownership")
		return false
	}

	return count > 0
}

// Create inserts a character owned by the caller into a crew the caller is
// a member of.
func (chars *CharacterService) Create(username string, payload NewCharacter) (*model.Character, error) {
	if !chars.crews.IsMember(payload.CrewID, username) {
		return nil, ErrNotFound
	}

	character := model.Character{
		UserID:     username,
		CrewID:     payload.CrewID,
		Name:       payload.Name,
		Class:      payload.Class,
		Look:       payload.Look,
		Heritage:   payload.Heritage,
		Background: payload.Background,
		Vice:       payload.Vice,
	}

	if err := chars.db.Create(&character).Error; err != nil {
		log.Error().Err(err).Msg("Failed to insert new character")
		return nil, ErrServer
	}

	return &character, nil
}

// Get loads a full sheet. Visible to any member of the character's crew.
func (chars *CharacterService) Get(characterID uint, username string) (*CharacterSheet, error) {
	var character model.Character
	err := chars.db.Where("id = ?", characterID).First(&character).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to find character")
		return nil, ErrServer
	}

	if !chars.crews.IsMember(character.CrewID, username) {
		return nil, ErrNotFound
	}

	sheet := CharacterSheet{
		Character:  character,
		Abilities:  []string{},
		ClassItems: []string{},
		Contacts:   []Contact{},
	}

	var abilities []model.CharacterAbility
	err = chars.db.Where("character_id = ?", characterID).Find(&abilities).Error

	if err != nil {
		log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to load character abilities")
		return nil, ErrServer
	}

	for _, ability := range abilities {
		sheet.Abilities = append(sheet.Abilities, ability.Name)
	}

	var classItems []model.CharacterClassItem
	err = chars.db.Where("character_id = ?", characterID).Find(&classItems).Error

	if err != nil {
		log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to load character class items")
		return nil, ErrServer
	}

	for _, item := range classItems {
		sheet.ClassItems = append(sheet.ClassItems, item.Name)
	}

	var contacts []model.CharacterContact
	err = chars.db.Where("character_id = ?", characterID).Find(&contacts).Error

	if err != nil {
		log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to load character contacts")
		return nil, ErrServer
	}

	for _, contact := range contacts {
		sheet.Contacts = append(sheet.Contacts, Contact{
			Name:   contact.Name,
			Friend: contact.Friend,
		})
	}

	return &sheet, nil
}

// CrewCharacters lists a crew's roster with player display names. Member
// only.
func (chars *CharacterService) CrewCharacters(crewID uint, username string) ([]CharacterPreview, error) {
	if !chars.crews.IsMember(crewID, username) {
		return nil, ErrNotFound
	}

	var characters []model.Character
	err := chars.db.Where("crew_id = ?", crewID).Find(&characters).Error

	if err != nil {
		log.Error().Err(err).Uint("crewId", crewID).Msg("Failed to load crew characters")
		return nil, ErrServer
	}

	previews := make([]CharacterPreview, 0, len(characters))

	for _, character := range characters {
		playerName := character.UserID

		var member model.CrewMember
		err := chars.db.Where("crew_id = ? AND user_id = ?", crewID, character.UserID).First(&member).Error
		if err == nil {
			playerName = member.DisplayName
		}

		previews = append(previews, CharacterPreview{
			ID:         character.ID,
			Name:       character.Name,
			Class:      character.Class,
			PlayerID:   character.UserID,
			PlayerName: playerName,
			CrewID:     character.CrewID,
		})
	}

	return previews, nil
}

// Update applies a partial sheet update. Owner only; a non-owner gets the
// same answer as a missing character.
func (chars *CharacterService) Update(characterID uint, username string, update CharacterUpdate) error {
	if !chars.IsOwner(characterID, username) {
		return ErrNotFound
	}

	columns := map[string]any{}

	if update.Look != nil {
		columns["look"] = *update.Look
	}
	if update.Heritage != nil {
		columns["heritage"] = *update.Heritage
	}
	if update.Background != nil {
		columns["background"] = *update.Background
	}
	if update.Vice != nil {
		columns["vice"] = *update.Vice
	}
	if update.Stress != nil {
		columns["stress"] = *update.Stress
	}
	if update.Trauma != nil {
		columns["trauma"] = *update.Trauma
	}
	if update.Healing != nil {
		columns["healing"] = *update.Healing
	}
	if update.Armor != nil {
		columns["armor"] = *update.Armor
	}
	if update.Notes != nil {
		columns["notes"] = *update.Notes
	}
	if update.Coin != nil {
		columns["coin"] = *update.Coin
	}
	if update.Stash != nil {
		columns["stash"] = *update.Stash
	}
	if update.Load != nil {
		columns["load"] = *update.Load
	}
	if update.Items != nil {
		columns["items"] = *update.Items
	}
	if update.Harm != nil {
		columns["harm_1_1"] = update.Harm.Lesser1
		columns["harm_1_2"] = update.Harm.Lesser2
		columns["harm_2_1"] = update.Harm.Moderate1
		columns["harm_2_2"] = update.Harm.Moderate2
		columns["harm_3"] = update.Harm.Severe
	}
	if update.Xp != nil {
		columns["xp_playbook"] = update.Xp.Playbook
		columns["xp_insight"] = update.Xp.Insight
		columns["xp_prowess"] = update.Xp.Prowess
		columns["xp_resolve"] = update.Xp.Resolve
	}
	if update.Dots != nil {
		columns["hunt"] = update.Dots.Hunt
		columns["study"] = update.Dots.Study
		columns["survey"] = update.Dots.Survey
		columns["tinker"] = update.Dots.Tinker
		columns["finesse"] = update.Dots.Finesse
		columns["prowl"] = update.Dots.Prowl
		columns["skirmish"] = update.Dots.Skirmish
		columns["wreck"] = update.Dots.Wreck
		columns["attune"] = update.Dots.Attune
		columns["command"] = update.Dots.Command
		columns["consort"] = update.Dots.Consort
		columns["sway"] = update.Dots.Sway
	}

	if len(columns) > 0 {
		err := chars.db.Model(&model.Character{}).Where("id = ?", characterID).Updates(columns).Error

		if err != nil {
			log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to update character")
			return ErrServer
		}
	}

	if update.Abilities != nil {
		if err := chars.replaceAbilities(characterID, *update.Abilities); err != nil {
			return err
		}
	}

	if update.ClassItems != nil {
		if err := chars.replaceClassItems(characterID, *update.ClassItems); err != nil {
			return err
		}
	}

	if update.Contacts != nil {
		if err := chars.replaceContacts(characterID, *update.Contacts); err != nil {
			return err
		}
	}

	return nil
}

func (chars *CharacterService) replaceAbilities(characterID uint, abilities []string) error {
	err := chars.db.Where("character_id = ?", characterID).Delete(&model.CharacterAbility{}).Error

	if err != nil {
		log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to clear character abilities")
		return ErrServer
	}

	for _, name := range abilities {
		ability := model.CharacterAbility{
			CharacterID: characterID,
			Name:        name,
		}
		if err := chars.db.Create(&ability).Error; err != nil {
			log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to insert character ability")
			return ErrServer
		}
	}

	return nil
}

func (chars *CharacterService) replaceClassItems(characterID uint, items []string) error {
	err := chars.db.Where("character_id = ?", characterID).Delete(&model.CharacterClassItem{}).Error

	if err != nil {
		log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to clear character class items")
		return ErrServer
	}

	for _, name := range items {
		item := model.CharacterClassItem{
			CharacterID: characterID,
			Name:        name,
		}
		if err := chars.db.Create(&item).Error; err != nil {
			log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to insert character class item")
			return ErrServer
		}
	}

	return nil
}

func (chars *CharacterService) replaceContacts(characterID uint, contacts []Contact) error {
	err := chars.db.Where("character_id = ?", characterID).Delete(&model.CharacterContact{}).Error

	if err != nil {
		log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to clear character contacts")
		return ErrServer
	}

	for _, contact := range contacts {
		row := model.CharacterContact{
			CharacterID: characterID,
			Name:        contact.Name,
			Friend:      contact.Friend,
		}
		if err := chars.db.Create(&row).Error; err != nil {
			log.Error().Err(err).Uint("characterId", characterID).Msg("Failed to insert character contact")
			return ErrServer
		}
	}

	return nil
}
