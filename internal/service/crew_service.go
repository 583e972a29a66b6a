package service

import (
	"errors"

	"github.com/doskvol-ltd/doskvol/internal/model"
	"github.com/doskvol-ltd/doskvol/internal/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CrewPreview is the summary row shown on the crew list.
type CrewPreview struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Specialty   string `json:"specialty"`
	DMName      string `json:"dmName"`
	PlayerCount int    `json:"playerCount"`
}

type CrewService struct {
	db *gorm.DB
}

func NewCrewService(db *gorm.DB) *CrewService {
	return &CrewService{
		db: db,
	}
}

// IsMember reports whether a membership row exists. Row existence is the
// only membership signal, there is no pending state.
func (cs *CrewService) IsMember(crewID uint, username string) bool {
	var count int64
	err := cs.db.Model(&model.CrewMember{}).Where("crew_id = ? AND user_id = ?", crewID, username).Count(&count).Error

	if err != nil {
		log.Error().Err(err).Uint("crewId", crewID).Msg("Failed to check crew membership")
		return false
	}

	return count > 0
}

// IsDM reports whether the user is the crew's single privileged member.
func (cs *CrewService) IsDM(crewID uint, username string) bool {
	var count int64
	err := cs.db.Model(&model.Crew{}).Where("id = ? AND dm_id = ?", crewID, username).Count(&count).Error

	if err != nil {
		log.Error().Err(err).Uint("crewId", crewID).Msg("Failed to check crew DM")
		return false
	}

	return count > 0
}

// CreateCrew inserts a crew with the caller as DM and a membership row
// carrying the DM's display name.
func (cs *CrewService) CreateCrew(username string, name string, specialty string, dmName string) (*model.Crew, error) {
	crew := model.Crew{
		Name:      name,
		Specialty: specialty,
		DMID:      username,
	}

	if err := cs.db.Create(&crew).Error; err != nil {
		log.Error().Err(err).Msg("Failed to insert new crew")
		return nil, ErrServer
	}

	member := model.CrewMember{
		CrewID:      crew.ID,
		UserID:      username,
		DisplayName: dmName,
	}

	if err := cs.db.Create(&member).Error; err != nil {
		log.Error().Err(err).Msg("Failed to insert new crew member")
		return nil, ErrServer
	}

	return &crew, nil
}

// GetCrew loads a crew for a member. Non-members get the same answer as a
// missing crew.
func (cs *CrewService) GetCrew(crewID uint, username string) (*model.Crew, error) {
	if !cs.IsMember(crewID, username) {
		return nil, ErrNotFound
	}

	var crew model.Crew
	err := cs.db.Where("id = ?", crewID).First(&crew).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		log.Error().Err(err).Uint("crewId", crewID).Msg("Failed to find crew")
		return nil, ErrServer
	}

	return &crew, nil
}

// ListCrews returns the crews the user belongs to, with the DM's display
// name and the player count resolved per crew.
func (cs *CrewService) ListCrews(username string) ([]CrewPreview, error) {
	var crews []model.Crew
	err := cs.db.Joins("JOIN crew_members ON crew_members.crew_id = crews.id").
		Where("crew_members.user_id = ?", username).
		Find(&crews).Error

	if err != nil {
		log.Error().Err(err).Msg("Failed to load crews")
		return nil, ErrServer
	}

	previews := make([]CrewPreview, 0, len(crews))

	for _, crew := range crews {
		dmName := crew.DMID

		var dm model.CrewMember
		err := cs.db.Where("crew_id = ? AND user_id = ?", crew.ID, crew.DMID).First(&dm).Error
		if err == nil {
			dmName = dm.DisplayName
		}

		var playerCount int64
		err = cs.db.Model(&model.CrewMember{}).Where("crew_id = ?", crew.ID).Count(&playerCount).Error
		if err != nil {
			log.Error().Err(err).Uint("crewId", crew.ID).Msg("Failed to count crew members")
		}

		previews = append(previews, CrewPreview{
			ID:          crew.ID,
			Name:        crew.Name,
			Specialty:   crew.Specialty,
			DMName:      dmName,
			PlayerCount: int(playerCount),
		})
	}

	return previews, nil
}

// MemberDisplayName resolves another member's display name, visible to
// crew members only.
func (cs *CrewService) MemberDisplayName(crewID uint, username string, target string) (string, error) {
	if !cs.IsMember(crewID, username) {
		return "", ErrNotFound
	}

	var member model.CrewMember
	err := cs.db.Where("crew_id = ? AND user_id = ?", crewID, target).First(&member).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}

	if err != nil {
		log.Error().Err(err).Uint("crewId", crewID).Msg("Failed to find crew member")
		return "", ErrServer
	}

	return member.DisplayName, nil
}

// CreateInvite mints a bounded-use invite code. DM only.
func (cs *CrewService) CreateInvite(crewID uint, username string, maxUses int) (*model.CrewInvite, error) {
	if !cs.IsDM(crewID, username) {
		return nil, ErrNotFound
	}

	code, err := utils.RandomString(utils.InviteCodeLength)

	if err != nil {
		log.Error().Err(err).Msg("Failed to generate invite code")
		return nil, ErrServer
	}

	invite := model.CrewInvite{
		Code:    code,
		CrewID:  crewID,
		MaxUses: maxUses,
	}

	if err := cs.db.Create(&invite).Error; err != nil {
		log.Error().Err(err).Msg("Failed to insert new crew invite")
		return nil, ErrServer
	}

	return &invite, nil
}

// ListInvites returns a crew's open invites. DM only.
func (cs *CrewService) ListInvites(crewID uint, username string) ([]model.CrewInvite, error) {
	if !cs.IsDM(crewID, username) {
		return nil, ErrNotFound
	}

	var invites []model.CrewInvite
	err := cs.db.Where("crew_id = ?", crewID).Find(&invites).Error

	if err != nil {
		log.Error().Err(err).Uint("crewId", crewID).Msg("Failed to load crew invites")
		return nil, ErrServer
	}

	return invites, nil
}

// DeleteInvite removes an invite code. DM of the invite's crew only.
func (cs *CrewService) DeleteInvite(code string, username string) error {
	var invite model.CrewInvite
	err := cs.db.Where("code = ?", code).First(&invite).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	if err != nil {
		log.Error().Err(err).Msg("Failed to find crew invite")
		return ErrServer
	}

	if !cs.IsDM(invite.CrewID, username) {
		return ErrNotFound
	}

	if err := cs.db.Where("code = ?", code).Delete(&model.CrewInvite{}).Error; err != nil {
		log.Error().Err(err).Msg("Failed to delete crew invite")
		return ErrServer
	}

	return nil
}

// RedeemInvite joins the caller to the invite's crew. The usage counter is
// claimed with a single conditional update so two concurrent redemptions of
// the last use cannot both be admitted.
func (cs *CrewService) RedeemInvite(code string, username string, displayName string) (*model.Crew, error) {
	var invite model.CrewInvite
	err := cs.db.Where("code = ?", code).First(&invite).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		log.Error().Err(err).Msg("Failed to find crew invite")
		return nil, ErrServer
	}

	if cs.IsMember(invite.CrewID, username) {
		return nil, ErrAlreadyMember
	}

	claim := cs.db.Model(&model.CrewInvite{}).
		Where("code = ? AND used < max_uses", code).
		Update("used", gorm.Expr("used + 1"))

	if claim.Error != nil {
		log.Error().Err(claim.Error).Msg("Failed to update crew invite usage")
		return nil, ErrServer
	}

	if claim.RowsAffected == 0 {
		return nil, ErrInviteExhausted
	}

	member := model.CrewMember{
		CrewID:      invite.CrewID,
		UserID:      username,
		DisplayName: displayName,
	}

	if err := cs.db.Create(&member).Error; err != nil {
		log.Error().Err(err).Msg("Failed to insert new crew member")
		return nil, ErrServer
	}

	// Prune invites that just ran out.
	err = cs.db.Where("used >= max_uses").Delete(&model.CrewInvite{}).Error

	if err != nil {
		log.Error().Err(err).Msg("Failed to delete exhausted invites")
	}

	var crew model.Crew
	err = cs.db.Where("id = ?", invite.CrewID).First(&crew).Error

	if err != nil {
		log.Error().Err(err).Uint("crewId", invite.CrewID).Msg("Failed to find crew for invite")
		return nil, ErrServer
	}

	return &crew, nil
}
