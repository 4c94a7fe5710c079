package challenge

import (
	"github.com/dmarquez/idlempire/internal/model"
)

// BattleStrength reduces a game state document to the scalar that decides
// battle outcomes. Missing or mistyped fields and unknown characters are
// errors, never defaulted.
func BattleStrength(state model.GameState) (float64, error) {
	money, err := state.Float("money")
	if err != nil {
		return 0, err
	}
	meth, err := state.Float("meth")
	if err != nil {
		return 0, err
	}
	quality, err := state.Float("quality")
	if err != nil {
		return 0, err
	}
	weapons, err := state.Float("weapons")
	if err != nil {
		return 0, err
	}
	equipmentLevel, err := state.Float("equipmentLevel")
	if err != nil {
		return 0, err
	}

	character, err := state.Text("character")
	if err != nil {
		return 0, err
	}
	stats, err := model.Character(character).Stats()
	if err != nil {
		return 0, err
	}

	saulHired, err := state.Bool("saulHired")
	if err != nil {
		return 0, err
	}
	mikeHired, err := state.Bool("mikeHired")
	if err != nil {
		return 0, err
	}
	defeatedVillains, err := state.Count("defeatedVillains")
	if err != nil {
		return 0, err
	}

	strength := money*0.001 +
		meth*quality*0.5 +
		weapons*stats.WeaponSkill*2 +
		equipmentLevel*0.5 +
		float64(defeatedVillains)*0.5
	if saulHired {
		strength += 1
	}
	if mikeHired {
		strength += 2
	}
	return strength, nil
}
