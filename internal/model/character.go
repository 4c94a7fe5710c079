package model

// Character is the playable archetype named in a game state document.
// The set is closed: anything outside the known members is an error,
// never silently defaulted.
type Character string

// Known characters
const (
	CharacterWalter Character = "Walter"
	CharacterJesse  Character = "Jesse"
)

// CharacterStats are the fixed per-character constants. Only WeaponSkill
// feeds battle strength; the other two belong to the client simulation
// and are kept for parity with the game balance table.
type CharacterStats struct {
	CookingSkill float64
	SellBonus    float64
	WeaponSkill  float64
}

// Stats returns the constant table entry for the character
func (c Character) Stats() (CharacterStats, error) {
	switch c {
	case CharacterWalter:
		return CharacterStats{CookingSkill: 0.7, SellBonus: 1.0, WeaponSkill: 0.8}, nil
	case CharacterJesse:
		return CharacterStats{CookingSkill: 0.4, SellBonus: 1.2, WeaponSkill: 0.5}, nil
	default:
		return CharacterStats{}, ErrUnknownCharacter
	}
}
