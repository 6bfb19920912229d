package character

import "fmt"

// ApplyDamage subtracts n from Health, clamped at 0, and returns the damage
// actually taken. Non-positive n is a no-op.
func (c *Character) ApplyDamage(n int) int {
	if n <= 0 {
		return 0
	}
	if n > c.Health {
		n = c.Health
	}
	c.Health -= n
	return n
}

// Heal restores up to amount health without exceeding MaxHealth and returns
// the amount restored.
func (c *Character) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	missing := c.MaxHealth - c.Health
	if amount > missing {
		amount = missing
	}
	c.Health += amount
	return amount
}

// FullHeal sets Health to MaxHealth.
func (c *Character) FullHeal() {
	c.Health = c.MaxHealth
}

// Dead reports whether Health has reached 0.
func (c *Character) Dead() bool {
	return c.Health <= 0
}

// SpendGold deducts n gold.
//
// Postcondition: on ErrInsufficientGold, Gold is unchanged.
func (c *Character) SpendGold(n int) error {
	if n > c.Gold {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientGold, n, c.Gold)
	}
	c.Gold -= n
	return nil
}

// AddGold adds n gold; negative n is ignored.
func (c *Character) AddGold(n int) {
	if n > 0 {
		c.Gold += n
	}
}
