package dice

import (
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Roller wraps a Source and logger. Every roll it resolves is logged at debug
// level and, when a History is supplied, recorded into it.
type Roller struct {
	src    Source
	logger *zap.Logger
	now    func() time.Time
}

// NewLoggedRoller creates a Roller that rolls with src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger, now: time.Now}
}

// Source exposes the underlying randomness for non-d20 draws.
func (r *Roller) Source() Source {
	return r.src
}

// Die rolls a single die of the given sides.
func (r *Roller) Die(sides int) int {
	v := RollDie(r.src, sides)
	r.logger.Debug("dice roll", zap.String("expression", "1d"+strconv.Itoa(sides)), zap.Int("total", v))
	return v
}

// SkillCheck rolls a skill check and records it under label.
func (r *Roller) SkillCheck(h *History, label string, modifier, difficulty int) Check {
	c := SkillCheck(r.src, modifier, difficulty)
	r.logCheck(KindSkillCheck, label, c)
	r.record(h, Record{
		Kind: KindSkillCheck, Label: label, Rolls: []int{c.Roll}, Modifier: c.Modifier,
		Total: c.Total, Difficulty: c.Difficulty, Success: c.Success,
	})
	return c
}

// Attack rolls an attack against armorClass and records it under label.
func (r *Roller) Attack(h *History, label string, modifier, armorClass int) Check {
	c := AttackRoll(r.src, modifier, armorClass)
	r.logCheck(KindAttack, label, c)
	r.record(h, Record{
		Kind: KindAttack, Label: label, Rolls: []int{c.Roll}, Modifier: c.Modifier,
		Total: c.Total, Difficulty: c.Difficulty, Success: c.Hit(),
	})
	return c
}

// Damage rolls formula plus modifier, doubling the dice when critical.
func (r *Roller) Damage(h *History, label, formula string, modifier int, critical bool) Damage {
	var d Damage
	if critical {
		d = CriticalDamage(r.src, formula, modifier)
	} else {
		d = DamageRoll(r.src, formula, modifier)
	}
	r.logger.Debug("dice roll",
		zap.String("kind", string(KindDamage)),
		zap.String("label", label),
		zap.String("expression", formula),
		zap.Ints("dice", d.Rolls),
		zap.Int("modifier", d.Modifier),
		zap.Int("total", d.Total),
		zap.Bool("critical", d.Critical),
	)
	r.record(h, Record{Kind: KindDamage, Label: label, Rolls: d.Rolls, Modifier: d.Modifier, Total: d.Total})
	return d
}

// RollExpr parses and rolls a free-form expression and records it.
func (r *Roller) RollExpr(h *History, expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	res := Roll(e, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	r.record(h, Record{Kind: KindExpression, Label: res.Expression, Rolls: res.Dice, Modifier: res.Modifier, Total: res.Total()})
	return res, nil
}

func (r *Roller) logCheck(kind Kind, label string, c Check) {
	r.logger.Debug("dice roll",
		zap.String("kind", string(kind)),
		zap.String("label", label),
		zap.Int("roll", c.Roll),
		zap.Int("modifier", c.Modifier),
		zap.Int("total", c.Total),
		zap.Int("difficulty", c.Difficulty),
		zap.Bool("success", c.Success),
	)
}

func (r *Roller) record(h *History, rec Record) {
	if h == nil {
		return
	}
	rec.At = r.now()
	h.Push(rec)
}
