package domain

// rules.go: reglas de aceleración del modelo branching.
//
// Las reglas no son variantes independientes sino heurísticas con prioridad
// que comparten estado mutable (xi, yi, vx, vy). Se evalúan en orden fijo y
// gana la primera cuya guarda se cumple; la última guarda siempre es cierta.

// Rule identifica la regla de aceleración aplicada en un tick.
type Rule uint8

const (
	RuleNone             Rule = iota
	RuleApproachLeftLow       // A
	RuleApproachRightLow      // B
	RuleMidRightBand          // C
	RuleSteepAscent           // D
	RuleCrossover             // E
	RuleFallback              // F
)

// Umbrales fijos de las guardas.
const (
	ruleALeftX  = 300.0
	ruleALowY   = 150.0
	ruleBRightX = 800.0
	ruleBCLowY  = 200.0
	ruleCMidX   = 600.0
)

// String devuelve la letra de la regla (A–F).
func (r Rule) String() string {
	switch r {
	case RuleApproachLeftLow:
		return "A"
	case RuleApproachRightLow:
		return "B"
	case RuleMidRightBand:
		return "C"
	case RuleSteepAscent:
		return "D"
	case RuleCrossover:
		return "E"
	case RuleFallback:
		return "F"
	default:
		return "-"
	}
}

// Name devuelve el nombre descriptivo de la regla.
func (r Rule) Name() string {
	switch r {
	case RuleApproachLeftLow:
		return "approach-left-low"
	case RuleApproachRightLow:
		return "approach-right-low"
	case RuleMidRightBand:
		return "mid-right-band"
	case RuleSteepAscent:
		return "steep-ascent"
	case RuleCrossover:
		return "velocity-crossover"
	case RuleFallback:
		return "fallback"
	default:
		return "none"
	}
}

// AllRules lista las reglas en orden de prioridad.
func AllRules() []Rule {
	return []Rule{
		RuleApproachLeftLow,
		RuleApproachRightLow,
		RuleMidRightBand,
		RuleSteepAscent,
		RuleCrossover,
		RuleFallback,
	}
}

// ParseRule convierte una letra A–F en Rule. Devuelve RuleNone si no la reconoce.
func ParseRule(s string) Rule {
	for _, r := range AllRules() {
		if r.String() == s {
			return r
		}
	}
	return RuleNone
}

// State es el estado mutable de la integración. xi/yi persisten entre ticks.
type State struct {
	X, Y   float64
	VX, VY float64
	XI, YI float64
	Tick   int
}

type ruleCase struct {
	rule  Rule
	guard func(s *State) bool
	apply func(s *State, p Params)
	// direct: la regla muta vx/vy por sí misma y el paso de incrementos se omite.
	direct bool
}

var ruleTable = []ruleCase{
	{
		rule: RuleApproachLeftLow,
		guard: func(s *State) bool {
			return s.X > ruleALeftX && s.Y < ruleALowY && s.Y != 0
		},
		apply: func(s *State, _ Params) {
			s.XI = (s.X / (2 * s.Y)) * (ruleALowY - s.Y)
			// x > 300 bajo esta guarda, así que x != 0.
			s.YI = s.YI * (s.Y / s.X)
		},
	},
	{
		rule: RuleApproachRightLow,
		guard: func(s *State) bool {
			return s.X > ruleBRightX && s.Y < ruleBCLowY && s.Y != 0
		},
		apply: func(s *State, p Params) {
			s.XI = p.Opacity + p.Width - s.VX
			s.YI = 100*(s.X/(2*s.Y)) + s.YI - p.Opacity
		},
	},
	{
		rule: RuleMidRightBand,
		guard: func(s *State) bool {
			return s.X > ruleCMidX && s.Y < ruleBCLowY
		},
		apply: func(s *State, p Params) {
			l := p.Width
			s.XI = s.VX - s.VY - l - p.Height
			s.YI = -(l + p.Height)
		},
	},
	{
		rule: RuleSteepAscent,
		guard: func(s *State) bool {
			return s.Y > s.X
		},
		apply: func(s *State, _ Params) {
			s.XI = s.X/2 - 2*s.VX
		},
	},
	{
		rule: RuleCrossover,
		guard: func(s *State) bool {
			return s.VY > s.VX
		},
		apply: func(s *State, _ Params) {
			vyOld := s.VY
			s.VX = s.VX - vyOld
			s.VY = 2*vyOld - s.VX
		},
		direct: true,
	},
	{
		rule:  RuleFallback,
		guard: func(*State) bool { return true },
		apply: func(s *State, p Params) {
			s.YI = 30 - p.Opacity
			s.XI = s.XI - p.Opacity
		},
	},
}

func selectCase(s *State) ruleCase {
	for _, c := range ruleTable {
		if c.guard(s) {
			return c
		}
	}
	// inalcanzable: la guarda de fallback siempre es cierta
	return ruleTable[len(ruleTable)-1]
}

// SelectRule evalúa las guardas sobre el estado dado sin modificarlo.
func SelectRule(s State) Rule {
	return selectCase(&s).rule
}

// ApplyRule selecciona y aplica la regla del tick, incluidos los incrementos
// vy += yi, vx += xi salvo para la regla E. No avanza la posición.
func ApplyRule(s *State, p Params) Rule {
	c := selectCase(s)
	c.apply(s, p)
	if !c.direct {
		s.VY += s.YI
		s.VX += s.XI
	}
	return c.rule
}
