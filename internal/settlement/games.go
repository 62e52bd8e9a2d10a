package settlement

import "github.com/miraklik/casino-settlement/internal/wager"

// Multiplicadores base em pontos percentuais: 200 = 2x. O bônus de tier
// soma pontos ao multiplicador, nunca ao stake.
const (
	multCoinflip = 200
	multNumber   = 3600
	multColor    = 200
	multZero     = 1800
	multParity   = 200
)

// Casas vermelhas da roleta europeia.
var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// ValidateSelection checa a boa formação da escolha antes de qualquer
// efeito. Cada defeito tem um erro próprio.
func ValidateSelection(sel wager.Selection) error {
	switch sel.Game {
	case wager.GameCoinflip:
		if sel.Guess != 0 && sel.Guess != 1 {
			return ErrInvalidGuess
		}
		return nil
	case wager.GameRoulette:
		if sel.HasNumber && (sel.Number < 0 || sel.Number > 36) {
			return ErrNumberOutOfRange
		}
		if sel.Color != wager.ColorNone && sel.Color != wager.ColorRed && sel.Color != wager.ColorBlack {
			return ErrInvalidColor
		}
		if sel.Even && sel.Odd {
			return ErrConflictingParity
		}
		if sel.Color != wager.ColorNone && sel.Zero {
			return ErrColorWithZero
		}
		if !sel.HasNumber && sel.Color == wager.ColorNone && !sel.Even && !sel.Odd && !sel.Zero {
			return ErrEmptySelection
		}
		return nil
	default:
		return ErrUnknownGame
	}
}

// DrawOutcome deriva o resultado do valor do oráculo: mod 2 para coinflip,
// mod 37 (0..36) para roleta.
func DrawOutcome(game wager.Game, randomValue uint64) int {
	if game == wager.GameCoinflip {
		return int(randomValue % 2)
	}
	return int(randomValue % 37)
}

// Evaluate aplica as pernas da aposta ao resultado sorteado e devolve o
// prêmio. Só a primeira perna vencedora paga, na precedência fixa
// número > cor > zero > par > ímpar. payout = net * (mult + bônus) / 100,
// com truncamento de divisão inteira a cada passo.
func Evaluate(sel wager.Selection, outcome int, netStake, winBonus int64) (won bool, payout int64) {
	if sel.Game == wager.GameCoinflip {
		if outcome == sel.Guess {
			return true, netStake * (multCoinflip + winBonus) / 100
		}
		return false, 0
	}

	if sel.HasNumber && sel.Number == outcome {
		return true, netStake * (multNumber + winBonus) / 100
	}
	if sel.Color != wager.ColorNone && sel.Color == colorOf(outcome) {
		return true, netStake * (multColor + winBonus) / 100
	}
	if sel.Zero && outcome == 0 {
		return true, netStake * (multZero + winBonus) / 100
	}
	// o zero não conta como par nem como ímpar
	if sel.Even && outcome != 0 && outcome%2 == 0 {
		return true, netStake * (multParity + winBonus) / 100
	}
	if sel.Odd && outcome%2 == 1 {
		return true, netStake * (multParity + winBonus) / 100
	}
	return false, 0
}

// colorOf retorna a cor da casa sorteada; o zero é verde (sem cor).
func colorOf(outcome int) wager.Color {
	if outcome == 0 {
		return wager.ColorNone
	}
	if redNumbers[outcome] {
		return wager.ColorRed
	}
	return wager.ColorBlack
}
