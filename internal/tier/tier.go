package tier

// Tier é o nível de privilégio de uma conta, mantido pelo registro externo.
type Tier int

const (
	None Tier = iota
	Tier1
	Tier2
	Tier3
)

func (t Tier) String() string {
	switch t {
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	default:
		return "none"
	}
}

// ParseTier converte o valor armazenado no registro ("tier1", "tier2", ...).
// Qualquer valor desconhecido vale None.
func ParseTier(s string) Tier {
	switch s {
	case "tier1":
		return Tier1
	case "tier2":
		return Tier2
	case "tier3":
		return Tier3
	default:
		return None
	}
}

// Benefit é o conjunto de ajustes concedidos por um tier.
// Cada tier domina estritamente o anterior nos quatro eixos.
type Benefit struct {
	MaxBetBonusMicros int64 // acréscimo ao teto de aposta
	FeeDiscount       int64 // pontos percentuais subtraídos da taxa base
	CashbackRate      int64 // % do stake devolvido na aceitação
	WinBonusRate      int64 // pontos percentuais somados ao multiplicador de prêmio
}

var benefitTable = map[Tier]Benefit{
	None:  {MaxBetBonusMicros: 0, FeeDiscount: 0, CashbackRate: 0, WinBonusRate: 0},
	Tier1: {MaxBetBonusMicros: 5_000_000, FeeDiscount: 1, CashbackRate: 2, WinBonusRate: 5},
	Tier2: {MaxBetBonusMicros: 10_000_000, FeeDiscount: 3, CashbackRate: 5, WinBonusRate: 10},
	Tier3: {MaxBetBonusMicros: 20_000_000, FeeDiscount: 4, CashbackRate: 8, WinBonusRate: 15},
}

// Benefits retorna os ajustes do tier. Função pura, usada tanto na
// aceitação (teto/taxa/cashback) quanto na resolução (bônus de prêmio).
func Benefits(t Tier) Benefit {
	b, ok := benefitTable[t]
	if !ok {
		return benefitTable[None]
	}
	return b
}
