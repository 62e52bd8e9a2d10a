package oracle

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// DrawUniform sorteia um uint64 uniforme via crypto/rand. O simulador
// substitui um VRF real; imprevisibilidade criptográfica verificável fica
// fora do contrato deste núcleo.
func DrawUniform() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("draw randomness: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
