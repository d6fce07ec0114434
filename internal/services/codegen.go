package services

import (
	"crypto/rand"

	"github.com/splitsync/splitsync/internal/config"
	"github.com/splitsync/splitsync/internal/security"
)

// CodeGenerator produces fixed-length session codes from the unambiguous
// alphabet. It makes no uniqueness guarantee; collision handling belongs to
// the SessionStore.
type CodeGenerator struct {
	length int
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{length: config.SessionCodeLength}
}

// Generate draws a pseudo-random code. The alphabet has 32 symbols and
// 256 % 32 == 0, so a byte modulo the alphabet size is an unbiased draw.
func (g *CodeGenerator) Generate() string {
	buf := make([]byte, g.length)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	code := make([]byte, g.length)
	for i, b := range buf {
		code[i] = security.SessionCodeAlphabet[int(b)%len(security.SessionCodeAlphabet)]
	}
	return string(code)
}
