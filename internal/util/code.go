package util

import (
	"crypto/rand"
	"math/big"
)

const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomCode gera código alfanumérico aleatório de n caracteres.
// Usado como prefixo anticolisão de arquivos e sufixo de protocolos.
func RandomCode(n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
