// Package otp генерирует одноразовые коды подтверждения.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generate возвращает 6-значный цифровой код в виде строки.
// Ведущие нули сохраняются, поэтому код всегда ровно 6 символов.
func Generate() (string, error) {
	const op = "otp.Generate"
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
